package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nmezhoud/healthlink/internal/dto"
	"github.com/nmezhoud/healthlink/internal/service"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// RegisterPatient handles patient registration
// @Summary Register a new patient
// @Description Register a new patient account, optionally naming a doctor
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterPatientRequest true "Registration request"
// @Success 201 {object} dto.AuthResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /auth/register/patient [post]
func (h *AuthHandler) RegisterPatient(c *gin.Context) {
	var req dto.RegisterPatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	response, err := h.authService.RegisterPatient(c.Request.Context(), &req)
	if err != nil {
		h.respondRegisterError(c, err)
		return
	}

	h.setRefreshCookie(c, response)
	c.JSON(http.StatusCreated, response.AuthResponse)
}

// RegisterDoctor handles doctor registration
// @Summary Register a new doctor
// @Description Register a new doctor account with specialization
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterDoctorRequest true "Registration request"
// @Success 201 {object} dto.AuthResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /auth/register/doctor [post]
func (h *AuthHandler) RegisterDoctor(c *gin.Context) {
	var req dto.RegisterDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	response, err := h.authService.RegisterDoctor(c.Request.Context(), &req)
	if err != nil {
		h.respondRegisterError(c, err)
		return
	}

	h.setRefreshCookie(c, response)
	c.JSON(http.StatusCreated, response.AuthResponse)
}

// Login handles password login for patients and doctors
// @Summary Login
// @Description Authenticate a patient or doctor with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login request"
// @Success 200 {object} dto.AuthResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	response, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrFederatedAccount) {
			c.JSON(http.StatusForbidden, dto.ErrorResponse{
				Error:   "Forbidden",
				Message: err.Error(),
			})
			return
		}
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: err.Error(),
		})
		return
	}

	h.setRefreshCookie(c, response)
	c.JSON(http.StatusOK, response.AuthResponse)
}

// Refresh handles token refresh
// @Summary Refresh tokens
// @Description Refresh access and refresh tokens
// @Tags auth
// @Produce json
// @Success 200 {object} dto.AuthResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken, err := c.Cookie("refresh_token")
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Bad request",
			Message: "Refresh token not found in cookie",
		})
		return
	}

	response, err := h.authService.RefreshToken(c.Request.Context(), refreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: err.Error(),
		})
		return
	}

	h.setRefreshCookie(c, response)
	c.JSON(http.StatusOK, response.AuthResponse)
}

// Logout handles logout
// @Summary Logout
// @Description Logout and invalidate the refresh token
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.SuccessResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: "Principal not found in context",
		})
		return
	}

	refreshToken, _ := c.Cookie("refresh_token")

	if err := h.authService.Logout(c.Request.Context(), caller, refreshToken); err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal server error",
			Message: err.Error(),
		})
		return
	}

	// Clear refresh token cookie
	c.SetCookie("refresh_token", "", -1, "/api/v1/auth/refresh", "", true, true)

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "Logged out successfully",
	})
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, response *service.AuthResponseWithRefreshToken) {
	// httpOnly, scoped to the refresh endpoint only
	c.SetCookie("refresh_token", response.RefreshToken, response.ExpiresIn, "/api/v1/auth/refresh", "", true, true)
}

func (h *AuthHandler) respondRegisterError(c *gin.Context, err error) {
	if strings.Contains(err.Error(), "already exists") {
		c.JSON(http.StatusConflict, dto.ErrorResponse{
			Error:   "Conflict",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Error:   "Bad request",
		Message: err.Error(),
	})
}
