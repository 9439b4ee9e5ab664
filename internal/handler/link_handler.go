package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nmezhoud/healthlink/internal/domain"
	"github.com/nmezhoud/healthlink/internal/dto"
	"github.com/nmezhoud/healthlink/internal/service"
	"github.com/nmezhoud/healthlink/internal/utils"
)

// LinkHandler drives the OAuth account-linking flow. Both endpoints are
// public: linking doubles as federated sign-in for patients without a local
// password.
type LinkHandler struct {
	linkService service.LinkService
	jwtManager  *utils.JWTManager
}

// NewLinkHandler creates a new link handler
func NewLinkHandler(linkService service.LinkService, jwtManager *utils.JWTManager) *LinkHandler {
	return &LinkHandler{
		linkService: linkService,
		jwtManager:  jwtManager,
	}
}

// Begin starts the provider authorization flow
// @Summary Begin account linking
// @Description Issue a state token and return the provider authorization URL
// @Tags link
// @Produce json
// @Param email query string false "Provider account hint"
// @Success 200 {object} dto.BeginLinkResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /link/begin [get]
func (h *LinkHandler) Begin(c *gin.Context) {
	authURL, _, err := h.linkService.Begin(c.Request.Context(), c.Query("email"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal server error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, dto.BeginLinkResponse{AuthorizationURL: authURL})
}

// Callback completes the provider authorization flow
// @Summary Complete account linking
// @Description Redeem the callback state and code and bind the provider identity
// @Tags link
// @Produce json
// @Param state query string true "State token issued by begin"
// @Param code query string true "Authorization code from the provider"
// @Success 200 {object} dto.CompleteLinkResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /link/callback [get]
func (h *LinkHandler) Callback(c *gin.Context) {
	if msg, denied := service.RedirectHasError(c.Request.URL.RawQuery); denied {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Bad request",
			Message: "provider refused authorization: " + msg,
		})
		return
	}

	identity, err := h.linkService.Complete(c.Request.Context(), c.Query("state"), c.Query("code"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	// The linked patient gets a session token immediately; federated
	// accounts have no password to log in with afterwards.
	token, err := h.jwtManager.GenerateAccessToken(domain.Caller{
		Role:  domain.RolePatient,
		Email: identity.Patient.Email,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal server error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, dto.CompleteLinkResponse{
		Message: "Account linked successfully",
		Email:   identity.Patient.Email,
		Token:   token,
	})
}
