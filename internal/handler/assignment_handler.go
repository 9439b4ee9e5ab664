package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nmezhoud/healthlink/internal/dto"
	"github.com/nmezhoud/healthlink/internal/service"
)

// AssignmentHandler handles the doctor directory and assignment workflow
type AssignmentHandler struct {
	assignmentService service.AssignmentService
}

// NewAssignmentHandler creates a new assignment handler
func NewAssignmentHandler(assignmentService service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{
		assignmentService: assignmentService,
	}
}

// ListDoctors returns the doctor directory
// @Summary List doctors
// @Description List all registered doctors with their specializations
// @Tags assignments
// @Produce json
// @Success 200 {array} dto.DoctorInfo
// @Failure 500 {object} dto.ErrorResponse
// @Router /doctors [get]
func (h *AssignmentHandler) ListDoctors(c *gin.Context) {
	doctors, err := h.assignmentService.ListDoctors(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	infos := make([]dto.DoctorInfo, 0, len(doctors))
	for _, doctor := range doctors {
		infos = append(infos, dto.DoctorInfo{
			FullName:       doctor.FullName,
			Email:          doctor.Email,
			Specialization: doctor.Specialization,
			Description:    doctor.Description,
		})
	}

	c.JSON(http.StatusOK, infos)
}

// CreateRequest files an assignment request from the calling patient
// @Summary Request a doctor
// @Description File a pending assignment request to the named doctor
// @Tags assignments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateAssignmentRequest true "Assignment request"
// @Success 201 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /assignments [post]
func (h *AssignmentHandler) CreateRequest(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: "Principal not found in context",
		})
		return
	}

	var req dto.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	if _, err := h.assignmentService.RequestAssignment(c.Request.Context(), caller.Email, req.DoctorEmail); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.SuccessResponse{
		Message: "Assignment request created",
	})
}

// PendingRequests lists the calling doctor's pending requests
// @Summary Pending assignment requests
// @Description List pending assignment requests addressed to the calling doctor
// @Tags assignments
// @Security BearerAuth
// @Produce json
// @Success 200 {array} dto.PendingRequestInfo
// @Failure 401 {object} dto.ErrorResponse
// @Router /assignments/pending [get]
func (h *AssignmentHandler) PendingRequests(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: "Principal not found in context",
		})
		return
	}

	infos, err := h.assignmentService.PendingRequests(c.Request.Context(), caller.Email)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, infos)
}

// Respond accepts or rejects a pending assignment request
// @Summary Respond to an assignment request
// @Description Accept or reject a pending request addressed to the calling doctor
// @Tags assignments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.RespondAssignmentRequest true "Response"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /assignments/respond [post]
func (h *AssignmentHandler) Respond(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: "Principal not found in context",
		})
		return
	}

	var req dto.RespondAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	if err := h.assignmentService.Respond(c.Request.Context(), caller.Email, req.RequestID, req.Action); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "Request " + req.Action + "ed",
	})
}

// ListPatients lists the calling doctor's assigned patients
// @Summary List assigned patients
// @Description List patients currently assigned to the calling doctor
// @Tags assignments
// @Security BearerAuth
// @Produce json
// @Success 200 {array} dto.PatientInfo
// @Failure 401 {object} dto.ErrorResponse
// @Router /patients [get]
func (h *AssignmentHandler) ListPatients(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: "Principal not found in context",
		})
		return
	}

	patients, err := h.assignmentService.ListPatients(c.Request.Context(), caller.Email)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	infos := make([]dto.PatientInfo, 0, len(patients))
	for _, patient := range patients {
		infos = append(infos, dto.PatientInfo{
			FullName: patient.FullName,
			Email:    patient.Email,
		})
	}

	c.JSON(http.StatusOK, infos)
}

// Unassign breaks an active assignment
// @Summary Unassign a patient
// @Description Detach a patient from their doctor
// @Tags assignments
// @Security BearerAuth
// @Produce json
// @Param patient query string false "Patient email (doctor callers only)"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /assignments [delete]
func (h *AssignmentHandler) Unassign(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: "Principal not found in context",
		})
		return
	}

	if err := h.assignmentService.Unassign(c.Request.Context(), caller, c.Query("patient")); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "Assignment removed",
	})
}
