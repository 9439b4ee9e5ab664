package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nmezhoud/healthlink/internal/dto"
	"github.com/nmezhoud/healthlink/internal/service"
)

// VitalsHandler serves vitals snapshots and heart-rate predictions. Every
// request is resolved through the access gate first.
type VitalsHandler struct {
	gate              *service.AccessGate
	vitalsService     service.VitalsService
	predictionService service.PredictionService
}

// NewVitalsHandler creates a new vitals handler
func NewVitalsHandler(
	gate *service.AccessGate,
	vitalsService service.VitalsService,
	predictionService service.PredictionService,
) *VitalsHandler {
	return &VitalsHandler{
		gate:              gate,
		vitalsService:     vitalsService,
		predictionService: predictionService,
	}
}

// GetVitals fetches and returns a fresh vitals snapshot
// @Summary Fetch vitals
// @Description Query the provider for the trailing day and return the snapshot
// @Tags vitals
// @Security BearerAuth
// @Produce json
// @Param patient query string false "Patient email (doctor callers only)"
// @Success 200 {object} domain.VitalsSnapshot
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /vitals [get]
func (h *VitalsHandler) GetVitals(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: "Principal not found in context",
		})
		return
	}

	target, err := h.gate.ResolveTarget(c.Request.Context(), caller, c.Query("patient"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	snapshot, err := h.vitalsService.Fetch(c.Request.Context(), target.Email)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// GetPrediction relays the patient's heart-rate history to the prediction
// endpoint and returns its response verbatim
// @Summary Heart-rate prediction
// @Description Forward stored heart-rate history to the prediction model
// @Tags vitals
// @Security BearerAuth
// @Produce json
// @Param patient query string false "Patient email (doctor callers only)"
// @Success 200 {object} object
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Failure 504 {object} dto.ErrorResponse
// @Router /vitals/prediction [get]
func (h *VitalsHandler) GetPrediction(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: "Principal not found in context",
		})
		return
	}

	target, err := h.gate.ResolveTarget(c.Request.Context(), caller, c.Query("patient"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	prediction, err := h.predictionService.Predict(c.Request.Context(), target.Email)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json", prediction)
}
