package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nmezhoud/healthlink/internal/dto"
	"github.com/nmezhoud/healthlink/internal/repository"
	"github.com/nmezhoud/healthlink/internal/service"
)

// respondServiceError maps service sentinel errors to HTTP statuses. Caller
// faults map to 4xx, provider and upstream faults to 502/504, anything
// unclassified to 500.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidState), errors.Is(err, service.ErrMissingParameter):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Bad request",
			Message: err.Error(),
		})
	case errors.Is(err, service.ErrForbidden), errors.Is(err, service.ErrFederatedAccount):
		c.JSON(http.StatusForbidden, dto.ErrorResponse{
			Error:   "Forbidden",
			Message: err.Error(),
		})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error:   "Not found",
			Message: err.Error(),
		})
	case errors.Is(err, service.ErrTokenExchange),
		errors.Is(err, service.ErrIdentityResolution),
		errors.Is(err, service.ErrProvider),
		errors.Is(err, service.ErrUpstreamError):
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{
			Error:   "Bad gateway",
			Message: err.Error(),
		})
	case errors.Is(err, service.ErrUpstreamTimeout):
		c.JSON(http.StatusGatewayTimeout, dto.ErrorResponse{
			Error:   "Gateway timeout",
			Message: err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal server error",
			Message: err.Error(),
		})
	}
}
