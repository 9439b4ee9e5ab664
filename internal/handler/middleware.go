package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nmezhoud/healthlink/internal/domain"
	"github.com/nmezhoud/healthlink/internal/dto"
	"github.com/nmezhoud/healthlink/internal/service"
)

const callerContextKey = "caller"

// AuthMiddleware validates the bearer token and adds the principal to context
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "Unauthorized",
				Message: "Authorization header is required",
			})
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "Unauthorized",
				Message: "Invalid authorization header format",
			})
			c.Abort()
			return
		}

		token := parts[1]

		claims, err := authService.ValidateToken(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "Unauthorized",
				Message: "Invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Set(callerContextKey, claims.Caller())
		c.Set("email", claims.Email)
		c.Set("claims", claims)

		c.Next()
	}
}

// RequireRole rejects callers whose role does not match. Must run after
// AuthMiddleware.
func RequireRole(role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := callerFromContext(c)
		if !ok || caller.Role != role {
			c.JSON(http.StatusForbidden, dto.ErrorResponse{
				Error:   "Forbidden",
				Message: "Insufficient permissions for this resource",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// callerFromContext returns the principal set by AuthMiddleware
func callerFromContext(c *gin.Context) (domain.Caller, bool) {
	value, exists := c.Get(callerContextKey)
	if !exists {
		return domain.Caller{}, false
	}
	caller, ok := value.(domain.Caller)
	return caller, ok
}
