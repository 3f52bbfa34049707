package middleware

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/temcen/movierec/internal/validation"
)

// ValidationMiddleware checks request bodies against JSON schemas
type ValidationMiddleware struct {
	validator *validation.SchemaValidator
}

func NewValidationMiddleware(validator *validation.SchemaValidator) *ValidationMiddleware {
	return &ValidationMiddleware{
		validator: validator,
	}
}

// ValidateRating validates rating submissions
func (vm *ValidationMiddleware) ValidateRating() gin.HandlerFunc {
	return vm.validateRequestBody(validation.RatingSchema)
}

func (vm *ValidationMiddleware) validateRequestBody(schemaName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodDelete {
			c.Next()
			return
		}

		bodyBytes, err := io.ReadAll(c.Request.Body)
		if err != nil {
			vm.sendValidationError(c, "INVALID_REQUEST", "Failed to read request body", nil)
			return
		}

		// Restore request body for downstream handlers
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		if len(bytes.TrimSpace(bodyBytes)) == 0 {
			vm.sendValidationError(c, "INVALID_REQUEST", "Request body is required", nil)
			return
		}

		result := vm.validator.ValidateJSONString(schemaName, string(bodyBytes))
		if !result.Valid {
			for _, e := range result.Errors {
				if e.Code == "INVALID_JSON" {
					vm.sendValidationError(c, "INVALID_REQUEST", "Request body must be valid JSON", nil)
					return
				}
			}
			vm.sendValidationError(c, "VALIDATION_FAILED", "Request validation failed", gin.H{
				"validationErrors": result.Errors,
				"fieldErrors":      result.FieldErrors(),
			})
			return
		}

		c.Next()
	}
}

func (vm *ValidationMiddleware) sendValidationError(c *gin.Context, code, message string, details gin.H) {
	body := gin.H{
		"code":      code,
		"message":   message,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"requestId": GetRequestID(c),
		"path":      c.Request.URL.Path,
		"method":    c.Request.Method,
	}
	if details != nil {
		body["details"] = details
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": body})
}
