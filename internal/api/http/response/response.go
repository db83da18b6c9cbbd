// Package response writes the JSON envelope shared by every endpoint.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/authflow-server/internal/model"
)

// Success is the envelope of a successful response.
type Success struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Message string `json:"message"`
}

// Failure is the envelope of a failed response.
type Failure struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

// OK writes data with the given status.
func OK(c *gin.Context, status int, data any, message string) {
	c.JSON(status, Success{Success: true, Data: data, Message: message})
}

// Error writes a failure envelope and aborts the chain.
func Error(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Failure{Error: message})
}

// Invalid writes a 400 with per field validation details.
func Invalid(c *gin.Context, message string, details map[string]string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, Failure{Error: message, Details: details})
}

// FromError writes err using its kind to pick the status code.
func FromError(c *gin.Context, err error) {
	Error(c, StatusFor(model.KindOf(err)), model.PublicMessage(err))
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind model.ErrorKind) int {
	switch kind {
	case model.KindAlreadyExists:
		return http.StatusConflict
	case model.KindInvalidCredentials, model.KindInvalidToken:
		return http.StatusUnauthorized
	case model.KindInvalidCurrentPassword, model.KindInvalidArgument:
		return http.StatusBadRequest
	case model.KindNotFound:
		return http.StatusNotFound
	case model.KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
