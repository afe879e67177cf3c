package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bot608/duocortex-accounts-page/pkg/errors"
)

// respondError converts domain errors to HTTP responses. Backend-supplied
// messages are passed through so the UI can show them verbatim.
func respondError(c *gin.Context, err error) {
	var verrs *errors.ValidationErrors
	if errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "validation_failed",
			"error_description": "one or more fields are invalid",
			"fields":            verrs.Errors,
		})
		return
	}

	switch {
	case errors.Is(err, errors.ErrAccountSuspended):
		c.JSON(http.StatusForbidden, gin.H{
			"error":             "account_suspended",
			"error_description": errors.UserMessage(err, "Account suspended by admin"),
		})
	case errors.Is(err, errors.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":             "invalid_credentials",
			"error_description": errors.UserMessage(err, "invalid email or password"),
		})
	case errors.Is(err, errors.ErrInvalidToken), errors.Is(err, errors.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":             "unauthenticated",
			"error_description": "session is missing or no longer valid",
		})
	case errors.Is(err, errors.ErrOperationInProgress):
		c.JSON(http.StatusConflict, gin.H{
			"error":             "operation_in_progress",
			"error_description": "another authentication operation is running",
		})
	case errors.Is(err, errors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "validation_failed",
			"error_description": errors.UserMessage(err, "request rejected"),
		})
	case errors.Is(err, errors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":             "not_found",
			"error_description": "resource not found",
		})
	case errors.Is(err, errors.ErrNetwork):
		c.JSON(http.StatusBadGateway, gin.H{
			"error":             "backend_unavailable",
			"error_description": "the backend could not be reached",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":             "server_error",
			"error_description": "internal server error",
		})
	}
}

// respondBindError reports a malformed request body.
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":             "invalid_request",
		"error_description": err.Error(),
	})
}
