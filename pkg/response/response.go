package response

import (
	"net/http"

	"anoa.com/recipehub/pkg/apperror"
	"anoa.com/recipehub/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Success writes {"status":"OK","message":...,"data":...}. Empty message and nil data are omitted.
func Success(c *gin.Context, code int, message string, data any) {
	body := gin.H{"status": "OK"}
	if message != "" {
		body["message"] = message
	}
	if data != nil {
		body["data"] = data
	}
	c.JSON(code, body)
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	if code == http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Str("request_id", c.GetString("request_id")).
			Msg("internal error")
	}

	c.JSON(code, gin.H{
		"status":  "error",
		"kind":    apperror.KindName(err),
		"message": apperror.PublicMessage(err),
	})
}

// AbortWithError writes the error envelope and stops the handler chain.
func AbortWithError(c *gin.Context, err error) {
	ResponseError(c, err)
	c.Abort()
}

// BindError reports a request binding failure as a validation error.
func BindError(c *gin.Context, err error) {
	ResponseError(c, apperror.Wrap(apperror.ErrValidation, validator.FormatValidationError(err), err))
}
