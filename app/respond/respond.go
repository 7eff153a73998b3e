// Package respond writes the JSON envelope every endpoint answers with.
package respond

import (
	"errors"
	"io"
	"net/http"

	"pgfinder/pg-api/internal/apperr"
	"pgfinder/pg-api/pkg/middleware"
	"pgfinder/pg-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// OK writes a successful response. Empty msg and nil data are left out.
func OK(c *gin.Context, status int, msg string, data any) {
	body := gin.H{"success": true}
	if msg != "" {
		body["message"] = msg
	}
	if data != nil {
		body["data"] = data
	}

	c.JSON(status, body)
}

// Error maps err onto the error taxonomy. Internal errors are logged and
// only described to the client when dev is set.
func Error(c *gin.Context, err error, dev bool) {
	requestID := middleware.RequestID(c)
	status := apperr.Status(err)

	body := gin.H{
		"success":   false,
		"message":   apperr.Message(err),
		"requestID": requestID,
	}

	var verr *validators.ValidationError
	if errors.As(err, &verr) {
		body["message"] = "Validation failed"
		body["errors"] = verr.Fields
	}

	if status >= http.StatusInternalServerError {
		body["error"] = "Internal server error"
		if dev {
			body["error"] = err.Error()
		}

		zap.L().Error("Request failed", zap.Error(err), zap.String("requestID", requestID))
	}

	c.JSON(status, body)
}

// Bind decodes the JSON body into obj. Failures come back as a validation error.
func Bind(c *gin.Context, obj any) error {
	return validators.FromError(c.ShouldBindJSON(obj), false)
}

// Decode is Bind for inputs the service validates itself, so it can answer
// with its own messages. Only malformed JSON is rejected here.
func Decode(c *gin.Context, obj any) error {
	err := c.ShouldBindJSON(obj)

	var verrs validator.ValidationErrors
	if err == nil || errors.Is(err, io.EOF) || errors.As(err, &verrs) {
		return nil
	}

	return validators.FromError(err, false)
}
