package ui

import (
	"net/http"

	"verisure/app"
	"verisure/internal/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusFor maps an error code to the HTTP status the console answers with
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.CodeUnauthorized:
		return http.StatusForbidden
	case errors.CodeInvalidInput,
		errors.CodeInsufficientData, errors.CodeMissingColumns, errors.CodeNoValidRows,
		errors.CodeNoRows, errors.CodeMissingFields, errors.CodeInvalidEmail:
		return http.StatusBadRequest
	case errors.CodeServerError, errors.CodeTransportError:
		return http.StatusBadGateway
	case errors.CodeBusy, errors.CodeNothingPending, errors.CodeCancelled:
		return http.StatusConflict
	case errors.CodeLocked:
		return http.StatusLocked
	default:
		return http.StatusInternalServerError
	}
}

// errorBody renders err as the notice the page shows, plus extra fields
func errorBody(err error, extra gin.H) gin.H {
	n := app.ErrorNotice(err)
	body := gin.H{
		"error":  n.Message,
		"code":   errors.GetCode(err),
		"title":  n.Title,
		"notice": n,
	}
	if fields := errors.FieldsOf(err); len(fields) > 0 {
		body["fields"] = fields
	}
	for k, v := range extra {
		body[k] = v
	}
	return body
}

func (s *Server) writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	_ = c.Error(err)
	c.JSON(status, errorBody(err, nil))
}
