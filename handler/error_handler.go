package handler

import (
	"errors"
	"log/slog"
	"maps"
	"net/http"
	"strings"

	"github.com/Sick-Day-Sports-Club/websitev1-sub000/pkg/logger"
	"github.com/Sick-Day-Sports-Club/websitev1-sub000/pkg/requestid"
)

// ErrorInfo contains classified error information.
type ErrorInfo struct {
	StatusCode int
	Code       string
	Message    string
	Details    map[string][]string
	LogLevel   slog.Level
}

// Classify maps err to a status code. HTTPError sets the status and key,
// ValidationError always yields 422 with field details, anything else is 500.
func Classify(err error) ErrorInfo {
	info := ErrorInfo{
		StatusCode: http.StatusInternalServerError,
		Code:       ErrInternalServerError.Key,
		Message:    "An error occurred processing your request",
	}

	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		info.StatusCode = httpErr.Code
		info.Code = httpErr.Key
		info.Message = http.StatusText(httpErr.Code)
	}

	var validationErr ValidationError
	if errors.As(err, &validationErr) {
		info.StatusCode = http.StatusUnprocessableEntity
		info.Code = "validation_error"
		info.Message = "Validation failed"
		info.Details = make(map[string][]string, len(validationErr))
		maps.Copy(info.Details, validationErr)
	}

	info.LogLevel = slog.LevelError
	if info.StatusCode < http.StatusInternalServerError {
		info.LogLevel = slog.LevelWarn
	}
	return info
}

// NewErrorHandler logs the error and renders it as a JSON envelope for API
// clients, or as plain text otherwise.
func NewErrorHandler(log *slog.Logger) ErrorHandler[Context] {
	if log == nil {
		log = slog.Default()
	}

	return func(ctx Context, err error) {
		r := ctx.Request()
		info := Classify(err)

		log.LogAttrs(r.Context(), info.LogLevel, "request error",
			logger.RequestID(requestid.FromContext(r.Context())),
			logger.Error(err),
			slog.Int("status_code", info.StatusCode),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			logger.Component("error_handler"),
		)

		if wantsJSON(r) {
			resp := jsonResponse{
				status: info.StatusCode,
				body: JSONResponse{Error: &ErrorDetail{
					Code:    info.Code,
					Message: info.Message,
					Details: info.Details,
				}},
			}
			if renderErr := resp.Render(ctx.ResponseWriter(), r); renderErr != nil {
				log.ErrorContext(r.Context(), "failed to render error response", logger.Error(renderErr))
			}
			return
		}

		http.Error(ctx.ResponseWriter(), info.Message, info.StatusCode)
	}
}

func wantsJSON(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/") ||
		strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}
