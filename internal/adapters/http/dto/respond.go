package dto

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quotebox/internal/domain"
	"github.com/jsamuelsen/quotebox/internal/platform/logging"
)

// ContextKeyTraceID lets middleware override the trace id reported in
// error envelopes.
const ContextKeyTraceID = "trace_id"

const headerRequestID = "X-Request-ID"

const internalErrorMessage = "an internal error occurred"

// GetTraceID returns the id clients should quote when reporting an error:
// the active otel trace id, then a trace id stored on the gin context, then
// the request id header.
func GetTraceID(c *gin.Context) string {
	if sc := trace.SpanFromContext(c.Request.Context()).SpanContext(); sc.HasTraceID() {
		return sc.TraceID().String()
	}

	if v, ok := c.Get(ContextKeyTraceID); ok {
		s, _ := v.(string)
		return s
	}

	return c.GetHeader(headerRequestID)
}

// MapDomainError maps a domain error to an HTTP status and envelope.
// Unknown errors become a generic 500 so internals do not leak.
func MapDomainError(err error) (int, *ErrorResponse) {
	switch {
	case domain.IsNotFound(err), domain.IsEmptyCorpus(err):
		return http.StatusNotFound, NewErrorResponse(ErrorCodeNotFound, err.Error())

	case domain.IsConflict(err):
		return http.StatusConflict, NewErrorResponse(ErrorCodeConflict, err.Error())

	case domain.IsValidation(err):
		return http.StatusBadRequest, NewErrorResponseWithDetails(ErrorCodeValidation, err.Error(), validationDetails(err))

	case domain.IsUnavailable(err):
		return http.StatusServiceUnavailable, NewErrorResponse(ErrorCodeUnavailable, err.Error())

	default:
		return http.StatusInternalServerError, NewErrorResponse(ErrorCodeInternal, internalErrorMessage)
	}
}

func validationDetails(err error) map[string]string {
	var many *domain.ValidationErrors
	if errors.As(err, &many) {
		details := make(map[string]string)
		for field, msgs := range many.FieldErrors() {
			details[field] = strings.Join(msgs, "; ")
		}

		if nonField := many.NonFieldErrors(); len(nonField) > 0 {
			details[NonFieldDetailsKey] = strings.Join(nonField, "; ")
		}

		return details
	}

	var one *domain.ValidationError
	if errors.As(err, &one) {
		if one.Field == "" {
			return map[string]string{NonFieldDetailsKey: one.Message}
		}

		return map[string]string{one.Field: one.Message}
	}

	return nil
}

// HandleError writes the envelope for err. 5xx errors are logged with the
// request-scoped logger.
func HandleError(c *gin.Context, err error) {
	status, resp := MapDomainError(err)
	resp.TraceID = GetTraceID(c)

	if status >= http.StatusInternalServerError {
		logging.FromContext(c.Request.Context()).ErrorContext(c.Request.Context(), "request failed",
			slog.Int("status", status),
			slog.Any("error", err),
			slog.String("trace_id", resp.TraceID),
		)
	}

	c.JSON(status, resp)
}

// RespondWithErrorCode writes an adapter-level error such as a malformed
// path parameter.
func RespondWithErrorCode(c *gin.Context, code, message string) {
	c.JSON(HTTPStatusFromCode(code), NewErrorResponse(code, message).WithTraceID(GetTraceID(c)))
}

// RespondWithBindingError writes a 400 with per-field messages taken from a
// validator error, or the raw binding message.
func RespondWithBindingError(c *gin.Context, err error) {
	details := ValidationErrors(err)
	if len(details) == 0 {
		RespondWithErrorCode(c, ErrorCodeBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusBadRequest,
		NewErrorResponseWithDetails(ErrorCodeValidation, "request validation failed", details).
			WithTraceID(GetTraceID(c)))
}

// AbortWithErrorCode stops the handler chain with an error envelope. If the
// body is already written only the abort happens.
func AbortWithErrorCode(c *gin.Context, code, message string) {
	if c.Writer.Written() {
		c.Abort()
		return
	}

	c.AbortWithStatusJSON(HTTPStatusFromCode(code), NewErrorResponse(code, message).WithTraceID(GetTraceID(c)))
}
