package enroll

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
)

// APIResponse is the uniform envelope every operation returns. StatusCode is
// authoritative for the transport-level status.
type APIResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Data       any    `json:"data"`
	StatusCode int    `json:"status_code"`
}

// SuccessResponse builds a success envelope. Data may be nil.
func SuccessResponse(message string, data any) APIResponse {
	return APIResponse{
		Success:    true,
		Message:    message,
		Data:       data,
		StatusCode: http.StatusOK,
	}
}

// ErrorResponse builds a failure envelope with a nil data payload.
func ErrorResponse(message string, code int) APIResponse {
	return APIResponse{
		Success:    false,
		Message:    message,
		Data:       nil,
		StatusCode: code,
	}
}

// ValidationErrorResponse carries field-level messages in place of a single
// message string.
func ValidationErrorResponse(fields map[string]string) APIResponse {
	return APIResponse{
		Success:    false,
		Message:    "validation failed",
		Data:       fields,
		StatusCode: http.StatusBadRequest,
	}
}

// EnvelopeFromError maps a handler error to the envelope, using the error's
// category when it carries one. fallback is the status used for untagged
// errors.
func EnvelopeFromError(err error, fallback int) APIResponse {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ErrorResponse(richErr.Message, statusFromCategory(richErr.Category, fallback))
	}
	return ErrorResponse(err.Error(), fallback)
}

func statusFromCategory(category goerrors.Category, fallback int) int {
	switch category {
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		return http.StatusBadRequest
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryConflict, goerrors.CategoryInternal, goerrors.CategoryOperation:
		return http.StatusInternalServerError
	default:
		return fallback
	}
}

// FormatValidationErrorToMap flattens an ozzo validation error into
// field -> message pairs for the envelope's data payload.
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}
	if err == nil {
		return out
	}

	if fields, ok := err.(validation.Errors); ok {
		for name, ferr := range fields {
			if ferr != nil {
				out[name] = ferr.Error()
			}
		}
		return out
	}

	out["error"] = err.Error()
	return out
}
