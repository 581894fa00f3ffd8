package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Error codes returned in the "code" field of error bodies.
const (
	CodeBadRequest       = "bad_request"
	CodeValidation       = "validation_failed"
	CodeUnauthorized     = "unauthorized"
	CodeSignInRequired   = "sign_in_required"
	CodeForbidden        = "forbidden"
	CodeEmployerRequired = "employer_profile_required"
	CodeNotFound         = "not_found"
	CodeConflict         = "conflict"
	CodeTooMany          = "too_many_requests"
	CodeExternal         = "external_service_failure"
	CodeInternal         = "internal"
)

// AppError carries everything writeError needs to answer a failed request.
type AppError struct {
	Status  int
	Code    string
	Message string
	Err     error
	Details []string
	// Step is the wizard step the client should go back to, if any.
	Step *int
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

type errorBody struct {
	Error   string   `json:"error"`
	Code    string   `json:"code"`
	Details []string `json:"details,omitempty"`
	Step    *int     `json:"step,omitempty"`
}

func newError(status int, code, msg string, err error) *AppError {
	return &AppError{Status: status, Code: code, Message: msg, Err: err}
}

func badRequest(msg string) *AppError {
	return newError(http.StatusBadRequest, CodeBadRequest, msg, nil)
}

func notFound(msg string) *AppError {
	return newError(http.StatusNotFound, CodeNotFound, msg, nil)
}

func internal(err error) *AppError {
	return newError(http.StatusInternalServerError, CodeInternal, "internal server error", err)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", "err", err)
	}
}

// writeError answers with the AppError in err, or a 500 for anything else.
// Server errors are logged with their cause; the body never carries it.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = internal(err)
	}
	if appErr.Status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"code", appErr.Code,
			"err", appErr.Err,
		)
	}
	writeJSON(w, appErr.Status, errorBody{
		Error:   appErr.Message,
		Code:    appErr.Code,
		Details: appErr.Details,
		Step:    appErr.Step,
	})
}

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeAndValidate reads a JSON body into dst and runs its validate tags.
func decodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return badRequest("invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) *AppError {
	appErr := newError(http.StatusBadRequest, CodeValidation, "validation failed", nil)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			appErr.Details = append(appErr.Details, fieldMessage(fe))
		}
		return appErr
	}
	appErr.Details = []string{err.Error()}
	return appErr
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "oneof":
		return field + " must be one of: " + fe.Param()
	case "e164":
		return field + " must be in E.164 format"
	case "len":
		return field + " must be " + fe.Param() + " characters"
	case "numeric":
		return field + " must be numeric"
	}
	return field + " is invalid (" + fe.Tag() + ")"
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, newError(http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed", nil))
}

func routeNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, notFound("route not found"))
}
