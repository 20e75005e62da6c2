// Package response writes the JSON envelope every endpoint returns:
//
//	{"status": 200, "message": "...", "data": ..., "errors": ...}
//
// Failures additionally carry the error code and, for access-control
// denials, the route the caller should be sent to.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/shashiranjanraj/krishi/pkg/apperr"
	"github.com/shashiranjanraj/krishi/pkg/logger"
	"github.com/shashiranjanraj/krishi/pkg/orm"
)

// Envelope is the wire shape of every response.
type Envelope struct {
	Status   int    `json:"status"`
	Message  string `json:"message,omitempty"`
	Code     string `json:"code,omitempty"`
	Redirect string `json:"redirect,omitempty"`
	Data     any    `json:"data,omitempty"`
	Errors   any    `json:"errors,omitempty"`
}

// Write sends body with status.
func Write(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

// Success sends a 200 JSON response with data.
func Success(w http.ResponseWriter, data any) {
	Write(w, http.StatusOK, Envelope{Status: http.StatusOK, Data: data})
}

// Created sends a 201 JSON response with data.
func Created(w http.ResponseWriter, data any) {
	Write(w, http.StatusCreated, Envelope{Status: http.StatusCreated, Data: data})
}

// Message sends a 200 with only a message.
func Message(w http.ResponseWriter, msg string) {
	Write(w, http.StatusOK, Envelope{Status: http.StatusOK, Message: msg})
}

// Error sends a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	Write(w, status, Envelope{Status: status, Message: message})
}

// ValidationError sends a 422 with field-level error map.
func ValidationError(w http.ResponseWriter, errs map[string]string) {
	Write(w, http.StatusUnprocessableEntity, Envelope{
		Status:  http.StatusUnprocessableEntity,
		Message: "Validation failed",
		Code:    string(apperr.CodeInvalidInput),
		Errors:  errs,
	})
}

// Fail maps err onto the envelope. Unclassified errors are logged and
// reported as a bare 500.
func Fail(w http.ResponseWriter, r *http.Request, err error) {
	e, ok := apperr.As(err)
	if !ok {
		e = apperr.Server(err)
	}
	status := e.Status()
	if status >= http.StatusInternalServerError {
		logger.WithCtx(r.Context()).Error("request failed", "path", r.URL.Path, "error", err)
		Write(w, status, Envelope{Status: status, Message: "Internal server error", Code: string(e.Code)})
		return
	}
	body := Envelope{Status: status, Message: e.Message, Code: string(e.Code), Redirect: e.Redirect}
	if len(e.Fields) > 0 {
		body.Errors = e.Fields
	}
	Write(w, status, body)
}

// Paginated sends a 200 response with data and pagination metadata.
func Paginated(w http.ResponseWriter, data any, pagination orm.Pagination) {
	Success(w, map[string]any{
		"items":      data,
		"pagination": pagination,
	})
}

// Unauthorized sends a 401.
func Unauthorized(w http.ResponseWriter) {
	Write(w, http.StatusUnauthorized, Envelope{
		Status:   http.StatusUnauthorized,
		Message:  "Unauthorized",
		Code:     string(apperr.CodeInvalidOrExpiredToken),
		Redirect: "/login",
	})
}

// Forbidden sends a 403.
func Forbidden(w http.ResponseWriter) {
	Error(w, http.StatusForbidden, "Forbidden")
}

// NotFound sends a 404.
func NotFound(w http.ResponseWriter) {
	Error(w, http.StatusNotFound, "Not found")
}
