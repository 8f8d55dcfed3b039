package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/ginvite/ginvite-api/internal/platform/requestctx"
)

const (
	maxCodeLen    = 80
	maxMessageLen = 512
	maxIDLen      = 80
)

// reserved envelope keys that details may not override.
var reservedKeys = map[string]struct{}{
	"error":      {},
	"message":    {},
	"status":     {},
	"request_id": {},
	"trace_id":   {},
}

// Error is the JSON error envelope. Request and trace ids are taken from the request
// context when the envelope is written.
type Error struct {
	Code    string
	Message string
	Status  int
	Details map[string]any
}

// NewError builds an envelope; a zero status means 500.
func NewError(code, message string, status int) Error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return Error{
		Code:    clean(code, maxCodeLen),
		Message: clean(message, maxMessageLen),
		Status:  status,
	}
}

// BadRequest is a shorthand for a 400 envelope.
func BadRequest(code, message string) Error {
	return NewError(code, message, http.StatusBadRequest)
}

// WithDetails returns a copy of e carrying extra top-level fields.
func (e Error) WithDetails(details map[string]any) Error {
	if len(details) == 0 {
		return e
	}
	merged := make(map[string]any, len(e.Details)+len(details))
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	e.Details = merged
	return e
}

func (e Error) payload(ctx context.Context) map[string]any {
	out := make(map[string]any, len(e.Details)+5)
	for k, v := range e.Details {
		if _, taken := reservedKeys[k]; !taken {
			out[k] = v
		}
	}
	out["error"] = e.Code
	out["message"] = e.Message
	out["status"] = e.Status
	if id := clean(middleware.GetReqID(ctx), maxIDLen); id != "" {
		out["request_id"] = id
	}
	if id := clean(requestctx.TraceID(ctx), maxIDLen); id != "" {
		out["trace_id"] = id
	}
	return out
}

// WriteError writes err as the response.
func WriteError(ctx context.Context, w http.ResponseWriter, err Error) {
	if err.Status == 0 {
		err.Status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Status)
	_ = json.NewEncoder(w).Encode(err.payload(ctx))
}

// WriteJSON encodes payload as the JSON response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// clean flattens line breaks and bounds the value to limit bytes.
func clean(value string, limit int) string {
	value = strings.TrimSpace(strings.NewReplacer("\r", " ", "\n", " ").Replace(value))
	if len(value) > limit {
		value = value[:limit]
	}
	return value
}
