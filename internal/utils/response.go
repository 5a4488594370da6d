package utils

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rohits-web03/otadash/internal/apperr"
	"github.com/rohits-web03/otadash/internal/logs"
)

type Payload struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Data    any              `json:"data,omitempty"`
	Error   *apperr.APIError `json:"error,omitempty"`
}

// JSONResponse sends a JSON response with given status, success flag, and payload
func JSONResponse(w http.ResponseWriter, status int, payload Payload) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// Success writes a 200 response carrying data.
func Success(w http.ResponseWriter, message string, data any) {
	JSONResponse(w, http.StatusOK, Payload{Success: true, Message: message, Data: data})
}

// WriteError converts err into an APIError response. Backend failures are logged.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := apperr.As(err)
	if id := RequestID(r.Context()); id != "" {
		apiErr = apiErr.WithRequestID(id)
	}
	if apiErr.Transient() {
		logs.Logger.WithError(err).WithField("request_id", apiErr.RequestID).
			Errorf("%s %s failed", r.Method, r.URL.Path)
	}
	JSONResponse(w, apiErr.Code, Payload{Success: false, Message: apiErr.Message, Error: apiErr})
}

type requestIDKey struct{}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
