package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	json "github.com/goccy/go-json"
)

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Success   bool           `json:"success"`
	Message   string         `json:"message"`
	Code      string         `json:"code,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"requestId,omitempty"`
	// Error carries the underlying failure outside production only.
	Error string `json:"error,omitempty"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code string, message string, details map[string]any) {
	er := errorResponse{
		Message:   message,
		Code:      code,
		Details:   details,
		RequestID: middleware.GetReqID(r.Context()),
	}
	writeJSON(w, status, er)
}

// writeInternalError answers a store or unexpected failure with a fixed message. The
// cause is logged by the caller and only echoed to the client outside production.
func (s *Server) writeInternalError(w http.ResponseWriter, r *http.Request, message string, err error) {
	er := errorResponse{
		Message:   message,
		Code:      "INTERNAL",
		RequestID: middleware.GetReqID(r.Context()),
	}
	if !s.Production && err != nil {
		er.Error = err.Error()
	}
	writeJSON(w, http.StatusInternalServerError, er)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("encode response"))
		return
	}
	writeRawJSON(w, status, b)
}

func writeRawJSON(w http.ResponseWriter, status int, b []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
	_, _ = w.Write([]byte("\n"))
}
