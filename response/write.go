package response

import (
	"encoding/json"
	"net/http"
	"time"
)

type errorEnvelope struct {
	Success   bool   `json:"success"`
	Timestamp string `json:"timestamp"`
	*Error
}

// WriteError renders e as a JSON error envelope
func WriteError(w http.ResponseWriter, r *http.Request, e *Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	json.NewEncoder(w).Encode(errorEnvelope{
		Success:   false,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Error:     e,
	})
}

// WriteResponse renders result as JSON with status 200
func WriteResponse(w http.ResponseWriter, r *http.Request, result interface{}) {
	WriteResponseStatus(w, r, http.StatusOK, result)
}

// WriteResponseStatus renders result as JSON with the given status
func WriteResponseStatus(w http.ResponseWriter, r *http.Request, status int, result interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(result)
}

// WriteText renders a plain-text body. Used by the webhook endpoint whose caller only
// inspects the status code.
func WriteText(w http.ResponseWriter, r *http.Request, status int, body string, headers map[string]string) {
	for k, v := range headers {
		w.Header().Set(k, v)
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

// WriteErrorText renders e as plain text
func WriteErrorText(w http.ResponseWriter, r *http.Request, e *Error) {
	WriteText(w, r, e.StatusCode, e.Message, nil)
}

// Envelope is the success body shared by the JSON endpoints
type Envelope map[string]interface{}

// OK returns a success envelope with message and any extra fields
func OK(message string, fields Envelope) Envelope {
	env := Envelope{
		"success": true,
	}
	if message != "" {
		env["message"] = message
	}
	for k, v := range fields {
		env[k] = v
	}
	return env
}
