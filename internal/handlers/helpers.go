package handlers

import (
	"encoding/json"
	"net/http"
)

// RequireMethod reports whether r uses method, with HEAD accepted for GET.
// On a mismatch it has already answered 405 in the JSON error shape.
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method || (method == http.MethodGet && r.Method == http.MethodHead) {
		return true
	}
	w.Header().Set("Allow", method)
	WriteError(w, http.StatusMethodNotAllowed, r.Method+" is not supported here")
	return false
}

// WriteJSON sends data as the response body.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteError sends {"status":"error","error":message}, the shape every desk
// endpoint uses for failures.
func WriteError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, map[string]string{
		"status": "error",
		"error":  message,
	})
}
