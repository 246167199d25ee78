package middleware

import (
	"encoding/json"
	"net/http"
)

// writeError mirrors the handlers' {"error": ...} body so clients see one shape
func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
