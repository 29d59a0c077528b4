package handlers

import (
	"encoding/json"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError surfaces the innermost collaborator's error text verbatim.
// Every failure kind maps to 500; the frontend only distinguishes by text.
func writeError(w http.ResponseWriter, message string, err error) {
	writeJSON(w, http.StatusInternalServerError, map[string]any{
		"success": false,
		"error":   message,
		"details": err.Error(),
	})
}
