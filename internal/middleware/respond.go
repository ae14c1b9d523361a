package middleware

import (
	"encoding/json"
	"net/http"
)

// writeErrorEnvelope writes the API's standard failure envelope. Middleware
// rejections use the same shape as handler errors so clients parse one format.
func writeErrorEnvelope(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	body, err := json.Marshal(struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}{Success: false, Error: message})
	if err != nil {
		return
	}
	_, _ = w.Write(body)
}
