package respond

import (
	"encoding/json"
	"net/http"

	"github.com/hongminglow/users-api/internal/logger"
)

// Envelope is the standard API response wrapper used across handlers.
type Envelope struct {
	Description string `json:"description" example:"Successfully fetched all data!"`
	Data        any    `json:"data,omitempty"`
}

// JSON writes a success or informational response using the common envelope.
func JSON(w http.ResponseWriter, status int, description string, data any) {
	write(w, status, Envelope{Description: description, Data: data})
}

// Error writes an error response with the shared envelope structure.
func Error(w http.ResponseWriter, status int, description string) {
	write(w, status, Envelope{Description: description})
}

func write(w http.ResponseWriter, status int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Logger.Error().Err(err).Msg("respond: encode payload failed")
	}
}
