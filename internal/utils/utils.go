package utils

import (
	"encoding/json"
	"net/http"

	"github.com/grvbrk/videotube_server/internal/apperror"
	"golang.org/x/exp/slog"
)

type Envelope map[string]interface{}

// WriteJSON writes data as indented JSON. Failures are reported on logger,
// or on the default logger when logger is nil.
func WriteJSON(w http.ResponseWriter, logger *slog.Logger, status int, data Envelope) {
	if logger == nil {
		logger = slog.Default()
	}

	js, err := json.MarshalIndent(data, "", " ")
	if err != nil {
		logger.Error("error marshaling JSON", "err", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	js = append(js, '\n')
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if _, err := w.Write(js); err != nil {
		logger.Error("error writing JSON response", "err", err)
	}
}

// WriteSuccess writes the standard success envelope.
func WriteSuccess(w http.ResponseWriter, logger *slog.Logger, status int, data interface{}, message string) {
	WriteJSON(w, logger, status, Envelope{
		"status":  status,
		"data":    data,
		"message": message,
		"success": true,
	})
}

// WriteError maps err to its HTTP status and writes the error envelope.
// Internal details never reach the client.
func WriteError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := apperror.StatusCode(err)
	WriteJSON(w, logger, status, Envelope{
		"status":  status,
		"message": apperror.PublicMessage(err),
		"success": false,
	})
}
