package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ErrorResponse — тело ответа об ошибке, общее для всех эндпоинтов
type ErrorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, log *slog.Logger, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error("failed to encode response", slog.Any("error", err))
	}
}

func respondError(w http.ResponseWriter, log *slog.Logger, status int, message string) {
	respondJSON(w, log, status, ErrorResponse{Error: message})
}
