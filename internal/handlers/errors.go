package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"daycaremoments/internal/service"
	"daycaremoments/internal/validation"
)

func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Printf("%s: %v", logMsg, err)
	}

	respondJSON(w, status, map[string]string{"error": userMsg})
}

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		if err := json.NewEncoder(w).Encode(body); err != nil {
			log.Printf("failed to encode response: %v", err)
		}
	}
}

// respondServiceError maps service-layer errors onto HTTP statuses:
// validation problems are 4xx with the message passed through, quota and
// feature errors get their own statuses, everything else is a 500 with a
// generic message.
func respondServiceError(w http.ResponseWriter, err error) {
	var validationErr validation.ValidationError
	switch {
	case errors.As(err, &validationErr):
		respondJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error": validationErr.Message,
			"field": validationErr.Field,
		})
	case errors.Is(err, service.ErrEmailTaken):
		respondWithError(w, http.StatusConflict, "Email is already in use", "", nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		respondWithError(w, http.StatusUnauthorized, "Invalid email or password", "", nil)
	case errors.Is(err, service.ErrPhotoNotFound):
		respondWithError(w, http.StatusNotFound, "Photo not found", "", nil)
	case errors.Is(err, service.ErrPhotoTooLarge):
		respondWithError(w, http.StatusRequestEntityTooLarge, "Photo exceeds the size limit", "", nil)
	case errors.Is(err, service.ErrPhotoQuotaReached),
		errors.Is(err, service.ErrChatQuotaReached),
		errors.Is(err, service.ErrChildQuotaReached):
		respondWithError(w, http.StatusForbidden, err.Error(), "", nil)
	case errors.Is(err, service.ErrFeatureDisabled):
		respondWithError(w, http.StatusForbidden, "This feature is not enabled", "", nil)
	default:
		respondWithError(w, http.StatusInternalServerError, "Something went wrong", "request failed", err)
	}
}
