package handlers

import (
	"encoding/json"
	"net/http"

	"daycaremoments/internal/service"
)

// VoiceHandler serves automated summary calls and voice room access tokens.
type VoiceHandler struct {
	voiceService *service.VoiceService
}

func NewVoiceHandler(voiceService *service.VoiceService) *VoiceHandler {
	return &VoiceHandler{voiceService: voiceService}
}

type summaryCallRequest struct {
	ChildID string `json:"child_id"`
}

// CallDailySummary places an outbound call reading the child's day to the
// parent's phone.
func (h *VoiceHandler) CallDailySummary(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req summaryCallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	if err := h.voiceService.CallDailySummary(r.Context(), req.ChildID, user.OrganizationID, requesterParentID(user)); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "call placed"})
}

// RoomToken issues a short-lived token letting a parent join a voice room
// about their own child.
func (h *VoiceHandler) RoomToken(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	childID := r.PathValue("id")

	token, err := h.voiceService.RoomToken(user.ID, childID, user.OrganizationID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"token": token})
}
