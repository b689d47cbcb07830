package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"daycaremoments/internal/models"
	"daycaremoments/internal/service"
)

// ChatHandler serves the AI chat assistant for parents asking about their
// child's day.
type ChatHandler struct {
	chatService *service.ChatService
}

func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

type chatRequest struct {
	ChildID  string `json:"child_id"`
	Question string `json:"question"`
}

// requesterParentID returns the ID to enforce child ownership with. Staff
// and admins may ask about any child in the organization.
func requesterParentID(user *models.User) string {
	if user.Role == models.RoleParent {
		return user.ID
	}
	return ""
}

// Ask answers a question about a child in a single response.
func (h *ChatHandler) Ask(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	reply, err := h.chatService.Chat(r.Context(), req.ChildID, user.OrganizationID, requesterParentID(user), req.Question)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

// Stream answers a question as server-sent events, one data line per chunk,
// finishing with a "done" event.
func (h *ChatHandler) Stream(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "Streaming not supported", "", nil)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	err := h.chatService.StreamChat(r.Context(), req.ChildID, user.OrganizationID, requesterParentID(user), req.Question, func(delta string) error {
		data, mErr := json.Marshal(map[string]string{"delta": delta})
		if mErr != nil {
			return mErr
		}
		if _, wErr := fmt.Fprintf(w, "data: %s\n\n", data); wErr != nil {
			return wErr
		}
		flusher.Flush()
		return nil
	})
	if err != nil {
		// Headers are already sent, so signal the failure in-band.
		fmt.Fprintf(w, "event: error\ndata: %q\n\n", err.Error())
		flusher.Flush()
		log.Printf("chat stream failed: %v", err)
		return
	}

	fmt.Fprint(w, "event: done\ndata: {}\n\n")
	flusher.Flush()
}
