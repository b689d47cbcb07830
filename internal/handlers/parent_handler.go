package handlers

import (
	"net/http"
	"time"

	"daycaremoments/internal/models"
	"daycaremoments/internal/service"
)

// ParentHandler serves the parent-facing gallery and daily summary.
type ParentHandler struct {
	photoService    *service.PhotoService
	activityService *service.ActivityService
	analytics       *service.AnalyticsService
	childRepo       childLister
}

// childLister is the slice of the child repository the parent handler needs.
type childLister interface {
	GetByOrganization(orgID string) ([]models.Child, error)
	GetByParent(parentID, orgID string) ([]models.Child, error)
	GetByID(id, orgID string) (*models.Child, error)
}

func NewParentHandler(photoService *service.PhotoService, activityService *service.ActivityService, analytics *service.AnalyticsService, childRepo childLister) *ParentHandler {
	return &ParentHandler{
		photoService:    photoService,
		activityService: activityService,
		analytics:       analytics,
		childRepo:       childRepo,
	}
}

// Children lists the parent's own children.
func (h *ParentHandler) Children(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	children, err := h.childRepo.GetByParent(user.ID, user.OrganizationID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load children", "", err)
		return
	}

	views := make([]map[string]interface{}, 0, len(children))
	for _, c := range children {
		views = append(views, childView(&c))
	}
	respondJSON(w, http.StatusOK, views)
}

// Gallery lists approved photos of the parent's children.
func (h *ParentHandler) Gallery(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	photos, err := h.photoService.GalleryForParent(user.ID, user.OrganizationID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load gallery", "", err)
		return
	}

	views := make([]map[string]interface{}, 0, len(photos))
	for _, p := range photos {
		views = append(views, photoView(&p))
	}
	respondJSON(w, http.StatusOK, views)
}

// DailySummary returns the narrative summary of a child's day. Parents can
// only ask about their own children.
func (h *ParentHandler) DailySummary(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	childID := r.PathValue("id")

	if !h.ownsChild(w, user, childID) {
		return
	}

	summary, err := h.analytics.DailySummary(r.Context(), childID, user.OrganizationID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"summary": summary})
}

// ChildActivities lists today's activities for one of the parent's children.
func (h *ParentHandler) ChildActivities(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	childID := r.PathValue("id")

	if !h.ownsChild(w, user, childID) {
		return
	}

	activities, err := h.activityService.Today(childID, user.OrganizationID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load activities", "", err)
		return
	}

	views := make([]map[string]interface{}, 0, len(activities))
	for _, a := range activities {
		views = append(views, activityView(&a))
	}
	respondJSON(w, http.StatusOK, views)
}

// ownsChild verifies the child exists and belongs to this parent. Staff and
// admins pass for any child in their organization.
func (h *ParentHandler) ownsChild(w http.ResponseWriter, user *models.User, childID string) bool {
	child, err := h.childRepo.GetByID(childID, user.OrganizationID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load child", "", err)
		return false
	}
	if child == nil {
		respondWithError(w, http.StatusNotFound, "Child not found", "", nil)
		return false
	}
	if user.Role == models.RoleParent && child.ParentID != user.ID {
		respondWithError(w, http.StatusNotFound, "Child not found", "", nil)
		return false
	}
	return true
}

func childView(c *models.Child) map[string]interface{} {
	return map[string]interface{}{
		"id":             c.ID,
		"name":           c.Name,
		"date_of_birth":  c.DateOfBirth.Format("2006-01-02"),
		"enrolled_faces": len(c.FaceEncodings),
	}
}

func photoView(p *models.Photo) map[string]interface{} {
	return map[string]interface{}{
		"id":            p.ID,
		"url":           p.URL,
		"caption":       p.Caption,
		"status":        string(p.Status),
		"activity_type": p.ActivityType,
		"mood":          p.Mood,
		"description":   p.AIDescription,
		"child_id":      p.ChildID,
		"captured_at":   p.CapturedAt.Format(time.RFC3339),
		"uploaded_at":   p.UploadedAt.Format(time.RFC3339),
	}
}

func activityView(a *models.Activity) map[string]interface{} {
	return map[string]interface{}{
		"id":               a.ID,
		"child_id":         a.ChildID,
		"type":             a.Type,
		"mood":             a.Mood,
		"notes":            a.Notes,
		"started_at":       a.StartedAt.Format(time.RFC3339),
		"duration_minutes": a.DurationMinutes,
	}
}
