package handlers

import (
	"encoding/json"
	"net/http"

	"daycaremoments/internal/models"
	"daycaremoments/internal/pricing"
	"daycaremoments/internal/service"
)

type userDirectory interface {
	GetByOrganization(orgID string) ([]models.User, error)
	GetByID(id string) (*models.User, error)
	UpdateRole(id string, role models.Role) error
}

type tierUpdater interface {
	GetByID(id string) (*models.Organization, error)
	UpdateTier(id, tier string) error
}

// AdminHandler serves user administration, billing tier changes, and
// organization statistics.
type AdminHandler struct {
	authService *service.AuthService
	analytics   *service.AnalyticsService
	userRepo    userDirectory
	orgRepo     tierUpdater
}

func NewAdminHandler(authService *service.AuthService, analytics *service.AnalyticsService, userRepo userDirectory, orgRepo tierUpdater) *AdminHandler {
	return &AdminHandler{
		authService: authService,
		analytics:   analytics,
		userRepo:    userRepo,
		orgRepo:     orgRepo,
	}
}

// Users lists every user in the organization.
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	admin := GetUserFromContext(r.Context())

	users, err := h.userRepo.GetByOrganization(admin.OrganizationID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load users", "", err)
		return
	}

	views := make([]map[string]interface{}, 0, len(users))
	for _, u := range users {
		views = append(views, userView(&u))
	}
	respondJSON(w, http.StatusOK, views)
}

type createStaffRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// CreateStaff creates a staff account with a generated temporary password.
func (h *AdminHandler) CreateStaff(w http.ResponseWriter, r *http.Request) {
	admin := GetUserFromContext(r.Context())

	var req createStaffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	user, tempPassword, err := h.authService.CreateStaffUser(req.Email, req.Name, admin.OrganizationID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"user":          userView(user),
		"temp_password": tempPassword,
	})
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

// UpdateRole changes a user's role within the organization.
func (h *AdminHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	admin := GetUserFromContext(r.Context())
	userID := r.PathValue("id")

	var req updateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	role, err := models.ParseRole(req.Role)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Unknown role", "", err)
		return
	}
	if userID == admin.ID {
		respondWithError(w, http.StatusBadRequest, "You cannot change your own role", "", nil)
		return
	}

	target, err := h.userRepo.GetByID(userID)
	if err != nil || target == nil || target.OrganizationID != admin.OrganizationID {
		respondWithError(w, http.StatusNotFound, "User not found", "", err)
		return
	}

	if err := h.userRepo.UpdateRole(userID, role); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to update role", "", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated", "role": string(role)})
}

// Stats returns counts across children, photos, activities, and users.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	admin := GetUserFromContext(r.Context())

	stats, err := h.analytics.Stats(admin.OrganizationID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load statistics", "", err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// Tiers lists the available pricing tiers, cheapest first.
func (h *AdminHandler) Tiers(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, pricing.All())
}

type updateTierRequest struct {
	Tier string `json:"tier"`
}

// UpdateTier switches the organization to a different pricing tier.
func (h *AdminHandler) UpdateTier(w http.ResponseWriter, r *http.Request) {
	admin := GetUserFromContext(r.Context())

	var req updateTierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	tier, err := pricing.Get(req.Tier)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Unknown pricing tier", "", err)
		return
	}

	if err := h.orgRepo.UpdateTier(admin.OrganizationID, tier.Name); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to update tier", "", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated", "tier": tier.Name})
}
