package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"daycaremoments/internal/models"
	"daycaremoments/internal/provider/llm"
	"daycaremoments/internal/repository"
	"daycaremoments/internal/validation"
)

// AnalyticsService produces the per-child daily summary and the admin
// dashboard numbers.
type AnalyticsService struct {
	childRepo    *repository.ChildRepository
	photoRepo    *repository.PhotoRepository
	activityRepo *repository.ActivityRepository
	userRepo     *repository.UserRepository
	llm          llm.Client
}

func NewAnalyticsService(childRepo *repository.ChildRepository, photoRepo *repository.PhotoRepository, activityRepo *repository.ActivityRepository, userRepo *repository.UserRepository, llmClient llm.Client) *AnalyticsService {
	return &AnalyticsService{
		childRepo:    childRepo,
		photoRepo:    photoRepo,
		activityRepo: activityRepo,
		userRepo:     userRepo,
		llm:          llmClient,
	}
}

// DailySummary writes a short narrative of the child's day from the activity
// log. When the LLM fails, a plain factual summary is returned instead.
func (s *AnalyticsService) DailySummary(ctx context.Context, childID, orgID string) (string, error) {
	child, err := s.childRepo.GetByID(childID, orgID)
	if err != nil {
		return "", fmt.Errorf("failed to get child: %w", err)
	}
	if child == nil {
		return "", validation.ValidationError{Field: "child_id", Message: "child not found"}
	}

	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	activities, err := s.activityRepo.GetByChildSince(childID, orgID, midnight)
	if err != nil {
		return "", fmt.Errorf("failed to get activities: %w", err)
	}

	factual := factualSummary(child.Name, activities)
	if s.llm == nil {
		return factual, nil
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: "You summarize a daycare child's day for their parent in two warm sentences. Use only the facts given."},
		{Role: llm.RoleUser, Content: factual},
	}
	reply, err := s.llm.Chat(ctx, messages)
	if err != nil {
		// The factual summary is still useful on its own.
		return factual, nil
	}
	return strings.TrimSpace(reply), nil
}

// OrganizationStats is the admin dashboard snapshot for one tenant.
type OrganizationStats struct {
	Children         int                        `json:"children"`
	PhotosByStatus   map[models.PhotoStatus]int `json:"photos_by_status"`
	ActivitiesByType map[string]int             `json:"activities_by_type"`
	Parents          int                        `json:"parents"`
	Staff            int                        `json:"staff"`
}

// Stats gathers per-tenant counts for the admin dashboard.
func (s *AnalyticsService) Stats(orgID string) (*OrganizationStats, error) {
	children, err := s.childRepo.GetByOrganization(orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to get children: %w", err)
	}

	photosByStatus, err := s.photoRepo.CountByStatus(orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to count photos: %w", err)
	}

	activitiesByType, err := s.activityRepo.CountByType(orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to count activities: %w", err)
	}

	users, err := s.userRepo.GetByOrganization(orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}

	stats := &OrganizationStats{
		Children:         len(children),
		PhotosByStatus:   photosByStatus,
		ActivitiesByType: activitiesByType,
	}
	for _, u := range users {
		switch u.Role {
		case models.RoleParent:
			stats.Parents++
		case models.RoleStaff:
			stats.Staff++
		case models.RoleAdmin:
			// Admins are staff for dashboard purposes.
			stats.Staff++
		}
	}
	return stats, nil
}

// factualSummary renders the activity log as plain text. It doubles as the
// LLM prompt and the fallback output.
func factualSummary(childName string, activities []models.Activity) string {
	if len(activities) == 0 {
		return fmt.Sprintf("%s has no logged activities today yet.", childName)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s's day so far:", childName)
	for _, a := range activities {
		fmt.Fprintf(&b, " %s at %s (%d min", a.Type, a.StartedAt.Format("15:04"), a.DurationMinutes)
		if a.Mood != "" {
			fmt.Fprintf(&b, ", %s", a.Mood)
		}
		b.WriteString(").")
	}
	return b.String()
}
