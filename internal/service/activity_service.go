package service

import (
	"fmt"
	"time"

	"daycaremoments/internal/classifier"
	"daycaremoments/internal/models"
	"daycaremoments/internal/repository"
	"daycaremoments/internal/validation"
)

// ActivityService records and lists daily activity log entries.
type ActivityService struct {
	activityRepo *repository.ActivityRepository
	childRepo    *repository.ChildRepository
}

func NewActivityService(activityRepo *repository.ActivityRepository, childRepo *repository.ChildRepository) *ActivityService {
	return &ActivityService{activityRepo: activityRepo, childRepo: childRepo}
}

// Record logs one activity for a child. An empty activity type is inferred
// from the notes.
func (s *ActivityService) Record(childID, orgID, activityType, mood, notes string, startedAt time.Time, durationMinutes int, recordedBy string) (*models.Activity, error) {
	child, err := s.childRepo.GetByID(childID, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to get child: %w", err)
	}
	if child == nil {
		return nil, validation.ValidationError{Field: "child_id", Message: "child not found"}
	}

	if activityType == "" {
		activityType = classifier.Activity(notes)
	} else if !validActivityType(activityType) {
		return nil, validation.ValidationError{Field: "type", Message: "unknown activity type"}
	}
	if mood == "" {
		mood = classifier.Mood(notes)
	}
	if durationMinutes < 0 {
		return nil, validation.ValidationError{Field: "duration_minutes", Message: "duration cannot be negative"}
	}
	if startedAt.IsZero() {
		startedAt = time.Now()
	}

	activity, err := s.activityRepo.Create(&models.Activity{
		ChildID:         childID,
		OrganizationID:  orgID,
		Type:            activityType,
		Mood:            mood,
		Notes:           notes,
		StartedAt:       startedAt,
		DurationMinutes: durationMinutes,
		RecordedBy:      recordedBy,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record activity: %w", err)
	}
	return activity, nil
}

// ForChild lists the child's most recent activities.
func (s *ActivityService) ForChild(childID, orgID string, limit int) ([]models.Activity, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.activityRepo.GetByChild(childID, orgID, limit)
}

// Today lists the child's activities since local midnight.
func (s *ActivityService) Today(childID, orgID string) ([]models.Activity, error) {
	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return s.activityRepo.GetByChildSince(childID, orgID, midnight)
}

func validActivityType(activityType string) bool {
	for _, category := range classifier.ActivityCategories() {
		if activityType == category {
			return true
		}
	}
	return false
}
