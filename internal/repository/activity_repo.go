package repository

import (
	"database/sql"
	"fmt"
	"time"

	"daycaremoments/internal/database"
	"daycaremoments/internal/models"

	"github.com/google/uuid"
)

// ActivityRepository handles database operations for activity log rows
type ActivityRepository struct {
	db *database.DB
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(db *database.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Create inserts an activity log row
func (r *ActivityRepository) Create(activity *models.Activity) (*models.Activity, error) {
	if activity.ID == "" {
		activity.ID = uuid.New().String()
	}
	if activity.StartedAt.IsZero() {
		activity.StartedAt = time.Now()
	}

	query := `
		INSERT INTO activities (id, child_id, organization_id, type, mood, notes, started_at, duration_minutes, recorded_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query,
		activity.ID,
		activity.ChildID,
		activity.OrganizationID,
		activity.Type,
		activity.Mood,
		activity.Notes,
		activity.StartedAt,
		activity.DurationMinutes,
		nullable(activity.RecordedBy),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create activity: %w", err)
	}

	return activity, nil
}

// GetByChild retrieves recent activities for a child, scoped to an organization
func (r *ActivityRepository) GetByChild(childID, orgID string, limit int) ([]models.Activity, error) {
	query := `
		SELECT id, child_id, organization_id, type, mood, notes, started_at, duration_minutes, recorded_by, created_at
		FROM activities
		WHERE child_id = ? AND organization_id = ?
		ORDER BY started_at DESC
		LIMIT ?
	`
	return r.queryActivities(query, childID, orgID, limit)
}

// GetByChildSince retrieves a child's activities since a point in time
func (r *ActivityRepository) GetByChildSince(childID, orgID string, since time.Time) ([]models.Activity, error) {
	query := `
		SELECT id, child_id, organization_id, type, mood, notes, started_at, duration_minutes, recorded_by, created_at
		FROM activities
		WHERE child_id = ? AND organization_id = ? AND started_at >= ?
		ORDER BY started_at
	`
	return r.queryActivities(query, childID, orgID, since)
}

// CountByType returns per-type activity counts for an organization
func (r *ActivityRepository) CountByType(orgID string) (map[string]int, error) {
	query := "SELECT type, COUNT(*) FROM activities WHERE organization_id = ? GROUP BY type"
	rows, err := r.db.Query(query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to count activities: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var activityType string
		var count int
		if err := rows.Scan(&activityType, &count); err != nil {
			return nil, fmt.Errorf("failed to scan activity count: %w", err)
		}
		counts[activityType] = count
	}
	return counts, rows.Err()
}

func (r *ActivityRepository) queryActivities(query string, args ...interface{}) ([]models.Activity, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	var activities []models.Activity
	for rows.Next() {
		var activity models.Activity
		var recordedBy sql.NullString
		if err := rows.Scan(
			&activity.ID,
			&activity.ChildID,
			&activity.OrganizationID,
			&activity.Type,
			&activity.Mood,
			&activity.Notes,
			&activity.StartedAt,
			&activity.DurationMinutes,
			&recordedBy,
			&activity.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activity.RecordedBy = recordedBy.String
		activities = append(activities, activity)
	}

	return activities, rows.Err()
}
