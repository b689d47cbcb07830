package repository

import (
	"database/sql"
	"fmt"
	"time"

	"daycaremoments/internal/database"
	"daycaremoments/internal/models"

	"github.com/google/uuid"
)

const photoColumns = `id, storage_path, url, filename, caption, status, activity_type, mood,
	ai_description, child_id, uploaded_by, organization_id, captured_at, uploaded_at`

// PhotoRepository handles database operations for photos
type PhotoRepository struct {
	db *database.DB
}

// NewPhotoRepository creates a new photo repository
func NewPhotoRepository(db *database.DB) *PhotoRepository {
	return &PhotoRepository{db: db}
}

// Create inserts a photo record. Status starts as pending.
func (r *PhotoRepository) Create(photo *models.Photo) (*models.Photo, error) {
	if photo.ID == "" {
		photo.ID = uuid.New().String()
	}
	if photo.Status == "" {
		photo.Status = models.PhotoPending
	}
	if photo.UploadedAt.IsZero() {
		photo.UploadedAt = time.Now()
	}

	query := `
		INSERT INTO photos (id, storage_path, url, filename, caption, status, activity_type, mood,
			ai_description, child_id, uploaded_by, organization_id, captured_at, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query,
		photo.ID,
		photo.StoragePath,
		photo.URL,
		photo.Filename,
		photo.Caption,
		string(photo.Status),
		photo.ActivityType,
		photo.Mood,
		photo.AIDescription,
		nullable(photo.ChildID),
		nullable(photo.UploadedBy),
		photo.OrganizationID,
		nullableTime(photo.CapturedAt),
		photo.UploadedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create photo: %w", err)
	}

	return photo, nil
}

func scanPhoto(scan func(dest ...interface{}) error) (*models.Photo, error) {
	photo := &models.Photo{}
	var status string
	var childID, uploadedBy sql.NullString
	var capturedAt sql.NullTime
	err := scan(
		&photo.ID,
		&photo.StoragePath,
		&photo.URL,
		&photo.Filename,
		&photo.Caption,
		&status,
		&photo.ActivityType,
		&photo.Mood,
		&photo.AIDescription,
		&childID,
		&uploadedBy,
		&photo.OrganizationID,
		&capturedAt,
		&photo.UploadedAt,
	)
	if err != nil {
		return nil, err
	}

	parsed, err := models.ParsePhotoStatus(status)
	if err != nil {
		return nil, fmt.Errorf("corrupt status for photo %s: %w", photo.ID, err)
	}
	photo.Status = parsed
	photo.ChildID = childID.String
	photo.UploadedBy = uploadedBy.String
	if capturedAt.Valid {
		photo.CapturedAt = capturedAt.Time
	}
	return photo, nil
}

// GetByID retrieves a photo by ID, scoped to an organization
func (r *PhotoRepository) GetByID(id, orgID string) (*models.Photo, error) {
	query := "SELECT " + photoColumns + " FROM photos WHERE id = ? AND organization_id = ?"
	row := r.db.QueryRow(query, id, orgID)
	photo, err := scanPhoto(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}
	return photo, nil
}

// GetByStatus retrieves photos with a given status within an organization
func (r *PhotoRepository) GetByStatus(orgID string, status models.PhotoStatus) ([]models.Photo, error) {
	query := "SELECT " + photoColumns + ` FROM photos
		WHERE organization_id = ? AND status = ?
		ORDER BY uploaded_at DESC`
	return r.queryPhotos(query, orgID, string(status))
}

// GetApprovedByChildren retrieves approved photos for a set of children.
// Used by the parent gallery: only approved photos of the parent's own
// children are ever returned.
func (r *PhotoRepository) GetApprovedByChildren(orgID string, childIDs []string) ([]models.Photo, error) {
	if len(childIDs) == 0 {
		return nil, nil
	}

	query := "SELECT " + photoColumns + ` FROM photos
		WHERE organization_id = ? AND status = ? AND child_id IN (`
	args := []interface{}{orgID, string(models.PhotoApproved)}
	for i, id := range childIDs {
		if i > 0 {
			query += ", "
		}
		query += "?"
		args = append(args, id)
	}
	query += ") ORDER BY uploaded_at DESC"

	return r.queryPhotos(query, args...)
}

// CountByChildSince counts photos of a child uploaded since a point in time
func (r *PhotoRepository) CountByChildSince(childID, orgID string, since time.Time) (int, error) {
	var count int
	query := "SELECT COUNT(*) FROM photos WHERE child_id = ? AND organization_id = ? AND uploaded_at >= ?"
	if err := r.db.QueryRow(query, childID, orgID, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count photos: %w", err)
	}
	return count, nil
}

// CountByOrganizationSince counts photos uploaded by an organization since a point in time
func (r *PhotoRepository) CountByOrganizationSince(orgID string, since time.Time) (int, error) {
	var count int
	query := "SELECT COUNT(*) FROM photos WHERE organization_id = ? AND uploaded_at >= ?"
	if err := r.db.QueryRow(query, orgID, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count photos: %w", err)
	}
	return count, nil
}

// CountByStatus returns per-status photo counts for an organization
func (r *PhotoRepository) CountByStatus(orgID string) (map[models.PhotoStatus]int, error) {
	query := "SELECT status, COUNT(*) FROM photos WHERE organization_id = ? GROUP BY status"
	rows, err := r.db.Query(query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to count photos by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.PhotoStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan photo count: %w", err)
		}
		counts[models.PhotoStatus(status)] = count
	}
	return counts, rows.Err()
}

// UpdateStatus sets a photo's moderation status, scoped to an organization
func (r *PhotoRepository) UpdateStatus(id, orgID string, status models.PhotoStatus) error {
	query := "UPDATE photos SET status = ? WHERE id = ? AND organization_id = ?"
	result, err := r.db.Exec(query, string(status), id, orgID)
	if err != nil {
		return fmt.Errorf("failed to update photo status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("photo not found: %s", id)
	}
	return nil
}

// UpdateCaption replaces a photo's caption and AI description
func (r *PhotoRepository) UpdateCaption(id, orgID, caption, aiDescription string) error {
	query := "UPDATE photos SET caption = ?, ai_description = ? WHERE id = ? AND organization_id = ?"
	if _, err := r.db.Exec(query, caption, aiDescription, id, orgID); err != nil {
		return fmt.Errorf("failed to update photo caption: %w", err)
	}
	return nil
}

// GetOlderThan retrieves photos uploaded before the cutoff, across all
// organizations. Used by the retention sweep.
func (r *PhotoRepository) GetOlderThan(cutoff time.Time) ([]models.Photo, error) {
	query := "SELECT " + photoColumns + " FROM photos WHERE uploaded_at < ?"
	return r.queryPhotos(query, cutoff)
}

// Delete removes a photo record
func (r *PhotoRepository) Delete(id string) error {
	query := "DELETE FROM photos WHERE id = ?"
	if _, err := r.db.Exec(query, id); err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	return nil
}

func (r *PhotoRepository) queryPhotos(query string, args ...interface{}) ([]models.Photo, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query photos: %w", err)
	}
	defer rows.Close()

	var photos []models.Photo
	for rows.Next() {
		photo, err := scanPhoto(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		photos = append(photos, *photo)
	}

	return photos, rows.Err()
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullableTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}
