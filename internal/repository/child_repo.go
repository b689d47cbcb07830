package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"daycaremoments/internal/database"
	"daycaremoments/internal/models"

	"github.com/google/uuid"
)

// ChildRepository handles database operations for enrolled children
type ChildRepository struct {
	db *database.DB
}

// NewChildRepository creates a new child repository
func NewChildRepository(db *database.DB) *ChildRepository {
	return &ChildRepository{db: db}
}

// Create enrolls a new child
func (r *ChildRepository) Create(name string, dateOfBirth time.Time, orgID, parentID string) (*models.Child, error) {
	child := &models.Child{
		ID:             uuid.New().String(),
		Name:           name,
		DateOfBirth:    dateOfBirth,
		OrganizationID: orgID,
		ParentID:       parentID,
		FaceEncodings:  [][]float64{},
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	query := `
		INSERT INTO children (id, name, date_of_birth, organization_id, parent_id, face_encodings)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	var parent interface{}
	if parentID != "" {
		parent = parentID
	}
	if _, err := r.db.Exec(query, child.ID, child.Name, child.DateOfBirth, child.OrganizationID, parent, "[]"); err != nil {
		return nil, fmt.Errorf("failed to create child: %w", err)
	}

	return child, nil
}

func scanChild(scan func(dest ...interface{}) error) (*models.Child, error) {
	child := &models.Child{}
	var parentID sql.NullString
	var dob sql.NullTime
	var encodings string
	err := scan(
		&child.ID,
		&child.Name,
		&dob,
		&child.OrganizationID,
		&parentID,
		&encodings,
		&child.CreatedAt,
		&child.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	child.ParentID = parentID.String
	if dob.Valid {
		child.DateOfBirth = dob.Time
	}
	if err := json.Unmarshal([]byte(encodings), &child.FaceEncodings); err != nil {
		return nil, fmt.Errorf("corrupt face encodings for child %s: %w", child.ID, err)
	}
	return child, nil
}

// GetByID retrieves a child by ID, scoped to an organization
func (r *ChildRepository) GetByID(id, orgID string) (*models.Child, error) {
	query := `
		SELECT id, name, date_of_birth, organization_id, parent_id, face_encodings, created_at, updated_at
		FROM children
		WHERE id = ? AND organization_id = ?
	`
	row := r.db.QueryRow(query, id, orgID)
	child, err := scanChild(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get child: %w", err)
	}
	return child, nil
}

// GetByOrganization retrieves all children enrolled in an organization
func (r *ChildRepository) GetByOrganization(orgID string) ([]models.Child, error) {
	query := `
		SELECT id, name, date_of_birth, organization_id, parent_id, face_encodings, created_at, updated_at
		FROM children
		WHERE organization_id = ?
		ORDER BY name
	`
	return r.queryChildren(query, orgID)
}

// GetByParent retrieves children linked to a parent, scoped to an organization
func (r *ChildRepository) GetByParent(parentID, orgID string) ([]models.Child, error) {
	query := `
		SELECT id, name, date_of_birth, organization_id, parent_id, face_encodings, created_at, updated_at
		FROM children
		WHERE parent_id = ? AND organization_id = ?
		ORDER BY name
	`
	return r.queryChildren(query, parentID, orgID)
}

func (r *ChildRepository) queryChildren(query string, args ...interface{}) ([]models.Child, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query children: %w", err)
	}
	defer rows.Close()

	var children []models.Child
	for rows.Next() {
		child, err := scanChild(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan child: %w", err)
		}
		children = append(children, *child)
	}

	return children, rows.Err()
}

// AddFaceEncoding appends a face encoding to a child's stored set
func (r *ChildRepository) AddFaceEncoding(id, orgID string, encoding []float64) error {
	child, err := r.GetByID(id, orgID)
	if err != nil {
		return err
	}
	if child == nil {
		return fmt.Errorf("child not found: %s", id)
	}

	child.FaceEncodings = append(child.FaceEncodings, encoding)
	data, err := json.Marshal(child.FaceEncodings)
	if err != nil {
		return fmt.Errorf("failed to encode face encodings: %w", err)
	}

	query := `
		UPDATE children
		SET face_encodings = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND organization_id = ?
	`
	if _, err := r.db.Exec(query, string(data), id, orgID); err != nil {
		return fmt.Errorf("failed to update face encodings: %w", err)
	}
	return nil
}

// Delete removes a child, scoped to an organization
func (r *ChildRepository) Delete(id, orgID string) error {
	query := "DELETE FROM children WHERE id = ? AND organization_id = ?"
	if _, err := r.db.Exec(query, id, orgID); err != nil {
		return fmt.Errorf("failed to delete child: %w", err)
	}
	return nil
}
