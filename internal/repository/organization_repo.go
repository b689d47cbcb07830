package repository

import (
	"database/sql"
	"fmt"
	"time"

	"daycaremoments/internal/database"
	"daycaremoments/internal/models"

	"github.com/google/uuid"
)

// OrganizationRepository handles database operations for organizations
type OrganizationRepository struct {
	db *database.DB
}

// NewOrganizationRepository creates a new organization repository
func NewOrganizationRepository(db *database.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

// Create inserts a new organization
func (r *OrganizationRepository) Create(name, email, phone string) (*models.Organization, error) {
	org := &models.Organization{
		ID:          uuid.New().String(),
		Name:        name,
		Email:       email,
		Phone:       phone,
		PricingTier: "free",
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	query := `
		INSERT INTO organizations (id, name, email, phone, pricing_tier)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := r.db.Exec(query, org.ID, org.Name, org.Email, org.Phone, org.PricingTier); err != nil {
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}

	return org, nil
}

// GetByID retrieves an organization by ID
func (r *OrganizationRepository) GetByID(id string) (*models.Organization, error) {
	query := `
		SELECT id, name, COALESCE(email, ''), COALESCE(phone, ''), pricing_tier, created_at, updated_at
		FROM organizations
		WHERE id = ?
	`
	org := &models.Organization{}
	err := r.db.QueryRow(query, id).Scan(
		&org.ID,
		&org.Name,
		&org.Email,
		&org.Phone,
		&org.PricingTier,
		&org.CreatedAt,
		&org.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}

	return org, nil
}

// UpdateTier changes an organization's pricing tier
func (r *OrganizationRepository) UpdateTier(id, tier string) error {
	query := `
		UPDATE organizations
		SET pricing_tier = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	if _, err := r.db.Exec(query, tier, id); err != nil {
		return fmt.Errorf("failed to update pricing tier: %w", err)
	}
	return nil
}

// GetAll retrieves all organizations
func (r *OrganizationRepository) GetAll() ([]models.Organization, error) {
	query := `
		SELECT id, name, COALESCE(email, ''), COALESCE(phone, ''), pricing_tier, created_at, updated_at
		FROM organizations
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query organizations: %w", err)
	}
	defer rows.Close()

	var orgs []models.Organization
	for rows.Next() {
		var org models.Organization
		if err := rows.Scan(
			&org.ID,
			&org.Name,
			&org.Email,
			&org.Phone,
			&org.PricingTier,
			&org.CreatedAt,
			&org.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan organization: %w", err)
		}
		orgs = append(orgs, org)
	}

	return orgs, rows.Err()
}
