package models

import "time"

// Organization represents one daycare. Every row in the system is scoped to
// exactly one organization.
type Organization struct {
	ID          string
	Name        string
	Email       string
	Phone       string
	PricingTier string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
