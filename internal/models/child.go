package models

import "time"

// Child represents a child enrolled in a daycare. Face encodings are opaque
// numeric vectors produced by the external recognition service; the
// application only stores and compares them.
type Child struct {
	ID             string
	Name           string
	DateOfBirth    time.Time
	OrganizationID string
	ParentID       string
	FaceEncodings  [][]float64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
