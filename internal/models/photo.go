package models

import (
	"fmt"
	"time"
)

// PhotoStatus is the moderation state of an uploaded photo.
type PhotoStatus string

const (
	PhotoPending  PhotoStatus = "pending"
	PhotoApproved PhotoStatus = "approved"
	PhotoRejected PhotoStatus = "rejected"
)

// ParsePhotoStatus converts a string to a PhotoStatus.
func ParsePhotoStatus(s string) (PhotoStatus, error) {
	switch PhotoStatus(s) {
	case PhotoPending, PhotoApproved, PhotoRejected:
		return PhotoStatus(s), nil
	default:
		return "", fmt.Errorf("invalid photo status: %q", s)
	}
}

// Photo stores photo metadata, the storage path, and the AI-written
// description. Parents only ever see approved photos.
type Photo struct {
	ID             string
	StoragePath    string
	URL            string
	Filename       string
	Caption        string
	Status         PhotoStatus
	ActivityType   string
	Mood           string
	AIDescription  string
	ChildID        string
	UploadedBy     string
	OrganizationID string
	CapturedAt     time.Time
	UploadedAt     time.Time
}
