package models

import "time"

// Activity is a free-form log row for a child's day: meals, naps, play,
// learning time and so on.
type Activity struct {
	ID              string
	ChildID         string
	OrganizationID  string
	Type            string
	Mood            string
	Notes           string
	StartedAt       time.Time
	DurationMinutes int
	RecordedBy      string
	CreatedAt       time.Time
}
