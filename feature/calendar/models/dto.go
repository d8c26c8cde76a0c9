package models

import "time"

// UserSummary is a user row with its live event count.
type UserSummary struct {
	ID               string     `json:"id"`
	PrincipalName    string     `json:"principal_name"`
	DisplayName      string     `json:"display_name"`
	GivenName        string     `json:"given_name"`
	Surname          string     `json:"surname"`
	Mail             string     `json:"mail"`
	JobTitle         string     `json:"job_title"`
	Department       string     `json:"department"`
	OfficeLocation   string     `json:"office_location"`
	LastSyncedAt     time.Time  `json:"last_synced_at"`
	LastEventCheckAt *time.Time `json:"last_event_check_at"`
	EventCount       int64      `json:"event_count"`
}

// UserWithEvents is a user together with its events ordered by start.
type UserWithEvents struct {
	User   UserSummary     `json:"user"`
	Events []CalendarEvent `json:"events"`
}
