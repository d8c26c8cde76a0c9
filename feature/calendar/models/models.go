package models

import "time"

// Column limits shared by the schema and the sync mappers.
const (
	ExternalIDSize     = 200
	PrincipalNameSize  = 200
	DisplayNameSize    = 255
	GivenNameSize      = 100
	SurnameSize        = 200
	MailSize           = 255
	ProfileFieldSize   = 100
	SubjectSize        = 200
	BodyPreviewSize    = 500
	LocationSize       = 255
	OrganizerFieldSize = 255
)

// DefaultSubject replaces a missing event subject.
const DefaultSubject = "(no subject)"

// DirectoryUser is an organizational account mirrored from the directory provider.
type DirectoryUser struct {
	ID             string `gorm:"primaryKey;type:char(36)" json:"id"`
	ExternalID     string `gorm:"size:200;not null;uniqueIndex" json:"external_id"`
	PrincipalName  string `gorm:"size:200;not null;uniqueIndex" json:"principal_name"`
	DisplayName    string `gorm:"size:255" json:"display_name"`
	GivenName      string `gorm:"size:100" json:"given_name"`
	Surname        string `gorm:"size:200" json:"surname"`
	Mail           string `gorm:"size:255" json:"mail"`
	JobTitle       string `gorm:"size:100" json:"job_title"`
	Department     string `gorm:"size:100" json:"department"`
	OfficeLocation string `gorm:"size:100" json:"office_location"`

	// PasswordHash belongs to local authentication and is never written by sync.
	PasswordHash string `gorm:"size:255" json:"-"`

	CreatedAt        time.Time  `json:"created_at"`
	LastSyncedAt     time.Time  `json:"last_synced_at"`
	LastEventCheckAt *time.Time `json:"last_event_check_at"`
	// EventCount is a cached, advisory count of the user's events.
	EventCount int `gorm:"not null;default:0" json:"event_count"`

	Events []CalendarEvent `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName overrides the table name used by DirectoryUser.
func (DirectoryUser) TableName() string {
	return "users"
}

// CalendarEvent is a calendar entry owned by exactly one DirectoryUser.
type CalendarEvent struct {
	ID             string    `gorm:"primaryKey;type:char(36)" json:"id"`
	ExternalID     string    `gorm:"size:200;not null;uniqueIndex" json:"external_id"`
	UserID         string    `gorm:"type:char(36);not null;index" json:"user_id"`
	Subject        string    `gorm:"size:200" json:"subject"`
	BodyPreview    string    `gorm:"size:500" json:"body_preview"`
	Start          time.Time `gorm:"column:start_time;index" json:"start"`
	End            time.Time `gorm:"column:end_time;index" json:"end"`
	Location       string    `gorm:"size:255" json:"location"`
	IsAllDay       bool      `json:"is_all_day"`
	OrganizerEmail string    `gorm:"size:255" json:"organizer_email"`
	OrganizerName  string    `gorm:"size:255" json:"organizer_name"`
	// ModifiedAt is the provider's last-modified timestamp.
	ModifiedAt    time.Time `json:"modified_at"`
	CreatedAt     time.Time `json:"created_at"`
	LastUpdatedAt time.Time `json:"last_updated_at"`
}

// TableName overrides the table name used by CalendarEvent.
func (CalendarEvent) TableName() string {
	return "calendar_events"
}

// All lists every model in migration order.
func All() []any {
	return []any{&DirectoryUser{}, &CalendarEvent{}}
}

// ExpectedColumns lists the columns the application relies on, per table.
func ExpectedColumns() map[string][]string {
	return map[string][]string{
		"users": {
			"id", "external_id", "principal_name", "display_name", "given_name", "surname", "mail",
			"job_title", "department", "office_location", "password_hash", "created_at",
			"last_synced_at", "last_event_check_at", "event_count",
		},
		"calendar_events": {
			"id", "external_id", "user_id", "subject", "body_preview", "start_time", "end_time",
			"location", "is_all_day", "organizer_email", "organizer_name", "modified_at",
			"created_at", "last_updated_at",
		},
	}
}
