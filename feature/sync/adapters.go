package sync

import (
	"time"

	"calendar-sync/core/utils"
	"calendar-sync/feature/calendar/models"
	"calendar-sync/feature/directory"

	"github.com/google/uuid"
)

// userAdapter reconciles directory users by external id.
type userAdapter struct{}

func (userAdapter) Name() string      { return "users" }
func (userAdapter) KeyColumn() string { return "external_id" }

func (userAdapter) Key(u *models.DirectoryUser) string { return u.ExternalID }

func (userAdapter) OrderedAt(u *models.DirectoryUser) time.Time { return u.LastSyncedAt }

// UpdateColumns never lists password_hash, created_at or the event bookkeeping.
func (userAdapter) UpdateColumns() []string {
	return []string{
		"principal_name", "display_name", "given_name", "surname", "mail",
		"job_title", "department", "office_location", "last_synced_at",
	}
}

func (userAdapter) PrepareInsert(u *models.DirectoryUser, now time.Time) {
	u.ID = uuid.NewString()
	u.CreatedAt = now
	u.LastSyncedAt = now
}

func (userAdapter) Overwrite(dst, src *models.DirectoryUser, now time.Time) {
	dst.PrincipalName = src.PrincipalName
	dst.DisplayName = src.DisplayName
	dst.GivenName = src.GivenName
	dst.Surname = src.Surname
	dst.Mail = src.Mail
	dst.JobTitle = src.JobTitle
	dst.Department = src.Department
	dst.OfficeLocation = src.OfficeLocation
	dst.LastSyncedAt = now
}

// eventAdapter reconciles calendar events by external event id.
// The owning user of an existing event is never reassigned.
type eventAdapter struct{}

func (eventAdapter) Name() string      { return "events" }
func (eventAdapter) KeyColumn() string { return "external_id" }

func (eventAdapter) Key(e *models.CalendarEvent) string { return e.ExternalID }

func (eventAdapter) OrderedAt(e *models.CalendarEvent) time.Time { return e.ModifiedAt }

func (eventAdapter) UpdateColumns() []string {
	return []string{
		"subject", "body_preview", "start_time", "end_time", "location", "is_all_day",
		"organizer_email", "organizer_name", "modified_at", "last_updated_at",
	}
}

func (eventAdapter) PrepareInsert(e *models.CalendarEvent, now time.Time) {
	e.ID = uuid.NewString()
	e.CreatedAt = now
	e.LastUpdatedAt = now
}

func (eventAdapter) Overwrite(dst, src *models.CalendarEvent, now time.Time) {
	dst.Subject = src.Subject
	dst.BodyPreview = src.BodyPreview
	dst.Start = src.Start
	dst.End = src.End
	dst.Location = src.Location
	dst.IsAllDay = src.IsAllDay
	dst.OrganizerEmail = src.OrganizerEmail
	dst.OrganizerName = src.OrganizerName
	dst.ModifiedAt = src.ModifiedAt
	dst.LastUpdatedAt = now
}

// toUserModel maps a provider user onto the local schema, truncating to column sizes.
func toUserModel(u directory.User) models.DirectoryUser {
	return models.DirectoryUser{
		ExternalID:     utils.Truncate(u.ExternalID, models.ExternalIDSize),
		PrincipalName:  utils.Truncate(u.PrincipalName, models.PrincipalNameSize),
		DisplayName:    utils.Truncate(u.DisplayName, models.DisplayNameSize),
		GivenName:      utils.Truncate(u.GivenName, models.GivenNameSize),
		Surname:        utils.Truncate(u.Surname, models.SurnameSize),
		Mail:           utils.Truncate(u.Mail, models.MailSize),
		JobTitle:       utils.Truncate(u.JobTitle, models.ProfileFieldSize),
		Department:     utils.Truncate(u.Department, models.ProfileFieldSize),
		OfficeLocation: utils.Truncate(u.OfficeLocation, models.ProfileFieldSize),
	}
}

// toEventModel maps a provider event onto the local schema owned by userID.
func toEventModel(e directory.Event, userID string) models.CalendarEvent {
	return models.CalendarEvent{
		ExternalID:     utils.Truncate(e.ExternalID, models.ExternalIDSize),
		UserID:         userID,
		Subject:        utils.Truncate(utils.DefaultIfBlank(e.Subject, models.DefaultSubject), models.SubjectSize),
		BodyPreview:    utils.Truncate(e.BodyPreview, models.BodyPreviewSize),
		Start:          e.Start.UTC(),
		End:            e.End.UTC(),
		Location:       utils.Truncate(e.Location, models.LocationSize),
		IsAllDay:       e.IsAllDay,
		OrganizerEmail: utils.Truncate(e.OrganizerEmail, models.OrganizerFieldSize),
		OrganizerName:  utils.Truncate(e.OrganizerName, models.OrganizerFieldSize),
		ModifiedAt:     e.LastModified.UTC(),
	}
}
