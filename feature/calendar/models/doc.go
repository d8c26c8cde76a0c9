// Package models defines the GORM models of the calendar store and the read DTOs
// served by the HTTP API.
//
// DirectoryUser (table users) is keyed by a surrogate UUID; ExternalID and
// PrincipalName each carry a unique index. CalendarEvent (table calendar_events)
// is keyed by a surrogate UUID with a unique ExternalID and belongs to one user
// through UserID, with ON DELETE CASCADE.
package models
