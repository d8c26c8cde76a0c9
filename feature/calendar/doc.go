// Package calendar owns the local store of directory users and their calendar
// events, and serves the read API over it.
//
// # Store
//
// Store wraps GORM with the record-level operations the sync engine needs:
// lookups by internal id, listings, cached event count refresh, bookkeeping
// column updates and the maintenance bulk delete. Relations are never loaded
// lazily: a user with events is two queries (user, then events by user_id) and
// the user listing computes counts with an explicit LEFT JOIN ... GROUP BY.
//
// # HTTP API
//
//	GET /users             users with event counts
//	GET /users/:id         one user with its events (404 when unknown)
//	GET /events/user/:id   events of a user ordered by start and end
package calendar
