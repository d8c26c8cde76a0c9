// Package database handles database connections, advisory locks and schema inspection.
//
// It wraps GORM and configures MySQL, PostgreSQL or SQLite connections from the
// application's configuration.
//
// # Connect
//
// Connect opens the configured driver, sizes the pool and pings the server.
// SQLite connections are limited to a single open connection.
//
// # Locks
//
// NewLocker returns a named, non-blocking lock matching the dialect: GET_LOCK on
// MySQL, pg_try_advisory_lock on PostgreSQL and an in-process lock otherwise.
// The sync engine holds one for the duration of every run.
//
// # Schema Inspection
//
// GetTableColumns lists the columns of a table on every dialect and
// MissingColumns compares them against the columns a feature expects. The
// migrate command and the health check use it.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	missing, err := database.MissingColumns(db, models.ExpectedColumns())
package database
