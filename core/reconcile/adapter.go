package reconcile

import "time"

// Adapter defines the model-specific part of a reconciliation.
// T is the GORM model written to the store (e.g. models.DirectoryUser).
type Adapter[T any] interface {
	// Name returns a short name for logging (e.g. "users", "events").
	Name() string

	// KeyColumn returns the database column holding the natural key.
	// The column must carry a unique index.
	KeyColumn() string

	// Key returns the natural key of a record.
	Key(row *T) string

	// OrderedAt returns the timestamp used to pick a winner when several
	// records in one batch share a natural key.
	OrderedAt(row *T) time.Time

	// UpdateColumns lists the columns overwritten when a record matches an
	// existing row. It must include the sync timestamp column and must not
	// include the primary key or the creation timestamp.
	UpdateColumns() []string

	// PrepareInsert assigns a fresh identity and the creation and sync
	// timestamps to a record about to be inserted.
	PrepareInsert(row *T, now time.Time)

	// Overwrite copies the mutable fields of src into dst and stamps the
	// sync timestamp. Identity and creation timestamp of dst are kept.
	Overwrite(dst *T, src *T, now time.Time)
}
