package reconcile

import (
	"time"

	"go.uber.org/zap"
)

// DefaultThreshold is the largest batch reconciled row-by-row.
const DefaultThreshold = 100

// DefaultChunkSize bounds the number of rows per statement in the set-based path.
const DefaultChunkSize = 500

// Strategy identifies how a batch was written to the store.
type Strategy string

const (
	// StrategyNone is reported for empty batches.
	StrategyNone Strategy = "none"
	// StrategyRowByRow looks up and writes each record individually.
	StrategyRowByRow Strategy = "row_by_row"
	// StrategySetBased merges the staged batch with a single upsert statement.
	StrategySetBased Strategy = "set_based"
)

// Result summarizes a reconciliation pass.
type Result struct {
	// Inserted counts records that did not exist before the pass.
	Inserted int `json:"inserted"`

	// Updated counts records matched by natural key and overwritten.
	Updated int `json:"updated"`

	// Strategy is the strategy that finally wrote the batch.
	Strategy Strategy `json:"strategy"`

	// FellBack is true when the set-based merge failed and the batch
	// was re-run row-by-row.
	FellBack bool `json:"fell_back"`
}

// Total returns the number of records written.
func (r Result) Total() int {
	return r.Inserted + r.Updated
}

// Options configures a Reconciler.
type Options struct {
	// Threshold is the largest batch size reconciled row-by-row.
	// Zero means DefaultThreshold.
	Threshold int

	// ChunkSize bounds rows per statement in the set-based path.
	// Zero means DefaultChunkSize.
	ChunkSize int

	// Now returns the timestamp stamped on written rows. Defaults to time.Now().UTC().
	Now func() time.Time

	// Logger receives fallback warnings. Defaults to a no-op logger.
	Logger *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.Threshold <= 0 {
		o.Threshold = DefaultThreshold
	}
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.Now == nil {
		o.Now = func() time.Time { return time.Now().UTC() }
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}
