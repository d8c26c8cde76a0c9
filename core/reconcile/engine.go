package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Reconciler merges batches of T into the database by natural key.
type Reconciler[T any] struct {
	db      *gorm.DB
	adapter Adapter[T]
	opts    Options
}

// New creates a reconciler for the model described by adapter.
func New[T any](db *gorm.DB, adapter Adapter[T], opts Options) *Reconciler[T] {
	return &Reconciler[T]{
		db:      db,
		adapter: adapter,
		opts:    opts.withDefaults(),
	}
}

// Threshold returns the largest batch size reconciled row-by-row.
func (r *Reconciler[T]) Threshold() int {
	return r.opts.Threshold
}

// SelectStrategy returns the strategy used for a batch of n records.
func (r *Reconciler[T]) SelectStrategy(n int) Strategy {
	switch {
	case n == 0:
		return StrategyNone
	case n <= r.opts.Threshold:
		return StrategyRowByRow
	default:
		return StrategySetBased
	}
}

// Reconcile merges batch into the store, choosing the strategy from the batch size.
// A failed set-based merge is retried row-by-row with the whole original batch;
// an error is returned only when the row-by-row path fails too.
func (r *Reconciler[T]) Reconcile(ctx context.Context, batch []T) (Result, error) {
	switch r.SelectStrategy(len(batch)) {
	case StrategyNone:
		return Result{Strategy: StrategyNone}, nil
	case StrategyRowByRow:
		return r.ReconcileRowByRow(ctx, batch)
	}

	result, err := r.mergeSet(ctx, batch)
	if err == nil {
		return result, nil
	}

	r.opts.Logger.Warn("Set-based merge failed, falling back to row-by-row",
		zap.String("model", r.adapter.Name()),
		zap.Int("batch_size", len(batch)),
		zap.Error(err),
	)

	result, err = r.ReconcileRowByRow(ctx, batch)
	if err != nil {
		return Result{}, fmt.Errorf("row-by-row fallback for %s failed: %w", r.adapter.Name(), err)
	}
	result.FellBack = true
	return result, nil
}

// ReconcileRowByRow merges batch one record at a time inside a single transaction.
func (r *Reconciler[T]) ReconcileRowByRow(ctx context.Context, batch []T) (Result, error) {
	if len(batch) == 0 {
		return Result{Strategy: StrategyNone}, nil
	}

	stage := Stage(batch, r.adapter)
	defer stage.Discard()

	now := r.opts.Now()
	var result Result

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res, err := r.upsertRows(tx, stage.Rows(), now)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to reconcile %s row-by-row: %w", r.adapter.Name(), err)
	}

	return result, nil
}

// upsertRows writes rows through the explicit transaction handle tx.
func (r *Reconciler[T]) upsertRows(tx *gorm.DB, rows []T, now time.Time) (Result, error) {
	result := Result{Strategy: StrategyRowByRow}
	keyCol := r.adapter.KeyColumn()

	for i := range rows {
		incoming := &rows[i]
		key := r.adapter.Key(incoming)

		var existing T
		err := tx.Where(keyCol+" = ?", key).Take(&existing).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			r.adapter.PrepareInsert(incoming, now)
			if err := tx.Omit(clause.Associations).Create(incoming).Error; err != nil {
				return Result{}, fmt.Errorf("failed to insert %s %q: %w", r.adapter.Name(), key, err)
			}
			result.Inserted++

		case err != nil:
			return Result{}, fmt.Errorf("failed to look up %s %q: %w", r.adapter.Name(), key, err)

		default:
			r.adapter.Overwrite(&existing, incoming, now)
			if err := tx.Model(&existing).Select(r.adapter.UpdateColumns()).Updates(&existing).Error; err != nil {
				return Result{}, fmt.Errorf("failed to update %s %q: %w", r.adapter.Name(), key, err)
			}
			result.Updated++
		}
	}

	return result, nil
}

// mergeSet stages batch, counts the keys already present and applies a single
// upsert keyed on the natural key, all in one transaction.
func (r *Reconciler[T]) mergeSet(ctx context.Context, batch []T) (Result, error) {
	stage := Stage(batch, r.adapter)
	defer stage.Discard()

	if stage.Len() == 0 {
		return Result{Strategy: StrategyNone}, nil
	}

	now := r.opts.Now()
	rows := stage.Rows()
	for i := range rows {
		r.adapter.PrepareInsert(&rows[i], now)
	}

	keyCol := r.adapter.KeyColumn()
	var matched int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, keys := range chunk(stage.Keys(), r.opts.ChunkSize) {
			var n int64
			if err := tx.Model(new(T)).Where(keyCol+" IN ?", keys).Count(&n).Error; err != nil {
				return fmt.Errorf("failed to count existing keys: %w", err)
			}
			matched += n
		}

		merge := clause.OnConflict{
			Columns:   []clause.Column{{Name: keyCol}},
			DoUpdates: clause.AssignmentColumns(r.adapter.UpdateColumns()),
		}
		if err := tx.Clauses(merge).Omit(clause.Associations).CreateInBatches(rows, r.opts.ChunkSize).Error; err != nil {
			return fmt.Errorf("failed to execute merge: %w", err)
		}
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("set-based merge of %s failed: %w", r.adapter.Name(), err)
	}

	return Result{
		Inserted: stage.Len() - int(matched),
		Updated:  int(matched),
		Strategy: StrategySetBased,
	}, nil
}
