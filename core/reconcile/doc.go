// Package reconcile provides a generic engine for merging externally sourced records
// into the database by natural key.
//
// A reconciliation pass never deletes rows: every incoming record ends up either
// inserted (fresh identity and creation timestamp) or updated (mutable columns
// overwritten, sync timestamp stamped). Rows already in the table but absent from
// the batch are left untouched.
//
// # Strategies
//
// The engine picks one of two strategies from the batch size:
//
//  1. Row-by-row: each record is looked up by natural key and then inserted or
//     updated. Used for batches at or below the configured threshold.
//
//  2. Set-based merge: the batch is loaded into an in-memory staging area,
//     deduplicated by natural key and applied with a single
//     INSERT ... ON CONFLICT / ON DUPLICATE KEY UPDATE statement (chunked).
//     Used for batches above the threshold.
//
// Both strategies run inside one transaction per call, so a batch is reconciled
// as a whole or not at all. If the set-based merge fails for any reason, the
// whole original batch is re-run through the row-by-row path.
//
// # Deduplication
//
// Dedupe is a pure function: for each natural key it keeps the record with the
// greatest ordering timestamp. On an exact tie the record that appears later in
// the input wins. Both strategies consume the deduplicated batch, so the end state
// does not depend on which strategy ran.
//
// # Adapters
//
// Models plug into the engine through the Adapter interface, which names the
// natural key column, the mutable columns and how to stamp identities and
// timestamps. See feature/sync for the user and event adapters.
//
// # Usage
//
//	r := reconcile.New[models.DirectoryUser](db, adapter, reconcile.Options{
//	    Threshold: 100,
//	    Logger:    logger,
//	})
//	result, err := r.Reconcile(ctx, users)
package reconcile
