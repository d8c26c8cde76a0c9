package reconcile

import "time"

// Dedupe returns one record per natural key, keeping the record with the
// greatest ordering timestamp. On an exact tie the record appearing later in
// rows wins. The output follows the order in which each key first appears.
// rows is not modified.
func Dedupe[T any](rows []T, key func(*T) string, orderedAt func(*T) time.Time) []T {
	if len(rows) == 0 {
		return nil
	}

	position := make(map[string]int, len(rows))
	out := make([]T, 0, len(rows))

	for i := range rows {
		row := rows[i]
		k := key(&row)

		idx, seen := position[k]
		if !seen {
			position[k] = len(out)
			out = append(out, row)
			continue
		}

		// Later rows win ties.
		if !orderedAt(&row).Before(orderedAt(&out[idx])) {
			out[idx] = row
		}
	}

	return out
}

// Staging is the transient holding area for one reconciliation pass.
// It owns copies of the incoming records; the caller's batch is never mutated.
type Staging[T any] struct {
	rows []T
	keys []string
}

// Stage copies batch into a new staging area deduplicated through the adapter.
func Stage[T any](batch []T, adapter Adapter[T]) *Staging[T] {
	rows := Dedupe(batch, adapter.Key, adapter.OrderedAt)
	keys := make([]string, len(rows))
	for i := range rows {
		keys[i] = adapter.Key(&rows[i])
	}
	return &Staging[T]{rows: rows, keys: keys}
}

// Rows returns the staged records.
func (s *Staging[T]) Rows() []T {
	return s.rows
}

// Keys returns the natural keys of the staged records, in row order.
func (s *Staging[T]) Keys() []string {
	return s.keys
}

// Len returns the number of staged records.
func (s *Staging[T]) Len() int {
	return len(s.rows)
}

// Discard releases the staged records.
func (s *Staging[T]) Discard() {
	s.rows = nil
	s.keys = nil
}

// chunk splits items into consecutive slices of at most size elements.
func chunk[E any](items []E, size int) [][]E {
	if size <= 0 || len(items) <= size {
		return [][]E{items}
	}
	chunks := make([][]E, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end])
	}
	return chunks
}
