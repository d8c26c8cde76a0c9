package database

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"

	"gorm.io/gorm"
)

// ErrLockHeld is returned by TryLock when another holder owns the lock.
var ErrLockHeld = errors.New("lock is held by another holder")

// Locker acquires named, non-blocking, process-spanning locks.
type Locker interface {
	// TryLock acquires the lock or returns ErrLockHeld immediately.
	// The returned function releases the lock and must be called exactly once.
	TryLock(ctx context.Context, name string) (func(), error)
}

// NewLocker returns the advisory locker matching the connection's dialect.
// MySQL uses GET_LOCK, PostgreSQL uses pg_try_advisory_lock and every other
// dialect falls back to an in-process lock.
func NewLocker(db *gorm.DB) Locker {
	switch db.Dialector.Name() {
	case DriverMySQL:
		return &mysqlLocker{db: db}
	case DriverPostgres:
		return &postgresLocker{db: db}
	default:
		return NewLocalLocker()
	}
}

type mysqlLocker struct {
	db *gorm.DB
}

func (l *mysqlLocker) TryLock(ctx context.Context, name string) (func(), error) {
	sqlDB, err := l.db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	// GET_LOCK is bound to the session, so the connection is pinned until release
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve connection for lock: %w", err)
	}

	var acquired int
	if err := conn.QueryRowContext(ctx, "SELECT GET_LOCK(?, 0)", name).Scan(&acquired); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to acquire lock %q: %w", name, err)
	}
	if acquired != 1 {
		_ = conn.Close()
		return nil, ErrLockHeld
	}

	return func() {
		_, _ = conn.ExecContext(context.Background(), "SELECT RELEASE_LOCK(?)", name)
		_ = conn.Close()
	}, nil
}

type postgresLocker struct {
	db *gorm.DB
}

func (l *postgresLocker) TryLock(ctx context.Context, name string) (func(), error) {
	sqlDB, err := l.db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve connection for lock: %w", err)
	}

	key := lockKey(name)
	var acquired bool
	if err := conn.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", key).Scan(&acquired); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to acquire lock %q: %w", name, err)
	}
	if !acquired {
		_ = conn.Close()
		return nil, ErrLockHeld
	}

	return func() {
		_, _ = conn.ExecContext(context.Background(), "SELECT pg_advisory_unlock($1)", key)
		_ = conn.Close()
	}, nil
}

// lockKey maps a lock name onto the bigint key space of PostgreSQL advisory locks.
func lockKey(name string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return int64(h.Sum64())
}

// LocalLocker is an in-process Locker for single-instance deployments and tests.
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewLocalLocker creates an empty in-process locker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]struct{})}
}

func (l *LocalLocker) TryLock(_ context.Context, name string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.held[name]; ok {
		return nil, ErrLockHeld
	}
	l.held[name] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, name)
			l.mu.Unlock()
		})
	}, nil
}
