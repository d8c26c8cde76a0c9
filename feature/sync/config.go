package sync

import "time"

// Config holds the sync engine configuration.
type Config struct {
	// StalenessWindow is how long an event check result stays valid for the incremental check.
	StalenessWindow time.Duration `mapstructure:"staleness_window" default:"24h" validate:"gt=0"`
	// BatchThreshold is the largest user batch reconciled row-by-row.
	BatchThreshold int `mapstructure:"batch_threshold" default:"100" validate:"gt=0"`
	// ChunkSize bounds rows per statement in the set-based merge.
	ChunkSize int `mapstructure:"chunk_size" default:"500" validate:"gt=0"`
	// Throttle is the pause between users during the incremental check.
	Throttle time.Duration `mapstructure:"throttle" default:"100ms" validate:"gte=0"`
	// ProgressEvery is the number of users between progress log lines.
	ProgressEvery int `mapstructure:"progress_every" default:"100" validate:"gt=0"`
	// MaxParallelism is accepted for compatibility. Every loop runs sequentially.
	MaxParallelism int `mapstructure:"max_parallelism" default:"3" validate:"gte=1"`
	// LockName names the advisory lock held for the duration of a run.
	LockName string `mapstructure:"lock_name" default:"calendar-sync" validate:"required"`
	// SchedulerEnabled starts the recurring jobs with the HTTP server.
	SchedulerEnabled bool `mapstructure:"scheduler_enabled" default:"true"`
	// FullSyncInterval is the period of the full sync job. Zero disables it.
	FullSyncInterval time.Duration `mapstructure:"full_sync_interval" default:"6h" validate:"gte=0"`
	// UsersInterval is the period of the users-only job. Zero disables it.
	UsersInterval time.Duration `mapstructure:"users_interval" default:"3h" validate:"gte=0"`
	// IncrementalInterval is the period of the incremental check. Zero disables it.
	IncrementalInterval time.Duration `mapstructure:"incremental_interval" default:"1h" validate:"gte=0"`
}
