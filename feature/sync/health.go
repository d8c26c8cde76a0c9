package sync

import (
	"context"

	"calendar-sync/core/database"
	"calendar-sync/feature/calendar/models"

	"gorm.io/gorm"
)

// HealthReport is the body of the health endpoint.
type HealthReport struct {
	Status         string              `json:"status"`
	Database       string              `json:"database"`
	MissingColumns map[string][]string `json:"missing_columns,omitempty"`
}

// Healthy reports whether every check passed.
func (r HealthReport) Healthy() bool {
	return r.Status == "ok"
}

// CheckHealth pings the database and verifies the expected schema columns.
func CheckHealth(ctx context.Context, db *gorm.DB) HealthReport {
	report := HealthReport{Status: "ok", Database: "ok"}

	sqlDB, err := db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		report.Status = "degraded"
		report.Database = err.Error()
		return report
	}

	missing, err := database.MissingColumns(db.WithContext(ctx), models.ExpectedColumns())
	if err != nil {
		report.Status = "degraded"
		report.Database = err.Error()
		return report
	}
	if len(missing) > 0 {
		report.Status = "degraded"
		report.MissingColumns = missing
	}
	return report
}
