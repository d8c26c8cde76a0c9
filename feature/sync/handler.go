package sync

import (
	"errors"

	"calendar-sync/core/logger"
	"calendar-sync/feature/calendar"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Handler exposes the sync triggers, the job status and the health check.
type Handler struct {
	runner *Runner
	db     *gorm.DB
	logger *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(runner *Runner, db *gorm.DB, logger *zap.Logger) *Handler {
	return &Handler{runner: runner, db: db, logger: logger}
}

// RegisterRoutes registers the sync and health routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/health", h.HandleHealth)

	g := app.Group("/sync")
	g.Post("/start", h.trigger(JobSyncAll))
	g.Post("/users", h.trigger(JobSyncUsers))
	g.Post("/incremental", h.trigger(JobIncremental))
	g.Post("/events/:userId", h.HandleSyncUserEvents)
	g.Delete("/events/:userId", h.HandlePurgeUserEvents)
	g.Get("/status", h.HandleStatus)
}

// trigger returns a handler enqueueing job.
// @Summary Enqueue Sync Job
// @Description Start a sync job in the background. The response is returned before the job finishes.
// @Tags sync
// @Produce json
// @Success 202 {object} map[string]string "Accepted"
// @Router /sync/start [post]
// @Router /sync/users [post]
// @Router /sync/incremental [post]
func (h *Handler) trigger(job Job) fiber.Handler {
	return func(c *fiber.Ctx) error {
		l := logger.WithRayID(h.logger, c)

		status := "accepted"
		if !h.runner.Trigger(job) {
			status = "already_running"
		}
		l.Info("Sync job requested", zap.String("job", string(job)), zap.String("status", status))

		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"job":    job,
			"status": status,
		})
	}
}

// HandleSyncUserEvents syncs the events of one user synchronously.
// @Summary Sync User Events
// @Description Fetch the calendar of a user from the provider and reconcile it.
// @Tags sync
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} RunSummary "Run summary"
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 409 {object} map[string]string "Run In Progress"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /sync/events/{userId} [post]
func (h *Handler) HandleSyncUserEvents(c *fiber.Ctx) error {
	userID := c.Params("userId")
	l := logger.WithRayID(h.logger, c)

	summary, err := h.runner.SyncUser(c.Context(), userID)
	if err != nil {
		return h.fail(c, l, "Failed to sync user events", userID, err)
	}
	return c.JSON(summary)
}

// HandlePurgeUserEvents deletes every stored event of a user.
// @Summary Purge User Events
// @Description Delete every stored calendar event of a user.
// @Tags sync
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} map[string]any "Deleted count"
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 409 {object} map[string]string "Run In Progress"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /sync/events/{userId} [delete]
func (h *Handler) HandlePurgeUserEvents(c *fiber.Ctx) error {
	userID := c.Params("userId")
	l := logger.WithRayID(h.logger, c)

	deleted, err := h.runner.PurgeUserEvents(c.Context(), userID)
	if err != nil {
		return h.fail(c, l, "Failed to purge user events", userID, err)
	}
	return c.JSON(fiber.Map{
		"user_id": userID,
		"deleted": deleted,
	})
}

// HandleStatus returns the last known state of every job.
// @Summary Sync Status
// @Description Get the running flag and the last summary of every sync job.
// @Tags sync
// @Produce json
// @Success 200 {array} JobStatus "Job status"
// @Router /sync/status [get]
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	return c.JSON(h.runner.Status())
}

// HandleHealth checks the database connection and schema.
// @Summary Health Check
// @Description Ping the database and verify the expected columns exist.
// @Tags health
// @Produce json
// @Success 200 {object} HealthReport "Healthy"
// @Failure 503 {object} HealthReport "Degraded"
// @Router /health [get]
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	report := CheckHealth(c.Context(), h.db)
	if !report.Healthy() {
		logger.WithRayID(h.logger, c).Warn("Health check degraded",
			zap.String("database", report.Database),
			zap.Any("missing_columns", report.MissingColumns),
		)
		return c.Status(fiber.StatusServiceUnavailable).JSON(report)
	}
	return c.JSON(report)
}

func (h *Handler) fail(c *fiber.Ctx, l *zap.Logger, msg, userID string, err error) error {
	switch {
	case errors.Is(err, calendar.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrRunInProgress):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}

	l.Error(msg, zap.String("user_id", userID), zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": err.Error(),
	})
}
