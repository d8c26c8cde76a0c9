package calendar

import (
	"errors"

	"calendar-sync/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for users and events.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the read routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	users := app.Group("/users")
	users.Get("/", h.HandleListUsers)
	users.Get("/:id", h.HandleGetUser)

	app.Get("/events/user/:id", h.HandleGetUserEvents)
}

// HandleListUsers returns every synced user with its event count.
// @Summary List Users
// @Description List every synced user with the number of stored events.
// @Tags users
// @Produce json
// @Success 200 {array} models.UserSummary "Users"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /users [get]
func (h *Handler) HandleListUsers(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	users, err := h.service.ListUsers(c.Context())
	if err != nil {
		l.Error("Failed to list users", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(users)
}

// HandleGetUser returns one user with its events.
// @Summary Get User
// @Description Get a user and its calendar events ordered by start.
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} models.UserWithEvents "User with events"
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /users/{id} [get]
func (h *Handler) HandleGetUser(c *fiber.Ctx) error {
	id := c.Params("id")
	l := logger.WithRayID(h.service.logger, c)

	result, err := h.service.GetUserWithEvents(c.Context(), id)
	if errors.Is(err, ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if err != nil {
		l.Error("Failed to load user", zap.String("user_id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(result)
}

// HandleGetUserEvents returns the events of a user.
// @Summary Get User Events
// @Description List the calendar events of a user ordered by start and end.
// @Tags events
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {array} models.CalendarEvent "Events"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /events/user/{id} [get]
func (h *Handler) HandleGetUserEvents(c *fiber.Ctx) error {
	id := c.Params("id")
	l := logger.WithRayID(h.service.logger, c)

	events, err := h.service.GetEventsByUser(c.Context(), id)
	if err != nil {
		l.Error("Failed to list events", zap.String("user_id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(events)
}
