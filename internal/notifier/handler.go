package notifier

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Handler exposes the notification history over HTTP.
type Handler struct {
	repo   Repository
	logger *slog.Logger
}

// NewHandler creates the notification handler.
func NewHandler(repo Repository, logger *slog.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// List returns a page of the authenticated user's notifications.
func (h *Handler) List(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	limit := c.QueryInt("limit", defaultPageSize)
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	list, err := h.repo.ListByUser(c.UserContext(), userID, limit, offset)
	if err != nil {
		h.logger.Error("failed to list notifications", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load notifications"})
	}
	if list == nil {
		list = []Notification{}
	}
	return c.JSON(list)
}

// MarkRead stamps one of the user's notifications as read.
func (h *Handler) MarkRead(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	id := c.Params("id")

	n, err := h.repo.FindByID(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "notification not found"})
		}
		h.logger.Error("failed to load notification", "id", id, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not update notification"})
	}
	if n.UserID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
	}

	if err := h.repo.MarkRead(c.UserContext(), id, time.Now()); err != nil {
		h.logger.Error("failed to mark notification read", "id", id, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not update notification"})
	}
	return c.JSON(fiber.Map{"message": "notification marked as read"})
}
