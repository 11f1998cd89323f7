package subscription

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes subscription CRUD endpoints. All routes sit behind the
// JWT middleware, which puts the caller's user id into request locals.
type Handler struct {
	svc *Service
}

// NewHandler creates a subscription handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Create stores a new subscription for the authenticated user.
func (h *Handler) Create(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	if uid == "" {
		return c.SendStatus(http.StatusUnauthorized)
	}

	var in Input
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid input data")
	}

	sub, err := h.svc.Create(c.UserContext(), uid, in)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	return c.Status(http.StatusCreated).JSON(sub)
}

// Update replaces the editable fields of a subscription.
func (h *Handler) Update(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	if uid == "" {
		return c.SendStatus(http.StatusUnauthorized)
	}

	var in Input
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid input data")
	}

	sub, err := h.svc.Update(c.UserContext(), uid, c.Params("id"), in)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, ErrNotFound.Error())
		}
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(sub)
}

// Delete removes a subscription.
func (h *Handler) Delete(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	if uid == "" {
		return c.SendStatus(http.StatusUnauthorized)
	}

	if err := h.svc.Delete(c.UserContext(), uid, c.Params("id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, ErrNotFound.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, "failed to delete subscription")
	}

	return c.JSON(fiber.Map{"message": "subscription deleted successfully"})
}

// List returns all subscriptions of the authenticated user.
func (h *Handler) List(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	if uid == "" {
		return c.SendStatus(http.StatusUnauthorized)
	}

	subs, err := h.svc.List(c.UserContext(), uid)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "failed to get subscriptions")
	}
	if subs == nil {
		subs = []Subscription{}
	}

	return c.JSON(subs)
}

// Get returns a single subscription.
func (h *Handler) Get(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	if uid == "" {
		return c.SendStatus(http.StatusUnauthorized)
	}

	sub, err := h.svc.Get(c.UserContext(), uid, c.Params("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, ErrNotFound.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, "failed to retrieve subscription")
	}

	return c.JSON(sub)
}
