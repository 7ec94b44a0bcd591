package api

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/pburman754/Project-ChatApp/internal/domain"
	"github.com/pburman754/Project-ChatApp/internal/repository"
	"github.com/pburman754/Project-ChatApp/internal/service"
)

type Handlers struct {
	svc *service.ChatService
}

// identity resolves the caller from auth locals, falling back to query
// params when the service runs without the auth middleware.
func identity(c *fiber.Ctx) domain.Identity {
	id := domain.Identity{}
	if v, ok := c.Locals("user_id").(string); ok {
		id.UserID = v
	}
	if v, ok := c.Locals("username").(string); ok {
		id.Username = v
	}
	if id.UserID == "" {
		id.UserID = c.Query("user_id")
	}
	if id.Username == "" {
		id.Username = c.Query("username")
	}
	return id
}

func (h *Handlers) listConversations(c *fiber.Ctx) error {
	user := identity(c)
	if user.Username == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "username required"})
	}
	ctx, cancel := opCtx(c)
	defer cancel()
	summaries, err := h.svc.Conversations(ctx, user)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok", "data": summaries})
}

// createMessage is the synchronous twin of the realtime newMessage event;
// it runs the same validate -> persist -> publish sequence through the
// shared service, so both paths share the router's dedup.
func (h *Handlers) createMessage(c *fiber.Ctx) error {
	var req struct {
		From  string `json:"from"`
		To    string `json:"to"`
		Msg   string `json:"msg"`
		Owner string `json:"owner"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	owner := req.Owner
	if v, ok := c.Locals("user_id").(string); ok && v != "" {
		owner = v
	}
	ctx, cancel := opCtx(c)
	defer cancel()
	m, err := h.svc.SendMessage(ctx, req.From, req.To, req.Msg, owner)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "ok", "data": m})
}

func (h *Handlers) getConversation(c *fiber.Ctx) error {
	ctx, cancel := opCtx(c)
	defer cancel()
	key, msgs, err := h.svc.Conversation(ctx, c.Params("participants"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"status":       "ok",
		"participants": []string{key.A, key.B},
		"data":         msgs,
	})
}

func (h *Handlers) updateMessage(c *fiber.Ctx) error {
	var req struct {
		NewMsg string `json:"newMsg"`
		Owner  string `json:"owner"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	owner := req.Owner
	if v, ok := c.Locals("user_id").(string); ok && v != "" {
		owner = v
	}
	ctx, cancel := opCtx(c)
	defer cancel()
	m, err := h.svc.UpdateMessage(ctx, c.Params("id"), req.NewMsg, owner)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok", "data": m})
}

func (h *Handlers) deleteMessage(c *fiber.Ctx) error {
	owner := c.Query("owner")
	if v, ok := c.Locals("user_id").(string); ok && v != "" {
		owner = v
	}
	ctx, cancel := opCtx(c)
	defer cancel()
	if err := h.svc.DeleteMessage(ctx, c.Params("id"), owner); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *Handlers) deleteConversation(c *fiber.Ctx) error {
	ctx, cancel := opCtx(c)
	defer cancel()
	n, err := h.svc.DeleteConversation(ctx, c.Params("participants"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok", "deleted": n})
}

func opCtx(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Context(), 5*time.Second)
}

// fail maps the error taxonomy onto status codes: validation errors are
// 400, missing records 404, everything else 500.
func fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrSelfMessage),
		errors.Is(err, domain.ErrTextTooLong),
		errors.Is(err, domain.ErrMissingParticipant),
		errors.Is(err, domain.ErrBadParticipants):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
