package api

import (
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"

	"github.com/pburman754/Project-ChatApp/internal/auth"
	"github.com/pburman754/Project-ChatApp/internal/service"
	"github.com/pburman754/Project-ChatApp/internal/ws"
)

// NewServer wires the fiber app: the realtime upgrade endpoint and the
// synchronous HTTP equivalents of the message operations.
func NewServer(svc *service.ChatService, wsh *ws.Handler, jv *auth.Validator) *fiber.App {
	app := fiber.New()
	app.Use(fiberlogger.New())

	h := &Handlers{svc: svc}

	app.Get("/v1/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	v1 := app.Group("/v1")
	if jv != nil {
		v1.Use(auth.Middleware(jv))
	}

	v1.Get("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	v1.Get("/ws", websocket.New(wsh.Handle))

	v1.Get("/chats", h.listConversations)
	v1.Post("/chats", h.createMessage)
	v1.Get("/chats/conversation/:participants", h.getConversation)
	v1.Delete("/chats/conversation/:participants", h.deleteConversation)
	v1.Put("/chats/:id", h.updateMessage)
	v1.Delete("/chats/:id", h.deleteMessage)

	return app
}
