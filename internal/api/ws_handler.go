package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// wsUpgrade gates the upgrade: the socket delivers messages as they arrive,
// so the viewer must be an active participant, not just a past one.
func (s *Server) wsUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	convID := c.Query("conversation_id")
	if convID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "missing conversation_id"})
	}
	if err := s.conversations.AuthorizeSubscription(c.Context(), convID, userID(c)); err != nil {
		return respondError(c, err)
	}
	c.Locals("conversation_id", convID)
	return c.Next()
}

func (s *Server) wsHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		convID, _ := conn.Locals("conversation_id").(string)
		s.hub.Subscribe(convID, conn)
		defer func() {
			s.hub.Unsubscribe(convID, conn)
			_ = conn.Close()
		}()
		// read loop only to detect close; clients don't send over this socket
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
}
