package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

func (s *Server) listNotifications(c *fiber.Ctx) error {
	page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "20"), 10, 64)
	out, err := s.notifications.List(c.Context(), userID(c), page, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func (s *Server) markNotificationRead(c *fiber.Ctx) error {
	n, err := s.notifications.MarkRead(c.Context(), c.Params("id"), userID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(n)
}

func (s *Server) markAllNotificationsRead(c *fiber.Ctx) error {
	if err := s.notifications.MarkAllRead(c.Context(), userID(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "all notifications marked as read"})
}
