package api

import (
	"github.com/gofiber/fiber/v2"
)

func (s *Server) blockUser(c *fiber.Ctx) error {
	if err := s.blocks.Block(c.Context(), userID(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "user blocked successfully"})
}

func (s *Server) unblockUser(c *fiber.Ctx) error {
	if err := s.blocks.Unblock(c.Context(), userID(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "user unblocked successfully"})
}

func (s *Server) listBlocked(c *fiber.Ctx) error {
	blocks, err := s.blocks.ListBlocked(c.Context(), userID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(blocks)
}
