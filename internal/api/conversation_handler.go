package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campushub/campus-api/internal/models"
	"github.com/campushub/campus-api/internal/service"
)

type createConversationReq struct {
	Kind         string   `json:"kind"`
	Name         string   `json:"name"`
	Participants []string `json:"participants"`
}

func (s *Server) createConversation(c *fiber.Ctx) error {
	var req createConversationReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid payload"})
	}
	conv, err := s.conversations.Create(c.Context(), service.CreateConversationCommand{
		Kind:         models.ConversationKind(req.Kind),
		Name:         req.Name,
		CreatorID:    userID(c),
		Participants: req.Participants,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(conv)
}

func (s *Server) listConversations(c *fiber.Ctx) error {
	convs, err := s.conversations.ListMine(c.Context(), userID(c))
	if err != nil {
		return respondError(c, err)
	}
	if convs == nil {
		convs = []*models.Conversation{}
	}
	return c.JSON(convs)
}

func (s *Server) getConversation(c *fiber.Ctx) error {
	conv, err := s.conversations.Get(c.Context(), c.Params("id"), userID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(conv)
}

type addParticipantsReq struct {
	Participants []string `json:"participants"`
}

func (s *Server) addParticipants(c *fiber.Ctx) error {
	var req addParticipantsReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid payload"})
	}
	conv, err := s.conversations.AddParticipants(c.Context(), c.Params("id"), userID(c), req.Participants)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(conv)
}

func (s *Server) leaveConversation(c *fiber.Ctx) error {
	if err := s.conversations.Leave(c.Context(), c.Params("id"), userID(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "left conversation successfully"})
}

func (s *Server) muteConversation(c *fiber.Ctx) error {
	if err := s.conversations.SetMuted(c.Context(), c.Params("id"), userID(c), true); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "conversation muted"})
}

func (s *Server) unmuteConversation(c *fiber.Ctx) error {
	if err := s.conversations.SetMuted(c.Context(), c.Params("id"), userID(c), false); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "conversation unmuted"})
}
