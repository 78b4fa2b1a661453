package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/campushub/campus-api/internal/models"
	"github.com/campushub/campus-api/internal/service"
)

type sendMessageReq struct {
	ConversationID string `json:"conversation_id"`
	Content        string `json:"content"`
	MessageType    string `json:"message_type"`
	ReplyTo        string `json:"reply_to,omitempty"`
}

func (s *Server) sendMessage(c *fiber.Ctx) error {
	var req sendMessageReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid payload"})
	}
	msg, err := s.messages.Send(c.Context(), service.SendMessageCommand{
		ConversationID: req.ConversationID,
		SenderID:       userID(c),
		Kind:           models.MessageKind(req.MessageType),
		Content:        req.Content,
		ReplyTo:        req.ReplyTo,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

func (s *Server) listMessages(c *fiber.Ctx) error {
	page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "50"), 10, 64)
	msgs, err := s.messages.List(c.Context(), c.Params("id"), userID(c), page, limit)
	if err != nil {
		return respondError(c, err)
	}
	if msgs == nil {
		msgs = []*models.Message{}
	}
	return c.JSON(msgs)
}

type editMessageReq struct {
	Content string `json:"content"`
}

func (s *Server) editMessage(c *fiber.Ctx) error {
	var req editMessageReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid payload"})
	}
	msg, err := s.messages.Edit(c.Context(), c.Params("id"), userID(c), req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(msg)
}

func (s *Server) deleteMessage(c *fiber.Ctx) error {
	if err := s.messages.Delete(c.Context(), c.Params("id"), userID(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "message deleted successfully"})
}

type reactionReq struct {
	ReactionType string `json:"reaction_type"`
}

func (s *Server) addReaction(c *fiber.Ctx) error {
	var req reactionReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid payload"})
	}
	msg, err := s.messages.React(c.Context(), c.Params("id"), userID(c), models.ReactionKind(req.ReactionType))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(msg)
}

func (s *Server) removeReaction(c *fiber.Ctx) error {
	msg, err := s.messages.Unreact(c.Context(), c.Params("id"), userID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(msg)
}

func (s *Server) markMessageRead(c *fiber.Ctx) error {
	msg, err := s.messages.MarkRead(c.Context(), c.Params("id"), userID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(msg)
}
