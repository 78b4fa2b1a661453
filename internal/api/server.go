package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/campushub/campus-api/internal/auth"
	"github.com/campushub/campus-api/internal/service"
	"github.com/campushub/campus-api/internal/ws"
)

type Server struct {
	conversations *service.ConversationService
	messages      *service.MessageService
	notifications *service.NotificationService
	blocks        *service.BlockService
	reservations  *service.ReservationService
	hub           *ws.Hub
}

type Deps struct {
	Conversations *service.ConversationService
	Messages      *service.MessageService
	Notifications *service.NotificationService
	Blocks        *service.BlockService
	Reservations  *service.ReservationService
	Hub           *ws.Hub
	Verifier      *auth.Verifier
	RateLimiter   *RateLimiter
}

func NewServer(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "server error"})
		},
	})
	app.Use(recover.New())
	app.Use(logger.New())

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	s := &Server{
		conversations: d.Conversations,
		messages:      d.Messages,
		notifications: d.Notifications,
		blocks:        d.Blocks,
		reservations:  d.Reservations,
		hub:           d.Hub,
	}

	v1 := app.Group("/v1")
	v1.Use(JWTAuthMiddleware(d.Verifier))
	if d.RateLimiter != nil {
		v1.Use(d.RateLimiter.Middleware())
	}

	v1.Post("/conversations", s.createConversation)
	v1.Get("/conversations", s.listConversations)
	v1.Get("/conversations/:id", s.getConversation)
	v1.Post("/conversations/:id/participants", s.addParticipants)
	v1.Post("/conversations/:id/leave", s.leaveConversation)
	v1.Post("/conversations/:id/mute", s.muteConversation)
	v1.Post("/conversations/:id/unmute", s.unmuteConversation)

	v1.Post("/messages", s.sendMessage)
	v1.Get("/messages/conversation/:id", s.listMessages)
	v1.Put("/messages/:id", s.editMessage)
	v1.Delete("/messages/:id", s.deleteMessage)
	v1.Post("/messages/:id/reactions", s.addReaction)
	v1.Delete("/messages/:id/reactions", s.removeReaction)
	v1.Post("/messages/:id/read", s.markMessageRead)

	v1.Post("/users/block/:id", s.blockUser)
	v1.Delete("/users/block/:id", s.unblockUser)
	v1.Get("/users/block", s.listBlocked)

	v1.Get("/notifications", s.listNotifications)
	v1.Put("/notifications/read-all", s.markAllNotificationsRead)
	v1.Put("/notifications/:id/read", s.markNotificationRead)

	v1.Post("/reservations", s.createReservation)
	v1.Get("/reservations/my", s.myReservations)
	v1.Post("/reservations/:id/cancel", s.cancelReservation)
	v1.Get("/reservations", s.allReservations)
	v1.Put("/reservations/:id/status", s.updateReservationStatus)

	v1.Get("/ws", s.wsUpgrade, s.wsHandler())

	return app
}
