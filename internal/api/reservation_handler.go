package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campushub/campus-api/internal/models"
	"github.com/campushub/campus-api/internal/repository"
)

type createReservationReq struct {
	BookID string `json:"book_id"`
}

func (s *Server) createReservation(c *fiber.Ctx) error {
	var req createReservationReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid payload"})
	}
	res, err := s.reservations.Reserve(c.Context(), userID(c), req.BookID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":     "added to waitlist",
		"reservation": res,
	})
}

func (s *Server) myReservations(c *fiber.Ctx) error {
	out, err := s.reservations.ListMine(c.Context(), userID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func (s *Server) cancelReservation(c *fiber.Ctx) error {
	res, err := s.reservations.Cancel(c.Context(), c.Params("id"), userID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":     "reservation cancelled successfully",
		"reservation": res,
	})
}

func (s *Server) allReservations(c *fiber.Ctx) error {
	if !isAdmin(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "admin access required"})
	}
	out, err := s.reservations.ListAll(c.Context(), repository.ReservationFilter{
		Status: models.ReservationStatus(c.Query("status")),
		UserID: c.Query("userId"),
		BookID: c.Query("bookId"),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

type updateReservationStatusReq struct {
	Status string `json:"status"`
}

func (s *Server) updateReservationStatus(c *fiber.Ctx) error {
	if !isAdmin(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "admin access required"})
	}
	var req updateReservationStatusReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid payload"})
	}
	res, err := s.reservations.UpdateStatus(c.Context(), c.Params("id"), models.ReservationStatus(req.Status))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}
