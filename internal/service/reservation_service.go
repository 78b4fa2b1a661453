package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campushub/campus-api/internal/models"
	"github.com/campushub/campus-api/internal/repository"
)

// loanPeriod is how long an approved reservation may keep the book.
const loanPeriod = 14 * 24 * time.Hour

type ReservationService struct {
	resvs repository.ReservationRepository
	log   *zap.SugaredLogger
	now   func() time.Time
	newID func() string
}

func NewReservationService(resvs repository.ReservationRepository, log *zap.SugaredLogger) *ReservationService {
	return &ReservationService{
		resvs: resvs,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// Reserve joins the waitlist for a book. Position is one past the current
// pending count. A user holds at most one active reservation per book.
func (s *ReservationService) Reserve(ctx context.Context, userID, bookID string) (*models.Reservation, error) {
	if bookID == "" {
		return nil, fmt.Errorf("%w: book id required", ErrValidation)
	}
	_, err := s.resvs.FindActive(ctx, userID, bookID)
	if err == nil {
		return nil, fmt.Errorf("%w: you already have an active reservation for this book", ErrConflict)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	pending, err := s.resvs.CountPending(ctx, bookID)
	if err != nil {
		return nil, err
	}
	res := &models.Reservation{
		ID:               s.newID(),
		UserID:           userID,
		BookID:           bookID,
		Status:           models.ReservationPending,
		WaitlistPosition: int(pending) + 1,
		RequestDate:      s.now(),
	}
	if err := s.resvs.Create(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

// Cancel flips the reservation to cancelled and renumbers everyone behind it
// so positions stay contiguous. The record is kept.
func (s *ReservationService) Cancel(ctx context.Context, id, userID string) (*models.Reservation, error) {
	res, err := s.resvs.CancelAndRenumber(ctx, id, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: reservation not found or cannot be cancelled", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *ReservationService) ListMine(ctx context.Context, userID string) ([]*models.Reservation, error) {
	out, err := s.resvs.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*models.Reservation{}
	}
	return out, nil
}

func (s *ReservationService) ListAll(ctx context.Context, f repository.ReservationFilter) ([]*models.Reservation, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, f.Status)
	}
	out, err := s.resvs.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*models.Reservation{}
	}
	return out, nil
}

// UpdateStatus is the librarian's lever: approve sets the approval date and a
// due date one loan period out, complete stamps the return date.
func (s *ReservationService) UpdateStatus(ctx context.Context, id string, status models.ReservationStatus) (*models.Reservation, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	now := s.now()
	var approval, due, ret *time.Time
	switch status {
	case models.ReservationApproved:
		d := now.Add(loanPeriod)
		approval, due = &now, &d
	case models.ReservationCompleted:
		ret = &now
	}
	res, err := s.resvs.UpdateStatus(ctx, id, status, approval, due, ret)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: reservation not found", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}
