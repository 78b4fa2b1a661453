package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campushub/campus-api/internal/models"
)

func newResvService(repo *fakeReservationRepo) *ReservationService {
	s := NewReservationService(repo, zap.NewNop().Sugar())
	s.now = testClock()
	s.newID = seqIDs("resv")
	return s
}

func TestReserveAssignsNextWaitlistPosition(t *testing.T) {
	svc := newResvService(newFakeReservationRepo())
	ctx := context.Background()

	for i, user := range []string{"alice", "bob", "carol"} {
		res, err := svc.Reserve(ctx, user, "book-1")
		require.NoError(t, err)
		require.Equal(t, i+1, res.WaitlistPosition)
		require.Equal(t, models.ReservationPending, res.Status)
	}

	// a different book starts its own waitlist
	res, err := svc.Reserve(ctx, "alice", "book-2")
	require.NoError(t, err)
	require.Equal(t, 1, res.WaitlistPosition)
}

func TestReserveRejectsSecondActiveReservation(t *testing.T) {
	svc := newResvService(newFakeReservationRepo())
	ctx := context.Background()

	_, err := svc.Reserve(ctx, "alice", "book-1")
	require.NoError(t, err)

	_, err = svc.Reserve(ctx, "alice", "book-1")
	require.ErrorIs(t, err, ErrConflict)
}

func TestCancelRenumbersWaitlist(t *testing.T) {
	repo := newFakeReservationRepo()
	svc := newResvService(repo)
	ctx := context.Background()

	users := []string{"u1", "u2", "u3", "u4", "u5"}
	ids := make(map[string]string)
	for _, u := range users {
		res, err := svc.Reserve(ctx, u, "book-1")
		require.NoError(t, err)
		ids[u] = res.ID
	}

	cancelled, err := svc.Cancel(ctx, ids["u3"], "u3")
	require.NoError(t, err)
	require.Equal(t, models.ReservationCancelled, cancelled.Status)

	// the record survives cancellation
	kept, err := repo.GetByID(ctx, ids["u3"])
	require.NoError(t, err)
	require.Equal(t, models.ReservationCancelled, kept.Status)

	// positions 4 and 5 slid down to 3 and 4; 1 and 2 untouched
	want := map[string]int{"u1": 1, "u2": 2, "u4": 3, "u5": 4}
	for u, pos := range want {
		res, err := repo.GetByID(ctx, ids[u])
		require.NoError(t, err)
		require.Equal(t, pos, res.WaitlistPosition, fmt.Sprintf("user %s", u))
	}
}

func TestCancelForeignOrSettledReservation(t *testing.T) {
	svc := newResvService(newFakeReservationRepo())
	ctx := context.Background()

	res, err := svc.Reserve(ctx, "alice", "book-1")
	require.NoError(t, err)

	// someone else's reservation is invisible to the caller
	_, err = svc.Cancel(ctx, res.ID, "bob")
	require.ErrorIs(t, err, ErrNotFound)

	// cancelling twice: the second call finds nothing cancellable
	_, err = svc.Cancel(ctx, res.ID, "alice")
	require.NoError(t, err)
	_, err = svc.Cancel(ctx, res.ID, "alice")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateStatusStampsDates(t *testing.T) {
	svc := newResvService(newFakeReservationRepo())
	ctx := context.Background()

	res, err := svc.Reserve(ctx, "alice", "book-1")
	require.NoError(t, err)

	approved, err := svc.UpdateStatus(ctx, res.ID, models.ReservationApproved)
	require.NoError(t, err)
	require.NotNil(t, approved.ApprovalDate)
	require.NotNil(t, approved.DueDate)
	require.Equal(t, approved.ApprovalDate.Add(loanPeriod), *approved.DueDate)

	completed, err := svc.UpdateStatus(ctx, res.ID, models.ReservationCompleted)
	require.NoError(t, err)
	require.NotNil(t, completed.ReturnDate)

	_, err = svc.UpdateStatus(ctx, res.ID, "lost")
	require.ErrorIs(t, err, ErrValidation)
}
