package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campushub/campus-api/internal/models"
)

func TestFanOutSkipsSenderMutedAndLeft(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := NewNotificationService(repo, zap.NewNop().Sugar())
	svc.now = testClock()

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	left := now.Add(-time.Hour)
	conv := &models.Conversation{
		ID: "g1", Kind: models.ConversationGroup, Name: "reading club",
		Participants: []models.Participant{
			{UserID: "alice", Role: models.RoleAdmin, JoinedAt: now},
			{UserID: "bob", Role: models.RoleMember, JoinedAt: now},
			{UserID: "carol", Role: models.RoleMember, Muted: true, JoinedAt: now},
			{UserID: "dave", Role: models.RoleMember, JoinedAt: now, LeftAt: &left},
		},
	}
	msg := &models.Message{ID: "m1", ConversationID: "g1", SenderID: "alice"}

	svc.FanOut(context.Background(), conv, msg)

	require.Len(t, repo.notifs, 1)
	n := repo.notifs[0]
	require.Equal(t, "bob", n.UserID)
	require.Equal(t, models.NotifyMessage, n.Type)
	require.Equal(t, "m1", n.RelatedID)
	require.Contains(t, n.Content, "reading club")
}

func TestListReportsUnreadCount(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := NewNotificationService(repo, zap.NewNop().Sugar())

	repo.notifs = []*models.Notification{
		{ID: "n1", UserID: "bob"},
		{ID: "n2", UserID: "bob", Read: true},
		{ID: "n3", UserID: "carol"},
	}

	page, err := svc.List(context.Background(), "bob", 1, 20)
	require.NoError(t, err)
	require.Len(t, page.Notifications, 2)
	require.Equal(t, int64(1), page.UnreadCount)

	_, err = svc.MarkRead(context.Background(), "n3", "bob")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.MarkAllRead(context.Background(), "bob"))
	page, err = svc.List(context.Background(), "bob", 1, 20)
	require.NoError(t, err)
	require.Equal(t, int64(0), page.UnreadCount)
}
