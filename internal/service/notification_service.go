package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/campushub/campus-api/internal/metrics"
	"github.com/campushub/campus-api/internal/models"
	"github.com/campushub/campus-api/internal/repository"
)

type NotificationService struct {
	notifs repository.NotificationRepository
	log    *zap.SugaredLogger
	now    func() time.Time
}

func NewNotificationService(notifs repository.NotificationRepository, log *zap.SugaredLogger) *NotificationService {
	return &NotificationService{
		notifs: notifs,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// FanOut creates one notification per active, unmuted participant other than
// the sender. Fire and forget: a storage failure is logged, never surfaced,
// so a lost notification cannot fail the message send.
func (s *NotificationService) FanOut(ctx context.Context, conv *models.Conversation, msg *models.Message) {
	title := "New Message"
	convName := conv.Name
	if convName == "" {
		convName = "conversation"
	}

	var ns []*models.Notification
	now := s.now()
	for _, id := range conv.ActiveUserIDs() {
		if id == msg.SenderID {
			continue
		}
		p, ok := conv.ActiveParticipant(id)
		if !ok || p.Muted {
			continue
		}
		ns = append(ns, &models.Notification{
			UserID:    id,
			Type:      models.NotifyMessage,
			Title:     title,
			Content:   "New message in " + convName,
			RelatedID: msg.ID,
			CreatedAt: now,
		})
	}
	if len(ns) == 0 {
		return
	}
	if err := s.notifs.InsertMany(ctx, ns); err != nil {
		s.log.Errorw("notification fan-out failed", "conversation_id", conv.ID, "message_id", msg.ID, "err", err)
		return
	}
	metrics.NotificationsFanned.Add(float64(len(ns)))
}

type NotificationPage struct {
	Notifications []*models.Notification `json:"notifications"`
	UnreadCount   int64                  `json:"unreadCount"`
}

func (s *NotificationService) List(ctx context.Context, userID string, page, limit int64) (*NotificationPage, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	items, err := s.notifs.ListByUser(ctx, userID, page, limit)
	if err != nil {
		return nil, err
	}
	unread, err := s.notifs.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*models.Notification{}
	}
	return &NotificationPage{Notifications: items, UnreadCount: unread}, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) (*models.Notification, error) {
	n, err := s.notifs.MarkRead(ctx, id, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: notification not found", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	return s.notifs.MarkAllRead(ctx, userID)
}
