package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campushub/campus-api/internal/metrics"
	"github.com/campushub/campus-api/internal/models"
	"github.com/campushub/campus-api/internal/repository"
)

// Notifier fans one message out to eligible recipients. Failures must not
// fail the send.
type Notifier interface {
	FanOut(ctx context.Context, conv *models.Conversation, msg *models.Message)
}

// EventPublisher pushes message lifecycle events to the broker for real-time
// delivery. Best effort.
type EventPublisher interface {
	MessageCreated(ctx context.Context, m *models.Message)
	MessageEdited(ctx context.Context, m *models.Message)
	MessageDeleted(ctx context.Context, convID, msgID string)
	MessageReacted(ctx context.Context, m *models.Message, userID string)
	MessageRead(ctx context.Context, m *models.Message, userID string)
}

// RecentCache keeps the hot first page of a conversation.
type RecentCache interface {
	Push(ctx context.Context, convID string, m *models.Message)
	Invalidate(ctx context.Context, convID string)
	GetPage(ctx context.Context, convID string, limit int64) ([]*models.Message, bool)
}

type MessageService struct {
	msgs     repository.MessageRepository
	convs    repository.ConversationRepository
	blocks   repository.BlockRepository
	notifier Notifier
	events   EventPublisher
	cache    RecentCache
	log      *zap.SugaredLogger
	now      func() time.Time
	newID    func() string
}

func NewMessageService(
	msgs repository.MessageRepository,
	convs repository.ConversationRepository,
	blocks repository.BlockRepository,
	notifier Notifier,
	events EventPublisher,
	cache RecentCache,
	log *zap.SugaredLogger,
) *MessageService {
	return &MessageService{
		msgs:     msgs,
		convs:    convs,
		blocks:   blocks,
		notifier: notifier,
		events:   events,
		cache:    cache,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

type SendMessageCommand struct {
	ConversationID string
	SenderID       string
	Kind           models.MessageKind
	Content        string
	ReplyTo        string
}

// Send appends a message. The sender must hold an open membership row and
// must not be in a block relation with any other active participant. The
// sender's own read receipt is written with the message.
func (s *MessageService) Send(ctx context.Context, cmd SendMessageCommand) (*models.Message, error) {
	if !cmd.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown message type %q", ErrValidation, cmd.Kind)
	}
	if cmd.Kind == models.MessageText && cmd.Content == "" {
		return nil, fmt.Errorf("%w: content required for text message", ErrValidation)
	}

	conv, err := s.convs.GetByID(ctx, cmd.ConversationID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: conversation not found", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if _, ok := conv.ActiveParticipant(cmd.SenderID); !ok {
		return nil, fmt.Errorf("%w: not authorized to send message in this conversation", ErrForbidden)
	}

	others := make([]string, 0, len(conv.Participants))
	for _, id := range conv.ActiveUserIDs() {
		if id != cmd.SenderID {
			others = append(others, id)
		}
	}
	blocked, err := s.blocks.AnyBetween(ctx, cmd.SenderID, others)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, fmt.Errorf("%w: you cannot send messages to this user", ErrForbidden)
	}

	now := s.now()
	msg := &models.Message{
		ID:             s.newID(),
		ConversationID: cmd.ConversationID,
		SenderID:       cmd.SenderID,
		Kind:           cmd.Kind,
		Content:        cmd.Content,
		ReplyTo:        cmd.ReplyTo,
		Reactions:      []models.Reaction{},
		ReadBy:         []models.ReadReceipt{{UserID: cmd.SenderID, ReadAt: now}},
		CreatedAt:      now,
	}
	if err := s.msgs.Insert(ctx, msg); err != nil {
		return nil, err
	}
	metrics.MessagesSent.Inc()

	if s.cache != nil {
		s.cache.Push(ctx, conv.ID, msg)
	}
	if s.notifier != nil {
		s.notifier.FanOut(ctx, conv, msg)
	}
	if s.events != nil {
		s.events.MessageCreated(ctx, msg)
	}
	return msg, nil
}

// Edit replaces content. Sender only.
func (s *MessageService) Edit(ctx context.Context, msgID, requesterID, newContent string) (*models.Message, error) {
	if newContent == "" {
		return nil, fmt.Errorf("%w: content required", ErrValidation)
	}
	m, err := s.getMessage(ctx, msgID)
	if err != nil {
		return nil, err
	}
	if m.SenderID != requesterID {
		return nil, fmt.Errorf("%w: only the sender can edit a message", ErrForbidden)
	}
	updated, err := s.msgs.Edit(ctx, msgID, newContent, s.now())
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: message not found", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, updated.ConversationID)
	}
	if s.events != nil {
		s.events.MessageEdited(ctx, updated)
	}
	return updated, nil
}

// Delete removes a message outright. Sender only.
func (s *MessageService) Delete(ctx context.Context, msgID, requesterID string) error {
	m, err := s.getMessage(ctx, msgID)
	if err != nil {
		return err
	}
	if m.SenderID != requesterID {
		return fmt.Errorf("%w: only the sender can delete a message", ErrForbidden)
	}
	if err := s.msgs.Delete(ctx, msgID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: message not found", ErrNotFound)
		}
		return err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, m.ConversationID)
	}
	if s.events != nil {
		s.events.MessageDeleted(ctx, m.ConversationID, msgID)
	}
	return nil
}

// List pages messages newest-first through the visibility filter: a viewer
// whose most recent membership row is closed sees nothing past their left_at.
func (s *MessageService) List(ctx context.Context, convID, viewerID string, page, limit int64) ([]*models.Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	conv, err := s.convs.GetByID(ctx, convID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: conversation not found", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	p, ok := conv.LatestParticipation(viewerID)
	if !ok {
		return nil, fmt.Errorf("%w: not authorized to view these messages", ErrForbidden)
	}

	// hot path: first page for a fully active viewer
	if p.LeftAt == nil && page <= 1 && s.cache != nil {
		if msgs, hit := s.cache.GetPage(ctx, convID, limit); hit {
			return msgs, nil
		}
	}
	return s.msgs.ListPage(ctx, convID, p.LeftAt, page, limit)
}

// React stores at most one reaction per user per message; a repeat call
// replaces the previous kind.
func (s *MessageService) React(ctx context.Context, msgID, userID string, kind models.ReactionKind) (*models.Message, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown reaction type %q", ErrValidation, kind)
	}
	if _, err := s.getMessage(ctx, msgID); err != nil {
		return nil, err
	}
	m, err := s.msgs.ReplaceReaction(ctx, msgID, userID, kind, s.now())
	if errors.Is(err, repository.ErrConflict) {
		return nil, fmt.Errorf("%w: reaction update contention, retry", ErrConflict)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: message not found", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, m.ConversationID)
	}
	if s.events != nil {
		s.events.MessageReacted(ctx, m, userID)
	}
	return m, nil
}

// Unreact is a no-op when the user has no reaction on the message.
func (s *MessageService) Unreact(ctx context.Context, msgID, userID string) (*models.Message, error) {
	m, err := s.msgs.RemoveReaction(ctx, msgID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: message not found", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, m.ConversationID)
	}
	return m, nil
}

// MarkRead records a read receipt once; repeats are absorbed.
func (s *MessageService) MarkRead(ctx context.Context, msgID, userID string) (*models.Message, error) {
	m, err := s.msgs.MarkRead(ctx, msgID, userID, s.now())
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: message not found", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, m.ConversationID)
	}
	if s.events != nil {
		s.events.MessageRead(ctx, m, userID)
	}
	return m, nil
}

func (s *MessageService) getMessage(ctx context.Context, msgID string) (*models.Message, error) {
	m, err := s.msgs.GetByID(ctx, msgID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: message not found", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}
