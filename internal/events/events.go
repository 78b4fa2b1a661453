package events

import (
	"context"

	"go.uber.org/zap"

	"github.com/campushub/campus-api/internal/models"
)

const (
	EventMessageCreated = "message.created"
	EventMessageEdited  = "message.edited"
	EventMessageDeleted = "message.deleted"
	EventMessageReacted = "message.reacted"
	EventMessageRead    = "message.read"
)

// Envelope is the wire shape of every chat event on the broker.
type Envelope struct {
	Event          string          `json:"event"`
	ConversationID string          `json:"conversation_id"`
	MessageID      string          `json:"message_id"`
	UserID         string          `json:"user_id,omitempty"`
	Message        *models.Message `json:"message,omitempty"`
}

type jsonPublisher interface {
	PublishJSON(ctx context.Context, key string, value interface{}) error
}

// Publisher emits typed chat events. All publishes are best effort: a broker
// hiccup is logged and the request carries on.
type Publisher struct {
	prod jsonPublisher
	log  *zap.SugaredLogger
}

func NewPublisher(prod jsonPublisher, log *zap.SugaredLogger) *Publisher {
	return &Publisher{prod: prod, log: log}
}

func (p *Publisher) publish(ctx context.Context, env Envelope) {
	if err := p.prod.PublishJSON(ctx, env.ConversationID, env); err != nil {
		p.log.Warnw("event publish failed", "event", env.Event, "message_id", env.MessageID, "err", err)
	}
}

func (p *Publisher) MessageCreated(ctx context.Context, m *models.Message) {
	p.publish(ctx, Envelope{Event: EventMessageCreated, ConversationID: m.ConversationID, MessageID: m.ID, Message: m})
}

func (p *Publisher) MessageEdited(ctx context.Context, m *models.Message) {
	p.publish(ctx, Envelope{Event: EventMessageEdited, ConversationID: m.ConversationID, MessageID: m.ID, Message: m})
}

func (p *Publisher) MessageDeleted(ctx context.Context, convID, msgID string) {
	p.publish(ctx, Envelope{Event: EventMessageDeleted, ConversationID: convID, MessageID: msgID})
}

func (p *Publisher) MessageReacted(ctx context.Context, m *models.Message, userID string) {
	p.publish(ctx, Envelope{Event: EventMessageReacted, ConversationID: m.ConversationID, MessageID: m.ID, UserID: userID, Message: m})
}

func (p *Publisher) MessageRead(ctx context.Context, m *models.Message, userID string) {
	p.publish(ctx, Envelope{Event: EventMessageRead, ConversationID: m.ConversationID, MessageID: m.ID, UserID: userID})
}
