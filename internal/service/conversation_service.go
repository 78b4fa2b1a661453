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

type ConversationService struct {
	convs  repository.ConversationRepository
	blocks repository.BlockRepository
	log    *zap.SugaredLogger
	now    func() time.Time
	newID  func() string
}

func NewConversationService(convs repository.ConversationRepository, blocks repository.BlockRepository, log *zap.SugaredLogger) *ConversationService {
	return &ConversationService{
		convs:  convs,
		blocks: blocks,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

type CreateConversationCommand struct {
	Kind         models.ConversationKind
	Name         string
	CreatorID    string
	Participants []string
}

// Create makes a conversation with the creator as admin. Direct creation is
// idempotent by pair: an existing direct conversation between the two users
// is returned instead of a duplicate.
func (s *ConversationService) Create(ctx context.Context, cmd CreateConversationCommand) (*models.Conversation, error) {
	switch cmd.Kind {
	case models.ConversationDirect:
		if len(cmd.Participants) != 1 {
			return nil, fmt.Errorf("%w: direct conversation needs exactly one other participant", ErrValidation)
		}
		if cmd.Participants[0] == cmd.CreatorID {
			return nil, fmt.Errorf("%w: cannot start a direct conversation with yourself", ErrValidation)
		}
	case models.ConversationGroup:
		if len(cmd.Participants) == 0 {
			return nil, fmt.Errorf("%w: group conversation needs participants", ErrValidation)
		}
	default:
		return nil, fmt.Errorf("%w: unknown conversation kind %q", ErrValidation, cmd.Kind)
	}

	blocked, err := s.blocks.AnyBetween(ctx, cmd.CreatorID, cmd.Participants)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, fmt.Errorf("%w: cannot create conversation with blocked users", ErrForbidden)
	}

	if cmd.Kind == models.ConversationDirect {
		key := models.DirectKeyFor(cmd.CreatorID, cmd.Participants[0])
		existing, err := s.convs.FindDirectByKey(ctx, key)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}

	now := s.now()
	conv := &models.Conversation{
		ID:        s.newID(),
		Kind:      cmd.Kind,
		CreatedBy: cmd.CreatorID,
		CreatedAt: now,
		UpdatedAt: now,
		Participants: []models.Participant{
			{UserID: cmd.CreatorID, Role: models.RoleAdmin, JoinedAt: now},
		},
	}
	if cmd.Kind == models.ConversationGroup {
		conv.Name = cmd.Name
	} else {
		conv.DirectKey = models.DirectKeyFor(cmd.CreatorID, cmd.Participants[0])
	}
	for _, id := range cmd.Participants {
		conv.Participants = append(conv.Participants, models.Participant{
			UserID: id, Role: models.RoleMember, JoinedAt: now,
		})
	}

	created, err := s.convs.Create(ctx, conv)
	if errors.Is(err, repository.ErrDuplicate) {
		// lost the race on the direct pair key; the winner's document is ours
		return s.convs.FindDirectByKey(ctx, conv.DirectKey)
	}
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Get returns the conversation only to users with a membership row, past or
// present. Outsiders get NotFound, not Forbidden, so existence is not leaked.
func (s *ConversationService) Get(ctx context.Context, convID, viewerID string) (*models.Conversation, error) {
	conv, err := s.convs.GetByID(ctx, convID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: conversation not found", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if _, ok := conv.LatestParticipation(viewerID); !ok {
		return nil, fmt.Errorf("%w: conversation not found", ErrNotFound)
	}
	return conv, nil
}

// AuthorizeSubscription gates the live event feed. Unlike Get, history access
// is not enough: a member whose latest row is closed must not receive messages
// sent after they left, so only active participants may subscribe.
func (s *ConversationService) AuthorizeSubscription(ctx context.Context, convID, viewerID string) error {
	conv, err := s.Get(ctx, convID, viewerID)
	if err != nil {
		return err
	}
	if _, ok := conv.ActiveParticipant(viewerID); !ok {
		return fmt.Errorf("%w: live updates require active participation", ErrForbidden)
	}
	return nil
}

func (s *ConversationService) ListMine(ctx context.Context, userID string) ([]*models.Conversation, error) {
	return s.convs.ListActiveForUser(ctx, userID)
}

// AddParticipants appends members to a group. Only an active admin may add.
func (s *ConversationService) AddParticipants(ctx context.Context, convID, adminID string, newIDs []string) (*models.Conversation, error) {
	if len(newIDs) == 0 {
		return nil, fmt.Errorf("%w: no participants given", ErrValidation)
	}
	conv, err := s.Get(ctx, convID, adminID)
	if err != nil {
		return nil, err
	}
	if conv.Kind != models.ConversationGroup {
		return nil, fmt.Errorf("%w: participants can only be added to group conversations", ErrForbidden)
	}
	p, ok := conv.ActiveParticipant(adminID)
	if !ok || p.Role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: admin role required", ErrForbidden)
	}

	now := s.now()
	var parts []models.Participant
	for _, id := range newIDs {
		if _, active := conv.ActiveParticipant(id); active {
			continue // already in; historical rejoin rows are fine, duplicates are not
		}
		parts = append(parts, models.Participant{UserID: id, Role: models.RoleMember, JoinedAt: now})
	}
	if len(parts) > 0 {
		if err := s.convs.AppendParticipants(ctx, convID, parts); err != nil {
			return nil, err
		}
	}
	return s.convs.GetByID(ctx, convID)
}

// Leave soft-closes the membership row. History stays untouched; the
// visibility filter handles the rest.
func (s *ConversationService) Leave(ctx context.Context, convID, userID string) error {
	err := s.convs.CloseParticipation(ctx, convID, userID, s.now())
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: conversation not found", ErrNotFound)
	}
	return err
}

// SetMuted only affects notification fan-out, never visibility.
func (s *ConversationService) SetMuted(ctx context.Context, convID, userID string, muted bool) error {
	err := s.convs.SetMuted(ctx, convID, userID, muted)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: conversation not found", ErrNotFound)
	}
	return err
}
