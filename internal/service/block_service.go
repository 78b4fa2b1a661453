package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/campushub/campus-api/internal/models"
	"github.com/campushub/campus-api/internal/repository"
)

type BlockService struct {
	blocks repository.BlockRepository
	now    func() time.Time
}

func NewBlockService(blocks repository.BlockRepository) *BlockService {
	return &BlockService{
		blocks: blocks,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *BlockService) Block(ctx context.Context, blockerID, blockedID string) error {
	if blockerID == blockedID {
		return fmt.Errorf("%w: cannot block yourself", ErrValidation)
	}
	err := s.blocks.Create(ctx, &models.Block{
		BlockerID: blockerID,
		BlockedID: blockedID,
		CreatedAt: s.now(),
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return fmt.Errorf("%w: user already blocked", ErrConflict)
	}
	return err
}

// Unblock is idempotent; unblocking a user who was never blocked succeeds.
func (s *BlockService) Unblock(ctx context.Context, blockerID, blockedID string) error {
	return s.blocks.Delete(ctx, blockerID, blockedID)
}

func (s *BlockService) ListBlocked(ctx context.Context, blockerID string) ([]*models.Block, error) {
	out, err := s.blocks.ListByBlocker(ctx, blockerID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*models.Block{}
	}
	return out, nil
}
