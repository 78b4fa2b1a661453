package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBlockValidationAndConflict(t *testing.T) {
	svc := NewBlockService(&fakeBlockRepo{})
	ctx := context.Background()

	require.ErrorIs(t, svc.Block(ctx, "alice", "alice"), ErrValidation)

	require.NoError(t, svc.Block(ctx, "alice", "bob"))
	require.ErrorIs(t, svc.Block(ctx, "alice", "bob"), ErrConflict)

	// the reverse direction is a separate record
	require.NoError(t, svc.Block(ctx, "bob", "alice"))
}

func TestUnblockIsIdempotent(t *testing.T) {
	svc := NewBlockService(&fakeBlockRepo{})
	ctx := context.Background()

	require.NoError(t, svc.Block(ctx, "alice", "bob"))
	require.NoError(t, svc.Unblock(ctx, "alice", "bob"))
	require.NoError(t, svc.Unblock(ctx, "alice", "bob"))

	blocked, err := svc.ListBlocked(ctx, "alice")
	require.NoError(t, err)
	require.Empty(t, blocked)
}
