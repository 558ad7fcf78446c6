package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/coursehub/coursehub-api/internal/apperrors"
	"github.com/coursehub/coursehub-api/internal/models"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Lifecycle(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	store.SetClock(func() time.Time { return now })
	ctx := context.Background()

	u := &models.User{ID: "u1", Password: "hash"}
	require.NoError(t, store.Save(ctx, u, time.Hour))

	got, err := store.Load(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, got.Password)

	// mutating the returned copy does not change the cache
	got.Name = "changed"
	again, _ := store.Load(ctx, "u1")
	require.Empty(t, again.Name)

	require.NoError(t, store.Rotate(ctx, "j1", time.Minute, u, time.Hour))
	require.ErrorIs(t, store.Rotate(ctx, "j1", time.Minute, u, time.Hour), apperrors.ErrInvalidOrExpiredToken)

	now = now.Add(2 * time.Hour)
	got, err = store.Load(ctx, "u1")
	require.NoError(t, err)
	require.Nil(t, got)
	revoked, _ := store.IsRevoked(ctx, "j1")
	require.False(t, revoked)
}

func TestMemoryStore_End(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, &models.User{ID: "u"}, time.Hour))
	require.NoError(t, store.End(ctx, "u", "j", time.Hour))

	got, err := store.Load(ctx, "u")
	require.NoError(t, err)
	require.Nil(t, got)
	revoked, err := store.IsRevoked(ctx, "j")
	require.NoError(t, err)
	require.True(t, revoked)
}

func TestStore_RejectsSnapshotWithoutID(t *testing.T) {
	require.Error(t, NewMemoryStore().Save(context.Background(), &models.User{}, time.Hour))
}

func TestMemoryStore_RotateAfterEndKeepsSessionGone(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	store.SetClock(func() time.Time { return now })
	ctx := context.Background()
	u := &models.User{ID: "u"}
	require.NoError(t, store.Save(ctx, u, time.Hour))
	require.NoError(t, store.End(ctx, "u", "", time.Hour))

	require.ErrorIs(t, store.Rotate(ctx, "j", time.Minute, u, time.Hour), apperrors.ErrInvalidOrExpiredToken)
	got, err := store.Load(ctx, "u")
	require.NoError(t, err)
	require.Nil(t, got)
	revoked, _ := store.IsRevoked(ctx, "j")
	require.False(t, revoked)

	// an expired snapshot is not revived either
	require.NoError(t, store.Save(ctx, u, time.Minute))
	now = now.Add(2 * time.Minute)
	require.ErrorIs(t, store.Rotate(ctx, "j", time.Minute, u, time.Hour), apperrors.ErrInvalidOrExpiredToken)
}
