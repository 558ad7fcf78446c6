// Package sessions caches a snapshot of each logged-in user and tracks refresh
// tokens that may no longer be used.
package sessions

import (
	"context"
	"fmt"
	"time"

	"github.com/coursehub/coursehub-api/internal/apperrors"
	"github.com/coursehub/coursehub-api/internal/models"
)

var errSessionEnded = fmt.Errorf("%w: no active session", apperrors.ErrInvalidOrExpiredToken)

// Store is keyed by user id: one snapshot per user, so sessions of different
// users never overwrite each other. A user's latest login replaces the
// previous snapshot.
type Store interface {
	// Save caches the user (without password) for ttl.
	Save(ctx context.Context, u *models.User, ttl time.Duration) error
	// Load returns nil, nil when no session is cached for userID.
	Load(ctx context.Context, userID string) (*models.User, error)
	// Rotate marks oldJTI used and refreshes the snapshot. It fails with
	// apperrors.ErrInvalidOrExpiredToken if oldJTI was already used or the
	// user's session is gone, and then writes nothing.
	Rotate(ctx context.Context, oldJTI string, jtiTTL time.Duration, u *models.User, ttl time.Duration) error
	// End removes the snapshot and revokes the refresh token jti.
	End(ctx context.Context, userID, jti string, jtiTTL time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	Ping(ctx context.Context) error
}

func minTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		// never store without expiry
		return time.Second
	}
	return ttl
}
