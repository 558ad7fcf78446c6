package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/coursehub/coursehub-api/internal/apperrors"
	"github.com/coursehub/coursehub-api/internal/models"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps snapshots as JSON under "session:<userID>" and used refresh
// token ids under "revoked:refresh:<jti>", both with TTLs.
type RedisStore struct {
	client        redis.UniversalClient
	prefix        string
	revokedPrefix string
}

// NewRedisStore creates a Redis-backed store. Prefix may be empty.
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "session:"
	}
	return &RedisStore{client: client, prefix: prefix, revokedPrefix: "revoked:refresh:"}
}

func (r *RedisStore) key(userID string) string   { return r.prefix + userID }
func (r *RedisStore) revokedKey(jti string) string { return r.revokedPrefix + jti }

func encode(u *models.User) ([]byte, error) {
	if u == nil || u.ID == "" {
		return nil, errors.New("session snapshot needs a user id")
	}
	return json.Marshal(u.Snapshot())
}

func (r *RedisStore) Save(ctx context.Context, u *models.User, ttl time.Duration) error {
	b, err := encode(u)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key(u.ID), b, minTTL(ttl)).Err()
}

func (r *RedisStore) Load(ctx context.Context, userID string) (*models.User, error) {
	b, err := r.client.Get(ctx, r.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var u models.User
	if err := json.Unmarshal(b, &u); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", userID, err)
	}
	return &u, nil
}

func (r *RedisStore) Rotate(ctx context.Context, oldJTI string, jtiTTL time.Duration, u *models.User, ttl time.Duration) error {
	b, err := encode(u)
	if err != nil {
		return err
	}
	used := fmt.Errorf("%w: refresh token already used", apperrors.ErrInvalidOrExpiredToken)
	rk, sk := r.revokedKey(oldJTI), r.key(u.ID)
	txf := func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, rk).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return used
		}
		live, err := tx.Exists(ctx, sk).Result()
		if err != nil {
			return err
		}
		if live == 0 {
			return errSessionEnded
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, rk, "1", minTTL(jtiTTL))
			p.Set(ctx, sk, b, minTTL(ttl))
			return nil
		})
		return err
	}
	// a concurrent rotation of the same token or a logout of the user aborts this one
	if err := r.client.Watch(ctx, txf, rk, sk); err != nil {
		if errors.Is(err, redis.TxFailedErr) {
			return used
		}
		return err
	}
	return nil
}

func (r *RedisStore) End(ctx context.Context, userID, jti string, jtiTTL time.Duration) error {
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, r.key(userID))
		if jti != "" {
			p.Set(ctx, r.revokedKey(jti), "1", minTTL(jtiTTL))
		}
		return nil
	})
	return err
}

func (r *RedisStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, r.revokedKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
