package auth

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	refreshKeyPrefix  = "refresh:token:"
	refreshUserPrefix = "refresh:user:"
)

// RedisRefreshStore keeps refresh tokens in redis so multiple instances can
// share one session table. GETDEL makes redemption atomic; expiry is
// delegated to redis TTLs.
type RedisRefreshStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisRefreshStore(client *redis.Client, ttl time.Duration) *RedisRefreshStore {
	return &RedisRefreshStore{client: client, ttl: ttl}
}

func (s *RedisRefreshStore) Issue(ctx context.Context, username string) (string, error) {
	token, err := newRefreshToken()
	if err != nil {
		return "", err
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, refreshKeyPrefix+token, username, s.ttl)
	pipe.SAdd(ctx, refreshUserPrefix+username, token)
	pipe.Expire(ctx, refreshUserPrefix+username, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", err
	}
	return token, nil
}

func (s *RedisRefreshStore) Redeem(ctx context.Context, token string) (string, error) {
	username, err := s.client.GetDel(ctx, refreshKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrInvalidRefreshToken
	}
	if err != nil {
		return "", err
	}
	s.client.SRem(ctx, refreshUserPrefix+username, token)
	return username, nil
}

func (s *RedisRefreshStore) Revoke(ctx context.Context, token string) error {
	username, err := s.client.GetDel(ctx, refreshKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return err
	}
	s.client.SRem(ctx, refreshUserPrefix+username, token)
	return nil
}

func (s *RedisRefreshStore) RevokeAll(ctx context.Context, username string) error {
	tokens, err := s.client.SMembers(ctx, refreshUserPrefix+username).Result()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(tokens)+1)
	for _, token := range tokens {
		keys = append(keys, refreshKeyPrefix+token)
	}
	keys = append(keys, refreshUserPrefix+username)
	return s.client.Del(ctx, keys...).Err()
}

var _ RefreshTokenStore = (*RedisRefreshStore)(nil)
