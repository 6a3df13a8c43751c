package credential

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"
)

type redisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) Store {
	return &redisStore{client: client, prefix: prefix}
}

func (s *redisStore) key(name string) string {
	return fmt.Sprintf("%s:%s", s.prefix, name)
}

func (s *redisStore) Load(ctx context.Context) (*oauth2.Token, error) {
	values, err := s.client.MGet(ctx, s.key(KeyAccess), s.key(KeyRefresh)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load credentials from redis: %w", err)
	}

	access, _ := values[0].(string)
	refresh, _ := values[1].(string)
	if !complete(access, refresh) {
		return nil, ErrNotFound
	}
	return NewToken(access, refresh), nil
}

func (s *redisStore) Save(ctx context.Context, token *oauth2.Token) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(KeyAccess), token.AccessToken, 0)
		pipe.Set(ctx, s.key(KeyRefresh), token.RefreshToken, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save credentials to redis: %w", err)
	}
	return nil
}

func (s *redisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key(KeyAccess), s.key(KeyRefresh)).Err(); err != nil {
		return fmt.Errorf("clear credentials in redis: %w", err)
	}
	return nil
}
