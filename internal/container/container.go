package container

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/saulo-duarte/quizclient/internal/aiquiz"
	"github.com/saulo-duarte/quizclient/internal/api"
	"github.com/saulo-duarte/quizclient/internal/auth"
	"github.com/saulo-duarte/quizclient/internal/authoring"
	"github.com/saulo-duarte/quizclient/internal/config"
	"github.com/saulo-duarte/quizclient/internal/credential"
	"github.com/saulo-duarte/quizclient/internal/metrics"
	"github.com/saulo-duarte/quizclient/internal/quiz"
)

type Container struct {
	Config    *config.Config
	Registry  *prometheus.Registry
	Store     credential.Store
	Client    *api.Client
	Auth      *auth.Manager
	Courses   *api.CourseAPI
	Quiz      *quiz.QuizContainer
	AIQuiz    *aiquiz.AIQuizContainer
	Authoring authoring.Service

	redis *redis.Client
}

func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	config.InitLogger(cfg.Log)

	registry := prometheus.NewRegistry()
	if err := metrics.Register(registry); err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	c := &Container{Config: cfg, Registry: registry}

	store, err := c.newStore(ctx)
	if err != nil {
		return nil, err
	}
	c.Store = store

	c.Client = api.NewClient(cfg.API.BaseURL, cfg.API.Timeout)
	c.Auth = auth.NewManager(c.Client, store)
	c.Courses = api.NewCourseAPI(c.Auth)
	c.Quiz = quiz.NewQuizContainer(c.Auth)
	c.Authoring = authoring.NewService(c.Auth)

	c.AIQuiz, err = aiquiz.NewAIQuizContainer(ctx, cfg.Gemini)
	if err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Container) newStore(ctx context.Context) (credential.Store, error) {
	cfg := c.Config.Credentials

	switch cfg.Backend {
	case config.BackendMemory:
		return credential.NewMemoryStore(), nil

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     c.Config.Redis.Addr,
			Password: c.Config.Redis.Password,
			DB:       c.Config.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		c.redis = client
		return credential.NewRedisStore(client, c.Config.Redis.Prefix), nil

	default:
		var cipher *config.Cipher
		if cfg.Key != "" {
			var err error
			cipher, err = config.NewCipher([]byte(cfg.Key))
			if err != nil {
				return nil, fmt.Errorf("credential key: %w", err)
			}
		}
		return credential.NewFileStore(cfg.Path, cipher), nil
	}
}

func (c *Container) Close() error {
	if c.redis != nil {
		return c.redis.Close()
	}
	return nil
}
