// Package redisstore persists cart snapshots in Redis.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"
)

const (
	defaultConnectAttempts = 30
	maxBackoff             = 30 * time.Second
)

// Store keeps each snapshot as a plain string value under its key.
type Store struct {
	client   *redis.Client
	log      *slog.Logger
	attempts int
	backoff  time.Duration
}

type Option func(*Store)

func WithLogger(log *slog.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// WithConnectRetry sets how many pings Initialize attempts and the first
// backoff between them. The backoff doubles up to 30s.
func WithConnectRetry(attempts int, initial time.Duration) Option {
	return func(s *Store) {
		if attempts > 0 {
			s.attempts = attempts
		}
		if initial > 0 {
			s.backoff = initial
		}
	}
}

// New accepts either a redis:// URL or a host:port address.
func New(addr string, opts ...Option) *Store {
	redisOpts, err := redis.ParseURL(addr)
	if err != nil {
		redisOpts = &redis.Options{
			Addr:         addr,
			MinIdleConns: 1,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PoolSize:     4,
		}
	}

	client := redis.NewClient(redisOpts)
	client.AddHook(redisotel.NewTracingHook())

	s := &Store{
		client:   client,
		log:      slog.Default(),
		attempts: defaultConnectAttempts,
		backoff:  time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize pings Redis until it answers, backing off between attempts.
func (s *Store) Initialize(ctx context.Context) error {
	backoff := s.backoff
	for i := 0; i < s.attempts; i++ {
		err := s.Ping(ctx)
		if err == nil {
			s.log.Info("redis reachable", slog.Int("attempt", i+1))
			return nil
		}
		s.log.Warn("redis ping failed", slog.Int("attempt", i+1), slog.Any("err", err))
		if i == s.attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
	return fmt.Errorf("redis unreachable after %d attempts", s.attempts)
}

func (s *Store) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.client.Ping(pingCtx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) Snapshots(key string) *Snapshots {
	return &Snapshots{client: s.client, key: key}
}

type Snapshots struct {
	client *redis.Client
	key    string
}

func (s *Snapshots) Load(ctx context.Context) ([]byte, bool, error) {
	val, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis GET %q: %w", s.key, err)
	}
	return val, true, nil
}

func (s *Snapshots) Save(ctx context.Context, snapshot []byte) error {
	if err := s.client.Set(ctx, s.key, snapshot, 0).Err(); err != nil {
		return fmt.Errorf("redis SET %q: %w", s.key, err)
	}
	return nil
}
