package notify

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iotdash/bridge/internal/logger"
)

// Suppressor rate-limits alert delivery: Seen reports whether an alert
// with the same key already fired inside the cooldown window, recording
// it when it did not.
type Suppressor interface {
	Seen(ctx context.Context, key string, cooldown time.Duration) bool
}

// RedisSuppressor shares the cooldown window across replicas via SET NX.
type RedisSuppressor struct {
	client *redis.Client
	logger logger.Logger
}

func NewRedisSuppressor(client *redis.Client, log logger.Logger) *RedisSuppressor {
	return &RedisSuppressor{client: client, logger: log}
}

func (s *RedisSuppressor) Seen(ctx context.Context, key string, cooldown time.Duration) bool {
	if cooldown <= 0 {
		return false
	}
	set, err := s.client.SetNX(ctx, "bridge:alert:"+key, 1, cooldown).Result()
	if err != nil {
		// Fail open: a broken cooldown store must not swallow alerts.
		s.logger.Warn("alert cooldown check failed, delivering anyway",
			logger.String("key", key),
			logger.Error(err))
		return false
	}
	return !set
}

// ConnectRedis dials and pings the cooldown store. Alerting is optional,
// so unlike a hard dependency this does not retry.
func ConnectRedis(ctx context.Context, addr, user, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: user,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// MemorySuppressor is the single-process fallback when no Redis address
// is configured.
type MemorySuppressor struct {
	mu   sync.Mutex
	seen map[string]time.Time
	now  func() time.Time
}

func NewMemorySuppressor() *MemorySuppressor {
	return &MemorySuppressor{seen: make(map[string]time.Time), now: time.Now}
}

func (s *MemorySuppressor) Seen(_ context.Context, key string, cooldown time.Duration) bool {
	if cooldown <= 0 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if until, ok := s.seen[key]; ok && now.Before(until) {
		return true
	}
	for k, until := range s.seen {
		if now.After(until) {
			delete(s.seen, k)
		}
	}
	s.seen[key] = now.Add(cooldown)
	return false
}
