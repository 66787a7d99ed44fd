package logos

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Badsnus/qr-studio/pkg/logger"
	"github.com/Badsnus/qr-studio/pkg/logger/types"
)

const keyPrefix = "logo:"

// Storage caches fetched logo bytes in redis. Redis failures are logged and
// reported as cache misses.
type Storage struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *types.Logger
}

func NewStorage(client *redis.Client, ttl time.Duration, log *types.Logger) *Storage {
	if log == nil {
		log = logger.Nop()
	}
	return &Storage{
		redis:  client,
		ttl:    ttl,
		logger: log,
	}
}

func key(source string) string {
	sum := sha256.Sum256([]byte(source))
	return keyPrefix + hex.EncodeToString(sum[:])
}

func (s *Storage) Get(ctx context.Context, source string) ([]byte, bool) {
	data, err := s.redis.Get(ctx, key(source)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warnw("failed to read cached logo", "source", source, "error", err)
		}
		return nil, false
	}
	return data, true
}

func (s *Storage) Set(ctx context.Context, source string, data []byte) {
	if err := s.redis.Set(ctx, key(source), data, s.ttl).Err(); err != nil {
		s.logger.Warnw("failed to cache logo", "source", source, "error", err)
	}
}
