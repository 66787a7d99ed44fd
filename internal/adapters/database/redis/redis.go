package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Badsnus/qr-studio/internal/adapters/database/redis/logos"
	"github.com/Badsnus/qr-studio/pkg/logger/types"
)

type Client struct {
	Logos *logos.Storage
}

type Options struct {
	Host     string
	Port     string
	Password string
	DB       int
	LogoTTL  time.Duration
	Logger   *types.Logger
}

func New(opts Options) (*Client, error) {
	logoStorage := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", opts.Host, opts.Port),
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := logoStorage.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping logo storage: %w", err)
	}

	return &Client{
		Logos: logos.NewStorage(logoStorage, opts.LogoTTL, opts.Logger),
	}, nil
}
