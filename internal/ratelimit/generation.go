package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mslabba/gst-invoice-generator/internal/config"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	keyGenerateSeller = "invoice:generate:seller:%s"
	keyGenerateLock   = "invoice:generate:lock:%s:%s"
)

// GenerationGuard throttles invoice generation per seller and serializes
// requests that share an idempotency key. A nil or disabled guard allows
// everything.
type GenerationGuard struct {
	enabled bool
	log     *zap.Logger

	bucket *TokenBucket
	locker *Locker

	rate    float64
	burst   int
	lockTTL time.Duration
}

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    config.Config
	Log       *zap.Logger
}

func NewGenerationGuard(p Params) (*GenerationGuard, error) {
	cfg := p.Config.Redis
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return &GenerationGuard{}, nil
	}
	if cfg.GenerateRate <= 0 || cfg.GenerateBurst <= 0 {
		return nil, errors.New("generation rate limit must be positive")
	}
	if cfg.LockTTLSeconds <= 0 {
		return nil, errors.New("generation lock ttl must be positive")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	return NewGenerationGuardWithClient(client, cfg, p.Log), nil
}

func NewGenerationGuardWithClient(client redis.UniversalClient, cfg config.RedisConfig, log *zap.Logger) *GenerationGuard {
	return &GenerationGuard{
		enabled: true,
		log:     log.Named("ratelimit.generation"),
		bucket:  NewTokenBucket(client),
		locker:  NewLocker(client),
		rate:    cfg.GenerateRate,
		burst:   cfg.GenerateBurst,
		lockTTL: time.Duration(cfg.LockTTLSeconds) * time.Second,
	}
}

func (g *GenerationGuard) Enabled() bool {
	return g != nil && g.enabled
}

// Allow takes one token from the seller's bucket.
func (g *GenerationGuard) Allow(ctx context.Context, sellerID string) (*Result, error) {
	if !g.Enabled() {
		return &Result{Allowed: true}, nil
	}
	return g.bucket.Allow(ctx, fmt.Sprintf(keyGenerateSeller, strings.TrimSpace(sellerID)), g.rate, g.burst)
}

// Acquire locks the seller's idempotency key. The returned release func is
// always safe to call. An empty key skips locking.
func (g *GenerationGuard) Acquire(ctx context.Context, sellerID, idempotencyKey string) (func(), error) {
	noop := func() {}
	idempotencyKey = strings.TrimSpace(idempotencyKey)
	if !g.Enabled() || idempotencyKey == "" {
		return noop, nil
	}

	lease, err := g.locker.Acquire(ctx, fmt.Sprintf(keyGenerateLock, strings.TrimSpace(sellerID), idempotencyKey), g.lockTTL)
	if err != nil {
		return noop, err
	}

	return func() {
		// The request context may already be cancelled here.
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := lease.Release(releaseCtx); err != nil {
			g.log.Warn("failed to release generation lock", zap.String("key", lease.Key()), zap.Error(err))
		}
	}, nil
}
