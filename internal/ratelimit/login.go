package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/movieshop/internal/config"
	"github.com/smallbiznis/movieshop/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	keyLoginIP    = "login:ip:%s"
	keyLoginEmail = "login:email:%s"
)

type LoginLimiterParams struct {
	fx.In

	Config  config.Config
	Client  *redis.Client    `optional:"true"`
	Metrics *metrics.Metrics `optional:"true"`
	Log     *zap.Logger
}

// LoginLimiter throttles login attempts per client IP and per email.
type LoginLimiter struct {
	bucket  *TokenBucket
	rate    float64
	burst   int
	metrics *metrics.Metrics
	log     *zap.Logger
}

func NewLoginLimiter(p LoginLimiterParams) *LoginLimiter {
	return &LoginLimiter{
		bucket:  NewTokenBucket(p.Client),
		rate:    p.Config.LoginRatePerSecond,
		burst:   p.Config.LoginBurst,
		metrics: p.Metrics,
		log:     p.Log.Named("ratelimit.login"),
	}
}

func (l *LoginLimiter) Enabled() bool {
	return l != nil && l.bucket != nil && l.rate > 0 && l.burst > 0
}

// Allow reports whether another attempt is permitted and, if not, how long to wait.
// Redis failures fail open so an outage never locks every user out.
func (l *LoginLimiter) Allow(ctx context.Context, ip, email string) (bool, time.Duration) {
	if !l.Enabled() {
		return true, 0
	}

	checks := []struct {
		reason string
		key    string
	}{
		{reason: "ip", key: fmt.Sprintf(keyLoginIP, strings.TrimSpace(ip))},
		{reason: "email", key: fmt.Sprintf(keyLoginEmail, strings.ToLower(strings.TrimSpace(email)))},
	}
	for _, check := range checks {
		if strings.HasSuffix(check.key, ":") {
			continue
		}
		res, err := l.bucket.Allow(ctx, check.key, l.rate, l.burst)
		if err != nil {
			l.log.Warn("login rate limit check failed", zap.String("reason", check.reason), zap.Error(err))
			continue
		}
		if !res.Allowed {
			l.metrics.RecordLoginThrottled(ctx, check.reason)
			return false, res.RetryAfter
		}
	}
	return true, 0
}
