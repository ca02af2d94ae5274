package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	keyPurchaseLock = "purchase:lock:%s:%s"
	purchaseLockTTL = 30 * time.Second
)

// Deletes the key only while it still holds our token, so an expired lock
// taken over by another checkout is left alone.
const purchaseUnlockScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

type PurchaseLockParams struct {
	fx.In

	Client *redis.Client `optional:"true"`
	Log    *zap.Logger   `optional:"true"`
}

// PurchaseLock serializes purchases of the same movie by the same profile across instances.
type PurchaseLock struct {
	client *redis.Client
	unlock *redis.Script
	ttl    time.Duration
	log    *zap.Logger
}

func NewPurchaseLock(p PurchaseLockParams) *PurchaseLock {
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &PurchaseLock{
		client: p.Client,
		unlock: redis.NewScript(purchaseUnlockScript),
		ttl:    purchaseLockTTL,
		log:    log.Named("ratelimit.purchase_lock"),
	}
}

// Acquire returns a release func. Without Redis it always succeeds.
func (p *PurchaseLock) Acquire(ctx context.Context, profileID, movieID string) (func(), bool, error) {
	if p == nil || p.client == nil {
		return func() {}, true, nil
	}

	key := fmt.Sprintf(keyPurchaseLock, profileID, movieID)
	token := uuid.NewString()
	ok, err := p.client.SetNX(ctx, key, token, p.ttl).Result()
	if err != nil || !ok {
		return func() {}, ok, err
	}

	return func() {
		if err := p.unlock.Run(context.WithoutCancel(ctx), p.client, []string{key}, token).Err(); err != nil {
			p.log.Warn("release purchase lock", zap.String("key", key), zap.Error(err))
		}
	}, true, nil
}
