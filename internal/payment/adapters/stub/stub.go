// Package stub is the simulated payment provider. Charges succeed unless the
// decline_above_cents option caps the amount it will accept.
package stub

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/smallbiznis/movieshop/internal/payment/domain"
)

const (
	Provider = "stub"

	OptionDeclineAboveCents = "decline_above_cents"
)

type Factory struct{}

func NewFactory() *Factory { return &Factory{} }

func (f *Factory) Provider() string { return Provider }

func (f *Factory) NewCharger(cfg domain.AdapterConfig) (domain.Charger, error) {
	c := &Charger{now: time.Now, limit: -1}
	if raw := strings.TrimSpace(cfg.Options[OptionDeclineAboveCents]); raw != "" {
		limit, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || limit < 0 {
			return nil, fmt.Errorf("stub: invalid %s %q", OptionDeclineAboveCents, raw)
		}
		c.limit = limit
	}
	return c, nil
}

type Charger struct {
	now   func() time.Time
	limit int64
}

func (c *Charger) Charge(ctx context.Context, req domain.ChargeRequest) (*domain.ChargeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.AmountCents < 0 {
		return nil, domain.ErrInvalidAmount
	}
	if c.limit >= 0 && req.AmountCents > c.limit {
		return nil, domain.ErrChargeDeclined
	}
	return &domain.ChargeResult{
		Provider:  Provider,
		Reference: "stub_" + uuid.NewString(),
		ChargedAt: c.now().UTC(),
	}, nil
}
