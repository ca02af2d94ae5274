package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/smallbiznis/movieshop/internal/config"
	obscontext "github.com/smallbiznis/movieshop/internal/observability/context"
	"github.com/smallbiznis/movieshop/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// channel is the subset of *amqp.Channel the publisher uses.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type AMQPPublisher struct {
	mu      sync.Mutex
	conn    *amqp.Connection
	ch      channel
	appID   string
	metrics *metrics.Metrics
	log     *zap.Logger
}

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    config.Config
	Log       *zap.Logger
	Metrics   *metrics.Metrics `optional:"true"`
}

// NewPublisher dials the broker and declares the events exchange. Without AMQP_URL,
// or when the broker is unreachable at startup, events are dropped.
func NewPublisher(p Params) Publisher {
	log := p.Log.Named("events.publisher")
	url := strings.TrimSpace(p.Config.AMQPURL)
	if url == "" {
		log.Info("amqp disabled, purchase events are not published")
		return NoopPublisher{}
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		log.Warn("amqp dial failed, purchase events are not published", zap.Error(err))
		return NoopPublisher{}
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		log.Warn("amqp channel open failed", zap.Error(err))
		return NoopPublisher{}
	}
	if err := ch.ExchangeDeclare(Exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		log.Warn("amqp exchange declare failed", zap.Error(err))
		return NoopPublisher{}
	}

	pub := &AMQPPublisher{
		conn:    conn,
		ch:      ch,
		appID:   p.Config.AppName,
		metrics: p.Metrics,
		log:     log,
	}
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return pub.Close()
		},
	})
	return pub
}

func (p *AMQPPublisher) PublishPurchaseCompleted(ctx context.Context, event PurchaseCompleted) error {
	err := p.publish(ctx, TypePurchaseCompleted, event)
	p.metrics.RecordEventPublished(ctx, TypePurchaseCompleted, err == nil)
	if err != nil {
		p.log.Warn("publish failed",
			zap.String("event_type", TypePurchaseCompleted),
			zap.String("entitlement_id", event.EntitlementID),
			zap.Error(err),
		)
	}
	return err
}

func (p *AMQPPublisher) publish(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", routingKey, err)
	}

	msg := amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		MessageId:     uuid.NewString(),
		CorrelationId: obscontext.RequestIDFromContext(ctx),
		AppId:         p.appID,
		Type:          routingKey,
		Timestamp:     time.Now().UTC(),
		Body:          body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == nil {
		return amqp.ErrClosed
	}
	return p.ch.PublishWithContext(ctx, Exchange, routingKey, false, false, msg)
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		err := p.conn.Close()
		p.conn = nil
		return err
	}
	return nil
}
