package poller

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const DefaultTopic = "checkout-completed"

// CartClearer empties the cart of a session once its checkout completed.
type CartClearer interface {
	ClearCart(ctx context.Context, sessionID string) error
}

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type Config struct {
	Brokers []string
	Topic   string
	GroupID string
}

type Poller struct {
	reader  MessageReader
	clearer CartClearer
	logger  *zap.Logger
}

func NewPoller(cfg Config, clearer CartClearer, logger *zap.Logger) *Poller {
	if cfg.Topic == "" {
		cfg.Topic = DefaultTopic
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MaxBytes: 10e6, // 10MB
	})
	return newPoller(reader, clearer, logger)
}

func newPoller(reader MessageReader, clearer CartClearer, logger *zap.Logger) *Poller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{reader: reader, clearer: clearer, logger: logger.With(zap.String("component", "poller"))}
}

// Run consumes checkout events until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		p.clearCheckedOutCart(ctx)
	}
}

func (p *Poller) Close() error {
	return p.reader.Close()
}

type checkoutEvent struct {
	SessionID  string `json:"session_id"`
	UserID     string `json:"user_id"`
	CheckoutID string `json:"checkout_id"`
}

func (p *Poller) clearCheckedOutCart(ctx context.Context) {
	m, err := p.reader.ReadMessage(ctx)
	if err != nil {
		if ctx.Err() == nil && !errors.Is(err, context.Canceled) {
			p.logger.Warn("error reading message", zap.Error(err))
		}
		return
	}

	var event checkoutEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		p.logger.Warn("error parsing message", zap.Int64("offset", m.Offset), zap.Error(err))
		return
	}
	sessionID := event.SessionID
	if sessionID == "" {
		sessionID = event.UserID
	}
	if sessionID == "" {
		p.logger.Warn("missing session_id", zap.Int64("offset", m.Offset))
		return
	}

	if err := p.clearer.ClearCart(ctx, sessionID); err != nil {
		p.logger.Error("failed to clear cart",
			zap.String("session_id", sessionID),
			zap.String("checkout_id", event.CheckoutID),
			zap.Error(err))
		return
	}
	p.logger.Info("cart cleared after checkout",
		zap.String("session_id", sessionID),
		zap.String("checkout_id", event.CheckoutID))
}
