// Package events broadcasts cache-invalidation notices over NATS so every
// process sharing a Graph Store snapshot keeps a coherent Result Cache.
package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// SubjectCacheInvalidate is the NATS subject published to after every
// graph mutation.
const SubjectCacheInvalidate = "ontology.cache.invalidate"

// Flusher is anything whose cached entries can be discarded wholesale, the
// shape a Result Cache backend exposes to the invalidator.
type Flusher interface {
	Flush()
}

// Invalidator publishes and listens for cache-invalidation broadcasts. A
// nil or unconnected Invalidator is a no-op convenience, matching the
// teacher's posture that Redis/NATS are optional collaborators a single
// instance can run without.
type Invalidator struct {
	conn   *nats.Conn
	logger *slog.Logger
	mu     sync.Mutex
}

// Config configures the NATS connection backing an Invalidator.
type Config struct {
	URL           string
	Name          string
	MaxReconnects int
	ReconnectWait time.Duration
}

// NewInvalidator connects to NATS with reconnect handlers configured. If
// cfg.URL is empty, it returns a nil, nil pair: callers should treat that
// as "invalidation broadcast disabled" rather than an error.
func NewInvalidator(cfg Config, logger *slog.Logger) (*Invalidator, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Name == "" {
		cfg.Name = "ontology-processor"
	}
	if cfg.MaxReconnects == 0 {
		cfg.MaxReconnects = 10
	}
	if cfg.ReconnectWait == 0 {
		cfg.ReconnectWait = 2 * time.Second
	}

	nc, err := nats.Connect(cfg.URL,
		nats.Name(cfg.Name),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", slog.String("error", err.Error()))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", slog.String("url", nc.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("events: failed to connect to NATS: %w", err)
	}

	logger.Info("connected to NATS", slog.String("url", cfg.URL))

	return &Invalidator{conn: nc, logger: logger}, nil
}

// Close releases the underlying NATS connection. Safe to call on a nil
// Invalidator.
func (inv *Invalidator) Close() error {
	if inv == nil {
		return nil
	}
	inv.mu.Lock()
	defer inv.mu.Unlock()
	if inv.conn != nil {
		inv.conn.Close()
		inv.conn = nil
	}
	return nil
}

// PublishInvalidation announces that the graph changed and every cached
// Result is now stale. Safe to call on a nil Invalidator (a no-op).
func (inv *Invalidator) PublishInvalidation(_ context.Context) error {
	if inv == nil {
		return nil
	}
	inv.mu.Lock()
	defer inv.mu.Unlock()
	if inv.conn == nil {
		return nil
	}
	if err := inv.conn.Publish(SubjectCacheInvalidate, nil); err != nil {
		return fmt.Errorf("events: failed to publish invalidation: %w", err)
	}
	return nil
}

// Listen subscribes to invalidation broadcasts and flushes cache on every
// message, including ones this process itself published. Safe to call on
// a nil Invalidator (a no-op that returns immediately).
func (inv *Invalidator) Listen(_ context.Context, flush Flusher) error {
	if inv == nil {
		return nil
	}
	inv.mu.Lock()
	defer inv.mu.Unlock()
	if inv.conn == nil {
		return nil
	}
	_, err := inv.conn.Subscribe(SubjectCacheInvalidate, func(_ *nats.Msg) {
		flush.Flush()
		inv.logger.Debug("flushed result cache on invalidation broadcast")
	})
	if err != nil {
		return fmt.Errorf("events: failed to subscribe: %w", err)
	}
	return nil
}
