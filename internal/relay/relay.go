// Package relay bridges redis keyspace notifications into live
// connections: every change event on the configured key pattern is
// republished as a chat-shaped message.
package relay

import (
	"context"
	"fmt"
	"log/slog"

	"chat-gateway/internal/config"
	"chat-gateway/internal/websocket"

	"github.com/redis/go-redis/v9"
)

// Deliverer is the router surface the relay publishes through.
type Deliverer interface {
	DeliverToTopic(topic string, resp websocket.Response)
	DeliverToConnection(id string, resp websocket.Response)
}

// Relay owns one pattern subscription for the lifetime of the process.
// With an empty target every event is broadcast; with a target set events
// go to that single connection only.
type Relay struct {
	pubsub *redis.PubSub
	router Deliverer
	target string
}

// New subscribes to the keyspace-notification channel for cfg.KeyPattern.
// Failure to establish the subscription is returned to the caller; the
// relay is useless without it, so startup treats that as fatal.
func New(ctx context.Context, rdb *redis.Client, router Deliverer, cfg config.RelayConfig) (*Relay, error) {
	return newRelay(ctx, rdb, router, cfg, "")
}

// NewForConnection is the single-recipient variant: every event is
// delivered to the connection with the given id.
func NewForConnection(ctx context.Context, rdb *redis.Client, router Deliverer, cfg config.RelayConfig, clientID string) (*Relay, error) {
	return newRelay(ctx, rdb, router, cfg, clientID)
}

func newRelay(ctx context.Context, rdb *redis.Client, router Deliverer, cfg config.RelayConfig, target string) (*Relay, error) {
	channel := fmt.Sprintf("__keyspace@%d__:%s", cfg.DB, cfg.KeyPattern)

	pubsub := rdb.PSubscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	slog.Info("Change-feed subscription established", "channel", channel)
	return &Relay{pubsub: pubsub, router: router, target: target}, nil
}

// Run republishes events until ctx is cancelled or the subscription
// channel closes. Call it on its own goroutine.
func (r *Relay) Run(ctx context.Context) {
	r.consume(ctx, r.pubsub.Channel())
}

func (r *Relay) consume(ctx context.Context, ch <-chan *redis.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				slog.Info("Change-feed subscription closed")
				return
			}
			r.dispatch(msg)
		}
	}
}

func (r *Relay) dispatch(msg *redis.Message) {
	resp := websocket.NewChatResponse(msg.Payload)
	if r.target == "" {
		r.router.DeliverToTopic("", resp)
	} else {
		r.router.DeliverToConnection(r.target, resp)
	}
	slog.Debug("Relayed change-feed event", "channel", msg.Channel, "payload", msg.Payload)
}

func (r *Relay) Close() error {
	return r.pubsub.Close()
}
