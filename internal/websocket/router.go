package websocket

import (
	"encoding/json"
	"log/slog"
)

// Router resolves topics to subscribed connections and delivers messages
// to their outbound queues. Delivery is best-effort per recipient: a full
// or closed queue drops that single delivery without affecting the rest.
type Router struct {
	registry *Registry
}

func NewRouter(registry *Registry) *Router {
	return &Router{registry: registry}
}

// DeliverToTopic enqueues resp on every connection subscribed to topic.
// An empty topic broadcasts to all connections. The message is serialized
// once, before any queue is touched.
func (rt *Router) DeliverToTopic(topic string, resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		slog.Error("Failed to marshal response", "error", err)
		return
	}

	targets := rt.registry.SnapshotMatching(func(c *Client) bool {
		return topic == "" || c.HasTopic(topic)
	})

	for _, c := range targets {
		if !c.enqueue(data) {
			slog.Debug("Dropped delivery to slow or closed client", "clientID", c.id, "topic", topic)
		}
	}
}

// DeliverToConnection enqueues resp on a single connection. It is a no-op
// when the connection is no longer registered.
func (rt *Router) DeliverToConnection(id string, resp Response) {
	c, ok := rt.registry.Get(id)
	if !ok {
		return
	}

	data, err := json.Marshal(resp)
	if err != nil {
		slog.Error("Failed to marshal response", "error", err)
		return
	}

	if !c.enqueue(data) {
		slog.Debug("Dropped delivery to slow or closed client", "clientID", id)
	}
}
