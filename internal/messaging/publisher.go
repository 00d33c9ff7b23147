package messaging

import (
	"github.com/pixil98/go-drive/internal/game"
)

// NatsPublisher publishes messages to individual player NATS subjects.
type NatsPublisher struct {
	server *NatsServer
}

// NewNatsPublisher wraps a NatsServer for per-player message delivery.
func NewNatsPublisher(server *NatsServer) *NatsPublisher {
	return &NatsPublisher{server: server}
}

func (p *NatsPublisher) PublishToPlayer(visitorID string, data []byte) error {
	return p.server.Publish(game.PlayerSubject(visitorID), data)
}
