package game

// Publisher delivers encoded events to a single player.
type Publisher interface {
	PublishToPlayer(visitorID string, data []byte) error
}

// Subscriber provides the ability to subscribe to message subjects.
type Subscriber interface {
	Subscribe(subject string, handler func(data []byte)) (unsubscribe func(), err error)
}

// PlayerSubject is the subject a player's events are published on.
func PlayerSubject(visitorID string) string {
	return "player-" + visitorID
}
