package command

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pixil98/go-drive/internal/game"
)

type SessionConfig struct {
	IdleTimeout string     `json:"idle_timeout"`
	Spawn       mgl64.Vec3 `json:"spawn"`
}

func (c *SessionConfig) validate() error {
	_, err := parseOptionalDuration("idle_timeout", c.IdleTimeout)
	return err
}

func (c *SessionConfig) idleOpts() ([]game.IdleTickerOpt, error) {
	d, err := parseOptionalDuration("idle_timeout", c.IdleTimeout)
	if err != nil {
		return nil, err
	}
	if d == 0 {
		return nil, nil
	}
	return []game.IdleTickerOpt{game.WithIdleTimeout(d)}, nil
}
