package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-drive/internal/driver"
	"github.com/pixil98/go-drive/internal/player"
	"github.com/pixil98/go-errors"
)

type Config struct {
	FrameInterval string           `json:"frame_interval"`
	Listeners     []ListenerConfig `json:"listeners"`
	Storage       StorageConfig    `json:"storage"`
	Database      DatabaseConfig   `json:"database"`
	Nats          NatsConfig       `json:"nats"`
	Vehicle       VehicleConfig    `json:"vehicle"`
	Speedrun      SpeedrunConfig   `json:"speedrun"`
	Session       SessionConfig    `json:"session"`
	// Messages override the text shown for events and speedrun phases.
	Messages player.Messages `json:"messages"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	if _, err := c.frameInterval(); err != nil {
		el.Add(err)
	}

	for i, l := range c.Listeners {
		err := l.validate()
		if err != nil {
			el.Add(fmt.Errorf("listener %d: %w", i, err))
		}
	}

	el.Add(c.Storage.validate())
	el.Add(c.Database.validate())
	el.Add(c.Nats.validate())
	el.Add(c.Vehicle.validate())
	el.Add(c.Speedrun.validate())
	el.Add(c.Session.validate())
	el.Add(c.Messages.Validate())

	return el.Err()
}

func (c *Config) frameInterval() (time.Duration, error) {
	if c.FrameInterval == "" {
		return driver.DefaultFrameInterval, nil
	}

	d, err := time.ParseDuration(c.FrameInterval)
	if err != nil {
		return 0, fmt.Errorf("parsing frame_interval: %w", err)
	}
	if d < time.Millisecond || d > time.Second {
		return 0, fmt.Errorf("frame_interval must be between 1ms and 1s")
	}
	return d, nil
}

// parseOptionalDuration parses s, returning zero for an empty string.
func parseOptionalDuration(name, s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", name, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", name)
	}
	return d, nil
}
