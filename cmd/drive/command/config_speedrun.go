package command

import (
	"fmt"

	"github.com/pixil98/go-drive/internal/game"
	"github.com/pixil98/go-drive/internal/speedrun"
	"github.com/pixil98/go-drive/internal/storage"
	"github.com/pixil98/go-errors"
)

// SpeedrunConfig picks the course and its timing. Without a course the
// speedrun is disabled.
type SpeedrunConfig struct {
	Course            string `json:"course"`
	CountdownFrom     int    `json:"countdown_from"`
	CountdownInterval string `json:"countdown_interval"`
	GoDelay           string `json:"go_delay"`
	SubmitTimeout     string `json:"submit_timeout"`
}

func (c *SpeedrunConfig) validate() error {
	el := errors.NewErrorList()

	if c.CountdownFrom < 0 {
		el.Add(fmt.Errorf("countdown_from must not be negative"))
	}
	_, err := c.build()
	el.Add(err)

	return el.Err()
}

func (c *SpeedrunConfig) build() (speedrun.Config, error) {
	el := errors.NewErrorList()
	cfg := speedrun.Config{CountdownFrom: c.CountdownFrom}

	var err error
	cfg.CountdownInterval, err = parseOptionalDuration("countdown_interval", c.CountdownInterval)
	el.Add(err)
	cfg.GoDelay, err = parseOptionalDuration("go_delay", c.GoDelay)
	el.Add(err)
	cfg.SubmitTimeout, err = parseOptionalDuration("submit_timeout", c.SubmitTimeout)
	el.Add(err)

	return cfg, el.Err()
}

// course resolves the configured course, or nil when none is set.
func (c *SpeedrunConfig) course(dict *game.Dictionary) (*game.Course, error) {
	if c.Course == "" {
		return nil, nil
	}
	return dict.Course(storage.Identifier(c.Course))
}
