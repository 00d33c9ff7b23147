package command

import (
	"fmt"

	"github.com/pixil98/go-drive/internal/messaging"
	"github.com/pixil98/go-errors"
)

type NatsConfig struct {
	Host         string `json:"host"`
	Port         int    `json:"port"`
	StartTimeout string `json:"start_timeout"`
}

func (n *NatsConfig) validate() error {
	el := errors.NewErrorList()

	if _, err := parseOptionalDuration("start_timeout", n.StartTimeout); err != nil {
		el.Add(err)
	}
	if n.Port < 0 || n.Port > 65535 {
		el.Add(fmt.Errorf("nats port must be between 0 and 65535"))
	}

	return el.Err()
}

func (n *NatsConfig) buildNatsServer() (*messaging.NatsServer, error) {
	var opts []messaging.NatsServerOpt

	d, err := parseOptionalDuration("start_timeout", n.StartTimeout)
	if err != nil {
		return nil, err
	}
	if d > 0 {
		opts = append(opts, messaging.WithStartTimeout(d))
	}
	if n.Host != "" {
		opts = append(opts, messaging.WithHost(n.Host))
	}
	if n.Port != 0 {
		opts = append(opts, messaging.WithPort(n.Port))
	}

	s, err := messaging.NewNatsServer(opts...)
	if err != nil {
		return nil, err
	}

	return s, nil
}
