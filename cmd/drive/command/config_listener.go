package command

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pixil98/go-drive/internal/listener"
	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-service"
	"golang.org/x/crypto/ssh"
)

type ListenerType int

const (
	ListenerTypeTelnet ListenerType = iota
	ListenerTypeSSH
)

func (lt *ListenerType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "telnet":
		*lt = ListenerTypeTelnet
	case "ssh":
		*lt = ListenerTypeSSH
	default:
		return fmt.Errorf("unknown listener type: %s", text)
	}
	return nil
}

type ListenerConfig struct {
	Protocol ListenerType `json:"protocol"`
	// Host is the bind address. Empty binds every interface.
	Host string `json:"host,omitempty"`
	Port uint16 `json:"port"`
	// HostKeyPath is read when present and otherwise created with a new key,
	// so the ssh fingerprint survives restarts.
	HostKeyPath string `json:"host_key_path,omitempty"`
}

func (cl *ListenerConfig) validate() error {
	el := errors.NewErrorList()

	if cl.Port == 0 {
		el.Add(fmt.Errorf("port must be set to a positive integer"))
	}
	if cl.HostKeyPath != "" {
		if cl.Protocol != ListenerTypeSSH {
			el.Add(fmt.Errorf("host_key_path only applies to ssh listeners"))
		} else if info, err := os.Stat(filepath.Dir(cl.HostKeyPath)); err != nil || !info.IsDir() {
			el.Add(fmt.Errorf("host_key_path %q: directory does not exist", cl.HostKeyPath))
		}
	}

	return el.Err()
}

func (cl *ListenerConfig) addr() string {
	return net.JoinHostPort(cl.Host, strconv.Itoa(int(cl.Port)))
}

func (cl *ListenerConfig) BuildListener(cm *listener.ConnectionManager) (service.Worker, error) {
	switch cl.Protocol {
	case ListenerTypeTelnet:
		return listener.NewTelnetListener(cl.addr(), cm), nil
	case ListenerTypeSSH:
		hostKey, err := cl.hostKey()
		if err != nil {
			return nil, fmt.Errorf("setting up ssh host key: %w", err)
		}
		return listener.NewSshListener(cl.addr(), cm, hostKey), nil
	default:
		return nil, fmt.Errorf("unknown listener type: %v", cl.Protocol)
	}
}

func (cl *ListenerConfig) hostKey() (ssh.Signer, error) {
	if cl.HostKeyPath == "" {
		slog.Warn("no host_key_path configured for ssh listener, using an ephemeral key")
		_, key, err := generateHostKey()
		return key, err
	}

	keyBytes, err := os.ReadFile(cl.HostKeyPath)
	if os.IsNotExist(err) {
		block, key, err := generateHostKey()
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(cl.HostKeyPath, pem.EncodeToMemory(block), 0o600); err != nil {
			return nil, fmt.Errorf("writing host key %q: %w", cl.HostKeyPath, err)
		}
		slog.Info("generated ssh host key", "path", cl.HostKeyPath, "fingerprint", ssh.FingerprintSHA256(key.PublicKey()))
		return key, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading host key %q: %w", cl.HostKeyPath, err)
	}

	signer, err := ssh.ParsePrivateKey(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("parsing host key %q: %w", cl.HostKeyPath, err)
	}
	return signer, nil
}

func generateHostKey() (*pem.Block, ssh.Signer, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("generating host key: %w", err)
	}
	signer, err := ssh.NewSignerFromKey(priv)
	if err != nil {
		return nil, nil, fmt.Errorf("creating signer: %w", err)
	}
	block, err := ssh.MarshalPrivateKey(priv, "go-drive host key")
	if err != nil {
		return nil, nil, fmt.Errorf("encoding host key: %w", err)
	}
	return block, signer, nil
}
