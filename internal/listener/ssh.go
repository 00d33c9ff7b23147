package listener

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"golang.org/x/crypto/ssh"
)

// SshListener accepts ssh sessions without authentication. The ssh user name
// is passed on as the remote user.
type SshListener struct {
	addr   string
	cm     *ConnectionManager
	config *ssh.ServerConfig
}

func NewSshListener(addr string, cm *ConnectionManager, hostKey ssh.Signer) *SshListener {
	config := &ssh.ServerConfig{
		NoClientAuth:  true,
		ServerVersion: "SSH-2.0-go-drive",
	}
	config.AddHostKey(hostKey)

	return &SshListener{
		addr:   addr,
		cm:     cm,
		config: config,
	}
}

func (l *SshListener) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", l.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", l.addr, err)
	}
	slog.InfoContext(ctx, "listening for ssh", "addr", l.addr)

	connCtx, cancelConns := context.WithCancel(context.WithoutCancel(ctx))
	var wg sync.WaitGroup
	defer func() {
		cancelConns()
		wg.Wait()
	}()

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			slog.ErrorContext(ctx, "accepting ssh connection", "error", err)
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			l.serveConn(connCtx, conn)
		}()
	}
}

func (l *SshListener) serveConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	sshConn, chans, reqs, err := ssh.NewServerConn(conn, l.config)
	if err != nil {
		slog.WarnContext(ctx, "ssh handshake", "remote", conn.RemoteAddr(), "error", err)
		return
	}
	defer sshConn.Close()

	slog.InfoContext(ctx, "ssh connection established", "remote", conn.RemoteAddr(), "user", sshConn.User())
	ctx = WithRemoteUser(ctx, sshConn.User())

	// Closing the connection ends the channel loop on shutdown.
	go func() {
		<-ctx.Done()
		sshConn.Close()
	}()
	go ssh.DiscardRequests(reqs)

	// One vehicle per connection, so channels are served one after another.
	for newChan := range chans {
		if newChan.ChannelType() != "session" {
			newChan.Reject(ssh.UnknownChannelType, "unknown channel type")
			continue
		}

		ch, requests, err := newChan.Accept()
		if err != nil {
			slog.WarnContext(ctx, "accepting ssh channel", "error", err)
			continue
		}

		if awaitShell(ctx, requests) {
			l.cm.AcceptConnection(ctx, newLineConn(ch))
		}
		ch.Close()
	}
}

// awaitShell answers channel requests until the client asks for a shell.
// Clients do not forward input before the shell reply. A pty is refused so
// the client keeps local echo and sends whole lines.
func awaitShell(ctx context.Context, requests <-chan *ssh.Request) bool {
	shell := make(chan struct{})
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for req := range requests {
			ok := req.Type == "shell"
			req.Reply(ok, nil)
			if ok {
				select {
				case <-shell:
				default:
					close(shell)
				}
			}
		}
	}()

	select {
	case <-shell:
		return true
	case <-closed:
		select {
		case <-shell:
			return true
		default:
			return false
		}
	case <-ctx.Done():
		return false
	}
}
