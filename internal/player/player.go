package player

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/pixil98/go-drive/internal/display"
	"github.com/pixil98/go-drive/internal/game"
	"github.com/pixil98/go-drive/internal/leaderboard"
)

const maxTopScores = 50

// Player is one connected session. It turns text lines into inputs for the
// world and renders the events published to the visitor.
type Player struct {
	conn      io.ReadWriter
	in        *bufio.Reader
	visitorID string
	world     *game.WorldState
	renderer  *Renderer

	// watch renders throttled vehicle state as it is published.
	watch bool

	msgs chan []byte
	done <-chan struct{}
}

// Id returns the visitor id this session plays as.
func (p *Player) Id() string {
	return p.visitorID
}

func (p *Player) Play(ctx context.Context) error {
	// Start goroutine to read input lines into a channel
	stop := make(chan struct{})
	defer close(stop)
	inputChan := make(chan string)
	inputErrChan := make(chan error, 1)
	go func() {
		defer close(inputChan)
		for {
			line, err := p.in.ReadString('\n')
			if line != "" {
				select {
				case inputChan <- line:
				case <-stop:
					return
				}
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					inputErrChan <- err
				}
				return
			}
		}
	}()

	if err := p.writeLine(display.Wrap("Type 'help' for the list of commands.")); err != nil {
		return err
	}
	if err := p.prompt(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-p.done:
			p.drainMessages()
			if err := p.writeLine("\nYour session has ended."); err != nil {
				slog.WarnContext(ctx, "writing disconnect message", "visitor", p.visitorID, "error", err)
			}
			return nil

		case msg := <-p.msgs:
			text, ok := p.render(msg)
			if !ok {
				continue
			}
			if err := p.writeLine("\n" + text); err != nil {
				return err
			}
			if err := p.prompt(); err != nil {
				return err
			}

		case line, ok := <-inputChan:
			if !ok {
				select {
				case err := <-inputErrChan:
					return err
				default:
					return nil
				}
			}

			p.world.MarkPlayerActive(p.visitorID)

			quit, err := p.handle(ctx, strings.TrimSpace(line))
			if err != nil {
				return err
			}
			if quit {
				return p.writeLine("Goodbye!")
			}
			if err := p.prompt(); err != nil {
				return err
			}
		}
	}
}

// handle runs one line of input and reports whether the player asked to quit.
func (p *Player) handle(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}

	cmd := strings.ToLower(fields[0])
	switch {
	case cmd == "quit":
		return true, nil

	case cmd == "help":
		return false, p.writeLine(helpText(p.world.Bindings()))

	case cmd == "top":
		return false, p.top(ctx, fields[1:])

	case cmd == "status":
		return false, p.status()

	case cmd == "watch":
		p.watch = !p.watch
		if p.watch {
			return false, p.writeLine("Watching vehicle state.")
		}
		return false, p.writeLine("Stopped watching vehicle state.")

	case cmd == "initials":
		if len(fields) < 2 {
			return false, p.writeLine("Usage: initials <ABC>")
		}
		return false, p.input(game.Initials(strings.Join(fields[1:], "")))

	default:
		for _, f := range fields {
			if err := p.key(strings.ToLower(f)); err != nil {
				return false, err
			}
		}
		return false, nil
	}
}

// key queues a press (+key), release (-key) or single-frame tap (key).
func (p *Player) key(token string) error {
	var ev game.InputEvent
	switch {
	case strings.HasPrefix(token, "+"):
		ev = game.Press(token[1:])
	case strings.HasPrefix(token, "-"):
		ev = game.Release(token[1:])
	default:
		ev = game.Tap(token)
	}

	if _, ok := p.world.Bindings().Lookup(ev.Key); !ok {
		return p.writeLine(fmt.Sprintf("Unknown command or key %q. Type 'help'.", token))
	}
	return p.input(ev)
}

func (p *Player) input(ev game.InputEvent) error {
	err := p.world.Input(p.visitorID, ev)
	if errors.Is(err, game.ErrInputBacklog) {
		return p.writeLine("Slow down!")
	}
	return err
}

func (p *Player) top(ctx context.Context, args []string) error {
	limit := leaderboard.DefaultLimit
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return p.writeLine("Usage: top [count]")
		}
		limit = min(n, maxTopScores)
	}

	entries, err := p.world.Board().TopScores(ctx, limit)
	if err != nil {
		slog.WarnContext(ctx, "reading leaderboard", "error", err)
		return p.writeLine("The leaderboard is unavailable right now.")
	}
	return p.writeLine(renderLeaderboard(entries))
}

func (p *Player) status() error {
	st, err := p.world.Status(p.visitorID)
	if err != nil {
		return err
	}
	return p.writeLine(renderStatus(st))
}

func (p *Player) render(msg []byte) (string, bool) {
	ev, err := game.DecodeEvent(msg)
	if err != nil {
		slog.Warn("decoding event", "visitor", p.visitorID, "error", err)
		return "", false
	}
	return p.renderer.Event(ev, p.watch)
}

// drainMessages shows whatever was published before the session ended, such
// as the reason for a kick.
func (p *Player) drainMessages() {
	for {
		select {
		case msg := <-p.msgs:
			if text, ok := p.render(msg); ok {
				_ = p.writeLine("\n" + text)
			}
		default:
			return
		}
	}
}

func (p *Player) prompt() error {
	prompt := "> "
	if st, err := p.world.Status(p.visitorID); err == nil && st.Run.Phase != "idle" {
		prompt = fmt.Sprintf("[%s] > ", strings.ReplaceAll(st.Run.Phase, "_", " "))
	}
	_, err := io.WriteString(p.conn, prompt)
	return err
}

func (p *Player) writeLine(msg string) error {
	_, err := io.WriteString(p.conn, msg+"\n")
	return err
}
