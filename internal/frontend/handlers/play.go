// Package handlers implements the Telnet session handler for the escape
// room: it gates the single-occupancy session, runs the prompt loop, and
// renders pipeline replies as colored text.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/escaperoom/internal/frontend/telnet"
	"github.com/cory-johannsen/escaperoom/internal/game/action"
	"github.com/cory-johannsen/escaperoom/internal/game/pipeline"
	"github.com/cory-johannsen/escaperoom/internal/game/session"
)

const welcomeBanner = `
` + telnet.Bold + telnet.BrightCyan + `
  ███████╗███████╗ ██████╗ █████╗ ██████╗ ███████╗
  ██╔════╝██╔════╝██╔════╝██╔══██╗██╔══██╗██╔════╝
  █████╗  ███████╗██║     ███████║██████╔╝█████╗
  ██╔══╝  ╚════██║██║     ██╔══██║██╔═══╝ ██╔══╝
  ███████╗███████║╚██████╗██║  ██║██║     ███████╗
  ╚══════╝╚══════╝ ╚═════╝╚═╝  ╚═╝╚═╝     ╚══════╝` + telnet.Reset + `

` + telnet.BrightYellow + `  A single-room text escape game` + telnet.Reset + `

  Say what you want to do in plain words.
  Type ` + telnet.Green + `/help` + telnet.Reset + ` for commands, ` + telnet.Green + `/quit` + telnet.Reset + ` to give up.
`

const busyMessage = "Someone is already locked in this room. Try again in a while."

// errIdle marks an idle watchdog expiry, distinguishing it from transport
// failures so the loop can say goodbye before hanging up.
var errIdle = errors.New("handlers: idle disconnect")

// PlayHandler implements telnet.SessionHandler. Each accepted connection
// tries to claim the one live session, then loops: prompt, read a line,
// resolve it as a slash command or a free-text turn, render the reply.
type PlayHandler struct {
	host        *session.Host
	idleTimeout time.Duration
	idleGrace   time.Duration
	logger      *zap.Logger
}

var _ telnet.SessionHandler = (*PlayHandler)(nil)

// NewPlayHandler creates a PlayHandler over the session host. An
// idleTimeout of zero disables the idle watchdog; idleGrace is how long a
// warned player has to answer before the connection drops.
func NewPlayHandler(host *session.Host, idleTimeout, idleGrace time.Duration, logger *zap.Logger) *PlayHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlayHandler{
		host:        host,
		idleTimeout: idleTimeout,
		idleGrace:   idleGrace,
		logger:      logger,
	}
}

// HandleSession implements telnet.SessionHandler.
//
// Postcondition: the claimed session is released and its transcript closed,
// whichever way the connection ends.
func (h *PlayHandler) HandleSession(ctx context.Context, conn *telnet.Conn) error {
	start := time.Now()
	addr := conn.RemoteAddr().String()

	sess, err := h.host.Claim()
	if err != nil {
		if errors.Is(err, session.ErrRoomBusy) {
			h.logger.Info("room occupied, refusing connection", zap.String("remote_addr", addr))
			_ = conn.WriteLine(telnet.Colorize(telnet.Yellow, busyMessage))
			return nil
		}
		return fmt.Errorf("claiming session: %w", err)
	}
	defer func() {
		endCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		sess.End(endCtx)
		h.host.Release()
		h.logger.Info("player disconnected",
			zap.String("remote_addr", addr),
			zap.Duration("session_duration", time.Since(start)),
		)
	}()

	h.logger.Info("player connected", zap.String("remote_addr", addr))

	if err := conn.Write([]byte(welcomeBanner)); err != nil {
		return fmt.Errorf("sending welcome: %w", err)
	}

	last := sess.Begin(ctx)
	if err := conn.Write([]byte(RenderResult(last))); err != nil {
		return fmt.Errorf("writing opening: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteLine(telnet.Colorize(telnet.Yellow, "The room fades out. Server shutting down."))
			return ctx.Err()
		default:
		}

		if err := conn.WritePrompt(telnet.Colorize(telnet.BrightCyan, "> ")); err != nil {
			return fmt.Errorf("writing prompt: %w", err)
		}

		line, err := h.readLine(conn)
		if err != nil {
			if errors.Is(err, errIdle) {
				_ = conn.WriteLine("")
				_ = conn.WriteLine(telnet.Colorize(telnet.Yellow, "The line goes quiet. Goodbye."))
				h.logger.Info("idle disconnect", zap.String("remote_addr", addr))
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			done, err := h.command(ctx, conn, sess, line, &last)
			if err != nil {
				return err
			}
			if done {
				return nil
			}
			continue
		}

		last = sess.TakeTurn(ctx, line)
		if err := conn.Write([]byte(RenderResult(last))); err != nil {
			return fmt.Errorf("writing reply: %w", err)
		}
	}
}

// command handles one slash command. It reports done when the player asked
// to leave. last tracks the most recent pipeline reply so /scene can show
// the current composition without consuming a turn.
func (h *PlayHandler) command(ctx context.Context, conn *telnet.Conn, sess *session.Session, line string, last *pipeline.DisplayResult) (bool, error) {
	cmd := strings.ToLower(strings.Fields(line)[0])

	switch cmd {
	case "/quit", "/exit":
		_ = conn.WriteLine(telnet.Colorize(telnet.Cyan, "The room keeps its secrets. Goodbye."))
		return true, nil

	case "/help":
		return false, h.writeHelp(conn)

	case "/look":
		return false, conn.Write([]byte(RenderDescription(sess.Describe())))

	case "/scene":
		return false, conn.WriteLine(RenderScene(last.Scene))

	case "/hint":
		*last = sess.TakeAction(ctx, action.Action{Kind: action.KindHint})
		return false, conn.Write([]byte(RenderResult(*last)))

	case "/restart":
		*last = sess.Reset(ctx)
		_ = conn.WriteLine(telnet.Colorize(telnet.Yellow, "Everything snaps back to where it started."))
		return false, conn.Write([]byte(RenderResult(*last)))

	default:
		return false, conn.WriteLine(telnet.Colorf(telnet.Red, "Unknown command: %s. Type /help for commands.", cmd))
	}
}

func (h *PlayHandler) writeHelp(conn *telnet.Conn) error {
	help := telnet.Colorize(telnet.BrightWhite, "Commands:") + "\r\n" +
		telnet.Colorize(telnet.Green, "  /look") + "     Re-read the room description.\r\n" +
		telnet.Colorize(telnet.Green, "  /scene") + "    List the current scene layers.\r\n" +
		telnet.Colorize(telnet.Green, "  /hint") + "     Ask for a nudge. Costs a turn.\r\n" +
		telnet.Colorize(telnet.Green, "  /restart") + "  Put the room back and start over.\r\n" +
		telnet.Colorize(telnet.Green, "  /quit") + "     Disconnect.\r\n" +
		"Anything else you type is played as an action in the room.\r\n"
	return conn.Write([]byte(help))
}

// readLine waits for player input. With the idle watchdog configured, the
// player gets one warning after idleTimeout of silence, then the grace
// period to answer it.
func (h *PlayHandler) readLine(conn *telnet.Conn) (string, error) {
	if h.idleTimeout <= 0 {
		return conn.ReadLine()
	}
	line, err := conn.ReadLineTimeout(h.idleTimeout)
	if err == nil || !errors.Is(err, os.ErrDeadlineExceeded) {
		return line, err
	}
	_ = conn.WriteLine("")
	_ = conn.WriteLine(telnet.Colorize(telnet.Yellow, "Still there? The room can wait. This connection cannot."))
	grace := h.idleGrace
	if grace <= 0 {
		grace = time.Minute
	}
	line, err = conn.ReadLineTimeout(grace)
	if err != nil && errors.Is(err, os.ErrDeadlineExceeded) {
		return "", errIdle
	}
	return line, err
}
