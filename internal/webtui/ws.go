package webtui

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/creack/pty"
	"github.com/gorilla/websocket"
)

// wsMsg is a control frame from the browser. Keystrokes arrive as plain
// frames; only JSON text frames are parsed.
type wsMsg struct {
	Type string `json:"type"`
	Cols int    `json:"cols"`
	Rows int    `json:"rows"`
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  32 * 1024,
	WriteBufferSize: 32 * 1024,
	CheckOrigin:     sameOrigin,
}

func sameOrigin(r *http.Request) bool {
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return true
	}
	host := strings.TrimSpace(r.Host)
	return strings.HasSuffix(origin, "://"+host)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		s.cfg.Log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	ptmx, cmd, cleanup, err := s.startPTYSession()
	if err != nil {
		s.cfg.Log.Error().Err(err).Msg("start tui session")
		_ = conn.WriteMessage(websocket.TextMessage, []byte("failed to start session: "+err.Error()))
		return
	}
	defer cleanup()
	s.cfg.Log.Info().Int("pid", cmd.Process.Pid).Str("remote", r.RemoteAddr).Msg("tui session started")

	rl := &relay{
		conn: conn,
		term: ptmx,
		resize: func(cols, rows uint16) error {
			return pty.Setsize(ptmx, &pty.Winsize{Cols: cols, Rows: rows})
		},
	}
	if err := rl.run(ctx, cleanup); err != nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		s.cfg.Log.Debug().Err(err).Msg("tui session stream closed")
	}
	s.cfg.Log.Info().Int("pid", cmd.Process.Pid).Msg("tui session ended")
}

// sessionCommand re-runs this binary as `projboard tui`.
func (s *Server) sessionCommand() (*exec.Cmd, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, err
	}
	args := append([]string{"tui"}, s.cfg.Args...)
	cmd := exec.Command(exe, args...)
	cmd.Env = append(os.Environ(),
		"TERM=xterm-256color",
		"COLORTERM=truecolor",
	)
	return cmd, nil
}

func (s *Server) startPTYSession() (*os.File, *exec.Cmd, func(), error) {
	cmd, err := s.sessionCommand()
	if err != nil {
		return nil, nil, nil, err
	}
	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Cols: 120, Rows: 40})
	if err != nil {
		return nil, nil, nil, err
	}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			_ = ptmx.Close()
			_ = cmd.Process.Kill()
			_, _ = cmd.Process.Wait()
		})
	}
	return ptmx, cmd, cleanup, nil
}

// relay copies terminal output to the websocket as binary frames and browser
// frames back to the terminal. JSON text frames are control messages and
// never reach the terminal.
type relay struct {
	conn   *websocket.Conn
	term   io.ReadWriter
	resize func(cols, rows uint16) error
}

// run relays until either direction stops, then calls unblock (which must
// make pending terminal reads return) and closes the connection. It returns
// the error that ended the session.
func (rl *relay) run(ctx context.Context, unblock func()) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errCh := make(chan error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		errCh <- rl.output()
	}()
	go func() {
		defer wg.Done()
		errCh <- rl.input()
	}()

	var err error
	select {
	case <-ctx.Done():
	case err = <-errCh:
	}
	unblock()
	_ = rl.conn.Close()
	wg.Wait()
	return err
}

func (rl *relay) output() error {
	buf := make([]byte, 32*1024)
	for {
		n, err := rl.term.Read(buf)
		if n > 0 {
			_ = rl.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if werr := rl.conn.WriteMessage(websocket.BinaryMessage, buf[:n]); werr != nil {
				return werr
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (rl *relay) input() error {
	for {
		mt, data, err := rl.conn.ReadMessage()
		if err != nil {
			return err
		}
		if msg, ok := controlFrame(mt, data); ok {
			rl.control(msg)
			continue
		}
		if len(data) == 0 {
			continue
		}
		if _, err := rl.term.Write(data); err != nil {
			return err
		}
	}
}

func (rl *relay) control(msg wsMsg) {
	if !strings.EqualFold(strings.TrimSpace(msg.Type), "resize") || rl.resize == nil {
		return
	}
	if msg.Cols <= 0 || msg.Rows <= 0 || msg.Cols > 0xffff || msg.Rows > 0xffff {
		return
	}
	_ = rl.resize(uint16(msg.Cols), uint16(msg.Rows))
}

// controlFrame decodes a JSON text frame. Malformed JSON still counts as
// control so it is dropped rather than typed into the board.
func controlFrame(mt int, data []byte) (wsMsg, bool) {
	var msg wsMsg
	if mt != websocket.TextMessage || len(data) == 0 || data[0] != '{' {
		return msg, false
	}
	_ = json.Unmarshal(data, &msg)
	return msg, true
}
