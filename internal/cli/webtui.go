package cli

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"projboard/internal/logging"
	"projboard/internal/webtui"

	"github.com/spf13/cobra"
)

func newWebTUICmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "webtui",
		Short: "Run the terminal board in your browser (PTY + WebSocket)",
		Long: strings.TrimSpace(`
Run the terminal board over the web via a server-side PTY and a browser
terminal emulator.

Each browser tab starts its own ` + "`projboard tui`" + ` child, so every tab has
its own board.
`),
		Example: strings.TrimSpace(`
projboard webtui --addr 127.0.0.1:8081
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, closer, err := logging.Open(app.LogFile, app.LogLevel, false)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closer.Close()

			srv, err := webtui.NewServer(webtui.ServerConfig{
				Addr: strings.TrimSpace(addr),
				Args: childArgs(app),
				Log:  log,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			listenAddr := srv.Addr()
			if listenAddr == "" {
				return writeErr(cmd, errors.New("webtui: missing --addr"))
			}

			ln, err := net.Listen("tcp", listenAddr)
			if err != nil {
				return writeErr(cmd, err)
			}
			actualAddr := ln.Addr().String()

			_ = writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"addr":      actualAddr,
					"startedAt": time.Now().UTC().Format(time.RFC3339Nano),
				},
				"_hints": []string{"open http://" + actualAddr},
			})
			fmt.Fprintf(cmd.ErrOrStderr(), "projboard webtui running at http://%s\n", actualAddr)

			if err := serve(cmd.Context(), ln, srv.Handler(), log); err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8081", "Bind address (host:port or :port)")
	return cmd
}

// childArgs forwards the log settings to each `projboard tui` child. Without a
// log file the child logs nothing, so nothing lands on the PTY. The journal is
// not forwarded: children would race for the same sequence numbers.
func childArgs(app *App) []string {
	var args []string
	if v := strings.TrimSpace(app.LogFile); v != "" {
		args = append(args, "--log-file", v)
	}
	if v := strings.TrimSpace(app.LogLevel); v != "" {
		args = append(args, "--log-level", v)
	}
	return args
}
