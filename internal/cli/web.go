package cli

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"projboard/internal/metrics"
	"projboard/internal/web"

	"github.com/spf13/cobra"
)

func newWebCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "web",
		Short: "Serve the board to browsers (server-rendered, live updates over SSE)",
		Long: strings.TrimSpace(`
Serve the board from a local HTTP server.

Every browser tab shares one board. Cards are dragged with the browser's
native drag and drop; list changes are pushed to all open tabs.
`),
		Example: strings.TrimSpace(`
# Serve on localhost
projboard web --addr 127.0.0.1:8080

# Keep an audit journal on disk
projboard --journal ./board.db web
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			listenAddr := strings.TrimSpace(addr)
			if listenAddr == "" {
				return writeErr(cmd, errors.New("web: missing --addr"))
			}

			sess, err := openSession(cmd.Context(), app, false)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer sess.Close()

			col := metrics.New()
			col.Attach(sess.board.Store)

			srv, err := web.NewServer(web.ServerConfig{
				Addr:      listenAddr,
				Board:     sess.board,
				Journal:   sess.journal,
				Metrics:   col,
				Log:       sess.log,
				RateLimit: app.cfg.RateLimit,
				RateBurst: app.cfg.RateBurst,
				Keepalive: app.cfg.Keepalive,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			defer srv.Close()

			ln, err := net.Listen("tcp", srv.Addr())
			if err != nil {
				return writeErr(cmd, err)
			}
			actualAddr := ln.Addr().String()
			url := "http://" + actualAddr + "/"

			_ = writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"addr":      actualAddr,
					"url":       url,
					"journal":   strings.TrimSpace(app.Journal),
					"startedAt": time.Now().UTC().Format(time.RFC3339Nano),
				},
				"_hints": []string{"open " + url},
			})
			fmt.Fprintf(cmd.ErrOrStderr(), "projboard web running at %s\n", url)

			if err := serve(cmd.Context(), ln, srv.Handler(), sess.log); err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", app.cfg.Addr, "Bind address (host:port or :port)")
	return cmd
}
