// Package cli is the projboard command line: the terminal board, the browser
// front ends, and scriptable commands that print JSON or EDN envelopes.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"projboard/internal/board"
	"projboard/internal/config"
	"projboard/internal/format"
	"projboard/internal/logging"
	"projboard/internal/store"
	"projboard/internal/tui"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type App struct {
	PrettyJSON bool
	Format     string
	LogLevel   string
	LogFile    string
	Journal    string

	cfg    config.Config
	cfgErr error
}

func NewRootCmd() *cobra.Command {
	app := &App{}
	app.cfg, app.cfgErr = config.Load()
	if app.cfgErr != nil {
		// Flags still need usable defaults; the error is reported before any
		// command runs.
		app.cfg = config.Config{Format: "json", LogLevel: "info"}
	}

	cmd := &cobra.Command{
		Use:          "projboard",
		Short:        "Drag-and-drop project board (terminal + browser)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive board
  projboard

  # Serve the board to browsers
  projboard web --addr 127.0.0.1:8080

  # Run a scenario headlessly
  projboard script scenario.yaml --format edn
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if app.cfgErr != nil {
			return writeErr(cmd, app.cfgErr)
		}
		app.Format = strings.ToLower(strings.TrimSpace(app.Format))
		if !format.Valid(app.Format) {
			return writeErr(cmd, fmt.Errorf("invalid --format: %q (expected %s)", app.Format, strings.Join(format.Formats, "|")))
		}
		if _, err := logging.ParseLevel(app.LogLevel); err != nil {
			return writeErr(cmd, err)
		}
		return nil
	}

	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", app.cfg.Format, "Output format (json|edn)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", app.cfg.LogLevel, "Log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&app.LogFile, "log-file", app.cfg.LogFile, "Append logs to this file as JSON lines")
	cmd.PersistentFlags().StringVar(&app.Journal, "journal", app.cfg.Journal, "SQLite file for the change journal (default: in memory)")

	cmd.AddCommand(newTUICmd(app))
	cmd.AddCommand(newWebCmd(app))
	cmd.AddCommand(newWebTUICmd(app))
	cmd.AddCommand(newScriptCmd(app))
	cmd.AddCommand(newValidateCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

func newTUICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the interactive board in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, app)
		},
	}
}

func runTUI(cmd *cobra.Command, app *App) error {
	// The TUI owns the terminal: logs go to --log-file or nowhere.
	sess, err := openSession(cmd.Context(), app, true)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer sess.Close()
	return tui.Run(sess.board, sess.log)
}

// session is one board plus everything hanging off its store.
type session struct {
	board   *board.Board
	journal *store.Journal
	log     zerolog.Logger
	closers []io.Closer
}

func openSession(ctx context.Context, app *App, quiet bool, opts ...store.Option) (*session, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	log, logCloser, err := logging.Open(app.LogFile, app.LogLevel, quiet)
	if err != nil {
		return nil, err
	}
	j, err := store.OpenJournal(ctx, app.Journal, log)
	if err != nil {
		_ = logCloser.Close()
		return nil, err
	}

	st := store.New(append([]store.Option{store.WithLogger(log)}, opts...)...)
	j.Attach(st)
	return &session{
		board:   board.New(st),
		journal: j,
		log:     log,
		closers: []io.Closer{j, logCloser},
	}, nil
}

func (s *session) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.journal.Err(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
