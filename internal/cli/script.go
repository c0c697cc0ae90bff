package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"projboard/internal/board"
	"projboard/internal/model"
	"projboard/internal/publish"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// scriptFile is a headless board scenario:
//
//	steps:
//	  - create: {as: docs, title: Docs, description: write the guide, people: 2}
//	  - move: {project: docs, to: finished}
type scriptFile struct {
	Steps []scriptStep `yaml:"steps"`
}

type scriptStep struct {
	Create *createStep `yaml:"create"`
	Move   *moveStep   `yaml:"move"`
}

// createStep goes through the input form, so people is the raw field text.
type createStep struct {
	As          string `yaml:"as"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	People      string `yaml:"people"`
}

type moveStep struct {
	// Project is an alias from a create step or a literal project id.
	Project string `yaml:"project"`
	To      string `yaml:"to"`
}

type stepResult struct {
	Step    int      `json:"step"`
	Op      string   `json:"op"`
	ID      string   `json:"id,omitempty"`
	Changed bool     `json:"changed"`
	Alert   string   `json:"alert,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

type listResult struct {
	ID       string          `json:"id"`
	Heading  string          `json:"heading"`
	Projects []model.Project `json:"projects"`
}

type scriptResult struct {
	Steps      []stepResult    `json:"steps"`
	Projects   []model.Project `json:"projects"`
	Lists      []listResult    `json:"lists"`
	Broadcasts int             `json:"broadcasts"`
	Published  []string        `json:"published,omitempty"`
}

func newScriptCmd(app *App) *cobra.Command {
	var publishDir string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "script <file.yaml|->",
		Short: "Run a board scenario without a UI",
		Long: strings.TrimSpace(`
Run create and move steps against a fresh board and print the outcome: every
step's result, the final projects, what each list shows, and how many times
the store broadcast.

Create steps go through the same form validation as the UIs; a rejected step
is reported and the script continues. Move steps run a full drag and drop.
`),
		Example: strings.TrimSpace(`
projboard script scenario.yaml
projboard script scenario.yaml --publish ./board-md --overwrite
cat scenario.yaml | projboard script - --format edn --pretty
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sf, err := readScript(cmd, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}

			sess, err := openSession(cmd.Context(), app, false)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer sess.Close()

			res, err := runScript(sess.board, sf)
			if err != nil {
				return writeErr(cmd, err)
			}
			if strings.TrimSpace(publishDir) != "" {
				out, err := publish.WriteBoard(publish.ListsOf(sess.board), publishDir, publish.WriteOptions{
					Overwrite: overwrite,
					Render:    publish.RenderOptions{GeneratedAt: time.Now()},
				})
				if err != nil {
					return writeErr(cmd, err)
				}
				res.Published = out.Written
			}
			return writeOut(cmd, app, map[string]any{"data": res})
		},
	}

	cmd.Flags().StringVar(&publishDir, "publish", "", "Also write the final board as Markdown into this directory")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing Markdown files")
	return cmd
}

func readScript(cmd *cobra.Command, path string) (scriptFile, error) {
	var (
		b   []byte
		err error
	)
	if strings.TrimSpace(path) == "-" {
		b, err = io.ReadAll(cmd.InOrStdin())
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return scriptFile{}, fmt.Errorf("read script: %w", err)
	}

	var sf scriptFile
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&sf); err != nil && !errors.Is(err, io.EOF) {
		return scriptFile{}, fmt.Errorf("parse script: %w", err)
	}
	for i, st := range sf.Steps {
		if (st.Create == nil) == (st.Move == nil) {
			return scriptFile{}, fmt.Errorf("script step %d: expected exactly one of create, move", i+1)
		}
	}
	return sf, nil
}

func runScript(b *board.Board, sf scriptFile) (scriptResult, error) {
	aliases := map[string]string{}
	res := scriptResult{Steps: []stepResult{}}

	for i, st := range sf.Steps {
		n := i + 1
		before := b.Store.Broadcasts()
		switch {
		case st.Create != nil:
			c := st.Create
			in := b.Input
			in.Title, in.Description, in.People = c.Title, c.Description, c.People
			p, err := in.Submit()
			r := stepResult{Step: n, Op: "create"}
			if err != nil {
				r.Alert = in.Alert()
				r.Errors = board.FieldErrors(err)
				in.Clear()
			} else {
				r.ID = p.ID
				if a := strings.TrimSpace(c.As); a != "" {
					aliases[a] = p.ID
				}
			}
			r.Changed = b.Store.Broadcasts() != before
			res.Steps = append(res.Steps, r)

		case st.Move != nil:
			status, err := model.ParseStatus(st.Move.To)
			if err != nil {
				return scriptResult{}, fmt.Errorf("script step %d: %w", n, err)
			}
			id := strings.TrimSpace(st.Move.Project)
			if alias, ok := aliases[id]; ok {
				id = alias
			}
			if id == "" {
				return scriptResult{}, fmt.Errorf("script step %d: move needs a project", n)
			}
			if err := b.Move(id, status); err != nil {
				return scriptResult{}, fmt.Errorf("script step %d: %w", n, err)
			}
			res.Steps = append(res.Steps, stepResult{
				Step:    n,
				Op:      "move",
				ID:      id,
				Changed: b.Store.Broadcasts() != before,
			})
		}
	}

	res.Projects = b.Store.Snapshot()
	for _, l := range b.Lists() {
		res.Lists = append(res.Lists, listResult{
			ID:       l.ID(),
			Heading:  l.Heading(),
			Projects: l.Projects(),
		})
	}
	res.Broadcasts = b.Store.Broadcasts()
	return res, nil
}
