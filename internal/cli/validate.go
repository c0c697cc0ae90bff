package cli

import (
	"strings"

	"projboard/internal/board"

	"github.com/spf13/cobra"
)

func newValidateCmd(app *App) *cobra.Command {
	var title, description, people string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check project form values without creating anything",
		Example: strings.TrimSpace(`
projboard validate --title "Docs" --description "write the guide" --people 2
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, d, n, err := board.ValidateFields(title, description, people)
			if err != nil {
				_ = writeOut(cmd, app, map[string]any{
					"data": map[string]any{
						"valid":  false,
						"alert":  board.InvalidInputMessage,
						"errors": board.FieldErrors(err),
					},
				})
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"valid":       true,
					"title":       t,
					"description": d,
					"people":      n,
				},
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Project title")
	cmd.Flags().StringVar(&description, "description", "", "Project description (at least 5 characters)")
	cmd.Flags().StringVar(&people, "people", "", "Number of people (1-5)")
	return cmd
}
