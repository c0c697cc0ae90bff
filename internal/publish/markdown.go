package publish

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"projboard/internal/board"
	"projboard/internal/model"
)

type RenderOptions struct {
	// GeneratedAt is stamped into the index; zero leaves it out.
	GeneratedAt time.Time
}

// List is one board column as published.
type List struct {
	ID       string
	Heading  string
	Projects []model.Project
}

// ListsOf copies the lists out of b in display order.
func ListsOf(b *board.Board) []List {
	out := make([]List, 0, 2)
	for _, l := range b.Lists() {
		out = append(out, List{ID: l.ID(), Heading: l.Heading(), Projects: l.Projects()})
	}
	return out
}

func RenderProjectMarkdown(p model.Project) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	writeLn("# " + strings.TrimSpace(p.Title))
	writeLn("")
	writeLn("## Meta")
	writeLn("")
	writeLn("- ID: " + p.ID)
	writeLn("- Status: " + p.Status.String())
	writeLn("- People: " + p.PeopleLabel())
	if !p.CreatedAt.IsZero() {
		writeLn("- Created: " + p.CreatedAt.UTC().Format(time.RFC3339))
	}

	if d := strings.TrimSpace(p.Description); d != "" {
		writeLn("")
		writeLn("## Description")
		writeLn("")
		writeLn(d)
	}
	return buf.String()
}

// RenderBoardMarkdown renders the index page: one section per list, one line
// per project linking to its page.
func RenderBoardMarkdown(lists []List, opt RenderOptions) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	writeLn("# Project board")
	if !opt.GeneratedAt.IsZero() {
		writeLn("")
		writeLn("Generated: " + opt.GeneratedAt.UTC().Format(time.RFC3339))
	}
	for _, l := range lists {
		writeLn("")
		writeLn(fmt.Sprintf("## %s (%d)", l.Heading, len(l.Projects)))
		writeLn("")
		if len(l.Projects) == 0 {
			writeLn("_No projects_")
			continue
		}
		for _, p := range l.Projects {
			writeLn(fmt.Sprintf("- [%s](%s): %s", escapeLinkText(p.Title), projectPath(p.ID), p.PeopleLabel()))
		}
	}
	return buf.String()
}

func projectPath(id string) string {
	return "projects/" + id + ".md"
}

func escapeLinkText(s string) string {
	s = strings.TrimSpace(s)
	return strings.NewReplacer("[", `\[`, "]", `\]`).Replace(s)
}
