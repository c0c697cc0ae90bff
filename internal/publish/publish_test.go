package publish

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"projboard/internal/board"
	"projboard/internal/model"
	"projboard/internal/store"
)

func testLists(t *testing.T) []List {
	t.Helper()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ids := []string{"p1", "p2"}
	st := store.New(
		store.WithIDGenerator(func() string {
			id := ids[0]
			ids = ids[1:]
			return id
		}),
		store.WithClock(func() time.Time { return now }),
	)
	b := board.New(st)
	st.Create("Docs [v2]", "Write the **guide**.", 1)
	st.Create("Ship", "cut the release", 3)
	st.Transition("p2", model.StatusFinished)
	return ListsOf(b)
}

func TestRenderBoardMarkdown_ListsBothColumns(t *testing.T) {
	t.Parallel()

	md := RenderBoardMarkdown(testLists(t), RenderOptions{GeneratedAt: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)})
	for _, want := range []string{
		"# Project board",
		"Generated: 2026-03-02T00:00:00Z",
		"## ACTIVE PROJECTS (1)",
		`- [Docs \[v2\]](projects/p1.md): 1 person assigned`,
		"## FINISHED PROJECTS (1)",
		"- [Ship](projects/p2.md): 3 persons assigned",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("expected %q in:\n%s", want, md)
		}
	}
	if strings.Index(md, "ACTIVE PROJECTS") > strings.Index(md, "FINISHED PROJECTS") {
		t.Fatalf("expected active list first:\n%s", md)
	}
}

func TestRenderBoardMarkdown_EmptyList(t *testing.T) {
	t.Parallel()

	md := RenderBoardMarkdown([]List{{Heading: "ACTIVE PROJECTS"}}, RenderOptions{})
	if !strings.Contains(md, "_No projects_") || strings.Contains(md, "Generated:") {
		t.Fatalf("unexpected markdown:\n%s", md)
	}
}

func TestRenderProjectMarkdown(t *testing.T) {
	t.Parallel()

	p := testLists(t)[1].Projects[0]
	md := RenderProjectMarkdown(p)
	for _, want := range []string{"# Ship", "- ID: p2", "- Status: finished", "- Created: 2026-03-01T12:00:00Z", "## Description", "cut the release"} {
		if !strings.Contains(md, want) {
			t.Fatalf("expected %q in:\n%s", want, md)
		}
	}
}

func TestWriteBoard_WritesIndexAndPages(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	lists := testLists(t)
	res, err := WriteBoard(lists, dir, WriteOptions{})
	if err != nil {
		t.Fatalf("WriteBoard: %v", err)
	}
	want := []string{
		filepath.Join(dir, "index.md"),
		filepath.Join(dir, "projects", "p1.md"),
		filepath.Join(dir, "projects", "p2.md"),
	}
	if strings.Join(res.Written, "\n") != strings.Join(want, "\n") {
		t.Fatalf("unexpected files: %v", res.Written)
	}
	b, err := os.ReadFile(want[1])
	if err != nil || !strings.Contains(string(b), "# Docs [v2]") {
		t.Fatalf("unexpected page: %q (%v)", b, err)
	}

	if _, err := WriteBoard(lists, dir, WriteOptions{}); err == nil || !strings.Contains(err.Error(), "--overwrite") {
		t.Fatalf("expected refusal to overwrite, got %v", err)
	}
	if _, err := WriteBoard(lists, dir, WriteOptions{Overwrite: true}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if _, err := WriteBoard(lists, " ", WriteOptions{}); err == nil {
		t.Fatal("expected missing dir error")
	}
}
