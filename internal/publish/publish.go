// Package publish exports a board as a small tree of Markdown files: an index
// of both lists plus one page per project.
package publish

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

type WriteOptions struct {
	Overwrite bool
	Render    RenderOptions
}

type WriteResult struct {
	Written []string `json:"written"`
}

func WriteBoard(lists []List, toDir string, opt WriteOptions) (WriteResult, error) {
	toDir = strings.TrimSpace(toDir)
	if toDir == "" {
		return WriteResult{}, errors.New("missing --publish dir")
	}
	toDir = filepath.Clean(toDir)

	projectsDir := filepath.Join(toDir, "projects")
	if err := os.MkdirAll(projectsDir, 0o755); err != nil {
		return WriteResult{}, err
	}

	indexPath := filepath.Join(toDir, "index.md")
	if err := writeFile(indexPath, []byte(RenderBoardMarkdown(lists, opt.Render)), opt.Overwrite); err != nil {
		return WriteResult{}, err
	}

	// Stop on the first failing page.
	written := []string{indexPath}
	for _, l := range lists {
		for _, p := range l.Projects {
			path := filepath.Join(toDir, filepath.FromSlash(projectPath(p.ID)))
			if err := writeFile(path, []byte(RenderProjectMarkdown(p)), opt.Overwrite); err != nil {
				return WriteResult{}, err
			}
			written = append(written, path)
		}
	}
	return WriteResult{Written: written}, nil
}

func writeFile(path string, b []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New("file exists (use --overwrite): " + path)
		}
	}
	return os.WriteFile(path, b, 0o644)
}
