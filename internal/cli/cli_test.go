package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"projboard/internal/model"
	"projboard/internal/store"

	"github.com/rs/zerolog"
)

func runCLI(t *testing.T, stdin string, args ...string) (stdout []byte, stderr []byte, err error) {
	t.Helper()

	cmd := NewRootCmd()

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetIn(strings.NewReader(stdin))
	// Keep scenario logs out of the test output.
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))

	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

func decodeEnvelope(t *testing.T, stdout []byte) map[string]any {
	t.Helper()
	var env map[string]any
	if err := json.Unmarshal(stdout, &env); err != nil {
		t.Fatalf("unmarshal stdout: %v\n%s", err, stdout)
	}
	data, ok := env["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object, got %#v", env)
	}
	return data
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

const scenario = `
steps:
  - create: {as: docs, title: Docs, description: write the guide, people: 2}
  - create: {title: Bad, description: abc, people: 9}
  - create: {as: ship, title: Ship, description: cut the release, people: "1"}
  - move: {project: docs, to: finished}
  - move: {project: docs, to: finished}
`

func TestValidate_Valid(t *testing.T) {
	stdout, stderr, err := runCLI(t, "", "validate", "--title", " Docs ", "--description", "write the guide", "--people", "2")
	if err != nil {
		t.Fatalf("validate failed: %v\n%s", err, stderr)
	}
	data := decodeEnvelope(t, stdout)
	if data["valid"] != true || data["title"] != "Docs" || data["people"] != float64(2) {
		t.Fatalf("unexpected result: %#v", data)
	}
}

func TestValidate_InvalidReportsEachField(t *testing.T) {
	stdout, stderr, err := runCLI(t, "", "validate", "--title", "", "--description", "abc", "--people", "x")
	if err == nil {
		t.Fatal("expected invalid input to fail the command")
	}
	if !strings.Contains(string(stderr), "invalid input") {
		t.Fatalf("expected error on stderr, got %q", stderr)
	}
	data := decodeEnvelope(t, stdout)
	errs, _ := data["errors"].([]any)
	if data["valid"] != false || len(errs) != 3 {
		t.Fatalf("expected three field errors, got %#v", data)
	}
	if data["alert"] != "Invalid input, please try again!" {
		t.Fatalf("unexpected alert %#v", data["alert"])
	}
}

func TestValidate_EDN(t *testing.T) {
	stdout, _, err := runCLI(t, "", "--format", "edn", "validate", "--title", "Docs", "--description", "write the guide", "--people", "5")
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	got := string(stdout)
	if !strings.HasPrefix(got, "{:data {") || !strings.Contains(got, ":valid true") || !strings.Contains(got, ":people 5") {
		t.Fatalf("unexpected edn: %q", got)
	}
}

func TestRoot_InvalidFormat(t *testing.T) {
	_, stderr, err := runCLI(t, "", "--format", "xml", "validate")
	if err == nil || !strings.Contains(string(stderr), "invalid --format") {
		t.Fatalf("expected format error, got %v / %q", err, stderr)
	}
}

func TestRoot_FormatFromEnvironment(t *testing.T) {
	t.Setenv("PROJBOARD_FORMAT", "edn")
	stdout, _, err := runCLI(t, "", "validate", "--title", "Docs", "--description", "write the guide", "--people", "1")
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !strings.HasPrefix(string(stdout), "{:data") {
		t.Fatalf("expected edn from PROJBOARD_FORMAT, got %q", stdout)
	}

	stdout, _, err = runCLI(t, "", "--format", "json", "validate", "--title", "Docs", "--description", "write the guide", "--people", "1")
	if err != nil || !strings.HasPrefix(string(stdout), "{\"data\"") {
		t.Fatalf("expected --format to win over the environment, got %q (%v)", stdout, err)
	}
}

func TestRoot_BadEnvironmentFailsCommands(t *testing.T) {
	t.Setenv("PROJBOARD_RATE_LIMIT", "-1")
	_, stderr, err := runCLI(t, "", "validate")
	if err == nil || !strings.Contains(string(stderr), "PROJBOARD_RATE_LIMIT") {
		t.Fatalf("expected config error, got %v / %q", err, stderr)
	}
}

func TestScript_CreateThenFinish(t *testing.T) {
	stdout, stderr, err := runCLI(t, "", "script", writeScript(t, scenario))
	if err != nil {
		t.Fatalf("script failed: %v\n%s", err, stderr)
	}
	data := decodeEnvelope(t, stdout)

	if data["broadcasts"] != float64(3) {
		t.Fatalf("expected 3 broadcasts (two creates, one move), got %#v", data["broadcasts"])
	}
	steps, _ := data["steps"].([]any)
	if len(steps) != 5 {
		t.Fatalf("expected 5 step results, got %d", len(steps))
	}
	rejected := steps[1].(map[string]any)
	if rejected["changed"] != false || rejected["alert"] != "Invalid input, please try again!" {
		t.Fatalf("expected rejected create, got %#v", rejected)
	}
	if again := steps[4].(map[string]any); again["changed"] != false {
		t.Fatalf("expected repeated move to be a no-op, got %#v", again)
	}

	lists, _ := data["lists"].([]any)
	if len(lists) != 2 {
		t.Fatalf("expected two lists, got %#v", data["lists"])
	}
	active := lists[0].(map[string]any)
	finished := lists[1].(map[string]any)
	if active["id"] != "active-projects-list" || finished["heading"] != "FINISHED PROJECTS" {
		t.Fatalf("unexpected lists: %#v", lists)
	}
	if titles(active) != "Ship" || titles(finished) != "Docs" {
		t.Fatalf("unexpected list contents: active=%q finished=%q", titles(active), titles(finished))
	}
	if projects, _ := data["projects"].([]any); len(projects) != 2 {
		t.Fatalf("expected two projects, got %#v", data["projects"])
	}
}

func TestScript_FromStdin(t *testing.T) {
	stdout, stderr, err := runCLI(t, scenario, "--format", "edn", "script", "-")
	if err != nil {
		t.Fatalf("script failed: %v\n%s", err, stderr)
	}
	if !strings.Contains(string(stdout), ":broadcasts 3") {
		t.Fatalf("unexpected edn: %s", stdout)
	}
}

func TestScript_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "unknown status", body: "steps:\n  - move: {project: p1, to: archived}\n", want: "invalid status"},
		{name: "two ops in one step", body: "steps:\n  - create: {title: A}\n    move: {project: a, to: active}\n", want: "exactly one of"},
		{name: "empty step", body: "steps:\n  - {}\n", want: "exactly one of"},
		{name: "unknown field", body: "steps:\n  - delete: {project: a}\n", want: "parse script"},
		{name: "move without project", body: "steps:\n  - move: {to: finished}\n", want: "needs a project"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stderr, err := runCLI(t, "", "script", writeScript(t, tt.body))
			if err == nil || !strings.Contains(string(stderr), tt.want) {
				t.Fatalf("expected %q error, got %v / %q", tt.want, err, stderr)
			}
		})
	}
}

func TestScript_MissingFile(t *testing.T) {
	_, stderr, err := runCLI(t, "", "script", filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil || !strings.Contains(string(stderr), "read script") {
		t.Fatalf("expected read error, got %v / %q", err, stderr)
	}
}

func TestScript_WritesJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	if _, stderr, err := runCLI(t, "", "--journal", path, "script", writeScript(t, scenario)); err != nil {
		t.Fatalf("script failed: %v\n%s", err, stderr)
	}

	j, err := store.OpenJournal(context.Background(), path, zerolog.Nop())
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer j.Close()
	evs, err := j.Tail(context.Background(), 0)
	if err != nil {
		t.Fatalf("tail: %v", err)
	}
	var types []string
	for _, ev := range evs {
		types = append(types, ev.Type)
	}
	want := []string{model.EventProjectCreate, model.EventProjectCreate, model.EventProjectStatus}
	if strings.Join(types, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected journal: %v", types)
	}
}

func TestScript_Publish(t *testing.T) {
	dir := t.TempDir()
	stdout, stderr, err := runCLI(t, "", "script", writeScript(t, scenario), "--publish", dir)
	if err != nil {
		t.Fatalf("script failed: %v\n%s", err, stderr)
	}
	data := decodeEnvelope(t, stdout)
	if published, _ := data["published"].([]any); len(published) != 3 {
		t.Fatalf("expected index plus two pages, got %#v", data["published"])
	}
	b, err := os.ReadFile(filepath.Join(dir, "index.md"))
	if err != nil {
		t.Fatalf("read index: %v", err)
	}
	if !strings.Contains(string(b), "## FINISHED PROJECTS (1)") {
		t.Fatalf("unexpected index:\n%s", b)
	}

	if _, stderr, err := runCLI(t, "", "script", writeScript(t, scenario), "--publish", dir); err == nil || !strings.Contains(string(stderr), "--overwrite") {
		t.Fatalf("expected overwrite refusal, got %v / %q", err, stderr)
	}
}

func TestDocs(t *testing.T) {
	stdout, _, err := runCLI(t, "", "docs")
	if err != nil {
		t.Fatalf("docs failed: %v", err)
	}
	topics, _ := decodeEnvelope(t, stdout)["topics"].([]any)
	if len(topics) != 3 {
		t.Fatalf("unexpected topics: %#v", topics)
	}

	stdout, _, err = runCLI(t, "", "docs", "keys", "--raw")
	if err != nil || !strings.HasPrefix(string(stdout), "# Terminal board keys") {
		t.Fatalf("unexpected raw docs: %q (%v)", stdout, err)
	}

	if _, stderr, err := runCLI(t, "", "docs", "nope"); err == nil || !strings.Contains(string(stderr), "unknown docs topic") {
		t.Fatalf("expected unknown topic error, got %v / %q", err, stderr)
	}
}

func TestChildArgs(t *testing.T) {
	app := &App{LogFile: "/tmp/board.log", LogLevel: "debug", Journal: "board.db"}
	got := strings.Join(childArgs(app), " ")
	if got != "--log-file /tmp/board.log --log-level debug" {
		t.Fatalf("unexpected child args: %q", got)
	}
	if len(childArgs(&App{})) != 0 {
		t.Fatal("expected no args for an empty app")
	}
}

func titles(list map[string]any) string {
	ps, _ := list["projects"].([]any)
	var out []string
	for _, p := range ps {
		out = append(out, p.(map[string]any)["title"].(string))
	}
	return strings.Join(out, ",")
}
