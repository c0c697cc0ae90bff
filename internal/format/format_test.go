package format

import (
	"bytes"
	"strings"
	"testing"
)

type sample struct {
	ID        string   `json:"id"`
	People    int      `json:"people"`
	CreatedAt string   `json:"createdAt"`
	Tags      []string `json:"tags"`
	Done      bool     `json:"done"`
	Note      *string  `json:"note"`
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, map[string]any{"data": 1}, "", false); err != nil {
		t.Fatalf("write: %v", err)
	}
	if buf.String() != "{\"data\":1}\n" {
		t.Fatalf("unexpected json: %q", buf.String())
	}
}

func TestWriteEDN(t *testing.T) {
	var buf bytes.Buffer
	v := sample{ID: "p1", People: 3, CreatedAt: "2026-01-02", Tags: []string{"a", "b"}}
	if err := Write(&buf, v, "edn", false); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := `{:created-at "2026-01-02" :done false :id "p1" :note nil :people 3 :tags ["a" "b"]}` + "\n"
	if buf.String() != want {
		t.Fatalf("unexpected edn:\n got %q\nwant %q", buf.String(), want)
	}
}

func TestWriteEDNPretty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteEDN(&buf, map[string]any{"data": []int{1}}, true); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := "{\n  :data [\n    1\n  ]\n}\n"
	if buf.String() != want {
		t.Fatalf("unexpected pretty edn: %q", buf.String())
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, 1, "xml", false)
	if err == nil || !strings.Contains(err.Error(), "unknown format") {
		t.Fatalf("expected unknown format error, got %v", err)
	}
	if Valid("xml") || !Valid("EDN") {
		t.Fatal("Valid disagrees with Write")
	}
}

func TestKeyword(t *testing.T) {
	cases := map[string]string{
		"createdAt": "created-at",
		"entityId":  "entity-id",
		"title":     "title",
		"a b":       "a-b",
		"snake_key": "snake-key",
	}
	for in, want := range cases {
		if got := Keyword(in); got != want {
			t.Fatalf("Keyword(%q) = %q, want %q", in, got, want)
		}
	}
}
