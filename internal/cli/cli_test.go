package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/photobook/pkg/book"
	"github.com/matzehuels/photobook/pkg/errors"
	"github.com/matzehuels/photobook/pkg/photo"
)

// isolate points the config and cache directories into a temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	return dir
}

func execute(args ...string) error {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func writePhotos(t *testing.T, dir string, n int) string {
	t.Helper()
	base := time.Date(2024, 5, 4, 9, 0, 0, 0, time.UTC)
	photos := make([]photo.Photo, n)
	for i := range photos {
		ts := base.Add(time.Duration(i) * time.Minute)
		w, h := 4000, 3000
		if i%3 == 1 {
			w, h = 3000, 4000
		}
		photos[i] = photo.Photo{Path: fmt.Sprintf("trip/%02d.jpg", i), Width: w, Height: h, TakenAt: &ts}
	}
	path := filepath.Join(dir, "photos.json")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := photo.WriteJSON(photos, f); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeLines(t *testing.T, path string, lines ...any) {
	t.Helper()
	var b strings.Builder
	for _, l := range lines {
		data, err := json.Marshal(l)
		if err != nil {
			t.Fatal(err)
		}
		b.Write(data)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	want := []string{"compose", "templates", "solve", "features", "feedback", "config", "cache", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestComposeCommand(t *testing.T) {
	dir := isolate(t)
	input := writePhotos(t, dir, 14)

	if err := execute("compose", input, "--summary"); err != nil {
		t.Fatalf("compose: %v", err)
	}
	b, err := book.Import(filepath.Join(dir, "photos.book.json"))
	if err != nil {
		t.Fatal(err)
	}
	if len(b.Pages) == 0 || b.PhotoCount != 14 {
		t.Errorf("book has %d pages and %d photos", len(b.Pages), b.PhotoCount)
	}

	entries, err := os.ReadDir(filepath.Join(dir, "cache", appName))
	if err != nil || len(entries) == 0 {
		t.Errorf("expected a cached book, got %v entries (err %v)", len(entries), err)
	}
}

func TestComposeWithOverridesAndFeedback(t *testing.T) {
	dir := isolate(t)
	input := writePhotos(t, dir, 10)
	output := filepath.Join(dir, "out", "book.json")

	if err := execute("compose", input, "-o", output, "--no-cache"); err != nil {
		t.Fatal(err)
	}

	fbLog := filepath.Join(dir, "feedback.jsonl")
	if err := execute("feedback", "record", "--log", fbLog, "--page", "1", "--action", "dislike"); err != nil {
		t.Fatalf("feedback record: %v", err)
	}

	ovLog := filepath.Join(dir, "overrides.jsonl")
	writeLines(t, ovLog, map[string]any{"page": 2, "templateId": "1/centered"})

	err := execute("compose", input, "-o", output, "--no-cache", "--feedback", fbLog, "--overrides", ovLog)
	if err != nil {
		t.Fatal(err)
	}
	b, err := book.Import(output)
	if err != nil {
		t.Fatal(err)
	}
	p, ok := b.Page(2)
	if !ok || p.TemplateID != "1/centered" || !p.Override {
		t.Errorf("page 2 = %s (override %v), want 1/centered", p.TemplateID, p.Override)
	}
}

func TestComposeErrors(t *testing.T) {
	dir := isolate(t)
	input := writePhotos(t, dir, 3)

	tests := []struct {
		name string
		args []string
	}{
		{"missing input", []string{"compose", filepath.Join(dir, "nope.json")}},
		{"missing catalog", []string{"compose", input, "--catalog", filepath.Join(dir, "nope.yaml")}},
		{"missing config", []string{"compose", input, "--config", filepath.Join(dir, "nope.toml")}},
		{"no arguments", []string{"compose"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := execute(tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestFeedbackRecordRejectsUnknownAction(t *testing.T) {
	dir := isolate(t)
	err := execute("feedback", "record", "--log", filepath.Join(dir, "fb.jsonl"), "--page", "1", "--action", "meh")
	if err == nil {
		t.Error("expected error for unknown action")
	}
}

func TestParseMatrix(t *testing.T) {
	tests := []struct {
		in         string
		rows, cols int
		wantErr    bool
	}{
		{"1,2;3,4", 2, 2, false},
		{" 4 1 3 ; 2 0 5 ; 3 2 2 ", 3, 3, false},
		{"7", 1, 1, false},
		{"1,2;3", 0, 0, true},
		{"1,x;3,4", 0, 0, true},
		{"1,2;;3,4", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			m, err := parseMatrix(tt.in)
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeInvalidInput) {
					t.Errorf("error = %v, want INVALID_INPUT", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if r, c := m.Dims(); r != tt.rows || c != tt.cols {
				t.Errorf("dims = %dx%d, want %dx%d", r, c, tt.rows, tt.cols)
			}
		})
	}
}

func TestSolveCommand(t *testing.T) {
	if err := execute("solve", "4,1,3;2,0,5;3,2,2", "--verify"); err != nil {
		t.Errorf("solve: %v", err)
	}
	err := execute("solve", "1,2,3;4,5,6")
	if !errors.Is(err, errors.ErrCodeDegenerateSolve) {
		t.Errorf("non-square error = %v, want DEGENERATE_SOLVE", err)
	}
}

func TestTemplatesCommand(t *testing.T) {
	isolate(t)
	for _, args := range [][]string{{"templates"}, {"templates", "3"}, {"templates", "9"}, {"templates", "--yaml"}} {
		if err := execute(args...); err != nil {
			t.Errorf("%v: %v", args, err)
		}
	}
	if err := execute("templates", "zero"); err == nil {
		t.Error("expected error for non-numeric count")
	}
}

func TestFeaturesImportShow(t *testing.T) {
	dir := isolate(t)
	db := filepath.Join(dir, "features.db")
	src := filepath.Join(dir, "features.json")
	if err := os.WriteFile(src, []byte(`[{"path": "trip/00.jpg", "phash": "ffee00112233aabb", "sharpness": 0.8}]`), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := execute("features", "import", src, "--db", db); err != nil {
		t.Fatalf("import: %v", err)
	}
	if err := execute("features", "show", "trip/00.jpg", "--db", db); err != nil {
		t.Errorf("show: %v", err)
	}

	input := writePhotos(t, dir, 4)
	if err := execute("compose", input, "--features-db", db, "--dedupe", "--no-cache"); err != nil {
		t.Errorf("compose with features: %v", err)
	}
}

func TestConfigInitAndShow(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "photobook.toml")

	if err := execute("config", "init", path); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := execute("config", "init", path); err == nil {
		t.Error("init should refuse to overwrite")
	}
	if err := execute("config", "init", path, "--force"); err != nil {
		t.Errorf("init --force: %v", err)
	}
	if err := execute("config", "show", "--config", path); err != nil {
		t.Errorf("show: %v", err)
	}
}

func TestCacheDir(t *testing.T) {
	dir := isolate(t)
	c := New(io.Discard, LogInfo)

	got, err := c.cacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "cache", appName); got != want {
		t.Errorf("cacheDir() = %q, want %q", got, want)
	}
}

func TestCacheClear(t *testing.T) {
	dir := isolate(t)
	input := writePhotos(t, dir, 5)
	if err := execute("compose", input); err != nil {
		t.Fatal(err)
	}
	if err := execute("cache", "clear"); err != nil {
		t.Fatal(err)
	}
	entries, _ := os.ReadDir(filepath.Join(dir, "cache", appName))
	if len(entries) != 0 {
		t.Errorf("cache still has %d entries", len(entries))
	}
}
