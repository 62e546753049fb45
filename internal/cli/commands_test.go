package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/villas/pkg/blueprint"
	"github.com/matzehuels/villas/pkg/errors"
)

const wingTOML = `name = "north wing"
width = 6
height = 4

[[rooms]]
name = "hall"
at = [1, 1]
drawing = '''
D---
----
'''

[[tiles]]
tile = "stair"
i = 3
j = 2
`

const wingText = "      \n D--- \n ---- \n  x   \n"

// sandbox isolates a test from the user's config, cache and store and
// returns a working directory containing wing.toml.
func sandbox(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", filepath.Join(dir, "home"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	writeTestFile(t, "wing.toml", wingTOML)
	return dir
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// execute runs the root command with args and returns what it wrote to stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	out, _, err := executeStatus(t, stdin, args...)
	return out, err
}

// executeStatus is like execute but also returns the status lines written
// to stderr.
func executeStatus(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, status bytes.Buffer
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&status)
	root.SetArgs(args)
	t.Cleanup(func() { uiOut = os.Stdout })
	err = root.ExecuteContext(context.Background())
	return out.String(), status.String(), err
}

func TestValidateCommand(t *testing.T) {
	sandbox(t)
	writeTestFile(t, "broken.toml", "width = 4\nheight = 4\n[[rooms]]\ndrawing = \"--\"\n")

	if _, err := execute(t, "", "validate", "wing.toml"); err != nil {
		t.Fatalf("validate wing.toml: %v", err)
	}

	_, err := execute(t, "", "validate", "wing.toml", "broken.toml", "missing.toml")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("validate with broken files error = %v, want INVALID_INPUT", err)
	}
	if !strings.Contains(err.Error(), "2 of 3") {
		t.Errorf("error %q should count the invalid files", err)
	}
}

func TestRoomCommand(t *testing.T) {
	sandbox(t)

	out, err := execute(t, "\n D---\n ----\n", "room")
	if err != nil {
		t.Fatalf("room: %v", err)
	}
	if out != "D---\n----\n" {
		t.Errorf("room output = %q, want normalized drawing", out)
	}

	writeTestFile(t, "split.txt", "--D--\n")
	_, err = execute(t, "", "room", "split.txt")
	if !errors.Is(err, errors.ErrCodeInvalidRoom) {
		t.Errorf("room split.txt error = %v, want INVALID_ROOM", err)
	}
}

func TestRenderCommandStdout(t *testing.T) {
	sandbox(t)

	out, err := execute(t, "", "render", "wing.toml", "-f", "txt", "-o", "-")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != wingText {
		t.Errorf("render txt = %q, want %q", out, wingText)
	}

	out, err = execute(t, wingTOML, "render", "-", "--input", "toml", "-f", "txt", "-o", "-", "--no-cache")
	if err != nil {
		t.Fatalf("render stdin: %v", err)
	}
	if out != wingText {
		t.Errorf("render stdin txt = %q, want %q", out, wingText)
	}
}

func TestRenderCommandFiles(t *testing.T) {
	dir := sandbox(t)

	if _, err := execute(t, "", "render", "wing.toml", "-f", "txt,json", "-o", "out/wing"); err != nil {
		t.Fatalf("render: %v", err)
	}

	txt, err := os.ReadFile(filepath.Join(dir, "out", "wing.txt"))
	if err != nil {
		t.Fatalf("read txt: %v", err)
	}
	if string(txt) != wingText {
		t.Errorf("wing.txt = %q", txt)
	}
	js, err := os.ReadFile(filepath.Join(dir, "out", "wing.json"))
	if err != nil {
		t.Fatalf("read json: %v", err)
	}
	if !strings.Contains(string(js), "north wing") {
		t.Errorf("wing.json should name the plan: %s", js)
	}

	entries, err := os.ReadDir(filepath.Join(dir, "cache", appName))
	if err != nil || len(entries) == 0 {
		t.Errorf("render should populate the file cache: %v", err)
	}
}

func TestRenderCommandErrors(t *testing.T) {
	sandbox(t)

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"unknown format", []string{"render", "wing.toml", "-f", "gif"}, errors.ErrCodeInvalidFormat},
		{"stdout needs one format", []string{"render", "wing.toml", "-f", "txt,svg", "-o", "-"}, errors.ErrCodeInvalidInput},
		{"cell size out of range", []string{"render", "wing.toml", "--cell-size", "1"}, errors.ErrCodeInvalidInput},
		{"stdin without format", []string{"render", "-", "-o", "-", "-f", "txt"}, errors.ErrCodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, wingTOML, tt.args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestRenderUsesConfigFile(t *testing.T) {
	sandbox(t)
	writeTestFile(t, "villas.yaml", "render:\n  frame: true\ncache:\n  enabled: false\n")

	out, err := execute(t, "", "render", "wing.toml", "-f", "txt", "-o", "-")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasPrefix(out, "+------+\n|      |\n") {
		t.Errorf("render should be framed by config, got:\n%s", out)
	}

	out, err = execute(t, "", "render", "wing.toml", "-f", "txt", "-o", "-", "--frame=false")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != wingText {
		t.Errorf("--frame=false should override the config file, got:\n%s", out)
	}
}

func TestRegionsCommand(t *testing.T) {
	dir := sandbox(t)

	out, err := execute(t, "", "regions", "wing.toml", "--graph", "regions.dot", "--detailed")
	if err != nil {
		t.Fatalf("regions: %v", err)
	}
	for _, want := range []string{"Region", "r1", "hall", "Passage", "p1", "1,1"} {
		if !strings.Contains(out, want) {
			t.Errorf("regions output missing %q:\n%s", want, out)
		}
	}

	dot, err := os.ReadFile(filepath.Join(dir, "regions.dot"))
	if err != nil {
		t.Fatalf("read dot: %v", err)
	}
	if !strings.Contains(string(dot), "r1") {
		t.Errorf("dot output should contain r1:\n%s", dot)
	}

	_, err = execute(t, "", "regions", "wing.toml", "--graph", "regions.gif")
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("regions --graph gif error = %v, want INVALID_FORMAT", err)
	}
}

func TestPathCommand(t *testing.T) {
	sandbox(t)

	out, err := execute(t, "", "path", "wing.toml", "--from", "1,1", "--to", "3,2")
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	if got := strings.Count(out, "*"); got != 4 {
		t.Errorf("route should mark 4 cells, got %d:\n%s", got, out)
	}

	_, err = execute(t, "", "path", "wing.toml", "--from", "one", "--to", "3,2")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("bad --from error = %v, want INVALID_INPUT", err)
	}

	_, err = execute(t, "", "path", "wing.toml", "--from", "0,0", "--to", "3,2")
	if err == nil {
		t.Error("path from a wall should fail")
	}
}

func TestStoreCommands(t *testing.T) {
	dir := sandbox(t)
	storeDir := filepath.Join(dir, "blueprints")
	run := func(args ...string) (string, error) {
		return execute(t, "", append(args, "--store-dir", storeDir)...)
	}

	_, status, err := executeStatus(t, "", "store", "save", "wing.toml", "--id", "wing-1", "--store-dir", storeDir)
	if err != nil {
		t.Fatalf("store save: %v", err)
	}
	if !strings.Contains(status, "Saved wing-1") {
		t.Errorf("store save status:\n%s", status)
	}

	out, err := run("store", "list")
	if err != nil {
		t.Fatalf("store list: %v", err)
	}
	if !strings.Contains(out, "wing-1") || !strings.Contains(out, "north wing") || !strings.Contains(out, "6x4") {
		t.Errorf("store list output:\n%s", out)
	}

	out, err = run("store", "get", "wing-1", "--format", "json")
	if err != nil {
		t.Fatalf("store get: %v", err)
	}
	if !strings.Contains(out, `"north wing"`) {
		t.Errorf("store get json:\n%s", out)
	}

	if _, err := run("store", "get", "wing-1", "-o", "exported.yaml"); err != nil {
		t.Fatalf("store get -o: %v", err)
	}
	bp, err := blueprint.Load(filepath.Join(dir, "exported.yaml"))
	if err != nil {
		t.Fatalf("load exported: %v", err)
	}
	if _, err := blueprint.Build(bp); err != nil {
		t.Errorf("exported blueprint should build: %v", err)
	}

	if _, err := run("store", "delete", "wing-1"); err != nil {
		t.Fatalf("store delete: %v", err)
	}
	_, err = run("store", "get", "wing-1")
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("get after delete error = %v, want NOT_FOUND", err)
	}
}

func TestStoreSaveRejectsInvalidBlueprint(t *testing.T) {
	dir := sandbox(t)
	writeTestFile(t, "broken.toml", "width = 4\nheight = 4\n[[rooms]]\ndrawing = \"--\"\n")

	_, err := execute(t, "", "store", "save", "broken.toml", "--store-dir", filepath.Join(dir, "bp"))
	if !errors.Is(err, errors.ErrCodeInvalidRoom) {
		t.Errorf("save broken error = %v, want INVALID_ROOM", err)
	}
}

func TestConfigCommand(t *testing.T) {
	sandbox(t)

	out, err := execute(t, "", "config")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if !strings.Contains(out, "backend: file") {
		t.Errorf("config output:\n%s", out)
	}

	t.Setenv("VILLAS_STORE_BACKEND", "memory")
	out, err = execute(t, "", "config")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if !strings.Contains(out, "backend: memory") {
		t.Errorf("env should select the memory backend:\n%s", out)
	}

	_, err = execute(t, "", "config", "--store", "cassandra")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("unknown backend error = %v, want INVALID_INPUT", err)
	}
}

func TestCacheCommands(t *testing.T) {
	dir := sandbox(t)
	cacheRoot := filepath.Join(dir, "cache", appName)

	out, err := execute(t, "", "cache", "path")
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if strings.TrimSpace(out) != cacheRoot {
		t.Errorf("cache path = %q, want %q", out, cacheRoot)
	}

	if _, err := execute(t, "", "render", "wing.toml", "-f", "txt", "-o", "-"); err != nil {
		t.Fatalf("render: %v", err)
	}
	out, err = execute(t, "", "cache", "stats")
	if err != nil {
		t.Fatalf("cache stats: %v", err)
	}
	for _, want := range []string{"plan", "artifact"} {
		if !strings.Contains(out, want) {
			t.Errorf("cache stats should list %s entries:\n%s", want, out)
		}
	}
	if _, err := execute(t, "", "cache", "prune"); err != nil {
		t.Fatalf("cache prune: %v", err)
	}
	if _, err := execute(t, "", "cache", "clear"); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	entries, err := os.ReadDir(cacheRoot)
	if err != nil {
		t.Fatalf("read cache dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("cache clear left %d entries", len(entries))
	}
}

func TestVersionAndCompletion(t *testing.T) {
	sandbox(t)

	out, err := execute(t, "", "--version")
	if err != nil {
		t.Fatalf("--version: %v", err)
	}
	if !strings.HasPrefix(out, "villas version: ") {
		t.Errorf("--version = %q", out)
	}

	out, err = execute(t, "", "completion", "bash")
	if err != nil {
		t.Fatalf("completion: %v", err)
	}
	if !strings.Contains(out, "villas") {
		t.Error("completion script should mention the command name")
	}
}
