package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/villas/pkg/blueprint"
	"github.com/matzehuels/villas/pkg/cache"
	"github.com/matzehuels/villas/pkg/errors"
)

func readTestdata(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "blueprint", "testdata", name))
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func quietRunner(c cache.Cache) *Runner {
	return NewRunner(c, nil, log.New(&bytes.Buffer{}))
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"txt", false},
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"dot", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s, want %s", tt.format, errors.GetCode(err), errors.ErrCodeInvalidFormat)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "txt"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateCellSize(t *testing.T) {
	tests := []struct {
		size    int
		wantErr bool
	}{
		{4, false},
		{24, false},
		{128, false},
		{3, true},
		{129, true},
		{-1, true},
	}

	for _, tt := range tests {
		err := ValidateCellSize(tt.size)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateCellSize(%d) error = %v, wantErr %v", tt.size, err, tt.wantErr)
		}
	}
}

func TestValidateScale(t *testing.T) {
	tests := []struct {
		scale   float64
		wantErr bool
	}{
		{0.5, false},
		{2, false},
		{8, false},
		{0.4, true},
		{8.5, true},
	}

	for _, tt := range tests {
		err := ValidateScale(tt.scale)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateScale(%g) error = %v, wantErr %v", tt.scale, err, tt.wantErr)
		}
	}
}

func TestOptionsValidateAndSetDefaults(t *testing.T) {
	opts := Options{Source: "wing.toml", Data: []byte("x")}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}

	if opts.Format != blueprint.FormatTOML {
		t.Errorf("Format = %q, want toml", opts.Format)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats = %v, want [svg]", opts.Formats)
	}
	if opts.CellSize != DefaultCellSize {
		t.Errorf("CellSize = %d, want %d", opts.CellSize, DefaultCellSize)
	}
	if opts.Scale != DefaultScale {
		t.Errorf("Scale = %g, want %g", opts.Scale, DefaultScale)
	}

	// Idempotent
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("second call error = %v", err)
	}
}

func TestOptionsValidateForLoad(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		want    blueprint.Format
		wantErr bool
	}{
		{"from yaml source", Options{Source: "plans/wing.yml", Data: []byte("x")}, blueprint.FormatYAML, false},
		{"from json source", Options{Source: "wing.json", Data: []byte("x")}, blueprint.FormatJSON, false},
		{"explicit format wins", Options{Source: "wing.txt", Format: blueprint.FormatTOML, Data: []byte("x")}, blueprint.FormatTOML, false},
		{"no data", Options{Source: "wing.toml"}, "", true},
		{"no source no format", Options{Data: []byte("x")}, "", true},
		{"unknown extension", Options{Source: "wing.ini", Data: []byte("x")}, "", true},
		{"unknown format", Options{Format: "ini", Data: []byte("x")}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateForLoad()
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateForLoad() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && tt.opts.Format != tt.want {
				t.Errorf("Format = %q, want %q", tt.opts.Format, tt.want)
			}
		})
	}
}

func TestOptionsValidateForRender(t *testing.T) {
	opts := Options{Formats: []string{"svg"}, CellSize: 2}
	if err := opts.ValidateForRender(); err == nil {
		t.Error("expected cell size error")
	}

	opts = Options{Formats: []string{"gif"}}
	if err := opts.ValidateForRender(); err == nil {
		t.Error("expected format error")
	}

	opts = Options{Scale: 20}
	if err := opts.ValidateForRender(); err == nil {
		t.Error("expected scale error")
	}
}

func TestOptionsName(t *testing.T) {
	opts := Options{Source: "/tmp/plans/east-wing.toml"}
	if got := opts.Name(&blueprint.Blueprint{Name: "north wing"}); got != "north wing" {
		t.Errorf("Name() = %q, want blueprint name", got)
	}
	if got := opts.Name(&blueprint.Blueprint{}); got != "east-wing" {
		t.Errorf("Name() = %q, want east-wing", got)
	}
	if got := (&Options{}).Name(nil); got != "" {
		t.Errorf("Name() = %q, want empty", got)
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	opts := Options{CellSize: 16, Scale: 3, Regions: true, Detailed: true, Frame: true}

	tests := []struct {
		format string
		want   cache.ArtifactKeyOpts
	}{
		{FormatText, cache.ArtifactKeyOpts{Format: FormatText, Frame: true}},
		{FormatSVG, cache.ArtifactKeyOpts{Format: FormatSVG, CellSize: 16, Regions: true}},
		{FormatPDF, cache.ArtifactKeyOpts{Format: FormatPDF, CellSize: 16, Regions: true}},
		{FormatPNG, cache.ArtifactKeyOpts{Format: FormatPNG, CellSize: 16, Regions: true, Scale: 3}},
		{FormatJSON, cache.ArtifactKeyOpts{Format: FormatJSON}},
		{FormatDOT, cache.ArtifactKeyOpts{Format: FormatDOT, Detailed: true}},
	}

	for _, tt := range tests {
		if got := opts.ArtifactKeyOpts(tt.format); got != tt.want {
			t.Errorf("ArtifactKeyOpts(%q) = %+v, want %+v", tt.format, got, tt.want)
		}
	}
}

func TestRunnerExecute(t *testing.T) {
	r := quietRunner(nil)
	res, err := r.Execute(context.Background(), Options{
		Source:  "wing.toml",
		Data:    readTestdata(t, "wing.toml"),
		Formats: []string{FormatText, FormatSVG, FormatJSON, FormatDOT},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if res.Stats.RoomCount != 1 {
		t.Errorf("RoomCount = %d, want 1", res.Stats.RoomCount)
	}
	if res.Stats.RegionCount != 1 {
		t.Errorf("RegionCount = %d, want 1", res.Stats.RegionCount)
	}
	if res.Hash == "" {
		t.Error("Hash should be set")
	}
	if got := string(res.Artifacts[FormatText]); got != "      \n D--- \n ---- \n  x   \n" {
		t.Errorf("txt artifact = %q", got)
	}
	if !strings.HasPrefix(string(res.Artifacts[FormatSVG]), "<svg") {
		t.Errorf("svg artifact does not start with <svg")
	}
	if !strings.Contains(string(res.Artifacts[FormatJSON]), `"name": "north wing"`) {
		t.Errorf("json artifact missing name: %s", res.Artifacts[FormatJSON])
	}
	if !strings.HasPrefix(string(res.Artifacts[FormatDOT]), "graph G {") {
		t.Errorf("dot artifact = %q", res.Artifacts[FormatDOT])
	}
	if res.CacheInfo.AnalyzeHit || res.CacheInfo.RenderHit {
		t.Errorf("null cache should never hit: %+v", res.CacheInfo)
	}
}

func TestRunnerExecuteInvalid(t *testing.T) {
	r := quietRunner(nil)

	_, err := r.Execute(context.Background(), Options{Source: "bad.toml", Data: []byte("width = 'wide'")})
	if err == nil {
		t.Fatal("expected decode error")
	}

	bad := "width = 4\nheight = 4\n[[rooms]]\nat = [0, 0]\ndrawing = '''\n---\n-D-\n---\n'''\n"
	_, err = r.Execute(context.Background(), Options{Source: "bad.toml", Data: []byte(bad)})
	if err == nil {
		t.Fatal("expected build error for interior door")
	}
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("code = %s, want %s", errors.GetCode(err), errors.ErrCodeInvalidInput)
	}
}

func TestRunnerCaching(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := quietRunner(fc)
	defer r.Close()

	ctx := context.Background()
	opts := Options{Source: "wing.toml", Data: readTestdata(t, "wing.toml"), Formats: []string{FormatText, FormatJSON}}

	first, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("first Execute() error = %v", err)
	}
	if first.CacheInfo.AnalyzeHit || first.CacheInfo.RenderHit {
		t.Errorf("first run should miss: %+v", first.CacheInfo)
	}

	second, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("second Execute() error = %v", err)
	}
	if !second.CacheInfo.AnalyzeHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run should hit: %+v", second.CacheInfo)
	}
	if !bytes.Equal(first.Artifacts[FormatJSON], second.Artifacts[FormatJSON]) {
		t.Error("cached artifact differs from rendered artifact")
	}
	if len(second.Analysis.Regions) != len(first.Analysis.Regions) {
		t.Errorf("cached analysis has %d regions, want %d", len(second.Analysis.Regions), len(first.Analysis.Regions))
	}
	if got, want := second.Analysis.RegionAt(first.Analysis.Regions[0].Cells[0]), first.Analysis.Regions[0].ID; got != want {
		t.Errorf("cached RegionAt() = %q, want %q", got, want)
	}

	// A new format renders only what is missing.
	opts.Formats = []string{FormatText, FormatDOT}
	third, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("third Execute() error = %v", err)
	}
	if !third.CacheInfo.AnalyzeHit {
		t.Error("analysis should still be cached")
	}
	if third.CacheInfo.RenderHit {
		t.Error("render should miss when a format is new")
	}

	// Refresh bypasses reads.
	opts.Refresh = true
	fourth, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("refresh Execute() error = %v", err)
	}
	if fourth.CacheInfo.AnalyzeHit || fourth.CacheInfo.RenderHit {
		t.Errorf("refresh should bypass cache: %+v", fourth.CacheInfo)
	}
}

func TestRunnerHashIgnoresEncoding(t *testing.T) {
	r := quietRunner(nil)
	ctx := context.Background()

	var hashes []string
	for _, name := range []string{"wing.toml", "wing.yaml", "wing.json"} {
		loaded, err := r.Load(ctx, Options{Source: name, Data: readTestdata(t, name)})
		if err != nil {
			t.Fatalf("Load(%s) error = %v", name, err)
		}
		hashes = append(hashes, loaded.Hash)
	}

	for i := 1; i < len(hashes); i++ {
		if hashes[i] != hashes[0] {
			t.Errorf("hash %d = %s, want %s", i, hashes[i], hashes[0])
		}
	}
}

func TestRunnerRenderNilAnalysis(t *testing.T) {
	r := quietRunner(nil)
	ctx := context.Background()

	loaded, err := r.Load(ctx, Options{Source: "wing.yaml", Data: readTestdata(t, "wing.yaml")})
	if err != nil {
		t.Fatal(err)
	}
	artifacts, err := r.Render(ctx, loaded, nil, Options{Formats: []string{FormatJSON}})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(string(artifacts[FormatJSON]), `"regions"`) {
		t.Errorf("json artifact missing regions: %s", artifacts[FormatJSON])
	}
}

func TestRenderFormatUnsupported(t *testing.T) {
	bp, err := blueprint.Decode(readTestdata(t, "wing.toml"), blueprint.FormatTOML)
	if err != nil {
		t.Fatal(err)
	}
	p, err := blueprint.Build(bp)
	if err != nil {
		t.Fatal(err)
	}

	_, err = RenderFormat(context.Background(), "wing", p, p.Analyze(), "gif", Options{})
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("RenderFormat(gif) error = %v, want INVALID_FORMAT", err)
	}
}
