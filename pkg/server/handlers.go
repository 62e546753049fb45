package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/villas/pkg/blueprint"
	"github.com/matzehuels/villas/pkg/buildinfo"
	"github.com/matzehuels/villas/pkg/errors"
	"github.com/matzehuels/villas/pkg/pipeline"
	"github.com/matzehuels/villas/pkg/plan"
	"github.com/matzehuels/villas/pkg/store"
	"github.com/matzehuels/villas/pkg/villa"
)

// cacheHeader reports whether a rendered artifact came from cache.
const cacheHeader = "X-Villas-Cache"

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"build":  buildinfo.Get(),
	})
}

// =============================================================================
// Rooms
// =============================================================================

type roomResponse struct {
	Valid   bool   `json:"valid"`
	Drawing string `json:"drawing"`
	Floors  int    `json:"floors"`
	Doors   int    `json:"doors"`
	Rows    int    `json:"rows"`
	Columns int    `json:"columns"`
}

func (s *Server) handleValidateRoom(w http.ResponseWriter, r *http.Request) {
	var spec blueprint.RoomSpec
	if err := decodeJSON(w, r, &spec); err != nil {
		s.fail(w, r, err)
		return
	}
	if spec.Drawing == "" && len(spec.Features) == 0 {
		s.fail(w, r, errors.New(errors.ErrCodeInvalidInput, "room needs a drawing or features"))
		return
	}
	room, err := spec.Room()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	box := room.Box()
	writeJSON(w, http.StatusOK, roomResponse{
		Valid:   true,
		Drawing: blueprint.Draw(room),
		Floors:  len(room.Floors()),
		Doors:   len(room.Doors()),
		Rows:    box.Rows(),
		Columns: box.Columns(),
	})
}

// =============================================================================
// Rendering
// =============================================================================

// handleRender renders a blueprint posted in the body. The body encoding is
// taken from ?input=, then the Content-Type, and defaults to JSON.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	opts, err := s.renderOptions(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	data, err := readBody(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	opts.Data = data
	if opts.Format, err = inputFormat(r); err != nil {
		s.fail(w, r, err)
		return
	}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeArtifact(w, opts.Formats[0], result.Artifacts[opts.Formats[0]], result.CacheInfo.RenderHit)
}

func (s *Server) handleRenderBlueprint(w http.ResponseWriter, r *http.Request) {
	opts, err := s.renderOptions(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	loaded, err := s.loadRecord(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	artifacts, hit, err := s.runner.RenderWithCacheInfo(r.Context(), loaded, nil, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeArtifact(w, opts.Formats[0], artifacts[opts.Formats[0]], hit)
}

type regionsResponse struct {
	Regions   []plan.Region  `json:"regions"`
	Passages  []plan.Passage `json:"passages"`
	Isolated  []string       `json:"isolated"`
	Graph     plan.Graph     `json:"graph"`
	Connected bool           `json:"connected"`
}

func (s *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	loaded, err := s.loadRecord(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	a := s.runner.Analyze(r.Context(), loaded, s.defaults)
	g := a.Graph()
	if g.Edges == nil {
		g.Edges = []plan.Edge{}
	}
	writeJSON(w, http.StatusOK, regionsResponse{
		Regions:   orEmpty(a.Regions),
		Passages:  orEmpty(a.Passages),
		Isolated:  orEmpty(a.Isolated()),
		Graph:     g,
		Connected: g.Connected(),
	})
}

type pathResponse struct {
	From  villa.Pos   `json:"from"`
	To    villa.Pos   `json:"to"`
	Steps int         `json:"steps"`
	Cells []villa.Pos `json:"cells"`
}

func (s *Server) handlePath(w http.ResponseWriter, r *http.Request) {
	from, err := villa.ParsePos(r.URL.Query().Get("from"))
	if err != nil {
		s.fail(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "from"))
		return
	}
	to, err := villa.ParsePos(r.URL.Query().Get("to"))
	if err != nil {
		s.fail(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "to"))
		return
	}
	loaded, err := s.loadRecord(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	cells, err := loaded.Plan.Path(from, to)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pathResponse{From: from, To: to, Steps: len(cells) - 1, Cells: cells})
}

// renderOptions builds pipeline options for a single format from the query.
func (s *Server) renderOptions(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := s.defaults
	opts.Data = nil

	format := q.Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	opts.Formats = []string{format}

	var err error
	if v := q.Get("cell_size"); v != "" {
		if opts.CellSize, err = strconv.Atoi(v); err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "cell_size must be an integer, got %q", v)
		}
	}
	if v := q.Get("scale"); v != "" {
		if opts.Scale, err = strconv.ParseFloat(v, 64); err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "scale must be a number, got %q", v)
		}
	}
	for name, dst := range map[string]*bool{
		"regions":  &opts.Regions,
		"detailed": &opts.Detailed,
		"frame":    &opts.Frame,
		"refresh":  &opts.Refresh,
	} {
		if v := q.Get(name); v != "" {
			if *dst, err = strconv.ParseBool(v); err != nil {
				return opts, errors.New(errors.ErrCodeInvalidInput, "%s must be a boolean, got %q", name, v)
			}
		}
	}
	return opts, opts.ValidateForRender()
}

// loadRecord builds the plan of the blueprint named by the {id} URL parameter.
func (s *Server) loadRecord(r *http.Request) (*pipeline.Loaded, error) {
	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return nil, err
	}
	p, err := blueprint.Build(rec.Blueprint)
	if err != nil {
		return nil, err
	}
	name := rec.Blueprint.Name
	if name == "" {
		name = rec.Name
	}
	return pipeline.NewLoaded(name, rec.Blueprint, p)
}

func writeArtifact(w http.ResponseWriter, format string, data []byte, hit bool) {
	w.Header().Set("Content-Type", pipeline.ContentTypes[format])
	if hit {
		w.Header().Set(cacheHeader, "hit")
	} else {
		w.Header().Set(cacheHeader, "miss")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// =============================================================================
// Blueprints
// =============================================================================

type blueprintRequest struct {
	Name      string               `json:"name"`
	Blueprint *blueprint.Blueprint `json:"blueprint"`
}

type recordSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Rooms     int       `json:"rooms"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Server) handleListBlueprints(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]recordSummary, len(records))
	for i, rec := range records {
		out[i] = recordSummary{
			ID:        rec.ID,
			Name:      rec.Name,
			Width:     rec.Blueprint.Width,
			Height:    rec.Blueprint.Height,
			Rooms:     len(rec.Blueprint.Rooms),
			CreatedAt: rec.CreatedAt,
			UpdatedAt: rec.UpdatedAt,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateBlueprint(w http.ResponseWriter, r *http.Request) {
	rec, err := recordFromRequest(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.store.Save(r.Context(), rec); err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/blueprints/"+rec.ID)
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleGetBlueprint(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handlePutBlueprint creates or replaces the blueprint with the URL's ID.
func (s *Server) handlePutBlueprint(w http.ResponseWriter, r *http.Request) {
	rec, err := recordFromRequest(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	rec.ID = chi.URLParam(r, "id")
	if err := s.store.Save(r.Context(), rec); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteBlueprint(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// recordFromRequest decodes a blueprint request and checks that it builds.
func recordFromRequest(w http.ResponseWriter, r *http.Request) (*store.Record, error) {
	var req blueprintRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return nil, err
	}
	if req.Blueprint == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "blueprint is required")
	}
	if _, err := blueprint.Build(req.Blueprint); err != nil {
		return nil, err
	}
	return &store.Record{Name: req.Name, Blueprint: req.Blueprint}, nil
}

// =============================================================================
// Helpers
// =============================================================================

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read body")
	}
	if len(data) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "request body is empty")
	}
	return data, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	data, err := readBody(w, r)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request")
	}
	return nil
}

// inputFormat picks the blueprint encoding of a request body.
func inputFormat(r *http.Request) (blueprint.Format, error) {
	if v := r.URL.Query().Get("input"); v != "" {
		return blueprint.ParseFormat(v)
	}
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return blueprint.FormatJSON, nil
	}
	switch mediaType {
	case "application/toml", "text/toml", "application/x-toml":
		return blueprint.FormatTOML, nil
	case "application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml":
		return blueprint.FormatYAML, nil
	default:
		return blueprint.FormatJSON, nil
	}
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
