package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/villas/pkg/blueprint"
	"github.com/matzehuels/villas/pkg/cache"
	"github.com/matzehuels/villas/pkg/errors"
	"github.com/matzehuels/villas/pkg/observability"
	"github.com/matzehuels/villas/pkg/plan"
)

// Runner executes pipeline stages against a cache. It keeps no per-run
// state, so one Runner serves concurrent requests.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides the lifetime of cached entries. Zero uses
	// cache.TTLPlan for analyses and cache.TTLArtifact for artifacts.
	TTL time.Duration
}

// NewRunner returns a Runner. A nil cache disables caching, a nil keyer uses
// cache.DefaultKeyer and a nil logger uses log.Default.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	r := &Runner{Cache: c, Keyer: keyer, Logger: logger}
	if r.Cache == nil {
		r.Cache = cache.NewNullCache()
	}
	if r.Keyer == nil {
		r.Keyer = cache.NewDefaultKeyer()
	}
	if r.Logger == nil {
		r.Logger = log.Default()
	}
	return r
}

// Execute loads, analyzes and renders the blueprint in opts.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	res := &Result{}
	st := &res.Stats

	t := time.Now()
	loaded, err := r.Load(ctx, opts)
	if err != nil {
		return nil, err
	}
	res.Loaded = loaded
	st.LoadTime, st.RoomCount = time.Since(t), len(loaded.Plan.Rooms())
	r.Logger.Debug("loaded blueprint", "source", opts.Source, "rooms", st.RoomCount, "duration", st.LoadTime)

	t = time.Now()
	res.Analysis, res.CacheInfo.AnalyzeHit = r.AnalyzeWithCacheInfo(ctx, loaded, opts)
	st.AnalyzeTime = time.Since(t)
	st.RegionCount, st.PassageCount = len(res.Analysis.Regions), len(res.Analysis.Passages)
	r.Logger.Debug("analyzed plan", "regions", st.RegionCount, "passages", st.PassageCount,
		"cached", res.CacheInfo.AnalyzeHit, "duration", st.AnalyzeTime)

	t = time.Now()
	res.Artifacts, res.CacheInfo.RenderHit, err = r.RenderWithCacheInfo(ctx, loaded, res.Analysis, opts)
	if err != nil {
		return nil, err
	}
	st.RenderTime = time.Since(t)
	r.Logger.Debug("rendered artifacts", "formats", opts.Formats, "cached", res.CacheInfo.RenderHit, "duration", st.RenderTime)

	return res, nil
}

// Load decodes the blueprint in opts.Data and builds its plan.
func (r *Runner) Load(ctx context.Context, opts Options) (*Loaded, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, err
	}

	start := time.Now()
	observability.Pipeline().OnLoadStart(ctx, opts.Source)

	loaded, err := load(opts)
	rooms := 0
	if loaded != nil {
		rooms = len(loaded.Plan.Rooms())
	}
	observability.Pipeline().OnLoadComplete(ctx, opts.Source, rooms, time.Since(start), err)
	return loaded, err
}

func load(opts Options) (*Loaded, error) {
	bp, err := blueprint.Decode(opts.Data, opts.Format)
	if err != nil {
		return nil, err
	}
	p, err := blueprint.Build(bp)
	if err != nil {
		return nil, err
	}
	return NewLoaded(opts.Name(bp), bp, p)
}

// NewLoaded wraps an already built plan and computes its content hash.
func NewLoaded(name string, bp *blueprint.Blueprint, p *plan.Plan) (*Loaded, error) {
	canonical, err := json.Marshal(blueprint.FromPlan(name, p))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "hash plan")
	}
	return &Loaded{Blueprint: bp, Plan: p, Hash: cache.Hash(canonical)}, nil
}

// AnalyzeWithCacheInfo analyzes the plan, reusing a cached analysis when one
// exists for the same content hash. Cache failures degrade to recomputation.
func (r *Runner) AnalyzeWithCacheInfo(ctx context.Context, loaded *Loaded, opts Options) (*plan.Analysis, bool) {
	key := r.Keyer.PlanKey(loaded.Hash)

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var a plan.Analysis
			if err := json.Unmarshal(data, &a); err == nil {
				observability.Cache().OnCacheHit(ctx, cache.KindPlan)
				return &a, true
			}
		} else if err != nil {
			r.Logger.Warn("cache read failed", "key", key, "error", err)
		}
		observability.Cache().OnCacheMiss(ctx, cache.KindPlan)
	}

	start := time.Now()
	b := loaded.Plan.Bounds()
	observability.Pipeline().OnAnalyzeStart(ctx, b.Rows()*b.Columns())
	a := loaded.Plan.Analyze()
	observability.Pipeline().OnAnalyzeComplete(ctx, len(a.Regions), time.Since(start), nil)

	if data, err := json.Marshal(a); err == nil {
		r.set(ctx, key, cache.KindPlan, data, r.ttl(cache.TTLPlan))
	}
	return a, false
}

// Analyze is AnalyzeWithCacheInfo without the hit flag.
func (r *Runner) Analyze(ctx context.Context, loaded *Loaded, opts Options) *plan.Analysis {
	a, _ := r.AnalyzeWithCacheInfo(ctx, loaded, opts)
	return a
}

// RenderWithCacheInfo generates artifacts with per-format caching. Only
// formats missing from the cache are rendered. The returned flag is true when
// every artifact came from cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, loaded *Loaded, a *plan.Analysis, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	if a == nil {
		a = r.Analyze(ctx, loaded, opts)
	}

	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)

	name := opts.Name(loaded.Blueprint)
	artifacts := make(map[string][]byte, len(opts.Formats))
	allCached := true
	var renderErr error

	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(loaded.Hash, opts.ArtifactKeyOpts(format))
		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, cache.KindArtifact)
				artifacts[format] = data
				continue
			}
			observability.Cache().OnCacheMiss(ctx, cache.KindArtifact)
		}
		allCached = false

		data, err := RenderFormat(ctx, name, loaded.Plan, a, format, opts)
		if err != nil {
			renderErr = err
			break
		}
		artifacts[format] = data
		r.set(ctx, key, cache.KindArtifact, data, r.ttl(cache.TTLArtifact))
	}

	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), renderErr)
	if renderErr != nil {
		return nil, false, renderErr
	}
	return artifacts, allCached, nil
}

// Render is RenderWithCacheInfo without the hit flag.
func (r *Runner) Render(ctx context.Context, loaded *Loaded, a *plan.Analysis, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, loaded, a, opts)
	return artifacts, err
}

// Close closes the runner's cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) set(ctx context.Context, key, kind string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, kind, len(data))
}

func (r *Runner) ttl(def time.Duration) time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return def
}
