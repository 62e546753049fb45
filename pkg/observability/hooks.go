// Package observability lets the application observe the plan pipeline, the
// render cache and the API server without those packages depending on a
// logging or metrics backend.
//
// Libraries emit events through the accessors:
//
//	observability.Pipeline().OnLoadStart(ctx, source)
//	// decode and build
//	observability.Pipeline().OnLoadComplete(ctx, source, roomCount, time.Since(start), err)
//
// and the program installs receivers once at startup:
//
//	observability.Register(&logHooks{logger: logger})
//
// Until something is registered every event goes to [Noop].
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// PipelineHooks receives events from the plan pipeline.
type PipelineHooks interface {
	// OnLoadStart and OnLoadComplete bracket decoding a blueprint and
	// building its plan. source is a file path, "-" or an inline name.
	OnLoadStart(ctx context.Context, source string)
	OnLoadComplete(ctx context.Context, source string, roomCount int, duration time.Duration, err error)

	OnAnalyzeStart(ctx context.Context, cells int)
	OnAnalyzeComplete(ctx context.Context, regionCount int, duration time.Duration, err error)

	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// CacheHooks receives cache lookups and writes. kind is the key kind,
// "plan" or "artifact".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, kind string)
	OnCacheMiss(ctx context.Context, kind string)
	OnCacheSet(ctx context.Context, kind string, size int)
}

// HTTPHooks receives events from the API server. route is the matched chi
// route pattern, such as "/api/blueprints/{id}".
type HTTPHooks interface {
	// OnRequest is called before routing, so it sees the raw URL path.
	OnRequest(ctx context.Context, method, path string)
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
	// OnError is called for responses carrying an error body.
	OnError(ctx context.Context, method, route string, err error)
}

// Noop implements every hook interface and ignores all events. Embed it to
// implement only some events.
type Noop struct{}

func (Noop) OnLoadStart(context.Context, string)                               {}
func (Noop) OnLoadComplete(context.Context, string, int, time.Duration, error) {}
func (Noop) OnAnalyzeStart(context.Context, int)                               {}
func (Noop) OnAnalyzeComplete(context.Context, int, time.Duration, error)      {}
func (Noop) OnRenderStart(context.Context, []string)                           {}
func (Noop) OnRenderComplete(context.Context, []string, time.Duration, error)  {}
func (Noop) OnCacheHit(context.Context, string)                                {}
func (Noop) OnCacheMiss(context.Context, string)                               {}
func (Noop) OnCacheSet(context.Context, string, int)                           {}
func (Noop) OnRequest(context.Context, string, string)                         {}
func (Noop) OnResponse(context.Context, string, string, int, time.Duration)    {}
func (Noop) OnError(context.Context, string, string, error)                    {}

var (
	_ PipelineHooks = Noop{}
	_ CacheHooks    = Noop{}
	_ HTTPHooks     = Noop{}
)

// slot holds one registered receiver; a nil pointer means Noop.
type slot[T any] struct{ p atomic.Pointer[T] }

func (s *slot[T]) load(def T) T {
	if p := s.p.Load(); p != nil {
		return *p
	}
	return def
}

var (
	pipelineSlot slot[PipelineHooks]
	cacheSlot    slot[CacheHooks]
	httpSlot     slot[HTTPHooks]
)

// Register installs h for every hook interface it implements and reports how
// many that was. Registering nil, or a value implementing none of them, is a
// no-op.
func Register(h any) int {
	n := 0
	if p, ok := h.(PipelineHooks); ok && p != nil {
		pipelineSlot.p.Store(&p)
		n++
	}
	if c, ok := h.(CacheHooks); ok && c != nil {
		cacheSlot.p.Store(&c)
		n++
	}
	if x, ok := h.(HTTPHooks); ok && x != nil {
		httpSlot.p.Store(&x)
		n++
	}
	return n
}

// Reset restores [Noop] for all events.
func Reset() {
	pipelineSlot.p.Store(nil)
	cacheSlot.p.Store(nil)
	httpSlot.p.Store(nil)
}

// Pipeline returns the registered pipeline receiver.
func Pipeline() PipelineHooks { return pipelineSlot.load(Noop{}) }

// Cache returns the registered cache receiver.
func Cache() CacheHooks { return cacheSlot.load(Noop{}) }

// HTTP returns the registered HTTP receiver.
func HTTP() HTTPHooks { return httpSlot.load(Noop{}) }
