package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// Key kinds. Every key produced by [DefaultKeyer] starts with one of these
// followed by a colon.
const (
	KindPlan     = "plan"
	KindArtifact = "artifact"
)

// ArtifactKeyOpts are the render options that distinguish artifacts of the
// same plan.
type ArtifactKeyOpts struct {
	Format   string  `json:"format"`
	CellSize int     `json:"cell_size,omitempty"`
	Scale    float64 `json:"scale,omitempty"`
	Regions  bool    `json:"regions,omitempty"`
	Detailed bool    `json:"detailed,omitempty"`
	Frame    bool    `json:"frame,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	// PlanKey is the key of a plan analysis, given the blueprint content hash.
	PlanKey(blueprintHash string) string

	// ArtifactKey is the key of a rendered artifact of a plan.
	ArtifactKey(planHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces "plan:<hash>" and "artifact:<format>:<hash>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) PlanKey(blueprintHash string) string {
	return KindPlan + ":" + blueprintHash
}

// ArtifactKey keeps the format readable and hashes the plan hash together
// with the remaining options.
func (DefaultKeyer) ArtifactKey(planHash string, opts ArtifactKeyOpts) string {
	data, _ := json.Marshal(struct {
		Plan string          `json:"plan"`
		Opts ArtifactKeyOpts `json:"opts"`
	}{planHash, opts})
	return KindArtifact + ":" + opts.Format + ":" + Hash(data)
}

// ScopedKeyer prefixes every key of an inner keyer, so that several
// deployments can share one Redis database.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer returns a keyer that prepends prefix to the keys of inner
// (the [DefaultKeyer] when nil). A prefix without a trailing colon gets one.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	if prefix != "" && !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) PlanKey(blueprintHash string) string {
	return k.prefix + k.inner.PlanKey(blueprintHash)
}

func (k *ScopedKeyer) ArtifactKey(planHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(planHash, opts)
}

var (
	_ Keyer = DefaultKeyer{}
	_ Keyer = (*ScopedKeyer)(nil)
)

// KindOf returns the kind of a key ("plan", "artifact"), ignoring any scope
// prefix. Keys of unknown shape are "other".
func KindOf(key string) string {
	for _, part := range strings.Split(key, ":") {
		if part == KindPlan || part == KindArtifact {
			return part
		}
	}
	return "other"
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
