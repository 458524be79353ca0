package resolver

import (
	"context"
	"sync"

	"github.com/alphadose/haxmap"
)

// cacheKey identifies one (name, version) cache slot.
type cacheKey struct {
	name    string
	version string
}

func (k cacheKey) String() string {
	return k.name + "@" + k.version
}

// inflight tracks a build in progress for a key so concurrent callers
// join the same build instead of racing (spec §5: "single-flight per
// (name, version)").
type inflight struct {
	done  chan struct{}
	table Table
	err   error
}

// CachingResolver wraps an underlying Resolver with per-(name,version)
// caching. Concrete versions are cached indefinitely; "latest" and
// "draft" are never cached and always hit the underlying resolver
// (spec §4.7). Concurrent builds of the same key are serialized so at
// most one underlying resolve runs per key; concurrent readers of an
// already-materialized entry never block each other.
type CachingResolver struct {
	underlying Resolver
	tables     *haxmap.Map[string, Table]

	mu       sync.Mutex
	inFlight map[cacheKey]*inflight
}

// NewCachingResolver wraps underlying with a single-flight, per-version
// cache.
func NewCachingResolver(underlying Resolver) *CachingResolver {
	return &CachingResolver{
		underlying: underlying,
		tables:     haxmap.New[string, Table](),
		inFlight:   make(map[cacheKey]*inflight),
	}
}

func (c *CachingResolver) ResolveTable(ctx context.Context, name, version string) (Table, error) {
	if !IsCacheable(version) {
		return c.underlying.ResolveTable(ctx, name, version)
	}

	key := cacheKey{name: name, version: version}
	if t, ok := c.tables.Get(key.String()); ok {
		return t, nil
	}

	c.mu.Lock()
	if t, ok := c.tables.Get(key.String()); ok {
		c.mu.Unlock()
		return t, nil
	}
	if fl, ok := c.inFlight[key]; ok {
		c.mu.Unlock()
		<-fl.done
		return fl.table, fl.err
	}
	fl := &inflight{done: make(chan struct{})}
	c.inFlight[key] = fl
	c.mu.Unlock()

	fl.table, fl.err = c.underlying.ResolveTable(ctx, name, version)
	if fl.err == nil {
		c.tables.Set(key.String(), fl.table)
	}

	c.mu.Lock()
	delete(c.inFlight, key)
	c.mu.Unlock()
	close(fl.done)

	return fl.table, fl.err
}

// ResolveScalar is not cached: scalar lookups are keyed by arbitrary
// attribute maps, not just (name, version), and are expected to be
// cheap point queries (spec §4.7 describes no caching requirement for
// resolve_scalar).
func (c *CachingResolver) ResolveScalar(ctx context.Context, name, version string, attrs map[string]string) (float64, error) {
	return c.underlying.ResolveScalar(ctx, name, version, attrs)
}

func (c *CachingResolver) ListVersions(ctx context.Context, name string) ([]string, error) {
	return c.underlying.ListVersions(ctx, name)
}
