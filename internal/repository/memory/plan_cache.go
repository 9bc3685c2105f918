package memory

import (
	"strings"
	"time"

	"pazuzu-registry/internal/entity"

	"github.com/patrickmn/go-cache"
)

// PlanCache keeps linearized build plans keyed by the requested root names.
// Each plan remembers the store revision it was computed at and is only
// served while the store is still at that revision, so a write committed by
// any process invalidates it. Flush just drops entries early.
type PlanCache struct {
	cache *cache.Cache
}

type cachedPlan struct {
	revision int64
	plan     []*entity.Feature
}

// NewPlanCache creates a cache whose entries expire after ttl and are purged
// every 2*ttl.
func NewPlanCache(ttl time.Duration) *PlanCache {
	return &PlanCache{
		cache: cache.New(ttl, 2*ttl),
	}
}

// PlanKey normalizes root names: lower-cased and deduplicated, keeping the
// first occurrence since root order shapes the plan.
func PlanKey(names []string) string {
	set := make(map[string]struct{}, len(names))
	keys := make([]string, 0, len(names))
	for _, n := range names {
		k := entity.NameKey(strings.TrimSpace(n))
		if k == "" {
			continue
		}
		if _, dup := set[k]; dup {
			continue
		}
		set[k] = struct{}{}
		keys = append(keys, k)
	}
	return strings.Join(keys, "\x00")
}

// Save stores plan as computed at revision.
func (c *PlanCache) Save(key string, revision int64, plan []*entity.Feature) {
	c.cache.Set(key, cachedPlan{revision: revision, plan: plan}, cache.DefaultExpiration)
}

// Get returns the plan stored under key if it was computed at revision.
// An entry from another revision is dropped.
func (c *PlanCache) Get(key string, revision int64) ([]*entity.Feature, bool) {
	x, found := c.cache.Get(key)
	if !found {
		return nil, false
	}
	entry := x.(cachedPlan)
	if entry.revision != revision {
		c.cache.Delete(key)
		return nil, false
	}
	return entry.plan, true
}

func (c *PlanCache) Flush() {
	c.cache.Flush()
}

func (c *PlanCache) ItemCount() int {
	return c.cache.ItemCount()
}
