package roster

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/openclaw/missionctl/internal/models"
	"gorm.io/gorm"
)

// Cache holds the set of agent ids currently present in the roster table.
// The tailers consult it to null out dangling event foreign keys before
// insert. Reads are lock-free; Invalidate swaps the set out atomically and
// the next read repopulates it. A briefly stale read only nulls the FK for a
// just-added agent, which self-corrects on the next tail pass.
type Cache struct {
	db  *gorm.DB
	ids atomic.Pointer[map[string]bool]
	mu  sync.Mutex // serializes repopulation, not reads
}

// NewCache creates an unpopulated cache over the given store.
func NewCache(db *gorm.DB) *Cache {
	return &Cache{db: db}
}

// ValidIDs returns the current valid agent id set, loading it from the
// store on first use or after an invalidation.
func (c *Cache) ValidIDs() (map[string]bool, error) {
	if ids := c.ids.Load(); ids != nil {
		return *ids, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if ids := c.ids.Load(); ids != nil {
		return *ids, nil
	}

	var agents []models.Agent
	if err := c.db.Select("id").Find(&agents).Error; err != nil {
		return nil, fmt.Errorf("roster: load agent ids: %w", err)
	}
	ids := make(map[string]bool, len(agents))
	for _, a := range agents {
		ids[a.ID] = true
	}
	c.ids.Store(&ids)
	return ids, nil
}

// Invalidate discards the cached id set. The next ValidIDs call re-fetches
// current ids, so agents added by a roster sync are recognized immediately.
func (c *Cache) Invalidate() {
	c.ids.Store(nil)
}
