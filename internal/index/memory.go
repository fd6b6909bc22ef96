package index

import (
	"strings"
	"sync"
	"time"

	"github.com/MrSnakeDoc/launchpad/internal/domain"
)

// MemoryIndex is the catalog snapshot served by the web API. It holds only
// listed programs and is rebuilt wholesale on every reload.
type MemoryIndex struct {
	mu         sync.RWMutex
	programs   map[string]*domain.Program // ID -> Program
	ordered    []*domain.Program          // by name
	lastReload time.Time                  // when the snapshot was taken
}

// NewMemoryIndex creates a new memory index
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		programs: make(map[string]*domain.Program),
	}
}

// Replace swaps in a new snapshot taken at the given time.
func (idx *MemoryIndex) Replace(programs []*domain.Program, at time.Time) {
	byID := make(map[string]*domain.Program, len(programs))
	ordered := make([]*domain.Program, 0, len(programs))
	for _, p := range programs {
		if p == nil || p.ID == "" {
			continue
		}
		if _, dup := byID[p.ID]; dup {
			continue
		}
		byID[p.ID] = p
		ordered = append(ordered, p)
	}
	domain.SortPrograms(ordered, domain.SortName)

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.programs = byID
	idx.ordered = ordered
	idx.lastReload = at
}

// Get retrieves a program by ID. Dashes are optional, as in database URLs.
func (idx *MemoryIndex) Get(id string) (*domain.Program, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if p, ok := idx.programs[id]; ok {
		return p, true
	}
	want := strings.ReplaceAll(id, "-", "")
	for key, p := range idx.programs {
		if strings.ReplaceAll(key, "-", "") == want {
			return p, true
		}
	}
	return nil, false
}

// All returns every program, ordered by name.
func (idx *MemoryIndex) All() []*domain.Program {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make([]*domain.Program, len(idx.ordered))
	copy(out, idx.ordered)
	return out
}

// Query filters and sorts the snapshot.
func (idx *MemoryIndex) Query(q domain.Query) []*domain.Program {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return domain.FilterPrograms(idx.ordered, q)
}

// Lite returns the picker view of every program.
func (idx *MemoryIndex) Lite() []domain.Lite {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make([]domain.Lite, 0, len(idx.ordered))
	for _, p := range idx.ordered {
		out = append(out, p.Lite())
	}
	return out
}

// Facets returns the distinct categories and stages in the snapshot.
func (idx *MemoryIndex) Facets() (categories, stages []string) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return domain.Facets(idx.ordered)
}

// Count returns the number of programs in the index
func (idx *MemoryIndex) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return len(idx.programs)
}

// GetLastReload returns when the current snapshot was taken
func (idx *MemoryIndex) GetLastReload() time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.lastReload
}

// Loaded reports whether any snapshot has been installed, even an empty one.
func (idx *MemoryIndex) Loaded() bool {
	return !idx.GetLastReload().IsZero()
}
