package expectimax

import (
	"math"

	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"

	"github.com/domino14/twenty48/board"
)

// DefaultCacheCeiling bounds the cache entry count when memory-fraction
// sizing is not in use.
const DefaultCacheCeiling = 1 << 22

// Rough per-entry budget for memory sizing: key, value, and map
// overhead.
const entrySize = 32

type cacheEntry struct {
	score float64
	depth uint8
}

// Cache memoizes chance-node results within one search. The packed
// board value is its own key. A cache belongs to exactly one solver;
// solvers never share caches, only the read-only row tables.
type Cache struct {
	table   map[board.Board]cacheEntry
	ceiling int

	lookups uint64
	hits    uint64
	stores  uint64
	clears  uint64
}

// CacheStats is a snapshot of cache activity counters.
type CacheStats struct {
	Lookups uint64
	Hits    uint64
	Stores  uint64
	Clears  uint64
	Entries int
}

func newCache(ceiling int) *Cache {
	if ceiling <= 0 {
		ceiling = DefaultCacheCeiling
	}
	return &Cache{table: make(map[board.Board]cacheEntry), ceiling: ceiling}
}

// lookup returns a stored score usable at the requested depth. An
// entry searched to a shallower depth than requested is not reusable.
func (c *Cache) lookup(b board.Board, depth int) (float64, bool) {
	c.lookups++
	entry, ok := c.table[b]
	if !ok || int(entry.depth) < depth {
		return 0, false
	}
	c.hits++
	return entry.score, true
}

func (c *Cache) store(b board.Board, depth int, score float64) {
	if depth > math.MaxUint8 {
		depth = math.MaxUint8
	}
	c.table[b] = cacheEntry{score: score, depth: uint8(depth)}
	c.stores++
	if len(c.table) > c.ceiling {
		c.table = make(map[board.Board]cacheEntry)
		c.clears++
	}
}

// Reset empties the cache and zeroes its counters.
func (c *Cache) Reset() {
	c.table = make(map[board.Board]cacheEntry)
	c.lookups, c.hits, c.stores, c.clears = 0, 0, 0, 0
}

func (c *Cache) Stats() CacheStats {
	return CacheStats{
		Lookups: c.lookups,
		Hits:    c.hits,
		Stores:  c.stores,
		Clears:  c.clears,
		Entries: len(c.table),
	}
}

// MemorySizedCeiling returns the largest power-of-two entry count that
// fits in the given fraction of system memory, never below 1<<16.
func MemorySizedCeiling(fractionOfMemory float64) int {
	totalMem := memory.TotalMemory()
	desiredNElems := fractionOfMemory * (float64(totalMem) / float64(entrySize))
	sizePowerOf2 := int(math.Log2(desiredNElems))
	if sizePowerOf2 < 16 {
		sizePowerOf2 = 16
	}
	numElems := 1 << sizePowerOf2
	log.Debug().Int("num-elems", numElems).
		Uint64("total-system-memory-bytes", totalMem).
		Msg("cache-ceiling-sized")
	return numElems
}
