package ledger

import "sync"

type cacheKey struct {
	source   string
	fileName string
}

// Cache maps (source, file_name) to a ledger record id.
type Cache struct {
	mu  sync.Mutex
	ids map[cacheKey]int64
}

func NewCache() *Cache {
	return &Cache{ids: make(map[cacheKey]int64)}
}

func (c *Cache) Get(source, fileName string) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.ids[cacheKey{source, fileName}]
	return id, ok
}

func (c *Cache) Put(source, fileName string, id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids[cacheKey{source, fileName}] = id
}

// Clear forgets every cached id.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.ids)
}
