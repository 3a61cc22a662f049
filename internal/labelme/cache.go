package labelme

import "sync"

// SizeCache remembers the decoded size of image files so that annotation
// files sharing an image decode it once.
//
// Entries are keyed by the cleaned path passed to imaging.Open. Different
// spellings of the same file (relative vs absolute) are separate entries.
// Embedded imageData is never cached.
//
// SizeCache is safe for concurrent use by multiple goroutines. A nil
// *SizeCache is valid and caches nothing.
type SizeCache struct {
	mu    sync.RWMutex
	sizes map[string][2]int
}

// NewSizeCache creates an empty cache.
func NewSizeCache() *SizeCache {
	return &SizeCache{sizes: make(map[string][2]int)}
}

func (c *SizeCache) get(path string) (width, height int, ok bool) {
	if c == nil {
		return 0, 0, false
	}
	c.mu.RLock()
	s, ok := c.sizes[path]
	c.mu.RUnlock()
	return s[0], s[1], ok
}

func (c *SizeCache) put(path string, width, height int) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.sizes[path] = [2]int{width, height}
	c.mu.Unlock()
}
