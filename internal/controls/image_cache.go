package controls

import "sync"

// ImageCache memoizes images by URL and cache key. There is no eviction: a
// cache lives as long as the project session that owns it.
type ImageCache struct {
	loader ImageLoader

	mu     sync.Mutex
	images map[string]*FileImage

	// Stats
	hits   int
	misses int
}

// NewImageCache creates a cache whose images load through loader.
func NewImageCache(loader ImageLoader) *ImageCache {
	return &ImageCache{
		loader: loader,
		images: make(map[string]*FileImage),
	}
}

// Image returns the cached image for url, creating an unloaded one on a miss.
// The cacheKey distinguishes versions of the same URL (a file modification
// stamp, for example).
func (c *ImageCache) Image(url, cacheKey string) *FileImage {
	key := url + "#" + cacheKey

	c.mu.Lock()
	defer c.mu.Unlock()

	if img, ok := c.images[key]; ok {
		c.hits++
		return img
	}
	c.misses++
	img := NewFileImage(url, c.loader)
	c.images[key] = img
	return img
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.images)
}

// Clear drops every cached image.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.images = make(map[string]*FileImage)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *ImageCache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
