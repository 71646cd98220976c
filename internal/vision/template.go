package vision

import (
	"fmt"
	"image"
	"os"
	"sync"
	"time"

	// Decoders for template files.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/mj1618/botvision/internal/resolve"
)

// templateEntry holds a decoded template with the file state it was read from.
type templateEntry struct {
	img     *image.Gray
	modTime time.Time
	size    int64
}

// TemplateCache keeps decoded grayscale templates keyed by path.
// An entry is reloaded when the file's modification time or size changes.
type TemplateCache struct {
	mu      sync.Mutex
	entries map[string]templateEntry
}

// NewTemplateCache creates an empty cache.
func NewTemplateCache() *TemplateCache {
	return &TemplateCache{entries: make(map[string]templateEntry)}
}

// Load returns the grayscale template at path. Missing or undecodable files
// are reported as resolve.ErrInvalidInput.
func (c *TemplateCache) Load(path string) (*image.Gray, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w: %v", path, resolve.ErrInvalidInput, err)
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("template %s: %w: is a directory", path, resolve.ErrInvalidInput)
	}

	c.mu.Lock()
	if e, ok := c.entries[path]; ok && e.modTime.Equal(fi.ModTime()) && e.size == fi.Size() {
		img := e.img
		c.mu.Unlock()
		return img, nil
	}
	c.mu.Unlock()

	img, err := decodeFile(path)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w: %v", path, resolve.ErrInvalidInput, err)
	}

	c.mu.Lock()
	c.entries[path] = templateEntry{img: img, modTime: fi.ModTime(), size: fi.Size()}
	c.mu.Unlock()

	return img, nil
}

// size reports the number of cached templates.
func (c *TemplateCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func decodeFile(path string) (*image.Gray, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	return toGray(img), nil
}
