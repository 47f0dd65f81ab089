package frame

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"sync"
)

// FrameCache provides thread-safe caching of decoded frames to avoid
// redundant disk reads and luminance conversions.
//
// Frames are keyed by the exact file path used to load them. Different paths
// to the same file (relative vs absolute) produce separate cache entries.
// FrameCache is safe for concurrent use by multiple goroutines.
//
// Cached frames remain in memory until explicitly removed via Evict() or
// Clear(). A multi-temporal run typically keeps only the reference frame
// cached and evicts each comparison frame once its pairing is done.
type FrameCache struct {
	mu     sync.RWMutex
	frames map[string]*cacheEntry
}

type cacheEntry struct {
	frame  *Frame
	format string
	depth  string
}

// NewFrameCache creates and initializes a new empty frame cache.
func NewFrameCache() *FrameCache {
	return &FrameCache{
		frames: make(map[string]*cacheEntry),
	}
}

// LoadFrame retrieves a frame from the cache or decodes it from disk.
//
// Supported formats are PNG, JPEG, and GIF; the decoded image is reduced to a
// float64 luminance grid (see FromImage). Returns an error if the file cannot
// be opened or is not a valid image.
func (c *FrameCache) LoadFrame(path string) (*Frame, error) {
	entry, err := c.load(path)
	if err != nil {
		return nil, err
	}
	return entry.frame, nil
}

func (c *FrameCache) load(path string) (*cacheEntry, error) {
	c.mu.RLock()
	if entry, ok := c.frames[path]; ok {
		c.mu.RUnlock()
		return entry, nil
	}
	c.mu.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open frame: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}

	entry := &cacheEntry{
		frame:  FromImage(img),
		format: format,
		depth:  colorDepth(img),
	}

	c.mu.Lock()
	c.frames[path] = entry
	c.mu.Unlock()

	return entry, nil
}

// Clear removes all frames from the cache, freeing the associated memory.
func (c *FrameCache) Clear() {
	c.mu.Lock()
	c.frames = make(map[string]*cacheEntry)
	c.mu.Unlock()
}

// Evict removes a specific frame from the cache by its path.
// If the path is not in the cache, this method does nothing.
func (c *FrameCache) Evict(path string) {
	c.mu.Lock()
	delete(c.frames, path)
	c.mu.Unlock()
}

// colorDepth reports the bit depth per channel of the decoded source image.
func colorDepth(img image.Image) string {
	switch img.(type) {
	case *image.RGBA64, *image.NRGBA64, *image.Gray16:
		return "16-bit"
	default:
		return "8-bit"
	}
}

// FrameInfo contains metadata and summary statistics for one frame file.
type FrameInfo struct {
	// Width is the frame width in pixels.
	Width int `json:"width"`

	// Height is the frame height in pixels.
	Height int `json:"height"`

	// Format is the decoded image format: "png", "jpeg", or "gif".
	// Detection is based on file contents, not extension.
	Format string `json:"format"`

	// ColorDepth indicates the bit depth per channel of the source:
	// "8-bit" or "16-bit".
	ColorDepth string `json:"color_depth"`

	// FileSizeBytes is the size of the frame file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`

	// Stats holds min/max/mean/stddev over the luminance grid. Useful for
	// judging whether a frame is a plausible exposure before running a
	// differential pass.
	Stats Stats `json:"stats"`
}

// LoadFrameInfo loads a frame (through the cache) and returns its metadata
// and summary statistics.
func LoadFrameInfo(cache *FrameCache, path string) (*FrameInfo, error) {
	entry, err := cache.load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	return &FrameInfo{
		Width:         entry.frame.Width(),
		Height:        entry.frame.Height(),
		Format:        entry.format,
		ColorDepth:    entry.depth,
		FileSizeBytes: stat.Size(),
		Stats:         entry.frame.Stats(),
	}, nil
}
