package fx

import (
	"log/slog"

	"github.com/oliverbestmann/postfx/render"
)

// RenderTargetCache pools color only render targets by level. A target of
// level L is ceil(size / 2^L) large. Targets must be released at the level
// they were allocated with.
type RenderTargetCache struct {
	factory render.TargetFactory
	logger  *slog.Logger

	width, height int
	hdr           bool

	// free lists indexed by level
	pool [][]render.RenderTarget
}

func NewRenderTargetCache(factory render.TargetFactory, width, height int, hdr bool) *RenderTargetCache {
	return &RenderTargetCache{
		factory: factory,
		logger:  slog.Default(),
		width:   max(width, 1),
		height:  max(height, 1),
		hdr:     hdr,
	}
}

// SetLogger replaces the logger that reports new allocations.
func (c *RenderTargetCache) SetLogger(logger *slog.Logger) {
	if logger != nil {
		c.logger = logger
	}
}

// Allocate takes a target of the given level from the pool or
// creates a new one if the pool is empty.
func (c *RenderTargetCache) Allocate(level int) render.RenderTarget {
	free := c.freeList(level)

	if n := len(*free); n > 0 {
		target := (*free)[n-1]
		(*free)[n-1] = nil
		*free = (*free)[:n-1]
		return target
	}

	width, height := c.LevelSize(level)

	c.logger.Debug("Allocate new pooled render target",
		slog.Int("level", level),
		slog.Int("width", width),
		slog.Int("height", height),
	)

	format := render.FormatRGBA8Unorm
	if c.hdr {
		format = render.FormatRGBA16Float
	}

	return c.factory.NewRenderTarget(render.RenderTargetOptions{
		Label:  "Pooled",
		Width:  width,
		Height: height,
		Format: format,
		Depth:  render.DepthNone,
		Filter: render.FilterLinear,
	})
}

// Release puts the target back into the pool.
func (c *RenderTargetCache) Release(target render.RenderTarget, level int) {
	free := c.freeList(level)
	*free = append(*free, target)
}

// Resize changes the base size and resizes all pooled targets.
func (c *RenderTargetCache) Resize(width, height int) {
	c.width = max(width, 1)
	c.height = max(height, 1)

	for level, free := range c.pool {
		width, height := c.LevelSize(level)

		for _, target := range free {
			target.Resize(width, height)
		}
	}
}

// LevelSize returns the size of targets at the given level.
func (c *RenderTargetCache) LevelSize(level int) (width, height int) {
	return levelSize(c.width, level), levelSize(c.height, level)
}

// Free returns the number of pooled targets at the given level.
func (c *RenderTargetCache) Free(level int) int {
	level = max(level, 0)

	if level >= len(c.pool) {
		return 0
	}

	return len(c.pool[level])
}

func (c *RenderTargetCache) UpdateStats(stats *Stats) {
	var count float32

	for level, free := range c.pool {
		count += float32(len(free)) / float32(int(1)<<(2*level))
	}

	stats.FBOCache = count
}

// Dispose releases all pooled targets.
func (c *RenderTargetCache) Dispose() {
	for _, free := range c.pool {
		for _, target := range free {
			target.Release()
		}
	}

	c.pool = nil
}

func (c *RenderTargetCache) freeList(level int) *[]render.RenderTarget {
	level = max(level, 0)

	for len(c.pool) <= level {
		c.pool = append(c.pool, nil)
	}

	return &c.pool[level]
}

func levelSize(size, level int) int {
	if level <= 0 {
		return max(size, 1)
	}

	div := 1 << level
	return max((size+div-1)/div, 1)
}
