package pulse

import (
	"fmt"
	"math/bits"

	"github.com/oliverbestmann/webgpu/wgpu"
)

// Texture wraps a wgpu.Texture and the views needed to render into and
// sample from it.
type Texture struct {
	texture *wgpu.Texture

	// view of all mip levels, used for sampling
	view *wgpu.TextureView

	// depth aspect only, created on first use
	depthView *wgpu.TextureView

	// single level views, created on first use
	mipViews []*wgpu.TextureView

	format      wgpu.TextureFormat
	width       int
	height      int
	sampleCount uint32
	mipLevels   uint32

	// false for textures we do not own, e.g. the surface texture
	owned bool
}

type NewTextureOptions struct {
	Label  string
	Format wgpu.TextureFormat
	Width  int
	Height int

	// Defaults to 1
	SampleCount uint32

	// Allocate a full mip chain.
	Mipmaps bool
}

func NewTexture(ctx *Context, opts NewTextureOptions) (*Texture, error) {
	opts.Width = max(opts.Width, 1)
	opts.Height = max(opts.Height, 1)
	opts.SampleCount = max(opts.SampleCount, 1)

	var mipLevels uint32 = 1
	if opts.Mipmaps && opts.SampleCount == 1 {
		mipLevels = MipLevelCount(opts.Width, opts.Height)
	}

	usage := wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding
	if !IsDepthFormat(opts.Format) {
		usage |= wgpu.TextureUsageCopySrc | wgpu.TextureUsageCopyDst
	}

	desc := &wgpu.TextureDescriptor{
		Label:         opts.Label,
		Format:        opts.Format,
		SampleCount:   opts.SampleCount,
		MipLevelCount: mipLevels,
		Dimension:     wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              uint32(opts.Width),
			Height:             uint32(opts.Height),
			DepthOrArrayLayers: 1,
		},
		Usage: usage,
	}

	texture, err := ctx.Device.CreateTexture(desc)
	if err != nil {
		return nil, fmt.Errorf("create texture %q: %w", opts.Label, err)
	}

	textureView, err := texture.CreateView(nil)
	if err != nil {
		texture.Release()
		return nil, fmt.Errorf("create view of %q: %w", opts.Label, err)
	}

	return &Texture{
		texture:     texture,
		view:        textureView,
		format:      opts.Format,
		width:       opts.Width,
		height:      opts.Height,
		sampleCount: opts.SampleCount,
		mipLevels:   mipLevels,
		owned:       true,
	}, nil
}

// WrapTexture creates a Texture from a texture owned by someone else,
// e.g. the texture of the current surface. Release only releases the view.
func WrapTexture(texture *wgpu.Texture, view *wgpu.TextureView) *Texture {
	return &Texture{
		texture:     texture,
		view:        view,
		format:      texture.GetFormat(),
		width:       int(texture.GetWidth()),
		height:      int(texture.GetHeight()),
		sampleCount: texture.GetSampleCount(),
		mipLevels:   texture.GetMipLevelCount(),
	}
}

// MipLevelCount returns the length of the full mip chain of a texture.
func MipLevelCount(width, height int) uint32 {
	return uint32(bits.Len(uint(max(width, height, 1))))
}

// IsDepthFormat reports if the format holds depth values.
func IsDepthFormat(format wgpu.TextureFormat) bool {
	switch format {
	case wgpu.TextureFormatDepth16Unorm,
		wgpu.TextureFormatDepth24Plus,
		wgpu.TextureFormatDepth24PlusStencil8,
		wgpu.TextureFormatDepth32Float,
		wgpu.TextureFormatDepth32FloatStencil8:
		return true
	default:
		return false
	}
}

// HasStencil reports if the format has a stencil aspect.
func HasStencil(format wgpu.TextureFormat) bool {
	return format == wgpu.TextureFormatDepth24PlusStencil8 ||
		format == wgpu.TextureFormatDepth32FloatStencil8
}

// Size implements render.Surface
func (t *Texture) Size() (int, int) {
	return t.width, t.height
}

func (t *Texture) Width() int {
	return t.width
}

func (t *Texture) Height() int {
	return t.height
}

func (t *Texture) Format() wgpu.TextureFormat {
	return t.format
}

func (t *Texture) SampleCount() uint32 {
	return t.sampleCount
}

func (t *Texture) MipLevels() uint32 {
	return t.mipLevels
}

func (t *Texture) ToWGPUTexture() *wgpu.Texture {
	return t.texture
}

// SampleView returns the view to bind when sampling from the texture.
// Depth textures are sampled through their depth aspect.
func (t *Texture) SampleView() (*wgpu.TextureView, error) {
	if !IsDepthFormat(t.format) {
		return t.view, nil
	}

	if t.depthView == nil {
		view, err := t.texture.CreateView(&wgpu.TextureViewDescriptor{
			Label:           "DepthOnly",
			Format:          t.format,
			Dimension:       wgpu.TextureViewDimension2D,
			BaseMipLevel:    0,
			MipLevelCount:   1,
			BaseArrayLayer:  0,
			ArrayLayerCount: 1,
			Aspect:          wgpu.TextureAspectDepthOnly,
		})

		if err != nil {
			return nil, fmt.Errorf("create depth view: %w", err)
		}

		t.depthView = view
	}

	return t.depthView, nil
}

// RenderView returns the view of the first mip level.
func (t *Texture) RenderView() (*wgpu.TextureView, error) {
	return t.MipView(0)
}

// MipView returns a view of a single mip level.
func (t *Texture) MipView(level uint32) (*wgpu.TextureView, error) {
	if t.mipLevels == 1 {
		return t.view, nil
	}

	if level >= t.mipLevels {
		return nil, fmt.Errorf("mip level %d out of range, texture has %d levels", level, t.mipLevels)
	}

	if t.mipViews == nil {
		t.mipViews = make([]*wgpu.TextureView, t.mipLevels)
	}

	if t.mipViews[level] == nil {
		view, err := t.texture.CreateView(&wgpu.TextureViewDescriptor{
			Label:           "MipLevel",
			Format:          t.format,
			Dimension:       wgpu.TextureViewDimension2D,
			BaseMipLevel:    level,
			MipLevelCount:   1,
			BaseArrayLayer:  0,
			ArrayLayerCount: 1,
			Aspect:          wgpu.TextureAspectAll,
		})

		if err != nil {
			return nil, fmt.Errorf("create view of mip level %d: %w", level, err)
		}

		t.mipViews[level] = view
	}

	return t.mipViews[level], nil
}

// MipSize returns the size of the given mip level.
func (t *Texture) MipSize(level uint32) (width, height int) {
	return max(t.width>>level, 1), max(t.height>>level, 1)
}

// Release releases all views and, if the texture is owned, the texture
// itself. The texture must not be used afterward.
func (t *Texture) Release() {
	for _, view := range t.mipViews {
		if view != nil {
			view.Release()
		}
	}

	t.mipViews = nil

	if t.depthView != nil {
		t.depthView.Release()
		t.depthView = nil
	}

	if t.view != nil {
		t.view.Release()
		t.view = nil
	}

	if t.owned && t.texture != nil {
		t.texture.Release()
		t.texture = nil
	}
}
