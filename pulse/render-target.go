package pulse

import (
	"fmt"
	"log/slog"

	"github.com/oliverbestmann/postfx/render"
	"github.com/oliverbestmann/webgpu/wgpu"
)

// RenderTarget implements render.RenderTarget using a color and an
// optional depth texture.
type RenderTarget struct {
	ctx  *Context
	opts render.RenderTargetOptions

	width, height int

	// textures owned by the target
	color *Texture
	depth *Texture

	// surfaces attached from outside, indexed by render.Slot
	attached [2]*Texture

	// false for wrapped targets, they can not be resized
	owned bool
}

var _ render.RenderTarget = &RenderTarget{}

// NewRenderTarget allocates the textures of a new target. On error the
// target is returned anyway, without textures, so it can still be resized
// and released by its owner.
func NewRenderTarget(ctx *Context, opts render.RenderTargetOptions) (*RenderTarget, error) {
	t := &RenderTarget{
		ctx:    ctx,
		opts:   opts,
		width:  max(opts.Width, 1),
		height: max(opts.Height, 1),
		owned:  true,
	}

	if err := t.allocate(); err != nil {
		return t, fmt.Errorf("allocate render target %q: %w", opts.Label, err)
	}

	return t, nil
}

// WrapRenderTarget creates a target that renders into textures owned by
// someone else, e.g. the surface texture. The depth texture may be nil.
func WrapRenderTarget(label string, color, depth *Texture) *RenderTarget {
	return &RenderTarget{
		opts:   render.RenderTargetOptions{Label: label},
		width:  color.Width(),
		height: color.Height(),
		color:  color,
		depth:  depth,
	}
}

func (t *RenderTarget) allocate() error {
	samples := uint32(max(t.opts.Samples, 1))

	color, err := NewTexture(t.ctx, NewTextureOptions{
		Label:       t.opts.Label,
		Format:      ColorFormat(t.opts.Format),
		Width:       t.width,
		Height:      t.height,
		SampleCount: samples,
		Mipmaps:     t.opts.Mipmaps,
	})

	if err != nil {
		return err
	}

	t.color = color

	if t.opts.Depth == render.DepthNone {
		return nil
	}

	depth, err := NewTexture(t.ctx, NewTextureOptions{
		Label:       t.opts.Label + ".Depth",
		Format:      DepthFormat(t.opts.Depth),
		Width:       t.width,
		Height:      t.height,
		SampleCount: samples,
	})

	if err != nil {
		return err
	}

	t.depth = depth

	return nil
}

func (t *RenderTarget) releaseOwned() {
	if t.color != nil {
		t.color.Release()
		t.color = nil
	}

	if t.depth != nil {
		t.depth.Release()
		t.depth = nil
	}
}

func (t *RenderTarget) Label() string {
	return t.opts.Label
}

func (t *RenderTarget) Filter() render.Filter {
	return t.opts.Filter
}

func (t *RenderTarget) Width() int {
	return t.width
}

func (t *RenderTarget) Height() int {
	return t.height
}

func (t *RenderTarget) Resize(width, height int) {
	width = max(width, 1)
	height = max(height, 1)

	if width == t.width && height == t.height {
		return
	}

	if !t.owned {
		slog.Warn("Can not resize wrapped render target", slog.String("label", t.opts.Label))
		return
	}

	t.width = width
	t.height = height

	t.releaseOwned()

	if err := t.allocate(); err != nil {
		slog.Error("Failed to resize render target",
			slog.String("label", t.opts.Label),
			slog.String("err", err.Error()),
		)
	}
}

func (t *RenderTarget) Attach(slot render.Slot, surface render.Surface) {
	texture, ok := surface.(*Texture)
	if !ok || texture == nil {
		slog.Warn("Ignore surface not created by this renderer",
			slog.String("label", t.opts.Label),
			slog.Any("slot", slot),
		)

		return
	}

	t.attached[slot] = texture
}

func (t *RenderTarget) Detach(slot render.Slot) {
	t.attached[slot] = nil
}

func (t *RenderTarget) Attachment(slot render.Slot) render.Surface {
	var texture *Texture

	switch slot {
	case render.SlotColor0:
		texture = t.ColorTexture()
	case render.SlotDepthStencil:
		texture = t.DepthTexture()
	}

	// do not return a typed nil
	if texture == nil {
		return nil
	}

	return texture
}

// ColorTexture returns the texture currently bound as color attachment.
func (t *RenderTarget) ColorTexture() *Texture {
	if attached := t.attached[render.SlotColor0]; attached != nil {
		return attached
	}

	return t.color
}

// DepthTexture returns the texture currently bound as depth attachment, or nil.
func (t *RenderTarget) DepthTexture() *Texture {
	if attached := t.attached[render.SlotDepthStencil]; attached != nil {
		return attached
	}

	return t.depth
}

func (t *RenderTarget) Release() {
	t.attached = [2]*Texture{}

	if t.owned {
		t.releaseOwned()
	}
}

// ColorFormat maps a render.TextureFormat to its wgpu equivalent.
func ColorFormat(format render.TextureFormat) wgpu.TextureFormat {
	switch format {
	case render.FormatRGBA16Float:
		return wgpu.TextureFormatRGBA16Float
	default:
		return wgpu.TextureFormatRGBA8Unorm
	}
}

// DepthFormat maps a render.DepthFormat to its wgpu equivalent.
func DepthFormat(format render.DepthFormat) wgpu.TextureFormat {
	switch format {
	case render.Depth24PlusStencil8:
		return wgpu.TextureFormatDepth24PlusStencil8
	case render.Depth32Float:
		return wgpu.TextureFormatDepth32Float
	default:
		return wgpu.TextureFormatUndefined
	}
}
