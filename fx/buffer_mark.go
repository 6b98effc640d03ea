package fx

import (
	"log/slog"

	"github.com/oliverbestmann/postfx/glm"
	"github.com/oliverbestmann/postfx/render"
)

type MarkKind uint8

const (
	// MarkNonDepth marks objects without depth testing, four effects per attachment.
	MarkNonDepth MarkKind = iota

	// MarkDepth marks objects depth tested against the scene, four effects per attachment.
	MarkDepth

	// MarkColor renders the color of marked objects, one effect per attachment.
	MarkColor
)

// Key returns the key NewComposer registers the buffer kind with.
func (k MarkKind) Key() string {
	switch k {
	case MarkDepth:
		return KeyMarkBuffer
	case MarkColor:
		return KeyColorMarkBuffer
	default:
		return KeyNonDepthMarkBuffer
	}
}

// ChannelSize returns the number of effects sharing one attachment.
func (k MarkKind) ChannelSize() int {
	if k == MarkColor {
		return 1
	}

	return 4
}

// MarkBuffer renders objects that opted into an effect via
// render.Renderable.Effects into the channel assigned to that effect.
type MarkBuffer struct {
	BufferState

	kind    MarkKind
	factory render.TargetFactory

	width, height int

	attach *AttachManager

	// allocated on first use
	targets []render.RenderTarget

	variants *variantCache

	// true while more channels are requested than available
	overflow bool
}

func NewMarkBuffer(factory render.TargetFactory, width, height int, kind MarkKind, maxAttachments int) *MarkBuffer {
	b := &MarkBuffer{
		BufferState: BufferState{AutoUpdate: true},
		kind:        kind,
		factory:     factory,
		width:       width,
		height:      height,
		attach:      NewAttachManager(kind.ChannelSize()),
		targets:     make([]render.RenderTarget, max(maxAttachments, 1)),
	}

	b.variants = newVariantCache(16, b.newMaterial)

	return b
}

func (b *MarkBuffer) newMaterial(key variantKey) *render.Material {
	material := render.NewMaterial(markProgram)
	material.Side = key.Side()
	material.DepthWrite = false
	material.DepthTest = b.kind == MarkDepth

	if b.kind != MarkColor {
		material.Blending = render.BlendAdditive
	}

	return material
}

func (b *MarkBuffer) Kind() MarkKind {
	return b.kind
}

func (b *MarkBuffer) Attachments() *AttachManager {
	return b.attach
}

// MaxAttachments returns the number of targets the buffer can hold.
func (b *MarkBuffer) MaxAttachments() int {
	return len(b.targets)
}

func (b *MarkBuffer) Render(r render.Renderer, c *Composer, scene render.Scene, camera *render.Camera) {
	if !b.NeedRender() {
		return
	}

	requested := b.attach.AttachCount()

	if requested > len(b.targets) {
		if !b.overflow {
			c.Logger().Error("Too many effects use mark buffer",
				slog.String("key", b.kind.Key()),
				slog.Int("requested", b.attach.Count()),
				slog.Int("capacity", len(b.targets)*b.attach.ChannelSize()),
			)
		}

		b.overflow = true
	} else {
		b.overflow = false
	}

	count := min(requested, len(b.targets))
	if count == 0 {
		return
	}

	states := scene.RenderStates(camera)
	layer := scene.RenderQueue(camera).Layer(render.LayerDefault)

	var depth render.Surface
	if b.kind == MarkDepth {
		depth = c.sceneBuffer.DepthSurface()
	}

	for idx := range count {
		target := b.target(idx)

		if b.kind == MarkDepth {
			target.Attach(render.SlotDepthStencil, depth)
		}

		// depth belongs to the scene and is never cleared
		r.SetRenderTarget(target)
		r.SetClearColor(render.ColorTransparent)
		r.Clear(true, false, false)

		if layer == nil {
			continue
		}

		info := b.attach.AttachInfo(idx)

		for channel := range info.Count {
			handle, ok := c.effectHandle(info.Keys[channel])
			if !ok {
				continue
			}

			opts := b.channelOptions(handle, channel)
			mask := info.Masks[channel]

			if mask&MaskOpaque != 0 {
				r.RenderList(layer.Opaque, states, opts)
			}

			if mask&MaskTransparent != 0 {
				r.RenderList(layer.Transparent, states, opts)
			}
		}
	}
}

func (b *MarkBuffer) channelOptions(handle render.EffectHandle, channel int) *render.RenderOptions {
	return &render.RenderOptions{
		IfRender: func(r *render.Renderable) bool {
			return r.Effects[handle] > 0
		},

		GetMaterial: func(r *render.Renderable) *render.Material {
			return b.variants.Get(variantOf(r))
		},

		BeforeRender: func(r *render.Renderable, material *render.Material) {
			weight := r.Effects[handle]

			if b.kind == MarkColor {
				color := glm.Vec4f{1, 1, 1, 1}
				if r.Material != nil {
					color = r.Material.Color.ToVec()
				}

				alpha := color[3] * weight
				material.Uniforms["mark"] = glm.Vec4f{color[0] * alpha, color[1] * alpha, color[2] * alpha, alpha}
				return
			}

			var selector glm.Vec4f
			selector[channel] = weight
			material.Uniforms["mark"] = selector
		},
	}
}

func (b *MarkBuffer) target(idx int) render.RenderTarget {
	if b.targets[idx] == nil {
		b.targets[idx] = b.factory.NewRenderTarget(render.RenderTargetOptions{
			Label:  b.kind.Key(),
			Width:  b.width,
			Height: b.height,
			Format: render.FormatRGBA8Unorm,
		})
	}

	return b.targets[idx]
}

func (b *MarkBuffer) Output() render.RenderTarget {
	return b.target(0)
}

func (b *MarkBuffer) OutputAt(attachIndex int) render.RenderTarget {
	if attachIndex < 0 || attachIndex >= len(b.targets) {
		return nil
	}

	return b.target(attachIndex)
}

func (b *MarkBuffer) Resize(width, height int) {
	b.width = width
	b.height = height

	for _, target := range b.targets {
		if target != nil {
			target.Resize(width, height)
		}
	}

	b.NeedsUpdate = true
}

func (b *MarkBuffer) Dispose() {
	for idx, target := range b.targets {
		if target != nil {
			target.Release()
			b.targets[idx] = nil
		}
	}

	b.variants.Purge()
}
