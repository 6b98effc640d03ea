package fx

import (
	"github.com/oliverbestmann/postfx/render"
)

type SceneBufferOptions struct {
	HDR bool

	// Render with 4 samples per pixel and resolve into the output.
	MSAA bool
}

// SceneBuffer renders the color and depth of the scene.
type SceneBuffer struct {
	BufferState

	factory render.TargetFactory
	format  render.TextureFormat

	target     render.RenderTarget
	msaaTarget render.RenderTarget

	// power of two copy of the opaque pass, allocated on first use
	transmission render.RenderTarget
}

func NewSceneBuffer(factory render.TargetFactory, width, height int, opts SceneBufferOptions) *SceneBuffer {
	format := render.FormatRGBA8Unorm
	if opts.HDR {
		format = render.FormatRGBA16Float
	}

	b := &SceneBuffer{
		BufferState: BufferState{AutoUpdate: true},
		factory:     factory,
		format:      format,
	}

	b.target = factory.NewRenderTarget(render.RenderTargetOptions{
		Label:  "SceneBuffer",
		Width:  width,
		Height: height,
		Format: format,
		Depth:  render.Depth24PlusStencil8,
	})

	if opts.MSAA {
		b.msaaTarget = factory.NewRenderTarget(render.RenderTargetOptions{
			Label:   "SceneBuffer.MSAA",
			Width:   width,
			Height:  height,
			Format:  format,
			Depth:   render.Depth24PlusStencil8,
			Samples: 4,
		})
	}

	return b
}

func (b *SceneBuffer) Render(r render.Renderer, c *Composer, scene render.Scene, camera *render.Camera) {
	if !b.NeedRender() {
		return
	}

	drawTarget := b.target
	if b.msaaTarget != nil {
		drawTarget = b.msaaTarget
	}

	r.SetRenderTarget(drawTarget)
	r.SetClearColor(c.frameClearColor)
	r.Clear(true, true, true)

	b.RenderScene(r, c, scene, camera)

	if b.msaaTarget != nil {
		r.Blit(b.msaaTarget, b.target, true, true, true)
	}
}

// RenderScene draws the default and the overlay layer of the scene into
// the current render target. The target is not cleared.
func (b *SceneBuffer) RenderScene(r render.Renderer, c *Composer, scene render.Scene, camera *render.Camera) {
	states := scene.RenderStates(camera)
	queue := scene.RenderQueue(camera)

	b.renderLayer(r, states, queue.Layer(render.LayerDefault))

	overlay := queue.Layer(render.LayerOverlay)
	if overlay == nil || len(overlay.Opaque)+len(overlay.Transparent) == 0 {
		return
	}

	// the overlay is drawn on top of everything else
	r.Clear(false, true, true)
	b.renderLayer(r, states, overlay)
}

func (b *SceneBuffer) renderLayer(r render.Renderer, states *render.RenderStates, layer *render.RenderLayer) {
	if layer == nil {
		return
	}

	r.RenderList(layer.Opaque, states, nil)

	if len(layer.Transparent) == 0 {
		return
	}

	if usesTransmission(layer.Transparent) {
		states.Transmission = b.copyTransmission(r)
		defer func() { states.Transmission = nil }()
	}

	r.RenderList(layer.Transparent, states, nil)
}

// copyTransmission copies the current render target into a mipmapped texture
// that transmissive materials sample from.
func (b *SceneBuffer) copyTransmission(r render.Renderer) render.RenderTarget {
	source := r.RenderTarget()

	if b.msaaTarget != nil && source == b.msaaTarget {
		// multisample targets can not be sampled, resolve first
		r.Blit(b.msaaTarget, b.target, true, false, false)
		source = b.target
	}

	width := nextPowerOfTwo(source.Width())
	height := nextPowerOfTwo(source.Height())

	switch {
	case b.transmission == nil:
		b.transmission = b.factory.NewRenderTarget(render.RenderTargetOptions{
			Label:   "SceneBuffer.Transmission",
			Width:   width,
			Height:  height,
			Format:  b.format,
			Mipmaps: true,
		})

	case b.transmission.Width() != width || b.transmission.Height() != height:
		b.transmission.Resize(width, height)
	}

	r.Blit(source, b.transmission, true, false, false)
	r.UpdateMipmap(b.transmission)

	return b.transmission
}

// SetColorAttachment renders the scene into the given surface. Pass nil
// to go back to the buffers own surface.
func (b *SceneBuffer) SetColorAttachment(surface render.Surface) {
	b.setAttachment(render.SlotColor0, surface)
}

// SetDepthAttachment renders the scene using the given depth surface. Pass nil
// to go back to the buffers own surface.
func (b *SceneBuffer) SetDepthAttachment(surface render.Surface) {
	b.setAttachment(render.SlotDepthStencil, surface)
}

func (b *SceneBuffer) setAttachment(slot render.Slot, surface render.Surface) {
	if surface == nil {
		b.target.Detach(slot)
	} else {
		b.target.Attach(slot, surface)
	}

	b.NeedsUpdate = true
}

func (b *SceneBuffer) Output() render.RenderTarget {
	return b.target
}

// DepthSurface returns the surface that holds the depth of the last render.
func (b *SceneBuffer) DepthSurface() render.Surface {
	return b.target.Attachment(render.SlotDepthStencil)
}

func (b *SceneBuffer) Resize(width, height int) {
	b.target.Resize(width, height)

	if b.msaaTarget != nil {
		b.msaaTarget.Resize(width, height)
	}

	b.NeedsUpdate = true
}

func (b *SceneBuffer) Dispose() {
	b.target.Release()

	if b.msaaTarget != nil {
		b.msaaTarget.Release()
	}

	if b.transmission != nil {
		b.transmission.Release()
		b.transmission = nil
	}
}

func usesTransmission(list []*render.Renderable) bool {
	for _, r := range list {
		if r.Material != nil && r.Material.Transmission > 0 {
			return true
		}
	}

	return false
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}

	return p
}
