package fx

import (
	"github.com/oliverbestmann/postfx/glm"
	"github.com/oliverbestmann/postfx/render"
)

// GBuffer renders the view space normal, metalness and roughness of all
// opaque objects. The normal is octahedral encoded into the red and green
// channel, metalness and roughness go to blue and alpha.
type GBuffer struct {
	BufferState

	factory render.TargetFactory
	target  render.RenderTarget

	// holds the linear depth if the scene uses a logarithmic depth buffer
	depthTarget render.RenderTarget
	depthFixed  bool

	logDepth bool
	depthFix *render.ShaderPass

	variants *variantCache
	options  *render.RenderOptions
}

func NewGBuffer(factory render.TargetFactory, width, height int, logarithmicDepth bool) *GBuffer {
	b := &GBuffer{
		BufferState: BufferState{AutoUpdate: true},
		factory:     factory,
		logDepth:    logarithmicDepth,
		depthFix:    render.NewShaderPass(depthFixProgram),
	}

	b.depthFix.DepthWrite = true

	b.target = factory.NewRenderTarget(render.RenderTargetOptions{
		Label:  "GBuffer",
		Width:  width,
		Height: height,
		Format: render.FormatRGBA16Float,
		Depth:  render.Depth32Float,
		Filter: render.FilterNearest,
	})

	b.variants = newVariantCache(16, newGBufferMaterial)

	b.options = &render.RenderOptions{
		IfRender: func(r *render.Renderable) bool {
			return r.Material != nil
		},

		GetMaterial: func(r *render.Renderable) *render.Material {
			return b.variants.Get(variantOf(r))
		},

		BeforeRender: func(r *render.Renderable, material *render.Material) {
			var flat float32
			if r.Material.FlatShading {
				flat = 1
			}

			material.Uniforms["surface"] = glm.Vec4f{r.Material.Metalness, r.Material.Roughness, flat, 0}
		},
	}

	return b
}

func newGBufferMaterial(key variantKey) *render.Material {
	material := render.NewMaterial(gbufferProgram)
	material.Side = key.Side()
	material.FlatShading = key.Has(variantFlatShading)
	return material
}

func (b *GBuffer) Render(r render.Renderer, c *Composer, scene render.Scene, camera *render.Camera) {
	if !b.NeedRender() {
		return
	}

	states := scene.RenderStates(camera)
	queue := scene.RenderQueue(camera)

	r.SetRenderTarget(b.target)
	r.SetClearColor(render.ColorTransparent)
	r.Clear(true, true, true)

	if layer := queue.Layer(render.LayerDefault); layer != nil {
		r.RenderList(layer.Opaque, states, b.options)
	}

	b.depthFixed = b.logDepth && camera.Projection.IsPerspective()
	if !b.depthFixed {
		return
	}

	if b.depthTarget == nil {
		b.depthTarget = b.factory.NewRenderTarget(render.RenderTargetOptions{
			Label:  "GBuffer.Depth",
			Width:  b.target.Width(),
			Height: b.target.Height(),
			Format: render.FormatRGBA8Unorm,
			Depth:  render.Depth32Float,
			Filter: render.FilterNearest,
		})
	}

	r.SetRenderTarget(b.depthTarget)
	r.Clear(false, true, true)

	b.depthFix.Uniforms["tDepth"] = render.DepthOf{Target: b.target}
	b.depthFix.Uniforms["nearFar"] = glm.Vec2f{camera.Near, camera.Far}
	r.Draw(b.depthFix)
}

func (b *GBuffer) Output() render.RenderTarget {
	return b.target
}

// DepthTarget returns the target whose depth attachment holds standard,
// non logarithmic depth values.
func (b *GBuffer) DepthTarget() render.RenderTarget {
	if b.depthFixed {
		return b.depthTarget
	}

	return b.target
}

func (b *GBuffer) Resize(width, height int) {
	b.target.Resize(width, height)

	if b.depthTarget != nil {
		b.depthTarget.Resize(width, height)
	}

	b.NeedsUpdate = true
}

func (b *GBuffer) Dispose() {
	b.target.Release()

	if b.depthTarget != nil {
		b.depthTarget.Release()
		b.depthTarget = nil
	}

	b.variants.Purge()
}
