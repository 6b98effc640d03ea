package effects

import (
	"log/slog"

	"github.com/oliverbestmann/postfx/fx"
	"github.com/oliverbestmann/postfx/glm"
	"github.com/oliverbestmann/postfx/render"
)

// AmbientOcclusionEffect darkens creases using the normals and depth of the
// GBuffer. Occlusion is computed at half resolution.
type AmbientOcclusionEffect struct {
	fx.EffectState

	// Camera the scene is rendered with. Occlusion is skipped if nil.
	Camera *render.Camera

	// Sample radius in world units.
	Radius    float32
	Intensity float32
	Bias      float32
	Samples   int

	occlusion *render.ShaderPass
	composite *render.ShaderPass
	copyPass  *render.ShaderPass

	warned bool
}

func NewAmbientOcclusionEffect(camera *render.Camera) *AmbientOcclusionEffect {
	return &AmbientOcclusionEffect{
		EffectState: fx.NewEffectState(
			fx.BufferDependency{Key: fx.KeyGBuffer},
		),

		Camera:    camera,
		Radius:    0.5,
		Intensity: 1.5,
		Bias:      0.05,
		Samples:   16,
		occlusion: render.NewShaderPass(ambientOcclusionProgram),
		composite: render.NewShaderPass(ambientOcclusionCompositeProgram),
		copyPass:  render.NewShaderPass(fx.CopyProgram),
	}
}

func (e *AmbientOcclusionEffect) Render(r render.Renderer, c *fx.Composer, input, output render.RenderTarget, final bool) {
	gbuffer, ok := c.Buffer(fx.KeyGBuffer).(*fx.GBuffer)

	if !ok || e.Camera == nil {
		if !e.warned {
			c.Logger().Warn("Skip ambient occlusion without gbuffer or camera", slog.String("effect", e.Name()))
			e.warned = true
		}

		e.copyPass.Uniforms["tDiffuse"] = input
		c.SetEffectContextStates(output, e.copyPass, final)
		r.Draw(e.copyPass)
		return
	}

	e.warned = false

	cache := c.RenderTargetCache()

	occlusion := cache.Allocate(1)
	defer cache.Release(occlusion, 1)

	projection := e.Camera.Projection

	e.occlusion.Uniforms["tNormal"] = gbuffer.Output()
	e.occlusion.Uniforms["tDepth"] = render.DepthOf{Target: gbuffer.DepthTarget()}
	e.occlusion.Uniforms["projection"] = glm.Vec4f{
		e.Camera.Near,
		e.Camera.Far,
		1 / projection[0],
		1 / projection[5],
	}

	e.occlusion.Uniforms["occlusion"] = glm.Vec4f{e.Radius, e.Intensity, e.Bias, float32(max(e.Samples, 1))}

	c.SetEffectContextStates(occlusion, e.occlusion, false)
	r.Draw(e.occlusion)

	e.composite.Uniforms["tDiffuse"] = input
	e.composite.Uniforms["tOcclusion"] = occlusion
	c.SetEffectContextStates(output, e.composite, final)
	r.Draw(e.composite)
}

func (e *AmbientOcclusionEffect) Resize(width, height int) {}

func (e *AmbientOcclusionEffect) Dispose() {}
