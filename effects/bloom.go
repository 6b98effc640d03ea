package effects

import (
	"github.com/oliverbestmann/postfx/fx"
	"github.com/oliverbestmann/postfx/glm"
	"github.com/oliverbestmann/postfx/render"
)

// BloomEffect adds a blurred copy of the bright parts of the image. The
// blur runs on a chain of targets borrowed from the composers cache, each
// level half the size of the previous one.
type BloomEffect struct {
	fx.EffectState

	// Luminance above which pixels start to glow.
	Threshold float32

	// Width of the transition above Threshold.
	Smoothing float32

	Strength float32

	// Blur radius in texels of each level.
	Radius float32

	// Number of downsampled levels, at least one.
	Levels int

	threshold *render.ShaderPass
	blur      *render.ShaderPass
	composite *render.ShaderPass

	targets []render.RenderTarget
}

func NewBloomEffect() *BloomEffect {
	return &BloomEffect{
		EffectState: fx.NewEffectState(),
		Threshold:   0.8,
		Smoothing:   0.1,
		Strength:    1,
		Radius:      1,
		Levels:      5,
		threshold:   render.NewShaderPass(bloomThresholdProgram),
		blur:        render.NewShaderPass(bloomBlurProgram),
		composite:   render.NewShaderPass(bloomCompositeProgram),
	}
}

func (e *BloomEffect) Render(r render.Renderer, c *fx.Composer, input, output render.RenderTarget, final bool) {
	cache := c.RenderTargetCache()

	levels := max(e.Levels, 1)

	// level 0 of the chain is half the size of the input
	e.targets = e.targets[:0]
	for idx := range levels {
		e.targets = append(e.targets, cache.Allocate(idx+1))
	}

	defer func() {
		for idx, target := range e.targets {
			cache.Release(target, idx+1)
		}

		clear(e.targets)
	}()

	e.threshold.Uniforms["tDiffuse"] = input
	e.threshold.Uniforms["threshold"] = glm.Vec2f{e.Threshold, max(e.Smoothing, 1e-4)}
	c.SetEffectContextStates(e.targets[0], e.threshold, false)
	r.Draw(e.threshold)

	// downsample
	for idx := 1; idx < levels; idx++ {
		source := e.targets[idx-1]

		e.blur.Uniforms["tSource"] = source
		e.blur.Uniforms["texel"] = texelOf(source, e.Radius)
		c.SetEffectContextStates(e.targets[idx], e.blur, false)
		r.Draw(e.blur)
	}

	// upsample and accumulate into the larger level
	for idx := levels - 1; idx > 0; idx-- {
		source := e.targets[idx]

		e.blur.Uniforms["tSource"] = source
		e.blur.Uniforms["texel"] = texelOf(source, e.Radius)

		r.SetRenderTarget(e.targets[idx-1])
		e.blur.Blending = render.BlendAdditive
		e.blur.Viewport = glm.FullRect
		r.Draw(e.blur)
	}

	e.composite.Uniforms["tDiffuse"] = input
	e.composite.Uniforms["tBloom"] = e.targets[0]
	e.composite.Uniforms["strength"] = e.Strength
	c.SetEffectContextStates(output, e.composite, final)
	r.Draw(e.composite)
}

func (e *BloomEffect) Resize(width, height int) {}

func (e *BloomEffect) Dispose() {}

// texelOf returns the size of one texel of target in uv space, scaled by radius.
func texelOf(target render.RenderTarget, radius float32) glm.Vec4f {
	return glm.Vec4f{
		1 / float32(max(target.Width(), 1)),
		1 / float32(max(target.Height(), 1)),
		radius,
		0,
	}
}
