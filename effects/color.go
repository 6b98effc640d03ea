package effects

import (
	"github.com/oliverbestmann/postfx/fx"
	"github.com/oliverbestmann/postfx/glm"
	"github.com/oliverbestmann/postfx/render"
)

// ColorCorrectionEffect adjusts exposure, contrast, saturation and gamma
// of its input.
type ColorCorrectionEffect struct {
	fx.EffectState

	Exposure   float32
	Contrast   float32
	Saturation float32
	Gamma      float32

	pass *render.ShaderPass
}

// NewColorCorrectionEffect creates an effect that passes its input through unchanged.
func NewColorCorrectionEffect() *ColorCorrectionEffect {
	return &ColorCorrectionEffect{
		EffectState: fx.NewEffectState(),
		Exposure:    1,
		Contrast:    1,
		Saturation:  1,
		Gamma:       1,
		pass:        render.NewShaderPass(colorCorrectionProgram),
	}
}

func (e *ColorCorrectionEffect) Render(r render.Renderer, c *fx.Composer, input, output render.RenderTarget, final bool) {
	e.pass.Uniforms["tDiffuse"] = input
	e.pass.Uniforms["correction"] = glm.Vec4f{e.Exposure, e.Contrast, e.Saturation, max(e.Gamma, 0.01)}

	c.SetEffectContextStates(output, e.pass, final)
	r.Draw(e.pass)
}

func (e *ColorCorrectionEffect) Resize(width, height int) {}

func (e *ColorCorrectionEffect) Dispose() {}
