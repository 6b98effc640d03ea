package effects

import (
	"github.com/oliverbestmann/postfx/fx"
	"github.com/oliverbestmann/postfx/render"
)

// TAAEffect accumulates frames rendered with a jittered camera. Frames are
// averaged until the weight of a new frame drops to Feedback. Restarting the
// jitter sequence, e.g. by calling CameraJitter.Reset, restarts the average.
type TAAEffect struct {
	fx.EffectState

	// Minimum weight of the current frame.
	Feedback float32

	// number of frames in the history
	samples int

	// CameraJitter.Resets of the last frame
	resets int

	// two history targets, swapped each frame
	history [2]render.RenderTarget
	current int

	accumulate *render.ShaderPass
	copyPass   *render.ShaderPass
}

func NewTAAEffect() *TAAEffect {
	state := fx.NewEffectState()
	state.NeedCameraJitter = true

	return &TAAEffect{
		EffectState: state,
		Feedback:    0.1,
		accumulate:  render.NewShaderPass(accumulateProgram),
		copyPass:    render.NewShaderPass(fx.CopyProgram),
	}
}

func (e *TAAEffect) Render(r render.Renderer, c *fx.Composer, input, output render.RenderTarget, final bool) {
	e.allocate(r, c)

	if resets := c.CameraJitter().Resets(); resets != e.resets {
		e.resets = resets
		e.samples = 0
	}

	e.samples++

	// the first sample replaces the history
	weight := max(1/float32(e.samples), e.Feedback)

	previous := e.history[e.current]
	e.current = 1 - e.current
	next := e.history[e.current]

	e.accumulate.Uniforms["tDiffuse"] = input
	e.accumulate.Uniforms["tHistory"] = previous
	e.accumulate.Uniforms["weight"] = weight
	c.SetEffectContextStates(next, e.accumulate, false)
	r.Draw(e.accumulate)

	e.copyPass.Uniforms["tDiffuse"] = next
	c.SetEffectContextStates(output, e.copyPass, final)
	r.Draw(e.copyPass)
}

func (e *TAAEffect) allocate(r render.Renderer, c *fx.Composer) {
	if e.history[0] != nil {
		return
	}

	format := render.FormatRGBA8Unorm
	if c.HDR() {
		format = render.FormatRGBA16Float
	}

	width, height := c.Size()

	for idx := range e.history {
		e.history[idx] = r.NewRenderTarget(render.RenderTargetOptions{
			Label:  "TAA.History",
			Width:  width,
			Height: height,
			Format: format,
		})
	}
}

// History returns the target holding the accumulated image of the last frame.
func (e *TAAEffect) History() render.RenderTarget {
	return e.history[e.current]
}

func (e *TAAEffect) Resize(width, height int) {
	e.samples = 0

	for _, target := range e.history {
		if target != nil {
			target.Resize(width, height)
		}
	}
}

func (e *TAAEffect) Dispose() {
	for idx, target := range e.history {
		if target != nil {
			target.Release()
			e.history[idx] = nil
		}
	}
}
