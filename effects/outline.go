package effects

import (
	"github.com/oliverbestmann/postfx/fx"
	"github.com/oliverbestmann/postfx/glm"
	"github.com/oliverbestmann/postfx/render"
)

// OutlineEffect draws an edge around objects marked with the effects handle
// in render.Renderable.Effects. Edges of visible parts use VisibleColor, edges
// of occluded parts use HiddenColor.
type OutlineEffect struct {
	fx.EffectState

	VisibleColor render.Color
	HiddenColor  render.Color

	// Edge width in pixels.
	Thickness float32

	pass *render.ShaderPass
}

func NewOutlineEffect() *OutlineEffect {
	return &OutlineEffect{
		EffectState: fx.NewEffectState(
			fx.BufferDependency{Key: fx.KeyMarkBuffer, Mask: fx.MaskAll},
			fx.BufferDependency{Key: fx.KeyNonDepthMarkBuffer, Mask: fx.MaskAll},
		),

		VisibleColor: render.ColorLinearRGBA(1, 0.6, 0.1, 1),
		HiddenColor:  render.ColorLinearRGBA(0.2, 0.3, 1, 0.6),
		Thickness:    1.5,
		pass:         render.NewShaderPass(outlineProgram),
	}
}

func (e *OutlineEffect) Render(r render.Renderer, c *fx.Composer, input, output render.RenderTarget, final bool) {
	visible, visibleChannel := e.markTarget(c, fx.KeyMarkBuffer, input)
	hidden, hiddenChannel := e.markTarget(c, fx.KeyNonDepthMarkBuffer, input)

	e.pass.Uniforms["tDiffuse"] = input
	e.pass.Uniforms["tVisible"] = visible
	e.pass.Uniforms["tHidden"] = hidden
	e.pass.Uniforms["visibleChannel"] = visibleChannel
	e.pass.Uniforms["hiddenChannel"] = hiddenChannel
	e.pass.Uniforms["visibleColor"] = e.VisibleColor.Premultiplied()
	e.pass.Uniforms["hiddenColor"] = e.HiddenColor.Premultiplied()
	e.pass.Uniforms["texel"] = texelOf(input, e.Thickness)

	c.SetEffectContextStates(output, e.pass, final)
	r.Draw(e.pass)
}

// markTarget looks up the attachment and channel of this effect in the mark
// buffer registered as key. If the effect got no channel, fallback is
// returned with an empty selector.
func (e *OutlineEffect) markTarget(c *fx.Composer, key string, fallback render.RenderTarget) (render.RenderTarget, glm.Vec4f) {
	buffer, ok := c.Buffer(key).(fx.AttachBuffer)
	if !ok {
		return fallback, glm.Vec4f{}
	}

	attach, channel, ok := buffer.Attachments().Lookup(e.Name())
	if !ok {
		return fallback, glm.Vec4f{}
	}

	target := buffer.OutputAt(attach)
	if target == nil {
		return fallback, glm.Vec4f{}
	}

	return target, channelSelector(channel)
}

func (e *OutlineEffect) Resize(width, height int) {}

func (e *OutlineEffect) Dispose() {}

// channelSelector returns a vector that picks the given channel using a dot product.
func channelSelector(channel int) glm.Vec4f {
	var selector glm.Vec4f
	selector[channel%4] = 1
	return selector
}
