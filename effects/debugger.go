package effects

import (
	"log/slog"

	"github.com/oliverbestmann/postfx/fx"
	"github.com/oliverbestmann/postfx/glm"
	"github.com/oliverbestmann/postfx/render"
)

// DebugMode selects what a BufferDebugger shows.
type DebugMode uint8

const (
	// DebugColor shows the color of the buffers output.
	DebugColor DebugMode = iota

	// DebugNormal decodes the normals of the GBuffer.
	DebugNormal

	// DebugMetalness shows the metalness stored in the GBuffer.
	DebugMetalness

	// DebugRoughness shows the roughness stored in the GBuffer.
	DebugRoughness

	// DebugMark shows the mark buffer channel of BufferDebugger.Effect.
	DebugMark

	// DebugDepth shows the linearized depth of the buffers output.
	DebugDepth
)

func (m DebugMode) String() string {
	switch m {
	case DebugColor:
		return "Color"
	case DebugNormal:
		return "Normal"
	case DebugMetalness:
		return "Metalness"
	case DebugRoughness:
		return "Roughness"
	case DebugMark:
		return "Mark"
	case DebugDepth:
		return "Depth"
	default:
		return "Unknown"
	}
}

// BufferDebugger draws a single buffer to the screen instead of running
// the effect chain.
type BufferDebugger struct {
	Key  string
	Mode DebugMode

	// Name of the effect whose channel is shown in DebugMark mode.
	Effect string

	// Clip planes used to linearize depth.
	Near, Far float32

	// Defaults to the logger of the composer.
	Logger *slog.Logger

	pass      *render.ShaderPass
	depthPass *render.ShaderPass

	// key of the last missing buffer that was logged
	missing string
}

func NewBufferDebugger(key string, mode DebugMode) *BufferDebugger {
	return &BufferDebugger{
		Key:       key,
		Mode:      mode,
		Near:      0.1,
		Far:       100,
		pass:      render.NewShaderPass(debugProgram),
		depthPass: render.NewShaderPass(debugDepthProgram),
	}
}

func (d *BufferDebugger) Dependencies() []fx.BufferDependency {
	return []fx.BufferDependency{{Key: d.Key, Mask: fx.MaskAll}}
}

func (d *BufferDebugger) logger(c *fx.Composer) *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}

	return c.Logger()
}

func (d *BufferDebugger) Render(r render.Renderer, c *fx.Composer, output render.RenderTarget) {
	buffer := c.Buffer(d.Key)
	if buffer == nil {
		if d.missing != d.Key {
			d.logger(c).Warn("Debugged buffer is not registered", slog.String("key", d.Key))
			d.missing = d.Key
		}

		r.SetRenderTarget(output)
		r.Clear(true, true, true)
		return
	}

	d.missing = ""

	var pass *render.ShaderPass

	switch d.Mode {
	case DebugDepth:
		pass = d.depthPass
		pass.Uniforms["tDepth"] = render.DepthOf{Target: depthTargetOf(buffer)}
		pass.Uniforms["nearFar"] = glm.Vec2f{d.Near, d.Far}

	case DebugMark:
		target, selector := d.markTarget(buffer)

		pass = d.pass
		pass.Uniforms["tSource"] = target
		pass.Uniforms["mode"] = int(d.Mode)
		pass.Uniforms["channel"] = selector

	default:
		pass = d.pass
		pass.Uniforms["tSource"] = buffer.Output()
		pass.Uniforms["mode"] = int(d.Mode)
		pass.Uniforms["channel"] = glm.Vec4f{}
	}

	c.SetEffectContextStates(output, pass, true)
	r.Draw(pass)
}

// markTarget returns the attachment holding the effects channel and a
// selector for it. Color mark buffers select all channels.
func (d *BufferDebugger) markTarget(buffer fx.Buffer) (render.RenderTarget, glm.Vec4f) {
	attachBuffer, ok := buffer.(fx.AttachBuffer)
	if !ok {
		return buffer.Output(), glm.Vec4f{}
	}

	attach, channel, ok := attachBuffer.Attachments().Lookup(d.Effect)
	if !ok {
		return buffer.Output(), glm.Vec4f{}
	}

	target := attachBuffer.OutputAt(attach)
	if target == nil {
		return buffer.Output(), glm.Vec4f{}
	}

	if attachBuffer.Attachments().ChannelSize() == 1 {
		return target, glm.Vec4f{1, 1, 1, 1}
	}

	return target, channelSelector(channel)
}

func depthTargetOf(buffer fx.Buffer) render.RenderTarget {
	if gbuffer, ok := buffer.(*fx.GBuffer); ok {
		return gbuffer.DepthTarget()
	}

	return buffer.Output()
}

func (d *BufferDebugger) Resize(width, height int) {}

func (d *BufferDebugger) Dispose() {}
