// Package rendertest provides a render.Renderer that records calls instead of
// talking to a GPU.
package rendertest

import (
	"maps"

	"github.com/oliverbestmann/postfx/render"
)

type CallKind uint8

const (
	CallSetRenderTarget CallKind = iota
	CallSetClearColor
	CallClear
	CallBlit
	CallRenderList
	CallDraw
	CallUpdateMipmap
)

func (k CallKind) String() string {
	switch k {
	case CallSetRenderTarget:
		return "SetRenderTarget"
	case CallSetClearColor:
		return "SetClearColor"
	case CallClear:
		return "Clear"
	case CallBlit:
		return "Blit"
	case CallRenderList:
		return "RenderList"
	case CallDraw:
		return "Draw"
	case CallUpdateMipmap:
		return "UpdateMipmap"
	default:
		return "Unknown"
	}
}

// Call is a recorded call to the Renderer.
type Call struct {
	Kind CallKind

	// Render target bound at the time of the call.
	Target render.RenderTarget

	// Blit source and destination.
	Src, Dst render.RenderTarget

	// Clear and blit flags.
	Color, Depth, Stencil bool

	ClearColor render.Color

	// Snapshot of the pass passed to Draw.
	Pass render.ShaderPass

	// Renderables accepted by RenderOptions.IfRender, their resolved materials
	// and a snapshot of the material uniforms at the time of the draw.
	Drawn     []*render.Renderable
	Materials []*render.Material
	Uniforms  []render.Uniforms

	// Snapshot of the camera passed to RenderList.
	Camera render.Camera

	Transmission render.RenderTarget
}

// Renderer records every call made to it.
type Renderer struct {
	Calls   []Call
	Targets []*Target

	current    render.RenderTarget
	clearColor render.Color
}

var _ render.Renderer = &Renderer{}

func (r *Renderer) NewRenderTarget(opts render.RenderTargetOptions) render.RenderTarget {
	target := &Target{
		ID:          len(r.Targets) + 1,
		Options:     opts,
		width:       opts.Width,
		height:      opts.Height,
		attachments: map[render.Slot]render.Surface{},
	}

	r.Targets = append(r.Targets, target)

	return target
}

func (r *Renderer) SetRenderTarget(target render.RenderTarget) {
	r.current = target
	r.record(Call{Kind: CallSetRenderTarget})
}

func (r *Renderer) RenderTarget() render.RenderTarget {
	return r.current
}

func (r *Renderer) SetClearColor(color render.Color) {
	r.clearColor = color
	r.record(Call{Kind: CallSetClearColor, ClearColor: color})
}

func (r *Renderer) ClearColor() render.Color {
	return r.clearColor
}

func (r *Renderer) Clear(color, depth, stencil bool) {
	r.record(Call{
		Kind:       CallClear,
		Color:      color,
		Depth:      depth,
		Stencil:    stencil,
		ClearColor: r.clearColor,
	})
}

func (r *Renderer) Blit(src, dst render.RenderTarget, color, depth, stencil bool) {
	r.record(Call{
		Kind:    CallBlit,
		Src:     src,
		Dst:     dst,
		Color:   color,
		Depth:   depth,
		Stencil: stencil,
	})
}

func (r *Renderer) RenderList(list []*render.Renderable, states *render.RenderStates, opts *render.RenderOptions) {
	call := Call{Kind: CallRenderList}

	if states != nil {
		call.Transmission = states.Transmission
		if states.Camera != nil {
			call.Camera = *states.Camera
		}
	}

	for _, renderable := range list {
		if !opts.Accept(renderable) {
			continue
		}

		material := opts.Material(renderable)
		if material == nil {
			continue
		}

		if opts != nil && opts.BeforeRender != nil {
			opts.BeforeRender(renderable, material)
		}

		call.Drawn = append(call.Drawn, renderable)
		call.Materials = append(call.Materials, material)
		call.Uniforms = append(call.Uniforms, maps.Clone(material.Uniforms))
	}

	r.record(call)
}

func (r *Renderer) Draw(pass *render.ShaderPass) {
	snapshot := *pass
	snapshot.Uniforms = maps.Clone(pass.Uniforms)

	r.record(Call{Kind: CallDraw, Pass: snapshot})
}

func (r *Renderer) UpdateMipmap(target render.RenderTarget) {
	r.record(Call{Kind: CallUpdateMipmap, Dst: target})
}

func (r *Renderer) record(call Call) {
	call.Target = r.current
	r.Calls = append(r.Calls, call)
}

// Reset forgets all recorded calls. Created targets are kept.
func (r *Renderer) Reset() {
	r.Calls = nil
}

// Filter returns all calls of the given kind.
func (r *Renderer) Filter(kind CallKind) []Call {
	var result []Call
	for _, call := range r.Calls {
		if call.Kind == kind {
			result = append(result, call)
		}
	}

	return result
}

// Count returns the number of calls of the given kind.
func (r *Renderer) Count(kind CallKind) int {
	return len(r.Filter(kind))
}

// DrawsOf returns all Draw calls using the given program.
func (r *Renderer) DrawsOf(program *render.Program) []Call {
	var result []Call
	for _, call := range r.Filter(CallDraw) {
		if call.Pass.Program == program {
			result = append(result, call)
		}
	}

	return result
}
