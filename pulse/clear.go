package pulse

import (
	"fmt"

	"github.com/oliverbestmann/postfx/render"
	"github.com/oliverbestmann/webgpu/wgpu"
)

type Releaser interface {
	Release()
}

type ReleaseGuard struct {
	delegate Releaser
}

func NewReleaseGuard(delegate Releaser) ReleaseGuard {
	return ReleaseGuard{delegate: delegate}
}

func (r *ReleaseGuard) Keep() {
	r.delegate = nil
}

func (r *ReleaseGuard) Release() {
	if r.delegate != nil {
		r.delegate.Release()
		r.delegate = nil
	}
}

// Releasers releases a group of resources at once, e.g. the bind groups
// of a render pass after it was submitted.
type Releasers []Releaser

func (r *Releasers) Add(value Releaser) {
	*r = append(*r, value)
}

func (r *Releasers) Release() {
	for _, value := range *r {
		value.Release()
	}

	*r = (*r)[:0]
}

// clearOps selects the aspects of a pass target to clear when the pass begins.
type clearOps struct {
	Color, Depth, Stencil bool

	ClearColor render.Color
}

// passTarget holds the views a render pass draws into.
type passTarget struct {
	label string

	color *wgpu.TextureView
	depth *wgpu.TextureView

	// resolves the multisampled color view, if set
	resolve *wgpu.TextureView

	layout targetLayout

	width, height int
}

func (t passTarget) begin(encoder *wgpu.CommandEncoder, label string, ops clearOps) *wgpu.RenderPassEncoder {
	desc := &wgpu.RenderPassDescriptor{Label: label}

	if t.color != nil {
		loadOp := wgpu.LoadOpLoad
		if ops.Color {
			loadOp = wgpu.LoadOpClear
		}

		// clear values are premultiplied
		c := ops.ClearColor.Premultiplied()

		desc.ColorAttachments = []wgpu.RenderPassColorAttachment{
			{
				View:          t.color,
				ResolveTarget: t.resolve,
				LoadOp:        loadOp,
				StoreOp:       wgpu.StoreOpStore,
				ClearValue: wgpu.Color{
					R: float64(c[0]),
					G: float64(c[1]),
					B: float64(c[2]),
					A: float64(c[3]),
				},
			},
		}
	}

	if t.depth != nil {
		attachment := &wgpu.RenderPassDepthStencilAttachment{
			View:            t.depth,
			DepthLoadOp:     wgpu.LoadOpLoad,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1,
		}

		if ops.Depth {
			attachment.DepthLoadOp = wgpu.LoadOpClear
		}

		if HasStencil(t.layout.DepthFormat) {
			attachment.StencilLoadOp = wgpu.LoadOpLoad
			attachment.StencilStoreOp = wgpu.StoreOpStore

			if ops.Stencil {
				attachment.StencilLoadOp = wgpu.LoadOpClear
			}
		}

		desc.DepthStencilAttachment = attachment
	}

	return encoder.BeginRenderPass(desc)
}

// encodePass records a single render pass into its own command buffer
// and submits it to the queue.
func (r *Renderer) encodePass(target passTarget, label string, ops clearOps, record func(pass *wgpu.RenderPassEncoder)) error {
	enc, err := r.ctx.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{
		Label: label,
	})

	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}

	defer enc.Release()

	pass := target.begin(enc, label, ops)

	passGuard := NewReleaseGuard(pass)
	defer passGuard.Release()

	if record != nil {
		record(pass)
	}

	if err := pass.End(); err != nil {
		return fmt.Errorf("end render pass: %w", err)
	}

	passGuard.Release()

	buf, err := enc.Finish(&wgpu.CommandBufferDescriptor{Label: label})
	if err != nil {
		return fmt.Errorf("finish command buffer: %w", err)
	}

	defer buf.Release()

	r.ctx.Submit(buf)

	return nil
}

// Clear clears the selected aspects of the current render target. Aspects
// the target does not have are ignored.
func (r *Renderer) Clear(color, depth, stencil bool) {
	target, ok := r.currentPassTarget()
	if !ok {
		return
	}

	if target.depth == nil && !color {
		return
	}

	err := r.encodePass(target, "ClearTexture", clearOps{
		Color:      color,
		Depth:      depth,
		Stencil:    stencil,
		ClearColor: r.clearColor,
	}, nil)

	if err != nil {
		r.fail(fmt.Errorf("clear %q: %w", target.label, err))
	}
}
