package render

// Blending defines how fragments are combined with the destination.
type Blending uint8

const (
	// BlendNone replaces the destination.
	BlendNone Blending = iota

	// BlendPremultiplied composites premultiplied colors over the destination.
	BlendPremultiplied

	// BlendAdditive adds source onto destination.
	BlendAdditive
)

// Renderer is the rendering engine the composer is built on. All calls are
// issued from a single thread, in submission order.
type Renderer interface {
	TargetFactory

	// SetRenderTarget binds the target that following clear and draw calls go to.
	SetRenderTarget(target RenderTarget)
	RenderTarget() RenderTarget

	SetClearColor(color Color)
	ClearColor() Color

	// Clear clears the selected aspects of the current render target.
	Clear(color, depth, stencil bool)

	// Blit copies the selected aspects of src into dst, resolving
	// multisample surfaces and scaling if required. The current
	// render target is not changed.
	Blit(src, dst RenderTarget, color, depth, stencil bool)

	// RenderList draws the renderables into the current render target.
	RenderList(list []*Renderable, states *RenderStates, opts *RenderOptions)

	// Draw runs a full screen shader pass into the current render target.
	Draw(pass *ShaderPass)

	// UpdateMipmap regenerates the mip chain of the targets color attachment.
	UpdateMipmap(target RenderTarget)
}
