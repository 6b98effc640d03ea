package render

// TextureFormat is the storage format of a color attachment.
type TextureFormat uint8

const (
	FormatRGBA8Unorm TextureFormat = iota
	FormatRGBA16Float
)

// DepthFormat is the storage format of a depth/stencil attachment.
type DepthFormat uint8

const (
	DepthNone DepthFormat = iota
	Depth24PlusStencil8
	Depth32Float
)

type Filter uint8

const (
	FilterLinear Filter = iota
	FilterNearest
)

// Slot names a logical attachment point of a render target.
type Slot uint8

const (
	SlotColor0 Slot = iota
	SlotDepthStencil
)

// Surface is something a render target slot can be attached to, a texture or
// a multisample surface owned by the rendering backend.
type Surface interface {
	Size() (width, height int)
}

// RenderTarget is a framebuffer like object that can be drawn into
// and sampled from.
type RenderTarget interface {
	Width() int
	Height() int

	// Resize reallocates the surfaces owned by the target. Attached
	// surfaces are kept as is.
	Resize(width, height int)

	// Attach binds a surface owned by someone else to the given slot.
	Attach(slot Slot, surface Surface)

	// Detach restores the targets own surface for the slot, if it has one.
	Detach(slot Slot)

	// Attachment returns the surface currently bound to the slot, or nil.
	Attachment(slot Slot) Surface

	// Release frees all resources owned by this target.
	Release()
}

type RenderTargetOptions struct {
	// Helpful label for error messages and debugging.
	Label string

	Width  int
	Height int

	Format TextureFormat
	Depth  DepthFormat
	Filter Filter

	// Number of samples per pixel, 0 and 1 disable multisampling.
	Samples int

	// Allocate a full mip chain for the color attachment.
	Mipmaps bool
}

// TargetFactory creates render targets.
type TargetFactory interface {
	NewRenderTarget(opts RenderTargetOptions) RenderTarget
}
