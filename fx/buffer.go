package fx

import "github.com/oliverbestmann/postfx/render"

// Keys of the buffers registered by NewComposer.
const (
	KeySceneBuffer        = "SceneBuffer"
	KeyGBuffer            = "GBuffer"
	KeyNonDepthMarkBuffer = "NonDepthMarkBuffer"
	KeyMarkBuffer         = "MarkBuffer"
	KeyColorMarkBuffer    = "ColorMarkBuffer"
)

// Buffer renders information about the scene into render targets
// that effects can sample from.
type Buffer interface {
	// NeedRender reports if the buffer must be rendered. Consumes
	// the dirty flag of buffers that do not update automatically.
	NeedRender() bool

	// Render draws the scene into the buffers targets. Does nothing if NeedRender
	// returns false.
	Render(r render.Renderer, c *Composer, scene render.Scene, camera *render.Camera)

	Output() render.RenderTarget

	// Resize resizes all owned targets and marks the buffer dirty.
	Resize(width, height int)

	Dispose()
}

// AttachBuffer is a Buffer that holds more than one target and
// shares them between effects by channel.
type AttachBuffer interface {
	Buffer

	Attachments() *AttachManager

	// OutputAt returns the target of the given attachment, or nil if
	// the attachment exceeds the capacity of the buffer.
	OutputAt(attachIndex int) render.RenderTarget
}

// BufferDependency declares that an effect samples the buffer
// registered as Key. Mask is only used by attach buffers.
type BufferDependency struct {
	Key  string
	Mask Mask
}

// BufferState implements the dirty tracking of a Buffer.
type BufferState struct {
	// Render every frame.
	AutoUpdate bool

	// Render once on the next frame.
	NeedsUpdate bool
}

func (s *BufferState) NeedRender() bool {
	if s.AutoUpdate {
		return true
	}

	needsUpdate := s.NeedsUpdate
	s.NeedsUpdate = false

	return needsUpdate
}
