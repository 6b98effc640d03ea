package rendertest

import (
	"fmt"

	"github.com/oliverbestmann/postfx/render"
)

// Target is a render target without any backing storage.
type Target struct {
	ID      int
	Options render.RenderTargetOptions

	// Number of calls to Resize.
	Resizes int

	// Set after Release was called.
	Released bool

	width, height int
	attachments   map[render.Slot]render.Surface
}

var _ render.RenderTarget = &Target{}
var _ render.Surface = &Target{}

func (t *Target) Width() int {
	return t.width
}

func (t *Target) Height() int {
	return t.height
}

func (t *Target) Size() (int, int) {
	return t.width, t.height
}

func (t *Target) Resize(width, height int) {
	t.width = width
	t.height = height
	t.Resizes++
}

func (t *Target) Attach(slot render.Slot, surface render.Surface) {
	t.attachments[slot] = surface
}

func (t *Target) Detach(slot render.Slot) {
	delete(t.attachments, slot)
}

func (t *Target) Attachment(slot render.Slot) render.Surface {
	if surface, ok := t.attachments[slot]; ok {
		return surface
	}

	if slot == render.SlotDepthStencil && t.Options.Depth == render.DepthNone {
		return nil
	}

	return ownSurface{target: t, slot: slot}
}

// External reports if an external surface is attached to the slot.
func (t *Target) External(slot render.Slot) bool {
	_, ok := t.attachments[slot]
	return ok
}

func (t *Target) Release() {
	t.Released = true
}

func (t *Target) String() string {
	return fmt.Sprintf("Target(%d, %q, %dx%d)", t.ID, t.Options.Label, t.width, t.height)
}

// ownSurface is a surface owned by a Target.
type ownSurface struct {
	target *Target
	slot   render.Slot
}

func (s ownSurface) Size() (int, int) {
	return s.target.Size()
}

// Surface is a plain surface, e.g. an externally owned texture.
type Surface struct {
	Width, Height int
}

func (s Surface) Size() (int, int) {
	return s.Width, s.Height
}
