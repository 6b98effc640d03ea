package fx

import "github.com/oliverbestmann/postfx/render"

// Debugger replaces the effect chain and visualizes buffers. It must draw
// as the final pass of the frame, see Composer.SetEffectContextStates.
type Debugger interface {
	Dependencies() []BufferDependency
	Render(r render.Renderer, c *Composer, output render.RenderTarget)
	Resize(width, height int)
	Dispose()
}
