package fx

import "github.com/oliverbestmann/postfx/render"

// Effect is a post processing stage. It samples input and writes into output.
type Effect interface {
	State() *EffectState

	// Render runs the effect. If final is true, output is the destination of the
	// composer and the effect must call Composer.SetEffectContextStates with
	// final set before its last draw. All targets borrowed from the
	// RenderTargetCache must be released before returning.
	Render(r render.Renderer, c *Composer, input, output render.RenderTarget, final bool)

	Resize(width, height int)
	Dispose()
}

// EffectState is embedded into effects and implements Effect.State.
type EffectState struct {
	Active bool

	// Buffers sampled by the effect. Only rendered while the effect is active.
	Dependencies []BufferDependency

	// The effect accumulates over frames and wants a jittered camera.
	NeedCameraJitter bool

	name   string
	order  int
	handle render.EffectHandle
}

// NewEffectState creates an active state with the given dependencies.
func NewEffectState(dependencies ...BufferDependency) EffectState {
	return EffectState{
		Active:       true,
		Dependencies: dependencies,
	}
}

func (s *EffectState) State() *EffectState {
	return s
}

// Name returns the name the effect was registered with.
func (s *EffectState) Name() string {
	return s.name
}

func (s *EffectState) Order() int {
	return s.order
}

// Handle identifies the effect in render.Renderable.Effects. Zero
// if the effect is not registered.
func (s *EffectState) Handle() render.EffectHandle {
	return s.handle
}
