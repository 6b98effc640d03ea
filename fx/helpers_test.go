package fx

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/oliverbestmann/postfx/glm"
	"github.com/oliverbestmann/postfx/render"
	"github.com/oliverbestmann/postfx/render/rendertest"
)

type effectCall struct {
	input  render.RenderTarget
	output render.RenderTarget
	final  bool
}

// testEffect records its calls and draws a single pass like a real effect would.
type testEffect struct {
	EffectState

	calls    []effectCall
	resizes  int
	disposed bool

	// borrow a scratch target of this level while rendering, if >= 0
	borrowLevel int

	pass *render.ShaderPass
}

func newTestEffect(dependencies ...BufferDependency) *testEffect {
	return &testEffect{
		EffectState: NewEffectState(dependencies...),
		borrowLevel: -1,
		pass:        render.NewShaderPass(CopyProgram),
	}
}

func (e *testEffect) Render(r render.Renderer, c *Composer, input, output render.RenderTarget, final bool) {
	e.calls = append(e.calls, effectCall{input: input, output: output, final: final})

	if e.borrowLevel >= 0 {
		scratch := c.RenderTargetCache().Allocate(e.borrowLevel)
		defer c.RenderTargetCache().Release(scratch, e.borrowLevel)
	}

	e.pass.Uniforms["tDiffuse"] = input
	c.SetEffectContextStates(output, e.pass, final)
	r.Draw(e.pass)
}

func (e *testEffect) Resize(width, height int) {
	e.resizes++
}

func (e *testEffect) Dispose() {
	e.disposed = true
}

type testDebugger struct {
	deps    []BufferDependency
	outputs []render.RenderTarget
}

func (d *testDebugger) Dependencies() []BufferDependency {
	return d.deps
}

func (d *testDebugger) Render(r render.Renderer, c *Composer, output render.RenderTarget) {
	d.outputs = append(d.outputs, output)
}

func (d *testDebugger) Resize(width, height int) {}
func (d *testDebugger) Dispose()                 {}

// countingBuffer counts how often it actually renders.
type countingBuffer struct {
	BufferState
	renders int
}

func (b *countingBuffer) Render(r render.Renderer, c *Composer, scene render.Scene, camera *render.Camera) {
	if !b.NeedRender() {
		return
	}

	b.renders++
}

func (b *countingBuffer) Output() render.RenderTarget { return nil }
func (b *countingBuffer) Resize(width, height int)    { b.NeedsUpdate = true }
func (b *countingBuffer) Dispose()                    {}

type fixture struct {
	renderer *rendertest.Renderer
	composer *Composer
	scene    *render.StaticScene
	camera   *render.Camera
	dest     render.RenderTarget
	logs     *bytes.Buffer
}

func newFixture(t *testing.T, opts ComposerOptions) *fixture {
	t.Helper()

	var logs bytes.Buffer

	if opts.Width == 0 {
		opts.Width, opts.Height = 64, 32
	}

	opts.Logger = slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	r := &rendertest.Renderer{}
	composer := NewComposer(r, opts)

	dest := r.NewRenderTarget(render.RenderTargetOptions{
		Label:  "Destination",
		Width:  opts.Width,
		Height: opts.Height,
		Depth:  render.Depth24PlusStencil8,
	})

	projection := glm.Perspective[float32](glm.DegToRad(60), 2, 0.1, 100)
	view := glm.TranslationMat4[float32](0, 0, -5)
	camera := render.NewCamera(view, projection, 0.1, 100)

	scene := &render.StaticScene{}
	scene.Add(render.LayerDefault, &render.Renderable{
		ID:        1,
		Material:  render.NewMaterial(nil),
		Transform: glm.IdentityMat4[float32](),
	})

	// ignore the setup calls
	r.Reset()

	return &fixture{
		renderer: r,
		composer: composer,
		scene:    scene,
		camera:   camera,
		dest:     dest,
		logs:     &logs,
	}
}

func (f *fixture) render() {
	f.composer.Render(f.scene, f.camera, f.dest)
}

// renderListsInto counts the RenderList calls that drew into a target with the given label.
func renderListsInto(r *rendertest.Renderer, label string) int {
	var count int

	for _, call := range r.Filter(rendertest.CallRenderList) {
		if target, ok := call.Target.(*rendertest.Target); ok && target.Options.Label == label {
			count++
		}
	}

	return count
}

func label(target render.RenderTarget) string {
	if target, ok := target.(*rendertest.Target); ok {
		return target.Options.Label
	}

	return ""
}
