package fx

import (
	"strings"
	"testing"

	"github.com/oliverbestmann/postfx/glm"
	"github.com/oliverbestmann/postfx/render"
	"github.com/oliverbestmann/postfx/render/rendertest"
)

func TestComposerChainFirstAndLast(t *testing.T) {
	f := newFixture(t, ComposerOptions{})

	a, b, c := newTestEffect(), newTestEffect(), newTestEffect()

	// registration order differs from execution order
	f.composer.AddEffect("C", c, 2)
	f.composer.AddEffect("A", a, 0)
	f.composer.AddEffect("B", b, 1)

	f.render()

	if len(a.calls) != 1 || len(b.calls) != 1 || len(c.calls) != 1 {
		t.Fatalf("expected each effect to render once, got %d, %d, %d", len(a.calls), len(b.calls), len(c.calls))
	}

	sceneOutput := f.composer.SceneBuffer().Output()

	if a.calls[0].input != sceneOutput {
		t.Errorf("expected first effect to read the scene buffer, got %v", a.calls[0].input)
	}

	if label(a.calls[0].output) != "Pooled" {
		t.Errorf("expected first effect to write a pooled target, got %v", a.calls[0].output)
	}

	if b.calls[0].input != a.calls[0].output {
		t.Error("expected second effect to read the output of the first")
	}

	if label(b.calls[0].input) != "Pooled" || label(b.calls[0].output) != "Pooled" {
		t.Error("expected second effect to read and write pooled targets")
	}

	if b.calls[0].input == b.calls[0].output {
		t.Error("expected input and output of the second effect to differ")
	}

	if c.calls[0].input != b.calls[0].output {
		t.Error("expected last effect to read the output of the second")
	}

	if c.calls[0].output != f.dest {
		t.Errorf("expected last effect to write the destination, got %v", c.calls[0].output)
	}

	if a.calls[0].final || b.calls[0].final || !c.calls[0].final {
		t.Error("expected only the last effect to be final")
	}
}

func TestComposerEndToEnd(t *testing.T) {
	f := newFixture(t, ComposerOptions{})

	e1 := newTestEffect(BufferDependency{Key: KeyGBuffer})
	e2 := newTestEffect()

	f.composer.AddEffect("E1", e1, 0)
	f.composer.AddEffect("E2", e2, 1)

	// warm up the pool
	f.render()

	cache := f.composer.RenderTargetCache()
	freeBefore := cache.Free(0)

	f.renderer.Reset()
	e1.calls, e2.calls = nil, nil

	f.render()

	if n := renderListsInto(f.renderer, "SceneBuffer"); n != 1 {
		t.Errorf("expected scene buffer to render once, got %d", n)
	}

	if n := renderListsInto(f.renderer, "GBuffer"); n != 1 {
		t.Errorf("expected gbuffer to render once, got %d", n)
	}

	for _, key := range []string{KeyNonDepthMarkBuffer, KeyMarkBuffer, KeyColorMarkBuffer} {
		if n := renderListsInto(f.renderer, key); n != 0 {
			t.Errorf("expected %s to not render, got %d", key, n)
		}
	}

	pooled := e1.calls[0].output

	if e1.calls[0].input != f.composer.SceneBuffer().Output() || label(pooled) != "Pooled" || e1.calls[0].final {
		t.Errorf("unexpected call of E1: %+v", e1.calls[0])
	}

	if e2.calls[0].input != pooled || e2.calls[0].output != f.dest || !e2.calls[0].final {
		t.Errorf("unexpected call of E2: %+v", e2.calls[0])
	}

	if cache.Free(0) != freeBefore {
		t.Errorf("expected %d free targets after render, got %d", freeBefore, cache.Free(0))
	}
}

func TestComposerPoolBalance(t *testing.T) {
	f := newFixture(t, ComposerOptions{})

	for idx, level := range []int{0, 1, -1, 2} {
		effect := newTestEffect()
		effect.borrowLevel = level
		f.composer.AddEffect(string(rune('a'+idx)), effect, idx)
	}

	f.render()

	cache := f.composer.RenderTargetCache()

	var before [3]int
	for level := range before {
		before[level] = cache.Free(level)
	}

	for range 3 {
		f.render()
	}

	for level := range before {
		if cache.Free(level) != before[level] {
			t.Errorf("level %d: expected %d free targets, got %d", level, before[level], cache.Free(level))
		}
	}

	pooled := 0
	for _, target := range f.renderer.Targets {
		if target.Options.Label == "Pooled" {
			pooled++
		}
	}

	// two ping pong targets plus one scratch target per level
	if pooled != 5 {
		t.Errorf("expected 5 pooled targets to be created, got %d", pooled)
	}
}

func TestComposerInactiveEffect(t *testing.T) {
	f := newFixture(t, ComposerOptions{})

	e1 := newTestEffect(BufferDependency{Key: KeyGBuffer})
	e2 := newTestEffect()

	f.composer.AddEffect("E1", e1, 0)
	f.composer.AddEffect("E2", e2, 1)

	f.render()

	e1.Active = false
	f.renderer.Reset()

	f.render()

	if len(e1.calls) != 1 {
		t.Errorf("expected inactive effect to be skipped, got %d calls", len(e1.calls))
	}

	if n := renderListsInto(f.renderer, "GBuffer"); n != 0 {
		t.Errorf("expected gbuffer to not render, got %d", n)
	}

	last := e2.calls[len(e2.calls)-1]
	if last.input != f.composer.SceneBuffer().Output() || last.output != f.dest || !last.final {
		t.Errorf("expected the remaining effect to be first and last, got %+v", last)
	}
}

func TestComposerDuplicateEffect(t *testing.T) {
	f := newFixture(t, ComposerOptions{})

	first := newTestEffect()
	second := newTestEffect()

	if !f.composer.AddEffect("Outline", first, 0) {
		t.Fatal("expected first registration to succeed")
	}

	if f.composer.AddEffect("Outline", second, 1) {
		t.Error("expected second registration to fail")
	}

	if f.composer.Effect("Outline") != first {
		t.Error("expected the first effect to be kept")
	}

	if len(f.composer.Effects()) != 1 {
		t.Errorf("expected 1 effect, got %d", len(f.composer.Effects()))
	}

	if !strings.Contains(f.logs.String(), "Effect already registered") {
		t.Errorf("expected an error to be logged, got: %s", f.logs.String())
	}
}

func TestComposerDuplicateBuffer(t *testing.T) {
	f := newFixture(t, ComposerOptions{})

	if f.composer.AddBuffer(KeyGBuffer, &countingBuffer{}) {
		t.Error("expected registration of existing key to fail")
	}

	if _, ok := f.composer.Buffer(KeyGBuffer).(*GBuffer); !ok {
		t.Error("expected the default gbuffer to be kept")
	}
}

func TestComposerDirectPath(t *testing.T) {
	f := newFixture(t, ComposerOptions{})
	f.camera.Rect = glm.Rect{X: 0.5, Y: 0, W: 0.5, H: 1}

	f.render()

	lists := f.renderer.Filter(rendertest.CallRenderList)
	if len(lists) != 1 {
		t.Fatalf("expected one render list, got %d", len(lists))
	}

	if lists[0].Target != f.dest {
		t.Errorf("expected scene to be drawn into the destination, got %v", lists[0].Target)
	}

	if lists[0].Camera.Rect != (glm.Rect{X: 0.5, Y: 0, W: 0.5, H: 1}) {
		t.Errorf("expected scene to be drawn with the camera viewport, got %+v", lists[0].Camera.Rect)
	}

	for _, target := range f.renderer.Targets {
		if target.Options.Label == "Pooled" {
			t.Error("expected no pooled target to be allocated")
		}
	}

	if n := f.renderer.Count(rendertest.CallDraw); n != 0 {
		t.Errorf("expected no full screen pass, got %d", n)
	}

	clears := f.renderer.Filter(rendertest.CallClear)
	if len(clears) != 1 || !clears[0].Color || !clears[0].Depth || !clears[0].Stencil {
		t.Errorf("expected a single full clear, got %+v", clears)
	}
}

func TestComposerDirectPathOverlay(t *testing.T) {
	f := newFixture(t, ComposerOptions{})

	f.scene.Add(render.LayerOverlay, &render.Renderable{
		ID:        2,
		Material:  render.NewMaterial(nil),
		Transform: glm.IdentityMat4[float32](),
	})

	f.render()

	if n := f.renderer.Count(rendertest.CallRenderList); n != 2 {
		t.Errorf("expected two render lists, got %d", n)
	}

	clears := f.renderer.Filter(rendertest.CallClear)
	if len(clears) != 2 {
		t.Fatalf("expected two clears, got %d", len(clears))
	}

	if clears[1].Color || !clears[1].Depth {
		t.Errorf("expected a depth only clear before the overlay, got %+v", clears[1])
	}
}

func TestComposerExternalAttachment(t *testing.T) {
	f := newFixture(t, ComposerOptions{})

	sceneTarget := f.composer.SceneBuffer().Output().(*rendertest.Target)

	f.composer.SetExternalColorAttachment(rendertest.Surface{Width: 64, Height: 32})

	if !sceneTarget.External(render.SlotColor0) {
		t.Error("expected external surface to be attached to the scene buffer")
	}

	f.render()

	if n := renderListsInto(f.renderer, "SceneBuffer"); n != 1 {
		t.Errorf("expected scene buffer to render once, got %d", n)
	}

	draws := f.renderer.DrawsOf(CopyProgram)
	if len(draws) != 1 {
		t.Fatalf("expected exactly one copy, got %d", len(draws))
	}

	if draws[0].Target != f.dest {
		t.Errorf("expected copy into the destination, got %v", draws[0].Target)
	}

	if draws[0].Pass.Uniforms["tDiffuse"] != f.composer.SceneBuffer().Output() {
		t.Error("expected copy to sample the scene buffer")
	}

	f.composer.SetExternalColorAttachment(nil)

	if sceneTarget.External(render.SlotColor0) {
		t.Error("expected external surface to be detached")
	}

	f.renderer.Reset()
	f.render()

	if n := f.renderer.Count(rendertest.CallDraw); n != 0 {
		t.Errorf("expected direct rendering without copy, got %d draws", n)
	}
}

func TestComposerDebugPath(t *testing.T) {
	f := newFixture(t, ComposerOptions{})

	effect := newTestEffect(BufferDependency{Key: KeyMarkBuffer, Mask: MaskOpaque})
	f.composer.AddEffect("Outline", effect, 0)

	debugger := &testDebugger{deps: []BufferDependency{{Key: KeyGBuffer}}}
	f.composer.SetDebugger(debugger)

	f.render()

	if len(effect.calls) != 0 {
		t.Error("expected the effect chain to be skipped")
	}

	if len(debugger.outputs) != 1 || debugger.outputs[0] != f.dest {
		t.Errorf("expected debugger to render into the destination, got %v", debugger.outputs)
	}

	if n := renderListsInto(f.renderer, "GBuffer"); n != 1 {
		t.Errorf("expected gbuffer to render once, got %d", n)
	}

	for _, key := range []string{"SceneBuffer", KeyMarkBuffer} {
		if n := renderListsInto(f.renderer, key); n != 0 {
			t.Errorf("expected %s to not render, got %d", key, n)
		}
	}

	marks := f.composer.Buffer(KeyMarkBuffer).(*MarkBuffer)
	if !marks.Attachments().Has("Outline") {
		t.Error("expected channels to be allocated for active effects")
	}

	f.composer.SetDebugger(nil)
	f.render()

	if len(effect.calls) != 1 {
		t.Error("expected the effect chain to run without debugger")
	}
}

func TestComposerRestoresFrameState(t *testing.T) {
	f := newFixture(t, ComposerOptions{})

	viewport := glm.Rect{X: 0.25, Y: 0.25, W: 0.5, H: 0.5}
	clearColor := render.ColorLinearRGBA(0.1, 0.2, 0.3, 0.5)

	f.camera.Rect = viewport
	f.renderer.SetClearColor(clearColor)

	first, last := newTestEffect(), newTestEffect()
	f.composer.AddEffect("first", first, 0)
	f.composer.AddEffect("last", last, 1)

	f.render()

	if f.camera.Rect != viewport {
		t.Errorf("expected viewport %+v to be restored, got %+v", viewport, f.camera.Rect)
	}

	if f.renderer.ClearColor() != clearColor {
		t.Errorf("expected clear color to be restored, got %v", f.renderer.ClearColor())
	}

	for _, call := range f.renderer.Filter(rendertest.CallRenderList) {
		if !call.Camera.Rect.IsFull() {
			t.Errorf("expected buffers to render with a full viewport, got %+v", call.Camera.Rect)
		}
	}

	draws := f.renderer.DrawsOf(CopyProgram)
	if len(draws) != 2 {
		t.Fatalf("expected two passes, got %d", len(draws))
	}

	if !draws[0].Pass.Viewport.IsFull() || draws[0].Pass.Blending != render.BlendNone {
		t.Errorf("expected intermediate pass to be full and opaque, got %+v", draws[0].Pass)
	}

	if draws[1].Pass.Viewport != viewport {
		t.Errorf("expected final pass to use viewport %+v, got %+v", viewport, draws[1].Pass.Viewport)
	}

	if draws[1].Pass.Blending != render.BlendPremultiplied {
		t.Errorf("expected final pass to blend over a translucent clear color, got %d", draws[1].Pass.Blending)
	}
}

func TestComposerFinalPassClearAndBlend(t *testing.T) {
	tests := []struct {
		name       string
		alpha      float32
		clearColor bool
		blending   render.Blending
		clears     int
	}{
		{"opaque", 1, true, render.BlendNone, 1},
		{"translucent", 0.5, true, render.BlendPremultiplied, 1},
		{"keep destination", 1, false, render.BlendPremultiplied, 1},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f := newFixture(t, ComposerOptions{})
			f.composer.ClearColor = test.clearColor

			pass := render.NewShaderPass(CopyProgram)

			f.composer.frameClearColor = render.ColorLinearRGBA(0, 0, 0, test.alpha)
			f.composer.frameViewport = glm.FullRect
			f.composer.SetEffectContextStates(f.dest, pass, true)

			if pass.Blending != test.blending {
				t.Errorf("expected blending %d, got %d", test.blending, pass.Blending)
			}

			clears := f.renderer.Filter(rendertest.CallClear)
			if len(clears) != test.clears {
				t.Fatalf("expected %d clears, got %d", test.clears, len(clears))
			}

			if clears[0].Color != test.clearColor || !clears[0].Depth {
				t.Errorf("unexpected clear %+v", clears[0])
			}
		})
	}
}

func TestComposerCameraJitter(t *testing.T) {
	f := newFixture(t, ComposerOptions{})
	projection := f.camera.Projection

	effect := newTestEffect()
	effect.NeedCameraJitter = true
	f.composer.AddEffect("TAA", effect, 0)

	f.render()

	if f.camera.Projection != projection {
		t.Error("expected projection to be restored")
	}

	lists := f.renderer.Filter(rendertest.CallRenderList)
	if len(lists) == 0 || lists[0].Camera.Projection == projection {
		t.Error("expected buffers to render with a jittered projection")
	}

	if f.composer.CameraJitter().Frame() != 1 {
		t.Errorf("expected jitter frame 1, got %d", f.composer.CameraJitter().Frame())
	}

	effect.NeedCameraJitter = false
	f.renderer.Reset()
	f.render()

	if f.composer.CameraJitter().Frame() != 0 {
		t.Errorf("expected jitter to reset, got frame %d", f.composer.CameraJitter().Frame())
	}

	lists = f.renderer.Filter(rendertest.CallRenderList)
	if lists[0].Camera.Projection != projection {
		t.Error("expected buffers to render without jitter")
	}
}

func TestComposerRemoveEffect(t *testing.T) {
	f := newFixture(t, ComposerOptions{})

	effect := newTestEffect()
	f.composer.AddEffect("A", effect, 0)

	if effect.Handle() == 0 || effect.Name() != "A" {
		t.Fatalf("expected effect to be registered, got %q/%d", effect.Name(), effect.Handle())
	}

	if removed := f.composer.RemoveEffect("A"); removed != effect {
		t.Errorf("expected removed effect to be returned, got %v", removed)
	}

	if f.composer.Effect("A") != nil || effect.Handle() != 0 {
		t.Error("expected effect to be unregistered")
	}

	if f.composer.RemoveEffect("A") != nil {
		t.Error("expected second removal to return nil")
	}

	if effect.disposed {
		t.Error("expected removed effect to not be disposed")
	}
}

func TestComposerHandlesAreUnique(t *testing.T) {
	f := newFixture(t, ComposerOptions{})

	a, b := newTestEffect(), newTestEffect()
	f.composer.AddEffect("A", a, 0)
	f.composer.RemoveEffect("A")
	f.composer.AddEffect("A", a, 0)
	f.composer.AddEffect("B", b, 0)

	if a.Handle() == b.Handle() {
		t.Errorf("expected distinct handles, got %d twice", a.Handle())
	}
}

func TestComposerResize(t *testing.T) {
	f := newFixture(t, ComposerOptions{})

	effect := newTestEffect()
	f.composer.AddEffect("A", effect, 0)
	resizes := effect.resizes

	f.composer.Resize(128, 64)

	if w, h := f.composer.Size(); w != 128 || h != 64 {
		t.Errorf("expected size 128x64, got %dx%d", w, h)
	}

	if effect.resizes != resizes+1 {
		t.Errorf("expected effect to be resized")
	}

	scene := f.composer.SceneBuffer().Output()
	if scene.Width() != 128 || scene.Height() != 64 {
		t.Errorf("expected scene buffer of 128x64, got %dx%d", scene.Width(), scene.Height())
	}

	f.composer.Resize(0, -4)
	if w, h := f.composer.Size(); w != 1 || h != 1 {
		t.Errorf("expected size to be clamped to 1x1, got %dx%d", w, h)
	}
}

func TestComposerResizeSameSize(t *testing.T) {
	f := newFixture(t, ComposerOptions{})

	gbuffer := f.composer.Buffer(KeyGBuffer).(*GBuffer)
	gbuffer.AutoUpdate = false
	gbuffer.NeedsUpdate = false

	f.composer.Resize(64, 32)

	if !gbuffer.NeedsUpdate {
		t.Error("expected gbuffer to be marked for update after resizing to the same size")
	}
}

func TestComposerCacheUsesLogger(t *testing.T) {
	f := newFixture(t, ComposerOptions{})

	f.composer.RenderTargetCache().Allocate(2)

	if !strings.Contains(f.logs.String(), "Allocate new pooled render target") {
		t.Errorf("expected allocation to be logged to the composer logger, got: %s", f.logs.String())
	}
}

func TestComposerDispose(t *testing.T) {
	f := newFixture(t, ComposerOptions{})

	effect := newTestEffect()
	f.composer.AddEffect("A", effect, 0)
	f.composer.AddEffect("B", newTestEffect(), 1)
	f.render()

	f.composer.Dispose()

	if !effect.disposed {
		t.Error("expected effect to be disposed")
	}

	for _, target := range f.renderer.Targets {
		if target != f.dest && !target.Released {
			t.Errorf("expected %s to be released", target)
		}
	}
}

func TestComposerStats(t *testing.T) {
	f := newFixture(t, ComposerOptions{})

	f.composer.AddEffect("A", newTestEffect(BufferDependency{Key: KeyGBuffer}), 0)
	f.composer.AddEffect("B", newTestEffect(), 1)
	f.render()

	var stats Stats
	f.composer.UpdateStats(&stats)

	if stats.Buffers != 2 || stats.Effects != 2 || stats.Frames != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}

	if stats.FBOCache != 2 {
		t.Errorf("expected two pooled targets, got %f", stats.FBOCache)
	}
}
