package effects

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/oliverbestmann/postfx/fx"
	"github.com/oliverbestmann/postfx/glm"
	"github.com/oliverbestmann/postfx/render"
	"github.com/oliverbestmann/postfx/render/rendertest"
)

type fixture struct {
	renderer *rendertest.Renderer
	composer *fx.Composer
	scene    *render.StaticScene
	camera   *render.Camera
	dest     render.RenderTarget
	logs     *bytes.Buffer
}

func newFixture(t *testing.T, opts fx.ComposerOptions) *fixture {
	t.Helper()

	var logs bytes.Buffer

	opts.Width, opts.Height = 64, 32
	opts.Logger = slog.New(slog.NewTextHandler(&logs, nil))

	r := &rendertest.Renderer{}

	dest := r.NewRenderTarget(render.RenderTargetOptions{
		Label:  "Destination",
		Width:  64,
		Height: 32,
		Depth:  render.Depth24PlusStencil8,
	})

	projection := glm.Perspective[float32](glm.DegToRad(60), 2, 0.1, 100)
	camera := render.NewCamera(glm.TranslationMat4[float32](0, 0, -5), projection, 0.1, 100)

	scene := &render.StaticScene{}
	scene.Add(render.LayerDefault, &render.Renderable{
		ID:        1,
		Material:  render.NewMaterial(nil),
		Transform: glm.IdentityMat4[float32](),
	})

	return &fixture{
		renderer: r,
		composer: fx.NewComposer(r, opts),
		scene:    scene,
		camera:   camera,
		dest:     dest,
		logs:     &logs,
	}
}

func (f *fixture) render() {
	f.renderer.Reset()
	f.composer.Render(f.scene, f.camera, f.dest)
}

func labelOf(target render.RenderTarget) string {
	if target, ok := target.(*rendertest.Target); ok {
		return target.Options.Label
	}

	return ""
}

func TestColorCorrection(t *testing.T) {
	f := newFixture(t, fx.ComposerOptions{})

	effect := NewColorCorrectionEffect()
	effect.Exposure = 2
	effect.Saturation = 0.5

	f.composer.AddEffect("color", effect, 0)
	f.render()

	draws := f.renderer.DrawsOf(colorCorrectionProgram)
	if len(draws) != 1 {
		t.Fatalf("expected one draw, got %d", len(draws))
	}

	draw := draws[0]

	if draw.Target != f.dest {
		t.Errorf("expected draw into destination, got %q", labelOf(draw.Target))
	}

	if draw.Pass.Uniforms["tDiffuse"] != f.composer.SceneBuffer().Output() {
		t.Errorf("expected scene buffer as input")
	}

	expected := glm.Vec4f{2, 1, 0.5, 1}
	if actual := draw.Pass.Uniforms["correction"]; actual != expected {
		t.Errorf("expected correction %v, got %v", expected, actual)
	}
}

func TestBloomChain(t *testing.T) {
	f := newFixture(t, fx.ComposerOptions{})

	effect := NewBloomEffect()
	effect.Levels = 3

	f.composer.AddEffect("bloom", effect, 0)
	f.render()

	threshold := f.renderer.DrawsOf(bloomThresholdProgram)
	if len(threshold) != 1 {
		t.Fatalf("expected one threshold draw, got %d", len(threshold))
	}

	if target := threshold[0].Target; target.Width() != 32 || target.Height() != 16 {
		t.Errorf("expected threshold at half size, got %dx%d", target.Width(), target.Height())
	}

	blur := f.renderer.DrawsOf(bloomBlurProgram)
	if len(blur) != 4 {
		t.Fatalf("expected 4 blur draws, got %d", len(blur))
	}

	expectedWidths := []int{16, 8, 16, 32}
	for idx, draw := range blur {
		if draw.Target.Width() != expectedWidths[idx] {
			t.Errorf("blur %d: expected width %d, got %d", idx, expectedWidths[idx], draw.Target.Width())
		}

		additive := idx >= 2
		if (draw.Pass.Blending == render.BlendAdditive) != additive {
			t.Errorf("blur %d: expected additive %v, got blending %v", idx, additive, draw.Pass.Blending)
		}
	}

	composite := f.renderer.DrawsOf(bloomCompositeProgram)
	if len(composite) != 1 {
		t.Fatalf("expected one composite draw, got %d", len(composite))
	}

	if composite[0].Target != f.dest {
		t.Errorf("expected composite into destination")
	}

	if composite[0].Pass.Uniforms["tBloom"] != threshold[0].Target {
		t.Errorf("expected composite to sample the largest bloom level")
	}

	cache := f.composer.RenderTargetCache()
	for level := 1; level <= 3; level++ {
		if free := cache.Free(level); free != 1 {
			t.Errorf("level %d: expected one pooled target, got %d", level, free)
		}
	}
}

func TestOutlineChannels(t *testing.T) {
	f := newFixture(t, fx.ComposerOptions{})

	first := NewOutlineEffect()
	second := NewOutlineEffect()

	f.composer.AddEffect("first", first, 0)
	f.composer.AddEffect("second", second, 1)

	f.scene.Add(render.LayerDefault, &render.Renderable{
		ID:        2,
		Material:  render.NewMaterial(nil),
		Transform: glm.IdentityMat4[float32](),
		Effects:   render.EffectMarks{second.Handle(): 1},
	})

	f.render()

	draws := f.renderer.DrawsOf(outlineProgram)
	if len(draws) != 2 {
		t.Fatalf("expected two outline draws, got %d", len(draws))
	}

	markBuffer := f.composer.Buffer(fx.KeyMarkBuffer).(*fx.MarkBuffer)

	expected := []glm.Vec4f{{1, 0, 0, 0}, {0, 1, 0, 0}}
	for idx, draw := range draws {
		if actual := draw.Pass.Uniforms["visibleChannel"]; actual != expected[idx] {
			t.Errorf("draw %d: expected channel %v, got %v", idx, expected[idx], actual)
		}

		if draw.Pass.Uniforms["tVisible"] != markBuffer.OutputAt(0) {
			t.Errorf("draw %d: expected first mark attachment", idx)
		}
	}

	if draws[1].Target != f.dest {
		t.Errorf("expected last outline to draw into destination")
	}
}

func TestOutlineWithoutChannel(t *testing.T) {
	f := newFixture(t, fx.ComposerOptions{MaxMarkAttachments: 1})

	var outlines []*OutlineEffect
	for idx, name := range []string{"a", "b", "c", "d", "e"} {
		outline := NewOutlineEffect()
		outlines = append(outlines, outline)
		f.composer.AddEffect(name, outline, idx)
	}

	f.render()

	draws := f.renderer.DrawsOf(outlineProgram)
	if len(draws) != 5 {
		t.Fatalf("expected five outline draws, got %d", len(draws))
	}

	last := draws[4]

	if actual := last.Pass.Uniforms["visibleChannel"]; actual != (glm.Vec4f{}) {
		t.Errorf("expected empty selector, got %v", actual)
	}

	if last.Pass.Uniforms["tVisible"] != last.Pass.Uniforms["tDiffuse"] {
		t.Errorf("expected input to be bound in place of the mark target")
	}

	if !strings.Contains(f.logs.String(), "Too many effects use mark buffer") {
		t.Errorf("expected overflow to be logged")
	}
}

func TestAmbientOcclusion(t *testing.T) {
	f := newFixture(t, fx.ComposerOptions{})

	effect := NewAmbientOcclusionEffect(f.camera)
	f.composer.AddEffect("ao", effect, 0)
	f.render()

	gbuffer := f.composer.Buffer(fx.KeyGBuffer).(*fx.GBuffer)

	occlusion := f.renderer.DrawsOf(ambientOcclusionProgram)
	if len(occlusion) != 1 {
		t.Fatalf("expected one occlusion draw, got %d", len(occlusion))
	}

	draw := occlusion[0]

	if draw.Target.Width() != 32 || draw.Target.Height() != 16 {
		t.Errorf("expected occlusion at half size, got %dx%d", draw.Target.Width(), draw.Target.Height())
	}

	if draw.Pass.Uniforms["tNormal"] != gbuffer.Output() {
		t.Errorf("expected gbuffer normals")
	}

	if draw.Pass.Uniforms["tDepth"] != (render.DepthOf{Target: gbuffer.DepthTarget()}) {
		t.Errorf("expected gbuffer depth")
	}

	projection := f.camera.Projection
	expected := glm.Vec4f{0.1, 100, 1 / projection[0], 1 / projection[5]}
	if actual := draw.Pass.Uniforms["projection"]; actual != expected {
		t.Errorf("expected projection %v, got %v", expected, actual)
	}

	composite := f.renderer.DrawsOf(ambientOcclusionCompositeProgram)
	if len(composite) != 1 {
		t.Fatalf("expected one composite draw, got %d", len(composite))
	}

	if composite[0].Pass.Uniforms["tOcclusion"] != draw.Target {
		t.Errorf("expected composite to sample the occlusion target")
	}

	if f.composer.RenderTargetCache().Free(1) != 1 {
		t.Errorf("expected occlusion target to be returned to the pool")
	}
}

func TestAmbientOcclusionWithoutCamera(t *testing.T) {
	f := newFixture(t, fx.ComposerOptions{})

	f.composer.AddEffect("ao", NewAmbientOcclusionEffect(nil), 0)

	f.render()
	f.render()

	if count := len(f.renderer.DrawsOf(fx.CopyProgram)); count != 1 {
		t.Errorf("expected one copy draw in the last frame, got %d", count)
	}

	if count := len(f.renderer.DrawsOf(ambientOcclusionProgram)); count != 0 {
		t.Errorf("expected no occlusion draw, got %d", count)
	}

	if count := strings.Count(f.logs.String(), "Skip ambient occlusion"); count != 1 {
		t.Errorf("expected warning to be logged once, got %d", count)
	}
}

func TestTAAAccumulates(t *testing.T) {
	f := newFixture(t, fx.ComposerOptions{})

	effect := NewTAAEffect()
	f.composer.AddEffect("taa", effect, 0)

	weights := []float32{1, 0.5, float32(1) / 3}

	var previous render.RenderTarget

	for frame, expected := range weights {
		f.render()

		draws := f.renderer.DrawsOf(accumulateProgram)
		if len(draws) != 1 {
			t.Fatalf("frame %d: expected one accumulate draw, got %d", frame, len(draws))
		}

		draw := draws[0]

		if actual := draw.Pass.Uniforms["weight"]; actual != expected {
			t.Errorf("frame %d: expected weight %f, got %v", frame, expected, actual)
		}

		if previous != nil && draw.Pass.Uniforms["tHistory"] != previous {
			t.Errorf("frame %d: expected history of the previous frame", frame)
		}

		if draw.Target != effect.History() {
			t.Errorf("frame %d: expected accumulation into the history", frame)
		}

		previous = draw.Target
	}

	f.composer.CameraJitter().Reset()
	f.render()

	draw := f.renderer.DrawsOf(accumulateProgram)[0]
	if actual := draw.Pass.Uniforms["weight"]; actual != float32(1) {
		t.Errorf("expected history to restart after reset, got weight %v", actual)
	}
}

func TestTAARestartsAtFrameZero(t *testing.T) {
	// a single frame sequence never leaves frame zero
	f := newFixture(t, fx.ComposerOptions{JitterFrames: 1})

	effect := NewTAAEffect()
	f.composer.AddEffect("taa", effect, 0)

	weightOf := func() any {
		f.renderer.Reset()
		f.render()
		return f.renderer.DrawsOf(accumulateProgram)[0].Pass.Uniforms["weight"]
	}

	weightOf()
	if weight := weightOf(); weight != float32(0.5) {
		t.Fatalf("expected second frame weight 0.5, got %v", weight)
	}

	f.composer.CameraJitter().Reset()

	if weight := weightOf(); weight != float32(1) {
		t.Errorf("expected history to restart after reset at frame zero, got weight %v", weight)
	}
}

func TestTAAJittersCamera(t *testing.T) {
	f := newFixture(t, fx.ComposerOptions{})

	f.composer.AddEffect("taa", NewTAAEffect(), 0)

	original := f.camera.Projection
	f.render()

	for _, call := range f.renderer.Filter(rendertest.CallRenderList) {
		if labelOf(call.Target) == "SceneBuffer" && call.Camera.Projection == original {
			t.Errorf("expected jittered projection while rendering the scene")
		}
	}

	if f.camera.Projection != original {
		t.Errorf("expected projection to be restored")
	}
}

func TestBufferDebugger(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		mode    DebugMode
		program *render.Program
	}{
		{"color", fx.KeySceneBuffer, DebugColor, debugProgram},
		{"normal", fx.KeyGBuffer, DebugNormal, debugProgram},
		{"roughness", fx.KeyGBuffer, DebugRoughness, debugProgram},
		{"depth", fx.KeyGBuffer, DebugDepth, debugDepthProgram},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f := newFixture(t, fx.ComposerOptions{})

			f.composer.SetDebugger(NewBufferDebugger(test.key, test.mode))
			f.render()

			draws := f.renderer.DrawsOf(test.program)
			if len(draws) != 1 {
				t.Fatalf("expected one debug draw, got %d", len(draws))
			}

			draw := draws[0]
			if draw.Target != f.dest {
				t.Errorf("expected debug draw into destination")
			}

			buffer := f.composer.Buffer(test.key)

			if test.mode == DebugDepth {
				gbuffer := buffer.(*fx.GBuffer)
				if draw.Pass.Uniforms["tDepth"] != (render.DepthOf{Target: gbuffer.DepthTarget()}) {
					t.Errorf("expected depth of the gbuffer")
				}

				return
			}

			if draw.Pass.Uniforms["tSource"] != buffer.Output() {
				t.Errorf("expected output of %s", test.key)
			}

			if draw.Pass.Uniforms["mode"] != int(test.mode) {
				t.Errorf("expected mode %d, got %v", test.mode, draw.Pass.Uniforms["mode"])
			}
		})
	}
}

func TestBufferDebuggerMark(t *testing.T) {
	f := newFixture(t, fx.ComposerOptions{})

	f.composer.AddEffect("first", NewOutlineEffect(), 0)
	f.composer.AddEffect("second", NewOutlineEffect(), 1)

	debugger := NewBufferDebugger(fx.KeyMarkBuffer, DebugMark)
	debugger.Effect = "second"

	f.composer.SetDebugger(debugger)
	f.render()

	draws := f.renderer.DrawsOf(debugProgram)
	if len(draws) != 1 {
		t.Fatalf("expected one debug draw, got %d", len(draws))
	}

	markBuffer := f.composer.Buffer(fx.KeyMarkBuffer).(*fx.MarkBuffer)

	if draws[0].Pass.Uniforms["tSource"] != markBuffer.OutputAt(0) {
		t.Errorf("expected first mark attachment")
	}

	expected := glm.Vec4f{0, 1, 0, 0}
	if actual := draws[0].Pass.Uniforms["channel"]; actual != expected {
		t.Errorf("expected channel %v, got %v", expected, actual)
	}

	if count := len(f.renderer.DrawsOf(outlineProgram)); count != 0 {
		t.Errorf("expected no effect to run while debugging, got %d draws", count)
	}
}

func TestBufferDebuggerMissingBuffer(t *testing.T) {
	f := newFixture(t, fx.ComposerOptions{})

	var logs bytes.Buffer

	debugger := NewBufferDebugger("Unknown", DebugColor)
	debugger.Logger = slog.New(slog.NewTextHandler(&logs, nil))

	f.composer.SetDebugger(debugger)

	f.render()
	f.render()

	if count := f.renderer.Count(rendertest.CallDraw); count != 0 {
		t.Errorf("expected no draw, got %d", count)
	}

	if count := f.renderer.Count(rendertest.CallClear); count != 1 {
		t.Errorf("expected destination to be cleared, got %d clears", count)
	}

	if count := strings.Count(logs.String(), "Debugged buffer is not registered"); count != 1 {
		t.Errorf("expected missing buffer to be logged once, got %d", count)
	}
}

func TestBufferDebuggerUsesComposerLogger(t *testing.T) {
	f := newFixture(t, fx.ComposerOptions{})

	f.composer.SetDebugger(NewBufferDebugger("Unknown", DebugColor))
	f.render()

	if !strings.Contains(f.logs.String(), "Debugged buffer is not registered") {
		t.Errorf("expected warning in the composer log, got: %s", f.logs.String())
	}
}
