package glm

import (
	"math"
	"testing"
)

func TestHalton(t *testing.T) {
	tests := []struct {
		index, base int
		want        float32
	}{
		{0, 2, 0},
		{1, 2, 0.5},
		{2, 2, 0.25},
		{3, 2, 0.75},
		{1, 3, 1.0 / 3.0},
		{2, 3, 2.0 / 3.0},
		{3, 3, 1.0 / 9.0},
	}

	for _, tt := range tests {
		got := Halton(tt.index, tt.base)
		if math.Abs(float64(got-tt.want)) > 1e-6 {
			t.Errorf("Halton(%d, %d): expected %f, got %f", tt.index, tt.base, tt.want, got)
		}
	}
}

func TestIsPerspective(t *testing.T) {
	persp := Perspective[float32](DegToRad(60), 1.5, 0.1, 100)
	if !persp.IsPerspective() {
		t.Error("expected perspective projection to be detected")
	}

	ortho := Orthographic[float32](-1, 1, -1, 1, 0.1, 100)
	if ortho.IsPerspective() {
		t.Error("expected orthographic projection to not be perspective")
	}

	if !Perspective[float64](DegToRad(45), 1, 1, 10).IsPerspective() {
		t.Error("expected float64 perspective projection to be detected")
	}

	if !(Mat4[int]{11: -1}).IsPerspective() {
		t.Error("expected integer matrix with w = -z to be perspective")
	}

	if IdentityMat4[uint32]().IsPerspective() {
		t.Error("expected unsigned identity to not be perspective")
	}
}

func TestOffsetProjection(t *testing.T) {
	for _, proj := range []Mat4f{
		Perspective[float32](DegToRad(60), 1, 0.1, 100),
		Orthographic[float32](-1, 1, -1, 1, 0.1, 100),
	} {
		point := Vec4f{0.3, -0.2, -5, 1}

		clip := proj.Transform(point)
		shifted := proj.OffsetProjection(0.01, -0.02).Transform(point)

		dx := shifted[0]/shifted[3] - clip[0]/clip[3]
		dy := shifted[1]/shifted[3] - clip[1]/clip[3]

		if math.Abs(float64(dx-0.01)) > 1e-5 || math.Abs(float64(dy+0.02)) > 1e-5 {
			t.Errorf("expected ndc offset (0.01, -0.02), got (%f, %f)", dx, dy)
		}
	}
}

func TestMulIdentity(t *testing.T) {
	m := TranslationMat4[float32](1, 2, 3).Scale(2, 2, 2)

	if got := IdentityMat4[float32]().Mul(m); got != m {
		t.Errorf("expected identity * m == m, got %v", got)
	}

	p := m.TransformPoint(Vec3f{1, 1, 1})
	if p != (Vec3f{3, 4, 5}) {
		t.Errorf("expected (3, 4, 5), got %v", p)
	}
}

func TestRectPixels(t *testing.T) {
	x, y, w, h := Rect{0.5, 0, 0.5, 1}.Pixels(800, 600)
	if x != 400 || y != 0 || w != 400 || h != 600 {
		t.Errorf("expected 400,0,400,600 got %d,%d,%d,%d", x, y, w, h)
	}

	x, y, w, h = Rect{0.75, 0.5, 1, 1}.Pixels(100, 100)
	if x != 75 || y != 50 || w != 25 || h != 50 {
		t.Errorf("expected clamped 75,50,25,50 got %d,%d,%d,%d", x, y, w, h)
	}
}
