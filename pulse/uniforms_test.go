package pulse

import (
	"testing"
	"unsafe"

	"github.com/oliverbestmann/postfx/glm"
	"github.com/oliverbestmann/postfx/render"
)

func TestToVec4(t *testing.T) {
	tests := []struct {
		value    any
		expected glm.Vec4f
	}{
		{float32(0.5), glm.Vec4f{0.5, 0, 0, 0}},
		{float64(2), glm.Vec4f{2, 0, 0, 0}},
		{3, glm.Vec4f{3, 0, 0, 0}},
		{true, glm.Vec4f{1, 0, 0, 0}},
		{false, glm.Vec4f{}},
		{glm.Vec2f{1, 2}, glm.Vec4f{1, 2, 0, 0}},
		{glm.Vec3f{1, 2, 3}, glm.Vec4f{1, 2, 3, 0}},
		{glm.Vec4f{1, 2, 3, 4}, glm.Vec4f{1, 2, 3, 4}},
		{render.ColorLinearRGBA(0.25, 0.5, 0.75, 1), glm.Vec4f{0.25, 0.5, 0.75, 1}},
	}

	for _, test := range tests {
		actual, err := ToVec4(test.value)
		if err != nil {
			t.Errorf("%T: unexpected error %s", test.value, err)
			continue
		}

		if actual != test.expected {
			t.Errorf("%T: expected %v, got %v", test.value, test.expected, actual)
		}
	}
}

func TestToVec4Unsupported(t *testing.T) {
	if _, err := ToVec4("red"); err == nil {
		t.Errorf("expected error for string value")
	}
}

func TestPackParams(t *testing.T) {
	program := &render.Program{
		Name:   "test",
		Params: []string{"strength", "direction", "missing"},
	}

	uniforms := render.Uniforms{
		"strength":  float32(0.5),
		"direction": glm.Vec2f{0, 1},
	}

	var out [4]glm.Vec4f
	out[2] = glm.Vec4f{9, 9, 9, 9}

	if err := packParams(program, uniforms, nil, out[:]); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	expected := [4]glm.Vec4f{{0.5, 0, 0, 0}, {0, 1, 0, 0}, {}, {}}
	if out != expected {
		t.Errorf("expected %v, got %v", expected, out)
	}
}

func TestPackParamsTooMany(t *testing.T) {
	program := &render.Program{
		Name:   "test",
		Params: []string{"a", "b", "c"},
	}

	var out [2]glm.Vec4f
	if err := packParams(program, nil, nil, out[:]); err == nil {
		t.Errorf("expected error for too many params")
	}
}

func TestPackParamsMaterialFallback(t *testing.T) {
	material := render.NewMaterial(nil)
	material.Color = render.ColorLinearRGBA(1, 0.5, 0, 1)
	material.Opacity = 0.5
	material.Metalness = 0.25

	program := &render.Program{
		Name:   "test",
		Params: []string{"color", "metalness", "roughness", "custom"},
	}

	var out [4]glm.Vec4f
	if err := packParams(program, render.Uniforms{}, materialParam(material), out[:]); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	expected := [4]glm.Vec4f{{1, 0.5, 0, 0.5}, {0.25, 0, 0, 0}, {1, 0, 0, 0}, {}}
	if out != expected {
		t.Errorf("expected %v, got %v", expected, out)
	}
}

func TestResolveTextureMissing(t *testing.T) {
	program := &render.Program{
		Name:     "test",
		Textures: []string{"tDiffuse"},
	}

	if _, _, err := resolveTextures(program, render.Uniforms{}, nil); err == nil {
		t.Errorf("expected error for missing texture")
	}
}

func TestResolveTextureUnsupported(t *testing.T) {
	if _, err := resolveTexture(42); err == nil {
		t.Errorf("expected error for unsupported texture value")
	}
}

func TestSamplerFilter(t *testing.T) {
	textures := []boundTexture{
		{depth: true, filter: render.FilterNearest},
		{filter: render.FilterLinear},
	}

	if filter := samplerFilter(textures); filter != render.FilterLinear {
		t.Errorf("expected linear filter of the color texture, got %v", filter)
	}

	if filter := samplerFilter(textures[:1]); filter != render.FilterLinear {
		t.Errorf("expected linear filter without color texture, got %v", filter)
	}
}

func TestUniformLayout(t *testing.T) {
	if size := unsafe.Sizeof(passUniforms{}); size != 256 {
		t.Errorf("expected pass uniforms of 256 bytes, got %d", size)
	}

	if size := unsafe.Sizeof(cameraUniforms{}); size != 160 {
		t.Errorf("expected camera uniforms of 160 bytes, got %d", size)
	}

	if size := unsafe.Sizeof(objectUniforms{}); size != 192 {
		t.Errorf("expected object uniforms of 192 bytes, got %d", size)
	}

	if size := unsafe.Sizeof(objectSlot{}); size != 256 {
		t.Errorf("expected object slot of 256 bytes, got %d", size)
	}
}
