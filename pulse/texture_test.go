package pulse

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/oliverbestmann/postfx/render"
)

func TestMipViewOutOfRange(t *testing.T) {
	texture := &Texture{width: 64, height: 64, mipLevels: 3}

	if _, err := texture.MipView(3); err == nil {
		t.Errorf("expected error for mip level 3 of a texture with 3 levels")
	}
}

func TestTargetWithoutTextures(t *testing.T) {
	// what NewRenderTarget returns after a failed allocation
	target := &RenderTarget{opts: render.RenderTargetOptions{Label: "Broken"}, width: 4, height: 4, owned: true}

	if _, err := targetOf(target); err == nil {
		t.Errorf("expected error binding a target without color texture")
	}

	_, err := resolveTexture(render.RenderTarget(target))
	if err == nil || !strings.Contains(err.Error(), "no color texture") {
		t.Errorf("expected missing color texture error, got %v", err)
	}

	_, err = resolveTexture(render.DepthOf{Target: target})
	if err == nil || !strings.Contains(err.Error(), "has no depth") {
		t.Errorf("expected missing depth error, got %v", err)
	}

	// releasing must not touch the missing textures
	target.Release()
}

func TestRendererRequiresTarget(t *testing.T) {
	r := &Renderer{logger: slog.New(slog.DiscardHandler)}

	r.Clear(true, true, true)

	if r.Err() != errNoRenderTarget {
		t.Errorf("expected %v, got %v", errNoRenderTarget, r.Err())
	}

	r.SetRenderTarget(&RenderTarget{opts: render.RenderTargetOptions{Label: "Broken"}})
	r.Draw(render.NewShaderPass(blitProgram))

	// the first error sticks
	if r.Err() != errNoRenderTarget {
		t.Errorf("expected first error to be kept, got %v", r.Err())
	}
}
