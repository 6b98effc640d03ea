package pulse

import (
	"fmt"
	"log/slog"

	"github.com/oliverbestmann/webgpu/wgpu"
)

// View configures the surface of a Context and hands out a render target
// for the current surface texture each frame.
type View struct {
	*Context

	surfaceConfig *wgpu.SurfaceConfiguration

	// depth texture of the screen target, same size as the surface
	depthTexture *Texture

	// surface texture acquired for the current frame
	current *wgpu.Texture
}

func NewView(ctx *Context) (*View, error) {
	caps := ctx.Surface.GetCapabilities(ctx.Adapter)
	slog.Info("Available surface formats", slog.Any("formats", caps.Formats))

	if len(caps.AlphaModes) == 0 {
		return nil, fmt.Errorf("surface does not support any alpha mode")
	}

	view := &View{
		Context: ctx,
		surfaceConfig: &wgpu.SurfaceConfiguration{
			Usage:       wgpu.TextureUsageRenderAttachment,
			Format:      wgpu.TextureFormatBGRA8Unorm,
			PresentMode: wgpu.PresentModeFifo,
			AlphaMode:   caps.AlphaModes[0],

			// try to reduce input latency
			DesiredMaximumFrameLatency: 1,
		},
	}

	return view, nil
}

// Configure resizes the surface and the screen depth texture.
func (v *View) Configure(width, height uint32) error {
	width = max(width, 1)
	height = max(height, 1)

	v.surfaceConfig.Width = width
	v.surfaceConfig.Height = height
	v.Surface.Configure(v.Device, v.surfaceConfig)

	if v.depthTexture != nil {
		v.depthTexture.Release()
		v.depthTexture = nil
	}

	depthTexture, err := NewTexture(v.Context, NewTextureOptions{
		Label:  "Screen.Depth",
		Format: wgpu.TextureFormatDepth24PlusStencil8,
		Width:  int(width),
		Height: int(height),
	})

	if err != nil {
		return fmt.Errorf("configure view: %w", err)
	}

	v.depthTexture = depthTexture

	return nil
}

// Acquire returns a render target for the next surface texture. The
// target is only valid until Present is called.
func (v *View) Acquire() (*RenderTarget, error) {
	if v.depthTexture == nil {
		return nil, fmt.Errorf("view is not configured")
	}

	texture, err := v.Surface.GetCurrentTexture()
	if err != nil {
		return nil, fmt.Errorf("get current texture: %w", err)
	}

	textureView, err := texture.CreateView(nil)
	if err != nil {
		texture.Release()
		return nil, fmt.Errorf("create view of surface texture: %w", err)
	}

	v.current = texture

	color := WrapTexture(texture, textureView)

	return WrapRenderTarget("Screen", color, v.depthTexture), nil
}

// Present shows the surface texture acquired by Acquire.
func (v *View) Present(target *RenderTarget) {
	if v.current == nil {
		return
	}

	v.Surface.Present()

	if target != nil {
		target.ColorTexture().Release()
	}

	v.current.Release()
	v.current = nil
}

func (v *View) Release() {
	if v.depthTexture != nil {
		v.depthTexture.Release()
		v.depthTexture = nil
	}
}
