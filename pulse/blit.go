package pulse

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/oliverbestmann/postfx/render"
	)

//go:embed shaders/blit.wgsl
var blitShader string

//go:embed shaders/blit_depth.wgsl
var blitDepthShader string

//go:embed shaders/blit_depth_ms.wgsl
var blitDepthMultisampleShader string

var blitProgram = &render.Program{
	Name:     "blit",
	Kind:     render.ProgramFullscreen,
	Source:   blitShader,
	Textures: []string{"tSource"},
}

var blitDepthProgram = &render.Program{
	Name:     "blitDepth",
	Kind:     render.ProgramFullscreen,
	Source:   blitDepthShader,
	Textures: []string{"tDepth"},
}

var blitDepthMultisampleProgram = &render.Program{
	Name:     "blitDepthMultisample",
	Kind:     render.ProgramFullscreen,
	Source:   blitDepthMultisampleShader,
	Textures: []string{"tDepth"},
}

// Blit copies the selected aspects of src into dst. Color is resolved if src
// is a multisample target of the same size and format as dst, otherwise it is
// drawn scaled. Depth is drawn using the depth of the first sample. Stencil
// can not be copied and is skipped.
func (r *Renderer) Blit(src, dst render.RenderTarget, color, depth, stencil bool) {
	srcTarget, ok := src.(*RenderTarget)
	if !ok {
		r.fail(fmt.Errorf("blit from foreign render target %T", src))
		return
	}

	dstTarget, ok := dst.(*RenderTarget)
	if !ok {
		r.fail(fmt.Errorf("blit into foreign render target %T", dst))
		return
	}

	if color {
		if err := r.blitColor(srcTarget.ColorTexture(), dstTarget.ColorTexture()); err != nil {
			r.fail(fmt.Errorf("blit color %q to %q: %w", srcTarget.Label(), dstTarget.Label(), err))
		}
	}

	if depth {
		srcDepth, dstDepth := srcTarget.DepthTexture(), dstTarget.DepthTexture()

		if srcDepth != nil && dstDepth != nil {
			if err := r.blitDepth(srcDepth, dstDepth); err != nil {
				r.fail(fmt.Errorf("blit depth %q to %q: %w", srcTarget.Label(), dstTarget.Label(), err))
			}
		}
	}

	if stencil {
		if srcDepth := srcTarget.DepthTexture(); srcDepth != nil && HasStencil(srcDepth.Format()) {
			r.logger.Debug("Skip stencil blit", slog.String("src", srcTarget.Label()))
		}
	}
}

func (r *Renderer) blitColor(src, dst *Texture) error {
	if src == nil || dst == nil {
		return errors.New("missing color texture")
	}

	if src.SampleCount() > 1 {
		if dst.SampleCount() != 1 || src.Width() != dst.Width() || src.Height() != dst.Height() || src.Format() != dst.Format() {
			return fmt.Errorf("can only resolve into a single sample texture of the same size and format")
		}

		return r.resolve(src, dst)
	}

	target, err := mipTarget(dst, 0)
	if err != nil {
		return err
	}

	pass := render.NewShaderPass(blitProgram)
	pass.Uniforms["tSource"] = src

	return r.drawFullscreen(target, pass)
}

// resolve resolves a multisample texture using an empty render pass.
func (r *Renderer) resolve(src, dst *Texture) error {
	srcView, err := src.RenderView()
	if err != nil {
		return err
	}

	dstView, err := dst.RenderView()
	if err != nil {
		return err
	}

	target := passTarget{
		label:   "Resolve",
		color:   srcView,
		resolve: dstView,
		layout: targetLayout{
			ColorFormat: src.Format(),
			SampleCount: src.SampleCount(),
		},
	}

	return r.encodePass(target, "Resolve", clearOps{}, nil)
}

func (r *Renderer) blitDepth(src, dst *Texture) error {
	if dst.SampleCount() != 1 {
		return fmt.Errorf("can not blit depth into a multisample texture")
	}

	program := blitDepthProgram
	if src.SampleCount() > 1 {
		program = blitDepthMultisampleProgram
	}

	target, err := depthTarget(dst)
	if err != nil {
		return err
	}

	pass := render.NewShaderPass(program)
	pass.Uniforms["tDepth"] = src
	pass.DepthWrite = true

	return r.drawFullscreen(target, pass)
}

// UpdateMipmap regenerates the mip chain of the targets color texture by
// downsampling each level into the next one.
func (r *Renderer) UpdateMipmap(target render.RenderTarget) {
	rt, ok := target.(*RenderTarget)
	if !ok {
		r.fail(fmt.Errorf("update mipmap of foreign render target %T", target))
		return
	}

	texture := rt.ColorTexture()
	if texture == nil {
		r.fail(fmt.Errorf("update mipmap of %q: no color texture", rt.Label()))
		return
	}

	for level := uint32(1); level < texture.MipLevels(); level++ {
		if err := r.downsample(texture, level); err != nil {
			r.fail(fmt.Errorf("update mip level %d of %q: %w", level, rt.Label(), err))
			return
		}
	}
}

// downsample draws the previous mip level into the given level.
func (r *Renderer) downsample(texture *Texture, level uint32) error {
	target, err := mipTarget(texture, level)
	if err != nil {
		return err
	}

	pass := render.NewShaderPass(blitProgram)
	pass.Uniforms["tSource"] = mipSource{texture: texture, level: level - 1}

	return r.drawFullscreen(target, pass)
}
