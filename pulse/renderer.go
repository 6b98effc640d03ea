package pulse

import (
	"errors"
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/oliverbestmann/postfx/glm"
	"github.com/oliverbestmann/postfx/render"
	"github.com/oliverbestmann/webgpu/wgpu"
)

var errNoRenderTarget = errors.New("no render target bound")

type RendererOptions struct {
	// Number of pipelines to keep per pipeline kind, defaults to 64.
	PipelineCacheSize int

	// Defaults to slog.Default()
	Logger *slog.Logger
}

func (opts RendererOptions) withDefaults() RendererOptions {
	if opts.PipelineCacheSize == 0 {
		opts.PipelineCacheSize = 64
	}

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return opts
}

// Renderer implements render.Renderer on top of webgpu. Every call is encoded
// into its own command buffer and submitted right away.
//
// Calls never fail. Invalid input, like a missing texture or an unsupported
// uniform type, skips the offending draw and is reported by Err.
type Renderer struct {
	ctx    *Context
	logger *slog.Logger

	current    *RenderTarget
	clearColor render.Color

	fullscreen *PipelineCache[fullscreenPipelineConfig]
	meshes     *PipelineCache[meshPipelineConfig]

	bufPass    *wgpu.Buffer
	bufCamera  *wgpu.Buffer
	bufObjects *wgpu.Buffer

	// capacity of bufObjects in objects
	objectCapacity int

	// sampled if a material does not provide an optional texture
	white *Texture

	err error
}

var _ render.Renderer = &Renderer{}

func NewRenderer(ctx *Context, opts RendererOptions) (*Renderer, error) {
	opts = opts.withDefaults()

	r := &Renderer{
		ctx:        ctx,
		logger:     opts.Logger,
		clearColor: render.ColorBlack,
		fullscreen: NewPipelineCache[fullscreenPipelineConfig](ctx, opts.PipelineCacheSize),
		meshes:     NewPipelineCache[meshPipelineConfig](ctx, opts.PipelineCacheSize),
	}

	var err error

	r.bufPass, err = ctx.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Pass.Uniforms",
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		Size:  uint64(unsafe.Sizeof(passUniforms{})),
	})

	if err != nil {
		return nil, fmt.Errorf("create pass uniforms: %w", err)
	}

	r.bufCamera, err = ctx.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Camera.Uniforms",
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		Size:  uint64(unsafe.Sizeof(cameraUniforms{})),
	})

	if err != nil {
		r.Release()
		return nil, fmt.Errorf("create camera uniforms: %w", err)
	}

	r.white, err = NewTexture(ctx, NewTextureOptions{
		Label:  "White",
		Format: wgpu.TextureFormatRGBA8Unorm,
		Width:  1,
		Height: 1,
	})

	if err != nil {
		r.Release()
		return nil, fmt.Errorf("create fallback texture: %w", err)
	}

	// fill the fallback texture once
	r.SetRenderTarget(WrapRenderTarget("White", r.white, nil))
	r.SetClearColor(render.ColorWhite)
	r.Clear(true, false, false)

	r.SetRenderTarget(nil)
	r.SetClearColor(render.ColorBlack)

	if r.err != nil {
		r.Release()
		return nil, r.err
	}

	return r, nil
}

// Err returns the first error that occurred while rendering.
func (r *Renderer) Err() error {
	return r.err
}

func (r *Renderer) fail(err error) {
	if r.err == nil {
		r.logger.Error("Render call failed", slog.String("err", err.Error()))
		r.err = err
	}
}

func (r *Renderer) Context() *Context {
	return r.ctx
}

// NewRenderTarget implements render.TargetFactory. Allocation failures
// are reported through Err, the returned target has no textures then.
func (r *Renderer) NewRenderTarget(opts render.RenderTargetOptions) render.RenderTarget {
	target, err := NewRenderTarget(r.ctx, opts)
	if err != nil {
		r.fail(err)
	}

	return target
}

func (r *Renderer) SetRenderTarget(target render.RenderTarget) {
	if target == nil {
		r.current = nil
		return
	}

	rt, ok := target.(*RenderTarget)
	if !ok {
		r.fail(fmt.Errorf("foreign render target %T", target))
		r.current = nil
		return
	}

	r.current = rt
}

func (r *Renderer) RenderTarget() render.RenderTarget {
	// do not return a typed nil
	if r.current == nil {
		return nil
	}

	return r.current
}

func (r *Renderer) SetClearColor(color render.Color) {
	r.clearColor = color
}

func (r *Renderer) ClearColor() render.Color {
	return r.clearColor
}

func (r *Renderer) currentPassTarget() (passTarget, bool) {
	if r.current == nil {
		r.fail(errNoRenderTarget)
		return passTarget{}, false
	}

	target, err := targetOf(r.current)
	if err != nil {
		r.fail(fmt.Errorf("bind %q: %w", r.current.Label(), err))
		return passTarget{}, false
	}

	return target, true
}

// targetOf builds the pass target for the first mip level of the targets attachments.
func targetOf(rt *RenderTarget) (passTarget, error) {
	color := rt.ColorTexture()
	if color == nil {
		return passTarget{}, errors.New("render target has no color texture")
	}

	colorView, err := color.RenderView()
	if err != nil {
		return passTarget{}, err
	}

	target := passTarget{
		label:  rt.Label(),
		color:  colorView,
		width:  color.Width(),
		height: color.Height(),
		layout: targetLayout{
			ColorFormat: color.Format(),
			SampleCount: color.SampleCount(),
		},
	}

	if depth := rt.DepthTexture(); depth != nil && depth.SampleCount() == color.SampleCount() {
		depthView, err := depth.RenderView()
		if err != nil {
			return passTarget{}, err
		}

		target.depth = depthView
		target.layout.DepthFormat = depth.Format()
	}

	return target, nil
}

// mipTarget builds a color only pass target for a single mip level.
func mipTarget(texture *Texture, level uint32) (passTarget, error) {
	view, err := texture.MipView(level)
	if err != nil {
		return passTarget{}, err
	}

	width, height := texture.MipSize(level)

	return passTarget{
		label:  "MipLevel",
		color:  view,
		width:  width,
		height: height,
		layout: targetLayout{
			ColorFormat: texture.Format(),
			SampleCount: texture.SampleCount(),
		},
	}, nil
}

// depthTarget builds a depth only pass target.
func depthTarget(texture *Texture) (passTarget, error) {
	view, err := texture.RenderView()
	if err != nil {
		return passTarget{}, err
	}

	return passTarget{
		label:  "Depth",
		depth:  view,
		width:  texture.Width(),
		height: texture.Height(),
		layout: targetLayout{
			DepthFormat: texture.Format(),
			SampleCount: texture.SampleCount(),
		},
	}, nil
}

func setViewport(pass *wgpu.RenderPassEncoder, rect glm.Rect, width, height int) bool {
	if rect.W == 0 && rect.H == 0 {
		rect = glm.FullRect
	}

	x, y, w, h := rect.Pixels(width, height)
	if w == 0 || h == 0 {
		return false
	}

	pass.SetViewport(float32(x), float32(y), float32(w), float32(h), 0, 1)

	return true
}

// Draw runs a full screen shader pass into the current render target.
func (r *Renderer) Draw(pass *render.ShaderPass) {
	target, ok := r.currentPassTarget()
	if !ok {
		return
	}

	if err := r.drawFullscreen(target, pass); err != nil {
		r.fail(fmt.Errorf("draw %q into %q: %w", pass.Program.Name, target.label, err))
	}
}

func (r *Renderer) drawFullscreen(target passTarget, pass *render.ShaderPass) error {
	program := pass.Program
	if program.Kind != render.ProgramFullscreen {
		return fmt.Errorf("program %q is not a full screen program", program.Name)
	}

	var uniforms passUniforms
	if err := packParams(program, pass.Uniforms, nil, uniforms.Params[:]); err != nil {
		return err
	}

	textures, layout, err := resolveTextures(program, pass.Uniforms, nil)
	if err != nil {
		return err
	}

	pc, err := r.fullscreen.Get(fullscreenPipelineConfig{
		Program:    program,
		Target:     target.layout,
		Textures:   layout,
		Blending:   pass.Blending,
		DepthWrite: pass.DepthWrite,
	})

	if err != nil {
		return err
	}

	sampler, err := CachedSampler(r.ctx.Device, samplerDescriptor(samplerFilter(textures)))
	if err != nil {
		return err
	}

	entries := []wgpu.BindGroupEntry{
		{
			Binding: 0,
			Sampler: sampler,
		},
		{
			Binding: 1,
			Buffer:  r.bufPass,
			Size:    wgpu.WholeSize,
		},
	}

	for idx, texture := range textures {
		view, err := texture.view()
		if err != nil {
			return fmt.Errorf("bind %q: %w", program.Textures[idx], err)
		}

		entries = append(entries, wgpu.BindGroupEntry{
			Binding:     uint32(2 + idx),
			TextureView: view,
		})
	}

	bindGroup, err := r.ctx.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   program.Name,
		Layout:  pc.GetBindGroupLayout(0),
		Entries: entries,
	})

	if err != nil {
		return fmt.Errorf("create bind group: %w", err)
	}

	defer bindGroup.Release()

	if err := r.ctx.WriteBuffer(r.bufPass, 0, AsByteSlice(&uniforms)); err != nil {
		return fmt.Errorf("write pass uniforms: %w", err)
	}

	return r.encodePass(target, program.Name, clearOps{}, func(renderPass *wgpu.RenderPassEncoder) {
		if setViewport(renderPass, pass.Viewport, target.width, target.height) {
			renderPass.SetPipeline(pc.Pipeline)
			renderPass.SetBindGroup(0, bindGroup, nil)
			renderPass.Draw(3, 1, 0, 0)
		}
	})
}

func (t boundTexture) view() (*wgpu.TextureView, error) {
	if t.level >= 0 {
		return t.texture.MipView(uint32(t.level))
	}

	return t.texture.SampleView()
}

// Release releases all resources held by the renderer.
func (r *Renderer) Release() {
	r.fullscreen.Purge()
	r.meshes.Purge()

	if r.bufPass != nil {
		r.bufPass.Release()
		r.bufPass = nil
	}

	if r.bufCamera != nil {
		r.bufCamera.Release()
		r.bufCamera = nil
	}

	if r.bufObjects != nil {
		r.bufObjects.Release()
		r.bufObjects = nil
	}

	if r.white != nil {
		r.white.Release()
		r.white = nil
	}
}
