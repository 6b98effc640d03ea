package pulse

import (
	_ "embed"
	"fmt"
	"math/bits"
	"unsafe"

	"github.com/oliverbestmann/postfx/glm"
	"github.com/oliverbestmann/postfx/render"
	"github.com/oliverbestmann/webgpu/wgpu"
)

//go:embed shaders/standard.wgsl
var standardShader string

// StandardProgram is used for materials without a program. It shades
// with a fixed directional light and samples tTransmission for
// transmissive materials.
var StandardProgram = &render.Program{
	Name:     "standard",
	Kind:     render.ProgramMesh,
	Source:   standardShader,
	Params:   []string{"color", "metalness", "roughness", "transmission"},
	Textures: []string{"tTransmission"},
}

type meshDraw struct {
	mesh     *Mesh
	pipeline CachedPipeline
	textures []boundTexture
	sampler  *wgpu.Sampler
	object   objectSlot
}

// RenderList draws the renderables into the current render target. Renderables
// without a *Mesh are skipped.
func (r *Renderer) RenderList(list []*render.Renderable, states *render.RenderStates, opts *render.RenderOptions) {
	target, ok := r.currentPassTarget()
	if !ok {
		return
	}

	if states == nil || states.Camera == nil {
		r.fail(fmt.Errorf("render list into %q: no camera", target.label))
		return
	}

	var draws []meshDraw

	for _, renderable := range list {
		if !opts.Accept(renderable) {
			continue
		}

		mesh, ok := renderable.Mesh.(*Mesh)
		if !ok {
			continue
		}

		material := opts.Material(renderable)
		if material == nil {
			continue
		}

		if opts != nil && opts.BeforeRender != nil {
			opts.BeforeRender(renderable, material)
		}

		draw, err := r.prepareMeshDraw(target, states, renderable, material)
		if err != nil {
			r.fail(fmt.Errorf("render %d into %q: %w", renderable.ID, target.label, err))
			continue
		}

		draw.mesh = mesh
		draws = append(draws, draw)
	}

	if len(draws) == 0 {
		return
	}

	if err := r.submitDraws(target, states.Camera, draws); err != nil {
		r.fail(fmt.Errorf("render list into %q: %w", target.label, err))
	}
}

func (r *Renderer) submitDraws(target passTarget, camera *render.Camera, draws []meshDraw) error {
	x, y, w, h := camera.Rect.Pixels(target.width, target.height)
	if w == 0 || h == 0 {
		return nil
	}

	cameraUni := cameraUniforms{
		ViewProjection: camera.ViewProjection(),
		View:           camera.View,
		Position:       glm.Vec4f{camera.Position[0], camera.Position[1], camera.Position[2], 1},
		NearFar:        glm.Vec4f{camera.Near, camera.Far, float32(w), float32(h)},
	}

	if err := r.ctx.WriteBuffer(r.bufCamera, 0, AsByteSlice(&cameraUni)); err != nil {
		return fmt.Errorf("write camera uniforms: %w", err)
	}

	if err := r.ensureObjectCapacity(len(draws)); err != nil {
		return err
	}

	objects := make([]objectSlot, len(draws))
	for idx := range draws {
		objects[idx] = draws[idx].object
	}

	if err := r.ctx.WriteBuffer(r.bufObjects, 0, wgpu.ToBytes(objects)); err != nil {
		return fmt.Errorf("write object uniforms: %w", err)
	}

	var releasers Releasers
	defer releasers.Release()

	bindGroups := make([]*wgpu.BindGroup, len(draws))

	for idx, draw := range draws {
		entries := []wgpu.BindGroupEntry{
			{
				Binding: 0,
				Buffer:  r.bufCamera,
				Size:    wgpu.WholeSize,
			},
			{
				Binding: 1,
				Buffer:  r.bufObjects,
				Offset:  uint64(idx) * uint64(unsafe.Sizeof(objectSlot{})),
				Size:    uint64(unsafe.Sizeof(objectUniforms{})),
			},
			{
				Binding: 2,
				Sampler: draw.sampler,
			},
		}

		for texIdx, texture := range draw.textures {
			view, err := texture.view()
			if err != nil {
				return err
			}

			entries = append(entries, wgpu.BindGroupEntry{
				Binding:     uint32(3 + texIdx),
				TextureView: view,
			})
		}

		bindGroup, err := r.ctx.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:   "Mesh BindGroup",
			Layout:  draw.pipeline.GetBindGroupLayout(0),
			Entries: entries,
		})

		if err != nil {
			return fmt.Errorf("create bind group: %w", err)
		}

		bindGroups[idx] = bindGroup
		releasers.Add(bindGroup)
	}

	return r.encodePass(target, "RenderList", clearOps{}, func(pass *wgpu.RenderPassEncoder) {
		pass.SetViewport(float32(x), float32(y), float32(w), float32(h), 0, 1)

		for idx, draw := range draws {
			pass.SetPipeline(draw.pipeline.Pipeline)
			pass.SetBindGroup(0, bindGroups[idx], nil)
			draw.mesh.draw(pass)
		}
	})
}

func (r *Renderer) prepareMeshDraw(target passTarget, states *render.RenderStates, renderable *render.Renderable, material *render.Material) (meshDraw, error) {
	program := material.Program
	if program == nil {
		program = StandardProgram
	}

	if program.Kind != render.ProgramMesh {
		return meshDraw{}, fmt.Errorf("program %q is not a mesh program", program.Name)
	}

	var draw meshDraw

	draw.object.Model = renderable.Transform

	err := packParams(program, material.Uniforms, materialParam(material), draw.object.Params[:])
	if err != nil {
		return meshDraw{}, err
	}

	textures, layout, err := resolveTextures(program, material.Uniforms, func(name string) any {
		if name == "tTransmission" && states.Transmission != nil {
			return states.Transmission
		}

		// optional textures sample white
		return r.white
	})

	if err != nil {
		return meshDraw{}, err
	}

	blending := material.Blending
	if material.Transparent && blending == render.BlendNone {
		blending = render.BlendPremultiplied
	}

	draw.textures = textures

	draw.sampler, err = CachedSampler(r.ctx.Device, samplerDescriptor(samplerFilter(textures)))
	if err != nil {
		return meshDraw{}, err
	}

	draw.pipeline, err = r.meshes.Get(meshPipelineConfig{
		Program:    program,
		Target:     target.layout,
		Textures:   layout,
		Blending:   blending,
		Side:       material.Side,
		DepthTest:  material.DepthTest,
		DepthWrite: material.DepthWrite,
	})

	if err != nil {
		return meshDraw{}, err
	}

	return draw, nil
}

func (r *Renderer) ensureObjectCapacity(count int) error {
	if count <= r.objectCapacity {
		return nil
	}

	if r.bufObjects != nil {
		r.bufObjects.Release()
		r.bufObjects = nil
		r.objectCapacity = 0
	}

	// grow to the next power of two
	capacity := 1 << bits.Len(uint(count-1))

	buf, err := r.ctx.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Object.Uniforms",
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		Size:  uint64(capacity) * uint64(unsafe.Sizeof(objectSlot{})),
	})

	if err != nil {
		return fmt.Errorf("create object uniforms for %d objects: %w", capacity, err)
	}

	r.bufObjects = buf
	r.objectCapacity = capacity

	return nil
}
