package pulse

import (
	"fmt"

	"github.com/oliverbestmann/postfx/glm"
	"github.com/oliverbestmann/postfx/render"
	"github.com/oliverbestmann/webgpu/wgpu"
)

// Vertex is the vertex layout of all meshes.
type Vertex struct {
	Position glm.Vec3f
	Normal   glm.Vec3f
}

// Mesh holds indexed triangles on the gpu.
type Mesh struct {
	vertices *wgpu.Buffer
	indices  *wgpu.Buffer

	vertexCount int
	indexCount  uint32
}

var _ render.Mesh = &Mesh{}

func NewMesh(ctx *Context, label string, geometry Geometry) (*Mesh, error) {
	vertices, err := ctx.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    label + ".Vertices",
		Contents: wgpu.ToBytes(geometry.Vertices),
		Usage:    wgpu.BufferUsageVertex,
	})

	if err != nil {
		return nil, fmt.Errorf("upload vertices of %q: %w", label, err)
	}

	indices, err := ctx.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    label + ".Indices",
		Contents: wgpu.ToBytes(geometry.Indices),
		Usage:    wgpu.BufferUsageIndex,
	})

	if err != nil {
		vertices.Release()
		return nil, fmt.Errorf("upload indices of %q: %w", label, err)
	}

	return &Mesh{
		vertices:    vertices,
		indices:     indices,
		vertexCount: len(geometry.Vertices),
		indexCount:  uint32(len(geometry.Indices)),
	}, nil
}

func (m *Mesh) VertexCount() int {
	return m.vertexCount
}

func (m *Mesh) draw(pass *wgpu.RenderPassEncoder) {
	pass.SetVertexBuffer(0, m.vertices, 0, wgpu.WholeSize)
	pass.SetIndexBuffer(m.indices, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	pass.DrawIndexed(m.indexCount, 1, 0, 0, 0)
}

func (m *Mesh) Release() {
	m.vertices.Release()
	m.indices.Release()
}
