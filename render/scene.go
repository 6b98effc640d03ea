package render

import "github.com/oliverbestmann/postfx/glm"

// EffectHandle identifies a registered effect. Handles are assigned by the
// composer and are never reused while the composer is alive.
type EffectHandle uint32

// EffectMarks maps the handle of an effect to the weight an
// object contributes to that effects mark buffer channel.
type EffectMarks map[EffectHandle]float32

// Renderable is a single draw item of a render queue.
type Renderable struct {
	ID       uint64
	Mesh     Mesh
	Material *Material

	// Model transform, object to world space.
	Transform glm.Mat4f

	Skinned bool
	Morphed bool

	// Optional opt-in into effects that work with mark buffers.
	Effects EffectMarks
}

// Mesh is owned by the rendering backend, e.g. a set of vertex buffers.
type Mesh interface {
	VertexCount() int
}

type Camera struct {
	View       glm.Mat4f
	Projection glm.Mat4f
	Position   glm.Vec3f

	Near, Far float32

	// Viewport of the camera relative to the render target.
	Rect glm.Rect
}

// NewCamera creates a camera covering the full render target.
func NewCamera(view, projection glm.Mat4f, near, far float32) *Camera {
	return &Camera{
		View:       view,
		Projection: projection,
		Near:       near,
		Far:        far,
		Rect:       glm.FullRect,
	}
}

// ViewProjection returns the combined view projection matrix.
func (c *Camera) ViewProjection() glm.Mat4f {
	return c.Projection.Mul(c.View)
}

// RenderStates is the per camera state passed into RenderList.
type RenderStates struct {
	Camera *Camera

	// Mipmapped copy of the opaque pass, set while rendering
	// transparent objects that use transmission.
	Transmission RenderTarget
}

// RenderOptions customize a call to RenderList.
type RenderOptions struct {
	// Replaces the material of the renderable, if set.
	GetMaterial func(r *Renderable) *Material

	// Skips the renderable if it returns false.
	IfRender func(r *Renderable) bool

	// Called right before the renderable is drawn, after the material was
	// resolved. Can be used to update per object uniforms.
	BeforeRender func(r *Renderable, material *Material)
}

// Material resolves the material of the given renderable.
func (opts *RenderOptions) Material(r *Renderable) *Material {
	if opts != nil && opts.GetMaterial != nil {
		return opts.GetMaterial(r)
	}

	return r.Material
}

// Accept reports if the given renderable should be rendered.
func (opts *RenderOptions) Accept(r *Renderable) bool {
	return opts == nil || opts.IfRender == nil || opts.IfRender(r)
}

// Layer ids used by the scene buffer.
const (
	LayerDefault = 0
	LayerOverlay = 10
)

// RenderLayer holds the sorted draw lists of one layer.
type RenderLayer struct {
	ID          int
	Opaque      []*Renderable
	Transparent []*Renderable
}

// RenderQueue holds the layers visible to a camera.
type RenderQueue struct {
	Layers []*RenderLayer
}

// Layer returns the layer with the given id, or nil if the layer is empty.
func (q *RenderQueue) Layer(id int) *RenderLayer {
	for _, layer := range q.Layers {
		if layer.ID == id {
			return layer
		}
	}

	return nil
}

// Scene produces render states and queues for a camera.
type Scene interface {
	RenderStates(camera *Camera) *RenderStates
	RenderQueue(camera *Camera) *RenderQueue
}
