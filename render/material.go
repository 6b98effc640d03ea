package render

// Side selects which faces of a mesh are drawn.
type Side uint8

const (
	SideFront Side = iota
	SideBack
	SideDouble
)

// Material describes how a Renderable is drawn.
type Material struct {
	Program *Program

	Side        Side
	Blending    Blending
	Transparent bool
	Opacity     float32

	DepthTest  bool
	DepthWrite bool

	Color        Color
	Metalness    float32
	Roughness    float32
	Transmission float32
	FlatShading  bool

	Uniforms Uniforms
}

// NewMaterial creates an opaque, depth tested material using the given program.
func NewMaterial(program *Program) *Material {
	return &Material{
		Program:    program,
		Opacity:    1,
		DepthTest:  true,
		DepthWrite: true,
		Roughness:  1,
		Uniforms:   Uniforms{},
	}
}

// Clone returns a shallow copy of the material with its own uniforms map.
func (m *Material) Clone() *Material {
	clone := *m

	clone.Uniforms = make(Uniforms, len(m.Uniforms))
	for key, value := range m.Uniforms {
		clone.Uniforms[key] = value
	}

	return &clone
}
