package render

import "github.com/oliverbestmann/postfx/glm"

type ProgramKind uint8

const (
	// ProgramFullscreen programs draw a single full screen triangle.
	ProgramFullscreen ProgramKind = iota

	// ProgramMesh programs are run for each renderable of a render list.
	ProgramMesh
)

// Program describes a shader program. Programs are compared by identity, the
// rendering backend compiles each program once.
type Program struct {
	Name   string
	Kind   ProgramKind
	Source string

	// Names of the vec4 parameters, in binding order. Scalar and
	// vector uniforms are widened to vec4.
	Params []string

	// Names of the sampled textures, in binding order.
	Textures []string
}

// Uniforms maps parameter and texture names of a Program to values.
// Supported values are float32, int, bool, glm.Vec2f, glm.Vec3f, glm.Vec4f,
// Color, RenderTarget (samples color) and DepthOf (samples depth).
type Uniforms map[string]any

// DepthOf samples the depth attachment of a render target.
type DepthOf struct {
	Target RenderTarget
}

// ShaderPass is a single full screen draw.
type ShaderPass struct {
	Program  *Program
	Uniforms Uniforms
	Blending Blending

	// The program writes frag_depth into the depth attachment of the target.
	DepthWrite bool

	// Viewport of the pass relative to the current render target.
	// The zero value covers the full target.
	Viewport glm.Rect
}

// NewShaderPass creates a pass for the given program covering the full target.
func NewShaderPass(program *Program) *ShaderPass {
	return &ShaderPass{
		Program:  program,
		Uniforms: Uniforms{},
		Viewport: glm.FullRect,
	}
}
