package fx

import (
	_ "embed"

	"github.com/oliverbestmann/postfx/render"
)

//go:embed shaders/copy.wgsl
var copyShader string

//go:embed shaders/depth_fix.wgsl
var depthFixShader string

//go:embed shaders/gbuffer.wgsl
var gbufferShader string

//go:embed shaders/mark.wgsl
var markShader string

// CopyProgram copies the texture tDiffuse.
var CopyProgram = &render.Program{
	Name:     "copy",
	Kind:     render.ProgramFullscreen,
	Source:   copyShader,
	Textures: []string{"tDiffuse"},
}

var depthFixProgram = &render.Program{
	Name:     "depthFix",
	Kind:     render.ProgramFullscreen,
	Source:   depthFixShader,
	Params:   []string{"nearFar"},
	Textures: []string{"tDepth"},
}

var gbufferProgram = &render.Program{
	Name:   "gbuffer",
	Kind:   render.ProgramMesh,
	Source: gbufferShader,
	Params: []string{"surface"},
}

var markProgram = &render.Program{
	Name:   "mark",
	Kind:   render.ProgramMesh,
	Source: markShader,
	Params: []string{"mark"},
}
