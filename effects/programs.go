package effects

import (
	_ "embed"

	"github.com/oliverbestmann/postfx/render"
)

//go:embed shaders/color_correction.wgsl
var colorCorrectionShader string

//go:embed shaders/bloom_threshold.wgsl
var bloomThresholdShader string

//go:embed shaders/bloom_blur.wgsl
var bloomBlurShader string

//go:embed shaders/bloom_composite.wgsl
var bloomCompositeShader string

//go:embed shaders/outline.wgsl
var outlineShader string

//go:embed shaders/ambient_occlusion.wgsl
var ambientOcclusionShader string

//go:embed shaders/ambient_occlusion_composite.wgsl
var ambientOcclusionCompositeShader string

//go:embed shaders/accumulate.wgsl
var accumulateShader string

//go:embed shaders/debug.wgsl
var debugShader string

//go:embed shaders/debug_depth.wgsl
var debugDepthShader string

var colorCorrectionProgram = &render.Program{
	Name:     "colorCorrection",
	Kind:     render.ProgramFullscreen,
	Source:   colorCorrectionShader,
	Params:   []string{"correction"},
	Textures: []string{"tDiffuse"},
}

var bloomThresholdProgram = &render.Program{
	Name:     "bloomThreshold",
	Kind:     render.ProgramFullscreen,
	Source:   bloomThresholdShader,
	Params:   []string{"threshold"},
	Textures: []string{"tDiffuse"},
}

var bloomBlurProgram = &render.Program{
	Name:     "bloomBlur",
	Kind:     render.ProgramFullscreen,
	Source:   bloomBlurShader,
	Params:   []string{"texel"},
	Textures: []string{"tSource"},
}

var bloomCompositeProgram = &render.Program{
	Name:     "bloomComposite",
	Kind:     render.ProgramFullscreen,
	Source:   bloomCompositeShader,
	Params:   []string{"strength"},
	Textures: []string{"tDiffuse", "tBloom"},
}

var outlineProgram = &render.Program{
	Name:     "outline",
	Kind:     render.ProgramFullscreen,
	Source:   outlineShader,
	Params:   []string{"visibleColor", "hiddenColor", "visibleChannel", "hiddenChannel", "texel"},
	Textures: []string{"tDiffuse", "tVisible", "tHidden"},
}

var ambientOcclusionProgram = &render.Program{
	Name:     "ambientOcclusion",
	Kind:     render.ProgramFullscreen,
	Source:   ambientOcclusionShader,
	Params:   []string{"projection", "occlusion"},
	Textures: []string{"tNormal", "tDepth"},
}

var ambientOcclusionCompositeProgram = &render.Program{
	Name:     "ambientOcclusionComposite",
	Kind:     render.ProgramFullscreen,
	Source:   ambientOcclusionCompositeShader,
	Textures: []string{"tDiffuse", "tOcclusion"},
}

var accumulateProgram = &render.Program{
	Name:     "accumulate",
	Kind:     render.ProgramFullscreen,
	Source:   accumulateShader,
	Params:   []string{"weight"},
	Textures: []string{"tDiffuse", "tHistory"},
}

var debugProgram = &render.Program{
	Name:     "debug",
	Kind:     render.ProgramFullscreen,
	Source:   debugShader,
	Params:   []string{"mode", "channel"},
	Textures: []string{"tSource"},
}

var debugDepthProgram = &render.Program{
	Name:     "debugDepth",
	Kind:     render.ProgramFullscreen,
	Source:   debugDepthShader,
	Params:   []string{"nearFar"},
	Textures: []string{"tDepth"},
}
