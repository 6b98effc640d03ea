package pulse

import (
	"fmt"

	"github.com/oliverbestmann/postfx/glm"
	"github.com/oliverbestmann/postfx/render"
)

const (
	maxPassParams   = 16
	maxObjectParams = 8
)

type passUniforms struct {
	Params [maxPassParams]glm.Vec4f
}

type cameraUniforms struct {
	ViewProjection glm.Mat4f
	View           glm.Mat4f
	Position       glm.Vec4f

	// near, far, viewport width, viewport height
	NearFar glm.Vec4f
}

type objectUniforms struct {
	Model  glm.Mat4f
	Params [maxObjectParams]glm.Vec4f
}

// objectSlot pads objectUniforms to the minimum uniform buffer offset alignment.
type objectSlot struct {
	objectUniforms
	_ [256 - 192]byte
}

// ToVec4 widens a scalar or vector uniform value to a vec4.
func ToVec4(value any) (glm.Vec4f, error) {
	switch value := value.(type) {
	case float32:
		return glm.Vec4f{value, 0, 0, 0}, nil
	case float64:
		return glm.Vec4f{float32(value), 0, 0, 0}, nil
	case int:
		return glm.Vec4f{float32(value), 0, 0, 0}, nil
	case bool:
		if value {
			return glm.Vec4f{1, 0, 0, 0}, nil
		}

		return glm.Vec4f{}, nil
	case glm.Vec2f:
		return glm.Vec4f{value[0], value[1], 0, 0}, nil
	case glm.Vec3f:
		return glm.Vec4f{value[0], value[1], value[2], 0}, nil
	case glm.Vec4f:
		return value, nil
	case render.Color:
		return value.ToVec(), nil
	default:
		return glm.Vec4f{}, fmt.Errorf("unsupported uniform type %T", value)
	}
}

// packParams writes the params of the program into out, in declared order.
// Params missing from uniforms are resolved using fallback, if not nil.
func packParams(program *render.Program, uniforms render.Uniforms, fallback func(name string) (glm.Vec4f, bool), out []glm.Vec4f) error {
	if len(program.Params) > len(out) {
		return fmt.Errorf("program %q declares %d params, at most %d are supported",
			program.Name, len(program.Params), len(out))
	}

	for idx, name := range program.Params {
		value, ok := uniforms[name]
		if !ok {
			if fallback != nil {
				out[idx], _ = fallback(name)
			} else {
				out[idx] = glm.Vec4f{}
			}

			continue
		}

		vec, err := ToVec4(value)
		if err != nil {
			return fmt.Errorf("param %q of program %q: %w", name, program.Name, err)
		}

		out[idx] = vec
	}

	return nil
}

// materialParam provides the built-in material properties as params.
func materialParam(material *render.Material) func(name string) (glm.Vec4f, bool) {
	return func(name string) (glm.Vec4f, bool) {
		switch name {
		case "color":
			color := material.Color.ToVec()
			color[3] *= material.Opacity
			return color, true
		case "opacity":
			return glm.Vec4f{material.Opacity, 0, 0, 0}, true
		case "metalness":
			return glm.Vec4f{material.Metalness, 0, 0, 0}, true
		case "roughness":
			return glm.Vec4f{material.Roughness, 0, 0, 0}, true
		case "transmission":
			return glm.Vec4f{material.Transmission, 0, 0, 0}, true
		default:
			return glm.Vec4f{}, false
		}
	}
}

// mipSource samples a single mip level of a texture.
type mipSource struct {
	texture *Texture
	level   uint32
}

// boundTexture is a texture resolved from a uniform value.
type boundTexture struct {
	texture *Texture
	level   int32
	depth   bool
	filter  render.Filter
}

// resolveTextures resolves the textures of the program from uniforms. Textures
// missing from uniforms are resolved using fallback, if not nil.
func resolveTextures(program *render.Program, uniforms render.Uniforms, fallback func(name string) any) ([]boundTexture, textureLayout, error) {
	var layout textureLayout

	bound := make([]boundTexture, len(program.Textures))

	for idx, name := range program.Textures {
		value, ok := uniforms[name]
		if !ok && fallback != nil {
			value = fallback(name)
		}

		if value == nil {
			return nil, layout, fmt.Errorf("missing texture %q of program %q", name, program.Name)
		}

		texture, err := resolveTexture(value)
		if err != nil {
			return nil, layout, fmt.Errorf("texture %q of program %q: %w", name, program.Name, err)
		}

		if texture.depth {
			layout.Depth |= 1 << idx
		}

		if texture.texture.SampleCount() > 1 {
			if !texture.depth {
				return nil, layout, fmt.Errorf("texture %q of program %q: can not sample multisample color", name, program.Name)
			}

			layout.Multisampled |= 1 << idx
		}

		bound[idx] = texture
	}

	return bound, layout, nil
}

func resolveTexture(value any) (boundTexture, error) {
	switch value := value.(type) {
	case *Texture:
		return boundTexture{texture: value, level: -1, depth: IsDepthFormat(value.Format())}, nil

	case mipSource:
		return boundTexture{texture: value.texture, level: int32(value.level)}, nil

	case render.DepthOf:
		target, ok := value.Target.(*RenderTarget)
		if !ok {
			return boundTexture{}, fmt.Errorf("foreign render target %T", value.Target)
		}

		depth := target.DepthTexture()
		if depth == nil {
			return boundTexture{}, fmt.Errorf("render target %q has no depth", target.Label())
		}

		return boundTexture{texture: depth, level: -1, depth: true, filter: render.FilterNearest}, nil

	case render.RenderTarget:
		target, ok := value.(*RenderTarget)
		if !ok {
			return boundTexture{}, fmt.Errorf("foreign render target %T", value)
		}

		color := target.ColorTexture()
		if color == nil {
			return boundTexture{}, fmt.Errorf("render target %q has no color texture", target.Label())
		}

		return boundTexture{texture: color, level: -1, filter: target.Filter()}, nil

	default:
		return boundTexture{}, fmt.Errorf("unsupported texture type %T", value)
	}
}

// samplerFilter picks the filter of the first color texture.
func samplerFilter(textures []boundTexture) render.Filter {
	for _, texture := range textures {
		if !texture.depth {
			return texture.filter
		}
	}

	return render.FilterLinear
}
