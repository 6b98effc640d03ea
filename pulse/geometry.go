package pulse

import (
	"math"

	"github.com/oliverbestmann/postfx/glm"
)

// Geometry is an indexed triangle list with counter clockwise winding.
type Geometry struct {
	Vertices []Vertex
	Indices  []uint32
}

// BoxGeometry creates an axis aligned box centered at the origin. Each face
// has its own vertices to keep the normals flat.
func BoxGeometry(width, height, depth float32) Geometry {
	hx, hy, hz := width/2, height/2, depth/2

	faces := []struct {
		normal, u, v glm.Vec3f
	}{
		{glm.Vec3f{1, 0, 0}, glm.Vec3f{0, 0, -1}, glm.Vec3f{0, 1, 0}},
		{glm.Vec3f{-1, 0, 0}, glm.Vec3f{0, 0, 1}, glm.Vec3f{0, 1, 0}},
		{glm.Vec3f{0, 1, 0}, glm.Vec3f{1, 0, 0}, glm.Vec3f{0, 0, -1}},
		{glm.Vec3f{0, -1, 0}, glm.Vec3f{1, 0, 0}, glm.Vec3f{0, 0, 1}},
		{glm.Vec3f{0, 0, 1}, glm.Vec3f{1, 0, 0}, glm.Vec3f{0, 1, 0}},
		{glm.Vec3f{0, 0, -1}, glm.Vec3f{-1, 0, 0}, glm.Vec3f{0, 1, 0}},
	}

	half := glm.Vec3f{hx, hy, hz}

	var geometry Geometry

	for _, face := range faces {
		base := uint32(len(geometry.Vertices))

		for _, corner := range [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
			var position glm.Vec3f
			for axis := range 3 {
				position[axis] = (face.normal[axis] + face.u[axis]*corner[0] + face.v[axis]*corner[1]) * half[axis]
			}

			geometry.Vertices = append(geometry.Vertices, Vertex{Position: position, Normal: face.normal})
		}

		geometry.Indices = append(geometry.Indices, base, base+1, base+2, base, base+2, base+3)
	}

	return geometry
}

// SphereGeometry creates a uv sphere centered at the origin.
func SphereGeometry(radius float32, segments, rings int) Geometry {
	segments = max(segments, 3)
	rings = max(rings, 2)

	var geometry Geometry

	for ring := 0; ring <= rings; ring++ {
		theta := math.Pi * float64(ring) / float64(rings)
		sinTheta, cosTheta := math.Sincos(theta)

		for segment := 0; segment <= segments; segment++ {
			phi := 2 * math.Pi * float64(segment) / float64(segments)
			sinPhi, cosPhi := math.Sincos(phi)

			normal := glm.Vec3f{
				float32(sinTheta * cosPhi),
				float32(cosTheta),
				float32(-sinTheta * sinPhi),
			}

			geometry.Vertices = append(geometry.Vertices, Vertex{
				Position: glm.Vec3f{normal[0] * radius, normal[1] * radius, normal[2] * radius},
				Normal:   normal,
			})
		}
	}

	stride := uint32(segments + 1)

	for ring := range uint32(rings) {
		for segment := range uint32(segments) {
			a := ring*stride + segment
			b := a + stride

			geometry.Indices = append(geometry.Indices, a, b, a+1, a+1, b, b+1)
		}
	}

	return geometry
}

// PlaneGeometry creates a plane in the xz plane facing up.
func PlaneGeometry(width, depth float32) Geometry {
	hx, hz := width/2, depth/2
	up := glm.Vec3f{0, 1, 0}

	return Geometry{
		Vertices: []Vertex{
			{Position: glm.Vec3f{-hx, 0, hz}, Normal: up},
			{Position: glm.Vec3f{hx, 0, hz}, Normal: up},
			{Position: glm.Vec3f{hx, 0, -hz}, Normal: up},
			{Position: glm.Vec3f{-hx, 0, -hz}, Normal: up},
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
}
