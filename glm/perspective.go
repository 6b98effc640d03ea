package glm

import "math"

func Perspective[T float](fovY Rad, aspect, near, far T) Mat4[T] {
	f := T(1 / math.Tan(float64(fovY*0.5)))

	return Mat4Of([4][4]T{
		{f / aspect, 0, 0, 0},
		{0, f, 0, 0},
		{0, 0, far / (near - far), -1},
		{0, 0, (far * near) / (near - far), 0},
	})
}

func Orthographic[T float](left, right, bottom, top, near, far T) Mat4[T] {
	w := right - left
	h := top - bottom
	d := far - near

	return Mat4Of([4][4]T{
		{2 / w, 0, 0, 0},
		{0, 2 / h, 0, 0},
		{0, 0, -1 / d, 0},
		{-(right + left) / w, -(top + bottom) / h, -near / d, 1},
	})
}

func LookAt[T float](eye, center, up Vec3[T]) Mat4[T] {
	f := center.Sub(eye).Normalize()
	s := f.Cross(up).Normalize()
	u := s.Cross(f)

	return Mat4Of([4][4]T{
		{s[0], u[0], -f[0], 0},
		{s[1], u[1], -f[1], 0},
		{s[2], u[2], -f[2], 0},
		{-eye.Dot(s), -eye.Dot(u), eye.Dot(f), 1},
	})
}

func DegToRad[T numeric](deg T) Rad {
	return Rad(float64(deg) * (math.Pi / 180))
}
