package glm

// Mat4 is a column major 4x4 matrix, the layout expected by wgsl.
type Mat4[T numeric] [16]T

// Mat4Of builds a matrix from its four columns.
func Mat4Of[T numeric](columns [4][4]T) Mat4[T] {
	var m Mat4[T]
	for col := range columns {
		copy(m[col*4:col*4+4], columns[col][:])
	}

	return m
}

func IdentityMat4[T numeric]() Mat4[T] {
	return Mat4[T]{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

func TranslationMat4[T numeric](x, y, z T) Mat4[T] {
	return Mat4[T]{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		x, y, z, 1,
	}
}

func ScaleMat4[T numeric](x, y, z T) Mat4[T] {
	return Mat4[T]{
		x, 0, 0, 0,
		0, y, 0, 0,
		0, 0, z, 0,
		0, 0, 0, 1,
	}
}

func RotationXMat4[T float](angle Rad) Mat4[T] {
	fs, fc := fastSincos(angle)
	s := T(fs)
	c := T(fc)

	return Mat4[T]{
		1, 0, 0, 0,
		0, c, s, 0,
		0, -s, c, 0,
		0, 0, 0, 1,
	}
}

func RotationYMat4[T float](angle Rad) Mat4[T] {
	fs, fc := fastSincos(angle)
	s := T(fs)
	c := T(fc)

	return Mat4[T]{
		c, 0, -s, 0,
		0, 1, 0, 0,
		s, 0, c, 0,
		0, 0, 0, 1,
	}
}

func RotationZMat4[T float](angle Rad) Mat4[T] {
	fs, fc := fastSincos(angle)
	s := T(fs)
	c := T(fc)

	return Mat4[T]{
		c, s, 0, 0,
		-s, c, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

func (lhs Mat4[T]) Scale(x, y, z T) Mat4[T] {
	return lhs.Mul(ScaleMat4[T](x, y, z))
}

func (lhs Mat4[T]) Translate(x, y, z T) Mat4[T] {
	return lhs.Mul(TranslationMat4[T](x, y, z))
}

func (lhs Mat4[T]) IsZero() bool {
	return lhs == Mat4[T]{}
}

// IsPerspective reports whether this is a perspective projection matrix.
// Perspective projections copy -z into w, which puts -1 into
// column 2, row 3. A -1 literal does not compile for unsigned T.
func (lhs Mat4[T]) IsPerspective() bool {
	return lhs[11]+1 == 0
}

// OffsetProjection shifts a projection matrix by (dx, dy) in normalized
// device coordinates. Works for perspective and orthographic projections.
func (lhs Mat4[T]) OffsetProjection(dx, dy T) Mat4[T] {
	// add dx * row3 to row0 and dy * row3 to row1
	for col := 0; col < 4; col++ {
		w := lhs[col*4+3]
		lhs[col*4+0] += dx * w
		lhs[col*4+1] += dy * w
	}

	return lhs
}

func (lhs Mat4[T]) Mul(rhs Mat4[T]) Mat4[T] {
	var result Mat4[T]

	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			result[col*4+row] = lhs[0*4+row]*rhs[col*4+0] +
				lhs[1*4+row]*rhs[col*4+1] +
				lhs[2*4+row]*rhs[col*4+2] +
				lhs[3*4+row]*rhs[col*4+3]
		}
	}

	return result
}

func (lhs Mat4[T]) Transform(rhs Vec4[T]) Vec4[T] {
	return Vec4[T]{
		lhs[0]*rhs[0] + lhs[4]*rhs[1] + lhs[8]*rhs[2] + lhs[12]*rhs[3],
		lhs[1]*rhs[0] + lhs[5]*rhs[1] + lhs[9]*rhs[2] + lhs[13]*rhs[3],
		lhs[2]*rhs[0] + lhs[6]*rhs[1] + lhs[10]*rhs[2] + lhs[14]*rhs[3],
		lhs[3]*rhs[0] + lhs[7]*rhs[1] + lhs[11]*rhs[2] + lhs[15]*rhs[3],
	}
}

// TransformPoint transforms a point, dropping the w component.
func (lhs Mat4[T]) TransformPoint(p Vec3[T]) Vec3[T] {
	return lhs.Transform(p.Extend(1)).Truncate()
}
