package math

import "math"

// Mat4 is a 4x4 matrix in column-major order (OpenGL compatible).
// Layout: [m0 m4 m8  m12]
//
//	[m1 m5 m9  m13]
//	[m2 m6 m10 m14]
//	[m3 m7 m11 m15]
type Mat4 [16]float32

// Identity returns an identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Perspective returns a perspective projection matrix.
// fovY is in radians, aspect is width/height.
func Perspective(fovY, aspect, near, far float32) Mat4 {
	f := float32(1.0 / math.Tan(float64(fovY)/2.0))
	nf := 1.0 / (near - far)

	return Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, (far + near) * nf, -1,
		0, 0, 2 * far * near * nf, 0,
	}
}

// LookAt returns a view matrix looking from eye to center with up direction.
func LookAt(eye, center, up Vec3) Mat4 {
	f := center.Sub(eye).Normalize()
	s := f.Cross(up).Normalize()
	u := s.Cross(f)

	return Mat4{
		s.X, u.X, -f.X, 0,
		s.Y, u.Y, -f.Y, 0,
		s.Z, u.Z, -f.Z, 0,
		-s.Dot(eye), -u.Dot(eye), f.Dot(eye), 1,
	}
}

// Scale returns a uniform scale matrix.
func Scale(s float32) Mat4 {
	return Mat4{
		s, 0, 0, 0,
		0, s, 0, 0,
		0, 0, s, 0,
		0, 0, 0, 1,
	}
}

// Mul multiplies this matrix by another (m * other).
func (m Mat4) Mul(other Mat4) Mat4 {
	var out Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m[k*4+row] * other[col*4+k]
			}
			out[col*4+row] = sum
		}
	}
	return out
}

// Transpose swaps rows and columns.
func (m Mat4) Transpose() Mat4 {
	var out Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			out[row*4+col] = m[col*4+row]
		}
	}
	return out
}

// Inverse returns the inverse of the matrix and false if it is singular,
// in which case the identity is returned.
func (m Mat4) Inverse() (Mat4, bool) {
	var a [16]float64
	for i, v := range m {
		a[i] = float64(v)
	}

	b00 := a[0]*a[5] - a[1]*a[4]
	b01 := a[0]*a[6] - a[2]*a[4]
	b02 := a[0]*a[7] - a[3]*a[4]
	b03 := a[1]*a[6] - a[2]*a[5]
	b04 := a[1]*a[7] - a[3]*a[5]
	b05 := a[2]*a[7] - a[3]*a[6]
	b06 := a[8]*a[13] - a[9]*a[12]
	b07 := a[8]*a[14] - a[10]*a[12]
	b08 := a[8]*a[15] - a[11]*a[12]
	b09 := a[9]*a[14] - a[10]*a[13]
	b10 := a[9]*a[15] - a[11]*a[13]
	b11 := a[10]*a[15] - a[11]*a[14]

	det := b00*b11 - b01*b10 + b02*b09 + b03*b08 - b04*b07 + b05*b06
	if det == 0 {
		return Identity(), false
	}
	inv := 1.0 / det

	return Mat4{
		float32((a[5]*b11 - a[6]*b10 + a[7]*b09) * inv),
		float32((a[2]*b10 - a[1]*b11 - a[3]*b09) * inv),
		float32((a[13]*b05 - a[14]*b04 + a[15]*b03) * inv),
		float32((a[10]*b04 - a[9]*b05 - a[11]*b03) * inv),
		float32((a[6]*b08 - a[4]*b11 - a[7]*b07) * inv),
		float32((a[0]*b11 - a[2]*b08 + a[3]*b07) * inv),
		float32((a[14]*b02 - a[12]*b05 - a[15]*b01) * inv),
		float32((a[8]*b05 - a[10]*b02 + a[11]*b01) * inv),
		float32((a[4]*b10 - a[5]*b08 + a[7]*b06) * inv),
		float32((a[1]*b08 - a[0]*b10 - a[3]*b06) * inv),
		float32((a[12]*b04 - a[13]*b02 + a[15]*b00) * inv),
		float32((a[9]*b02 - a[8]*b04 - a[11]*b00) * inv),
		float32((a[5]*b07 - a[4]*b09 - a[6]*b06) * inv),
		float32((a[0]*b09 - a[1]*b07 + a[2]*b06) * inv),
		float32((a[13]*b01 - a[12]*b03 - a[14]*b00) * inv),
		float32((a[8]*b03 - a[9]*b01 + a[10]*b00) * inv),
	}, true
}

// InverseTranspose returns the matrix used to transform normals.
func (m Mat4) InverseTranspose() Mat4 {
	inv, _ := m.Inverse()
	return inv.Transpose()
}

// TransformPoint transforms a 3D point by this matrix (assumes w=1).
func (m Mat4) TransformPoint(p Vec3) Vec3 {
	x := m[0]*p.X + m[4]*p.Y + m[8]*p.Z + m[12]
	y := m[1]*p.X + m[5]*p.Y + m[9]*p.Z + m[13]
	z := m[2]*p.X + m[6]*p.Y + m[10]*p.Z + m[14]
	w := m[3]*p.X + m[7]*p.Y + m[11]*p.Z + m[15]
	if w != 0 && w != 1 {
		return Vec3{x / w, y / w, z / w}
	}
	return Vec3{x, y, z}
}

// Ptr returns a pointer to the first element (for OpenGL uniform calls).
func (m *Mat4) Ptr() *float32 {
	return &m[0]
}
