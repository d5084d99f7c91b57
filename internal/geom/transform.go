// Package geom holds the rigid-transform helpers shared by the pose cache
// and the overlap engine. Vectors are gonum r3.Vec values and rotations are
// exposed as gonum quaternions.
package geom

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// RigidTolerance is the tolerance used when checking that the rotation block
// of a Matrix34 is a proper rotation (det ≈ 1).
const RigidTolerance = 0.01

// Matrix34 is a 3x4 row-major transform (m00..m03, m10..m13, m20..m23).
// The left 3x3 block is the rotation and the last column the translation,
// matching the device-to-absolute layout reported by VR runtimes.
type Matrix34 [12]float64

// Identity returns the identity transform.
func Identity() Matrix34 {
	return Matrix34{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
	}
}

// Translation returns a pure translation transform.
func Translation(x, y, z float64) Matrix34 {
	return Matrix34{
		1, 0, 0, x,
		0, 1, 0, y,
		0, 0, 1, z,
	}
}

// FromRotation builds a transform from a rotation quaternion and a
// translation. The quaternion is normalised first; a zero quaternion yields
// the identity rotation.
func FromRotation(q quat.Number, t r3.Vec) Matrix34 {
	n := quat.Abs(q)
	if n == 0 {
		return Translation(t.X, t.Y, t.Z)
	}
	q = quat.Scale(1/n, q)
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag

	return Matrix34{
		1 - 2*(y*y+z*z), 2 * (x*y - z*w), 2 * (x*z + y*w), t.X,
		2 * (x*y + z*w), 1 - 2*(x*x+z*z), 2 * (y*z - x*w), t.Y,
		2 * (x*z - y*w), 2 * (y*z + x*w), 1 - 2*(x*x+y*y), t.Z,
	}
}

// Position returns the translation column.
func (m Matrix34) Position() r3.Vec {
	return r3.Vec{X: m[3], Y: m[7], Z: m[11]}
}

// Apply transforms point p into the frame described by m.
func (m Matrix34) Apply(p r3.Vec) r3.Vec {
	return r3.Vec{
		X: m[0]*p.X + m[1]*p.Y + m[2]*p.Z + m[3],
		Y: m[4]*p.X + m[5]*p.Y + m[6]*p.Z + m[7],
		Z: m[8]*p.X + m[9]*p.Y + m[10]*p.Z + m[11],
	}
}

// Mul composes two transforms: the result applies o first, then m.
func (m Matrix34) Mul(o Matrix34) Matrix34 {
	var out Matrix34
	for r := 0; r < 3; r++ {
		for c := 0; c < 4; c++ {
			v := m[r*4+0]*o[0*4+c] + m[r*4+1]*o[1*4+c] + m[r*4+2]*o[2*4+c]
			if c == 3 {
				v += m[r*4+3]
			}
			out[r*4+c] = v
		}
	}
	return out
}

// InverseApply maps a point from the outer frame back into the local frame
// of m, assuming m is rigid: Rᵀ·(p - t).
func (m Matrix34) InverseApply(p r3.Vec) r3.Vec {
	d := r3.Sub(p, m.Position())
	return r3.Vec{
		X: m[0]*d.X + m[4]*d.Y + m[8]*d.Z,
		Y: m[1]*d.X + m[5]*d.Y + m[9]*d.Z,
		Z: m[2]*d.X + m[6]*d.Y + m[10]*d.Z,
	}
}

// Rotation extracts the rotation block as a unit quaternion.
func (m Matrix34) Rotation() quat.Number {
	m00, m01, m02 := m[0], m[1], m[2]
	m10, m11, m12 := m[4], m[5], m[6]
	m20, m21, m22 := m[8], m[9], m[10]

	var q quat.Number
	trace := m00 + m11 + m22
	switch {
	case trace > 0:
		s := 0.5 / math.Sqrt(trace+1)
		q = quat.Number{Real: 0.25 / s, Imag: (m21 - m12) * s, Jmag: (m02 - m20) * s, Kmag: (m10 - m01) * s}
	case m00 > m11 && m00 > m22:
		s := 2 * math.Sqrt(1+m00-m11-m22)
		q = quat.Number{Real: (m21 - m12) / s, Imag: 0.25 * s, Jmag: (m01 + m10) / s, Kmag: (m02 + m20) / s}
	case m11 > m22:
		s := 2 * math.Sqrt(1+m11-m00-m22)
		q = quat.Number{Real: (m02 - m20) / s, Imag: (m01 + m10) / s, Jmag: 0.25 * s, Kmag: (m12 + m21) / s}
	default:
		s := 2 * math.Sqrt(1+m22-m00-m11)
		q = quat.Number{Real: (m10 - m01) / s, Imag: (m02 + m20) / s, Jmag: (m12 + m21) / s, Kmag: 0.25 * s}
	}
	if n := quat.Abs(q); n > 0 {
		q = quat.Scale(1/n, q)
	}
	return q
}

// IsFinite reports whether every element of m is a finite number.
func (m Matrix34) IsFinite() bool {
	for _, v := range m {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// IsRigid reports whether the rotation block of m is a proper rotation:
// orthonormal rows and determinant ≈ 1, so no scale, shear or reflection.
// InverseApply is only correct for rigid transforms.
func (m Matrix34) IsRigid() bool {
	rows := [3]r3.Vec{
		{X: m[0], Y: m[1], Z: m[2]},
		{X: m[4], Y: m[5], Z: m[6]},
		{X: m[8], Y: m[9], Z: m[10]},
	}
	for i := range rows {
		for j := i; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1
			}
			if math.Abs(r3.Dot(rows[i], rows[j])-want) > RigidTolerance {
				return false
			}
		}
	}
	det := r3.Dot(rows[0], r3.Cross(rows[1], rows[2]))
	return math.Abs(det-1.0) <= RigidTolerance
}
