package geom

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

func vecClose(a, b r3.Vec) bool {
	return r3.Norm(r3.Sub(a, b)) < 1e-9
}

// yaw returns a rotation of theta radians about +Y.
func yaw(theta float64) quat.Number {
	return quat.Number{Real: math.Cos(theta / 2), Jmag: math.Sin(theta / 2)}
}

func TestIdentityApply(t *testing.T) {
	p := r3.Vec{X: 1, Y: -2, Z: 3}
	if got := Identity().Apply(p); !vecClose(got, p) {
		t.Errorf("Identity().Apply(%v) = %v", p, got)
	}
}

func TestTranslationPosition(t *testing.T) {
	m := Translation(1, 2, 3)
	want := r3.Vec{X: 1, Y: 2, Z: 3}
	if got := m.Position(); got != want {
		t.Errorf("Position() = %v, want %v", got, want)
	}
	if got := m.Apply(r3.Vec{X: 1}); !vecClose(got, r3.Vec{X: 2, Y: 2, Z: 3}) {
		t.Errorf("Apply() = %v", got)
	}
}

func TestMulAppliesRightOperandFirst(t *testing.T) {
	// Rotate 90° about Y, then translate +X.
	rot := FromRotation(yaw(math.Pi/2), r3.Vec{})
	tr := Translation(1, 0, 0)

	p := r3.Vec{X: 1}
	got := tr.Mul(rot).Apply(p)
	want := tr.Apply(rot.Apply(p))
	if !vecClose(got, want) {
		t.Errorf("Mul composition = %v, want %v", got, want)
	}
	// 90° yaw sends +X to -Z.
	if !vecClose(rot.Apply(p), r3.Vec{Z: -1}) {
		t.Errorf("yaw(90°) applied to +X = %v, want (0,0,-1)", rot.Apply(p))
	}
}

func TestInverseApplyRoundTrip(t *testing.T) {
	m := FromRotation(yaw(0.7), r3.Vec{X: 0.3, Y: 1.5, Z: -2})
	p := r3.Vec{X: -4, Y: 0.25, Z: 9}

	local := m.InverseApply(m.Apply(p))
	if !vecClose(local, p) {
		t.Errorf("InverseApply(Apply(p)) = %v, want %v", local, p)
	}
}

func TestRotationRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		q    quat.Number
	}{
		{"identity", quat.Number{Real: 1}},
		{"yaw", yaw(1.2)},
		{"half turn x", quat.Number{Imag: 1}},
		{"half turn y", quat.Number{Jmag: 1}},
		{"half turn z", quat.Number{Kmag: 1}},
		{"mixed", quat.Number{Real: 0.3, Imag: -0.5, Jmag: 0.7, Kmag: 0.2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := FromRotation(tt.q, r3.Vec{})
			got := m.Rotation()
			want := quat.Scale(1/quat.Abs(tt.q), tt.q)
			// q and -q describe the same rotation.
			d1 := quat.Abs(quat.Sub(got, want))
			d2 := quat.Abs(quat.Add(got, want))
			if math.Min(d1, d2) > 1e-9 {
				t.Errorf("Rotation() = %v, want ±%v", got, want)
			}
		})
	}
}

func TestFromRotationZeroQuaternion(t *testing.T) {
	m := FromRotation(quat.Number{}, r3.Vec{X: 5})
	if m != Translation(5, 0, 0) {
		t.Errorf("zero quaternion should give pure translation, got %v", m)
	}
}

func TestIsFinite(t *testing.T) {
	m := Identity()
	if !m.IsFinite() {
		t.Error("identity should be finite")
	}
	m[3] = math.NaN()
	if m.IsFinite() {
		t.Error("NaN translation should not be finite")
	}
	m[3] = math.Inf(1)
	if m.IsFinite() {
		t.Error("Inf translation should not be finite")
	}
}

func TestIsRigid(t *testing.T) {
	if !FromRotation(yaw(2), r3.Vec{X: 1}).IsRigid() {
		t.Error("rotation + translation should be rigid")
	}
	scaled := Identity()
	scaled[0], scaled[5], scaled[10] = 2, 2, 2
	if scaled.IsRigid() {
		t.Error("uniform scale should not be rigid")
	}
	mirror := Identity()
	mirror[0] = -1
	if mirror.IsRigid() {
		t.Error("reflection should not be rigid")
	}
	// Unit determinant but not orthonormal.
	squash := Identity()
	squash[0], squash[5] = 2, 0.5
	if squash.IsRigid() {
		t.Error("non-uniform scale with det 1 should not be rigid")
	}
	shear := Identity()
	shear[1] = 0.5
	if shear.IsRigid() {
		t.Error("shear should not be rigid")
	}
}
