package shape

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestSphereOverlaps(t *testing.T) {
	s := NewSphere(1)
	tests := []struct {
		name   string
		offset r3.Vec
		want   bool
	}{
		{"origin", r3.Vec{}, true},
		{"inside", r3.Vec{X: 0.5, Y: 0.5}, true},
		{"on surface", r3.Vec{Z: 1}, true},
		{"just outside", r3.Vec{X: 1.0001}, false},
		{"far", r3.Vec{X: 5}, false},
		{"diagonal outside", r3.Vec{X: 0.8, Y: 0.8}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Overlaps(tt.offset); got != tt.want {
				t.Errorf("Overlaps(%v) = %v, want %v", tt.offset, got, tt.want)
			}
		})
	}
}

func TestNewSphereRejectsNonPositiveRadius(t *testing.T) {
	for _, r := range []float64{0, -1, math.NaN()} {
		if s := NewSphere(r); s != nil {
			t.Errorf("NewSphere(%v) = %v, want nil", r, s)
		}
	}
	if s := NewSphere(0.1); s == nil || s.Kind() != "sphere" {
		t.Errorf("NewSphere(0.1) = %v", s)
	}
}
