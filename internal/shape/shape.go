// Package shape provides the geometric predicates used by overlap volumes.
// Callers only ever go through the Shape interface; new variants can be
// added without touching the overlap engine.
package shape

import "gonum.org/v1/gonum/spatial/r3"

// Shape tests whether a point, expressed as an offset from the shape's own
// origin in the shape's local frame, lies inside it.
type Shape interface {
	Overlaps(offset r3.Vec) bool
	// Kind names the variant for debug output.
	Kind() string
}

// Sphere is a ball of the given radius centred on the origin.
type Sphere struct {
	Radius float64
}

// NewSphere returns a sphere, or nil when radius is not strictly positive.
func NewSphere(radius float64) *Sphere {
	if !(radius > 0) {
		return nil
	}
	return &Sphere{Radius: radius}
}

// Overlaps compares squared lengths so the per-frame, per-pair path avoids a
// square root. Points on the surface count as overlapping.
func (s *Sphere) Overlaps(offset r3.Vec) bool {
	return r3.Norm2(offset) <= s.Radius*s.Radius
}

func (s *Sphere) Kind() string { return "sphere" }

// Verify at compile time that *Sphere implements Shape.
var _ Shape = (*Sphere)(nil)
