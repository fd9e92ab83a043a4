package geometry

import (
	"github.com/df07/go-collision-demos/pkg/core"
)

// Box is an axis-aligned container that spheres bounce around inside.
// Faces are ordered +Y, -Y, +X, -X, +Z, -Z.
type Box struct {
	Center core.Vec3
	Width  float64 // Extent along X
	Height float64 // Extent along Y
	Depth  float64 // Extent along Z

	normals [6]core.Vec3
	extents [6]float64
}

// NewBox creates a new box
func NewBox(center core.Vec3, width, height, depth float64) *Box {
	return &Box{
		Center: center,
		Width:  width,
		Height: height,
		Depth:  depth,
		normals: [6]core.Vec3{
			core.NewVec3(0, 1, 0),
			core.NewVec3(0, -1, 0),
			core.NewVec3(1, 0, 0),
			core.NewVec3(-1, 0, 0),
			core.NewVec3(0, 0, 1),
			core.NewVec3(0, 0, -1),
		},
		extents: [6]float64{
			height / 2, height / 2,
			width / 2, width / 2,
			depth / 2, depth / 2,
		},
	}
}

// Normals returns the six outward face normals
func (b *Box) Normals() [6]core.Vec3 { return b.normals }

// Extents returns the half extent matching each face normal
func (b *Box) Extents() [6]float64 { return b.extents }

// ReflectFromBox tests the sphere against every face and reflects its
// direction off each face it has reached. All six faces are always tested,
// so a sphere in a corner is reflected once per face. Returns the number of
// faces hit.
func ReflectFromBox(s *Sphere, b *Box) int {
	p := s.Position.Subtract(b.Center)
	hits := 0

	for i, n := range b.normals {
		d := n.Dot(p) + s.Radius
		if d >= b.extents[i] {
			s.SetDirection(core.Reflect(s.Direction, n))
			s.SetHit()
			hits++
		}
	}

	return hits
}
