package geometry

import (
	"github.com/df07/go-collision-demos/pkg/core"
)

// Plane represents a bounded rectangular plane that can be tilted about the
// world X and Z axes. Tilting rotates about the world origin.
type Plane struct {
	center core.Vec3
	width  float64
	depth  float64

	baseVerts [4]core.Vec3 // Corners before any tilt
	verts     [4]core.Vec3 // Corners after the accumulated tilt
	xRot      float64      // Accumulated tilt about X, degrees
	zRot      float64      // Accumulated tilt about Z, degrees
	normal    core.Vec3
}

// NewPlane creates a horizontal plane centered at center
func NewPlane(center core.Vec3, width, depth float64) *Plane {
	hw, hd := width/2, depth/2
	p := &Plane{
		center: center,
		width:  width,
		depth:  depth,
		baseVerts: [4]core.Vec3{
			core.NewVec3(center.X-hw, center.Y, center.Z+hd),
			core.NewVec3(center.X+hw, center.Y, center.Z+hd),
			core.NewVec3(center.X+hw, center.Y, center.Z-hd),
			core.NewVec3(center.X-hw, center.Y, center.Z-hd),
		},
	}
	p.verts = p.baseVerts
	p.updateNormal()
	return p
}

// NewUnitPlane creates a 1x1 plane at the origin
func NewUnitPlane() *Plane {
	return NewPlane(core.Vec3{}, 1, 1)
}

// Tilt adds delta degrees to the selected axes and rebuilds the corners from
// the untilted originals, so equal and opposite tilts cancel exactly in angle.
func (p *Plane) Tilt(delta float64, aboutX, aboutZ bool) {
	if aboutX {
		p.xRot += delta
	}
	if aboutZ {
		p.zRot += delta
	}

	for i, v := range p.baseVerts {
		p.verts[i] = v.RotateX(p.xRot).RotateZ(p.zRot)
	}
	p.updateNormal()
}

// Reset clears the accumulated tilt
func (p *Plane) Reset() {
	p.xRot = 0
	p.zRot = 0
	p.Tilt(0, false, false)
}

func (p *Plane) updateNormal() {
	p.normal = core.FaceNormal(p.verts[3], p.verts[2], p.verts[1])
}

// Normal returns the unit normal of the tilted plane
func (p *Plane) Normal() core.Vec3 { return p.normal }

// Center returns the untilted center
func (p *Plane) Center() core.Vec3 { return p.center }

// Width returns the extent along X
func (p *Plane) Width() float64 { return p.width }

// Depth returns the extent along Z
func (p *Plane) Depth() float64 { return p.depth }

// Vertices returns the current corners
func (p *Plane) Vertices() [4]core.Vec3 { return p.verts }

// Angles returns the accumulated tilt in degrees about X and Z
func (p *Plane) Angles() (x, z float64) { return p.xRot, p.zRot }

// SpherePlaneCollision reports whether a sphere has crossed the plane
// (normal.pos + radius <= 0) while lying over the plane's rectangle on X and Z.
// The rectangle test uses the untilted extents.
func SpherePlaneCollision(position core.Vec3, radius float64, plane *Plane) bool {
	d := plane.normal.Dot(position) + radius
	if d > 0 {
		return false
	}

	hw, hd := plane.width/2, plane.depth/2
	c := plane.center
	return position.X > c.X-hw && position.X < c.X+hw &&
		position.Z > c.Z-hd && position.Z < c.Z+hd
}

// CollidePlane tests the sphere against the plane and on a hit snaps the
// sphere's direction to the plane normal and marks it hit.
func CollidePlane(s *Sphere, plane *Plane) bool {
	if !SpherePlaneCollision(s.Position, s.Radius, plane) {
		return false
	}
	s.SetDirection(plane.normal)
	s.SetHit()
	return true
}
