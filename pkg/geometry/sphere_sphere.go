package geometry

import "github.com/df07/go-collision-demos/pkg/core"

// SphereSphereCollision reports whether two spheres touch or overlap,
// comparing squared distances to avoid a square root.
func SphereSphereCollision(p1 core.Vec3, r1 float64, p2 core.Vec3, r2 float64) bool {
	minDist := r1 + r2
	return p1.Subtract(p2).LengthSquared() <= minDist*minDist
}

// Collides reports whether s and other overlap
func (s *Sphere) Collides(other *Sphere) bool {
	return SphereSphereCollision(s.Position, s.Radius, other.Position, other.Radius)
}
