package geometry

import (
	"math"

	"github.com/df07/go-collision-demos/pkg/core"
)

// Tolerances of the ray/triangle test. EdgeTolerance widens the accepted
// barycentric range so rays grazing an edge register as hits.
const (
	ParallelEpsilon = 1e-5
	EdgeTolerance   = 0.001
)

// Triangle represents a single immutable triangle together with the result
// of its most recent ray test.
type Triangle struct {
	V0, V1, V2 core.Vec3

	edge1, edge2 core.Vec3    // V1-V0 and V2-V0, cached at construction
	center       core.Vec3    // Centroid
	normals      [3]core.Vec3 // Flat shaded, all equal

	hit      bool
	u, v, w  float64
	hitPoint core.Vec3
}

// NewTriangle creates a new triangle from three vertices
func NewTriangle(v0, v1, v2 core.Vec3) *Triangle {
	t := &Triangle{
		V0:    v0,
		V1:    v1,
		V2:    v2,
		edge1: v1.Subtract(v0),
		edge2: v2.Subtract(v0),
	}
	t.center = v0.Add(v1).Add(v2).Divide(3)

	normal := core.FaceNormal(v0, v1, v2)
	t.normals = [3]core.Vec3{normal, normal, normal}

	return t
}

// Intersect tests the segment direction end-start against the triangle
// using the Moller-Trumbore formulation, recording u, v, w and the hit point.
// The hit flag is cleared before testing.
func (t *Triangle) Intersect(start, end core.Vec3) bool {
	t.hit = false
	dir := end.Subtract(start)

	pvec := dir.Cross(t.edge2)
	det := t.edge1.Dot(pvec)
	// Ray parallel to the triangle plane
	if math.Abs(det) < ParallelEpsilon {
		return false
	}

	invDet := 1.0 / det
	tvec := start.Subtract(t.V0)
	t.u = tvec.Dot(pvec) * invDet
	if t.u < -EdgeTolerance || t.u > 1+EdgeTolerance {
		return false
	}

	qvec := tvec.Cross(t.edge1)
	t.v = dir.Dot(qvec) * invDet
	if t.v < -EdgeTolerance || t.u+t.v > 1+EdgeTolerance {
		return false
	}

	t.w = t.edge2.Dot(qvec) * invDet
	if t.w <= 0 {
		return false
	}

	// Intersect the ray with the triangle's plane for the hit point
	n := t.normals[0]
	a := -n.Dot(tvec)
	b := n.Dot(dir)
	if b == 0 {
		return false
	}
	t.hitPoint = start.Add(dir.Multiply(a / b))
	t.hit = true

	return true
}

// IsHit reports whether the last Intersect call hit
func (t *Triangle) IsHit() bool { return t.hit }

// HitPoint returns the intersection point of the last successful test
func (t *Triangle) HitPoint() core.Vec3 { return t.hitPoint }

// UVW returns the coefficients computed by the last test
func (t *Triangle) UVW() (u, v, w float64) { return t.u, t.v, t.w }

// Edges returns the cached edge vectors
func (t *Triangle) Edges() (edge1, edge2 core.Vec3) { return t.edge1, t.edge2 }

// Center returns the centroid
func (t *Triangle) Center() core.Vec3 { return t.center }

// Normals returns the per-vertex normals
func (t *Triangle) Normals() [3]core.Vec3 { return t.normals }

// GetNormal returns the face normal
func (t *Triangle) GetNormal() core.Vec3 { return t.normals[0] }

// BoundingBox returns the axis-aligned bounding box for this triangle
func (t *Triangle) BoundingBox() core.AABB {
	return core.NewAABBFromPoints(t.V0, t.V1, t.V2)
}
