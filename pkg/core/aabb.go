package core

import "math"

// AABB is an axis-aligned box used as a cheap reject ahead of exact collision tests
type AABB struct {
	Min Vec3 `json:"min"`
	Max Vec3 `json:"max"`
}

// NewAABB creates a box from its corners
func NewAABB(min, max Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// NewAABBAround returns the cube of half width r centered on c
func NewAABBAround(c Vec3, r float64) AABB {
	half := NewVec3(r, r, r)
	return AABB{Min: c.Subtract(half), Max: c.Add(half)}
}

// NewAABBFromPoints bounds the given points. No points gives the zero box.
func NewAABBFromPoints(points ...Vec3) AABB {
	if len(points) == 0 {
		return AABB{}
	}
	b := AABB{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		b.Min = NewVec3(math.Min(b.Min.X, p.X), math.Min(b.Min.Y, p.Y), math.Min(b.Min.Z, p.Z))
		b.Max = NewVec3(math.Max(b.Max.X, p.X), math.Max(b.Max.Y, p.Y), math.Max(b.Max.Z, p.Z))
	}
	return b
}

// Overlaps reports whether the two boxes share any point; touching faces count
func (b AABB) Overlaps(other AABB) bool {
	return b.Min.X <= other.Max.X && other.Min.X <= b.Max.X &&
		b.Min.Y <= other.Max.Y && other.Min.Y <= b.Max.Y &&
		b.Min.Z <= other.Max.Z && other.Min.Z <= b.Max.Z
}

// IntersectsRay runs the slab test for origin + t*dir with t >= 0.
// Axes the ray runs parallel to only pass when the origin is inside that slab.
func (b AABB) IntersectsRay(r Ray) bool {
	tNear, tFar := 0.0, math.Inf(1)
	o := [3]float64{r.Origin.X, r.Origin.Y, r.Origin.Z}
	d := [3]float64{r.Direction.X, r.Direction.Y, r.Direction.Z}
	lo := [3]float64{b.Min.X, b.Min.Y, b.Min.Z}
	hi := [3]float64{b.Max.X, b.Max.Y, b.Max.Z}

	for axis := 0; axis < 3; axis++ {
		if d[axis] == 0 {
			if o[axis] < lo[axis] || o[axis] > hi[axis] {
				return false
			}
			continue
		}
		t0 := (lo[axis] - o[axis]) / d[axis]
		t1 := (hi[axis] - o[axis]) / d[axis]
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		tNear = math.Max(tNear, t0)
		tFar = math.Min(tFar, t1)
		if tNear > tFar {
			return false
		}
	}
	return true
}
