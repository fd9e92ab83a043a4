package geometry

import (
	"math"

	"github.com/df07/go-collision-demos/pkg/core"
)

// SphereHits holds both roots of a ray/sphere intersection, T1 <= T2.
// Roots behind the ray origin are kept; use Forward to discard them.
type SphereHits struct {
	T1, T2     float64
	Near, Far  core.Vec3
	Tangential bool // Discriminant was exactly zero
}

// Forward returns the nearest root that is >= tMin
func (h SphereHits) Forward(tMin float64) (float64, bool) {
	if h.T1 >= tMin {
		return h.T1, true
	}
	if h.T2 >= tMin {
		return h.T2, true
	}
	return 0, false
}

// sphereQuadratic returns the coefficients of |O + tD - C|^2 = r^2 for the normalized direction
func sphereQuadratic(origin, direction, center core.Vec3, radius float64) (unit core.Vec3, a, b, discriminant float64, ok bool) {
	unit, err := direction.Unit()
	if err != nil {
		return core.Vec3{}, 0, 0, 0, false
	}

	p := origin.Subtract(center)
	a = unit.Dot(unit)
	b = 2 * unit.Dot(p)
	c := p.Dot(p) - radius*radius
	return unit, a, b, b*b - 4*a*c, true
}

// RaySphere is the boolean ray/sphere test. A zero discriminant (grazing ray)
// counts as a miss, as does a zero-length direction.
func RaySphere(origin, direction, center core.Vec3, radius float64) bool {
	_, _, _, discriminant, ok := sphereQuadratic(origin, direction, center, radius)
	return ok && discriminant > 0
}

// RaySphereHits solves for both intersection points. The direction is normalized
// first, so T values are distances along the ray from origin.
func RaySphereHits(origin, direction, center core.Vec3, radius float64) (SphereHits, bool) {
	unit, a, b, discriminant, ok := sphereQuadratic(origin, direction, center, radius)
	if !ok || discriminant < 0 {
		return SphereHits{}, false
	}

	sqrtD := math.Sqrt(discriminant)
	t1 := (-b - sqrtD) / (2 * a)
	t2 := (-b + sqrtD) / (2 * a)

	ray := core.NewRay(origin, unit)
	return SphereHits{
		T1:         t1,
		T2:         t2,
		Near:       ray.At(t1),
		Far:        ray.At(t2),
		Tangential: discriminant == 0,
	}, true
}
