package geometry

import (
	"fmt"

	"github.com/df07/go-collision-demos/pkg/core"
	"github.com/google/uuid"
)

// Sphere represents a moving sphere. Direction doubles as the per-tick velocity.
type Sphere struct {
	ID        string
	Position  core.Vec3
	Direction core.Vec3
	Radius    float64

	hit          bool      // Set by this tick's collision tests
	lastPosition core.Vec3 // Position before the last Move
	nextPosition core.Vec3 // Predicted position after the next Move
}

// NewSphere creates a new sphere. Radii are not validated here; see Validate.
func NewSphere(position, direction core.Vec3, radius float64) *Sphere {
	return &Sphere{
		ID:        uuid.NewString(),
		Position:  position,
		Direction: direction,
		Radius:    radius,
	}
}

// Validate reports radii that the collision routines cannot give meaning to
func (s *Sphere) Validate() error {
	if s.Radius < 0 {
		return fmt.Errorf("sphere %s: negative radius %g", s.ID, s.Radius)
	}
	return nil
}

// Set replaces position, direction and radius, leaving the hit flag alone
func (s *Sphere) Set(position, direction core.Vec3, radius float64) {
	s.Position = position
	s.Direction = direction
	s.Radius = radius
}

// Move advances the sphere one tick with unit time step and clears the hit flag
func (s *Sphere) Move() {
	s.lastPosition = s.Position
	s.Position = s.Position.Add(s.Direction)
	s.nextPosition = s.Position.Add(s.Direction)
	s.hit = false
}

// Reverse negates the direction
func (s *Sphere) Reverse() {
	s.Direction = s.Direction.Negate()
}

// SetDirection overwrites the direction
func (s *Sphere) SetDirection(direction core.Vec3) {
	s.Direction = direction
}

// SetHit marks the sphere as hit this tick
func (s *Sphere) SetHit() { s.hit = true }

// ClearHit clears the hit marker
func (s *Sphere) ClearHit() { s.hit = false }

// IsHit reports whether a collision test marked the sphere this tick
func (s *Sphere) IsHit() bool { return s.hit }

// LastPosition returns the position held before the most recent Move
func (s *Sphere) LastPosition() core.Vec3 { return s.lastPosition }

// NextPosition returns the position the next Move will produce, as predicted by the last Move
func (s *Sphere) NextPosition() core.Vec3 { return s.nextPosition }

// BoundingBox returns the axis-aligned bounding box for this sphere
func (s *Sphere) BoundingBox() core.AABB {
	return core.NewAABBAround(s.Position, s.Radius)
}

// TestRay runs the boolean ray/sphere test and marks the sphere on a hit.
// A miss leaves the flag untouched so several rays can be tested per tick.
func (s *Sphere) TestRay(origin, direction core.Vec3) bool {
	if RaySphere(origin, direction, s.Position, s.Radius) {
		s.hit = true
		return true
	}
	return false
}
