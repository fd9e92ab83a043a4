package sim

import (
	"errors"
	"fmt"

	"github.com/df07/go-collision-demos/pkg/config"
	"github.com/df07/go-collision-demos/pkg/geometry"
)

// SphereSet is an ordered sphere collection with a fixed spawn rule.
// Order matters: pairwise collision passes walk it by index.
type SphereSet struct {
	spheres []*geometry.Sphere
	spawn   func() *geometry.Sphere
	mode    string
}

// NewSphereSet creates an empty set; spawn builds each new sphere
func NewSphereSet(spawn func() *geometry.Sphere, collisionMode string) *SphereSet {
	return &SphereSet{spawn: spawn, mode: collisionMode}
}

// ErrInvalidSphere is wrapped when a spawned sphere fails validation
var ErrInvalidSphere = errors.New("invalid sphere")

// ResetSpheres replaces the collection with count freshly spawned spheres.
// Spheres that fail validation are left out and reported together.
func (s *SphereSet) ResetSpheres(count int) error {
	s.spheres = s.spheres[:0]
	var errs []error
	for i := 0; i < count; i++ {
		sphere, err := s.spawnValid()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		s.spheres = append(s.spheres, sphere)
	}
	return errors.Join(errs...)
}

// AddSphere appends one spawned sphere
func (s *SphereSet) AddSphere() (*geometry.Sphere, error) {
	sphere, err := s.spawnValid()
	if err != nil {
		return nil, err
	}
	s.spheres = append(s.spheres, sphere)
	return sphere, nil
}

func (s *SphereSet) spawnValid() (*geometry.Sphere, error) {
	sphere := s.spawn()
	if err := sphere.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSphere, err)
	}
	return sphere, nil
}

// RemoveSphere drops the last sphere unless only one remains
func (s *SphereSet) RemoveSphere() bool {
	if len(s.spheres) <= 1 {
		return false
	}
	s.spheres[len(s.spheres)-1] = nil
	s.spheres = s.spheres[:len(s.spheres)-1]
	return true
}

// Len returns the number of spheres
func (s *SphereSet) Len() int { return len(s.spheres) }

// Spheres returns the backing slice in index order
func (s *SphereSet) Spheres() []*geometry.Sphere { return s.spheres }

// MoveAll integrates every sphere one tick
func (s *SphereSet) MoveAll() {
	for _, sphere := range s.spheres {
		sphere.Move()
	}
}

// touching runs the exact overlap test behind a bounding box reject
func touching(a, b *geometry.Sphere) bool {
	if !a.BoundingBox().Overlaps(b.BoundingBox()) {
		return false
	}
	return geometry.SphereSphereCollision(a.Position, a.Radius, b.Position, b.Radius)
}

// CheckPairs tests every ordered pair (i, j), i != j, and reverses and marks
// sphere j on contact. In immediate mode the reversal lands as soon as the
// pair is tested, so a sphere touching two others reverses twice. Batched
// mode collects the touching spheres first and reverses each once.
// Returns the number of colliding ordered pairs.
func (s *SphereSet) CheckPairs() int {
	if s.mode == config.CollisionBatched {
		return s.checkPairsBatched()
	}

	pairs := 0
	for i, toCheck := range s.spheres {
		for j, current := range s.spheres {
			if i == j {
				continue
			}
			if touching(current, toCheck) {
				current.Reverse()
				current.SetHit()
				pairs++
			}
		}
	}
	return pairs
}

func (s *SphereSet) checkPairsBatched() int {
	touched := make([]bool, len(s.spheres))
	pairs := 0
	for i, toCheck := range s.spheres {
		for j, current := range s.spheres {
			if i == j {
				continue
			}
			if touching(current, toCheck) {
				touched[j] = true
				pairs++
			}
		}
	}
	for j, hit := range touched {
		if hit {
			s.spheres[j].Reverse()
			s.spheres[j].SetHit()
		}
	}
	return pairs
}
