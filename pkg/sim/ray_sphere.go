package sim

import (
	"time"

	"github.com/df07/go-collision-demos/pkg/config"
	"github.com/df07/go-collision-demos/pkg/core"
	"github.com/df07/go-collision-demos/pkg/geometry"
)

const (
	raySweepStep  = 0.5
	raySweepLimit = 22.0
	raySphereN    = 40
)

// RaySphereDemo sweeps two rays through a field of static spheres
type RaySphereDemo struct {
	base
	random  core.Sampler
	count   int
	spheres []*geometry.Sphere
	points  [][]core.Vec3 // Entry and exit points per sphere from the last tick

	rayStart, rayEnd   core.Vec3
	rayStart2, rayEnd2 core.Vec3
	backward           bool
}

func NewRaySphereDemo(cfg config.DemoConfig, random core.Sampler) *RaySphereDemo {
	d := &RaySphereDemo{
		base:   newBase(NameRaySphere, 50*time.Millisecond, cfg.Interval()),
		random: random,
		count:  countOr(cfg.Count, raySphereN),
	}
	d.Reset()
	return d
}

// Reset respawns the spheres and returns both rays to their starting sweep
func (d *RaySphereDemo) Reset() error {
	d.spheres = make([]*geometry.Sphere, d.count)
	d.points = make([][]core.Vec3, d.count)
	for i := range d.spheres {
		pos := core.NewVec3(core.RandomNumber(d.random, 10), core.RandomNumber(d.random, 8), 0)
		d.spheres[i] = geometry.NewSphere(pos, core.Vec3{}, core.RandomPositiveNumber(d.random, 1)+0.2)
	}
	d.rayStart = core.NewVec3(0, 10, 0)
	d.rayEnd = core.NewVec3(0, -5, 0)
	d.rayStart2 = core.NewVec3(0, 0, 20)
	d.rayEnd2 = core.NewVec3(0, 0, -5)
	d.backward = false
	return nil
}

func (d *RaySphereDemo) Step() {
	d.tick++
	dir := d.rayEnd.Subtract(d.rayStart)
	dir2 := d.rayEnd2.Subtract(d.rayStart2)

	for i, s := range d.spheres {
		s.ClearHit()
		d.points[i] = d.points[i][:0]
		if s.TestRay(d.rayStart, dir) {
			d.points[i] = appendHitPoints(d.points[i], d.rayStart, dir, s)
		}
		if s.TestRay(d.rayStart2, dir2) {
			d.points[i] = appendHitPoints(d.points[i], d.rayStart2, dir2, s)
		}
	}

	// The two ray ends sweep in opposite directions along x
	if !d.backward {
		d.rayEnd.X += raySweepStep
		d.rayEnd2.X -= raySweepStep
		if d.rayEnd.X > raySweepLimit {
			d.backward = true
		}
	} else {
		d.rayEnd.X -= raySweepStep
		d.rayEnd2.X += raySweepStep
		if d.rayEnd.X <= -raySweepLimit {
			d.backward = false
		}
	}
}

func (d *RaySphereDemo) Apply(cmd Command) error {
	if cmd == CmdReset {
		return d.Reset()
	}
	return unsupported(d.name, cmd)
}

func (d *RaySphereDemo) Bindings() map[string]Command {
	return map[string]Command{"r": CmdReset}
}

// Rays returns both rays with direction end - start
func (d *RaySphereDemo) Rays() []core.Ray {
	return []core.Ray{
		core.NewRayBetween(d.rayStart, d.rayEnd),
		core.NewRayBetween(d.rayStart2, d.rayEnd2),
	}
}

// Spheres returns the sphere field
func (d *RaySphereDemo) Spheres() []*geometry.Sphere { return d.spheres }

func (d *RaySphereDemo) Snapshot() Snapshot {
	snap := d.snapshot()
	snap.Rays = d.Rays()
	snap.Spheres = sphereStates(d.spheres)
	for i, points := range d.points {
		if len(points) > 0 {
			snap.Spheres[i].HitPoints = append([]core.Vec3(nil), points...)
		}
	}
	return snap
}

func appendHitPoints(points []core.Vec3, origin, dir core.Vec3, s *geometry.Sphere) []core.Vec3 {
	hits, ok := geometry.RaySphereHits(origin, dir, s.Position, s.Radius)
	if !ok {
		return points
	}
	return append(points, hits.Near, hits.Far)
}
