package sim

import (
	"time"

	"github.com/df07/go-collision-demos/pkg/config"
	"github.com/df07/go-collision-demos/pkg/core"
	"github.com/df07/go-collision-demos/pkg/geometry"
)

// SphereSphereDemo bounces two small spheres between two fixed large ones.
// Spheres 0 and 1 are anchors; 2 and 3 move along x.
type SphereSphereDemo struct {
	base
	spheres [4]*geometry.Sphere
}

func NewSphereSphereDemo(cfg config.DemoConfig, _ core.Sampler) *SphereSphereDemo {
	d := &SphereSphereDemo{
		base: newBase(NameSphereSphere, 20*time.Millisecond, cfg.Interval()),
	}
	for i := range d.spheres {
		d.spheres[i] = geometry.NewSphere(core.Vec3{}, core.Vec3{}, 0)
	}
	d.Reset()
	return d
}

// Reset puts the four spheres back in their starting layout
func (d *SphereSphereDemo) Reset() error {
	d.spheres[0].Set(core.NewVec3(-10, 0, 0), core.Vec3{}, 2)
	d.spheres[1].Set(core.NewVec3(10, 0, 0), core.Vec3{}, 2)
	d.spheres[2].Set(core.NewVec3(-7, 0, 0), core.NewVec3(0.5, 0, 0), 1)
	d.spheres[3].Set(core.NewVec3(7, 0, 0), core.NewVec3(-0.5, 0, 0), 1)
	for _, s := range d.spheres {
		s.ClearHit()
	}
	return nil
}

func (d *SphereSphereDemo) Step() {
	d.tick++
	movers := d.spheres[2:]
	for _, s := range movers {
		s.Move()
	}

	if movers[0].Collides(movers[1]) {
		d.bounce(movers[0])
		d.bounce(movers[1])
	}
	if d.spheres[0].Collides(d.spheres[2]) {
		d.bounce(d.spheres[2])
	}
	if d.spheres[1].Collides(d.spheres[3]) {
		d.bounce(d.spheres[3])
	}
}

func (d *SphereSphereDemo) bounce(s *geometry.Sphere) {
	s.Reverse()
	s.SetHit()
}

func (d *SphereSphereDemo) Apply(cmd Command) error {
	if cmd == CmdReset {
		return d.Reset()
	}
	return unsupported(d.name, cmd)
}

func (d *SphereSphereDemo) Bindings() map[string]Command {
	return map[string]Command{"r": CmdReset}
}

// Spheres returns the anchors followed by the movers
func (d *SphereSphereDemo) Spheres() []*geometry.Sphere { return d.spheres[:] }

func (d *SphereSphereDemo) Snapshot() Snapshot {
	snap := d.snapshot()
	snap.Spheres = sphereStates(d.spheres[:])
	return snap
}
