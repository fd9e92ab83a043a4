package sim

import (
	"time"

	"github.com/df07/go-collision-demos/pkg/config"
	"github.com/df07/go-collision-demos/pkg/core"
	"github.com/df07/go-collision-demos/pkg/geometry"
)

const (
	spherePlaneN       = 100
	respawnEvery       = 20
	dropHeight         = 8.0
	dropSpread         = 6.0
	dropRadius         = 0.2
	tiltStep           = 1.0
	spherePlaneExtents = 5.0
)

var dropDirection = core.NewVec3(0, -1, 0)

// SpherePlaneDemo drops spheres onto a tiltable plane, respawning them periodically
type SpherePlaneDemo struct {
	base
	random  core.Sampler
	plane   *geometry.Plane
	spheres *SphereSet
	count   int
	// Ticks since the last respawn
	sinceRespawn int
}

func NewSpherePlaneDemo(cfg config.DemoConfig, random core.Sampler) (*SpherePlaneDemo, error) {
	d := &SpherePlaneDemo{
		base:   newBase(NameSpherePlane, 130*time.Millisecond, cfg.Interval()),
		random: random,
		plane:  geometry.NewPlane(core.Vec3{}, spherePlaneExtents, spherePlaneExtents),
		count:  countOr(cfg.Count, spherePlaneN),
	}
	d.spheres = NewSphereSet(func() *geometry.Sphere {
		return geometry.NewSphere(d.dropPoint(), dropDirection, dropRadius)
	}, cfg.CollisionMode)
	if err := d.spheres.ResetSpheres(d.count); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *SpherePlaneDemo) dropPoint() core.Vec3 {
	return core.NewVec3(core.RandomNumber(d.random, dropSpread), dropHeight, core.RandomNumber(d.random, dropSpread))
}

func (d *SpherePlaneDemo) Step() {
	d.tick++
	d.spheres.MoveAll()
	for _, s := range d.spheres.Spheres() {
		geometry.CollidePlane(s, d.plane)
	}

	d.sinceRespawn++
	if d.sinceRespawn == respawnEvery {
		d.sinceRespawn = 0
		d.respawn()
	}
}

// respawn lifts every sphere back above the plane without replacing it
func (d *SpherePlaneDemo) respawn() {
	for _, s := range d.spheres.Spheres() {
		s.Set(d.dropPoint(), dropDirection, dropRadius)
	}
}

// Reset respawns as many spheres as the demo currently holds and levels the plane
func (d *SpherePlaneDemo) Reset() error {
	d.plane.Reset()
	d.sinceRespawn = 0
	return d.spheres.ResetSpheres(d.count)
}

func (d *SpherePlaneDemo) Apply(cmd Command) error {
	switch cmd {
	case CmdReset:
		return d.Reset()
	case CmdTiltUp:
		d.plane.Tilt(tiltStep, true, false)
	case CmdTiltDown:
		d.plane.Tilt(-tiltStep, true, false)
	case CmdTiltLeft:
		d.plane.Tilt(-tiltStep, false, true)
	case CmdTiltRight:
		d.plane.Tilt(tiltStep, false, true)
	case CmdAddEntity:
		if _, err := d.spheres.AddSphere(); err != nil {
			return err
		}
		d.count = d.spheres.Len()
	case CmdRemoveEntity:
		if d.spheres.RemoveSphere() {
			d.count = d.spheres.Len()
		}
	default:
		return unsupported(d.name, cmd)
	}
	return nil
}

func (d *SpherePlaneDemo) Bindings() map[string]Command {
	return map[string]Command{
		"r":     CmdReset,
		"up":    CmdTiltUp,
		"down":  CmdTiltDown,
		"left":  CmdTiltLeft,
		"right": CmdTiltRight,
		"+":     CmdAddEntity,
		"=":     CmdAddEntity,
		"-":     CmdRemoveEntity,
	}
}

// Plane returns the tiltable plane
func (d *SpherePlaneDemo) Plane() *geometry.Plane { return d.plane }

// Spheres returns the falling spheres
func (d *SpherePlaneDemo) Spheres() *SphereSet { return d.spheres }

func (d *SpherePlaneDemo) Snapshot() Snapshot {
	snap := d.snapshot()
	snap.Spheres = sphereStates(d.spheres.Spheres())
	snap.Plane = planeState(d.plane)
	return snap
}
