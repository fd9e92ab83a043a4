package sim

import (
	"time"

	"github.com/df07/go-collision-demos/pkg/config"
	"github.com/df07/go-collision-demos/pkg/core"
	"github.com/df07/go-collision-demos/pkg/geometry"
)

const (
	bboxSize        = 80.0
	bboxSpawnExtent = 20.0
	bboxDefaultN    = 50
)

// BBox bounces spheres around inside a box, optionally colliding them with each other
type BBox struct {
	base
	box          *geometry.Box
	spheres      *SphereSet
	count        int
	checkSpheres bool
}

// NewBBox builds the demo and spawns its spheres
func NewBBox(cfg config.DemoConfig, random core.Sampler) (*BBox, error) {
	d := &BBox{
		base:         newBase(NameBBox, 40*time.Millisecond, cfg.Interval()),
		box:          geometry.NewBox(core.Vec3{}, bboxSize, bboxSize, bboxSize),
		count:        countOr(cfg.Count, bboxDefaultN),
		checkSpheres: cfg.CheckSphereSphere,
	}
	d.spheres = NewSphereSet(func() *geometry.Sphere {
		pos := core.RandomPoint(random, bboxSpawnExtent, bboxSpawnExtent, bboxSpawnExtent)
		dir := core.RandomVec3(random)
		return geometry.NewSphere(pos, dir, core.RandomPositiveNumber(random, 2)+0.5)
	}, cfg.CollisionMode)
	if err := d.Reset(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *BBox) Step() {
	d.tick++
	d.spheres.MoveAll()
	if d.checkSpheres {
		d.spheres.CheckPairs()
	}
	for _, s := range d.spheres.Spheres() {
		geometry.ReflectFromBox(s, d.box)
	}
}

// Reset respawns as many spheres as the demo currently holds
func (d *BBox) Reset() error {
	return d.spheres.ResetSpheres(d.count)
}

func (d *BBox) Apply(cmd Command) error {
	switch cmd {
	case CmdReset:
		return d.Reset()
	case CmdAddEntity:
		if _, err := d.spheres.AddSphere(); err != nil {
			return err
		}
		d.count = d.spheres.Len()
	case CmdRemoveEntity:
		if d.spheres.RemoveSphere() {
			d.count = d.spheres.Len()
		}
	case CmdToggleSphereCheck:
		d.checkSpheres = !d.checkSpheres
	default:
		return unsupported(d.name, cmd)
	}
	return nil
}

func (d *BBox) Bindings() map[string]Command {
	return map[string]Command{
		"r": CmdReset,
		"+": CmdAddEntity,
		"=": CmdAddEntity,
		"-": CmdRemoveEntity,
		"s": CmdToggleSphereCheck,
	}
}

func (d *BBox) Snapshot() Snapshot {
	snap := d.snapshot()
	snap.Spheres = sphereStates(d.spheres.Spheres())
	snap.Box = boxState(d.box)
	return snap
}

// Spheres exposes the sphere collection
func (d *BBox) Spheres() *SphereSet { return d.spheres }

// CheckingSpheres reports whether the pairwise pass runs each tick
func (d *BBox) CheckingSpheres() bool { return d.checkSpheres }

func countOr(n, fallback int) int {
	if n > 0 {
		return n
	}
	return fallback
}
