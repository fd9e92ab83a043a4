package sim

import (
	"time"

	"github.com/df07/go-collision-demos/pkg/config"
	"github.com/df07/go-collision-demos/pkg/core"
	"github.com/df07/go-collision-demos/pkg/geometry"
)

const (
	rayTriangleN  = 20
	rayMoveStep   = 0.5
	triangleField = 10.0
)

// RayTriangleDemo re-tests a user-steered ray against a cloud of random triangles every tick
type RayTriangleDemo struct {
	base
	random    core.Sampler
	count     int
	triangles []*geometry.Triangle

	rayStart, rayEnd core.Vec3
}

func NewRayTriangleDemo(cfg config.DemoConfig, random core.Sampler) *RayTriangleDemo {
	d := &RayTriangleDemo{
		base:   newBase(NameRayTriangle, 50*time.Millisecond, cfg.Interval()),
		random: random,
		count:  countOr(cfg.Count, rayTriangleN),
	}
	d.Reset()
	return d
}

// randomCorner returns a vertex offset that leans towards -z
func (d *RayTriangleDemo) randomCorner() core.Vec3 {
	return core.NewVec3(
		core.RandomNumber(d.random, 2)+0.1,
		core.RandomNumber(d.random, 2)+0.1,
		-core.RandomPositiveNumber(d.random, 2)+0.1,
	)
}

// Reset regenerates the triangles and returns the ray to its start
func (d *RayTriangleDemo) Reset() error {
	d.triangles = make([]*geometry.Triangle, d.count)
	for i := range d.triangles {
		c := core.RandomVec3(d.random).Multiply(triangleField)
		v0 := c.Add(d.randomCorner())
		v1 := c.Add(d.randomCorner())
		v2 := c.Add(d.randomCorner())
		d.triangles[i] = geometry.NewTriangle(v0, v1, v2)
	}
	d.rayStart = core.NewVec3(0, 0, 0.2)
	d.rayEnd = core.NewVec3(0, 0, -20)
	return nil
}

func (d *RayTriangleDemo) Step() {
	d.tick++
	for _, t := range d.triangles {
		t.Intersect(d.rayStart, d.rayEnd)
	}
}

func (d *RayTriangleDemo) Apply(cmd Command) error {
	switch cmd {
	case CmdReset:
		return d.Reset()
	case CmdRayEndUp:
		d.rayEnd.Y += rayMoveStep
	case CmdRayEndDown:
		d.rayEnd.Y -= rayMoveStep
	case CmdRayEndLeft:
		d.rayEnd.X -= rayMoveStep
	case CmdRayEndRight:
		d.rayEnd.X += rayMoveStep
	case CmdRayStartUp:
		d.rayStart.Y += rayMoveStep
	case CmdRayStartDown:
		d.rayStart.Y -= rayMoveStep
	case CmdRayStartLeft:
		d.rayStart.X -= rayMoveStep
	case CmdRayStartRight:
		d.rayStart.X += rayMoveStep
	default:
		return unsupported(d.name, cmd)
	}
	return nil
}

func (d *RayTriangleDemo) Bindings() map[string]Command {
	return map[string]Command{
		"r":     CmdReset,
		"up":    CmdRayEndUp,
		"down":  CmdRayEndDown,
		"left":  CmdRayEndLeft,
		"right": CmdRayEndRight,
		"w":     CmdRayStartUp,
		"z":     CmdRayStartDown,
		"a":     CmdRayStartLeft,
		"s":     CmdRayStartRight,
	}
}

// Ray returns the current segment as a ray with direction end - start
func (d *RayTriangleDemo) Ray() core.Ray { return core.NewRayBetween(d.rayStart, d.rayEnd) }

// Triangles returns the triangle cloud
func (d *RayTriangleDemo) Triangles() []*geometry.Triangle { return d.triangles }

func (d *RayTriangleDemo) Snapshot() Snapshot {
	snap := d.snapshot()
	snap.Rays = []core.Ray{d.Ray()}
	snap.Triangles = make([]TriangleState, len(d.triangles))
	for i, t := range d.triangles {
		snap.Triangles[i] = triangleState(t)
	}
	return snap
}
