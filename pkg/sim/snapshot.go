package sim

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/df07/go-collision-demos/pkg/core"
	"github.com/df07/go-collision-demos/pkg/geometry"
)

// Snapshot is the published state of a demo after a tick
type Snapshot struct {
	Demo      string          `json:"demo"`
	Tick      uint64          `json:"tick"`
	Animate   bool            `json:"animate"`
	Spheres   []SphereState   `json:"spheres,omitempty"`
	Triangles []TriangleState `json:"triangles,omitempty"`
	Plane     *PlaneState     `json:"plane,omitempty"`
	Box       *BoxState       `json:"box,omitempty"`
	Rays      []core.Ray      `json:"rays,omitempty"`
	Digest    string          `json:"digest"`
}

type SphereState struct {
	ID        string      `json:"id"`
	Position  core.Vec3   `json:"position"`
	Direction core.Vec3   `json:"direction"`
	Radius    float64     `json:"radius"`
	Hit       bool        `json:"hit"`
	HitPoints []core.Vec3 `json:"hit_points,omitempty"`
}

type TriangleState struct {
	Vertices [3]core.Vec3 `json:"vertices"`
	Normal   core.Vec3    `json:"normal"`
	Hit      bool         `json:"hit"`
	HitPoint *core.Vec3   `json:"hit_point,omitempty"`
	// U, V and W are the coefficients of the last hit; zero when missed
	U float64 `json:"u"`
	V float64 `json:"v"`
	W float64 `json:"w"`
}

type PlaneState struct {
	Vertices [4]core.Vec3 `json:"vertices"`
	Normal   core.Vec3    `json:"normal"`
	XRot     float64      `json:"x_rot"`
	ZRot     float64      `json:"z_rot"`
}

type BoxState struct {
	Center core.Vec3 `json:"center"`
	Width  float64   `json:"width"`
	Height float64   `json:"height"`
	Depth  float64   `json:"depth"`
}

func sphereState(s *geometry.Sphere) SphereState {
	return SphereState{
		ID:        s.ID,
		Position:  s.Position,
		Direction: s.Direction,
		Radius:    s.Radius,
		Hit:       s.IsHit(),
	}
}

func sphereStates(spheres []*geometry.Sphere) []SphereState {
	states := make([]SphereState, len(spheres))
	for i, s := range spheres {
		states[i] = sphereState(s)
	}
	return states
}

func triangleState(t *geometry.Triangle) TriangleState {
	state := TriangleState{
		Vertices: [3]core.Vec3{t.V0, t.V1, t.V2},
		Normal:   t.GetNormal(),
		Hit:      t.IsHit(),
	}
	if t.IsHit() {
		p := t.HitPoint()
		state.HitPoint = &p
		state.U, state.V, state.W = t.UVW()
	}
	return state
}

func planeState(p *geometry.Plane) *PlaneState {
	x, z := p.Angles()
	return &PlaneState{Vertices: p.Vertices(), Normal: p.Normal(), XRot: x, ZRot: z}
}

func boxState(b *geometry.Box) *BoxState {
	return &BoxState{Center: b.Center, Width: b.Width, Height: b.Height, Depth: b.Depth}
}

// ComputeDigest hashes the numeric state of the snapshot. Sphere ids and the
// digest field itself are excluded, so two runs from the same seed and the
// same command sequence produce the same digests.
func (s Snapshot) ComputeDigest() uint64 {
	d := digester{h: xxhash.New()}
	d.str(s.Demo)
	d.u64(s.Tick)
	d.flag(s.Animate)

	for _, sp := range s.Spheres {
		d.vec(sp.Position)
		d.vec(sp.Direction)
		d.f64(sp.Radius)
		d.flag(sp.Hit)
	}
	for _, t := range s.Triangles {
		for _, v := range t.Vertices {
			d.vec(v)
		}
		d.flag(t.Hit)
		if t.HitPoint != nil {
			d.vec(*t.HitPoint)
			d.f64(t.U)
			d.f64(t.V)
			d.f64(t.W)
		}
	}
	if s.Plane != nil {
		for _, v := range s.Plane.Vertices {
			d.vec(v)
		}
		d.f64(s.Plane.XRot)
		d.f64(s.Plane.ZRot)
	}
	if s.Box != nil {
		d.vec(s.Box.Center)
		d.f64(s.Box.Width)
		d.f64(s.Box.Height)
		d.f64(s.Box.Depth)
	}
	for _, r := range s.Rays {
		d.vec(r.Origin)
		d.vec(r.Direction)
	}
	return d.h.Sum64()
}

// Seal fills in Digest
func (s Snapshot) Seal() Snapshot {
	s.Digest = fmt.Sprintf("%016x", s.ComputeDigest())
	return s
}

type digester struct {
	h   *xxhash.Digest
	buf [8]byte
}

func (d *digester) u64(v uint64) {
	binary.LittleEndian.PutUint64(d.buf[:], v)
	_, _ = d.h.Write(d.buf[:])
}

func (d *digester) f64(v float64) { d.u64(math.Float64bits(v)) }

func (d *digester) vec(v core.Vec3) {
	d.f64(v.X)
	d.f64(v.Y)
	d.f64(v.Z)
}

func (d *digester) flag(b bool) {
	if b {
		d.u64(1)
	} else {
		d.u64(0)
	}
}

func (d *digester) str(s string) {
	_, _ = d.h.WriteString(s)
	d.u64(uint64(len(s)))
}
