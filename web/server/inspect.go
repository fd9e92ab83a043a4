package server

import (
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/df07/go-collision-demos/pkg/core"
	"github.com/df07/go-collision-demos/pkg/geometry"
	"github.com/df07/go-collision-demos/pkg/sim"
)

// InspectResponse represents the JSON response for a pick ray
type InspectResponse struct {
	Hit      bool      `json:"hit"`
	Tick     uint64    `json:"tick"`
	Kind     string    `json:"kind,omitempty"` // "sphere" or "triangle"
	Index    int       `json:"index"`
	ID       string    `json:"id,omitempty"`
	Point    core.Vec3 `json:"point"`
	Normal   core.Vec3 `json:"normal"`
	Distance float64   `json:"distance"`
}

// handleInspect replays a demo to the requested tick (query "tick") and casts a pick ray into it,
// reporting the nearest sphere or triangle in front of the ray origin
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseDemoRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	ray, err := parseRayParams(r.URL.Query())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	demo, err := sim.New(req.Demo, nil)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	ticks, err := parseIntParam(r.URL.Query(), "tick", 0, 0, s.maxTicks())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	for i := 0; i < ticks; i++ {
		demo.Step()
	}

	writeJSON(w, http.StatusOK, inspectSnapshot(demo.Snapshot(), ray))
}

// inspectSnapshot finds the nearest hit along ray among the snapshot's spheres and triangles
func inspectSnapshot(snap sim.Snapshot, ray core.Ray) InspectResponse {
	best := InspectResponse{Tick: snap.Tick, Distance: math.Inf(1)}

	unit, err := ray.Direction.Unit()
	if err != nil {
		best.Distance = 0
		return best
	}

	for i, sp := range snap.Spheres {
		if !core.NewAABBAround(sp.Position, sp.Radius).IntersectsRay(ray) {
			continue
		}
		hits, ok := geometry.RaySphereHits(ray.Origin, ray.Direction, sp.Position, sp.Radius)
		if !ok {
			continue
		}
		t, ok := hits.Forward(0)
		if !ok || t >= best.Distance {
			continue
		}
		point := ray.Origin.Add(unit.Multiply(t))
		best = InspectResponse{
			Hit:      true,
			Tick:     snap.Tick,
			Kind:     "sphere",
			Index:    i,
			ID:       sp.ID,
			Point:    point,
			Normal:   point.Subtract(sp.Position).Normalize(),
			Distance: t,
		}
	}

	for i, ts := range snap.Triangles {
		tri := geometry.NewTriangle(ts.Vertices[0], ts.Vertices[1], ts.Vertices[2])
		if !tri.BoundingBox().IntersectsRay(ray) {
			continue
		}
		if !tri.Intersect(ray.Origin, ray.End()) {
			continue
		}
		d := tri.HitPoint().Subtract(ray.Origin).Length()
		if d >= best.Distance {
			continue
		}
		best = InspectResponse{
			Hit:      true,
			Tick:     snap.Tick,
			Kind:     "triangle",
			Index:    i,
			Point:    tri.HitPoint(),
			Normal:   tri.GetNormal(),
			Distance: d,
		}
	}

	if !best.Hit {
		best.Distance = 0
	}
	return best
}

// parseRayParams reads ox, oy, oz and dx, dy, dz; the direction defaults to -z
func parseRayParams(values url.Values) (core.Ray, error) {
	const limit = 1000.0
	var o, d [3]float64
	defaults := [3]float64{0, 0, -1}
	for i, axis := range []string{"x", "y", "z"} {
		var err error
		if o[i], err = parseFloatParam(values, "o"+axis, 0, -limit, limit); err != nil {
			return core.Ray{}, err
		}
		if d[i], err = parseFloatParam(values, "d"+axis, defaults[i], -limit, limit); err != nil {
			return core.Ray{}, err
		}
	}
	ray := core.NewRay(core.NewVec3(o[0], o[1], o[2]), core.NewVec3(d[0], d[1], d[2]))
	if ray.Direction.IsZero() {
		return core.Ray{}, fmt.Errorf("ray direction must be non-zero")
	}
	return ray, nil
}

// parseFloatParam parses a float parameter from URL query with validation
func parseFloatParam(values url.Values, key string, defaultValue, min, max float64) (float64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %f and %f, got: %f", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}
