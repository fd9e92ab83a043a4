package sim

import (
	"fmt"
	"sort"

	"github.com/df07/go-collision-demos/pkg/config"
	"github.com/df07/go-collision-demos/pkg/core"
)

// Demo names
const (
	NameBBox         = "bbox"
	NameRaySphere    = "raysphere"
	NameRayTriangle  = "raytriangle"
	NameSpherePlane  = "sphereplane"
	NameSphereSphere = "spheresphere"
)

// Info describes a registered demo
type Info struct {
	Name         string `json:"name"`
	DisplayName  string `json:"display_name"`
	Description  string `json:"description"`
	DefaultCount int    `json:"default_count,omitempty"`
}

type factory func(cfg config.DemoConfig, random core.Sampler) (Demo, error)

type entry struct {
	info Info
	new  factory
}

var registry = map[string]entry{
	NameBBox: {
		info: Info{NameBBox, "Bounding Box", "Spheres bouncing inside an axis-aligned box, optionally colliding with each other", bboxDefaultN},
		new:  func(cfg config.DemoConfig, r core.Sampler) (Demo, error) {
			d, err := NewBBox(cfg, r)
			if err != nil {
				return nil, err
			}
			return d, nil
		},
	},
	NameRaySphere: {
		info: Info{NameRaySphere, "Ray / Sphere", "Two sweeping rays tested against a field of spheres", raySphereN},
		new:  func(cfg config.DemoConfig, r core.Sampler) (Demo, error) { return NewRaySphereDemo(cfg, r), nil },
	},
	NameRayTriangle: {
		info: Info{NameRayTriangle, "Ray / Triangle", "A steerable ray tested against random triangles", rayTriangleN},
		new:  func(cfg config.DemoConfig, r core.Sampler) (Demo, error) { return NewRayTriangleDemo(cfg, r), nil },
	},
	NameSpherePlane: {
		info: Info{NameSpherePlane, "Sphere / Plane", "Spheres dropping onto a tiltable plane", spherePlaneN},
		new:  func(cfg config.DemoConfig, r core.Sampler) (Demo, error) {
			d, err := NewSpherePlaneDemo(cfg, r)
			if err != nil {
				return nil, err
			}
			return d, nil
		},
	},
	NameSphereSphere: {
		info: Info{NameSphereSphere, "Sphere / Sphere", "Two spheres bouncing between two fixed anchors", 0},
		new:  func(cfg config.DemoConfig, r core.Sampler) (Demo, error) { return NewSphereSphereDemo(cfg, r), nil },
	},
}

// Names returns the registered demo names in sorted order
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List returns the registered demos sorted by name
func List() []Info {
	infos := make([]Info, 0, len(registry))
	for _, name := range Names() {
		infos = append(infos, registry[name].info)
	}
	return infos
}

// New builds the demo named by cfg.Name. A nil random is replaced by one seeded from cfg.Seed.
func New(cfg config.DemoConfig, random core.Sampler) (Demo, error) {
	e, ok := registry[cfg.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownDemo, cfg.Name, Names())
	}
	if random == nil {
		random = core.NewRandom(cfg.Seed)
	}
	return e.new(cfg, random)
}
