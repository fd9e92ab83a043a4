package sim

import (
	"encoding/json"
	"testing"

	"github.com/df07/go-collision-demos/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_Digest(t *testing.T) {
	base := Snapshot{
		Demo: NameBBox,
		Tick: 3,
		Spheres: []SphereState{
			{ID: "a", Position: core.NewVec3(1, 2, 3), Direction: core.NewVec3(0, 1, 0), Radius: 1},
		},
	}

	sealed := base.Seal()
	assert.Len(t, sealed.Digest, 16)
	assert.Equal(t, sealed.Digest, base.Seal().Digest)

	renamed := base
	renamed.Spheres = []SphereState{base.Spheres[0]}
	renamed.Spheres[0].ID = "b"
	assert.Equal(t, sealed.Digest, renamed.Seal().Digest, "ids do not affect the digest")

	moved := base
	moved.Spheres = []SphereState{base.Spheres[0]}
	moved.Spheres[0].Position.X += 1e-12
	assert.NotEqual(t, sealed.Digest, moved.Seal().Digest)

	later := base
	later.Tick++
	assert.NotEqual(t, sealed.Digest, later.Seal().Digest)

	animated := base
	animated.Animate = true
	assert.NotEqual(t, sealed.Digest, animated.Seal().Digest)
}

func TestSnapshot_JSON(t *testing.T) {
	d := NewRayTriangleDemo(configWithCount(2), core.NewRandom(1))
	d.Step()

	data, err := json.Marshal(d.Snapshot().Seal())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, NameRayTriangle, decoded["demo"])
	assert.Contains(t, decoded, "triangles")
	assert.Contains(t, decoded, "rays")
	assert.NotContains(t, decoded, "spheres")
	assert.NotContains(t, decoded, "plane")
}
