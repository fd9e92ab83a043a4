package sim

import (
	"testing"

	"github.com/df07/go-collision-demos/pkg/config"
	"github.com/df07/go-collision-demos/pkg/core"
	"github.com/df07/go-collision-demos/pkg/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedSpawner hands out copies of the given spheres in order, then unit spheres at the origin
func fixedSpawner(spheres ...*geometry.Sphere) func() *geometry.Sphere {
	i := 0
	return func() *geometry.Sphere {
		defer func() { i++ }()
		if i < len(spheres) {
			s := spheres[i]
			return geometry.NewSphere(s.Position, s.Direction, s.Radius)
		}
		return geometry.NewSphere(core.Vec3{}, core.Vec3{}, 1)
	}
}

func TestSphereSet_AddRemove(t *testing.T) {
	set := NewSphereSet(fixedSpawner(), config.CollisionImmediate)
	require.NoError(t, set.ResetSpheres(3))
	require.Equal(t, 3, set.Len())

	added, err := set.AddSphere()
	require.NoError(t, err)
	assert.Same(t, added, set.Spheres()[3])
	assert.Equal(t, 4, set.Len())

	for i := 0; i < 10; i++ {
		set.RemoveSphere()
	}
	assert.Equal(t, 1, set.Len(), "removal stops at one sphere")
	assert.False(t, set.RemoveSphere())

	require.NoError(t, set.ResetSpheres(0))
	assert.Equal(t, 0, set.Len())
}

func TestSphereSet_MoveAll(t *testing.T) {
	set := NewSphereSet(fixedSpawner(
		geometry.NewSphere(core.NewVec3(0, 0, 0), core.NewVec3(1, 2, 3), 1),
	), config.CollisionImmediate)
	require.NoError(t, set.ResetSpheres(1))

	set.MoveAll()
	set.MoveAll()
	assert.Equal(t, core.NewVec3(2, 4, 6), set.Spheres()[0].Position)
}

func TestSphereSet_CheckPairs(t *testing.T) {
	// A row of three: the middle sphere touches both neighbours, the ends do not touch
	row := []*geometry.Sphere{
		geometry.NewSphere(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), 1),
		geometry.NewSphere(core.NewVec3(1.5, 0, 0), core.NewVec3(0, 1, 0), 1),
		geometry.NewSphere(core.NewVec3(3, 0, 0), core.NewVec3(-1, 0, 0), 1),
	}

	tests := []struct {
		name       string
		mode       string
		wantMiddle core.Vec3
	}{
		// Reversed once per neighbour, ending where it started
		{"immediate", config.CollisionImmediate, core.NewVec3(0, 1, 0)},
		{"batched", config.CollisionBatched, core.NewVec3(0, -1, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := NewSphereSet(fixedSpawner(row...), tt.mode)
			require.NoError(t, set.ResetSpheres(3))

			pairs := set.CheckPairs()
			spheres := set.Spheres()

			assert.Equal(t, 4, pairs)
			assert.Equal(t, core.NewVec3(-1, 0, 0), spheres[0].Direction)
			assert.Equal(t, tt.wantMiddle, spheres[1].Direction)
			assert.Equal(t, core.NewVec3(1, 0, 0), spheres[2].Direction)
			for i, s := range spheres {
				assert.True(t, s.IsHit(), "sphere %d", i)
			}
		})
	}
}

func TestSphereSet_CheckPairsApart(t *testing.T) {
	set := NewSphereSet(fixedSpawner(
		geometry.NewSphere(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), 1),
		geometry.NewSphere(core.NewVec3(5, 0, 0), core.NewVec3(-1, 0, 0), 1),
	), config.CollisionImmediate)
	require.NoError(t, set.ResetSpheres(2))

	assert.Zero(t, set.CheckPairs())
	assert.Equal(t, core.NewVec3(1, 0, 0), set.Spheres()[0].Direction)
	assert.False(t, set.Spheres()[1].IsHit())
}

func TestSphereSet_RejectsInvalidSpawns(t *testing.T) {
	set := NewSphereSet(fixedSpawner(
		geometry.NewSphere(core.Vec3{}, core.Vec3{}, 1),
		geometry.NewSphere(core.NewVec3(3, 0, 0), core.Vec3{}, -0.5),
		geometry.NewSphere(core.NewVec3(6, 0, 0), core.Vec3{}, 2),
	), config.CollisionImmediate)

	err := set.ResetSpheres(3)
	require.ErrorIs(t, err, ErrInvalidSphere)
	assert.Contains(t, err.Error(), "negative radius")
	require.Equal(t, 2, set.Len(), "valid spawns are kept")
	assert.Equal(t, 2.0, set.Spheres()[1].Radius)

	negative := NewSphereSet(func() *geometry.Sphere {
		return geometry.NewSphere(core.Vec3{}, core.Vec3{}, -1)
	}, config.CollisionImmediate)
	_, err = negative.AddSphere()
	assert.ErrorIs(t, err, ErrInvalidSphere)
	assert.Zero(t, negative.Len())
}
