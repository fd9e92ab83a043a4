package sim

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/df07/go-collision-demos/pkg/config"
	"github.com/df07/go-collision-demos/pkg/core"
	"github.com/df07/go-collision-demos/pkg/geometry"
	"github.com/df07/go-collision-demos/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestDemo(t *testing.T, name string, seed int64) Demo {
	t.Helper()
	d, err := New(config.DemoConfig{Name: name, Count: 5, Seed: seed}, nil)
	require.NoError(t, err)
	return d
}

func collect(t *testing.T, r *Runner, ctx context.Context) ([]Snapshot, error) {
	t.Helper()
	var snaps []Snapshot
	err := r.Run(ctx, func(s Snapshot) error {
		snaps = append(snaps, s)
		return nil
	})
	return snaps, err
}

func TestRunner_MaxTicks(t *testing.T) {
	r := NewRunner(newTestDemo(t, NameBBox, 1), RunnerOptions{MaxTicks: 10, Unpaced: true})

	snaps, err := collect(t, r, context.Background())
	require.NoError(t, err)
	require.Len(t, snaps, 11, "initial state plus one per step")
	assert.Equal(t, uint64(0), snaps[0].Tick)
	assert.Equal(t, uint64(10), snaps[10].Tick)
	for _, s := range snaps {
		assert.Len(t, s.Digest, 16)
		assert.True(t, s.Animate)
	}
}

func TestRunner_Paced(t *testing.T) {
	r := NewRunner(newTestDemo(t, NameSphereSphere, 1), RunnerOptions{MaxTicks: 3, Interval: time.Millisecond})

	snaps, err := collect(t, r, context.Background())
	require.NoError(t, err)
	assert.Len(t, snaps, 4)
}

func TestRunner_Deterministic(t *testing.T) {
	run := func() []string {
		r := NewRunner(newTestDemo(t, NameBBox, 99), RunnerOptions{MaxTicks: 50, Unpaced: true})
		require.NoError(t, r.Send(CmdToggleSphereCheck))
		snaps, err := collect(t, r, context.Background())
		require.NoError(t, err)
		digests := make([]string, len(snaps))
		for i, s := range snaps {
			digests[i] = s.Digest
		}
		return digests
	}
	assert.Equal(t, run(), run())
}

func TestRunner_EmitError(t *testing.T) {
	boom := errors.New("client gone")
	r := NewRunner(newTestDemo(t, NameRaySphere, 1), RunnerOptions{Unpaced: true})

	calls := 0
	err := r.Run(context.Background(), func(Snapshot) error {
		calls++
		if calls == 3 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls)
}

func TestRunner_Cancel(t *testing.T) {
	r := NewRunner(newTestDemo(t, NameBBox, 1), RunnerOptions{Interval: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- r.Run(ctx, func(Snapshot) error { return nil })
	}()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not stop after cancel")
	}
}

func TestRunner_PausedStartsOnToggle(t *testing.T) {
	r := NewRunner(newTestDemo(t, NameBBox, 1), RunnerOptions{MaxTicks: 3, Unpaced: true, Paused: true})
	require.NoError(t, r.Send(CmdToggleAnimate))

	snaps, err := collect(t, r, context.Background())
	require.NoError(t, err)
	require.Len(t, snaps, 4)
	assert.False(t, snaps[0].Animate)
	assert.True(t, snaps[3].Animate)
	assert.Equal(t, uint64(3), snaps[3].Tick)
}

func TestRunner_CommandWhilePausedEmits(t *testing.T) {
	r := NewRunner(newTestDemo(t, NameSpherePlane, 1), RunnerOptions{Unpaced: true, Paused: true})
	require.NoError(t, r.SendKey("up"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var snaps []Snapshot
	err := r.Run(ctx, func(s Snapshot) error {
		snaps = append(snaps, s)
		if len(snaps) == 2 {
			cancel()
		}
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, snaps, 2)
	assert.Equal(t, uint64(0), snaps[1].Tick, "paused runner does not step")
	require.NotNil(t, snaps[1].Plane)
	assert.Equal(t, 1.0, snaps[1].Plane.XRot)
	assert.NotEqual(t, snaps[0].Digest, snaps[1].Digest)
}

func TestRunner_PacedCommandWhilePausedEmits(t *testing.T) {
	r := NewRunner(newTestDemo(t, NameSpherePlane, 1), RunnerOptions{Interval: time.Millisecond, Paused: true})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var snaps []Snapshot
	err := r.Run(ctx, func(s Snapshot) error {
		snaps = append(snaps, s)
		if len(snaps) == 1 {
			// Give the ticker a chance to fire before the key arrives
			time.Sleep(5 * time.Millisecond)
			require.NoError(t, r.SendKey("left"))
		}
		if len(snaps) == 2 {
			cancel()
		}
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, snaps, 2)
	assert.Equal(t, uint64(0), snaps[1].Tick)
	assert.Equal(t, -1.0, snaps[1].Plane.ZRot)
}

func TestRunner_RejectedCommandKeepsRunning(t *testing.T) {
	r := NewRunner(newTestDemo(t, NameSphereSphere, 1), RunnerOptions{MaxTicks: 2, Unpaced: true})
	require.NoError(t, r.Send(CmdTiltUp))

	snaps, err := collect(t, r, context.Background())
	require.NoError(t, err)
	assert.Len(t, snaps, 3)
}

func TestRunner_InvalidSpawnLogged(t *testing.T) {
	zc, logs := observer.New(zapcore.WarnLevel)
	d := newBBox(t, config.DemoConfig{Count: 2}, 1)
	d.spheres.spawn = func() *geometry.Sphere {
		return geometry.NewSphere(core.Vec3{}, core.Vec3{}, -2)
	}
	r := NewRunner(d, RunnerOptions{MaxTicks: 1, Unpaced: true, Logger: log.NewFromZap(zap.New(zc))})
	require.NoError(t, r.Send(CmdAddEntity))

	_, err := collect(t, r, context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, d.Spheres().Len())

	entries := logs.FilterMessage("Command rejected").All()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].ContextMap()["error"], "negative radius")
}

func TestRunner_SendErrors(t *testing.T) {
	r := NewRunner(newTestDemo(t, NameBBox, 1), RunnerOptions{})

	assert.ErrorIs(t, r.SendKey("q"), ErrUnknownKey)

	for i := 0; i < commandQueueSize; i++ {
		require.NoError(t, r.Send(CmdAddEntity))
	}
	assert.ErrorIs(t, r.Send(CmdAddEntity), ErrQueueFull)
}

func TestRunner_DefaultInterval(t *testing.T) {
	d := newSpherePlane(t, config.DemoConfig{Count: 1}, 1)
	r := NewRunner(d, RunnerOptions{})
	assert.Equal(t, 130*time.Millisecond, r.opts.Interval)
}
