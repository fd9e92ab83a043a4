// Package sim drives the collision demos: each Demo owns its entities, advances
// them one tick at a time through the geometry package, and publishes snapshots.
package sim

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrUnknownDemo        = errors.New("unknown demo")
	ErrUnsupportedCommand = errors.New("unsupported command")
	ErrUnknownKey         = errors.New("unknown key")
)

// Command is a discrete input a demo can react to
type Command string

const (
	CmdToggleAnimate     Command = "toggle-animate"
	CmdReset             Command = "reset"
	CmdAddEntity         Command = "add"
	CmdRemoveEntity      Command = "remove"
	CmdToggleSphereCheck Command = "toggle-sphere-check"

	CmdTiltUp    Command = "tilt-up"
	CmdTiltDown  Command = "tilt-down"
	CmdTiltLeft  Command = "tilt-left"
	CmdTiltRight Command = "tilt-right"

	CmdRayEndUp      Command = "ray-end-up"
	CmdRayEndDown    Command = "ray-end-down"
	CmdRayEndLeft    Command = "ray-end-left"
	CmdRayEndRight   Command = "ray-end-right"
	CmdRayStartUp    Command = "ray-start-up"
	CmdRayStartDown  Command = "ray-start-down"
	CmdRayStartLeft  Command = "ray-start-left"
	CmdRayStartRight Command = "ray-start-right"
)

// Demo is a single-threaded simulation advanced by a Runner
type Demo interface {
	Name() string
	// Interval is the tick period the demo was tuned for
	Interval() time.Duration
	// Step advances one tick
	Step()
	// Reset regenerates the scene; spawns that fail validation are reported
	Reset() error
	Apply(cmd Command) error
	// Bindings maps key names to commands; the runner owns the animate toggle
	Bindings() map[string]Command
	Snapshot() Snapshot
}

// ParseKey maps a key name to a command for the given demo
func ParseKey(demo Demo, key string) (Command, error) {
	if key == "space" || key == " " {
		return CmdToggleAnimate, nil
	}
	if cmd, ok := demo.Bindings()[key]; ok {
		return cmd, nil
	}
	return "", fmt.Errorf("%w: %q for %s", ErrUnknownKey, key, demo.Name())
}

func unsupported(demo string, cmd Command) error {
	return fmt.Errorf("%w: %s does not handle %q", ErrUnsupportedCommand, demo, cmd)
}

// base holds what every demo shares
type base struct {
	name     string
	interval time.Duration
	tick     uint64
}

func newBase(name string, interval, override time.Duration) base {
	if override > 0 {
		interval = override
	}
	return base{name: name, interval: interval}
}

func (b *base) Name() string            { return b.name }
func (b *base) Interval() time.Duration { return b.interval }

func (b *base) snapshot() Snapshot {
	return Snapshot{Demo: b.name, Tick: b.tick}
}
