package sim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/df07/go-collision-demos/pkg/log"
)

// ErrQueueFull is returned by Send when commands arrive faster than ticks drain them
var ErrQueueFull = errors.New("command queue full")

const commandQueueSize = 64

// RunnerOptions configures a Runner
type RunnerOptions struct {
	Interval time.Duration // Tick period; zero uses the demo's interval
	MaxTicks int           // Stop after this many steps; zero runs until cancelled
	Unpaced  bool          // Step as fast as possible, ignoring the interval
	Paused   bool          // Start with animation off
	Logger   log.Log
}

// Runner owns a demo and drives it from a single goroutine. Commands sent from
// other goroutines are queued and applied between ticks.
type Runner struct {
	demo     Demo
	opts     RunnerOptions
	commands chan Command
	animate  bool
	steps    int
	log      log.Log
}

// NewRunner creates a runner for demo
func NewRunner(demo Demo, opts RunnerOptions) *Runner {
	if opts.Interval <= 0 {
		opts.Interval = demo.Interval()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNop()
	}
	return &Runner{
		demo:     demo,
		opts:     opts,
		commands: make(chan Command, commandQueueSize),
		animate:  !opts.Paused,
		log:      logger.With(log.String("demo", demo.Name())),
	}
}

// Demo returns the driven demo. Only safe to touch once Run has returned.
func (r *Runner) Demo() Demo { return r.demo }

// Send queues a command for the next tick
func (r *Runner) Send(cmd Command) error {
	select {
	case r.commands <- cmd:
		return nil
	default:
		return fmt.Errorf("%w: dropped %q", ErrQueueFull, cmd)
	}
}

// SendKey resolves a key through the demo bindings and queues the command
func (r *Runner) SendKey(key string) error {
	cmd, err := ParseKey(r.demo, key)
	if err != nil {
		return err
	}
	return r.Send(cmd)
}

// Run emits the initial state, then steps the demo on every tick while
// animation is on and emits a snapshot after each step. Applying a command
// while paused also emits a snapshot. Run returns nil when MaxTicks is
// reached, ctx.Err() on cancellation, or the first error from emit.
func (r *Runner) Run(ctx context.Context, emit func(Snapshot) error) error {
	r.log.Info("Runner started",
		log.Duration("interval", r.opts.Interval),
		log.Int("max_ticks", r.opts.MaxTicks),
		log.Bool("unpaced", r.opts.Unpaced))
	defer r.log.Info("Runner stopped", log.Int("steps", r.steps))

	if err := emit(r.snapshot()); err != nil {
		return err
	}

	var tick <-chan time.Time
	if !r.opts.Unpaced {
		ticker := time.NewTicker(r.opts.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for !r.done() {
		// Unpaced runs step immediately unless paused, in which case they wait for a command
		if tick != nil || !r.animate {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case cmd := <-r.commands:
				if r.apply(cmd) && !r.animate {
					if err := emit(r.snapshot()); err != nil {
						return err
					}
				}
				continue
			case <-tick:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		if changed := r.drain(); !r.animate {
			if changed {
				if err := emit(r.snapshot()); err != nil {
					return err
				}
			}
			continue
		}
		r.demo.Step()
		r.steps++
		if err := emit(r.snapshot()); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) done() bool {
	return r.opts.MaxTicks > 0 && r.steps >= r.opts.MaxTicks
}

// drain applies every queued command without blocking and reports whether any took effect
func (r *Runner) drain() bool {
	changed := false
	for {
		select {
		case cmd := <-r.commands:
			if r.apply(cmd) {
				changed = true
			}
		default:
			return changed
		}
	}
}

// apply runs one command and reports whether it changed anything
func (r *Runner) apply(cmd Command) bool {
	if cmd == CmdToggleAnimate {
		r.animate = !r.animate
		r.log.Debug("Animation toggled", log.Bool("animate", r.animate))
		return true
	}
	if err := r.demo.Apply(cmd); err != nil {
		r.log.Warn("Command rejected", log.String("command", string(cmd)), log.Error(err))
		return false
	}
	r.log.Debug("Command applied", log.String("command", string(cmd)))
	return true
}

func (r *Runner) snapshot() Snapshot {
	snap := r.demo.Snapshot()
	snap.Animate = r.animate
	return snap.Seal()
}
