package boardio

import (
	"context"
	"sync"
	"time"

	"go.viam.com/rdk/components/board"

	"github.com/viam-modules/odrive-axis/axis"
)

// Endstop implements axis.EndstopSensor over a single board.GPIOPin,
// debouncing with a simple pending/settle timer in place of
// endstop.hpp's debounce_timer_ tick accumulator (here expressed with
// time.Time/time.Duration, since Update is driven by wall-clock ticks
// rather than a fixed ISR period).
type Endstop struct {
	pin          board.GPIOPin
	cfg          axis.EndstopConfig
	isActiveHigh bool
	debounce     time.Duration

	mu             sync.Mutex
	state          bool
	pending        bool
	pendingSince   time.Time
	offsetFromHome int32
}

// NewEndstop returns an Endstop reading pin, asserted when its value
// equals isActiveHigh, and debounced over debounce.
func NewEndstop(pin board.GPIOPin, cfg axis.EndstopConfig, isActiveHigh bool, debounce time.Duration) *Endstop {
	return &Endstop{
		pin:          pin,
		cfg:          cfg,
		isActiveHigh: isActiveHigh,
		debounce:     debounce,
	}
}

// Update polls the underlying GPIO pin and advances the debounce
// state machine. A read error leaves the last debounced state
// unchanged, matching the original's tolerance of a single missed
// sample.
func (e *Endstop) Update(ctx context.Context) {
	raw, err := e.pin.Get(ctx, nil)
	if err != nil {
		return
	}
	asserted := raw == e.isActiveHigh

	e.mu.Lock()
	defer e.mu.Unlock()
	if asserted != e.pending {
		e.pending = asserted
		e.pendingSince = time.Now()
		return
	}
	if time.Since(e.pendingSince) >= e.debounce {
		e.state = e.pending
	}
}

// DoChecks never raises a fault on its own; a stuck or disconnected
// endstop pin is observed through GetEndstopState, not through the
// axis error bitset.
func (e *Endstop) DoChecks() axis.Error { return axis.ErrorNone }

// GetEndstopState returns the debounced assertion state.
func (e *Endstop) GetEndstopState() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Config returns the axis-facing configuration subset.
func (e *Endstop) Config() axis.EndstopConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// OffsetFromHome returns the shadow-count offset recorded at the last
// homing pass.
func (e *Endstop) OffsetFromHome() int32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.offsetFromHome
}

// SetOffsetFromHome records a new shadow-count offset, written by the
// HomingSubMachine.
func (e *Endstop) SetOffsetFromHome(v int32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.offsetFromHome = v
}
