// Package boardio adapts a go.viam.com/rdk board resource to the
// axis package's GPIOSubscriber and EndstopSensor collaborator
// interfaces. The axis package's step/dir and endstop plumbing is
// expressed in terms of abstract (port, pin) integer pairs, mirroring
// the STM32 GPIO-bank addressing of the original firmware; this
// package resolves those pairs to the named pins and digital
// interrupts that an rdk board actually exposes.
package boardio

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"go.viam.com/rdk/components/board"
	"go.viam.com/rdk/logging"

	"github.com/viam-modules/odrive-axis/axis"
)

// PinKey identifies an abstract (port, pin) address.
type PinKey struct {
	Port, Pin int
}

// PinNames maps the abstract addresses used by HardwareConfig to the
// board's own pin and digital-interrupt names.
type PinNames map[PinKey]string

// GPIO implements axis.GPIOSubscriber against a real board.Board. Only
// the step pin is ever subscribed to (as a digital interrupt); the
// direction pin is read directly as a GPIO input.
type GPIO struct {
	board board.Board
	names PinNames
	logger logging.Logger

	mu      sync.Mutex
	cancels map[PinKey]context.CancelFunc
}

// NewGPIO returns a GPIO adapter over b, resolving abstract pin
// addresses through names.
func NewGPIO(b board.Board, names PinNames, logger logging.Logger) *GPIO {
	return &GPIO{
		board:   b,
		names:   names,
		logger:  logger,
		cancels: map[PinKey]context.CancelFunc{},
	}
}

func (g *GPIO) resolve(port, pin int) (string, error) {
	name, ok := g.names[PinKey{port, pin}]
	if !ok {
		return "", errors.Errorf("no board pin configured for port %d pin %d", port, pin)
	}
	return name, nil
}

// Subscribe starts a background goroutine streaming ticks from the
// named digital interrupt, invoking callback whenever a tick matches
// the requested edge. pull is accepted for interface parity with the
// axis.GPIOSubscriber contract; rdk's board interrupts are configured
// with their pull mode in the board's own resource config, not per
// subscription, so it is otherwise unused here.
func (g *GPIO) Subscribe(port, pin int, pull axis.GPIOPull, edge axis.GPIOEdge, callback func()) error {
	name, err := g.resolve(port, pin)
	if err != nil {
		return err
	}
	di, err := g.board.DigitalInterruptByName(name)
	if err != nil {
		return errors.Wrapf(err, "no digital interrupt named %q", name)
	}

	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan board.Tick)

	g.mu.Lock()
	if old, ok := g.cancels[PinKey{port, pin}]; ok {
		old()
	}
	g.cancels[PinKey{port, pin}] = cancel
	g.mu.Unlock()

	wantHigh := edge == axis.GPIOEdgeRising

	go func() {
		if err := g.board.StreamTicks(ctx, []board.DigitalInterrupt{di}, ch, nil); err != nil && ctx.Err() == nil {
			g.logger.Errorw("stream ticks failed", "pin", name, "error", err)
		}
	}()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case tick := <-ch:
				if tick.High == wantHigh {
					callback()
				}
			}
		}
	}()
	return nil
}

// Unsubscribe cancels the background tick stream started by Subscribe,
// if any.
func (g *GPIO) Unsubscribe(port, pin int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	key := PinKey{port, pin}
	cancel, ok := g.cancels[key]
	if !ok {
		return nil
	}
	cancel()
	delete(g.cancels, key)
	return nil
}

// ReadPin reads the named GPIO pin directly, used for the direction
// pin of step/dir input. Errors are swallowed to false since
// axis.GPIOSubscriber.ReadPin has no error return; a disconnected
// direction pin behaves as if direction were always negative, which is
// no worse than the original's unchecked GPIO read.
func (g *GPIO) ReadPin(port, pin int) bool {
	name, err := g.resolve(port, pin)
	if err != nil {
		return false
	}
	p, err := g.board.GPIOPinByName(name)
	if err != nil {
		return false
	}
	v, err := p.Get(context.Background(), nil)
	if err != nil {
		return false
	}
	return v
}
