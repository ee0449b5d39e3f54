package boardio

import (
	"context"
	"errors"
	"sync"

	"time"

	pb "go.viam.com/api/component/board/v1"
	"go.viam.com/rdk/components/board"
	"go.viam.com/rdk/resource"
)

var errNotSupported = errors.New("not supported by fakeBoard")

// fakeDigitalInterrupt is a minimal board.DigitalInterrupt for exercising
// GPIO.Subscribe without a real board.
type fakeDigitalInterrupt struct {
	name string
}

func (f *fakeDigitalInterrupt) Name() string { return f.name }
func (f *fakeDigitalInterrupt) Value(ctx context.Context, extra map[string]interface{}) (int64, error) {
	return 0, nil
}

// fakeGPIOPin is a minimal board.GPIOPin backed by an in-memory bool.
type fakeGPIOPin struct {
	mu    sync.Mutex
	value bool
	err   error
}

func (p *fakeGPIOPin) Get(ctx context.Context, extra map[string]interface{}) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return false, p.err
	}
	return p.value, nil
}
func (p *fakeGPIOPin) Set(ctx context.Context, high bool, extra map[string]interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.value = high
	return nil
}
func (p *fakeGPIOPin) PWM(ctx context.Context, extra map[string]interface{}) (float64, error) {
	return 0, nil
}
func (p *fakeGPIOPin) SetPWM(ctx context.Context, dutyCyclePct float64, extra map[string]interface{}) error {
	return nil
}
func (p *fakeGPIOPin) PWMFreq(ctx context.Context, extra map[string]interface{}) (uint, error) {
	return 0, nil
}
func (p *fakeGPIOPin) SetPWMFreq(ctx context.Context, freqHz uint, extra map[string]interface{}) error {
	return nil
}

func (p *fakeGPIOPin) setValue(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.value = v
}

// fakeBoard is a minimal board.Board exposing only named GPIO pins and
// digital interrupts, with StreamTicks left a no-op (never asserts a
// tick), so GPIO.Subscribe's tick-to-callback path is not exercised by
// this package's tests; the axis package tests drive stepCallback
// through axistest.GPIO instead.
type fakeBoard struct {
	resource.Named
	resource.AlwaysRebuild

	pins        map[string]*fakeGPIOPin
	interrupts  map[string]*fakeDigitalInterrupt
}

func newFakeBoard() *fakeBoard {
	return &fakeBoard{
		pins:       map[string]*fakeGPIOPin{},
		interrupts: map[string]*fakeDigitalInterrupt{},
	}
}

func (b *fakeBoard) GPIOPinByName(name string) (board.GPIOPin, error) {
	p, ok := b.pins[name]
	if !ok {
		p = &fakeGPIOPin{}
		b.pins[name] = p
	}
	return p, nil
}

func (b *fakeBoard) DigitalInterruptByName(name string) (board.DigitalInterrupt, error) {
	di, ok := b.interrupts[name]
	if !ok {
		di = &fakeDigitalInterrupt{name: name}
		b.interrupts[name] = di
	}
	return di, nil
}

func (b *fakeBoard) AnalogByName(name string) (board.Analog, error) {
	return nil, errNotSupported
}

func (b *fakeBoard) AnalogNames() []string           { return nil }
func (b *fakeBoard) DigitalInterruptNames() []string { return nil }
func (b *fakeBoard) GPIOPinNames() []string          { return nil }

func (b *fakeBoard) StreamTicks(ctx context.Context, interrupts []board.DigitalInterrupt, ch chan board.Tick, extra map[string]interface{}) error {
	<-ctx.Done()
	return nil
}

func (b *fakeBoard) WriteAnalog(ctx context.Context, pin string, value int32, extra map[string]interface{}) error {
	return errNotSupported
}

func (b *fakeBoard) SetPowerMode(ctx context.Context, mode pb.PowerMode, duration *time.Duration) error {
	return errNotSupported
}

func (b *fakeBoard) Close(ctx context.Context) error { return nil }

func (b *fakeBoard) DoCommand(ctx context.Context, cmd map[string]interface{}) (map[string]interface{}, error) {
	return nil, errNotSupported
}
