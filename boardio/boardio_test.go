package boardio

import (
	"context"
	"testing"
	"time"

	"go.viam.com/rdk/logging"
	"go.viam.com/test"

	"github.com/viam-modules/odrive-axis/axis"
)

func TestGPIOReadPinReflectsUnderlyingPin(t *testing.T) {
	b := newFakeBoard()
	names := PinNames{{Port: 1, Pin: 2}: "dir"}
	g := NewGPIO(b, names, logging.NewTestLogger(t))

	pin, err := b.GPIOPinByName("dir")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pin.Set(context.Background(), true, nil), test.ShouldBeNil)

	test.That(t, g.ReadPin(1, 2), test.ShouldBeTrue)
}

func TestGPIOReadPinUnresolvedAddressIsFalse(t *testing.T) {
	b := newFakeBoard()
	g := NewGPIO(b, PinNames{}, logging.NewTestLogger(t))
	test.That(t, g.ReadPin(9, 9), test.ShouldBeFalse)
}

func TestGPIOSubscribeErrorsOnUnresolvedAddress(t *testing.T) {
	b := newFakeBoard()
	g := NewGPIO(b, PinNames{}, logging.NewTestLogger(t))
	err := g.Subscribe(1, 2, axis.GPIOPullDown, axis.GPIOEdgeFalling, func() {})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestGPIOUnsubscribeWithoutSubscribeIsNoop(t *testing.T) {
	b := newFakeBoard()
	g := NewGPIO(b, PinNames{}, logging.NewTestLogger(t))
	test.That(t, g.Unsubscribe(1, 2), test.ShouldBeNil)
}

func TestGPIOSubscribeCancelsPriorSubscriptionOnSamePin(t *testing.T) {
	b := newFakeBoard()
	names := PinNames{{Port: 1, Pin: 2}: "step"}
	g := NewGPIO(b, names, logging.NewTestLogger(t))

	test.That(t, g.Subscribe(1, 2, axis.GPIOPullDown, axis.GPIOEdgeFalling, func() {}), test.ShouldBeNil)
	test.That(t, g.Subscribe(1, 2, axis.GPIOPullDown, axis.GPIOEdgeFalling, func() {}), test.ShouldBeNil)
	test.That(t, g.Unsubscribe(1, 2), test.ShouldBeNil)
}

func TestEndstopDebouncesBeforeReportingNewState(t *testing.T) {
	b := newFakeBoard()
	pin, err := b.GPIOPinByName("minend")
	test.That(t, err, test.ShouldBeNil)

	e := NewEndstop(pin, axis.EndstopConfig{Enabled: true}, true, 20*time.Millisecond)
	test.That(t, e.GetEndstopState(), test.ShouldBeFalse)

	test.That(t, pin.Set(context.Background(), true, nil), test.ShouldBeNil)
	e.Update(context.Background())
	// not yet debounced: still reports the old state immediately after the flip
	test.That(t, e.GetEndstopState(), test.ShouldBeFalse)

	time.Sleep(25 * time.Millisecond)
	e.Update(context.Background())
	test.That(t, e.GetEndstopState(), test.ShouldBeTrue)
}

func TestEndstopUpdateIgnoresReadErrors(t *testing.T) {
	p := &fakeGPIOPin{err: context.DeadlineExceeded}
	e := NewEndstop(p, axis.EndstopConfig{Enabled: true}, true, time.Millisecond)
	e.Update(context.Background())
	test.That(t, e.GetEndstopState(), test.ShouldBeFalse)
}

func TestEndstopDoChecksAlwaysNone(t *testing.T) {
	p := &fakeGPIOPin{}
	e := NewEndstop(p, axis.EndstopConfig{}, true, time.Millisecond)
	test.That(t, e.DoChecks(), test.ShouldEqual, axis.ErrorNone)
}

func TestEndstopOffsetFromHomeRoundTrips(t *testing.T) {
	p := &fakeGPIOPin{}
	e := NewEndstop(p, axis.EndstopConfig{}, true, time.Millisecond)
	e.SetOffsetFromHome(42)
	test.That(t, e.OffsetFromHome(), test.ShouldEqual, int32(42))
}

func TestEndstopConfigRoundTrips(t *testing.T) {
	p := &fakeGPIOPin{}
	cfg := axis.EndstopConfig{Enabled: true, Offset: 3}
	e := NewEndstop(p, cfg, true, time.Millisecond)
	test.That(t, e.Config(), test.ShouldResemble, cfg)
}
