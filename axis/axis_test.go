package axis

import (
	"context"
	"testing"
	"time"

	"go.viam.com/rdk/logging"
	"go.viam.com/test"

	"github.com/viam-modules/odrive-axis/axis/axistest"
)

// testRig bundles an Axis together with the fakes it was built from, so
// tests can drive collaborator behavior directly.
type testRig struct {
	axis       *Axis
	motor      *axistest.Motor
	encoder    *axistest.Encoder
	sensorless *axistest.Sensorless
	controller *axistest.Controller
	trajectory *axistest.Trajectory
	minEndstop *axistest.Endstop
	maxEndstop *axistest.Endstop
	gpio       *axistest.GPIO
	board      *axistest.Board
}

func newTestRig(cfg Config) *testRig {
	r := &testRig{
		motor:      axistest.NewMotor(),
		encoder:    axistest.NewEncoder(8192),
		sensorless: &axistest.Sensorless{},
		controller: axistest.NewController(1.0),
		trajectory: &axistest.Trajectory{},
		minEndstop: axistest.NewEndstop(EndstopConfig{Enabled: true, MinMsHoming: 10}),
		maxEndstop: axistest.NewEndstop(EndstopConfig{Enabled: false}),
		gpio:       axistest.NewGPIO(),
		board:      axistest.NewBoard(),
	}
	r.board.SetVBusVoltage(24) // keep doChecks from tripping a voltage fault by default
	r.axis = New(
		logging.NewTestLogger(nil),
		HardwareConfig{
			StepPort: 1, StepPin: 2,
			DirPort: 1, DirPin: 3,
			ThermistorADCChannel: 0,
			ThermistorPolyCoeffs: []float64{10, 20, 30},
		},
		cfg,
		r.encoder, r.sensorless, r.controller, r.motor, r.trajectory,
		r.minEndstop, r.maxEndstop, r.gpio, r.board,
	)
	r.motor.Arm(context.Background()) // mirrors RunStateMachineLoop's startup arm
	return r
}

// pumpSignal keeps a current-measurement signal almost always pending
// for the lifetime of ctx, standing in for a free-running ISR so
// RunControlLoop-driven tests can exercise more than one tick without
// tripping ControlLoopMissed.
func (r *testRig) pumpSignal(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(100 * time.Microsecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.axis.signal.Send()
			}
		}
	}()
}

func TestNewInitializesSentinelState(t *testing.T) {
	r := newTestRig(Config{})
	test.That(t, r.axis.HomingState(), test.ShouldEqual, HomingInactive)
	test.That(t, r.axis.ThreadValid(), test.ShouldBeFalse)
	test.That(t, r.axis.LastError(), test.ShouldEqual, ErrorNone)
}

func TestTemperatureHornersMethod(t *testing.T) {
	r := newTestRig(Config{})
	r.board.SetADCMeasurement(0, 1.65) // half of the 3.3 full scale fake default
	r.board.SetVBusVoltage(24)

	// normalized = 0.5; coeffs ascending [10,20,30] => 10 + 20*0.5 + 30*0.25 = 27.5
	got := r.axis.Temperature()
	test.That(t, got, test.ShouldAlmostEqual, 27.5, 1e-9)
}

func TestTemperatureNoCoeffsIsZero(t *testing.T) {
	r := newTestRig(Config{})
	r.axis.hwConfig.ThermistorPolyCoeffs = nil
	test.That(t, r.axis.Temperature(), test.ShouldEqual, 0.0)
}

func TestAllocateAnticoggingMapOnce(t *testing.T) {
	r := newTestRig(Config{})
	test.That(t, r.axis.anticoggingMap, test.ShouldBeNil)

	r.axis.allocateAnticoggingMap()
	test.That(t, len(r.axis.anticoggingMap), test.ShouldEqual, 8192)

	r.axis.anticoggingMap[3] = 42
	r.axis.allocateAnticoggingMap() // second call is a no-op
	test.That(t, r.axis.anticoggingMap[3], test.ShouldEqual, float64(42))
}

func TestAllocateAnticoggingMapSkippedWhenCPRZero(t *testing.T) {
	r := newTestRig(Config{})
	r.encoder = axistest.NewEncoder(0)
	r.axis = New(
		logging.NewTestLogger(nil), HardwareConfig{}, Config{},
		r.encoder, r.sensorless, r.controller, r.motor, r.trajectory,
		r.minEndstop, r.maxEndstop, r.gpio, r.board,
	)
	r.axis.allocateAnticoggingMap()
	test.That(t, r.axis.anticoggingMap, test.ShouldBeNil)
}

func TestRequestStateAndRead(t *testing.T) {
	r := newTestRig(Config{})
	r.axis.RequestState(StateHoming)
	test.That(t, State(r.axis.requestedState.Load()), test.ShouldEqual, StateHoming)
}

func TestRequestedStateReflectsLastWrite(t *testing.T) {
	r := newTestRig(Config{})
	test.That(t, r.axis.RequestedState(), test.ShouldEqual, StateUndefined)
	r.axis.RequestState(StateIdle)
	test.That(t, r.axis.RequestedState(), test.ShouldEqual, StateIdle)
}
