package axis

import (
	"context"
	"math"
	"testing"

	"go.viam.com/test"
)

func TestWrapPMPi(t *testing.T) {
	test.That(t, wrapPMPi(0), test.ShouldAlmostEqual, 0, 1e-9)
	test.That(t, wrapPMPi(math.Pi), test.ShouldAlmostEqual, -math.Pi, 1e-9)
	test.That(t, wrapPMPi(3*math.Pi), test.ShouldAlmostEqual, -math.Pi, 1e-9)
	test.That(t, wrapPMPi(-3*math.Pi), test.ShouldAlmostEqual, -math.Pi, 1e-9)
}

func TestRunSensorlessSpinUpPrimesVelSetpoint(t *testing.T) {
	r := newTestRig(Config{
		RampUpTime:         0.001,
		RampUpDistance:     1.0,
		SpinUpCurrent:      0.5,
		SpinUpAcceleration: 100,
		SpinUpTargetVel:    10,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.pumpSignal(ctx)

	ok := r.axis.runSensorlessSpinUp(ctx)

	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, r.motor.UpdateCount, test.ShouldBeGreaterThan, 0)
	test.That(t, r.controller.VelSetpoint(), test.ShouldEqual, 10.0)
}

func TestRunSensorlessSpinUpStopsOnMotorFailure(t *testing.T) {
	r := newTestRig(Config{
		RampUpTime:         0.001,
		RampUpDistance:     1.0,
		SpinUpCurrent:      0.5,
		SpinUpAcceleration: 100,
		SpinUpTargetVel:    10,
	})
	r.motor.UpdateFunc = func(ctx context.Context, iMag, phase float64) bool { return false }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.pumpSignal(ctx)

	ok := r.axis.runSensorlessSpinUp(ctx)

	test.That(t, ok, test.ShouldBeFalse)
	test.That(t, r.axis.LastError()&ErrorMotorFailed, test.ShouldEqual, ErrorMotorFailed)
}
