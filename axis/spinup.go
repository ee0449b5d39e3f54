package axis

import (
	"context"
	"math"
)

// wrapPMPi wraps a radian value into [-pi, +pi).
func wrapPMPi(x float64) float64 {
	y := math.Mod(x+math.Pi, 2*math.Pi)
	if y < 0 {
		y += 2 * math.Pi
	}
	return y - math.Pi
}

// runSensorlessSpinUp runs the two-stage open-loop spin-up routine of
// §4.5, each stage driven by one RunControlLoop call. It hands off to
// the closed sensorless loop by priming controller.vel_setpoint so the
// transition is smooth.
func (a *Axis) runSensorlessSpinUp(ctx context.Context) bool {
	x := 0.0
	a.RunControlLoop(ctx, func(ctx context.Context) bool {
		phase := wrapPMPi(a.config.RampUpDistance * x)
		iMag := a.config.SpinUpCurrent * x
		x += a.currentMeasPeriod / a.config.RampUpTime
		if !a.motor.Update(ctx, iMag, phase) {
			a.err.set(ErrorMotorFailed)
			return false
		}
		return x < 1.0
	})
	if !a.err.isNone() {
		return false
	}

	vel := a.config.RampUpDistance / a.config.RampUpTime
	phase := wrapPMPi(a.config.RampUpDistance)
	a.RunControlLoop(ctx, func(ctx context.Context) bool {
		vel += a.config.SpinUpAcceleration * a.currentMeasPeriod
		phase = wrapPMPi(phase + vel*a.currentMeasPeriod)
		iMag := a.config.SpinUpCurrent
		if !a.motor.Update(ctx, iMag, phase) {
			a.err.set(ErrorMotorFailed)
			return false
		}
		return vel < a.config.SpinUpTargetVel
	})

	// Prime vel_setpoint with the spin-up target so the closed
	// sensorless loop starts smoothly.
	a.controller.SetVelSetpointRaw(a.config.SpinUpTargetVel)

	return a.err.isNone()
}
