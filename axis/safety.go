package axis

import "context"

// doUpdates invokes estimator/endstop updates in the fixed order
// required by §4.4: encoder, sensorless estimator, min endstop, max
// endstop. Order matters for endstop debouncing since endstops may
// consume loop-counter state set earlier. Returns true iff no errors
// were accumulated by this step.
func (a *Axis) doUpdates(ctx context.Context) bool {
	a.encoder.Update(ctx)
	a.sensorless.Update(ctx)
	a.minEndstop.Update(ctx)
	a.maxEndstop.Update(ctx)

	a.err.set(a.minEndstop.DoChecks())
	a.err.set(a.maxEndstop.DoChecks())

	return a.err.isNone()
}

// doChecks performs the SafetyMonitor per-tick checks from §4.4: bus
// voltage band, brake-resistor armed, motor-disarmed-while-running,
// plus subcomponent checks. Returns true iff error == None.
func (a *Axis) doChecks(ctx context.Context) bool {
	if a.board != nil && !a.board.BrakeResistorArmed() {
		a.err.set(ErrorBrakeResistorDisarmed)
	}

	if a.CurrentState() != StateIdle && a.motor.ArmedState() == MotorDisarmedState {
		// Something asynchronously disarmed the motor outside the idle loop.
		a.err.set(ErrorMotorDisarmed)
	}

	if a.board != nil {
		v := a.board.VBusVoltage()
		if v < a.board.UnderVoltageTripLevel() {
			a.err.set(ErrorDcBusUnderVoltage)
		}
		if v > a.board.OverVoltageTripLevel() {
			a.err.set(ErrorDcBusOverVoltage)
		}
	}

	a.err.set(a.motor.DoChecks())
	a.err.set(a.encoder.DoChecks())

	return a.err.isNone()
}
