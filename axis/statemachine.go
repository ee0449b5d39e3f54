package axis

import "context"

// Start launches the worker goroutine running RunStateMachineLoop, the
// Go equivalent of start_thread. thread_valid is modeled as
// threadValid, set true before the worker begins and cleared when it
// exits — reachable only via ctx cancellation, since the loop itself
// is infinite (Design Notes §9, "dual return from state-machine
// wrapper").
func (a *Axis) Start(ctx context.Context) {
	a.threadValid.Store(true)
	go func() {
		defer a.threadValid.Store(false)
		a.RunStateMachineLoop(ctx)
	}()
}

// ThreadValid reports whether the worker goroutine is currently
// running (invariant 4).
func (a *Axis) ThreadValid() bool {
	return a.threadValid.Load()
}

// RunStateMachineLoop is the infinite top-level sequencer of §4.6: it
// loads an expanded task chain on request, validates prerequisites,
// dispatches to the current state's handler, and advances or falls to
// Idle depending on the handler's result.
func (a *Axis) RunStateMachineLoop(ctx context.Context) {
	a.allocateAnticoggingMap()
	a.motor.Arm(ctx)

	for {
		if ctx.Err() != nil {
			return
		}

		a.maybeLoadRequestedTaskChain()
		a.validatePrerequisites()

		status := a.dispatch(ctx, a.CurrentState())

		a.mu.Lock()
		if !status {
			a.chain.setCurrent(StateIdle)
		} else {
			a.chain.advance()
		}
		a.mu.Unlock()
	}
}

// maybeLoadRequestedTaskChain expands requested_state into task_chain
// from position 0, per the "Request expansion" rules of §4.6.
func (a *Axis) maybeLoadRequestedTaskChain() {
	requested := State(a.requestedState.Load())
	if requested == StateUndefined {
		return
	}

	var states []State
	switch requested {
	case StateStartupSequence:
		if a.config.StartupMotorCalibration {
			states = append(states, StateMotorCalibration)
		}
		if a.config.StartupEncoderIndexSearch && a.encoder.UseIndex() {
			states = append(states, StateEncoderIndexSearch)
		}
		if a.config.StartupEncoderOffsetCalibration {
			states = append(states, StateEncoderOffsetCalibration)
		}
		if a.config.StartupClosedLoopControl {
			if a.config.StartupHoming {
				states = append(states, StateHoming)
			}
			states = append(states, StateClosedLoopControl)
		} else if a.config.StartupSensorlessControl {
			states = append(states, StateSensorlessControl)
		}
		states = append(states, StateIdle)

	case StateHoming:
		states = []State{StateHoming, StateClosedLoopControl, StateIdle}

	case StateFullCalibrationSequence:
		states = append(states, StateMotorCalibration)
		if a.encoder.UseIndex() {
			states = append(states, StateEncoderIndexSearch)
		}
		states = append(states, StateEncoderOffsetCalibration, StateIdle)

	default:
		states = []State{requested, StateIdle}
	}

	a.mu.Lock()
	a.chain.load(states)
	a.mu.Unlock()

	a.requestedState.Store(int32(StateUndefined))
	a.err.clear(ErrorInvalidState)
}

// validatePrerequisites forces current_state to Undefined if it's
// stricter than a calibration stage that hasn't completed yet.
func (a *Axis) validatePrerequisites() {
	a.mu.Lock()
	defer a.mu.Unlock()
	current := a.chain.current()
	if current.strictlyAfter(StateMotorCalibration) && !a.motor.IsCalibrated() {
		a.chain.setCurrent(StateUndefined)
		return
	}
	if current.strictlyAfter(StateEncoderOffsetCalibration) && !a.encoder.IsReady() {
		a.chain.setCurrent(StateUndefined)
	}
}

// dispatch runs the handler for the given state, per the handler
// mapping table in §4.6.
func (a *Axis) dispatch(ctx context.Context, state State) bool {
	switch state {
	case StateMotorCalibration:
		return a.motor.RunCalibration(ctx)
	case StateEncoderIndexSearch:
		return a.encoder.RunIndexSearch(ctx)
	case StateEncoderOffsetCalibration:
		return a.encoder.RunOffsetCalibration(ctx)
	case StateHoming:
		if !a.controller.HomeAxis(ctx) {
			return false
		}
		// homing_state is Axis-owned data (§3); the Homing state's job is
		// to arm the HomingSubMachine before the chain advances into
		// ClosedLoopControl, where it's actually driven (invariant 6).
		a.homingState.Store(int32(HomingSeeking))
		return true
	case StateSensorlessControl:
		if !a.runSensorlessSpinUp(ctx) {
			return false
		}
		return a.runSensorlessControlLoop(ctx)
	case StateClosedLoopControl:
		return a.runClosedLoopControlLoop(ctx)
	case StateIdle:
		a.runIdleLoop(ctx)
		return a.motor.Arm(ctx) // done idling - try to arm the motor
	default:
		a.err.set(ErrorInvalidState)
		return false
	}
}

// runSensorlessControlLoop is the SensorlessControl control-loop
// handler of §4.6: feeds the sensorless PLL estimate to the
// controller and the controller's output and sensorless phase to the
// motor. Rejects position-mode requests, since sensorless operation
// has no absolute position reference.
func (a *Axis) runSensorlessControlLoop(ctx context.Context) bool {
	a.setStepDirEnabled(a.config.EnableStepDir)
	defer a.setStepDirEnabled(false)

	a.RunControlLoop(ctx, func(ctx context.Context) bool {
		if a.controller.ControlMode() >= ControlModePosition {
			a.err.set(ErrorPosCtrlDuringSensorless)
			return false
		}

		currentSetpoint, ok := a.controller.Update(ctx, a.sensorless.PLLPos(), a.sensorless.VelEstimate())
		if !ok {
			a.err.set(ErrorControllerFailed)
			return false
		}
		return a.motor.Update(ctx, currentSetpoint, a.sensorless.Phase())
	})

	return a.err.isNone()
}

// runClosedLoopControlLoop is the ClosedLoopControl control-loop
// handler of §4.6: feeds encoder position/velocity to the controller
// and encoder phase to the motor, then runs the HomingSubMachine
// (homing_state != Inactive) or the normal endstop guard.
func (a *Axis) runClosedLoopControlLoop(ctx context.Context) bool {
	a.setStepDirEnabled(a.config.EnableStepDir)
	defer a.setStepDirEnabled(false)

	a.resetHomingSeekState()

	a.RunControlLoop(ctx, func(ctx context.Context) bool {
		currentSetpoint, ok := a.controller.Update(ctx, a.encoder.PosEstimate(), a.encoder.VelEstimate())
		if !ok {
			a.err.set(ErrorControllerFailed)
			return false
		}
		if !a.motor.Update(ctx, currentSetpoint, a.encoder.Phase()) {
			return false
		}

		if a.HomingState() != HomingInactive {
			a.runHomingTick()
			return true
		}
		return a.runEndstopGuard()
	})

	return a.err.isNone()
}

// runIdleLoop disarms motor PWM unconditionally and synchronously
// before running a tick body that always returns true, so the loop
// only exits on an external state request (§4.6, §7 safety).
func (a *Axis) runIdleLoop(ctx context.Context) {
	a.motor.Disarm(ctx)
	a.RunControlLoop(ctx, func(ctx context.Context) bool {
		return true
	})
}
