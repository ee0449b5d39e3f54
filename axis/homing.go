package axis

// resetHomingSeekState resets the phase-1 seek variables fresh, as run
// inside run_closed_loop_control_loop's setup on every entry:
// finding_min_endstop = true and the zero-velocity deadline is set
// from the min endstop's configured window. This runs unconditionally
// on every entry to closed-loop control, whether or not homing_state
// is currently active — it is harmless priming when it isn't (a fresh
// HomingSubMachine is created each entry into closed-loop control per
// §3's lifecycle note). homing_state itself is owned by the dispatch
// of the Homing state, not by this reset.
func (a *Axis) resetHomingSeekState() {
	a.findingMinEndstop = true
	a.loopCounterCheck = a.loopCounter.Load() + uint64(float64(a.minEndstop.Config().MinMsHoming)*a.tickRateHz)/1000
}

// runHomingTick runs one tick of the HomingSubMachine. It is called
// from inside the closed-loop tick body whenever homing_state !=
// Inactive (§4.3, §4.6).
func (a *Axis) runHomingTick() {
	switch HomingState(a.homingState.Load()) {
	case HomingSeeking:
		a.homingSeekTick()
	case HomingMoveToZero:
		a.homingMoveToZeroTick()
	}
}

// homingSeekTick runs phase 1 (seek min endstop) or phase 2 (seek max
// endstop), depending on findingMinEndstop.
func (a *Axis) homingSeekTick() {
	currentEndstop := a.minEndstop
	if !a.findingMinEndstop {
		currentEndstop = a.maxEndstop
	}

	foundEnd := a.encoder.VelEstimate() == 0.0 && a.loopCounter.Load() >= a.loopCounterCheck

	if !currentEndstop.GetEndstopState() && !foundEnd {
		return
	}
	// Either the endstop asserted, or zero-velocity has been sustained
	// past the configured window — the latter stands in for a physical
	// endstop when none is configured (soft-stop against a hard limit).

	if a.findingMinEndstop {
		a.minEndstop.SetOffsetFromHome(a.encoder.ShadowCount())
		a.findingMinEndstop = false
		a.loopCounterCheck = a.loopCounter.Load() + uint64(float64(currentEndstop.Config().MinMsHoming)*a.tickRateHz)/1000

		if a.maxEndstop.Config().Enabled {
			a.controller.SetVelIntegratorCurrent(0.0)
			a.controller.SetVelSetpoint(a.controller.HomingSpeed(), 0.0)
			return
		}
		a.encoder.SetLinearCount(a.minEndstop.Config().Offset)
		a.controller.SetPosSetpoint(0.0, 0.0, 0.0)
		a.homingState.Store(int32(HomingMoveToZero))
		return
	}

	totalCPR := a.encoder.ShadowCount() - a.minEndstop.OffsetFromHome()
	homePct := a.minEndstop.Config().HomePercentage
	if homePct > 0 {
		minOffset := -float64(totalCPR) * (homePct / 100.0)
		a.minEndstop.SetOffsetFromHome(int32(minOffset))
		a.maxEndstop.SetOffsetFromHome(totalCPR + int32(minOffset))
		a.encoder.SetLinearCount(-int32(minOffset))
	} else {
		a.minEndstop.SetOffsetFromHome(a.minEndstop.Config().Offset)
		a.maxEndstop.SetOffsetFromHome(totalCPR + a.minEndstop.Config().Offset)
		a.encoder.SetLinearCount(a.minEndstop.Config().Offset)
	}

	a.controller.SetPosSetpoint(0.0, 0.0, 0.0)
	a.homingState.Store(int32(HomingMoveToZero))
}

// homingMoveToZeroTick runs phase 3: re-plan a trapezoidal trajectory
// to position 0 every tick while the min endstop remains unasserted
// (Design Notes §9 preserves this observable per-tick re-plan
// behavior, even though it's almost certainly only meant to plan
// once), switching the controller into trajectory mode. Exits to
// Inactive once the min endstop asserts.
func (a *Axis) homingMoveToZeroTick() {
	if a.minEndstop.GetEndstopState() {
		a.homingState.Store(int32(HomingInactive))
		return
	}

	homingSpeed := a.controller.HomingSpeed()
	a.trajectory.PlanTrapezoidal(0.0, a.encoder.PosEstimate(), a.encoder.VelEstimate(), homingSpeed, homingSpeed/4.0, homingSpeed/4.0)
	a.controller.SetTrajStartLoopCount(uint32(a.loopCounter.Load()))
	a.controller.SetControlMode(ControlModeTrajectory)
}

// runEndstopGuard is the normal (non-homing) tick endstop check: fail
// if either configured endstop is asserted.
func (a *Axis) runEndstopGuard() bool {
	if a.minEndstop.Config().Enabled && a.minEndstop.GetEndstopState() {
		a.err.set(ErrorMinEndstopPressed)
		return false
	}
	if a.maxEndstop.Config().Enabled && a.maxEndstop.GetEndstopState() {
		a.err.set(ErrorMaxEndstopPressed)
		return false
	}
	return true
}
