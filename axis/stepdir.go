package axis

// setStepDirEnabled enables or disables the step/dir ISR effect, §4.2.
// Enabling subscribes a falling-edge handler on the step pin (with
// pull-down) that, on each edge, reads the direction pin and bumps the
// controller's position setpoint by dir * counts_per_step. Re-entering
// the same state is idempotent.
func (a *Axis) setStepDirEnabled(enable bool) {
	if enable {
		if a.enableStepDir.CompareAndSwap(false, true) {
			a.gpio.Subscribe(a.hwConfig.StepPort, a.hwConfig.StepPin, GPIOPullDown, GPIOEdgeFalling, a.stepCallback)
		}
		return
	}
	if a.enableStepDir.CompareAndSwap(true, false) {
		a.gpio.Unsubscribe(a.hwConfig.StepPort, a.hwConfig.StepPin)
	}
}

// stepCallback is the step-edge handler. It reads the direction pin
// (high = +1, low = -1) and atomically bumps controller.pos_setpoint by
// dir * counts_per_step. The controller's AddPosSetpoint is the
// "no torn value, no lost update" contract point from §5: the
// controller owns the atomicity of that accumulation since it owns the
// storage.
func (a *Axis) stepCallback() {
	if !a.enableStepDir.Load() {
		return
	}
	dir := -1.0
	if a.gpio.ReadPin(a.hwConfig.DirPort, a.hwConfig.DirPin) {
		dir = 1.0
	}
	a.controller.AddPosSetpoint(dir * a.config.CountsPerStep)
}
