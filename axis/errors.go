package axis

import "sync/atomic"

// Error is the sticky bitset of axis-level fault kinds described in
// the error handling design: bits accumulate within a loop cycle and
// are never thrown, only OR'd in and inspected.
type Error uint32

// Error kinds. Subcomponents may define additional bits beyond these;
// the axis-level kinds below are the ones this package sets directly.
const (
	ErrorNone Error = 0

	ErrorInvalidState Error = 1 << iota
	ErrorDcBusUnderVoltage
	ErrorDcBusOverVoltage
	ErrorBrakeResistorDisarmed
	ErrorMotorDisarmed
	ErrorMotorFailed
	ErrorControllerFailed
	ErrorControlLoopMissed
	ErrorPosCtrlDuringSensorless
	ErrorMinEndstopPressed
	ErrorMaxEndstopPressed
)

// String renders the set bits for logging, in a fixed order.
func (e Error) String() string {
	if e == ErrorNone {
		return "none"
	}
	names := []struct {
		bit  Error
		name string
	}{
		{ErrorInvalidState, "invalid_state"},
		{ErrorDcBusUnderVoltage, "dc_bus_under_voltage"},
		{ErrorDcBusOverVoltage, "dc_bus_over_voltage"},
		{ErrorBrakeResistorDisarmed, "brake_resistor_disarmed"},
		{ErrorMotorDisarmed, "motor_disarmed"},
		{ErrorMotorFailed, "motor_failed"},
		{ErrorControllerFailed, "controller_failed"},
		{ErrorControlLoopMissed, "control_loop_missed"},
		{ErrorPosCtrlDuringSensorless, "pos_ctrl_during_sensorless"},
		{ErrorMinEndstopPressed, "min_endstop_pressed"},
		{ErrorMaxEndstopPressed, "max_endstop_pressed"},
	}
	out := ""
	for _, n := range names {
		if e&n.bit != 0 {
			if out != "" {
				out += "|"
			}
			out += n.name
		}
	}
	if out == "" {
		return "none"
	}
	return out
}

// errorFlag is an atomically accessed Error bitset. error_ in the
// original is written from the worker, from subcomponent callbacks,
// and potentially from ISRs, and read by the telemetry layer, so every
// access goes through atomic bitwise-OR (accumulation) or atomic load
// (inspection).
type errorFlag struct {
	v atomic.Uint32
}

func (f *errorFlag) set(bits Error) {
	if bits == ErrorNone {
		return
	}
	for {
		old := f.v.Load()
		next := old | uint32(bits)
		if next == old || f.v.CompareAndSwap(old, next) {
			return
		}
	}
}

func (f *errorFlag) clear(bits Error) {
	for {
		old := f.v.Load()
		next := old &^ uint32(bits)
		if next == old || f.v.CompareAndSwap(old, next) {
			return
		}
	}
}

func (f *errorFlag) load() Error {
	return Error(f.v.Load())
}

func (f *errorFlag) reset() {
	f.v.Store(0)
}

func (f *errorFlag) isNone() bool {
	return f.v.Load() == 0
}
