package axis

// State is one of the Axis's top-level sequencer states.
type State int

const (
	StateUndefined State = iota
	StateIdle
	StateStartupSequence
	StateFullCalibrationSequence
	StateMotorCalibration
	StateEncoderIndexSearch
	StateEncoderOffsetCalibration
	StateHoming
	StateClosedLoopControl
	StateSensorlessControl
)

func (s State) String() string {
	switch s {
	case StateUndefined:
		return "undefined"
	case StateIdle:
		return "idle"
	case StateStartupSequence:
		return "startup_sequence"
	case StateFullCalibrationSequence:
		return "full_calibration_sequence"
	case StateMotorCalibration:
		return "motor_calibration"
	case StateEncoderIndexSearch:
		return "encoder_index_search"
	case StateEncoderOffsetCalibration:
		return "encoder_offset_calibration"
	case StateHoming:
		return "homing"
	case StateClosedLoopControl:
		return "closed_loop_control"
	case StateSensorlessControl:
		return "sensorless_control"
	default:
		return "unknown"
	}
}

// ParseState maps a telemetry-facing state name back to a State, for
// the "request_state" DoCommand verb.
func ParseState(name string) (State, bool) {
	for s := StateUndefined; s <= StateSensorlessControl; s++ {
		if s.String() == name {
			return s, true
		}
	}
	return StateUndefined, false
}

// HomingState is the Axis's homing sub-state, §3.
type HomingState int

const (
	HomingInactive HomingState = iota
	HomingSeeking
	HomingMoveToZero
)

func (h HomingState) String() string {
	switch h {
	case HomingInactive:
		return "inactive"
	case HomingSeeking:
		return "homing"
	case HomingMoveToZero:
		return "move_to_zero"
	default:
		return "unknown"
	}
}

// prerequisiteOrdering gives the partial order used only for
// prerequisite validation: MotorCalibration < EncoderOffsetCalibration
// < control states. Undefined/Idle/StartupSequence/FullCalibrationSequence
// are not control states and are ordered below MotorCalibration;
// Homing ranks with the control states, so it needs both a calibrated
// motor and a ready encoder. This makes the ">" comparisons in AxisStateMachine's dispatch loop behave the
// same way the original's raw enum-ordinal comparisons did.
var prerequisiteOrdering = map[State]int{
	StateUndefined:                0,
	StateIdle:                     0,
	StateStartupSequence:          0,
	StateFullCalibrationSequence:  0,
	StateMotorCalibration:         1,
	StateEncoderIndexSearch:       2,
	StateEncoderOffsetCalibration: 3,
	StateHoming:                   4,
	StateClosedLoopControl:        4,
	StateSensorlessControl:        4,
}

func (s State) strictlyAfter(other State) bool {
	return prerequisiteOrdering[s] > prerequisiteOrdering[other]
}
