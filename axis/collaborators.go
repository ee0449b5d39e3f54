package axis

import "context"

// This file defines the Go interfaces for every external collaborator
// listed in spec §6 "Consumed from collaborators". Per §1 these are
// out-of-scope ("external collaborators") beyond the points at which
// the Axis calls them: no control-law math, no trajectory math, no
// motor modeling, no encoder decoding, no debounced-GPIO logic lives
// in this package. axis/axistest provides fakes for every interface
// here; odriveaxis/refcollab.go provides a minimal non-mathematical
// placeholder implementation so the registered component is
// constructible without real hardware.

// ControlMode mirrors Controller.config.control_mode's four values.
type ControlMode int

const (
	ControlModeCurrent ControlMode = iota
	ControlModeVelocity
	ControlModePosition
	ControlModeTrajectory
)

// MotorDriver is the Motor collaborator: PWM drive, current sensing,
// gate-driver hardware.
type MotorDriver interface {
	Setup(ctx context.Context) error
	Arm(ctx context.Context) bool
	Disarm(ctx context.Context)
	RunCalibration(ctx context.Context) bool
	// Update commands a current magnitude and electrical phase; returns
	// false on drive failure.
	Update(ctx context.Context, iMag, phase float64) bool
	DoChecks() Error
	ArmedState() MotorArmedState
	IsCalibrated() bool
}

// MotorArmedState mirrors Motor::ARMED_STATE_*.
type MotorArmedState int

const (
	MotorDisarmedState MotorArmedState = iota
	MotorArmedStateArmed
)

// EncoderDriver is the Encoder collaborator: quadrature/SPI decoding.
type EncoderDriver interface {
	Setup(ctx context.Context) error
	Update(ctx context.Context)
	DoChecks() Error
	RunIndexSearch(ctx context.Context) bool
	RunOffsetCalibration(ctx context.Context) bool
	SetLinearCount(count int32)
	PosEstimate() float64
	VelEstimate() float64
	Phase() float64
	ShadowCount() int32
	IsReady() bool
	CPR() int
	UseIndex() bool
}

// SensorlessEstimatorDriver is the SensorlessEstimator collaborator:
// the flux/phase observer.
type SensorlessEstimatorDriver interface {
	Update(ctx context.Context)
	PLLPos() float64
	VelEstimate() float64
	Phase() float64
}

// ControllerDriver is the Controller collaborator: PID and
// feed-forward control math, plus the homing entry point.
type ControllerDriver interface {
	Update(ctx context.Context, pos, vel float64) (current float64, ok bool)
	HomeAxis(ctx context.Context) bool
	Reset()
	SetPosSetpoint(pos, velFF, curFF float64)
	SetVelSetpoint(vel, curFF float64)

	PosSetpoint() float64
	AddPosSetpoint(delta float64)
	VelSetpoint() float64
	SetVelSetpointRaw(vel float64)
	SetVelIntegratorCurrent(v float64)
	SetTrajStartLoopCount(n uint32)

	ControlMode() ControlMode
	SetControlMode(m ControlMode)
	HomingSpeed() float64
}

// TrajectoryPlanner is the TrapezoidalTrajectory collaborator.
type TrajectoryPlanner interface {
	PlanTrapezoidal(goalPos, currentPos, currentVel, vMax, aMax, dMax float64)
}

// EndstopConfig is the subset of Endstop.config the Axis reads.
type EndstopConfig struct {
	Enabled          bool
	PhysicalEndstop  bool
	MinMsHoming      int32
	Offset           int32
	HomePercentage   float64
}

// EndstopSensor is the Endstop collaborator: debounced GPIO endstop.
type EndstopSensor interface {
	Update(ctx context.Context)
	DoChecks() Error
	GetEndstopState() bool
	Config() EndstopConfig
	OffsetFromHome() int32
	SetOffsetFromHome(v int32)
}

// GPIOPull and GPIOEdge mirror the GPIO_subscribe pull/edge parameters.
type GPIOPull int

const (
	GPIONoPull GPIOPull = iota
	GPIOPullDown
	GPIOPullUp
)

type GPIOEdge int

const (
	GPIOEdgeRising GPIOEdge = iota
	GPIOEdgeFalling
)

// GPIOSubscriber is the GPIO subscription service collaborator used by
// StepDirInput: edge subscription on the step pin, plus a direct read
// of the direction pin.
type GPIOSubscriber interface {
	Subscribe(port, pin int, pull GPIOPull, edge GPIOEdge, callback func()) error
	Unsubscribe(port, pin int) error
	ReadPin(port, pin int) bool
}
