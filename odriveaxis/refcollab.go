package odriveaxis

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/viam-modules/odrive-axis/axis"
)

// This file provides minimal, explicitly non-mathematical stand-ins
// for the five collaborators the axis package declares but never
// implements (motor current/phase control, encoder decoding, the
// sensorless observer, the PID controller, and trapezoidal trajectory
// planning), plus disabled-hardware GPIO and endstop fallbacks. They let an odriveaxis
// component be constructed and exercised without real power
// electronics attached; a deployment that drives an actual motor
// must supply its own collaborators grounded in real control theory,
// not these. None of these types does anything a reviewer should
// mistake for the real control loop.

// refMotor immediately "succeeds" at every request it's asked to
// perform and tracks only its armed/calibrated bookkeeping state.
type refMotor struct {
	armed      atomic.Bool
	calibrated atomic.Bool
}

func newRefMotor() *refMotor { return &refMotor{} }

func (m *refMotor) Setup(ctx context.Context) error { return nil }
func (m *refMotor) Arm(ctx context.Context) bool    { m.armed.Store(true); return true }
func (m *refMotor) Disarm(ctx context.Context)      { m.armed.Store(false) }
func (m *refMotor) RunCalibration(ctx context.Context) bool {
	m.calibrated.Store(true)
	return true
}
func (m *refMotor) Update(ctx context.Context, iMag, phase float64) bool { return true }
func (m *refMotor) DoChecks() axis.Error                                 { return axis.ErrorNone }
func (m *refMotor) ArmedState() axis.MotorArmedState {
	if m.armed.Load() {
		return axis.MotorArmedStateArmed
	}
	return axis.MotorDisarmedState
}
func (m *refMotor) IsCalibrated() bool { return m.calibrated.Load() }

// refEncoder reports a fixed CPR and is always "ready," but never
// actually decodes a real position signal: PosEstimate/VelEstimate
// stay at zero forever. This module has no real encoder driver; a
// deployment with a real encoder wires its own driver here instead.
type refEncoder struct {
	cpr      int
	useIndex bool

	mu          sync.Mutex
	linearCount int32
}

func newRefEncoder(cpr int, useIndex bool) *refEncoder {
	return &refEncoder{cpr: cpr, useIndex: useIndex}
}

func (e *refEncoder) Setup(ctx context.Context) error { return nil }
func (e *refEncoder) Update(ctx context.Context)      {}
func (e *refEncoder) DoChecks() axis.Error             { return axis.ErrorNone }
func (e *refEncoder) RunIndexSearch(ctx context.Context) bool       { return true }
func (e *refEncoder) RunOffsetCalibration(ctx context.Context) bool { return true }
func (e *refEncoder) SetLinearCount(count int32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.linearCount = count
}
func (e *refEncoder) PosEstimate() float64 { return 0 }
func (e *refEncoder) VelEstimate() float64 { return 0 }
func (e *refEncoder) Phase() float64       { return 0 }
func (e *refEncoder) ShadowCount() int32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.linearCount
}
func (e *refEncoder) IsReady() bool   { return true }
func (e *refEncoder) CPR() int        { return e.cpr }
func (e *refEncoder) UseIndex() bool  { return e.useIndex }

// refSensorless never estimates anything; it exists purely so
// SensorlessControl has a collaborator to call.
type refSensorless struct{}

func (refSensorless) Update(ctx context.Context) {}
func (refSensorless) PLLPos() float64            { return 0 }
func (refSensorless) VelEstimate() float64       { return 0 }
func (refSensorless) Phase() float64             { return 0 }

// refController implements the ControllerDriver surface with bare
// bookkeeping and no actual feedback law: Update always reports
// success with zero commanded current.
type refController struct {
	homingSpeed float64

	mu                   sync.Mutex
	posSetpoint          float64
	velSetpoint          float64
	velIntegratorCurrent float64
	trajStartLoopCount   uint32
	controlMode          axis.ControlMode
}

func newRefController(homingSpeed float64) *refController {
	return &refController{homingSpeed: homingSpeed}
}

func (c *refController) Update(ctx context.Context, pos, vel float64) (float64, bool) { return 0, true }
func (c *refController) HomeAxis(ctx context.Context) bool                            { return true }
func (c *refController) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.posSetpoint, c.velSetpoint, c.velIntegratorCurrent = 0, 0, 0
	c.controlMode = axis.ControlModeCurrent
}
func (c *refController) SetPosSetpoint(pos, velFF, curFF float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.posSetpoint = pos
}
func (c *refController) SetVelSetpoint(vel, curFF float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.velSetpoint = vel
}
func (c *refController) PosSetpoint() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.posSetpoint
}
func (c *refController) AddPosSetpoint(delta float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.posSetpoint += delta
}
func (c *refController) VelSetpoint() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.velSetpoint
}
func (c *refController) SetVelSetpointRaw(vel float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.velSetpoint = vel
}
func (c *refController) SetVelIntegratorCurrent(v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.velIntegratorCurrent = v
}
func (c *refController) SetTrajStartLoopCount(n uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.trajStartLoopCount = n
}
func (c *refController) ControlMode() axis.ControlMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controlMode
}
func (c *refController) SetControlMode(m axis.ControlMode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controlMode = m
}
func (c *refController) HomingSpeed() float64 { return c.homingSpeed }

// refTrajectory accepts a plan request and discards it; nothing reads
// a trajectory back out of this stand-in, since refController never
// follows one.
type refTrajectory struct{}

func (refTrajectory) PlanTrapezoidal(goalPos, currentPos, currentVel, vMax, aMax, dMax float64) {}

// refGPIO is the disabled-hardware fallback used when a component is
// configured without a board dependency: step/dir is effectively
// off, since Subscribe is a no-op and ReadPin always reports low.
// Unlike the collaborators above, the reason this stand-in exists
// isn't out-of-scope math, it's simply "no board was configured."
type refGPIO struct{}

func (refGPIO) Subscribe(port, pin int, pull axis.GPIOPull, edge axis.GPIOEdge, callback func()) error {
	return nil
}
func (refGPIO) Unsubscribe(port, pin int) error { return nil }
func (refGPIO) ReadPin(port, pin int) bool      { return false }

// refEndstop is the disabled-hardware fallback for an endstop that
// has no GPIO pin configured: it never asserts.
type refEndstop struct {
	cfg axis.EndstopConfig

	mu             sync.Mutex
	offsetFromHome int32
}

func newRefEndstop(cfg axis.EndstopConfig) *refEndstop { return &refEndstop{cfg: cfg} }

func (e *refEndstop) Update(ctx context.Context)   {}
func (e *refEndstop) DoChecks() axis.Error         { return axis.ErrorNone }
func (e *refEndstop) GetEndstopState() bool        { return false }
func (e *refEndstop) Config() axis.EndstopConfig    { return e.cfg }
func (e *refEndstop) OffsetFromHome() int32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.offsetFromHome
}
func (e *refEndstop) SetOffsetFromHome(v int32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.offsetFromHome = v
}
