// Package axistest provides hand-rolled fakes for every axis
// collaborator interface, in the style of go.viam.com/rdk/testutils/inject:
// fakes expose *Func fields for the methods tests need to override,
// falling back to a sane default when nil; the remaining state is set
// through plain setters.
package axistest

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/viam-modules/odrive-axis/axis"
)

// Motor is a fake axis.MotorDriver.
type Motor struct {
	mu sync.Mutex

	ArmFunc            func(ctx context.Context) bool
	RunCalibrationFunc func(ctx context.Context) bool
	UpdateFunc         func(ctx context.Context, iMag, phase float64) bool
	DoChecksFunc       func() axis.Error

	armed      atomic.Bool
	calibrated atomic.Bool

	LastIMag, LastPhase float64
	UpdateCount         int
}

func NewMotor() *Motor {
	m := &Motor{}
	m.calibrated.Store(true)
	return m
}

func (m *Motor) Setup(ctx context.Context) error { return nil }

func (m *Motor) Arm(ctx context.Context) bool {
	if m.ArmFunc != nil {
		ok := m.ArmFunc(ctx)
		m.armed.Store(ok)
		return ok
	}
	m.armed.Store(true)
	return true
}

func (m *Motor) Disarm(ctx context.Context) {
	m.armed.Store(false)
}

func (m *Motor) RunCalibration(ctx context.Context) bool {
	if m.RunCalibrationFunc != nil {
		ok := m.RunCalibrationFunc(ctx)
		m.calibrated.Store(ok)
		return ok
	}
	m.calibrated.Store(true)
	return true
}

func (m *Motor) Update(ctx context.Context, iMag, phase float64) bool {
	m.mu.Lock()
	m.LastIMag, m.LastPhase = iMag, phase
	m.UpdateCount++
	m.mu.Unlock()
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, iMag, phase)
	}
	return true
}

func (m *Motor) DoChecks() axis.Error {
	if m.DoChecksFunc != nil {
		return m.DoChecksFunc()
	}
	return axis.ErrorNone
}

func (m *Motor) ArmedState() axis.MotorArmedState {
	if m.armed.Load() {
		return axis.MotorArmedStateArmed
	}
	return axis.MotorDisarmedState
}

func (m *Motor) IsCalibrated() bool { return m.calibrated.Load() }

func (m *Motor) SetCalibrated(v bool) { m.calibrated.Store(v) }

// Encoder is a fake axis.EncoderDriver.
type Encoder struct {
	mu sync.Mutex

	UpdateFunc               func(ctx context.Context)
	DoChecksFunc             func() axis.Error
	RunIndexSearchFunc       func(ctx context.Context) bool
	RunOffsetCalibrationFunc func(ctx context.Context) bool

	pos, vel, phase float64
	shadowCount     int32
	linearCount     int32
	ready           bool
	useIndex        bool
	cpr             int
}

func NewEncoder(cpr int) *Encoder {
	return &Encoder{ready: true, cpr: cpr}
}

func (e *Encoder) Setup(ctx context.Context) error { return nil }

func (e *Encoder) Update(ctx context.Context) {
	if e.UpdateFunc != nil {
		e.UpdateFunc(ctx)
	}
}

func (e *Encoder) DoChecks() axis.Error {
	if e.DoChecksFunc != nil {
		return e.DoChecksFunc()
	}
	return axis.ErrorNone
}

func (e *Encoder) RunIndexSearch(ctx context.Context) bool {
	if e.RunIndexSearchFunc != nil {
		return e.RunIndexSearchFunc(ctx)
	}
	return true
}

func (e *Encoder) RunOffsetCalibration(ctx context.Context) bool {
	if e.RunOffsetCalibrationFunc != nil {
		return e.RunOffsetCalibrationFunc(ctx)
	}
	e.ready = true
	return true
}

func (e *Encoder) SetLinearCount(count int32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.linearCount = count
}

func (e *Encoder) LinearCount() int32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.linearCount
}

func (e *Encoder) PosEstimate() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pos
}

func (e *Encoder) VelEstimate() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.vel
}

func (e *Encoder) Phase() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

func (e *Encoder) ShadowCount() int32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.shadowCount
}

func (e *Encoder) IsReady() bool { return e.ready }
func (e *Encoder) CPR() int      { return e.cpr }
func (e *Encoder) UseIndex() bool { return e.useIndex }

func (e *Encoder) SetReady(v bool)    { e.ready = v }
func (e *Encoder) SetUseIndex(v bool) { e.useIndex = v }
func (e *Encoder) SetPos(pos, vel, phase float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pos, e.vel, e.phase = pos, vel, phase
}
func (e *Encoder) SetShadowCount(v int32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.shadowCount = v
}

// Sensorless is a fake axis.SensorlessEstimatorDriver.
type Sensorless struct {
	mu               sync.Mutex
	UpdateFunc       func(ctx context.Context)
	pllPos, vel, phase float64
}

func (s *Sensorless) Update(ctx context.Context) {
	if s.UpdateFunc != nil {
		s.UpdateFunc(ctx)
	}
}
func (s *Sensorless) PLLPos() float64 { s.mu.Lock(); defer s.mu.Unlock(); return s.pllPos }
func (s *Sensorless) VelEstimate() float64 { s.mu.Lock(); defer s.mu.Unlock(); return s.vel }
func (s *Sensorless) Phase() float64 { s.mu.Lock(); defer s.mu.Unlock(); return s.phase }
func (s *Sensorless) SetEstimate(pllPos, vel, phase float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pllPos, s.vel, s.phase = pllPos, vel, phase
}

// Controller is a fake axis.ControllerDriver.
type Controller struct {
	mu sync.Mutex

	UpdateFunc   func(ctx context.Context, pos, vel float64) (float64, bool)
	HomeAxisFunc func(ctx context.Context) bool

	posSetpoint, velSetpoint, velIntegratorCurrent float64
	trajStartLoopCount                             uint32
	controlMode                                     axis.ControlMode
	homingSpeed                                     float64
}

func NewController(homingSpeed float64) *Controller {
	return &Controller{homingSpeed: homingSpeed}
}

func (c *Controller) Update(ctx context.Context, pos, vel float64) (float64, bool) {
	if c.UpdateFunc != nil {
		return c.UpdateFunc(ctx, pos, vel)
	}
	return 0, true
}

func (c *Controller) HomeAxis(ctx context.Context) bool {
	if c.HomeAxisFunc != nil {
		return c.HomeAxisFunc(ctx)
	}
	return true
}

func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.posSetpoint, c.velSetpoint, c.velIntegratorCurrent = 0, 0, 0
	c.controlMode = axis.ControlModeCurrent
}

func (c *Controller) SetPosSetpoint(pos, velFF, curFF float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.posSetpoint = pos
}

func (c *Controller) SetVelSetpoint(vel, curFF float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.velSetpoint = vel
}

func (c *Controller) PosSetpoint() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.posSetpoint
}

func (c *Controller) AddPosSetpoint(delta float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.posSetpoint += delta
}

func (c *Controller) VelSetpoint() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.velSetpoint
}

func (c *Controller) SetVelSetpointRaw(vel float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.velSetpoint = vel
}

func (c *Controller) SetVelIntegratorCurrent(v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.velIntegratorCurrent = v
}

func (c *Controller) VelIntegratorCurrent() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.velIntegratorCurrent
}

func (c *Controller) SetTrajStartLoopCount(n uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.trajStartLoopCount = n
}

func (c *Controller) TrajStartLoopCount() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.trajStartLoopCount
}

func (c *Controller) ControlMode() axis.ControlMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controlMode
}

func (c *Controller) SetControlMode(m axis.ControlMode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controlMode = m
}

func (c *Controller) HomingSpeed() float64 { return c.homingSpeed }

// Trajectory is a fake axis.TrajectoryPlanner.
type Trajectory struct {
	mu    sync.Mutex
	Calls int
	LastGoalPos, LastCurrentPos, LastCurrentVel, LastVMax, LastAMax, LastDMax float64
}

func (t *Trajectory) PlanTrapezoidal(goalPos, currentPos, currentVel, vMax, aMax, dMax float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Calls++
	t.LastGoalPos, t.LastCurrentPos, t.LastCurrentVel = goalPos, currentPos, currentVel
	t.LastVMax, t.LastAMax, t.LastDMax = vMax, aMax, dMax
}

// Endstop is a fake axis.EndstopSensor.
type Endstop struct {
	mu sync.Mutex

	UpdateFunc   func(ctx context.Context)
	DoChecksFunc func() axis.Error

	cfg            axis.EndstopConfig
	state          bool
	offsetFromHome int32
}

func NewEndstop(cfg axis.EndstopConfig) *Endstop {
	return &Endstop{cfg: cfg}
}

func (e *Endstop) Update(ctx context.Context) {
	if e.UpdateFunc != nil {
		e.UpdateFunc(ctx)
	}
}

func (e *Endstop) DoChecks() axis.Error {
	if e.DoChecksFunc != nil {
		return e.DoChecksFunc()
	}
	return axis.ErrorNone
}

func (e *Endstop) GetEndstopState() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Endstop) SetState(v bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = v
}

func (e *Endstop) Config() axis.EndstopConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

func (e *Endstop) SetConfig(cfg axis.EndstopConfig) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg = cfg
}

func (e *Endstop) OffsetFromHome() int32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.offsetFromHome
}

func (e *Endstop) SetOffsetFromHome(v int32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.offsetFromHome = v
}

// GPIO is a fake axis.GPIOSubscriber.
type GPIO struct {
	mu sync.Mutex

	subs     map[[2]int]func()
	pinState map[[2]int]bool
}

func NewGPIO() *GPIO {
	return &GPIO{
		subs:     map[[2]int]func(){},
		pinState: map[[2]int]bool{},
	}
}

func (g *GPIO) Subscribe(port, pin int, pull axis.GPIOPull, edge axis.GPIOEdge, callback func()) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.subs[[2]int{port, pin}] = callback
	return nil
}

func (g *GPIO) Unsubscribe(port, pin int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.subs, [2]int{port, pin})
	return nil
}

func (g *GPIO) ReadPin(port, pin int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pinState[[2]int{port, pin}]
}

func (g *GPIO) SetPin(port, pin int, v bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pinState[[2]int{port, pin}] = v
}

// FireEdge invokes the subscribed callback for (port, pin), if any,
// simulating a step edge interrupt.
func (g *GPIO) FireEdge(port, pin int) {
	g.mu.Lock()
	cb := g.subs[[2]int{port, pin}]
	g.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// Board is a fake axis.BoardContext.
type Board struct {
	mu                                          sync.Mutex
	vbus                                        float64
	brakeResistorArmed                          bool
	adc                                         map[int]float64
	underVoltage, overVoltage, adcFullScale float64
}

func NewBoard() *Board {
	return &Board{
		brakeResistorArmed: true,
		adc:                map[int]float64{},
		underVoltage:       8.0,
		overVoltage:        56.0,
		adcFullScale:       3.3,
	}
}

func (b *Board) VBusVoltage() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.vbus
}

func (b *Board) SetVBusVoltage(v float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.vbus = v
}

func (b *Board) BrakeResistorArmed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.brakeResistorArmed
}

func (b *Board) SetBrakeResistorArmed(v bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.brakeResistorArmed = v
}

func (b *Board) ADCMeasurement(channel int) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.adc[channel]
}

func (b *Board) SetADCMeasurement(channel int, v float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.adc[channel] = v
}

func (b *Board) UnderVoltageTripLevel() float64 { return b.underVoltage }
func (b *Board) OverVoltageTripLevel() float64  { return b.overVoltage }
func (b *Board) ADCFullScale() float64          { return b.adcFullScale }
