// Package axis implements the per-axis real-time state machine that
// coordinates a brushless motor, its position encoder, a sensorless
// back-EMF estimator, a trajectory planner, a closed-loop controller,
// and two mechanical end-stop sensors on a motor-drive controller
// board. One Axis drives one motor.
package axis

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"go.viam.com/rdk/logging"
)

// HardwareConfig is the immutable per-axis hardware binding: step/dir
// pin identity, thermistor channel and conversion polynomial, and
// worker priority hint. Set once at construction, never mutated.
type HardwareConfig struct {
	StepPort, StepPin int
	DirPort, DirPin   int

	ThermistorADCChannel int
	ThermistorPolyCoeffs  []float64 // ascending-power coefficients, evaluated with Horner's method

	ThreadPriority int
}

// Config holds the recognized options from §3: startup sequencing
// flags, step/dir gating, and sensorless spin-up parameters.
type Config struct {
	StartupMotorCalibration         bool
	StartupEncoderIndexSearch       bool
	StartupEncoderOffsetCalibration bool
	StartupClosedLoopControl        bool
	StartupSensorlessControl        bool
	StartupHoming                   bool

	EnableStepDir  bool
	CountsPerStep  float64

	RampUpTime         float64
	RampUpDistance     float64
	SpinUpCurrent      float64
	SpinUpAcceleration float64
	SpinUpTargetVel    float64
}

// DefaultTickRateHz (whose inverse is the per-Axis current_meas_period)
// and DefaultCurrentMeasTimeout (PH_CURRENT_MEAS_TIMEOUT, the
// signal-wait timeout) set the cadence of the current-measurement
// signal the control loop is synchronized to.
const (
	DefaultTickRateHz         = 8000.0
	DefaultCurrentMeasTimeout = 10 * time.Millisecond
)

// Axis is one per-motor controller. See package doc and spec §3 for
// the full data model and its invariants.
type Axis struct {
	logger logging.Logger

	hwConfig HardwareConfig
	config   Config

	encoder    EncoderDriver
	sensorless SensorlessEstimatorDriver
	controller ControllerDriver
	motor      MotorDriver
	trajectory TrajectoryPlanner
	minEndstop EndstopSensor
	maxEndstop EndstopSensor
	gpio       GPIOSubscriber
	board      BoardContext

	tickRateHz         float64
	currentMeasPeriod  float64
	currentMeasTimeout time.Duration

	mu sync.Mutex // guards task chain + current_state + homing sub-state transitions

	chain          taskChain
	requestedState atomic.Int32 // State, written externally, read by the worker
	homingState    atomic.Int32 // HomingState

	err errorFlag

	enableStepDir atomic.Bool

	loopCounter      atomic.Uint64
	loopCounterCheck uint64 // only touched from the worker goroutine
	findingMinEndstop bool

	signal      *Signal
	threadValid atomic.Bool

	anticoggingMap []float64 // allocated once on first loop entry; nil is tolerated
}

// New constructs an Axis with all collaborators bound. Per invariant 7,
// the back-reference relationship in the original design is replaced
// here by per-call context passing (Design Notes §9 option (b)): every
// collaborator entry point below is called with the Axis's own
// context, never the other way around, so there is no mutable
// back-pointer to keep consistent.
func New(
	logger logging.Logger,
	hwConfig HardwareConfig,
	config Config,
	encoder EncoderDriver,
	sensorless SensorlessEstimatorDriver,
	controller ControllerDriver,
	motor MotorDriver,
	trajectory TrajectoryPlanner,
	minEndstop, maxEndstop EndstopSensor,
	gpio GPIOSubscriber,
	board BoardContext,
) *Axis {
	a := &Axis{
		logger:             logger,
		hwConfig:           hwConfig,
		config:             config,
		encoder:            encoder,
		sensorless:         sensorless,
		controller:         controller,
		motor:              motor,
		trajectory:         trajectory,
		minEndstop:         minEndstop,
		maxEndstop:         maxEndstop,
		gpio:               gpio,
		board:              board,
		tickRateHz:         DefaultTickRateHz,
		currentMeasTimeout: DefaultCurrentMeasTimeout,
		signal:             NewSignal(),
	}
	a.currentMeasPeriod = 1.0 / a.tickRateHz
	a.requestedState.Store(int32(StateUndefined))
	a.homingState.Store(int32(HomingInactive))
	return a
}

// Setup sets up all components of the axis: encoder and motor
// hardware, per axis.cpp::setup.
func (a *Axis) Setup(ctx context.Context) error {
	if err := a.encoder.Setup(ctx); err != nil {
		return errors.Wrap(err, "encoder setup")
	}
	if err := a.motor.Setup(ctx); err != nil {
		return errors.Wrap(err, "motor setup")
	}
	return nil
}

// SignalCurrentMeas unblocks the worker, if one is running. This is
// the Axis-side equivalent of the current-measurement ISR firing.
func (a *Axis) SignalCurrentMeas() {
	if a.threadValid.Load() {
		a.signal.Send()
	}
}

// RequestState writes requested_state; this is the Axis's only
// command surface (§6: "No direct command surface; all commands
// arrive as writes to requested_state").
func (a *Axis) RequestState(s State) {
	a.requestedState.Store(int32(s))
}

// RequestedState returns the most recently requested state, for
// telemetry; it reads StateUndefined once the worker has consumed the
// request and expanded it into the task chain.
func (a *Axis) RequestedState() State {
	return State(a.requestedState.Load())
}

// CurrentState returns task_chain[0] (invariant 1).
func (a *Axis) CurrentState() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.chain.current()
}

// TaskChain returns a snapshot of the pending task chain, for
// telemetry/tests.
func (a *Axis) TaskChain() []State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.chain.snapshot()
}

// HomingState returns the current homing sub-state.
func (a *Axis) HomingState() HomingState {
	return HomingState(a.homingState.Load())
}

// LoopCounter returns the monotonic tick counter.
func (a *Axis) LoopCounter() uint64 {
	return a.loopCounter.Load()
}

// LastError returns the accumulated axis error bitset.
func (a *Axis) LastError() Error {
	return a.err.load()
}

// ClearError clears the given bits from the sticky error bitset; this
// is how the telemetry layer clears all-but-InvalidState bits per §7.
func (a *Axis) ClearError(bits Error) {
	a.err.clear(bits)
}

// EnableStepDirActive reports whether the step/dir ISR effect is currently
// gated on.
func (a *Axis) EnableStepDirActive() bool {
	return a.enableStepDir.Load()
}

// Temperature evaluates the thermistor conversion polynomial with
// Horner's method against the currently configured ADC channel,
// mirroring axis.cpp::get_temp. Axis-owned math (hw_config is Axis
// data, not a collaborator), so it is implemented directly.
func (a *Axis) Temperature() float64 {
	if a.board == nil || len(a.hwConfig.ThermistorPolyCoeffs) == 0 {
		return 0
	}
	raw := a.board.ADCMeasurement(a.hwConfig.ThermistorADCChannel)
	fullScale := a.board.ADCFullScale()
	if fullScale == 0 {
		return 0
	}
	normalized := raw / fullScale
	coeffs := a.hwConfig.ThermistorPolyCoeffs
	result := 0.0
	for i := len(coeffs) - 1; i >= 0; i-- {
		result = result*normalized + coeffs[i]
	}
	return result
}

// allocateAnticoggingMap allocates the CPR-sized anti-cogging buffer
// once on first loop entry. A failed/skipped allocation (CPR == 0) is
// tolerated by leaving the feature disabled, matching the original's
// "tolerate allocation failure by skipping the feature."
func (a *Axis) allocateAnticoggingMap() {
	if a.anticoggingMap != nil {
		return
	}
	cpr := a.encoder.CPR()
	if cpr <= 0 {
		return
	}
	a.anticoggingMap = make([]float64, cpr)
}
