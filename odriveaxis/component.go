// Package odriveaxis registers the "odrive-axis" generic component: a
// Viam module wrapping axis.Axis, the per-motor real-time state
// machine, for a single controller-board axis. Per the module's
// explicit non-goal of inventing a remote API, every operation is
// exposed through the existing DoCommand surface rather than a new
// gRPC service.
package odriveaxis

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/rdk/components/board"
	"go.viam.com/rdk/components/generic"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/resource"

	"github.com/viam-modules/odrive-axis/axis"
	"github.com/viam-modules/odrive-axis/boardctx"
	"github.com/viam-modules/odrive-axis/boardio"
)

// Model is the model this module registers against generic.API.
var Model = resource.NewModel("viam", "odrive", "axis")

// EndstopConfig is the user-facing configuration for one endstop.
type EndstopConfig struct {
	Enabled         bool    `json:"enabled,omitempty"`
	PhysicalEndstop bool    `json:"physical_endstop,omitempty"`
	GPIOName        string  `json:"gpio_name,omitempty"`
	IsActiveHigh    bool    `json:"is_active_high,omitempty"`
	DebounceMs      float64 `json:"debounce_ms,omitempty"`
	MinMsHoming     int32   `json:"min_ms_homing,omitempty"`
	Offset          int32   `json:"offset,omitempty"`
	HomePercentage  float64 `json:"home_percentage,omitempty"`
}

func (c EndstopConfig) toAxisConfig() axis.EndstopConfig {
	minMs := c.MinMsHoming
	if minMs == 0 {
		minMs = 4000
	}
	return axis.EndstopConfig{
		Enabled:         c.Enabled,
		PhysicalEndstop: c.PhysicalEndstop,
		MinMsHoming:     minMs,
		Offset:          c.Offset,
		HomePercentage:  c.HomePercentage,
	}
}

// SerialTelemetryConfig configures boardctx.SerialBoard as the board
// voltage/ADC telemetry source.
type SerialTelemetryConfig struct {
	Port     string `json:"port"`
	BaudRate int    `json:"baud_rate,omitempty"`
}

// Config is the resource.Config payload for one odrive-axis component.
type Config struct {
	BoardName string `json:"board,omitempty"`

	StepGPIOName string `json:"step_gpio_name,omitempty"`
	DirGPIOName  string `json:"dir_gpio_name,omitempty"`
	StepPort     int    `json:"step_port,omitempty"`
	StepPin      int    `json:"step_pin,omitempty"`
	DirPort      int    `json:"dir_port,omitempty"`
	DirPin       int    `json:"dir_pin,omitempty"`

	MinEndstop EndstopConfig `json:"min_endstop,omitempty"`
	MaxEndstop EndstopConfig `json:"max_endstop,omitempty"`

	SerialTelemetry *SerialTelemetryConfig `json:"serial_telemetry,omitempty"`
	StaticVBusVolts float64                `json:"static_vbus_volts,omitempty"`

	UnderVoltageTripLevel float64 `json:"under_voltage_trip_level,omitempty"`
	OverVoltageTripLevel  float64 `json:"over_voltage_trip_level,omitempty"`
	ADCFullScale          float64 `json:"adc_full_scale,omitempty"`

	ThermistorGPIOChannel int       `json:"thermistor_adc_channel,omitempty"`
	ThermistorPolyCoeffs  []float64 `json:"thermistor_poly_coeffs,omitempty"`

	EnableStepDir bool    `json:"enable_step_dir,omitempty"`
	CountsPerStep float64 `json:"counts_per_step,omitempty"`

	EncoderCPR      int  `json:"encoder_cpr"`
	EncoderUseIndex bool `json:"encoder_use_index,omitempty"`

	HomingSpeed float64 `json:"homing_speed,omitempty"`

	StartupMotorCalibration         bool `json:"startup_motor_calibration,omitempty"`
	StartupEncoderIndexSearch       bool `json:"startup_encoder_index_search,omitempty"`
	StartupEncoderOffsetCalibration bool `json:"startup_encoder_offset_calibration,omitempty"`
	StartupClosedLoopControl        bool `json:"startup_closed_loop_control,omitempty"`
	StartupSensorlessControl        bool `json:"startup_sensorless_control,omitempty"`
	StartupHoming                   bool `json:"startup_homing,omitempty"`

	RampUpTime         float64 `json:"ramp_up_time,omitempty"`
	RampUpDistance      float64 `json:"ramp_up_distance,omitempty"`
	SpinUpCurrent      float64 `json:"spin_up_current,omitempty"`
	SpinUpAcceleration float64 `json:"spin_up_acceleration,omitempty"`
	SpinUpTargetVel    float64 `json:"spin_up_target_vel,omitempty"`
}

// Validate ensures the config is internally consistent and returns
// the board dependency, if any is required.
func (c *Config) Validate(path string) ([]string, []string, error) {
	var deps []string
	needsBoard := c.EnableStepDir || c.MinEndstop.Enabled && c.MinEndstop.GPIOName != "" ||
		c.MaxEndstop.Enabled && c.MaxEndstop.GPIOName != ""
	if needsBoard {
		if c.BoardName == "" {
			return nil, nil, resource.NewConfigValidationFieldRequiredError(path, "board")
		}
		deps = append(deps, c.BoardName)
	}
	if c.EncoderCPR <= 0 {
		return nil, nil, resource.NewConfigValidationFieldRequiredError(path, "encoder_cpr")
	}
	if c.EnableStepDir {
		if c.CountsPerStep == 0 {
			return nil, nil, errors.New("counts_per_step must be set when enable_step_dir is true")
		}
		if c.StepGPIOName == "" || c.DirGPIOName == "" {
			return nil, nil, errors.New("step_gpio_name and dir_gpio_name must be set when enable_step_dir is true")
		}
	}
	return deps, nil, nil
}

func init() {
	resource.RegisterComponent(generic.API, Model, resource.Registration[resource.Resource, *Config]{
		Constructor: newOdriveAxis,
	})
}

// Axis wraps axis.Axis as a generic Viam component: Start/Close
// lifecycle, plus DoCommand for status and state requests.
type Axis struct {
	resource.Named
	resource.AlwaysRebuild

	logger logging.Logger
	axis   *axis.Axis

	closeOnce sync.Once
	cancel    context.CancelFunc
	closeFns  []func() error
}

func newOdriveAxis(ctx context.Context, deps resource.Dependencies, conf resource.Config, logger logging.Logger) (resource.Resource, error) {
	c, err := resource.NativeConfig[*Config](conf)
	if err != nil {
		return nil, err
	}

	hwConfig := axis.HardwareConfig{
		StepPort:             c.StepPort,
		StepPin:              c.StepPin,
		DirPort:              c.DirPort,
		DirPin:               c.DirPin,
		ThermistorADCChannel: c.ThermistorGPIOChannel,
		ThermistorPolyCoeffs: c.ThermistorPolyCoeffs,
	}
	axisConfig := axis.Config{
		StartupMotorCalibration:         c.StartupMotorCalibration,
		StartupEncoderIndexSearch:       c.StartupEncoderIndexSearch,
		StartupEncoderOffsetCalibration: c.StartupEncoderOffsetCalibration,
		StartupClosedLoopControl:        c.StartupClosedLoopControl,
		StartupSensorlessControl:        c.StartupSensorlessControl,
		StartupHoming:                   c.StartupHoming,
		EnableStepDir:                   c.EnableStepDir,
		CountsPerStep:                   c.CountsPerStep,
		RampUpTime:                      c.RampUpTime,
		RampUpDistance:                  c.RampUpDistance,
		SpinUpCurrent:                   c.SpinUpCurrent,
		SpinUpAcceleration:              c.SpinUpAcceleration,
		SpinUpTargetVel:                 c.SpinUpTargetVel,
	}

	var closeFns []func() error

	var gpio axis.GPIOSubscriber = refGPIO{}
	var boardCtx axis.BoardContext
	var minEndstop, maxEndstop axis.EndstopSensor = newRefEndstop(c.MinEndstop.toAxisConfig()), newRefEndstop(c.MaxEndstop.toAxisConfig())

	if c.BoardName != "" {
		b, err := board.FromDependencies(deps, c.BoardName)
		if err != nil {
			return nil, errors.Wrapf(err, "%q is not a board", c.BoardName)
		}

		names := boardio.PinNames{}
		if c.StepGPIOName != "" {
			names[boardio.PinKey{Port: c.StepPort, Pin: c.StepPin}] = c.StepGPIOName
		}
		if c.DirGPIOName != "" {
			names[boardio.PinKey{Port: c.DirPort, Pin: c.DirPin}] = c.DirGPIOName
		}
		gpio = boardio.NewGPIO(b, names, logger)

		if c.MinEndstop.Enabled && c.MinEndstop.GPIOName != "" {
			pin, err := b.GPIOPinByName(c.MinEndstop.GPIOName)
			if err != nil {
				return nil, errors.Wrapf(err, "min_endstop gpio_name %q", c.MinEndstop.GPIOName)
			}
			minEndstop = boardio.NewEndstop(pin, c.MinEndstop.toAxisConfig(), c.MinEndstop.IsActiveHigh, debounceDuration(c.MinEndstop.DebounceMs))
		}
		if c.MaxEndstop.Enabled && c.MaxEndstop.GPIOName != "" {
			pin, err := b.GPIOPinByName(c.MaxEndstop.GPIOName)
			if err != nil {
				return nil, errors.Wrapf(err, "max_endstop gpio_name %q", c.MaxEndstop.GPIOName)
			}
			maxEndstop = boardio.NewEndstop(pin, c.MaxEndstop.toAxisConfig(), c.MaxEndstop.IsActiveHigh, debounceDuration(c.MaxEndstop.DebounceMs))
		}
	}

	telemetryCtx, cancelTelemetry := context.WithCancel(context.Background())
	if c.SerialTelemetry != nil {
		sb, err := boardctx.OpenSerialBoard(
			telemetryCtx,
			boardctx.SerialConfig{Port: c.SerialTelemetry.Port, BaudRate: c.SerialTelemetry.BaudRate},
			fallback(c.UnderVoltageTripLevel, 8.0),
			fallback(c.OverVoltageTripLevel, 56.0),
			fallback(c.ADCFullScale, 3.3),
			logger,
		)
		if err != nil {
			cancelTelemetry()
			return nil, err
		}
		boardCtx = sb
		closeFns = append(closeFns, sb.Close)
	} else {
		cancelTelemetry()
		boardCtx = boardctx.NewStatic(
			c.StaticVBusVolts,
			fallback(c.UnderVoltageTripLevel, 8.0),
			fallback(c.OverVoltageTripLevel, 56.0),
			fallback(c.ADCFullScale, 3.3),
		)
	}

	a := axis.New(
		logger,
		hwConfig,
		axisConfig,
		newRefEncoder(c.EncoderCPR, c.EncoderUseIndex),
		refSensorless{},
		newRefController(fallback(c.HomingSpeed, 1.0)),
		newRefMotor(),
		refTrajectory{},
		minEndstop, maxEndstop,
		gpio,
		boardCtx,
	)
	if err := a.Setup(ctx); err != nil {
		return nil, errors.Wrap(err, "axis setup")
	}

	runCtx, cancel := context.WithCancel(context.Background())
	a.Start(runCtx)
	go runSignalPump(runCtx, a)

	return &Axis{
		Named:    conf.ResourceName().AsNamed(),
		logger:   logger,
		axis:     a,
		cancel:   cancel,
		closeFns: closeFns,
	}, nil
}

// runSignalPump stands in for the current-measurement ISR: nothing in
// this module drives a real PWM timer, so the control loop is ticked
// off a wall-clock timer instead. A deployment with a real current
// sense ISR would call Axis.SignalCurrentMeas() from that ISR context
// directly and never start this goroutine.
func runSignalPump(ctx context.Context, a *axis.Axis) {
	ticker := time.NewTicker(time.Duration(1e9 / axis.DefaultTickRateHz))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.SignalCurrentMeas()
		}
	}
}

func fallback(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

func debounceDuration(ms float64) time.Duration {
	if ms == 0 {
		ms = 100
	}
	return time.Duration(ms * float64(time.Millisecond))
}

// Close stops the axis worker and releases any telemetry link.
func (a *Axis) Close(ctx context.Context) error {
	var err error
	a.closeOnce.Do(func() {
		a.cancel()
		for _, fn := range a.closeFns {
			err = multierr.Combine(err, fn())
		}
	})
	return err
}

// DoCommand surfaces the telemetry/command verbs of §6 and §7: status
// readout and state requests, since the module's explicit non-goal is
// inventing a dedicated remote API for these.
func (a *Axis) DoCommand(ctx context.Context, cmd map[string]interface{}) (map[string]interface{}, error) {
	name, ok := cmd["command"]
	if !ok {
		return nil, errors.New("missing command value")
	}
	switch name {
	case "get_status":
		return map[string]interface{}{
			"current_state":      a.axis.CurrentState().String(),
			"requested_state":    a.axis.RequestedState().String(),
			"task_chain":         chainStrings(a.axis.TaskChain()),
			"homing_state":       a.axis.HomingState().String(),
			"error":              a.axis.LastError().String(),
			"loop_counter":       a.axis.LoopCounter(),
			"thread_valid":       a.axis.ThreadValid(),
			"step_dir_enabled":   a.axis.EnableStepDirActive(),
			"temperature":        a.axis.Temperature(),
		}, nil
	case "request_state":
		stateRaw, ok := cmd["state"]
		if !ok {
			return nil, errors.New("need state value for request_state")
		}
		stateName, ok := stateRaw.(string)
		if !ok {
			return nil, errors.New("state value must be a string")
		}
		s, ok := axis.ParseState(stateName)
		if !ok {
			return nil, errors.Errorf("unrecognized state %q", stateName)
		}
		a.axis.RequestState(s)
		return map[string]interface{}{"ok": true}, nil
	case "clear_error":
		a.axis.ClearError(^axis.ErrorInvalidState)
		return map[string]interface{}{"ok": true}, nil
	default:
		return nil, errors.Errorf("no such command: %v", name)
	}
}

func chainStrings(states []axis.State) []string {
	out := make([]string, len(states))
	for i, s := range states {
		out[i] = s.String()
	}
	return out
}
