package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// StepConfig is one entry in a scenario's step list: request a state
// and let the worker run for duration before the next step is applied.
type StepConfig struct {
	RequestState string `yaml:"request_state"`
	DurationMs   int    `yaml:"duration_ms"`
}

// EndstopScenarioConfig configures one fake endstop collaborator.
type EndstopScenarioConfig struct {
	Enabled        bool    `yaml:"enabled"`
	MinMsHoming    int32   `yaml:"min_ms_homing"`
	HomePercentage float64 `yaml:"home_percentage"`
}

// Scenario is the top-level bench-harness input: hardware/config
// knobs for axis.New plus a script of state requests to run through
// RunStateMachineLoop against axistest fakes, with no real hardware
// attached.
type Scenario struct {
	EncoderCPR      int                   `yaml:"encoder_cpr"`
	EncoderUseIndex bool                  `yaml:"encoder_use_index"`
	HomingSpeed     float64               `yaml:"homing_speed"`
	MinEndstop      EndstopScenarioConfig `yaml:"min_endstop"`
	MaxEndstop      EndstopScenarioConfig `yaml:"max_endstop"`

	StartupMotorCalibration         bool `yaml:"startup_motor_calibration"`
	StartupEncoderIndexSearch       bool `yaml:"startup_encoder_index_search"`
	StartupEncoderOffsetCalibration bool `yaml:"startup_encoder_offset_calibration"`
	StartupClosedLoopControl        bool `yaml:"startup_closed_loop_control"`
	StartupSensorlessControl        bool `yaml:"startup_sensorless_control"`
	StartupHoming                   bool `yaml:"startup_homing"`

	TickRateHz float64 `yaml:"tick_rate_hz"`

	Steps []StepConfig `yaml:"steps"`
}

// Load reads and validates a scenario YAML file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}

	if s.EncoderCPR <= 0 {
		return nil, fmt.Errorf("encoder_cpr must be > 0")
	}
	if s.HomingSpeed <= 0 {
		s.HomingSpeed = 1.0
	}
	if s.TickRateHz <= 0 {
		s.TickRateHz = 1000
	}
	if len(s.Steps) == 0 {
		return nil, fmt.Errorf("scenario must have at least one step")
	}
	for i, step := range s.Steps {
		if step.RequestState == "" {
			return nil, fmt.Errorf("steps[%d].request_state is required", i)
		}
		if step.DurationMs <= 0 {
			return nil, fmt.Errorf("steps[%d].duration_ms must be > 0", i)
		}
	}

	return &s, nil
}

func (s *Scenario) tickPeriod() time.Duration {
	return time.Duration(1e9 / s.TickRateHz)
}
