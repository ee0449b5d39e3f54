// Command axissim runs the axis state machine against axistest's fakes
// against a YAML-scripted scenario, with no Viam robot config or real
// hardware involved, for exercising startup/homing/fault sequencing
// during development.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.viam.com/rdk/logging"

	"github.com/viam-modules/odrive-axis/axis"
	"github.com/viam-modules/odrive-axis/axis/axistest"
)

func main() {
	path := flag.String("scenario", "", "path to a scenario YAML file")
	flag.Parse()
	if *path == "" {
		fmt.Fprintln(os.Stderr, "usage: axissim -scenario <path>")
		os.Exit(1)
	}

	if err := run(*path); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(path string) error {
	scenario, err := Load(path)
	if err != nil {
		return err
	}

	logger := logging.NewLogger("axissim")

	encoder := axistest.NewEncoder(scenario.EncoderCPR)
	encoder.SetUseIndex(scenario.EncoderUseIndex)
	controller := axistest.NewController(scenario.HomingSpeed)
	motor := axistest.NewMotor()
	minEndstop := axistest.NewEndstop(axis.EndstopConfig{
		Enabled:        scenario.MinEndstop.Enabled,
		MinMsHoming:    scenario.MinEndstop.MinMsHoming,
		HomePercentage: scenario.MinEndstop.HomePercentage,
	})
	maxEndstop := axistest.NewEndstop(axis.EndstopConfig{
		Enabled:        scenario.MaxEndstop.Enabled,
		MinMsHoming:    scenario.MaxEndstop.MinMsHoming,
		HomePercentage: scenario.MaxEndstop.HomePercentage,
	})
	board := axistest.NewBoard()
	board.SetVBusVoltage(24)

	a := axis.New(
		logger,
		axis.HardwareConfig{},
		axis.Config{
			StartupMotorCalibration:         scenario.StartupMotorCalibration,
			StartupEncoderIndexSearch:       scenario.StartupEncoderIndexSearch,
			StartupEncoderOffsetCalibration: scenario.StartupEncoderOffsetCalibration,
			StartupClosedLoopControl:        scenario.StartupClosedLoopControl,
			StartupSensorlessControl:        scenario.StartupSensorlessControl,
			StartupHoming:                   scenario.StartupHoming,
		},
		encoder, &axistest.Sensorless{}, controller, motor, &axistest.Trajectory{},
		minEndstop, maxEndstop,
		axistest.NewGPIO(),
		board,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.Setup(ctx); err != nil {
		return fmt.Errorf("axis setup: %w", err)
	}
	a.Start(ctx)

	pumpDone := make(chan struct{})
	go func() {
		defer close(pumpDone)
		ticker := time.NewTicker(scenario.tickPeriod())
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				a.SignalCurrentMeas()
			}
		}
	}()

	for i, step := range scenario.Steps {
		s, ok := axis.ParseState(step.RequestState)
		if !ok {
			return fmt.Errorf("steps[%d]: unrecognized state %q", i, step.RequestState)
		}
		a.RequestState(s)
		time.Sleep(time.Duration(step.DurationMs) * time.Millisecond)
		logState(i, a)
	}

	cancel()
	<-pumpDone
	return nil
}

func logState(step int, a *axis.Axis) {
	fmt.Printf(
		"step %d: current_state=%s homing_state=%s error=%s loop_counter=%d\n",
		step, a.CurrentState(), a.HomingState(), a.LastError(), a.LoopCounter(),
	)
}
