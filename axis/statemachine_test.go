package axis

import (
	"context"
	"testing"
	"time"

	"go.viam.com/test"
)

func TestMaybeLoadRequestedTaskChainDefault(t *testing.T) {
	r := newTestRig(Config{})
	r.axis.RequestState(StateMotorCalibration)
	r.axis.maybeLoadRequestedTaskChain()

	test.That(t, r.axis.TaskChain(), test.ShouldResemble, []State{StateMotorCalibration, StateIdle, StateUndefined})
	test.That(t, State(r.axis.requestedState.Load()), test.ShouldEqual, StateUndefined)
}

func TestMaybeLoadRequestedTaskChainNoopWhenUndefined(t *testing.T) {
	r := newTestRig(Config{})
	r.axis.chain.load([]State{StateIdle})
	r.axis.maybeLoadRequestedTaskChain()
	test.That(t, r.axis.TaskChain(), test.ShouldResemble, []State{StateIdle, StateUndefined})
}

func TestMaybeLoadRequestedTaskChainHoming(t *testing.T) {
	r := newTestRig(Config{})
	r.axis.RequestState(StateHoming)
	r.axis.maybeLoadRequestedTaskChain()

	test.That(t, r.axis.TaskChain(), test.ShouldResemble,
		[]State{StateHoming, StateClosedLoopControl, StateIdle, StateUndefined})
}

func TestMaybeLoadRequestedTaskChainFullCalibrationWithIndex(t *testing.T) {
	r := newTestRig(Config{})
	r.encoder.SetUseIndex(true)
	r.axis.RequestState(StateFullCalibrationSequence)
	r.axis.maybeLoadRequestedTaskChain()

	test.That(t, r.axis.TaskChain(), test.ShouldResemble, []State{
		StateMotorCalibration, StateEncoderIndexSearch, StateEncoderOffsetCalibration,
		StateIdle, StateUndefined,
	})
}

func TestMaybeLoadRequestedTaskChainFullCalibrationWithoutIndex(t *testing.T) {
	r := newTestRig(Config{})
	r.encoder.SetUseIndex(false)
	r.axis.RequestState(StateFullCalibrationSequence)
	r.axis.maybeLoadRequestedTaskChain()

	test.That(t, r.axis.TaskChain(), test.ShouldResemble,
		[]State{StateMotorCalibration, StateEncoderOffsetCalibration, StateIdle, StateUndefined})
}

func TestMaybeLoadRequestedTaskChainStartupSequenceFullOptIn(t *testing.T) {
	r := newTestRig(Config{
		StartupMotorCalibration:         true,
		StartupEncoderIndexSearch:       true,
		StartupEncoderOffsetCalibration: true,
		StartupClosedLoopControl:        true,
		StartupHoming:                   true,
	})
	r.encoder.SetUseIndex(true)
	r.axis.RequestState(StateStartupSequence)
	r.axis.maybeLoadRequestedTaskChain()

	test.That(t, r.axis.TaskChain(), test.ShouldResemble, []State{
		StateMotorCalibration, StateEncoderIndexSearch, StateEncoderOffsetCalibration,
		StateHoming, StateClosedLoopControl, StateIdle, StateUndefined,
	})
}

func TestMaybeLoadRequestedTaskChainStartupSequenceSensorlessOnly(t *testing.T) {
	r := newTestRig(Config{StartupSensorlessControl: true})
	r.axis.RequestState(StateStartupSequence)
	r.axis.maybeLoadRequestedTaskChain()

	test.That(t, r.axis.TaskChain(), test.ShouldResemble,
		[]State{StateSensorlessControl, StateIdle, StateUndefined})
}

func TestMaybeLoadRequestedTaskChainStartupSequenceNothingEnabled(t *testing.T) {
	r := newTestRig(Config{})
	r.axis.RequestState(StateStartupSequence)
	r.axis.maybeLoadRequestedTaskChain()

	test.That(t, r.axis.TaskChain(), test.ShouldResemble, []State{StateIdle, StateUndefined})
}

func TestValidatePrerequisitesForcesUndefinedWithoutMotorCalibration(t *testing.T) {
	r := newTestRig(Config{})
	r.motor.SetCalibrated(false)
	r.axis.chain.load([]State{StateClosedLoopControl})

	r.axis.validatePrerequisites()

	test.That(t, r.axis.CurrentState(), test.ShouldEqual, StateUndefined)
}

func TestValidatePrerequisitesForcesUndefinedWithoutEncoderReady(t *testing.T) {
	r := newTestRig(Config{})
	r.encoder.SetReady(false)
	r.axis.chain.load([]State{StateSensorlessControl})

	r.axis.validatePrerequisites()

	test.That(t, r.axis.CurrentState(), test.ShouldEqual, StateUndefined)
}

func TestValidatePrerequisitesPassesWhenSatisfied(t *testing.T) {
	r := newTestRig(Config{})
	r.axis.chain.load([]State{StateClosedLoopControl})

	r.axis.validatePrerequisites()

	test.That(t, r.axis.CurrentState(), test.ShouldEqual, StateClosedLoopControl)
}

func TestDispatchHomingArmsHomingSeekState(t *testing.T) {
	r := newTestRig(Config{})
	ok := r.axis.dispatch(context.Background(), StateHoming)

	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, r.axis.HomingState(), test.ShouldEqual, HomingSeeking)
}

func TestDispatchHomingFailureLeavesHomingInactive(t *testing.T) {
	r := newTestRig(Config{})
	r.controller.HomeAxisFunc = func(ctx context.Context) bool { return false }

	ok := r.axis.dispatch(context.Background(), StateHoming)

	test.That(t, ok, test.ShouldBeFalse)
	test.That(t, r.axis.HomingState(), test.ShouldEqual, HomingInactive)
}

func TestDispatchUnknownStateSetsInvalidStateError(t *testing.T) {
	r := newTestRig(Config{})
	ok := r.axis.dispatch(context.Background(), State(999))

	test.That(t, ok, test.ShouldBeFalse)
	test.That(t, r.axis.LastError()&ErrorInvalidState, test.ShouldEqual, ErrorInvalidState)
}

func TestThreadValidTracksWorkerLifetime(t *testing.T) {
	r := newTestRig(Config{})
	r.axis.chain.load([]State{StateIdle})
	r.board.SetVBusVoltage(24)

	ctx, cancel := context.WithCancel(context.Background())
	test.That(t, r.axis.ThreadValid(), test.ShouldBeFalse)

	r.axis.Start(ctx)
	test.That(t, func() bool {
		for i := 0; i < 100; i++ {
			if r.axis.ThreadValid() {
				return true
			}
			time.Sleep(time.Millisecond)
		}
		return false
	}(), test.ShouldBeTrue)

	cancel()
	test.That(t, func() bool {
		for i := 0; i < 100; i++ {
			if !r.axis.ThreadValid() {
				return true
			}
			time.Sleep(time.Millisecond)
		}
		return false
	}(), test.ShouldBeTrue)
}
