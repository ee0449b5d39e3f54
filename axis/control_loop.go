package axis

import "context"

// TickBody is the per-tick logic supplied by whichever AxisStateMachine
// handler is currently active. It returns false to end the control
// loop (on fault or on completing its work).
type TickBody func(ctx context.Context) bool

// RunControlLoop blocks the worker and, synchronized to the
// current-measurement signal, repeatedly waits for the signal, runs
// estimator/safety updates, and invokes body — exactly the sequence in
// §4.1. The only suspension point is the signal wait; everything else
// runs between successive measurement signals.
func (a *Axis) RunControlLoop(ctx context.Context, body TickBody) {
	for {
		if !a.signal.Wait(ctx, a.currentMeasTimeout) {
			if ctx.Err() != nil {
				return
			}
			if a.CurrentState() == StateIdle {
				// Missed signals are expected and ignored in Idle — that
				// suppression is the definition of Idle (§4.1, §5). Keep
				// waiting rather than treating it as a fault.
				continue
			}
			a.err.set(ErrorControlLoopMissed)
			return
		}
		if ctx.Err() != nil {
			return
		}

		a.loopCounter.Add(1)

		if !a.doUpdates(ctx) {
			return
		}
		if !a.doChecks(ctx) {
			return
		}

		if !body(ctx) {
			return
		}

		if State(a.requestedState.Load()) != StateUndefined {
			// A new request is pending; handlers unwind within one tick
			// of a requested_state change (§5 "Cancellation").
			return
		}
	}
}
