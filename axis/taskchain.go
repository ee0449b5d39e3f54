package axis

// taskChainCapacity is the fixed capacity of the task chain. The spec
// requires capacity >= 10; the longest expansion (StartupSequence with
// every optional stage enabled) is 6 entries plus the Undefined
// sentinel, so 10 leaves headroom without the unbounded-growth risk of
// a slice.
const taskChainCapacity = 10

// taskChain is a fixed-capacity sequence of pending states, terminated
// by exactly one StateUndefined sentinel. It is modeled as a small
// deque with a head index so advancement (popping the front) never
// needs an overlapping-region move.
type taskChain struct {
	buf  [taskChainCapacity]State
	head int
	n    int // number of valid entries including the trailing Undefined sentinel
}

// load replaces the chain contents from position 0. states must not
// itself contain StateUndefined; load appends the sentinel.
func (c *taskChain) load(states []State) {
	c.head = 0
	c.n = 0
	for _, s := range states {
		if c.n >= taskChainCapacity-1 {
			break // TODO: bounds checking parity with the original; chains never get this long in practice
		}
		c.buf[c.n] = s
		c.n++
	}
	c.buf[c.n] = StateUndefined
	c.n++
}

// current returns task_chain[0], the invariant-1 current_state.
func (c *taskChain) current() State {
	return c.buf[c.head]
}

// setCurrent overwrites task_chain[0] in place, used when prerequisite
// validation or a failed handler forces the current state without
// advancing the chain.
func (c *taskChain) setCurrent(s State) {
	c.buf[c.head] = s
}

// advance shifts the chain left by one: the handler for task_chain[0]
// returned success, so it is consumed and task_chain[1] becomes the
// new current_state.
func (c *taskChain) advance() {
	if c.n <= 1 {
		return
	}
	c.head = (c.head + 1) % taskChainCapacity
	c.n--
}

// snapshot returns the chain contents for telemetry/tests, in order,
// including the trailing sentinel.
func (c *taskChain) snapshot() []State {
	out := make([]State, c.n)
	for i := 0; i < c.n; i++ {
		out[i] = c.buf[(c.head+i)%taskChainCapacity]
	}
	return out
}
