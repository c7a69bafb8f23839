package insights

// State tracks one summary request through its lifecycle. A boolean loading
// flag cannot distinguish "not asked yet" from "failed"; this can.
type State int

const (
	StateIdle State = iota
	StateInFlight
	StateSettled
)

// Result is the three-state outcome of a summary request.
type Result struct {
	state State
	value string
	err   error
}

// Idle is the zero request: nothing asked yet.
func Idle() Result { return Result{state: StateIdle} }

// InFlight marks a request that has been sent but not answered.
func InFlight() Result { return Result{state: StateInFlight} }

// Settled records the final value or error of a request.
func Settled(value string, err error) Result {
	return Result{state: StateSettled, value: value, err: err}
}

func (r Result) State() State { return r.state }

// Value returns the summary text and whether it is usable.
func (r Result) Value() (string, bool) {
	return r.value, r.state == StateSettled && r.err == nil
}

func (r Result) Err() error {
	if r.state != StateSettled {
		return nil
	}
	return r.err
}
