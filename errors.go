package qcircuit

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidBit     = errors.New("input must be \"0\" or \"1\"")
	ErrOptimizerSpent = errors.New("optimizer already ran")
	ErrTrotterOrder   = errors.New("trotter order must be 1 or a positive even number")
	ErrTrotterSteps   = errors.New("trotter steps must be positive")
	ErrEmptyParams    = errors.New("parameter vector is empty")
	ErrInvalidConfig  = errors.New("invalid optimizer config")
	ErrEvolveTooLong  = errors.New("evolution time too long for exact propagation")
)

/*
DimensionError is returned whenever a qubit index falls outside the register,
a gate receives the wrong number of qubits, or a circuit does not fit the
simulator it is run on.
*/
type DimensionError struct {
	Op        string
	Qubit     int
	NumQubits int
	Arity     int
	Got       int
	Reason    string
}

func (e *DimensionError) Error() string {
	switch {
	case e.Reason != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Reason)
	case e.Arity > 0:
		return fmt.Sprintf("%s: expects %d qubits, got %d", e.Op, e.Arity, e.Got)
	case e.Got > 0:
		return fmt.Sprintf("%s: width %d exceeds register of %d qubits", e.Op, e.Got, e.NumQubits)
	default:
		return fmt.Sprintf("%s: qubit %d out of range [0, %d)", e.Op, e.Qubit, e.NumQubits)
	}
}

/*
ConvergenceFailure reports that the optimizer ran out of budget before its
tolerance was met. It is not fatal: the best point found is still returned in
the Result alongside it.
*/
type ConvergenceFailure struct {
	Iterations  int
	Evaluations int
	Best        float64
}

func (e *ConvergenceFailure) Error() string {
	return fmt.Sprintf(
		"did not converge after %d iterations (%d evaluations), best %.6g",
		e.Iterations, e.Evaluations, e.Best,
	)
}

// InvalidHamiltonian reports a duplicate or malformed Pauli term.
type InvalidHamiltonian struct {
	Term   string
	Reason string
}

func (e *InvalidHamiltonian) Error() string {
	if e.Term == "" {
		return "invalid hamiltonian: " + e.Reason
	}
	return fmt.Sprintf("invalid hamiltonian term %q: %s", e.Term, e.Reason)
}
