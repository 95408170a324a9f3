package qcircuit

import (
	"fmt"
	"math"
	"math/cmplx"
)

// GateKind enumerates every gate the simulator understands.
type GateKind int

const (
	Identity GateKind = iota
	PauliX
	PauliY
	PauliZ
	Hadamard
	Phase
	CNOT
	CZ
	SWAP
	Toffoli
	RX
	RY
	RZ

	numGateKinds
)

// GateKinds lists all gate kinds in declaration order.
func GateKinds() []GateKind {
	kinds := make([]GateKind, 0, numGateKinds)
	for k := GateKind(0); k < numGateKinds; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

func (k GateKind) String() string {
	switch k {
	case Identity:
		return "id"
	case PauliX:
		return "x"
	case PauliY:
		return "y"
	case PauliZ:
		return "z"
	case Hadamard:
		return "h"
	case Phase:
		return "s"
	case CNOT:
		return "cx"
	case CZ:
		return "cz"
	case SWAP:
		return "swap"
	case Toffoli:
		return "ccx"
	case RX:
		return "rx"
	case RY:
		return "ry"
	case RZ:
		return "rz"
	default:
		return fmt.Sprintf("gate(%d)", int(k))
	}
}

// Arity is the number of qubits the gate acts on, controls included.
func (k GateKind) Arity() int {
	switch k {
	case Identity, PauliX, PauliY, PauliZ, Hadamard, Phase, RX, RY, RZ:
		return 1
	case CNOT, CZ, SWAP:
		return 2
	case Toffoli:
		return 3
	default:
		panic(fmt.Sprintf("qcircuit: unknown gate kind %d", int(k)))
	}
}

// Parameterized reports whether the gate takes a rotation angle.
func (k GateKind) Parameterized() bool {
	switch k {
	case RX, RY, RZ:
		return true
	default:
		return false
	}
}

/*
Matrix returns the unitary of the gate as a row-major 2^arity square matrix.
The first qubit of an operation maps to the most significant bit of the row
index, so for CNOT row 0b10 means control=1, target=0.
*/
func (k GateKind) Matrix(theta float64) [][]complex128 {
	s2 := complex(1/math.Sqrt2, 0)
	c := complex(math.Cos(theta/2), 0)
	s := complex(math.Sin(theta/2), 0)

	switch k {
	case Identity:
		return [][]complex128{{1, 0}, {0, 1}}
	case PauliX:
		return [][]complex128{{0, 1}, {1, 0}}
	case PauliY:
		return [][]complex128{{0, -1i}, {1i, 0}}
	case PauliZ:
		return [][]complex128{{1, 0}, {0, -1}}
	case Hadamard:
		// H = 1/√2 * [1  1]
		//           [1 -1]
		return [][]complex128{{s2, s2}, {s2, -s2}}
	case Phase:
		return [][]complex128{{1, 0}, {0, 1i}}
	case CNOT:
		return permutation(4, 0, 1, 3, 2)
	case CZ:
		m := permutation(4, 0, 1, 2, 3)
		m[3][3] = -1
		return m
	case SWAP:
		return permutation(4, 0, 2, 1, 3)
	case Toffoli:
		return permutation(8, 0, 1, 2, 3, 4, 5, 7, 6)
	case RX:
		return [][]complex128{{c, -1i * s}, {-1i * s, c}}
	case RY:
		return [][]complex128{{c, -s}, {s, c}}
	case RZ:
		return [][]complex128{
			{cmplx.Exp(complex(0, -theta/2)), 0},
			{0, cmplx.Exp(complex(0, theta/2))},
		}
	default:
		panic(fmt.Sprintf("qcircuit: unknown gate kind %d", int(k)))
	}
}

// permutation builds the matrix sending basis state i to basis state to[i].
func permutation(n int, to ...int) [][]complex128 {
	m := make([][]complex128, n)
	for i := range m {
		m[i] = make([]complex128, n)
	}
	for i, j := range to {
		m[j][i] = 1
	}
	return m
}

// Operation is one gate application inside a circuit.
type Operation struct {
	Gate   GateKind
	Qubits []int
	Theta  float64
}

func (op Operation) String() string {
	if op.Gate.Parameterized() {
		return fmt.Sprintf("%s(%.6g) %v", op.Gate, op.Theta, op.Qubits)
	}
	return fmt.Sprintf("%s %v", op.Gate, op.Qubits)
}

// adjoint returns the inverse operation.
func (op Operation) adjoint() Operation {
	inv := Operation{Gate: op.Gate, Qubits: append([]int(nil), op.Qubits...), Theta: op.Theta}
	switch op.Gate {
	case RX, RY, RZ:
		inv.Theta = -op.Theta
	case Phase:
		// S† equals RZ(-π/2) up to a global phase.
		inv.Gate = RZ
		inv.Theta = -math.Pi / 2
	}
	return inv
}

/*
validate checks an operation against a register of numQubits qubits: the
arity must match and every index must be distinct and in range.
*/
func (op Operation) validate(numQubits int) error {
	if op.Gate < 0 || op.Gate >= numGateKinds {
		return &DimensionError{Op: op.Gate.String(), Reason: "unknown gate kind"}
	}
	if len(op.Qubits) != op.Gate.Arity() {
		return &DimensionError{Op: op.Gate.String(), Arity: op.Gate.Arity(), Got: len(op.Qubits)}
	}
	if op.Gate.Parameterized() && (math.IsNaN(op.Theta) || math.IsInf(op.Theta, 0)) {
		return &DimensionError{Op: op.Gate.String(), Reason: "rotation angle is not finite"}
	}
	for i, q := range op.Qubits {
		if err := checkQubit(op.Gate.String(), q, numQubits); err != nil {
			return err
		}
		for _, other := range op.Qubits[:i] {
			if other == q {
				return &DimensionError{
					Op: op.Gate.String(), Qubit: q, NumQubits: numQubits,
					Reason: fmt.Sprintf("qubit %d used twice", q),
				}
			}
		}
	}
	return nil
}
