package qcircuit

import "strings"

// MaxQubits bounds the register size; 2^20 amplitudes is 16 MiB of state.
const MaxQubits = 20

func checkQubit(op string, q, numQubits int) error {
	if q < 0 || q >= numQubits {
		return &DimensionError{Op: op, Qubit: q, NumQubits: numQubits}
	}
	return nil
}

// parseBit turns a classical "0" or "1" input into its integer value.
func parseBit(s string) (int, error) {
	switch strings.TrimSpace(s) {
	case "0":
		return 0, nil
	case "1":
		return 1, nil
	default:
		return 0, ErrInvalidBit
	}
}

/*
Bitstring renders basis index i over n qubits with qubit 0 rightmost, the
same ordering the measurement counts use.
*/
func Bitstring(i, n int) string {
	var b strings.Builder
	b.Grow(n)
	for q := n - 1; q >= 0; q-- {
		if i&(1<<q) != 0 {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}
