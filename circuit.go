package qcircuit

import (
	"fmt"
	"strings"
)

// Circuit is an immutable straight-line sequence of gate operations.
type Circuit struct {
	numQubits int
	ops       []Operation
}

func (c *Circuit) NumQubits() int {
	return c.numQubits
}

func (c *Circuit) Len() int {
	return len(c.ops)
}

// Ops returns a copy of the operations in insertion order.
func (c *Circuit) Ops() []Operation {
	out := make([]Operation, len(c.ops))
	for i, op := range c.ops {
		out[i] = Operation{Gate: op.Gate, Qubits: append([]int(nil), op.Qubits...), Theta: op.Theta}
	}
	return out
}

/*
Depth is the number of layers when every operation is scheduled as early as
the qubits it touches allow.
*/
func (c *Circuit) Depth() int {
	level := make([]int, c.numQubits)
	depth := 0
	for _, op := range c.ops {
		d := 0
		for _, q := range op.Qubits {
			if level[q] > d {
				d = level[q]
			}
		}
		d++
		for _, q := range op.Qubits {
			level[q] = d
		}
		if d > depth {
			depth = d
		}
	}
	return depth
}

// Inverse returns the adjoint circuit, exact up to a global phase.
func (c *Circuit) Inverse() *Circuit {
	ops := make([]Operation, len(c.ops))
	for i, op := range c.ops {
		ops[len(c.ops)-1-i] = op.adjoint()
	}
	return &Circuit{numQubits: c.numQubits, ops: ops}
}

func (c *Circuit) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "circuit(%d qubits, %d ops)", c.numQubits, len(c.ops))
	for _, op := range c.ops {
		b.WriteString("\n  ")
		b.WriteString(op.String())
	}
	return b.String()
}

/*
Builder accumulates operations for a Circuit. Appends chain; the first
invalid append is remembered, later ones are ignored, and Build reports it.
*/
type Builder struct {
	numQubits int
	ops       []Operation
	err       error
}

func NewBuilder(numQubits int) *Builder {
	b := &Builder{numQubits: numQubits}
	if numQubits < 1 || numQubits > MaxQubits {
		b.err = &DimensionError{
			Op:     "builder",
			Reason: fmt.Sprintf("register of %d qubits outside [1, %d]", numQubits, MaxQubits),
		}
	}
	return b
}

// Append adds a gate. theta is ignored for gates without a parameter.
func (b *Builder) Append(gate GateKind, theta float64, qubits ...int) *Builder {
	if b.err != nil {
		return b
	}
	if !gate.Parameterized() {
		theta = 0
	}
	op := Operation{Gate: gate, Qubits: append([]int(nil), qubits...), Theta: theta}
	if err := op.validate(b.numQubits); err != nil {
		b.err = err
		return b
	}
	b.ops = append(b.ops, op)
	return b
}

func (b *Builder) I(q int) *Builder { return b.Append(Identity, 0, q) }
func (b *Builder) X(q int) *Builder { return b.Append(PauliX, 0, q) }
func (b *Builder) Y(q int) *Builder { return b.Append(PauliY, 0, q) }
func (b *Builder) Z(q int) *Builder { return b.Append(PauliZ, 0, q) }
func (b *Builder) H(q int) *Builder { return b.Append(Hadamard, 0, q) }
func (b *Builder) S(q int) *Builder { return b.Append(Phase, 0, q) }
func (b *Builder) CX(c, t int) *Builder { return b.Append(CNOT, 0, c, t) }
func (b *Builder) CZ(c, t int) *Builder { return b.Append(CZ, 0, c, t) }
func (b *Builder) Swap(q1, q2 int) *Builder { return b.Append(SWAP, 0, q1, q2) }
func (b *Builder) CCX(c1, c2, t int) *Builder { return b.Append(Toffoli, 0, c1, c2, t) }

func (b *Builder) RX(theta float64, q int) *Builder { return b.Append(RX, theta, q) }
func (b *Builder) RY(theta float64, q int) *Builder { return b.Append(RY, theta, q) }
func (b *Builder) RZ(theta float64, q int) *Builder { return b.Append(RZ, theta, q) }

// Extend appends every operation of c, which must fit in the builder's register.
func (b *Builder) Extend(c *Circuit) *Builder {
	if b.err != nil {
		return b
	}
	if c.numQubits > b.numQubits {
		b.err = &DimensionError{Op: "extend", Got: c.numQubits, NumQubits: b.numQubits}
		return b
	}
	for _, op := range c.ops {
		b.Append(op.Gate, op.Theta, op.Qubits...)
	}
	return b
}

func (b *Builder) Err() error {
	return b.err
}

// Build freezes the operations appended so far.
func (b *Builder) Build() (*Circuit, error) {
	if b.err != nil {
		return nil, b.err
	}
	return &Circuit{numQubits: b.numQubits, ops: append([]Operation(nil), b.ops...)}, nil
}
