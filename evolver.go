package qcircuit

import (
	"fmt"
	"math"
)

/*
TrotterStep returns a circuit approximating e^{-iH·angle}. Each Pauli term is
realized exactly as its own rotation e^{-i·c·dt·P} (basis change, CNOT parity
ladder, RZ, undo); the approximation comes only from splitting the
exponential of a sum into a product of exponentials of its terms.

  - order 1 is Lie-Trotter: every term for the full angle, in term order.
  - order 2 is the symmetric Strang splitting: half-steps forward through the
    terms, then half-steps backward.
  - order 2k for k ≥ 2 is the Suzuki fractal built from order 2k-2.

The error of one step grows like angle^(order+1) times nested commutators of
the terms, so it grows with angle and shrinks with order, while the gate
count grows roughly fivefold per even order above 2. This is the trade-off
the caller picks; splitting a long evolution into several steps with
Trotterize is usually cheaper than raising the order. Terms that commute
with each other, or a Hamiltonian with a single term, are reproduced exactly.
Identity terms only add a global phase and emit no gates. Odd orders above 1
are rejected with ErrTrotterOrder.
*/
func TrotterStep(h *Hamiltonian, angle float64, order int) (*Circuit, error) {
	return Trotterize(h, angle, order, 1)
}

// Trotterize repeats TrotterStep(h, t/steps, order) steps times.
func Trotterize(h *Hamiltonian, t float64, order, steps int) (*Circuit, error) {
	if order < 1 || (order > 1 && order%2 != 0) {
		return nil, ErrTrotterOrder
	}
	if steps < 1 {
		return nil, fmt.Errorf("trotterize: %d steps: %w", steps, ErrTrotterSteps)
	}

	b := NewBuilder(h.numQubits)
	dt := t / float64(steps)
	for s := 0; s < steps; s++ {
		suzuki(b, h.terms, order, dt)
	}
	return b.Build()
}

func suzuki(b *Builder, terms []PauliTerm, order int, t float64) {
	switch order {
	case 1:
		for _, term := range terms {
			pauliRotation(b, term, t)
		}
	case 2:
		for _, term := range terms {
			pauliRotation(b, term, t/2)
		}
		for i := len(terms) - 1; i >= 0; i-- {
			pauliRotation(b, terms[i], t/2)
		}
	default:
		p := 1 / (4 - math.Pow(4, 1/float64(order-1)))
		suzuki(b, terms, order-2, p*t)
		suzuki(b, terms, order-2, p*t)
		suzuki(b, terms, order-2, (1-4*p)*t)
		suzuki(b, terms, order-2, p*t)
		suzuki(b, terms, order-2, p*t)
	}
}

/*
pauliRotation appends e^{-i·c·t·P}: rotate every factor to Z, fold the
parity onto the last qubit of the support with a CNOT ladder, apply
RZ(2ct) there and undo both.
*/
func pauliRotation(b *Builder, term PauliTerm, t float64) {
	support := term.Pauli.Support()
	if len(support) == 0 {
		return
	}

	for _, q := range support {
		switch term.Pauli.On(q) {
		case X:
			b.H(q)
		case Y:
			b.RX(math.Pi/2, q)
		}
	}
	for i := 0; i+1 < len(support); i++ {
		b.CX(support[i], support[i+1])
	}

	b.RZ(2*term.Coefficient*t, support[len(support)-1])

	for i := len(support) - 2; i >= 0; i-- {
		b.CX(support[i], support[i+1])
	}
	for _, q := range support {
		switch term.Pauli.On(q) {
		case X:
			b.H(q)
		case Y:
			b.RX(-math.Pi/2, q)
		}
	}
}

/*
TrotterError measures how far Trotterize(h, t, order, steps) lands from the
exact evolution when both start from the state prepared by prep (|0...0>
when prep is nil). The result is the phase-blind distance √(2 - 2|<exact|trotter>|).
*/
func TrotterError(h *Hamiltonian, t float64, order, steps int, prep *Circuit) (float64, error) {
	circuit, err := Trotterize(h, t, order, steps)
	if err != nil {
		return 0, err
	}

	approx, err := NewSimulator(h.numQubits, WithSeed(0))
	if err != nil {
		return 0, err
	}
	exact, err := NewSimulator(h.numQubits, WithSeed(0))
	if err != nil {
		return 0, err
	}

	if prep != nil {
		if err := approx.Run(prep); err != nil {
			return 0, err
		}
		if err := exact.Run(prep); err != nil {
			return 0, err
		}
	}

	if err := approx.Run(circuit); err != nil {
		return 0, err
	}
	if err := exact.Evolve(h, t); err != nil {
		return 0, err
	}

	return exact.Distance(approx)
}
