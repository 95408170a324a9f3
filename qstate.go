package qcircuit

import (
	"fmt"
	"math"
	"math/cmplx"
)

/*
QuantumState is the complex amplitude vector of an n-qubit register. Index i
holds the amplitude of the basis state whose bit q is the value of qubit q.
It carries no locking: a state belongs to exactly one simulator run.
*/
type QuantumState struct {
	Vector    []complex128
	numQubits int
}

func newQuantumState(numQubits int) *QuantumState {
	vec := make([]complex128, 1<<numQubits)
	vec[0] = 1
	return &QuantumState{Vector: vec, numQubits: numQubits}
}

func (qs *QuantumState) clone() *QuantumState {
	vec := make([]complex128, len(qs.Vector))
	copy(vec, qs.Vector)
	return &QuantumState{Vector: vec, numQubits: qs.numQubits}
}

/*
apply multiplies the state by matrix m acting on the listed qubits and the
identity everywhere else. qubits[0] is the most significant bit of the
matrix's local index.
*/
func (qs *QuantumState) apply(m [][]complex128, qubits []int) {
	k := len(qubits)
	dim := 1 << k

	mask := 0
	for _, q := range qubits {
		mask |= 1 << q
	}

	offsets := make([]int, dim)
	for local := 0; local < dim; local++ {
		off := 0
		for j, q := range qubits {
			if local&(1<<(k-1-j)) != 0 {
				off |= 1 << q
			}
		}
		offsets[local] = off
	}

	in := make([]complex128, dim)
	for base := range qs.Vector {
		if base&mask != 0 {
			continue
		}
		for l, off := range offsets {
			in[l] = qs.Vector[base|off]
		}
		for r, row := range m {
			var acc complex128
			for c, v := range row {
				acc += v * in[c]
			}
			qs.Vector[base|offsets[r]] = acc
		}
	}
}

// probabilities returns |amplitude|² for every basis state.
func (qs *QuantumState) probabilities() []float64 {
	probs := make([]float64, len(qs.Vector))
	for i, amplitude := range qs.Vector {
		prob := cmplx.Abs(amplitude)
		probs[i] = prob * prob // Square of the modulus
	}
	return probs
}

// probabilityOne is the chance that measuring qubit q yields 1.
func (qs *QuantumState) probabilityOne(q int) float64 {
	bit := 1 << q
	var p float64
	for i, amplitude := range qs.Vector {
		if i&bit != 0 {
			p += real(amplitude)*real(amplitude) + imag(amplitude)*imag(amplitude)
		}
	}
	return p
}

// collapse projects qubit q onto outcome and renormalizes by 1/√p.
func (qs *QuantumState) collapse(q, outcome int, p float64) {
	bit := 1 << q
	scale := complex(1/math.Sqrt(p), 0)
	for i := range qs.Vector {
		if (i&bit != 0) != (outcome == 1) {
			qs.Vector[i] = 0
			continue
		}
		qs.Vector[i] *= scale
	}
}

func (qs *QuantumState) norm() float64 {
	var sum float64
	for _, a := range qs.Vector {
		sum += real(a)*real(a) + imag(a)*imag(a)
	}
	return math.Sqrt(sum)
}

// inner is <a|b>.
func inner(a, b []complex128) complex128 {
	var acc complex128
	for i := range a {
		acc += cmplx.Conj(a[i]) * b[i]
	}
	return acc
}

/*
applyPauli returns P|ψ> for a Pauli string without touching the state. X and
Y flip their bit; Z and Y contribute (-1)^bit; each Y contributes a factor i.
*/
func (qs *QuantumState) applyPauli(ps PauliString) []complex128 {
	flip, phase, ys := ps.masks()

	var yPhase complex128 = 1
	for range ys {
		yPhase *= 1i
	}

	out := make([]complex128, len(qs.Vector))
	for i, amplitude := range qs.Vector {
		if amplitude == 0 {
			continue
		}
		f := yPhase
		if parity(i&phase) == 1 {
			f = -f
		}
		out[i^flip] += f * amplitude
	}
	return out
}

// applyHamiltonian returns H|ψ>.
func (qs *QuantumState) applyHamiltonian(h *Hamiltonian) []complex128 {
	out := make([]complex128, len(qs.Vector))
	for _, term := range h.terms {
		c := complex(term.Coefficient, 0)
		for i, v := range qs.applyPauli(term.Pauli) {
			out[i] += c * v
		}
	}
	return out
}

// expectation is Σ c·<ψ|P|ψ>, which is real for a Hermitian H.
func (qs *QuantumState) expectation(h *Hamiltonian) float64 {
	var total float64
	for _, term := range h.terms {
		total += term.Coefficient * real(inner(qs.Vector, qs.applyPauli(term.Pauli)))
	}
	return total
}

/*
evolve applies the exact propagator e^{-iHt} with a truncated Taylor series.
The time is cut into steps sub-steps, chosen by evolveSteps.
*/
func (qs *QuantumState) evolve(h *Hamiltonian, t float64, steps int) {
	if t == 0 {
		return
	}
	dt := t / float64(steps)

	const maxTerms = 60
	for s := 0; s < steps; s++ {
		sum := make([]complex128, len(qs.Vector))
		copy(sum, qs.Vector)
		term := &QuantumState{Vector: qs.Vector, numQubits: qs.numQubits}

		for k := 1; k <= maxTerms; k++ {
			next := term.applyHamiltonian(h)
			f := complex(0, -dt/float64(k))
			for i := range next {
				next[i] *= f
				sum[i] += next[i]
			}
			term = &QuantumState{Vector: next, numQubits: qs.numQubits}
			if term.norm() < 1e-17 {
				break
			}
		}
		qs.Vector = sum
	}
}

// maxEvolveSteps caps the sub-steps of an exact evolution.
const maxEvolveSteps = 1e7

/*
evolveSteps picks sub-steps with ‖H‖₁·dt ≤ 1/2 so that the Taylor series
settles well before its term cap. The count is computed in floating point
and capped, since a huge t would overflow an int.
*/
func evolveSteps(h *Hamiltonian, t float64) (int, error) {
	steps := math.Ceil(2 * h.OneNorm() * math.Abs(t))
	if steps > maxEvolveSteps {
		return 0, fmt.Errorf("%w: t=%g needs %.3g sub-steps, limit %.0g",
			ErrEvolveTooLong, t, steps, float64(maxEvolveSteps))
	}
	if steps < 1 {
		return 1, nil
	}
	return int(steps), nil
}

func parity(x int) int {
	p := 0
	for x != 0 {
		p ^= 1
		x &= x - 1
	}
	return p
}
