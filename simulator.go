package qcircuit

import (
	"fmt"
	"math"
	"math/cmplx"
	"math/rand/v2"

	"github.com/theapemachine/errnie"
)

/*
Simulator owns one state vector and the random source used to measure it.
Every run gets its own Simulator, usually through a Factory, so that no state
leaks between evaluations.
*/
type Simulator struct {
	state *QuantumState
	rng   *rand.Rand
}

// SimulatorOption configures a Simulator.
type SimulatorOption func(*Simulator)

// WithSeed makes measurement outcomes reproducible.
func WithSeed(seed uint64) SimulatorOption {
	return func(s *Simulator) {
		s.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// WithRand supplies the random source directly.
func WithRand(rng *rand.Rand) SimulatorOption {
	return func(s *Simulator) {
		s.rng = rng
	}
}

// NewSimulator prepares numQubits qubits in |0...0>.
func NewSimulator(numQubits int, opts ...SimulatorOption) (*Simulator, error) {
	if numQubits < 1 || numQubits > MaxQubits {
		return nil, &DimensionError{
			Op:     "simulator",
			Reason: fmt.Sprintf("register of %d qubits outside [1, %d]", numQubits, MaxQubits),
		}
	}

	s := &Simulator{state: newQuantumState(numQubits)}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	return s, nil
}

// Factory hands out fresh simulators.
type Factory func(numQubits int) (*Simulator, error)

// NewFactory returns a Factory applying opts to every simulator it creates.
func NewFactory(opts ...SimulatorOption) Factory {
	return func(numQubits int) (*Simulator, error) {
		return NewSimulator(numQubits, opts...)
	}
}

func (s *Simulator) NumQubits() int {
	return s.state.numQubits
}

// Reset returns the register to |0...0>.
func (s *Simulator) Reset() {
	s.state = newQuantumState(s.state.numQubits)
}

// Apply applies one gate to the named qubits.
func (s *Simulator) Apply(gate GateKind, theta float64, qubits ...int) error {
	op := Operation{Gate: gate, Qubits: qubits, Theta: theta}
	if err := op.validate(s.state.numQubits); err != nil {
		return err
	}
	s.state.apply(gate.Matrix(theta), qubits)
	return nil
}

// Run applies every operation of c in insertion order.
func (s *Simulator) Run(c *Circuit) error {
	if c.numQubits > s.state.numQubits {
		return &DimensionError{Op: "run", Got: c.numQubits, NumQubits: s.state.numQubits}
	}
	for _, op := range c.ops {
		s.state.apply(op.Gate.Matrix(op.Theta), op.Qubits)
	}
	return nil
}

/*
Measure samples qubit q in the computational basis, collapses the state onto
the outcome and renormalizes. It cannot be undone.
*/
func (s *Simulator) Measure(q int) (int, error) {
	if err := checkQubit("measure", q, s.state.numQubits); err != nil {
		return 0, err
	}

	p1 := s.state.probabilityOne(q)
	outcome := 0
	if s.rng.Float64() < p1 {
		outcome = 1
	}

	p := p1
	if outcome == 0 {
		p = 1 - p1
	}
	s.state.collapse(q, outcome, p)

	return outcome, nil
}

// MeasureAll measures every qubit and returns the bitstring, qubit 0 rightmost.
func (s *Simulator) MeasureAll() (string, error) {
	n := s.state.numQubits
	index := 0
	for q := 0; q < n; q++ {
		bit, err := s.Measure(q)
		if err != nil {
			return "", err
		}
		index |= bit << q
	}
	return Bitstring(index, n), nil
}

// Expectation computes <ψ|H|ψ> algebraically without disturbing the state.
func (s *Simulator) Expectation(h *Hamiltonian) (float64, error) {
	if h.numQubits > s.state.numQubits {
		return 0, &DimensionError{Op: "expectation", Got: h.numQubits, NumQubits: s.state.numQubits}
	}
	return s.state.expectation(h), nil
}

/*
Evolve applies e^{-iHt} exactly (to series truncation), independent of any
Trotter decomposition. It serves as the reference the Trotter circuits are
measured against. Times needing more than maxEvolveSteps sub-steps return
ErrEvolveTooLong and leave the state untouched.
*/
func (s *Simulator) Evolve(h *Hamiltonian, t float64) error {
	if h.numQubits > s.state.numQubits {
		return &DimensionError{Op: "evolve", Got: h.numQubits, NumQubits: s.state.numQubits}
	}
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return fmt.Errorf("evolve: time %v is not finite", t)
	}
	steps, err := evolveSteps(h, t)
	if err != nil {
		return err
	}
	s.state.evolve(h, t, steps)
	return nil
}

func (s *Simulator) Norm() float64 {
	return s.state.norm()
}

// Amplitudes returns a copy of the state vector.
func (s *Simulator) Amplitudes() []complex128 {
	return s.state.clone().Vector
}

func (s *Simulator) Probabilities() []float64 {
	return s.state.probabilities()
}

// Phases returns the argument of each amplitude in (-π, π].
func (s *Simulator) Phases() []float64 {
	phases := make([]float64, len(s.state.Vector))
	for i, a := range s.state.Vector {
		phases[i] = cmplx.Phase(a)
	}
	return phases
}

// Fidelity is |<ψ|φ>|², insensitive to global phase.
func (s *Simulator) Fidelity(other *Simulator) (float64, error) {
	if other.state.numQubits != s.state.numQubits {
		return 0, &DimensionError{Op: "fidelity", Got: other.state.numQubits, NumQubits: s.state.numQubits}
	}
	overlap := cmplx.Abs(inner(s.state.Vector, other.state.Vector))
	return overlap * overlap, nil
}

/*
Distance is the phase-blind error between two states: min over θ of
‖ψ - e^{iθ}φ‖, taking θ from the phase of <φ|ψ>.
*/
func (s *Simulator) Distance(other *Simulator) (float64, error) {
	if other.state.numQubits != s.state.numQubits {
		return 0, &DimensionError{Op: "distance", Got: other.state.numQubits, NumQubits: s.state.numQubits}
	}

	var align complex128 = 1
	if overlap := inner(other.state.Vector, s.state.Vector); cmplx.Abs(overlap) > 0 {
		align = overlap / complex(cmplx.Abs(overlap), 0)
	}

	var sum float64
	for i, a := range s.state.Vector {
		d := a - align*other.state.Vector[i]
		sum += real(d)*real(d) + imag(d)*imag(d)
	}
	return math.Sqrt(sum), nil
}

// Execute runs c on a fresh simulator from f and returns it.
func (f Factory) Execute(c *Circuit) (*Simulator, error) {
	sim, err := f(c.numQubits)
	if err != nil {
		return nil, err
	}
	if err := sim.Run(c); err != nil {
		return nil, err
	}
	errnie.Info("Execute - ran %d ops on %d qubits, norm %.12f", c.Len(), c.numQubits, sim.Norm())
	return sim, nil
}
