package qcircuit

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/theapemachine/errnie"
)

/*
QAOA is the Quantum Approximate Optimization Algorithm for a cost
Hamiltonian: start in the uniform superposition, then alternate evolution
under the cost (angle γ) and the mixer (angle β) for a number of layers. The
angles are chosen by a classical optimizer minimizing <cost>.
*/
type QAOA struct {
	cost    *Hamiltonian
	mixer   *Hamiltonian
	layers  int
	order   int
	steps   int
	factory Factory
}

// QAOAOption configures a QAOA instance.
type QAOAOption func(*QAOA)

// WithMixer replaces the default transverse-field mixer Σ X_i.
func WithMixer(mixer *Hamiltonian) QAOAOption {
	return func(q *QAOA) {
		q.mixer = mixer
	}
}

func WithLayers(p int) QAOAOption {
	return func(q *QAOA) {
		q.layers = p
	}
}

// WithTrotter sets the order and step count used for both evolutions.
func WithTrotter(order, steps int) QAOAOption {
	return func(q *QAOA) {
		q.order = order
		q.steps = steps
	}
}

func WithFactory(factory Factory) QAOAOption {
	return func(q *QAOA) {
		q.factory = factory
	}
}

func NewQAOA(cost *Hamiltonian, opts ...QAOAOption) (*QAOA, error) {
	q := &QAOA{
		cost:   cost,
		layers: 1,
		order:  1,
		steps:  1,
	}
	for _, opt := range opts {
		opt(q)
	}

	if q.mixer == nil {
		mixer, err := TransverseField(cost.numQubits)
		if err != nil {
			return nil, err
		}
		q.mixer = mixer
	}
	if q.factory == nil {
		q.factory = NewFactory()
	}

	if q.mixer.numQubits != cost.numQubits {
		return nil, &DimensionError{Op: "qaoa", Got: q.mixer.numQubits, NumQubits: cost.numQubits,
			Reason: fmt.Sprintf("mixer acts on %d qubits, cost on %d", q.mixer.numQubits, cost.numQubits)}
	}
	if q.layers < 1 {
		return nil, fmt.Errorf("qaoa: layers must be positive, got %d", q.layers)
	}
	if q.order < 1 || (q.order > 1 && q.order%2 != 0) {
		return nil, ErrTrotterOrder
	}
	if q.steps < 1 {
		return nil, fmt.Errorf("qaoa: %d steps: %w", q.steps, ErrTrotterSteps)
	}

	return q, nil
}

func (q *QAOA) Cost() *Hamiltonian {
	return q.cost
}

func (q *QAOA) Mixer() *Hamiltonian {
	return q.mixer
}

// NumParams is 2p: γ_1..γ_p followed by β_1..β_p.
func (q *QAOA) NumParams() int {
	return 2 * q.layers
}

// InitialParams draws angles uniformly from [0, π).
func (q *QAOA) InitialParams(rng *rand.Rand) []float64 {
	params := make([]float64, q.NumParams())
	for i := range params {
		params[i] = rng.Float64() * math.Pi
	}
	return params
}

// Circuit builds the ansatz for params = [γ_1..γ_p, β_1..β_p].
func (q *QAOA) Circuit(params []float64) (*Circuit, error) {
	if len(params) != q.NumParams() {
		return nil, &DimensionError{
			Op:     "qaoa",
			Reason: fmt.Sprintf("expects %d parameters, got %d", q.NumParams(), len(params)),
		}
	}

	n := q.cost.numQubits
	b := NewBuilder(n)
	for i := 0; i < n; i++ {
		b.H(i)
	}

	for l := 0; l < q.layers; l++ {
		costStep, err := Trotterize(q.cost, params[l], q.order, q.steps)
		if err != nil {
			return nil, err
		}
		mixStep, err := Trotterize(q.mixer, params[q.layers+l], q.order, q.steps)
		if err != nil {
			return nil, err
		}
		b.Extend(costStep).Extend(mixStep)
	}

	return b.Build()
}

// Objective evaluates <cost> for a parameter vector on a fresh simulator.
func (q *QAOA) Objective() Objective {
	return func(params []float64) (float64, error) {
		c, err := q.Circuit(params)
		if err != nil {
			return 0, err
		}
		sim, err := q.factory.Execute(c)
		if err != nil {
			return 0, err
		}
		return sim.Expectation(q.cost)
	}
}

// Solution is an optimizer Result plus the final state it prepares.
type Solution struct {
	*Result
	Amplitudes    []complex128
	Phases        []float64
	Probabilities []float64
	MostLikely    string
}

/*
Solve optimizes the angles from x0. A *ConvergenceFailure is returned next to
a complete Solution; any other error means there is no Solution.
*/
func (q *QAOA) Solve(x0 []float64, config *Config, opts ...OptimizerOption) (*Solution, error) {
	errnie.Info("Solve - %d qubits, %d layers, cost %s", q.cost.numQubits, q.layers, q.cost)

	result, runErr := NewOptimizer(config, opts...).Minimize(q.Objective(), x0)
	if runErr != nil && !IsConvergenceFailure(runErr) {
		return nil, runErr
	}

	c, err := q.Circuit(result.Params)
	if err != nil {
		return nil, err
	}
	sim, err := q.factory.Execute(c)
	if err != nil {
		return nil, err
	}

	probs := sim.Probabilities()
	likely := 0
	for i, p := range probs {
		if p > probs[likely] {
			likely = i
		}
	}

	return &Solution{
		Result:        result,
		Amplitudes:    sim.Amplitudes(),
		Phases:        sim.Phases(),
		Probabilities: probs,
		MostLikely:    Bitstring(likely, q.cost.numQubits),
	}, runErr
}
