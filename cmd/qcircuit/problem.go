package main

import (
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/theapemachine/qcircuit"
	"gopkg.in/yaml.v3"
)

// OptimizerConfig is the optional budget section of a problem file. Zero
// fields fall back to qcircuit.NewConfig.
type OptimizerConfig struct {
	MaxIterations  int     `yaml:"max_iterations"`
	MaxEvaluations int     `yaml:"max_evaluations"`
	FTol           float64 `yaml:"ftol"`
	XTol           float64 `yaml:"xtol"`
	InitialStep    float64 `yaml:"initial_step"`
}

/*
Problem is a QAOA run described in YAML:

	num_qubits: 2
	hamiltonian:
	  - pauli: "Z0 Z1"
	    coeff: -1
	initial_params: [0.3, 0.7]
	layers: 1
	trotter_order: 1
	seed: 7
	optimizer:
	  max_iterations: 500
*/
type Problem struct {
	NumQubits     int                 `yaml:"num_qubits"`
	Hamiltonian   []qcircuit.TermSpec `yaml:"hamiltonian"`
	Mixer         []qcircuit.TermSpec `yaml:"mixer,omitempty"`
	InitialParams []float64           `yaml:"initial_params,omitempty"`
	Layers        int                 `yaml:"layers"`
	TrotterOrder  int                 `yaml:"trotter_order"`
	TrotterSteps  int                 `yaml:"trotter_steps"`
	Seed          uint64              `yaml:"seed"`
	Optimizer     OptimizerConfig     `yaml:"optimizer"`
}

// defaultProblem is the two-qubit ferromagnet H = -Z0 Z1.
func defaultProblem() *Problem {
	return &Problem{
		NumQubits:    2,
		Hamiltonian:  []qcircuit.TermSpec{{Pauli: "Z0 Z1", Coeff: -1}},
		Layers:       1,
		TrotterOrder: 1,
		TrotterSteps: 1,
		Seed:         1,
	}
}

func loadProblem(path string) (*Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading problem file: %w", err)
	}
	return parseProblem(data)
}

func parseProblem(data []byte) (*Problem, error) {
	p := defaultProblem()
	p.NumQubits = 0
	p.Hamiltonian = nil
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parsing problem file: %w", err)
	}
	if p.NumQubits == 0 {
		return nil, fmt.Errorf("problem file: num_qubits is required")
	}
	if len(p.Hamiltonian) == 0 {
		return nil, fmt.Errorf("problem file: hamiltonian has no terms")
	}
	return p, nil
}

func (p *Problem) config() *qcircuit.Config {
	cfg := qcircuit.NewConfig()
	if p.Optimizer.MaxIterations > 0 {
		cfg.MaxIterations = p.Optimizer.MaxIterations
	}
	if p.Optimizer.MaxEvaluations > 0 {
		cfg.MaxEvaluations = p.Optimizer.MaxEvaluations
	}
	if p.Optimizer.FTol > 0 {
		cfg.FTol = p.Optimizer.FTol
	}
	if p.Optimizer.XTol > 0 {
		cfg.XTol = p.Optimizer.XTol
	}
	if p.Optimizer.InitialStep > 0 {
		cfg.InitialStep = p.Optimizer.InitialStep
	}
	return cfg
}

// build turns the problem into a QAOA instance and its starting angles.
func (p *Problem) build() (*qcircuit.QAOA, []float64, error) {
	cost, err := qcircuit.ParseHamiltonian(p.NumQubits, p.Hamiltonian)
	if err != nil {
		return nil, nil, err
	}

	opts := []qcircuit.QAOAOption{
		qcircuit.WithLayers(p.Layers),
		qcircuit.WithTrotter(p.TrotterOrder, p.TrotterSteps),
		qcircuit.WithFactory(qcircuit.NewFactory(qcircuit.WithSeed(p.Seed))),
	}
	if len(p.Mixer) > 0 {
		mixer, err := qcircuit.ParseHamiltonian(p.NumQubits, p.Mixer)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, qcircuit.WithMixer(mixer))
	}

	q, err := qcircuit.NewQAOA(cost, opts...)
	if err != nil {
		return nil, nil, err
	}

	x0 := p.InitialParams
	if len(x0) == 0 {
		x0 = q.InitialParams(rand.New(rand.NewPCG(p.Seed, p.Seed^0x9e3779b97f4a7c15)))
	}
	return q, x0, nil
}
