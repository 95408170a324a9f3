package qcircuit

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/theapemachine/errnie"
)

// OptimizerState is the lifecycle of an Optimizer. It only moves forward.
type OptimizerState int

const (
	Initialized OptimizerState = iota
	Evaluating
	Converged
	BudgetExhausted
)

func (s OptimizerState) String() string {
	switch s {
	case Initialized:
		return "initialized"
	case Evaluating:
		return "evaluating"
	case Converged:
		return "converged"
	case BudgetExhausted:
		return "budget_exhausted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether no further transition is possible.
func (s OptimizerState) Terminal() bool {
	return s == Converged || s == BudgetExhausted
}

// Objective maps a parameter vector to the scalar being minimized.
type Objective func(params []float64) (float64, error)

// Result is what a finished run found.
type Result struct {
	RunID       string
	Params      []float64
	Value       float64
	Iterations  int
	Evaluations int
	Converged   bool
	State       OptimizerState
	History     []float64
}

// OptimizerOption configures an Optimizer.
type OptimizerOption func(*Optimizer)

// WithMetrics records evaluations and outcomes on m.
func WithMetrics(m *Metrics) OptimizerOption {
	return func(o *Optimizer) {
		o.metrics = m
	}
}

/*
Optimizer minimizes an objective with the Nelder-Mead simplex method. It
needs no derivatives and only compares objective values, so statistical noise
in the objective slows it down rather than derailing it. An Optimizer is
single-use: it walks Initialized → Evaluating → Converged or BudgetExhausted
exactly once.
*/
type Optimizer struct {
	config  *Config
	metrics *Metrics
	state   OptimizerState

	evaluations int
}

func NewOptimizer(config *Config, opts ...OptimizerOption) *Optimizer {
	o := &Optimizer{
		config: config.withDefaults(),
		state:  Initialized,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Optimizer) State() OptimizerState {
	return o.state
}

func (o *Optimizer) transition(to OptimizerState) {
	if to <= o.state || o.state.Terminal() {
		panic(fmt.Sprintf("qcircuit: optimizer cannot move from %s to %s", o.state, to))
	}
	o.state = to
}

type vertex struct {
	x []float64
	f float64
}

/*
Minimize runs the simplex search from x0. It always returns a Result once the
search has started. When the budget runs out first the Result carries the best
point seen and the error is a *ConvergenceFailure, which callers may treat as
a warning. An error from the objective aborts the run and is returned as is,
wrapped.
*/
func (o *Optimizer) Minimize(objective Objective, x0 []float64) (*Result, error) {
	if o.state != Initialized {
		return nil, ErrOptimizerSpent
	}
	if len(x0) == 0 {
		return nil, ErrEmptyParams
	}

	if err := o.config.validate(); err != nil {
		return nil, err
	}

	o.transition(Evaluating)
	cfg := o.config
	n := len(x0)

	result := &Result{RunID: uuid.NewString()}
	errnie.Info("Minimize - run %s, %d parameters, budget %d iterations / %d evaluations",
		result.RunID, n, cfg.MaxIterations, cfg.MaxEvaluations)

	eval := func(x []float64) (float64, error) {
		o.evaluations++
		start := time.Now()
		f, err := objective(append([]float64(nil), x...))
		if o.metrics != nil {
			o.metrics.recordEvaluation(start, err)
		}
		if err != nil {
			return 0, err
		}
		if math.IsNaN(f) {
			f = math.Inf(1)
		}
		return f, nil
	}

	simplex := make([]vertex, n+1)
	for i := range simplex {
		if o.evaluations >= cfg.MaxEvaluations {
			// The budget ran out before the simplex was complete.
			return o.finish(result, simplex[:i], 0, BudgetExhausted)
		}
		x := append([]float64(nil), x0...)
		if i > 0 {
			x[i-1] += cfg.InitialStep
		}
		f, err := eval(x)
		if err != nil {
			return o.abort(result, simplex[:i], err)
		}
		simplex[i] = vertex{x: x, f: f}
	}

	const (
		alpha = 1.0 // reflection
		gamma = 2.0 // expansion
		rho   = 0.5 // contraction
		sigma = 0.5 // shrink
	)

	final := BudgetExhausted
	iter := 0
	for ; iter < cfg.MaxIterations; iter++ {
		sort.SliceStable(simplex, func(i, j int) bool {
			return simplex[i].f < simplex[j].f
		})
		result.History = append(result.History, simplex[0].f)

		if simplex[n].f-simplex[0].f <= cfg.FTol && diameter(simplex) <= cfg.XTol {
			final = Converged
			break
		}
		if o.evaluations+n+2 > cfg.MaxEvaluations {
			break
		}

		centroid := make([]float64, n)
		for _, v := range simplex[:n] {
			for j := range centroid {
				centroid[j] += v.x[j] / float64(n)
			}
		}

		worst := simplex[n]
		reflected := along(centroid, worst.x, -alpha)
		fr, err := eval(reflected)
		if err != nil {
			return o.abort(result, simplex, err)
		}

		switch {
		case fr < simplex[0].f:
			expanded := along(centroid, worst.x, -gamma)
			fe, err := eval(expanded)
			if err != nil {
				return o.abort(result, simplex, err)
			}
			if fe < fr {
				simplex[n] = vertex{x: expanded, f: fe}
			} else {
				simplex[n] = vertex{x: reflected, f: fr}
			}
			continue
		case fr < simplex[n-1].f:
			simplex[n] = vertex{x: reflected, f: fr}
			continue
		}

		// Contract toward the better of the worst point and its reflection.
		var contracted []float64
		var bound float64
		if fr < worst.f {
			contracted = along(centroid, worst.x, -rho)
			bound = fr
		} else {
			contracted = along(centroid, worst.x, rho)
			bound = worst.f
		}
		fc, err := eval(contracted)
		if err != nil {
			return o.abort(result, simplex, err)
		}
		if fc < bound {
			simplex[n] = vertex{x: contracted, f: fc}
			continue
		}

		for i := 1; i <= n; i++ {
			x := along(simplex[0].x, simplex[i].x, sigma)
			f, err := eval(x)
			if err != nil {
				return o.abort(result, simplex, err)
			}
			simplex[i] = vertex{x: x, f: f}
		}
	}

	return o.finish(result, simplex, iter, final)
}

// finish moves the machine to its terminal state and fills in the Result.
func (o *Optimizer) finish(result *Result, simplex []vertex, iter int, final OptimizerState) (*Result, error) {
	best := bestVertex(simplex)
	result.Params = best.x
	result.Value = best.f
	result.Iterations = iter
	result.Evaluations = o.evaluations
	result.Converged = final == Converged
	o.transition(final)
	result.State = o.state

	if o.metrics != nil {
		o.metrics.recordRun(o.state, best.f)
	}
	errnie.Info("Minimize - run %s %s after %d iterations, value %.9f",
		result.RunID, o.state, iter, best.f)

	if final == BudgetExhausted {
		return result, &ConvergenceFailure{
			Iterations:  iter,
			Evaluations: o.evaluations,
			Best:        best.f,
		}
	}
	return result, nil
}

/*
abort ends a run whose objective failed. The machine still has to land in a
terminal state; the run stopped before meeting its tolerance, so that is
BudgetExhausted. Value stays NaN when no point was evaluated successfully.
*/
func (o *Optimizer) abort(result *Result, simplex []vertex, err error) (*Result, error) {
	o.transition(BudgetExhausted)
	result.State = o.state
	result.Evaluations = o.evaluations
	result.Value = math.NaN()
	if len(simplex) > 0 {
		best := bestVertex(simplex)
		result.Params = best.x
		result.Value = best.f
	}
	if o.metrics != nil {
		o.metrics.recordRun(o.state, result.Value)
	}
	return result, fmt.Errorf("objective evaluation %d failed: %w", o.evaluations, err)
}

// IsConvergenceFailure reports whether err only signals budget exhaustion.
func IsConvergenceFailure(err error) bool {
	var cf *ConvergenceFailure
	return errors.As(err, &cf)
}

// along returns from + t·(to - from).
func along(from, to []float64, t float64) []float64 {
	out := make([]float64, len(from))
	for i := range from {
		out[i] = from[i] + t*(to[i]-from[i])
	}
	return out
}

func diameter(simplex []vertex) float64 {
	var d float64
	for _, v := range simplex[1:] {
		for j := range v.x {
			d = math.Max(d, math.Abs(v.x[j]-simplex[0].x[j]))
		}
	}
	return d
}

func bestVertex(simplex []vertex) vertex {
	best := simplex[0]
	for _, v := range simplex[1:] {
		if v.f < best.f {
			best = v
		}
	}
	return vertex{x: append([]float64(nil), best.x...), f: best.f}
}
