package qcircuit

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func isingCost() *Hamiltonian {
	h, err := IsingHamiltonian(2, map[[2]int]float64{{0, 1}: -1}, nil)
	if err != nil {
		panic(err)
	}
	return h
}

func TestQAOA(t *testing.T) {
	Convey("Given QAOA for H = -Z0 Z1", t, func() {
		q, err := NewQAOA(isingCost(), WithFactory(NewFactory(WithSeed(8))))
		So(err, ShouldBeNil)
		So(q.NumParams(), ShouldEqual, 2)
		So(q.Mixer().Terms()[0].Pauli.Key(), ShouldEqual, "X0")

		Convey("At zero angles the state should be the uniform superposition", func() {
			sim, err := q.factory.Execute(mustCircuit(q, []float64{0, 0}))
			So(err, ShouldBeNil)
			for _, p := range sim.Probabilities() {
				So(p, ShouldAlmostEqual, 0.25, 1e-12)
			}
			e, err := q.Objective()([]float64{0, 0})
			So(err, ShouldBeNil)
			So(e, ShouldAlmostEqual, 0, 1e-12)
		})

		Convey("The analytic optimum γ=π/4, β=3π/8 should reach -1", func() {
			e, err := q.Objective()([]float64{math.Pi / 4, 3 * math.Pi / 8})
			So(err, ShouldBeNil)
			So(e, ShouldAlmostEqual, -1, 1e-9)
		})

		for _, seed := range []uint64{1, 2, 3, 17} {
			Convey(fmt.Sprintf("Starting from random seed %d the optimizer should reach -1", seed), func() {
				x0 := q.InitialParams(rand.New(rand.NewPCG(seed, seed+1)))
				solution, err := q.Solve(x0, NewConfig())

				So(err, ShouldBeNil)
				if math.Abs(solution.Value+1) > 1e-3 {
					spew.Dump(x0, solution.Result)
				}
				So(solution.Value, ShouldAlmostEqual, -1, 1e-3)
				So(solution.Converged, ShouldBeTrue)
				So(solution.MostLikely == "00" || solution.MostLikely == "11", ShouldBeTrue)
				So(solution.Probabilities[0]+solution.Probabilities[3], ShouldAlmostEqual, 1, 1e-3)
				So(len(solution.Amplitudes), ShouldEqual, 4)
				So(len(solution.Phases), ShouldEqual, 4)
			})
		}

		Convey("A wrong number of parameters should be a DimensionError", func() {
			_, err := q.Circuit([]float64{0.1})
			var de *DimensionError
			So(errors.As(err, &de), ShouldBeTrue)
		})

		Convey("A tiny budget should still return a solution", func() {
			cfg := NewConfig()
			cfg.MaxIterations = 2
			solution, err := q.Solve([]float64{0.3, 0.3}, cfg)
			So(IsConvergenceFailure(err), ShouldBeTrue)
			So(solution, ShouldNotBeNil)
			So(solution.State, ShouldEqual, BudgetExhausted)
		})

		Convey("Solving with metrics should record every evaluation", func() {
			metrics := NewMetrics(prometheus.NewRegistry())
			solution, err := q.Solve([]float64{0.5, 0.5}, NewConfig(), WithMetrics(metrics))
			So(err, ShouldBeNil)

			exported := metrics.ExportMetrics()
			So(exported["evaluations"], ShouldEqual, int64(solution.Evaluations))
			So(exported["converged"], ShouldEqual, int64(1))
		})
	})

	Convey("Given more layers and a higher Trotter order", t, func() {
		q, err := NewQAOA(isingCost(), WithLayers(2), WithTrotter(2, 2))
		So(err, ShouldBeNil)
		So(q.NumParams(), ShouldEqual, 4)

		Convey("The circuit should still preserve the norm", func() {
			sim, err := NewFactory().Execute(mustCircuit(q, []float64{0.1, 0.2, 0.3, 0.4}))
			So(err, ShouldBeNil)
			So(sim.Norm(), ShouldAlmostEqual, 1, 1e-9)
		})
	})

	Convey("Given invalid QAOA options", t, func() {
		_, err := NewQAOA(isingCost(), WithLayers(0))
		So(err, ShouldNotBeNil)

		_, err = NewQAOA(isingCost(), WithTrotter(3, 1))
		So(errors.Is(err, ErrTrotterOrder), ShouldBeTrue)

		_, err = NewQAOA(isingCost(), WithTrotter(2, 0))
		So(errors.Is(err, ErrTrotterSteps), ShouldBeTrue)

		wide, err := TransverseField(3)
		So(err, ShouldBeNil)
		_, err = NewQAOA(isingCost(), WithMixer(wide))
		var de *DimensionError
		So(errors.As(err, &de), ShouldBeTrue)
	})
}

func mustCircuit(q *QAOA, params []float64) *Circuit {
	c, err := q.Circuit(params)
	if err != nil {
		panic(err)
	}
	return c
}
