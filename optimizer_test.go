package qcircuit

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func quadratic(params []float64) (float64, error) {
	return (params[0]-1)*(params[0]-1) + 2*(params[1]+0.5)*(params[1]+0.5) + 3, nil
}

func TestOptimizer(t *testing.T) {
	Convey("Given a fresh optimizer", t, func() {
		opt := NewOptimizer(NewConfig())
		So(opt.State(), ShouldEqual, Initialized)

		Convey("When minimizing a smooth quadratic", func() {
			result, err := opt.Minimize(quadratic, []float64{4, 4})

			Convey("Then it should converge to the minimum", func() {
				So(err, ShouldBeNil)
				So(result.Converged, ShouldBeTrue)
				So(result.State, ShouldEqual, Converged)
				So(opt.State(), ShouldEqual, Converged)
				So(result.Params[0], ShouldAlmostEqual, 1, 1e-4)
				So(result.Params[1], ShouldAlmostEqual, -0.5, 1e-4)
				So(result.Value, ShouldAlmostEqual, 3, 1e-8)
				So(result.RunID, ShouldNotBeEmpty)
			})

			Convey("Then the best value per iteration should never get worse", func() {
				for i := 1; i < len(result.History); i++ {
					So(result.History[i], ShouldBeLessThanOrEqualTo, result.History[i-1])
				}
			})

			Convey("Then a second run should be refused", func() {
				_, err := opt.Minimize(quadratic, []float64{0, 0})
				So(errors.Is(err, ErrOptimizerSpent), ShouldBeTrue)
			})
		})

		Convey("When the parameter vector is empty", func() {
			_, err := opt.Minimize(quadratic, nil)
			So(errors.Is(err, ErrEmptyParams), ShouldBeTrue)
			So(opt.State(), ShouldEqual, Initialized)
		})

		Convey("When the objective fails", func() {
			boom := errors.New("backend unavailable")
			calls := 0
			result, err := opt.Minimize(func(params []float64) (float64, error) {
				calls++
				if calls == 5 {
					return 0, boom
				}
				return quadratic(params)
			}, []float64{0, 0})

			Convey("Then the error should be returned wrapped", func() {
				So(errors.Is(err, boom), ShouldBeTrue)
				So(IsConvergenceFailure(err), ShouldBeFalse)
				So(result, ShouldNotBeNil)
				So(result.Evaluations, ShouldEqual, 5)
				So(opt.State().Terminal(), ShouldBeTrue)
			})
		})
	})

	Convey("Given a tiny iteration budget", t, func() {
		cfg := NewConfig()
		cfg.MaxIterations = 3
		opt := NewOptimizer(cfg)

		result, err := opt.Minimize(quadratic, []float64{10, -10})

		Convey("Then the run should end as BudgetExhausted without being fatal", func() {
			So(IsConvergenceFailure(err), ShouldBeTrue)

			var cf *ConvergenceFailure
			So(errors.As(err, &cf), ShouldBeTrue)
			So(cf.Iterations, ShouldEqual, 3)
			So(err.Error(), ShouldContainSubstring, "did not converge")

			So(result, ShouldNotBeNil)
			So(result.Converged, ShouldBeFalse)
			So(result.State, ShouldEqual, BudgetExhausted)
			So(result.Value, ShouldEqual, cf.Best)
			So(len(result.Params), ShouldEqual, 2)
		})
	})

	Convey("Given an evaluation budget", t, func() {
		cfg := NewConfig()
		cfg.MaxEvaluations = 20
		opt := NewOptimizer(cfg)

		result, err := opt.Minimize(quadratic, []float64{10, -10})

		Convey("Then the run should stop before exceeding it", func() {
			So(IsConvergenceFailure(err), ShouldBeTrue)
			So(result.Evaluations, ShouldBeLessThanOrEqualTo, 20)
		})
	})

	Convey("Given an evaluation budget smaller than the starting simplex", t, func() {
		cfg := NewConfig()
		cfg.MaxEvaluations = 2
		calls := 0
		result, err := NewOptimizer(cfg).Minimize(func(params []float64) (float64, error) {
			calls++
			return quadratic(params[:2])
		}, []float64{1, 2, 3})

		Convey("Then no evaluation should run past the budget", func() {
			So(IsConvergenceFailure(err), ShouldBeTrue)
			So(calls, ShouldEqual, 2)
			So(result.Evaluations, ShouldEqual, 2)
			So(result.Iterations, ShouldEqual, 0)
			So(result.State, ShouldEqual, BudgetExhausted)
			So(len(result.Params), ShouldEqual, 3)
		})
	})

	Convey("Given a config with negative values", t, func() {
		for _, mutate := range []func(*Config){
			func(c *Config) { c.FTol = -1 },
			func(c *Config) { c.XTol = -1e-9 },
			func(c *Config) { c.InitialStep = -0.1 },
			func(c *Config) { c.MaxEvaluations = -5 },
		} {
			cfg := NewConfig()
			mutate(cfg)
			opt := NewOptimizer(cfg)
			_, err := opt.Minimize(quadratic, []float64{0, 0})
			So(errors.Is(err, ErrInvalidConfig), ShouldBeTrue)
			So(opt.State(), ShouldEqual, Initialized)
		}
	})

	Convey("Given a config with zero tolerances", t, func() {
		cfg := &Config{MaxIterations: 10}
		opt := NewOptimizer(cfg)

		Convey("Then the zero fields should take the defaults", func() {
			So(opt.config.FTol, ShouldEqual, NewConfig().FTol)
			So(opt.config.XTol, ShouldEqual, NewConfig().XTol)
			So(opt.config.InitialStep, ShouldEqual, NewConfig().InitialStep)
			So(opt.config.MaxIterations, ShouldEqual, 10)
		})
	})

	Convey("Given an objective that fails on its first call", t, func() {
		result, err := NewOptimizer(nil).Minimize(func([]float64) (float64, error) {
			return 0, errors.New("no backend")
		}, []float64{1, 1})

		Convey("Then the result should carry no made-up value", func() {
			So(err, ShouldNotBeNil)
			So(math.IsNaN(result.Value), ShouldBeTrue)
			So(result.Params, ShouldBeNil)
			So(result.Evaluations, ShouldEqual, 1)
		})
	})

	Convey("Given a noisy objective", t, func() {
		rng := rand.New(rand.NewPCG(1, 2))
		noisy := func(params []float64) (float64, error) {
			v, _ := quadratic(params)
			return v + 1e-3*(rng.Float64()-0.5), nil
		}

		cfg := NewConfig()
		cfg.MaxIterations = 300
		result, _ := NewOptimizer(cfg).Minimize(noisy, []float64{3, 2})

		Convey("Then it should still land near the minimum", func() {
			So(result.Params[0], ShouldAlmostEqual, 1, 0.1)
			So(result.Params[1], ShouldAlmostEqual, -0.5, 0.1)
		})
	})

	Convey("Given an objective returning NaN away from the origin", t, func() {
		result, err := NewOptimizer(nil).Minimize(func(params []float64) (float64, error) {
			if math.Abs(params[0]) > 2 {
				return math.NaN(), nil
			}
			return params[0] * params[0], nil
		}, []float64{1.5})

		Convey("Then NaN should be treated as worse than any value", func() {
			So(IsConvergenceFailure(err), ShouldBeFalse)
			So(err, ShouldBeNil)
			So(result.Params[0], ShouldAlmostEqual, 0, 1e-3)
		})
	})
}

func TestOptimizerState(t *testing.T) {
	Convey("Given the optimizer states", t, func() {
		So(Initialized.Terminal(), ShouldBeFalse)
		So(Evaluating.Terminal(), ShouldBeFalse)
		So(Converged.Terminal(), ShouldBeTrue)
		So(BudgetExhausted.Terminal(), ShouldBeTrue)
		So(BudgetExhausted.String(), ShouldEqual, "budget_exhausted")

		Convey("Transitions should only move forward", func() {
			opt := NewOptimizer(nil)
			opt.transition(Evaluating)
			So(func() { opt.transition(Initialized) }, ShouldPanic)
			opt.transition(Converged)
			So(func() { opt.transition(BudgetExhausted) }, ShouldPanic)
		})
	})
}
