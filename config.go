package qcircuit

import (
	"fmt"
	"math"
)

/*
Config holds the optimizer budget and tolerances. The run stops as Converged
once both the spread of objective values over the simplex drops below FTol
and the simplex diameter drops below XTol, and as BudgetExhausted when either
MaxIterations or MaxEvaluations is reached first.

A zero field means "use the NewConfig default", so a zero tolerance cannot be
requested; pass a tiny positive value instead. Negative values are rejected
by Minimize with ErrInvalidConfig. InitialStep may not be negative either:
the starting simplex always extends in the positive direction of each
parameter.
*/
type Config struct {
	MaxIterations  int
	MaxEvaluations int
	FTol           float64
	XTol           float64
	InitialStep    float64
}

func NewConfig() *Config {
	return &Config{
		MaxIterations:  500,
		MaxEvaluations: 2000,
		FTol:           1e-10,
		XTol:           1e-6,
		InitialStep:    0.25,
	}
}

// withDefaults fills zero fields from NewConfig.
func (c *Config) withDefaults() *Config {
	d := NewConfig()
	if c == nil {
		return d
	}
	out := *c
	if out.MaxIterations == 0 {
		out.MaxIterations = d.MaxIterations
	}
	if out.MaxEvaluations == 0 {
		out.MaxEvaluations = d.MaxEvaluations
	}
	if out.FTol == 0 {
		out.FTol = d.FTol
	}
	if out.XTol == 0 {
		out.XTol = d.XTol
	}
	if out.InitialStep == 0 {
		out.InitialStep = d.InitialStep
	}
	return &out
}

func (c *Config) validate() error {
	switch {
	case c.MaxIterations < 0:
		return fmt.Errorf("%w: MaxIterations %d", ErrInvalidConfig, c.MaxIterations)
	case c.MaxEvaluations < 0:
		return fmt.Errorf("%w: MaxEvaluations %d", ErrInvalidConfig, c.MaxEvaluations)
	case c.FTol < 0 || math.IsNaN(c.FTol):
		return fmt.Errorf("%w: FTol %v", ErrInvalidConfig, c.FTol)
	case c.XTol < 0 || math.IsNaN(c.XTol):
		return fmt.Errorf("%w: XTol %v", ErrInvalidConfig, c.XTol)
	case c.InitialStep < 0 || math.IsNaN(c.InitialStep) || math.IsInf(c.InitialStep, 0):
		return fmt.Errorf("%w: InitialStep %v", ErrInvalidConfig, c.InitialStep)
	}
	return nil
}
