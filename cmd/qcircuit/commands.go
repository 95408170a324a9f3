package main

import (
	"fmt"
	"io"
	"math"

	"github.com/davecgh/go-spew/spew"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/theapemachine/errnie"
	"github.com/theapemachine/qcircuit"
)

var (
	problemPath string
	seed        uint64
	maxIter     int
	layers      int
	order       int
	dump        bool
)

var rootCmd = &cobra.Command{
	Use:   "qcircuit",
	Short: "Quantum circuit teaching harness",
	Long: `Simulate small quantum circuits on a state vector.

Examples:
  qcircuit logic                          # Truth tables of the quantum logic gates
  qcircuit qaoa                           # QAOA for H = -Z0 Z1
  qcircuit qaoa --config problem.yaml     # QAOA for the Hamiltonian in a file
  qcircuit qaoa --layers 2 --order 2      # Deeper ansatz, Strang splitting`,
	SilenceUsage: true,
}

var logicCmd = &cobra.Command{
	Use:   "logic",
	Short: "Print the truth tables of NOT, XOR, AND, NAND, OR and FANOUT",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLogic(cmd.OutOrStdout())
	},
}

var qaoaCmd = &cobra.Command{
	Use:   "qaoa",
	Short: "Optimize QAOA angles for an Ising cost Hamiltonian",
	Long: `Optimize QAOA angles with Nelder-Mead and print the resulting state.

Without --config the cost is H = -Z0 Z1. Flags override the problem file.
Running out of budget is reported as "did not converge" and is not an error.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		problem := defaultProblem()
		if problemPath != "" {
			loaded, err := loadProblem(problemPath)
			if err != nil {
				return err
			}
			problem = loaded
		}

		flags := cmd.Flags()
		if flags.Changed("seed") {
			problem.Seed = seed
		}
		if flags.Changed("max-iter") {
			problem.Optimizer.MaxIterations = maxIter
		}
		if flags.Changed("layers") {
			problem.Layers = layers
			problem.InitialParams = nil
		}
		if flags.Changed("order") {
			problem.TrotterOrder = order
		}

		return runQAOA(cmd.OutOrStdout(), problem, dump)
	},
}

func init() {
	qaoaCmd.Flags().StringVarP(&problemPath, "config", "c", "", "YAML problem file")
	qaoaCmd.Flags().Uint64Var(&seed, "seed", 1, "seed for initial angles and measurement")
	qaoaCmd.Flags().IntVar(&maxIter, "max-iter", 500, "optimizer iteration budget")
	qaoaCmd.Flags().IntVar(&layers, "layers", 1, "number of QAOA layers")
	qaoaCmd.Flags().IntVar(&order, "order", 1, "Trotter order (1 or even)")
	qaoaCmd.Flags().BoolVar(&dump, "dump", false, "dump the optimizer result")

	rootCmd.AddCommand(logicCmd, qaoaCmd)
}

func runLogic(w io.Writer) error {
	gates := qcircuit.NewLogicGates(qcircuit.NewFactory(qcircuit.WithSeed(1)))

	fmt.Fprintln(w, "NOT")
	for _, in := range []string{"0", "1"} {
		out, err := gates.NOT(in)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  %s -> %s\n", in, out)
	}

	binary := []struct {
		name string
		gate qcircuit.BinaryGate
	}{
		{"XOR", gates.XOR},
		{"AND", gates.AND},
		{"NAND", gates.NAND},
		{"OR", gates.OR},
	}
	for _, b := range binary {
		rows, err := qcircuit.TruthTable(b.gate)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, b.name)
		for _, row := range rows {
			fmt.Fprintf(w, "  %s %s -> %s\n", row.Input1, row.Input2, row.Output)
		}
	}

	fmt.Fprintln(w, "FANOUT")
	for _, in := range []string{"0", "1"} {
		out1, out2, err := gates.FANOUT(in)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  %s -> %s %s\n", in, out1, out2)
	}
	return nil
}

func runQAOA(w io.Writer, problem *Problem, dump bool) error {
	q, x0, err := problem.build()
	if err != nil {
		return err
	}

	metrics := qcircuit.NewMetrics(prometheus.NewRegistry())
	solution, err := q.Solve(x0, problem.config(), qcircuit.WithMetrics(metrics))
	if err != nil && !qcircuit.IsConvergenceFailure(err) {
		return err
	}

	errnie.Info("qaoa - run %s finished as %s", solution.RunID, solution.State)
	if err != nil {
		fmt.Fprintf(w, "did not converge: %v\n", err)
	}

	fmt.Fprintf(w, "cost:        %s\n", q.Cost())
	fmt.Fprintf(w, "params:      %s\n", formatParams(solution.Params, problem.Layers))
	fmt.Fprintf(w, "expectation: %.9f\n", solution.Value)
	fmt.Fprintf(w, "iterations:  %d (%d evaluations)\n", solution.Iterations, solution.Evaluations)
	fmt.Fprintf(w, "most likely: |%s>\n", solution.MostLikely)
	fmt.Fprintln(w, "state:")
	for i, amp := range solution.Amplitudes {
		fmt.Fprintf(w, "  |%s>  amp % .6f%+.6fi  prob %.6f  phase % .6f\n",
			qcircuit.Bitstring(i, problem.NumQubits),
			real(amp), imag(amp), solution.Probabilities[i], solution.Phases[i])
	}

	if dump {
		fmt.Fprintln(w, spew.Sdump(solution.Result, metrics.ExportMetrics()))
	}
	return nil
}

// formatParams labels the angles as γ_1..γ_p, β_1..β_p.
func formatParams(params []float64, p int) string {
	var s string
	for i, v := range params {
		name, l := "γ", i+1
		if i >= p {
			name, l = "β", i-p+1
		}
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%s%d=%.6f (%.4fπ)", name, l, v, v/math.Pi)
	}
	return s
}
