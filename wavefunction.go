// wavefunction.go
package qcircuit

import (
	"fmt"
	"sort"

	"github.com/theapemachine/errnie"
)

/*
Counts maps measured bitstrings to how often they occurred, the shape the
coursework read back from its backend after executing with a number of shots.
*/
type Counts map[string]int

// Shots is the total number of samples.
func (c Counts) Shots() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// MostLikely returns the most frequent bitstring, ties broken lexically.
func (c Counts) MostLikely() string {
	keys := c.Keys()
	best := ""
	for _, k := range keys {
		if best == "" || c[k] > c[best] {
			best = k
		}
	}
	return best
}

// Keys returns the observed bitstrings in lexical order.
func (c Counts) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

/*
Sample draws shots outcomes for the given qubits (all of them when none are
named) from the current distribution. Unlike Measure it leaves the state
untouched, as if the circuit had been re-run for every shot. In each key the
first named qubit is the rightmost character.
*/
func (s *Simulator) Sample(shots int, qubits ...int) (Counts, error) {
	if shots < 1 {
		return nil, fmt.Errorf("sample: shots must be positive, got %d", shots)
	}

	n := s.state.numQubits
	if len(qubits) == 0 {
		qubits = make([]int, n)
		for q := range qubits {
			qubits[q] = q
		}
	}
	for i, q := range qubits {
		if err := checkQubit("sample", q, n); err != nil {
			return nil, err
		}
		for _, other := range qubits[:i] {
			if other == q {
				return nil, &DimensionError{Op: "sample", Qubit: q, NumQubits: n, Reason: fmt.Sprintf("qubit %d used twice", q)}
			}
		}
	}

	// Calculate cumulative probabilities
	probs := s.state.probabilities()
	cumulative := make([]float64, len(probs))
	var cumProb float64
	for i, p := range probs {
		cumProb += p
		cumulative[i] = cumProb
	}

	counts := make(Counts)
	for shot := 0; shot < shots; shot++ {
		r := s.rng.Float64() * cumProb
		index := sort.SearchFloat64s(cumulative, r)
		// A draw on a bin's upper edge belongs to the next non-empty bin.
		for index < len(probs)-1 && (probs[index] == 0 || cumulative[index] == r) {
			index++
		}
		if index >= len(probs) {
			index = len(probs) - 1
		}

		key := make([]byte, len(qubits))
		for j, q := range qubits {
			if index&(1<<q) != 0 {
				key[len(qubits)-1-j] = '1'
			} else {
				key[len(qubits)-1-j] = '0'
			}
		}
		counts[string(key)]++
	}

	errnie.Info("Sample - %d shots over %d qubits, %d distinct outcomes", shots, len(qubits), len(counts))
	return counts, nil
}
