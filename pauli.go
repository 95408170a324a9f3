package qcircuit

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// Pauli is a single-qubit Pauli operator.
type Pauli byte

const (
	I Pauli = 'I'
	X Pauli = 'X'
	Y Pauli = 'Y'
	Z Pauli = 'Z'
)

func (p Pauli) valid() bool {
	switch p {
	case I, X, Y, Z:
		return true
	default:
		return false
	}
}

func (p Pauli) String() string {
	return string(p)
}

type pauliFactor struct {
	Qubit int
	Op    Pauli
}

/*
PauliString is a tensor product of single-qubit Paulis, stored sparsely and
sorted by qubit. Identity factors are dropped, so two strings are equal
exactly when Key returns the same value.
*/
type PauliString struct {
	factors []pauliFactor
}

// NewPauliString builds a Pauli string from a qubit to operator mapping.
func NewPauliString(ops map[int]Pauli) (PauliString, error) {
	factors := make([]pauliFactor, 0, len(ops))
	for q, op := range ops {
		if q < 0 {
			return PauliString{}, fmt.Errorf("negative qubit index %d", q)
		}
		if !op.valid() {
			return PauliString{}, fmt.Errorf("unknown pauli %q on qubit %d", byte(op), q)
		}
		if op == I {
			continue
		}
		factors = append(factors, pauliFactor{Qubit: q, Op: op})
	}
	sort.Slice(factors, func(i, j int) bool {
		return factors[i].Qubit < factors[j].Qubit
	})
	return PauliString{factors: factors}, nil
}

/*
ParsePauliString accepts either a dense label such as "XIZ", where the
rightmost character acts on qubit 0, or a sparse label such as "Z0 Z1".
*/
func ParsePauliString(label string) (PauliString, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return PauliString{}, fmt.Errorf("empty pauli label")
	}

	ops := make(map[int]Pauli)

	if !strings.ContainsFunc(label, unicode.IsDigit) {
		n := len(label)
		for i := 0; i < n; i++ {
			op := Pauli(unicode.ToUpper(rune(label[i])))
			if !op.valid() {
				return PauliString{}, fmt.Errorf("unknown pauli %q in %q", label[i], label)
			}
			ops[n-1-i] = op
		}
		return NewPauliString(ops)
	}

	for _, field := range strings.Fields(label) {
		op := Pauli(unicode.ToUpper(rune(field[0])))
		if !op.valid() {
			return PauliString{}, fmt.Errorf("unknown pauli %q in %q", field[0], label)
		}
		q, err := strconv.Atoi(field[1:])
		if err != nil {
			return PauliString{}, fmt.Errorf("bad qubit index in %q: %w", field, err)
		}
		if _, dup := ops[q]; dup {
			return PauliString{}, fmt.Errorf("qubit %d appears twice in %q", q, label)
		}
		ops[q] = op
	}
	return NewPauliString(ops)
}

// Key is the canonical sparse label, "I" for the identity.
func (ps PauliString) Key() string {
	if len(ps.factors) == 0 {
		return "I"
	}
	parts := make([]string, len(ps.factors))
	for i, f := range ps.factors {
		parts[i] = fmt.Sprintf("%c%d", f.Op, f.Qubit)
	}
	return strings.Join(parts, " ")
}

func (ps PauliString) String() string {
	return ps.Key()
}

// IsIdentity reports whether the string acts trivially on every qubit.
func (ps PauliString) IsIdentity() bool {
	return len(ps.factors) == 0
}

// On returns the operator acting on qubit q.
func (ps PauliString) On(q int) Pauli {
	for _, f := range ps.factors {
		if f.Qubit == q {
			return f.Op
		}
	}
	return I
}

// Support returns the qubits the string acts on non-trivially, ascending.
func (ps PauliString) Support() []int {
	qubits := make([]int, len(ps.factors))
	for i, f := range ps.factors {
		qubits[i] = f.Qubit
	}
	return qubits
}

func (ps PauliString) maxQubit() int {
	if len(ps.factors) == 0 {
		return -1
	}
	return ps.factors[len(ps.factors)-1].Qubit
}

// masks returns the bit-flip mask, the sign mask and the number of Y factors.
func (ps PauliString) masks() (flip, phase, ys int) {
	for _, f := range ps.factors {
		bit := 1 << f.Qubit
		switch f.Op {
		case X:
			flip |= bit
		case Y:
			flip |= bit
			phase |= bit
			ys++
		case Z:
			phase |= bit
		}
	}
	return flip, phase, ys
}

// PauliTerm is a real coefficient times a Pauli string.
type PauliTerm struct {
	Coefficient float64
	Pauli       PauliString
}

func (t PauliTerm) String() string {
	return fmt.Sprintf("%+.6g*%s", t.Coefficient, t.Pauli.Key())
}

// Term parses label with ParsePauliString and pairs it with coefficient.
func Term(coefficient float64, label string) (PauliTerm, error) {
	ps, err := ParsePauliString(label)
	if err != nil {
		return PauliTerm{}, &InvalidHamiltonian{Term: label, Reason: err.Error()}
	}
	return PauliTerm{Coefficient: coefficient, Pauli: ps}, nil
}

/*
Hamiltonian is an immutable weighted sum of Pauli strings over a fixed number
of qubits. Term order is kept as given because it fixes the order of the
Trotter sequence; the sum itself is commutative.
*/
type Hamiltonian struct {
	numQubits int
	terms     []PauliTerm
}

/*
NewHamiltonian validates and freezes a set of terms. It rejects an empty term
list, duplicate Pauli strings, non-finite coefficients and strings that touch
qubits outside the register.
*/
func NewHamiltonian(numQubits int, terms ...PauliTerm) (*Hamiltonian, error) {
	if numQubits < 1 || numQubits > MaxQubits {
		return nil, &InvalidHamiltonian{
			Reason: fmt.Sprintf("register of %d qubits outside [1, %d]", numQubits, MaxQubits),
		}
	}
	if len(terms) == 0 {
		return nil, &InvalidHamiltonian{Reason: "no terms"}
	}

	seen := make(map[string]struct{}, len(terms))
	frozen := make([]PauliTerm, 0, len(terms))

	for _, t := range terms {
		key := t.Pauli.Key()
		if math.IsNaN(t.Coefficient) || math.IsInf(t.Coefficient, 0) {
			return nil, &InvalidHamiltonian{Term: key, Reason: "coefficient is not finite"}
		}
		if t.Pauli.maxQubit() >= numQubits {
			return nil, &InvalidHamiltonian{
				Term:   key,
				Reason: fmt.Sprintf("acts on qubit %d of a %d-qubit register", t.Pauli.maxQubit(), numQubits),
			}
		}
		if _, dup := seen[key]; dup {
			return nil, &InvalidHamiltonian{Term: key, Reason: "duplicate pauli string"}
		}
		seen[key] = struct{}{}

		factors := append([]pauliFactor(nil), t.Pauli.factors...)
		frozen = append(frozen, PauliTerm{Coefficient: t.Coefficient, Pauli: PauliString{factors: factors}})
	}

	return &Hamiltonian{numQubits: numQubits, terms: frozen}, nil
}

/*
ParseHamiltonian builds a Hamiltonian from label/coefficient pairs, the shape
the driver reads from problem files.
*/
func ParseHamiltonian(numQubits int, terms []TermSpec) (*Hamiltonian, error) {
	parsed := make([]PauliTerm, 0, len(terms))
	for _, spec := range terms {
		t, err := Term(spec.Coeff, spec.Pauli)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, t)
	}
	return NewHamiltonian(numQubits, parsed...)
}

// TermSpec is the serialized form of a Pauli term.
type TermSpec struct {
	Pauli string  `yaml:"pauli"`
	Coeff float64 `yaml:"coeff"`
}

/*
IsingHamiltonian builds Σ J_ij Z_i Z_j + Σ h_i Z_i. Couplings are keyed by
qubit pair; a zero coupling or field emits no term.
*/
func IsingHamiltonian(numQubits int, couplings map[[2]int]float64, fields map[int]float64) (*Hamiltonian, error) {
	pairs := make([][2]int, 0, len(couplings))
	for pair := range couplings {
		pairs = append(pairs, pair)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})

	terms := make([]PauliTerm, 0, len(couplings)+len(fields))
	for _, pair := range pairs {
		j := couplings[pair]
		if j == 0 {
			continue
		}
		if pair[0] == pair[1] {
			return nil, &InvalidHamiltonian{
				Term:   fmt.Sprintf("Z%d Z%d", pair[0], pair[1]),
				Reason: "coupling of a qubit with itself",
			}
		}
		ps, err := NewPauliString(map[int]Pauli{pair[0]: Z, pair[1]: Z})
		if err != nil {
			return nil, &InvalidHamiltonian{Reason: err.Error()}
		}
		terms = append(terms, PauliTerm{Coefficient: j, Pauli: ps})
	}

	qubits := make([]int, 0, len(fields))
	for q := range fields {
		qubits = append(qubits, q)
	}
	sort.Ints(qubits)
	for _, q := range qubits {
		if fields[q] == 0 {
			continue
		}
		ps, err := NewPauliString(map[int]Pauli{q: Z})
		if err != nil {
			return nil, &InvalidHamiltonian{Reason: err.Error()}
		}
		terms = append(terms, PauliTerm{Coefficient: fields[q], Pauli: ps})
	}

	return NewHamiltonian(numQubits, terms...)
}

// TransverseField builds the default QAOA mixer Σ X_i.
func TransverseField(numQubits int) (*Hamiltonian, error) {
	terms := make([]PauliTerm, 0, numQubits)
	for q := 0; q < numQubits; q++ {
		ps, err := NewPauliString(map[int]Pauli{q: X})
		if err != nil {
			return nil, &InvalidHamiltonian{Reason: err.Error()}
		}
		terms = append(terms, PauliTerm{Coefficient: 1, Pauli: ps})
	}
	return NewHamiltonian(numQubits, terms...)
}

func (h *Hamiltonian) NumQubits() int {
	return h.numQubits
}

// Terms returns a copy of the terms in their original order.
func (h *Hamiltonian) Terms() []PauliTerm {
	out := make([]PauliTerm, len(h.terms))
	copy(out, h.terms)
	return out
}

// OneNorm is Σ|c|, an upper bound on the spectral norm.
func (h *Hamiltonian) OneNorm() float64 {
	var sum float64
	for _, t := range h.terms {
		sum += math.Abs(t.Coefficient)
	}
	return sum
}

func (h *Hamiltonian) String() string {
	parts := make([]string, len(h.terms))
	for i, t := range h.terms {
		parts[i] = t.String()
	}
	return strings.Join(parts, " ")
}
