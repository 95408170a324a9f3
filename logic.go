package qcircuit

import (
	"fmt"
	"strconv"
)

/*
LogicGates computes classical Boolean gates with reversible quantum circuits
over one to three qubits. Inputs are the strings "0" and "1". Each call builds
its circuit, runs it on a fresh simulator from the factory and measures the
output qubit, so no state survives between calls.
*/
type LogicGates struct {
	factory Factory
}

func NewLogicGates(factory Factory) *LogicGates {
	if factory == nil {
		factory = NewFactory()
	}
	return &LogicGates{factory: factory}
}

// NOT flips a single qubit.
func (lg *LogicGates) NOT(input string) (string, error) {
	bit, err := parseBit(input)
	if err != nil {
		return "", fmt.Errorf("NOT(%q): %w", input, err)
	}

	b := NewBuilder(1)
	encode(b, 0, bit)
	b.X(0)

	return lg.read(b, 0)
}

// XOR writes input1 ⊕ input2 onto the second qubit with a CNOT.
func (lg *LogicGates) XOR(input1, input2 string) (string, error) {
	b, err := lg.inputs("XOR", 2, input1, input2)
	if err != nil {
		return "", err
	}
	b.CX(0, 1)
	return lg.read(b, 1)
}

// AND writes input1 ∧ input2 onto a blank third qubit with a Toffoli.
func (lg *LogicGates) AND(input1, input2 string) (string, error) {
	b, err := lg.inputs("AND", 3, input1, input2)
	if err != nil {
		return "", err
	}
	b.CCX(0, 1, 2)
	return lg.read(b, 2)
}

// NAND is AND followed by an X on the output.
func (lg *LogicGates) NAND(input1, input2 string) (string, error) {
	b, err := lg.inputs("NAND", 3, input1, input2)
	if err != nil {
		return "", err
	}
	b.CCX(0, 1, 2).X(2)
	return lg.read(b, 2)
}

// OR is NOT(NOT a AND NOT b), restoring the inputs afterwards.
func (lg *LogicGates) OR(input1, input2 string) (string, error) {
	b, err := lg.inputs("OR", 3, input1, input2)
	if err != nil {
		return "", err
	}
	b.X(0).X(1).CCX(0, 1, 2).X(2).X(0).X(1)
	return lg.read(b, 2)
}

// FANOUT copies one classical bit onto two output qubits.
func (lg *LogicGates) FANOUT(input string) (string, string, error) {
	bit, err := parseBit(input)
	if err != nil {
		return "", "", fmt.Errorf("FANOUT(%q): %w", input, err)
	}

	b := NewBuilder(3)
	encode(b, 0, bit)
	b.CX(0, 1).CX(0, 2)

	c, err := b.Build()
	if err != nil {
		return "", "", err
	}
	sim, err := lg.factory.Execute(c)
	if err != nil {
		return "", "", err
	}

	out1, err := sim.Measure(1)
	if err != nil {
		return "", "", err
	}
	out2, err := sim.Measure(2)
	if err != nil {
		return "", "", err
	}
	return strconv.Itoa(out1), strconv.Itoa(out2), nil
}

// TruthRow is one line of a two-input truth table.
type TruthRow struct {
	Input1 string
	Input2 string
	Output string
}

// BinaryGate is the signature shared by XOR, AND, NAND and OR.
type BinaryGate func(input1, input2 string) (string, error)

// TruthTable evaluates gate on 00, 01, 10 and 11.
func TruthTable(gate BinaryGate) ([]TruthRow, error) {
	rows := make([]TruthRow, 0, 4)
	for _, in1 := range []string{"0", "1"} {
		for _, in2 := range []string{"0", "1"} {
			out, err := gate(in1, in2)
			if err != nil {
				return nil, err
			}
			rows = append(rows, TruthRow{Input1: in1, Input2: in2, Output: out})
		}
	}
	return rows, nil
}

func encode(b *Builder, q, bit int) {
	if bit == 1 {
		b.X(q)
	}
}

func (lg *LogicGates) inputs(name string, width int, input1, input2 string) (*Builder, error) {
	bit1, err := parseBit(input1)
	if err != nil {
		return nil, fmt.Errorf("%s(%q, %q): %w", name, input1, input2, err)
	}
	bit2, err := parseBit(input2)
	if err != nil {
		return nil, fmt.Errorf("%s(%q, %q): %w", name, input1, input2, err)
	}

	b := NewBuilder(width)
	encode(b, 0, bit1)
	encode(b, 1, bit2)
	return b, nil
}

func (lg *LogicGates) read(b *Builder, output int) (string, error) {
	c, err := b.Build()
	if err != nil {
		return "", err
	}
	sim, err := lg.factory.Execute(c)
	if err != nil {
		return "", err
	}
	bit, err := sim.Measure(output)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(bit), nil
}
