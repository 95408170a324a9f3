package qcircuit

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLogicGates(t *testing.T) {
	Convey("Given quantum logic gates", t, func() {
		gates := NewLogicGates(NewFactory(WithSeed(1)))

		Convey("NOT should invert its input", func() {
			out, err := gates.NOT("0")
			So(err, ShouldBeNil)
			So(out, ShouldEqual, "1")

			out, err = gates.NOT("1")
			So(err, ShouldBeNil)
			So(out, ShouldEqual, "0")
		})

		tables := []struct {
			name string
			gate BinaryGate
			want []string // outputs for 00, 01, 10, 11
		}{
			{"XOR", gates.XOR, []string{"0", "1", "1", "0"}},
			{"AND", gates.AND, []string{"0", "0", "0", "1"}},
			{"NAND", gates.NAND, []string{"1", "1", "1", "0"}},
			{"OR", gates.OR, []string{"0", "1", "1", "1"}},
		}

		for _, tc := range tables {
			Convey(tc.name+" should match its Boolean truth table", func() {
				rows, err := TruthTable(tc.gate)
				So(err, ShouldBeNil)
				So(len(rows), ShouldEqual, 4)
				for i, row := range rows {
					So(row.Output, ShouldEqual, tc.want[i])
				}
				So(rows[1].Input1, ShouldEqual, "0")
				So(rows[1].Input2, ShouldEqual, "1")
			})
		}

		Convey("FANOUT should copy its input twice", func() {
			for _, in := range []string{"0", "1"} {
				a, b, err := gates.FANOUT(in)
				So(err, ShouldBeNil)
				So(a, ShouldEqual, in)
				So(b, ShouldEqual, in)
			}
		})

		Convey("Inputs other than 0 and 1 should be rejected", func() {
			_, err := gates.NOT("2")
			So(errors.Is(err, ErrInvalidBit), ShouldBeTrue)

			_, err = gates.AND("1", "true")
			So(errors.Is(err, ErrInvalidBit), ShouldBeTrue)

			_, _, err = gates.FANOUT("")
			So(errors.Is(err, ErrInvalidBit), ShouldBeTrue)
		})
	})

	Convey("Given logic gates without a factory", t, func() {
		gates := NewLogicGates(nil)

		Convey("They should still compute deterministic outputs", func() {
			out, err := gates.XOR("1", "0")
			So(err, ShouldBeNil)
			So(out, ShouldEqual, "1")
		})
	})
}
