package qcircuit

import (
	"math"
	"math/cmplx"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestGateKinds(t *testing.T) {
	Convey("Given every gate kind", t, func() {
		kinds := GateKinds()
		So(len(kinds), ShouldEqual, int(numGateKinds))

		Convey("Each matrix should be square with side 2^arity", func() {
			for _, k := range kinds {
				m := k.Matrix(0.37)
				So(len(m), ShouldEqual, 1<<k.Arity())
				for _, row := range m {
					So(len(row), ShouldEqual, 1<<k.Arity())
				}
			}
		})

		Convey("Each matrix should be unitary", func() {
			for _, k := range kinds {
				m := k.Matrix(1.234)
				n := len(m)
				for i := 0; i < n; i++ {
					for j := 0; j < n; j++ {
						var acc complex128
						for r := 0; r < n; r++ {
							acc += cmplx.Conj(m[r][i]) * m[r][j]
						}
						want := 0.0
						if i == j {
							want = 1
						}
						So(real(acc), ShouldAlmostEqual, want, 1e-12)
						So(imag(acc), ShouldAlmostEqual, 0, 1e-12)
					}
				}
			}
		})

		Convey("Each kind should have a distinct name", func() {
			seen := map[string]bool{}
			for _, k := range kinds {
				So(seen[k.String()], ShouldBeFalse)
				seen[k.String()] = true
			}
		})

		Convey("Only rotations should be parameterized", func() {
			for _, k := range kinds {
				So(k.Parameterized(), ShouldEqual, k == RX || k == RY || k == RZ)
			}
		})
	})

	Convey("Given an unknown gate kind", t, func() {
		bogus := numGateKinds + 3

		Convey("Arity and Matrix should panic", func() {
			So(func() { bogus.Arity() }, ShouldPanic)
			So(func() { bogus.Matrix(0) }, ShouldPanic)
		})

		Convey("Validation should fail instead of panicking", func() {
			err := Operation{Gate: bogus, Qubits: []int{0}}.validate(2)
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given rotation matrices", t, func() {
		Convey("RX(π) should equal -iX", func() {
			m := RX.Matrix(math.Pi)
			So(real(m[0][0]), ShouldAlmostEqual, 0, 1e-12)
			So(imag(m[0][1]), ShouldAlmostEqual, -1, 1e-12)
		})

		Convey("RZ(θ) should be diagonal with opposite phases", func() {
			m := RZ.Matrix(0.5)
			So(cmplx.Phase(m[0][0]), ShouldAlmostEqual, -0.25, 1e-12)
			So(cmplx.Phase(m[1][1]), ShouldAlmostEqual, 0.25, 1e-12)
			So(m[0][1], ShouldEqual, complex(0, 0))
		})
	})
}
