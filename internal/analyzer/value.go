package analyzer

import (
	"encoding/json"
	"math"
	"strconv"
)

// Value is a measure result. A ratio with a zero denominator is
// undefined, which is distinct from zero; undefined values render as
// "UNDEFINED" and propagate through arithmetic.
type Value struct {
	Defined bool
	N       float64
}

// Num returns a defined value.
func Num(n float64) Value { return Value{Defined: true, N: n} }

// Undefined is the zero-denominator sentinel.
var Undefined = Value{}

// String renders the value for report tables. Numbers are rounded to
// four decimal places with trailing zeros dropped.
func (v Value) String() string {
	if !v.Defined {
		return "UNDEFINED"
	}
	return strconv.FormatFloat(round4(v.N), 'f', -1, 64)
}

// MarshalJSON emits a number, or the string "UNDEFINED".
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Defined {
		return json.Marshal("UNDEFINED")
	}
	return json.Marshal(round4(v.N))
}

func round4(n float64) float64 {
	return math.Round(n*10000) / 10000
}
