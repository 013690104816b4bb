package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is anything a Q# expression can evaluate to.
type Value interface {
	Type() string
	String() string
}

type UnitValue struct{}

type IntValue int64

type DoubleValue float64

type BoolValue bool

type StringValue string

// ResultValue is a measurement outcome; true is One.
type ResultValue bool

type QubitValue struct {
	ID int
}

type ArrayValue []Value

var (
	Unit = UnitValue{}
	Zero = ResultValue(false)
	One  = ResultValue(true)
)

func (UnitValue) Type() string   { return "Unit" }
func (IntValue) Type() string    { return "Int" }
func (DoubleValue) Type() string { return "Double" }
func (BoolValue) Type() string   { return "Bool" }
func (StringValue) Type() string { return "String" }
func (ResultValue) Type() string { return "Result" }
func (QubitValue) Type() string  { return "Qubit" }

func (a ArrayValue) Type() string {
	if len(a) == 0 {
		return "Unit[]"
	}
	return a[0].Type() + "[]"
}

func (UnitValue) String() string { return "()" }

func (v IntValue) String() string { return strconv.FormatInt(int64(v), 10) }

func (v DoubleValue) String() string {
	s := strconv.FormatFloat(float64(v), 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}

func (v BoolValue) String() string { return strconv.FormatBool(bool(v)) }

func (v StringValue) String() string { return string(v) }

func (v ResultValue) String() string {
	if v {
		return "One"
	}
	return "Zero"
}

func (v QubitValue) String() string { return fmt.Sprintf("Qubit%d", v.ID) }

func (a ArrayValue) String() string {
	parts := make([]string, len(a))
	for i, item := range a {
		parts[i] = item.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// valuesEqual compares two values structurally; values of different types
// are never equal.
func valuesEqual(a, b Value) bool {
	switch av := a.(type) {
	case ArrayValue:
		bv, ok := b.(ArrayValue)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !valuesEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
