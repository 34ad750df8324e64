package interpret

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// Native is a built-in function implemented in Go. Natives go through
// the same arity check as user functions.
type Native struct {
	name  string
	arity int
	fn    func(args []interface{}) (interface{}, error)
}

func (n *Native) Arity() int {
	return n.arity
}

func (n *Native) Call(_ *Interpreter, args []interface{}) (interface{}, error) {
	return n.fn(args)
}

func (n *Native) String() string {
	return "<native fn " + n.name + ">"
}

// defineNatives registers the built-in functions in the
// global environment
func defineNatives(globals *Environment) {
	natives := []*Native{
		{
			name:  "clock",
			arity: 0,
			fn: func(_ []interface{}) (interface{}, error) {
				return float64(time.Now().UnixMilli()) / 1000, nil
			},
		},
		{
			name:  "type",
			arity: 1,
			fn: func(args []interface{}) (interface{}, error) {
				return TypeName(args[0]), nil
			},
		},
		{
			name:  "round",
			arity: 1,
			fn: func(args []interface{}) (interface{}, error) {
				n, ok := args[0].(float64)
				if !ok {
					return nil, errors.New("Argument to 'round' must be a number.")
				}
				return math.Round(n), nil
			},
		},
		{
			name:  "rand",
			arity: 0,
			fn: func(_ []interface{}) (interface{}, error) {
				return rand.Float64(), nil
			},
		},
		{
			name:  "randint",
			arity: 2,
			fn: func(args []interface{}) (interface{}, error) {
				lo, okLo := args[0].(float64)
				hi, okHi := args[1].(float64)
				if !okLo || !okHi {
					return nil, errors.New("Arguments to 'randint' must be numbers.")
				}
				low, high := int64(math.Ceil(lo)), int64(math.Floor(hi))
				if high < low {
					return nil, fmt.Errorf("Empty 'randint' range [%v, %v].", lo, hi)
				}
				return float64(low + rand.Int63n(high-low+1)), nil
			},
		},
	}

	for _, n := range natives {
		globals.Define(n.name, n)
	}
}

// TypeName returns the runtime kind of a value as a string
func TypeName(value interface{}) string {
	switch value.(type) {
	case nil:
		return "nil"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case *Function, *BoundMethod, *Native:
		return "function"
	case *Class:
		return "class"
	case *Instance:
		return "instance"
	}
	return fmt.Sprintf("%T", value)
}
