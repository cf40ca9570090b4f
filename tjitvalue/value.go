// Package tjitvalue defines the boxed value representation the tracing
// JIT core sees when it snapshots a host interpreter's locals. It does
// not implement a reader, an evaluator, or arithmetic — those live in
// the host; this package only needs enough shape to copy, compare, and
// print values captured in a trace.
package tjitvalue

import (
	"fmt"
	"strconv"
)

// Type identifies the runtime representation of a Value.
type Type byte

const (
	TypeUnspecified Type = iota
	TypeNull                // the empty list, '()
	TypeBool
	TypeInt
	TypeFloat
	TypeString
	TypeSymbol
	TypePair
	TypeVector
	TypeProcedure
	TypeEOF
)

func (t Type) String() string {
	switch t {
	case TypeUnspecified:
		return "unspecified"
	case TypeNull:
		return "null"
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeString:
		return "string"
	case TypeSymbol:
		return "symbol"
	case TypePair:
		return "pair"
	case TypeVector:
		return "vector"
	case TypeProcedure:
		return "procedure"
	case TypeEOF:
		return "eof"
	default:
		return "unknown"
	}
}

// Value is a single boxed Scheme datum as recorded in a locals
// snapshot. It is deliberately shallow: Pair and Vector hold further
// *Value elements rather than being interpreted by this package.
type Value struct {
	Type Type
	Data interface{}
}

// Pair is a cons cell.
type Pair struct {
	Car *Value
	Cdr *Value
}

// Procedure is an opaque reference to host-defined code: either a
// closure over the host's own bytecode or a fragment entry reached via
// a continuation. The tracing JIT core never calls through this; it
// only needs to snapshot and compare procedure identity.
type Procedure struct {
	Name     string
	EntryIP  uintptr
	IsNative bool
}

func NewUnspecified() *Value { return &Value{Type: TypeUnspecified} }
func NewNull() *Value        { return &Value{Type: TypeNull} }
func NewEOF() *Value         { return &Value{Type: TypeEOF} }

func NewBool(b bool) *Value     { return &Value{Type: TypeBool, Data: b} }
func NewInt(i int64) *Value     { return &Value{Type: TypeInt, Data: i} }
func NewFloat(f float64) *Value { return &Value{Type: TypeFloat, Data: f} }
func NewString(s string) *Value { return &Value{Type: TypeString, Data: s} }
func NewSymbol(s string) *Value { return &Value{Type: TypeSymbol, Data: s} }

func NewPair(car, cdr *Value) *Value {
	return &Value{Type: TypePair, Data: &Pair{Car: car, Cdr: cdr}}
}

func NewVector(elems []*Value) *Value {
	return &Value{Type: TypeVector, Data: elems}
}

func NewProcedure(p *Procedure) *Value {
	return &Value{Type: TypeProcedure, Data: p}
}

func (v *Value) IsNull() bool  { return v.Type == TypeNull }
func (v *Value) IsBool() bool  { return v.Type == TypeBool }
func (v *Value) IsInt() bool   { return v.Type == TypeInt }
func (v *Value) IsFloat() bool { return v.Type == TypeFloat }
func (v *Value) IsNumeric() bool {
	return v.Type == TypeInt || v.Type == TypeFloat
}
func (v *Value) IsString() bool    { return v.Type == TypeString }
func (v *Value) IsSymbol() bool    { return v.Type == TypeSymbol }
func (v *Value) IsPair() bool      { return v.Type == TypePair }
func (v *Value) IsVector() bool    { return v.Type == TypeVector }
func (v *Value) IsProcedure() bool { return v.Type == TypeProcedure }

// Truthy implements Scheme truthiness: every value except the boolean
// #f is true, unlike PHP's "0", "", and empty-array falsiness.
func (v *Value) Truthy() bool {
	return !(v.Type == TypeBool && v.Data.(bool) == false)
}

func (v *Value) ToInt() int64 {
	switch v.Type {
	case TypeInt:
		return v.Data.(int64)
	case TypeFloat:
		return int64(v.Data.(float64))
	case TypeBool:
		if v.Data.(bool) {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func (v *Value) ToFloat() float64 {
	switch v.Type {
	case TypeFloat:
		return v.Data.(float64)
	case TypeInt:
		return float64(v.Data.(int64))
	default:
		return 0
	}
}

// String renders a value the way a Scheme REPL would, for debug logs
// and trace dumps; it is not a `write`/`display` implementation.
func (v *Value) String() string {
	switch v.Type {
	case TypeUnspecified:
		return ""
	case TypeNull:
		return "()"
	case TypeEOF:
		return "#<eof>"
	case TypeBool:
		if v.Data.(bool) {
			return "#t"
		}
		return "#f"
	case TypeInt:
		return strconv.FormatInt(v.Data.(int64), 10)
	case TypeFloat:
		return strconv.FormatFloat(v.Data.(float64), 'g', -1, 64)
	case TypeString:
		return strconv.Quote(v.Data.(string))
	case TypeSymbol:
		return v.Data.(string)
	case TypePair:
		p := v.Data.(*Pair)
		return fmt.Sprintf("(%s . %s)", p.Car.String(), p.Cdr.String())
	case TypeVector:
		return fmt.Sprintf("#(%d elements)", len(v.Data.([]*Value)))
	case TypeProcedure:
		p := v.Data.(*Procedure)
		return fmt.Sprintf("#<procedure %s>", p.Name)
	default:
		return "#<unknown>"
	}
}

// Equal reports shallow Scheme eqv?-like equality, sufficient for
// fragment type-checkers comparing a locals snapshot against guard
// values. It does not recurse into pairs or vectors.
func Equal(a, b *Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case TypeNull, TypeUnspecified, TypeEOF:
		return true
	case TypeBool:
		return a.Data.(bool) == b.Data.(bool)
	case TypeInt:
		return a.Data.(int64) == b.Data.(int64)
	case TypeFloat:
		return a.Data.(float64) == b.Data.(float64)
	case TypeString, TypeSymbol:
		return a.Data.(string) == b.Data.(string)
	case TypeVector:
		av, bv := a.Data.([]*Value), b.Data.([]*Value)
		return len(av) == len(bv) && (len(av) == 0 || &av[0] == &bv[0])
	default:
		return a.Data == b.Data
	}
}

// Snapshot copies a slice of locals into a fresh slice, matching the
// reference recorder's behavior of allocating a new vector per step
// (spec: "Locals-snapshot is an ordered sequence ... copy local
// contents to vector") rather than aliasing the interpreter's live
// stack.
func Snapshot(locals []*Value) []*Value {
	out := make([]*Value, len(locals))
	copy(out, locals)
	return out
}
