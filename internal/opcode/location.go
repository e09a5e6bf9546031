package opcode

import "github.com/kristofer/corevm/internal/heap"

// LocationKind identifies which arm of a ValueLocation is populated.
type LocationKind int

const (
	LocStack LocationKind = iota
	LocLocal
	LocArgument
	LocConstInt
	LocConstFloat
	LocConstBool
	LocConstString
	LocConstNull
	LocConstObject
)

// ValueLocation symbolically describes where a Value can be drawn from
// at Rt execution time: a stack offset (0 is the top, negative below
// it), a local slot, an argument slot, or a constant.
type ValueLocation struct {
	Kind LocationKind

	// StackOffset for LocStack: 0 is top, negative is below top.
	StackOffset int
	// Index for LocLocal / LocArgument.
	Index int

	I64    int64
	F64    float64
	Bool   bool
	Str    string
	Handle heap.Handle
}

// Stack builds a LocStack location at the given offset from the top
// (0 = top, negative = below top).
func Stack(offsetFromTop int) ValueLocation {
	return ValueLocation{Kind: LocStack, StackOffset: offsetFromTop}
}

// Local builds a LocLocal location.
func Local(i int) ValueLocation { return ValueLocation{Kind: LocLocal, Index: i} }

// Argument builds a LocArgument location.
func Argument(i int) ValueLocation { return ValueLocation{Kind: LocArgument, Index: i} }

// ConstInt / ConstFloat / ConstBool / ConstString / ConstNull / ConstObject
// build constant locations.
func ConstInt(v int64) ValueLocation     { return ValueLocation{Kind: LocConstInt, I64: v} }
func ConstFloat(v float64) ValueLocation { return ValueLocation{Kind: LocConstFloat, F64: v} }
func ConstBool(v bool) ValueLocation     { return ValueLocation{Kind: LocConstBool, Bool: v} }
func ConstString(v string) ValueLocation { return ValueLocation{Kind: LocConstString, Str: v} }
func ConstNull() ValueLocation           { return ValueLocation{Kind: LocConstNull} }
func ConstObject(h heap.Handle) ValueLocation {
	return ValueLocation{Kind: LocConstObject, Handle: h}
}

// AsConstValue returns the constant Value for a Const* location, or
// false if loc is LocStack/LocLocal/LocArgument (not a constant).
func (loc ValueLocation) AsConstValue() (heap.Value, bool) {
	switch loc.Kind {
	case LocConstInt:
		return heap.Int(loc.I64), true
	case LocConstFloat:
		return heap.Float(loc.F64), true
	case LocConstBool:
		return heap.Bool(loc.Bool), true
	case LocConstString:
		return heap.Value{}, false // strings are never bare consts post-materialization
	case LocConstNull:
		return heap.Null(), true
	case LocConstObject:
		return heap.Obj(loc.Handle), true
	default:
		return heap.Value{}, false
	}
}
