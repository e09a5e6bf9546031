// Package heap implements the VM's value representation and its pooled,
// tracing-collected object heap.
//
// Value & Object model:
//
// A Value is a small tagged scalar — Null, Bool, Int, Float, or Object(h)
// where h is a Handle into the Pool. Values are copy-cheap; all reference
// semantics flow through Object. Object is a fixed capability set with
// failing defaults (see Base) so variants only implement what applies —
// there is no class hierarchy to climb.
package heap

import "fmt"

// Kind tags which arm of Value is populated.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindBool:
		return "Bool"
	case KindInt:
		return "Int"
	case KindFloat:
		return "Float"
	case KindObject:
		return "Object"
	default:
		return "Unknown"
	}
}

// Handle identifies a slot in the Pool. Stable for the object's lifetime.
type Handle int

// Value is the VM's tagged scalar. Zero value is Null.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	h    Handle
}

// Null returns the null Value.
func Null() Value { return Value{kind: KindNull} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int wraps an int64.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float wraps a float64.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Obj wraps a pool handle.
func Obj(h Handle) Value { return Value{kind: KindObject, h: h} }

func (v Value) Kind() Kind    { return v.kind }
func (v Value) IsNull() bool  { return v.kind == KindNull }
func (v Value) IsObject() bool { return v.kind == KindObject }

// BoolValue returns false if Kind() != KindBool; callers check Kind first.
func (v Value) BoolValue() bool { return v.b }

// IntValue returns 0 if Kind() != KindInt; callers check Kind first.
func (v Value) IntValue() int64 { return v.i }

// FloatValue returns 0 if Kind() != KindFloat; callers check Kind first.
func (v Value) FloatValue() float64 { return v.f }

// HandleValue returns 0 if Kind() != KindObject; callers check Kind first.
func (v Value) HandleValue() Handle { return v.h }

// GoString renders a Value for debug tracing without resolving the pool.
func (v Value) GoString() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return fmt.Sprintf("%v", v.b)
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindFloat:
		return fmt.Sprintf("%g", v.f)
	case KindObject:
		return fmt.Sprintf("Object(#%d)", v.h)
	default:
		return "?"
	}
}

// RawEqual is a shallow, pool-independent equality check — same kind and
// same bit pattern. Object(h1) RawEqual Object(h2) iff h1 == h2; it does
// not dispatch to TestEq.
func (v Value) RawEqual(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindInt:
		return v.i == other.i
	case KindFloat:
		return v.f == other.f
	case KindObject:
		return v.h == other.h
	default:
		return false
	}
}
