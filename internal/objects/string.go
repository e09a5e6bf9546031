// Package objects holds the concrete heap.Object variants: strings,
// dynamic records, native and virtual functions, and the runtime error
// objects that carry unwinding failures. Grounded on the teacher's
// Instance/Array/Block runtime types (pkg/vm/vm.go).
package objects

import (
	"github.com/kristofer/corevm/internal/heap"
)

// String is a heap-resident string value. LoadString and StringAdd both
// allocate a fresh String on every execution — the Value model (base
// spec §3) has no raw string tag, so string-ness only exists through
// this Object.
type String struct {
	heap.Base
	Text string
}

// NewString builds a String object, ready for heap.Pool.Allocate.
func NewString(text string) *String {
	return &String{Base: heap.Base{SelfTypeName: "String"}, Text: text}
}

func (s *String) ToStr() (string, error) { return s.Text, nil }
func (s *String) ToString() string       { return s.Text }
func (s *String) ToBool() bool           { return s.Text != "" }

func (s *String) Compare(other heap.Value, pool *heap.Pool) (int, bool) {
	otherText, ok := stringOf(other, pool)
	if !ok {
		return 0, false
	}
	switch {
	case s.Text < otherText:
		return -1, true
	case s.Text > otherText:
		return 1, true
	default:
		return 0, true
	}
}

func (s *String) TestEq(other heap.Value, pool *heap.Pool) bool {
	otherText, ok := stringOf(other, pool)
	return ok && otherText == s.Text
}

func stringOf(v heap.Value, pool *heap.Pool) (string, bool) {
	if v.Kind() != heap.KindObject {
		return "", false
	}
	info, err := pool.Resolve(v.HandleValue())
	if err != nil {
		return "", false
	}
	other, ok := info.Obj.(*String)
	if !ok {
		return "", false
	}
	return other.Text, true
}
