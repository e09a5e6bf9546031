package objects

import (
	"fmt"

	"github.com/kristofer/corevm/internal/heap"
)

// RuntimeError is both a Go error (so it can propagate through ordinary
// Go error returns during unwinding) and a heap.Object (so it can be
// allocated into the pool like any other object). RunCallable does not
// allocate it; it wraps the returned error in a vm.VMError. Grounded on
// the teacher's RuntimeError (pkg/vm/errors.go), which does the same
// double duty minus the heap residency.
type RuntimeError struct {
	heap.Base
	Message string
}

// NewRuntimeError builds a RuntimeError carrying message.
func NewRuntimeError(message string) *RuntimeError {
	return &RuntimeError{Base: heap.Base{SelfTypeName: "RuntimeError"}, Message: message}
}

func (e *RuntimeError) Error() string        { return e.Message }
func (e *RuntimeError) ToStr() (string, error) { return e.Message, nil }
func (e *RuntimeError) ToString() string     { return e.Message }
func (e *RuntimeError) ToBool() bool         { return false }

// FieldNotFoundError is raised by GetField/CallField/SetField on an
// unknown name.
type FieldNotFoundError struct {
	heap.Base
	FieldName string
}

func NewFieldNotFoundError(name string) *FieldNotFoundError {
	return &FieldNotFoundError{Base: heap.Base{SelfTypeName: "FieldNotFoundError"}, FieldName: name}
}

func (e *FieldNotFoundError) Error() string {
	return fmt.Sprintf("field %q not found", e.FieldName)
}
func (e *FieldNotFoundError) ToStr() (string, error) { return e.Error(), nil }
func (e *FieldNotFoundError) ToString() string       { return e.Error() }
func (e *FieldNotFoundError) ToBool() bool           { return false }
