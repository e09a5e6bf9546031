package heap

import "fmt"

// Exec is the capability an Object needs to re-enter execution — for
// example a native function calling back into the VM, or the executor's
// own internal dispatch of polymorphic operators via a field call. It is
// defined here (not in the executor package) so Object implementations
// never import the executor, breaking what would otherwise be an import
// cycle: executor needs heap.Object, and a handful of Object variants
// need to invoke through the executor.
type Exec interface {
	// Invoke runs target as a callable. This mirrors the base spec's
	// call protocol: pin target, push a frame, run Call or CallField,
	// pop the frame, and return the result to the caller (it does not
	// push it onto any operand stack).
	Invoke(target Value, this Value, fieldName string, args []Value) (Value, error)
	// Pool returns the heap this Exec is bound to.
	Pool() *Pool
	// CurrentThis and CurrentArguments read the call protocol's
	// just-installed frame — what a Call/CallField implementation
	// operates on, per base spec §4.3 step 3 ("acquire a frame,
	// initialize with this and a copy of the arguments") happening
	// before step 4 ("invoke obj.call / obj.call_field").
	CurrentThis() Value
	CurrentArguments() []Value
	// RunFunction dispatches fn's basic blocks against the frame the
	// call protocol just installed, returning the block-graph's Return
	// value. fn is an *opcode.Function erased to `any` — the opcode
	// package already imports heap, so heap cannot import opcode back
	// without a cycle; the executor (the only Exec implementation)
	// asserts the concrete type. This lets objects.VirtualFunction.Call
	// hand its bytecode back to the executor without objects needing
	// its own dispatch loop.
	RunFunction(fn any) (Value, error)
}

// Object is the fixed capability set every heap-resident entity exposes.
// Every method has a default via Base (failing where the method can
// return an error); a variant overrides only the methods that apply to
// it.
type Object interface {
	// GetChildren returns outgoing ownership edges for GC tracing.
	GetChildren() []Handle
	// Initialize runs once, right after allocation.
	Initialize(pool *Pool) error
	// Call invokes this object directly (Call opcode's target).
	Call(exec Exec) (Value, error)
	// CallField invokes a named member (CallField opcode).
	CallField(name string, exec Exec) (Value, error)
	// GetField reads a named field, if any.
	GetField(pool *Pool, name string) (Value, bool)
	// SetField assigns a named field.
	SetField(name string, value Value) error
	// HasConstField reports whether name is immutable for this object's
	// lifetime — consulted by the optimizer's const-field folding pass.
	HasConstField(name string) bool
	// ToInt64 / ToFloat64 / ToBool / ToStr / ToString are coercions.
	ToInt64() (int64, error)
	ToFloat64() (float64, error)
	ToBool() bool
	ToStr() (string, error)
	ToString() string
	// Compare returns an ordering (-1, 0, 1) against other, or ok=false
	// if the pair is not comparable.
	Compare(other Value, pool *Pool) (order int, ok bool)
	// TestEq is value equality, independent of Compare.
	TestEq(other Value, pool *Pool) bool
	// TypeName names the dynamic type for error messages and casts.
	TypeName() string
}

// Base is embedded by every Object variant. Each method that returns an
// error (Call, CallField, SetField, ToInt64, ToFloat64, ToStr) fails
// with an error naming the embedding type; the others return a fixed
// neutral answer: no children, Initialize succeeds, no field, no const
// field, ToBool true, not comparable, not equal. Variants override only
// what they support.
type Base struct {
	// SelfTypeName lets a failing default's error message name the
	// concrete variant without each variant re-implementing every
	// method just to customize the message.
	SelfTypeName string
}

func (b Base) typeName() string {
	if b.SelfTypeName != "" {
		return b.SelfTypeName
	}
	return "object"
}

func (b Base) GetChildren() []Handle { return nil }

func (b Base) Initialize(pool *Pool) error { return nil }

func (b Base) Call(exec Exec) (Value, error) {
	return Value{}, fmt.Errorf("%s is not callable", b.typeName())
}

func (b Base) CallField(name string, exec Exec) (Value, error) {
	return Value{}, fmt.Errorf("%s has no callable field %q", b.typeName(), name)
}

func (b Base) GetField(pool *Pool, name string) (Value, bool) { return Value{}, false }

func (b Base) SetField(name string, value Value) error {
	return fmt.Errorf("%s has no settable field %q", b.typeName(), name)
}

func (b Base) HasConstField(name string) bool { return false }

func (b Base) ToInt64() (int64, error) {
	return 0, fmt.Errorf("cannot convert %s to int", b.typeName())
}

func (b Base) ToFloat64() (float64, error) {
	return 0, fmt.Errorf("cannot convert %s to float", b.typeName())
}

func (b Base) ToBool() bool { return true }

func (b Base) ToStr() (string, error) {
	return "", fmt.Errorf("cannot convert %s to string", b.typeName())
}

func (b Base) ToString() string { return fmt.Sprintf("<%s>", b.typeName()) }

func (b Base) Compare(other Value, pool *Pool) (int, bool) { return 0, false }

func (b Base) TestEq(other Value, pool *Pool) bool { return false }

func (b Base) TypeName() string { return b.typeName() }
