// Package opcode defines the VM's instruction set, the basic-block and
// Function containers, and the static validator that checks operand
// stack balance, terminator placement, and the user/post-optimizer
// runtime-opcode policy.
//
// Every opcode's (pop, push) stack delta is a pure function of the
// Instruction value — required so the validator can check balance
// without simulating execution. This mirrors the teacher's flat
// Instruction{Op, Operand} shape (pkg/bytecode/bytecode.go), widened
// with one field per payload kind this opcode set actually needs.
package opcode

import "github.com/kristofer/corevm/internal/heap"

// Op identifies one opcode.
type Op int

const (
	// Loads
	LoadNull Op = iota
	LoadInt
	LoadFloat
	LoadBool
	LoadString
	LoadThis

	// Stack manipulation
	Pop
	Dup
	Rotate2
	Rotate3
	RotateReverse

	// Locals
	InitLocal
	GetLocal
	SetLocal

	// Arguments
	GetArgument
	GetNArguments

	// Statics
	GetStatic
	SetStatic

	// Fields
	GetField
	SetField
	CreateObject

	// Calls
	Call
	CallField

	// Control flow
	Branch
	ConditionalBranch
	Return

	// Polymorphic arithmetic
	Add
	Sub
	Mul
	Div
	Mod
	Pow

	// Typed integer arithmetic
	IntAdd
	IntSub
	IntMul
	IntDiv
	IntMod
	IntPow

	// Typed float arithmetic
	FloatAdd
	FloatSub
	FloatMul
	FloatDiv
	FloatMod
	FloatPowf

	StringAdd

	// Casts
	CastToInt
	CastToFloat
	CastToBool
	CastToString

	// Logic / compare
	And
	Or
	Not
	TestLt
	TestLe
	TestEq
	TestNe
	TestGe
	TestGt

	Nop

	// Runtime-only (Rt) family — rejected in user-mode validation,
	// only ever produced by the optimizer.
	RtLoadObject
	RtLoadValue
	RtStackMap
	RtConstCall
)

// IsRuntimeOnly reports whether op belongs to the Rt(_) family.
func (op Op) IsRuntimeOnly() bool {
	switch op {
	case RtLoadObject, RtLoadValue, RtStackMap, RtConstCall:
		return true
	default:
		return false
	}
}

// IsTerminator reports whether op ends a basic block.
func (op Op) IsTerminator() bool {
	switch op {
	case Branch, ConditionalBranch, Return:
		return true
	default:
		return false
	}
}

func (op Op) String() string {
	names := [...]string{
		"LoadNull", "LoadInt", "LoadFloat", "LoadBool", "LoadString", "LoadThis",
		"Pop", "Dup", "Rotate2", "Rotate3", "RotateReverse",
		"InitLocal", "GetLocal", "SetLocal",
		"GetArgument", "GetNArguments",
		"GetStatic", "SetStatic",
		"GetField", "SetField", "CreateObject",
		"Call", "CallField",
		"Branch", "ConditionalBranch", "Return",
		"Add", "Sub", "Mul", "Div", "Mod", "Pow",
		"IntAdd", "IntSub", "IntMul", "IntDiv", "IntMod", "IntPow",
		"FloatAdd", "FloatSub", "FloatMul", "FloatDiv", "FloatMod", "FloatPowf",
		"StringAdd",
		"CastToInt", "CastToFloat", "CastToBool", "CastToString",
		"And", "Or", "Not",
		"TestLt", "TestLe", "TestEq", "TestNe", "TestGe", "TestGt",
		"Nop",
		"Rt(LoadObject)", "Rt(LoadValue)", "Rt(StackMap)", "Rt(ConstCall)",
	}
	if int(op) < 0 || int(op) >= len(names) {
		return "Unknown"
	}
	return names[op]
}

// Instruction is one executable opcode plus whichever payload fields its
// Op uses. Unused fields are simply zero — StackDelta and the executor
// each only read the fields their Op documents.
type Instruction struct {
	Op Op

	// N is a generic integer operand: RotateReverse count, InitLocal
	// local count, Call/CallField/Rt(ConstCall) argument count,
	// GetLocal/SetLocal/GetArgument slot index, and Rt(StackMap) pop
	// depth. GetField/SetField/GetStatic take their operands from the
	// stack, so N is unused there.
	N int

	I64  int64
	F64  float64
	Bool bool
	Str  string

	// BranchTarget / TrueTarget+FalseTarget address other blocks.
	BranchTarget int
	TrueTarget   int
	FalseTarget  int

	// Handle / Value back Rt(LoadObject)/Rt(LoadValue).
	Handle heap.Handle
	Value  heap.Value

	// LocTarget / LocThis back Rt(ConstCall)'s target/this locations.
	LocTarget ValueLocation
	LocThis   ValueLocation

	// StackMap / EndState back Rt(StackMap).
	StackMap []ValueLocation
	EndState int
}

// StackDelta returns (pop, push) for this instruction — a pure function
// of its Op and, for the few variable-arity opcodes, its N field.
func (i Instruction) StackDelta() (pop, push int) {
	switch i.Op {
	case LoadNull, LoadInt, LoadFloat, LoadBool, LoadString, LoadThis, Dup:
		return 0, 1
	case Pop:
		return 1, 0
	case Rotate2:
		return 2, 2
	case Rotate3:
		return 3, 3
	case RotateReverse:
		return i.N, i.N
	case InitLocal:
		return 0, 0
	case GetLocal, GetArgument, GetNArguments:
		return 0, 1
	case SetLocal:
		return 1, 0
	case GetStatic:
		return 1, 1
	case SetStatic:
		return 2, 0
	case GetField:
		return 2, 1
	case SetField:
		return 3, 0
	case CreateObject:
		return 1, 1
	case Call:
		return i.N + 2, 1
	case CallField:
		return i.N + 3, 1
	case Branch:
		return 0, 0
	case ConditionalBranch:
		return 1, 0
	case Return:
		return 1, 0
	case Add, Sub, Mul, Div, Mod, Pow,
		IntAdd, IntSub, IntMul, IntDiv, IntMod, IntPow,
		FloatAdd, FloatSub, FloatMul, FloatDiv, FloatMod, FloatPowf,
		StringAdd,
		And, Or,
		TestLt, TestLe, TestEq, TestNe, TestGe, TestGt:
		return 2, 1
	case CastToInt, CastToFloat, CastToBool, CastToString, Not:
		return 1, 1
	case Nop:
		return 0, 0
	case RtLoadObject, RtLoadValue:
		return 0, 1
	case RtStackMap:
		// N holds how far below the window's starting top the map
		// reaches (the pop side); EndState is the window's net
		// push-pop, so push = N + EndState. Both are computed once by
		// the optimizer's stack-map packing pass.
		return i.N, i.N + i.EndState
	case RtConstCall:
		return i.N, 1
	default:
		return 0, 0
	}
}
