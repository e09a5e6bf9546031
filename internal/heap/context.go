package heap

import "fmt"

// The functions in this file are the ValueContext of the base spec: a
// (Value, *Pool) pair used for coercions and comparisons that may need
// to dispatch to an Object.

// ToBool coerces v following Not/ConditionalBranch semantics: Null is
// false, Bool is itself, Int/Float are false only at zero, and Object
// values dispatch to their own ToBool.
func ToBool(pool *Pool, v Value) bool {
	switch v.Kind() {
	case KindNull:
		return false
	case KindBool:
		return v.BoolValue()
	case KindInt:
		return v.IntValue() != 0
	case KindFloat:
		return v.FloatValue() != 0.0
	case KindObject:
		info, err := pool.Resolve(v.HandleValue())
		if err != nil {
			return false
		}
		return info.Obj.ToBool()
	default:
		return true
	}
}

// ToInt64 coerces v to an int64, resolving through the pool for Object
// values.
func ToInt64(pool *Pool, v Value) (int64, error) {
	switch v.Kind() {
	case KindInt:
		return v.IntValue(), nil
	case KindFloat:
		return int64(v.FloatValue()), nil
	case KindObject:
		info, err := pool.Resolve(v.HandleValue())
		if err != nil {
			return 0, err
		}
		return info.Obj.ToInt64()
	default:
		return 0, fmt.Errorf("cannot convert %s to int", v.Kind())
	}
}

// ToFloat64 coerces v to a float64.
func ToFloat64(pool *Pool, v Value) (float64, error) {
	switch v.Kind() {
	case KindInt:
		return float64(v.IntValue()), nil
	case KindFloat:
		return v.FloatValue(), nil
	case KindObject:
		info, err := pool.Resolve(v.HandleValue())
		if err != nil {
			return 0, err
		}
		return info.Obj.ToFloat64()
	default:
		return 0, fmt.Errorf("cannot convert %s to float", v.Kind())
	}
}

// ToStr renders v the way StringAdd and casts do: Object values dispatch
// to ToStr (which may fail for non-stringable variants); scalars render
// directly.
func ToStr(pool *Pool, v Value) (string, error) {
	switch v.Kind() {
	case KindNull:
		return "null", nil
	case KindBool:
		return fmt.Sprintf("%v", v.BoolValue()), nil
	case KindInt:
		return fmt.Sprintf("%d", v.IntValue()), nil
	case KindFloat:
		return fmt.Sprintf("%g", v.FloatValue()), nil
	case KindObject:
		info, err := pool.Resolve(v.HandleValue())
		if err != nil {
			return "", err
		}
		return info.Obj.ToStr()
	default:
		return "", fmt.Errorf("cannot convert %s to string", v.Kind())
	}
}

// ToString is the non-failing, diagnostic-purposed rendering (used by
// error messages and the disassembler), never returning an error.
func ToString(pool *Pool, v Value) string {
	switch v.Kind() {
	case KindObject:
		info, err := pool.Resolve(v.HandleValue())
		if err != nil {
			return "<dangling>"
		}
		return info.Obj.ToString()
	default:
		return v.GoString()
	}
}

// Compare implements the base spec's comparison rule: if either side is
// an Object, dispatch to that side's Compare (using the symmetrical
// result when the Object is the right-hand operand); otherwise compare
// same-kind scalars directly. ok=false means "not comparable".
func Compare(pool *Pool, a, b Value) (order int, ok bool) {
	if a.Kind() == KindObject {
		info, err := pool.Resolve(a.HandleValue())
		if err != nil {
			return 0, false
		}
		return info.Obj.Compare(b, pool)
	}
	if b.Kind() == KindObject {
		info, err := pool.Resolve(b.HandleValue())
		if err != nil {
			return 0, false
		}
		order, ok := info.Obj.Compare(a, pool)
		if !ok {
			return 0, false
		}
		return -order, true
	}
	if a.Kind() != b.Kind() {
		return 0, false
	}
	switch a.Kind() {
	case KindInt:
		return compareInt(a.IntValue(), b.IntValue()), true
	case KindFloat:
		return compareFloat(a.FloatValue(), b.FloatValue()), true
	case KindBool:
		return compareBool(a.BoolValue(), b.BoolValue()), true
	case KindNull:
		return 0, true
	default:
		return 0, false
	}
}

// TestEq is equality for TestEq/TestNe opcodes: Object dispatch (either
// side) falls back to Compare's order==0 semantics for scalars.
func TestEq(pool *Pool, a, b Value) bool {
	if a.Kind() == KindObject {
		info, err := pool.Resolve(a.HandleValue())
		if err == nil {
			return info.Obj.TestEq(b, pool)
		}
	}
	if b.Kind() == KindObject {
		info, err := pool.Resolve(b.HandleValue())
		if err == nil {
			return info.Obj.TestEq(a, pool)
		}
	}
	order, ok := Compare(pool, a, b)
	return ok && order == 0
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareBool(a, b bool) int {
	if a == b {
		return 0
	}
	if !a && b {
		return -1
	}
	return 1
}
