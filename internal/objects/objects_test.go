package objects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kristofer/corevm/internal/heap"
)

func TestString_ToStrAndCompare(t *testing.T) {
	pool := heap.NewPool(0)
	ha, err := pool.Allocate(NewString("a"))
	require.NoError(t, err)
	hb, err := pool.Allocate(NewString("b"))
	require.NoError(t, err)

	order, ok := heap.Compare(pool, heap.Obj(ha), heap.Obj(hb))
	require.True(t, ok)
	assert.Equal(t, -1, order)

	s, err := heap.ToStr(pool, heap.Obj(ha))
	require.NoError(t, err)
	assert.Equal(t, "a", s)
}

func TestDynamicRecord_FieldLookupWalksPrototype(t *testing.T) {
	pool := heap.NewPool(0)
	protoHandle, err := pool.Allocate(NewDynamicRecord(heap.Null()))
	require.NoError(t, err)
	proto, err := heap.MustResolveTyped[*DynamicRecord](pool, protoHandle)
	require.NoError(t, err)
	require.NoError(t, proto.SetField("greeting", heap.Int(1)))

	childHandle, err := pool.Allocate(NewDynamicRecord(heap.Obj(protoHandle)))
	require.NoError(t, err)
	child, err := heap.MustResolveTyped[*DynamicRecord](pool, childHandle)
	require.NoError(t, err)

	v, ok := child.GetField(pool, "greeting")
	require.True(t, ok)
	assert.Equal(t, int64(1), v.IntValue())

	_, ok = child.GetField(pool, "missing")
	assert.False(t, ok)
}

func TestRuntimeError_IsGoError(t *testing.T) {
	var err error = NewRuntimeError("Invalid operation")
	assert.EqualError(t, err, "Invalid operation")
}

func TestFieldNotFoundError_Message(t *testing.T) {
	var err error = NewFieldNotFoundError("greet")
	assert.Contains(t, err.Error(), "greet")
}
