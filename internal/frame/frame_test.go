package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kristofer/corevm/internal/heap"
)

func TestFrame_PushPopTop(t *testing.T) {
	f := &Frame{}
	f.Push(heap.Int(1))
	f.Push(heap.Int(2))
	assert.Equal(t, int64(2), f.Top().IntValue())

	v, err := f.Pop()
	require.NoError(t, err)
	assert.Equal(t, int64(2), v.IntValue())

	_, err = f.Pop()
	require.NoError(t, err)

	_, err = f.Pop()
	assert.Error(t, err)
}

func TestFrame_InitLocalsDefaultsNull(t *testing.T) {
	f := &Frame{}
	f.InitLocals(3)
	require.Len(t, f.Locals, 3)
	for _, v := range f.Locals {
		assert.True(t, v.IsNull())
	}
}

func TestFrame_Roots(t *testing.T) {
	f := &Frame{
		This:      heap.Obj(1),
		Arguments: []heap.Value{heap.Obj(2), heap.Int(9)},
		Locals:    []heap.Value{heap.Null()},
		Stack:     []heap.Value{heap.Obj(3)},
	}
	roots := f.Roots(nil)
	assert.ElementsMatch(t, []heap.Handle{1, 2, 3}, roots)
}

func TestPool_AcquireReleaseResets(t *testing.T) {
	p := NewPool()
	f := p.Acquire()
	f.Push(heap.Int(1))
	f.Name = "x"
	assert.Equal(t, 1, p.Outstanding())

	p.Release(f)
	assert.Equal(t, 0, p.Outstanding())
	assert.Empty(t, f.Stack)
	assert.Empty(t, f.Name)
}

func TestCallStack_PushPopDepth(t *testing.T) {
	cs := NewCallStack(0)
	assert.Equal(t, 1, cs.Depth())

	require.NoError(t, cs.Push(&Frame{Name: "a"}))
	assert.Equal(t, 2, cs.Depth())
	assert.Equal(t, "a", cs.Top().Name)

	popped := cs.Pop()
	assert.Equal(t, "a", popped.Name)
	assert.Equal(t, 1, cs.Depth())

	assert.Nil(t, cs.Pop(), "popping the bottom host frame is a no-op")
}

func TestCallStack_DepthLimitOverflow(t *testing.T) {
	cs := NewCallStack(2)
	require.NoError(t, cs.Push(&Frame{}))
	err := cs.Push(&Frame{})
	assert.ErrorIs(t, err, ErrStackOverflow)
}

func TestCallStack_CollectRoots(t *testing.T) {
	cs := NewCallStack(0)
	require.NoError(t, cs.Push(&Frame{This: heap.Obj(7)}))
	roots := cs.CollectRoots()
	assert.Contains(t, roots, heap.Handle(7))
}
