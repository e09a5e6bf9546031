package heap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cell struct {
	Base
	child Handle
	has   bool
}

func (c *cell) GetChildren() []Handle {
	if !c.has {
		return nil
	}
	return []Handle{c.child}
}

func TestPool_AllocateAndResolve(t *testing.T) {
	p := NewPool(0)
	h, err := p.Allocate(&cell{})
	require.NoError(t, err)
	assert.NotEqual(t, StaticRootHandle, h)

	info, err := p.Resolve(h)
	require.NoError(t, err)
	assert.NotNil(t, info.Obj)
}

func TestPool_ResolveDanglingFails(t *testing.T) {
	p := NewPool(0)
	_, err := p.Resolve(Handle(99))
	assert.Error(t, err)
}

func TestPool_FirstWriteWinsOnStatics(t *testing.T) {
	p := NewPool(0)
	require.NoError(t, p.SetStaticObject("pi", Float(3.14)))
	err := p.SetStaticObject("pi", Float(2.0))
	assert.Error(t, err)

	v, ok := p.GetStatic("pi")
	require.True(t, ok)
	assert.Equal(t, 3.14, v.FloatValue())
}

func TestPool_CollectFreesUnreachable(t *testing.T) {
	p := NewPool(0)
	leaked, err := p.Allocate(&cell{})
	require.NoError(t, err)

	kept, err := p.Allocate(&cell{})
	require.NoError(t, err)
	require.NoError(t, p.SetStaticObject("root", Obj(kept)))

	_ = leaked
	p.Collect(nil)

	_, err = p.Resolve(kept)
	assert.NoError(t, err)
	_, err = p.Resolve(leaked)
	assert.Error(t, err)
}

func TestPool_CollectRespectsPins(t *testing.T) {
	p := NewPool(0)
	h, err := p.Allocate(&cell{})
	require.NoError(t, err)
	require.NoError(t, p.Pin(h))

	p.Collect(nil)

	_, err = p.Resolve(h)
	assert.NoError(t, err, "pinned object must survive GC even if unreachable")
}

func TestPool_CollectTracesChildren(t *testing.T) {
	p := NewPool(0)
	child, err := p.Allocate(&cell{})
	require.NoError(t, err)

	parent, err := p.Allocate(&cell{child: child, has: true})
	require.NoError(t, err)
	require.NoError(t, p.SetStaticObject("parent", Obj(parent)))

	p.Collect(nil)

	_, err = p.Resolve(child)
	assert.NoError(t, err, "child reachable through parent must survive")
}

func TestPool_StaticRootNeverFreed(t *testing.T) {
	p := NewPool(0)
	p.Collect(nil)
	_, err := p.Resolve(StaticRootHandle)
	assert.NoError(t, err)
}

func TestValueContext_Compare(t *testing.T) {
	p := NewPool(0)
	order, ok := Compare(p, Int(1), Int(2))
	require.True(t, ok)
	assert.Equal(t, -1, order)

	_, ok = Compare(p, Int(1), Bool(true))
	assert.False(t, ok)
}
