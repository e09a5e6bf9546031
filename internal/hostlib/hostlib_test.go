package hostlib

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kristofer/corevm/internal/heap"
	"github.com/kristofer/corevm/internal/objects"
	"github.com/kristofer/corevm/internal/vm"
)

func TestHostlib_Sha256AndBase64RoundTrip(t *testing.T) {
	pool := heap.NewPool(0)
	ex := vm.New(pool, 0, zerolog.Nop())
	require.NoError(t, RegisterAll(pool))

	call := func(name string, arg string) heap.Value {
		target, ok := pool.GetStatic(name)
		require.True(t, ok)
		v, err := ex.Invoke(target, heap.Null(), "", []heap.Value{argStringValue(t, pool, arg)})
		require.NoError(t, err)
		return v
	}

	sum := call("sha256_hex", "hello")
	s, err := heap.ToStr(pool, sum)
	require.NoError(t, err)
	assert.Len(t, s, 64)

	encoded := call("base64_encode", "hello world")
	decoded := call("base64_decode", mustStr(t, pool, encoded))
	assert.Equal(t, "hello world", mustStr(t, pool, decoded))
}

func TestHostlib_GzipRoundTrip(t *testing.T) {
	pool := heap.NewPool(0)
	ex := vm.New(pool, 0, zerolog.Nop())
	require.NoError(t, RegisterAll(pool))

	compressTarget, _ := pool.GetStatic("gzip_compress")
	decompressTarget, _ := pool.GetStatic("gzip_decompress")

	compressed, err := ex.Invoke(compressTarget, heap.Null(), "", []heap.Value{argStringValue(t, pool, "payload data")})
	require.NoError(t, err)
	restored, err := ex.Invoke(decompressTarget, heap.Null(), "", []heap.Value{compressed})
	require.NoError(t, err)
	assert.Equal(t, "payload data", mustStr(t, pool, restored))
}

func argStringValue(t *testing.T, pool *heap.Pool, s string) heap.Value {
	t.Helper()
	h, err := pool.Allocate(objects.NewString(s))
	require.NoError(t, err)
	return heap.Obj(h)
}

func mustStr(t *testing.T, pool *heap.Pool, v heap.Value) string {
	t.Helper()
	s, err := heap.ToStr(pool, v)
	require.NoError(t, err)
	return s
}
