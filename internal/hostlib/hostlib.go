// Package hostlib is a small demonstration standard library: a handful
// of the teacher's pkg/vm/primitives.go stdlib primitives (hashing,
// encoding, compression) re-wrapped as objects.NativeFunction values.
//
// This is an external collaborator in the base spec's sense (§1): the
// core packages (heap, opcode, frame, objects, optimizer, vm) never
// import hostlib. A host program wires these natives in as statics
// before running user code, exactly the way the base spec's §6 "Register
// a global" external interface is meant to be used.
package hostlib

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"github.com/kristofer/corevm/internal/heap"
	"github.com/kristofer/corevm/internal/objects"
)

// argString pulls the n-th native-function argument as a Go string,
// dispatching through heap.ToStr so a String object or a raw scalar both
// work as input.
func argString(pool *heap.Pool, args []heap.Value, n int) (string, error) {
	if n >= len(args) {
		return "", fmt.Errorf("hostlib: expected at least %d argument(s), got %d", n+1, len(args))
	}
	return heap.ToStr(pool, args[n])
}

func pushString(exec heap.Exec, s string) (heap.Value, error) {
	h, err := exec.Pool().Allocate(objects.NewString(s))
	if err != nil {
		return heap.Value{}, err
	}
	return heap.Obj(h), nil
}

// Sha256Hex hashes its single string argument and returns its hex digest.
func Sha256Hex() *objects.NativeFunction {
	return objects.NewNativeFunction("sha256_hex", func(exec heap.Exec, this heap.Value, args []heap.Value) (heap.Value, error) {
		s, err := argString(exec.Pool(), args, 0)
		if err != nil {
			return heap.Value{}, err
		}
		sum := sha256.Sum256([]byte(s))
		return pushString(exec, fmt.Sprintf("%x", sum))
	})
}

// Sha512Hex hashes its single string argument and returns its hex digest.
func Sha512Hex() *objects.NativeFunction {
	return objects.NewNativeFunction("sha512_hex", func(exec heap.Exec, this heap.Value, args []heap.Value) (heap.Value, error) {
		s, err := argString(exec.Pool(), args, 0)
		if err != nil {
			return heap.Value{}, err
		}
		sum := sha512.Sum512([]byte(s))
		return pushString(exec, fmt.Sprintf("%x", sum))
	})
}

// Base64Encode base64-encodes its single string argument.
func Base64Encode() *objects.NativeFunction {
	return objects.NewNativeFunction("base64_encode", func(exec heap.Exec, this heap.Value, args []heap.Value) (heap.Value, error) {
		s, err := argString(exec.Pool(), args, 0)
		if err != nil {
			return heap.Value{}, err
		}
		return pushString(exec, base64.StdEncoding.EncodeToString([]byte(s)))
	})
}

// Base64Decode decodes its single base64 string argument.
func Base64Decode() *objects.NativeFunction {
	return objects.NewNativeFunction("base64_decode", func(exec heap.Exec, this heap.Value, args []heap.Value) (heap.Value, error) {
		s, err := argString(exec.Pool(), args, 0)
		if err != nil {
			return heap.Value{}, err
		}
		raw, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return heap.Value{}, fmt.Errorf("hostlib: base64_decode: %w", err)
		}
		return pushString(exec, string(raw))
	})
}

// GzipCompress gzip-compresses its single string argument, returning the
// result base64-encoded so it stays a printable String value.
func GzipCompress() *objects.NativeFunction {
	return objects.NewNativeFunction("gzip_compress", func(exec heap.Exec, this heap.Value, args []heap.Value) (heap.Value, error) {
		s, err := argString(exec.Pool(), args, 0)
		if err != nil {
			return heap.Value{}, err
		}
		var buf bytes.Buffer
		w := gzip.NewWriter(&buf)
		if _, err := w.Write([]byte(s)); err != nil {
			return heap.Value{}, err
		}
		if err := w.Close(); err != nil {
			return heap.Value{}, err
		}
		return pushString(exec, base64.StdEncoding.EncodeToString(buf.Bytes()))
	})
}

// GzipDecompress reverses GzipCompress.
func GzipDecompress() *objects.NativeFunction {
	return objects.NewNativeFunction("gzip_decompress", func(exec heap.Exec, this heap.Value, args []heap.Value) (heap.Value, error) {
		s, err := argString(exec.Pool(), args, 0)
		if err != nil {
			return heap.Value{}, err
		}
		raw, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return heap.Value{}, fmt.Errorf("hostlib: gzip_decompress: %w", err)
		}
		r, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return heap.Value{}, err
		}
		defer r.Close()
		out, err := io.ReadAll(r)
		if err != nil {
			return heap.Value{}, err
		}
		return pushString(exec, string(out))
	})
}

// JSONEncodeFields renders a DynamicRecord's own fields (scalars only;
// nested objects render as their ToString) as a JSON object string.
func JSONEncodeFields() *objects.NativeFunction {
	return objects.NewNativeFunction("json_encode_fields", func(exec heap.Exec, this heap.Value, args []heap.Value) (heap.Value, error) {
		if len(args) == 0 || args[0].Kind() != heap.KindObject {
			return heap.Value{}, fmt.Errorf("hostlib: json_encode_fields: expected an object argument")
		}
		rec, err := heap.MustResolveTyped[*objects.DynamicRecord](exec.Pool(), args[0].HandleValue())
		if err != nil {
			return heap.Value{}, err
		}
		out := make(map[string]any, len(rec.Fields))
		for name, v := range rec.Fields {
			out[name] = scalarJSON(exec.Pool(), v)
		}
		raw, err := json.Marshal(out)
		if err != nil {
			return heap.Value{}, err
		}
		return pushString(exec, string(raw))
	})
}

func scalarJSON(pool *heap.Pool, v heap.Value) any {
	switch v.Kind() {
	case heap.KindNull:
		return nil
	case heap.KindBool:
		return v.BoolValue()
	case heap.KindInt:
		return v.IntValue()
	case heap.KindFloat:
		return v.FloatValue()
	default:
		return heap.ToString(pool, v)
	}
}

// RegisterAll binds every native under its own name as a static on pool,
// the convenience a host CLI uses to wire the whole demo library in one
// call.
func RegisterAll(pool *heap.Pool) error {
	natives := []*objects.NativeFunction{
		Sha256Hex(), Sha512Hex(),
		Base64Encode(), Base64Decode(),
		GzipCompress(), GzipDecompress(),
		JSONEncodeFields(),
	}
	for _, n := range natives {
		h, err := pool.Allocate(n)
		if err != nil {
			return err
		}
		if err := pool.SetStaticObject(n.Name, heap.Obj(h)); err != nil {
			return err
		}
	}
	return nil
}
