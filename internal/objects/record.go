package objects

import (
	"github.com/kristofer/corevm/internal/heap"
)

// DynamicRecord is the minimal "built-in library object" the core needs
// to exercise CreateObject/GetField/SetField/CallField: a prototype
// (Null or another Object) plus a mutable name->Value map. Richer
// collection/record library behavior stays an external collaborator
// (base spec §1); this variant only supplies what the opcode set
// requires. Grounded on the teacher's Instance{Class, Fields}
// (pkg/vm/vm.go), generalized from fixed class fields to an open map.
type DynamicRecord struct {
	heap.Base
	Prototype heap.Value
	Fields    map[string]heap.Value
}

// NewDynamicRecord builds a record with the given prototype, which must
// be Null or Object(_) per the CreateObject opcode's contract.
func NewDynamicRecord(prototype heap.Value) *DynamicRecord {
	return &DynamicRecord{
		Base:      heap.Base{SelfTypeName: "DynamicRecord"},
		Prototype: prototype,
		Fields:    make(map[string]heap.Value),
	}
}

func (r *DynamicRecord) GetChildren() []heap.Handle {
	var out []heap.Handle
	if r.Prototype.Kind() == heap.KindObject {
		out = append(out, r.Prototype.HandleValue())
	}
	for _, v := range r.Fields {
		if v.Kind() == heap.KindObject {
			out = append(out, v.HandleValue())
		}
	}
	return out
}

// GetField looks in this record's own fields first, then walks the
// prototype chain — classic prototypal lookup.
func (r *DynamicRecord) GetField(pool *heap.Pool, name string) (heap.Value, bool) {
	if v, ok := r.Fields[name]; ok {
		return v, true
	}
	if r.Prototype.Kind() != heap.KindObject {
		return heap.Value{}, false
	}
	info, err := pool.Resolve(r.Prototype.HandleValue())
	if err != nil {
		return heap.Value{}, false
	}
	return info.Obj.GetField(pool, name)
}

func (r *DynamicRecord) SetField(name string, value heap.Value) error {
	r.Fields[name] = value
	return nil
}

// HasConstField always reports false: every field on a DynamicRecord
// stays mutable for its lifetime, so the optimizer's const-field
// folding pass never fires on it.
func (r *DynamicRecord) HasConstField(name string) bool { return false }

// CallField dispatches to whatever value is stored under name: a
// callable (native or virtual function) invokes directly, anything else
// fails not-callable.
func (r *DynamicRecord) CallField(name string, exec heap.Exec) (heap.Value, error) {
	v, ok := r.GetField(exec.Pool(), name)
	if !ok {
		return heap.Value{}, NewFieldNotFoundError(name)
	}
	return exec.Invoke(v, exec.CurrentThis(), "", exec.CurrentArguments())
}

func (r *DynamicRecord) ToBool() bool { return true }

func (r *DynamicRecord) ToString() string { return "<DynamicRecord>" }
