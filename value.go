package kipper

import (
	"kipper/internal/heap"
	"kipper/internal/interp"
	"kipper/internal/runtime"
	"kipper/internal/value"
)

// Value is a word-sized script value together with the runtime that can
// interpret it; coercions and predicates read through to that runtime's
// heap.
type Value struct {
	w  value.Word
	rt *runtime.Runtime
}

func wrap(rt *runtime.Runtime, w value.Word) Value { return Value{w: w, rt: rt} }

// Undefined and Null return the two nullary singletons.
func Undefined() Value { return wrap(currentOrPanic(), value.Undefined) }
func Null() Value      { return wrap(currentOrPanic(), value.Null) }

// NewNumber boxes a float64, using the int32 representation when it fits
// exactly (see MakeFit).
func NewNumber(f float64) Value { return wrap(currentOrPanic(), value.MakeFit(f)) }

// NewInt boxes an int32 directly, without MakeFit's float round-trip.
func NewInt(i int32) Value { return wrap(currentOrPanic(), value.FromInt32(i)) }

// NewBoolean boxes a bool.
func NewBoolean(b bool) Value { return wrap(currentOrPanic(), value.FromBool(b)) }

// NewString allocates a heap String from bytes.
func NewString(bytes []byte) (Value, error) {
	rt := currentOrPanic()
	a, err := rt.Heap.AllocateString(bytes, heap.Fresh)
	if err != nil {
		return Value{}, err
	}
	return wrap(rt, value.FromAddr(a)), nil
}

// NewArray allocates a KSArray of n Undefined elements.
func NewArray(n int) (Value, error) {
	rt := currentOrPanic()
	a, err := rt.Heap.AllocateKSArray(uint32(n), heap.Fresh)
	if err != nil {
		return Value{}, err
	}
	return wrap(rt, value.FromAddr(a)), nil
}

// NewObject allocates an empty KSObject.
func NewObject() (Value, error) {
	rt := currentOrPanic()
	a, err := rt.Heap.AllocateKSObject(heap.Fresh)
	if err != nil {
		return Value{}, err
	}
	return wrap(rt, value.FromAddr(a)), nil
}

// NativeFunc is the host-facing function signature for Function::New;
// self is Undefined for a bare (non-dotted) call.
type NativeFunc func(self Value, args []Value) (Value, error)

// NewFunction allocates a Function bound to a host Go function, callable
// from script code under name.
func NewFunction(name string, params []string, fn NativeFunc) (Value, error) {
	rt := currentOrPanic()
	var fnWord value.Word
	err := rt.Interp.DefineNativeFunction(name, params, func(i *interp.Interpreter, self value.Word, args []value.Word) (value.Word, error) {
		hostArgs := make([]Value, len(args))
		for idx, a := range args {
			hostArgs[idx] = wrap(rt, a)
		}
		result, err := fn(wrap(rt, self), hostArgs)
		if err != nil {
			return value.Undefined, err
		}
		return result.w, nil
	})
	if err != nil {
		return Value{}, err
	}
	resolved, _ := rt.Interp.Root.Resolve(mustIntern(rt, name))
	fnWord = resolved
	return wrap(rt, fnWord), nil
}

func mustIntern(rt *runtime.Runtime, name string) value.Addr {
	a, err := rt.Heap.Symbols().Intern([]byte(name))
	if err != nil {
		panic(err)
	}
	return a
}

// --- predicates --------------------------------------------------------

func (v Value) IsNumber() bool    { return value.IsNumber(v.w) || v.isHeapKind(heap.KindHeapNumber) }
func (v Value) IsBoolean() bool   { return value.IsBoolean(v.w) }
func (v Value) IsString() bool    { return v.isHeapKind(heap.KindString) }
func (v Value) IsArray() bool     { return v.isHeapKind(heap.KindKSArray) }
func (v Value) IsNull() bool      { return value.IsNull(v.w) }
func (v Value) IsUndefined() bool { return value.IsUndefined(v.w) }
func (v Value) IsFunction() bool  { return v.isHeapKind(heap.KindFunction) }
func (v Value) IsObject() bool {
	return v.isHeapKind(heap.KindKSObject) || v.isHeapKind(heap.KindKSArray)
}

func (v Value) isHeapKind(k heap.Kind) bool {
	return value.IsHeapObject(v.w) && v.rt.Heap.Kind(value.AsAddr(v.w)) == k
}

// --- coercions -----------------------------------------------------------

func (v Value) ToNumber() Value    { return wrap(v.rt, v.rt.Interp.ToNumber(v.w)) }
func (v Value) ToBoolean() bool    { return v.rt.Interp.ToBoolean(v.w) }
func (v Value) ToString() string   { return string(v.rt.Interp.ToStringBytes(v.w)) }
func (v Value) ToFloat64() float64 { return v.rt.Interp.ToFloat64(v.w) }

// Equals implements the language's strict-with-numeric-coercion equality.
func (v Value) Equals(other Value) bool { return v.rt.Interp.Equals(v.w, other.w) }

// Call invokes v (which must satisfy IsFunction) with self bound as the
// receiver.
func (v Value) Call(self Value, args ...Value) (Value, error) {
	rawArgs := make([]value.Word, len(args))
	for i, a := range args {
		rawArgs[i] = a.w
	}
	w, err := v.rt.Interp.Call(v.rt.Interp.Root, v.w, self.w, rawArgs)
	if err != nil {
		return Value{}, err
	}
	return wrap(v.rt, w), nil
}
