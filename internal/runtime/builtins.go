// Package runtime installs the host-provided surface the evaluator
// itself knows nothing about: the Print and Assert native functions,
// and the "length"/"push" property interceptors on arrays and strings.
package runtime

import (
	"fmt"
	"io"

	"kipper/internal/heap"
	"kipper/internal/interp"
	"kipper/internal/value"
)

// Install registers every builtin on i, writing Print output to out.
func Install(i *interp.Interpreter, out io.Writer) error {
	if err := installPrint(i, out); err != nil {
		return err
	}
	if err := installAssert(i); err != nil {
		return err
	}
	if err := installPush(i); err != nil {
		return err
	}
	installLengthInterceptors(i)
	return nil
}

func installPrint(i *interp.Interpreter, out io.Writer) error {
	return i.DefineNativeFunction("Print", []string{"value"}, func(i *interp.Interpreter, self value.Word, args []value.Word) (value.Word, error) {
		var arg value.Word = value.Undefined
		if len(args) > 0 {
			arg = args[0]
		}
		fmt.Fprintln(out, string(i.ToStringBytes(arg)))
		return value.Undefined, nil
	})
}

// installAssert registers the test-harness convention builtin: a failed
// assertion is surfaced as an ordinary AssertionError rather than exiting
// the process, so an embedder controls how the failure propagates.
func installAssert(i *interp.Interpreter) error {
	return i.DefineNativeFunction("Assert", []string{"cond", "message"}, func(i *interp.Interpreter, self value.Word, args []value.Word) (value.Word, error) {
		var cond value.Word = value.Undefined
		if len(args) > 0 {
			cond = args[0]
		}
		if i.ToBoolean(cond) {
			return value.Undefined, nil
		}
		msg := "assertion failed"
		if len(args) > 1 {
			msg = string(i.ToStringBytes(args[1]))
		}
		return value.Undefined, &interp.RuntimeError{Kind: "AssertionError", Message: msg}
	})
}

// installPush registers the KSArray "push" property as both an
// interceptor (so obj.push resolves to a callable Function) and its
// backing native: it appends to self, the receiver bound by the dotted
// call that read the property in the first place.
func installPush(i *interp.Interpreter) error {
	nameAddr, err := i.Heap.Symbols().Intern([]byte("push"))
	if err != nil {
		return err
	}
	paramsAddr, err := i.Heap.AllocateArray(1, heap.Tenured)
	if err != nil {
		return err
	}
	pAddr, err := i.Heap.Symbols().Intern([]byte("value"))
	if err != nil {
		return err
	}
	i.Heap.ArraySet(paramsAddr, 0, value.FromAddr(pAddr))

	fn := func(i *interp.Interpreter, self value.Word, args []value.Word) (value.Word, error) {
		if !value.IsHeapObject(self) {
			return value.Undefined, nil
		}
		var arg value.Word = value.Undefined
		if len(args) > 0 {
			arg = args[0]
		}
		if err := i.Heap.KSArrayPush(value.AsAddr(self), arg); err != nil {
			return value.Undefined, err
		}
		return value.FromInt32(int32(i.Heap.KSArrayLen(value.AsAddr(self)))), nil
	}
	nativeIdx, err := i.RegisterNative(fn)
	if err != nil {
		return err
	}
	pushFnAddr, err := i.Heap.AllocateFunction(value.FromAddr(nameAddr), value.FromAddr(paramsAddr), true, nativeIdx, heap.Tenured)
	if err != nil {
		return err
	}
	pushFn := value.FromAddr(pushFnAddr)
	i.RegisterInterceptor(heap.KindKSArray, "push", func(_ *interp.Interpreter, _ value.Addr) value.Word {
		return pushFn
	})
	return nil
}

func installLengthInterceptors(i *interp.Interpreter) {
	i.RegisterInterceptor(heap.KindKSArray, "length", func(i *interp.Interpreter, obj value.Addr) value.Word {
		return value.FromInt32(int32(i.Heap.KSArrayLen(obj)))
	})
	i.RegisterInterceptor(heap.KindString, "length", func(i *interp.Interpreter, obj value.Addr) value.Word {
		return value.FromInt32(int32(i.Heap.StringLen(obj)))
	})
}
