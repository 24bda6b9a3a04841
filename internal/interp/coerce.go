package interp

import (
	"math"
	"strconv"

	"kipper/internal/heap"
	"kipper/internal/value"
)

func (i *Interpreter) isString(w value.Word) bool {
	return value.IsHeapObject(w) && i.Heap.Kind(value.AsAddr(w)) == heap.KindString
}

func (i *Interpreter) isHeapNumber(w value.Word) bool {
	return value.IsHeapObject(w) && i.Heap.Kind(value.AsAddr(w)) == heap.KindHeapNumber
}

func (i *Interpreter) isNumeric(w value.Word) bool {
	return value.IsNumber(w) || i.isHeapNumber(w)
}

// ToFloat64 coerces any numeric representation (int32, double, or boxed
// HeapNumber) to a float64; non-numeric words yield NaN, matching the
// language's "coerce both to double" arithmetic rule.
func (i *Interpreter) ToFloat64(w value.Word) float64 {
	switch {
	case value.IsDouble(w):
		return value.AsFloat64(w)
	case value.IsInt32(w):
		return float64(value.AsInt32(w))
	case i.isHeapNumber(w):
		return float64(i.Heap.HeapNumberValue(value.AsAddr(w)))
	default:
		return math.NaN()
	}
}

// ToBoolean coerces w per the usual dynamic-language truthiness rule:
// 0, NaN, "", null, undefined, and false are falsy; everything else,
// including empty arrays and objects, is truthy.
func (i *Interpreter) ToBoolean(w value.Word) bool {
	switch {
	case w == value.True:
		return true
	case w == value.False, w == value.Null, w == value.Undefined:
		return false
	case value.IsInt32(w):
		return value.AsInt32(w) != 0
	case value.IsDouble(w):
		f := value.AsFloat64(w)
		return f != 0 && !math.IsNaN(f)
	case i.isString(w):
		return i.Heap.StringLen(value.AsAddr(w)) > 0
	case i.isHeapNumber(w):
		return i.Heap.HeapNumberValue(value.AsAddr(w)) != 0
	default:
		return true
	}
}

// ToNumber coerces w to a numeric Word, per MakeFit's int32/double split.
func (i *Interpreter) ToNumber(w value.Word) value.Word {
	switch {
	case i.isNumeric(w):
		if value.IsHeapObject(w) {
			return value.MakeFit(float64(i.Heap.HeapNumberValue(value.AsAddr(w))))
		}
		return w
	case w == value.True:
		return value.FromInt32(1)
	case w == value.False, w == value.Null:
		return value.FromInt32(0)
	case w == value.Undefined:
		return value.FromFloat64(math.NaN())
	case i.isString(w):
		s := string(i.Heap.StringBytes(value.AsAddr(w)))
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return value.FromFloat64(math.NaN())
		}
		return value.MakeFit(f)
	default:
		return value.FromFloat64(math.NaN())
	}
}

// ToStringBytes renders w the way the language's "+" operator and Print
// builtin do, without allocating a heap String.
func (i *Interpreter) ToStringBytes(w value.Word) []byte {
	switch {
	case i.isString(w):
		return i.Heap.StringBytes(value.AsAddr(w))
	case value.IsInt32(w):
		return []byte(strconv.FormatInt(int64(value.AsInt32(w)), 10))
	case value.IsDouble(w):
		return []byte(strconv.FormatFloat(value.AsFloat64(w), 'g', -1, 64))
	case i.isHeapNumber(w):
		return []byte(strconv.FormatInt(i.Heap.HeapNumberValue(value.AsAddr(w)), 10))
	case w == value.True:
		return []byte("true")
	case w == value.False:
		return []byte("false")
	case w == value.Null:
		return []byte("null")
	case w == value.Undefined:
		return []byte("undefined")
	case value.IsHeapObject(w):
		switch i.Heap.Kind(value.AsAddr(w)) {
		case heap.KindKSArray:
			return []byte("[object Array]")
		case heap.KindFunction:
			return []byte("[object Function]")
		default:
			return []byte("[object Object]")
		}
	default:
		return []byte("undefined")
	}
}

// ToStringWord coerces w to a heap String word, allocating a new one
// unless w is already a String.
func (i *Interpreter) ToStringWord(w value.Word) (value.Word, error) {
	if i.isString(w) {
		return w, nil
	}
	a, err := i.Heap.AllocateString(i.ToStringBytes(w), heap.Fresh)
	if err != nil {
		return value.Undefined, err
	}
	return value.FromAddr(a), nil
}

// Equals implements strict value equality with numeric
// cross-representation equality: int32, double, and HeapNumber compare
// by numeric value; strings compare by byte content; everything else
// (booleans, null, undefined, heap object identity) compares by word.
func (i *Interpreter) Equals(a, b value.Word) bool {
	if i.isNumeric(a) && i.isNumeric(b) {
		return i.ToFloat64(a) == i.ToFloat64(b)
	}
	if i.isString(a) && i.isString(b) {
		return string(i.Heap.StringBytes(value.AsAddr(a))) == string(i.Heap.StringBytes(value.AsAddr(b)))
	}
	return a == b
}
