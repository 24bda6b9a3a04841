package value

import (
	"math"
	"testing"
)

func TestPredicatesAreExclusive(t *testing.T) {
	words := []Word{
		FromFloat64(3.5),
		FromFloat64(math.NaN()),
		FromInt32(-7),
		True,
		False,
		Null,
		Undefined,
		FromAddr(42),
	}
	for _, w := range words {
		n := 0
		for _, pred := range []bool{IsDouble(w), IsInt32(w), IsBoolean(w), IsNull(w), IsUndefined(w), IsHeapObject(w)} {
			if pred {
				n++
			}
		}
		if n != 1 {
			t.Fatalf("word %#x matched %d predicates, want exactly 1", uint64(w), n)
		}
	}
}

func TestFloatRoundTrip(t *testing.T) {
	for _, f := range []float64{0, 1, -1, 3.14159, math.Inf(1), math.Inf(-1)} {
		w := FromFloat64(f)
		if !IsDouble(w) {
			t.Fatalf("FromFloat64(%v) not IsDouble", f)
		}
		if got := AsFloat64(w); got != f {
			t.Fatalf("round-trip %v got %v", f, got)
		}
	}
}

func TestNaNIsCanonicalized(t *testing.T) {
	a := FromFloat64(math.NaN())
	b := FromFloat64(math.Float64frombits(0x7ff8000000000001))
	if a != b {
		t.Fatalf("two NaN payloads produced different words: %#x vs %#x", uint64(a), uint64(b))
	}
}

func TestInt32RoundTrip(t *testing.T) {
	for _, i := range []int32{0, 1, -1, math.MaxInt32, math.MinInt32} {
		w := FromInt32(i)
		if !IsInt32(w) {
			t.Fatalf("FromInt32(%d) not IsInt32", i)
		}
		if got := AsInt32(w); got != i {
			t.Fatalf("round-trip %d got %d", i, got)
		}
	}
}

func TestHeapRefMasksTo48Bits(t *testing.T) {
	w := FromAddr(0xdeadbeef)
	if !IsHeapObject(w) {
		t.Fatal("FromAddr not IsHeapObject")
	}
	if got := AsAddr(w); got != 0xdeadbeef {
		t.Fatalf("got addr %#x", uint32(got))
	}
}

func TestMakeFitKeepsExactIntegersAsInt32(t *testing.T) {
	w := MakeFit(3)
	if !IsInt32(w) || AsInt32(w) != 3 {
		t.Fatalf("MakeFit(3) = %#x, want int32 3", uint64(w))
	}
}

func TestMakeFitKeepsFractionalAsDouble(t *testing.T) {
	w := MakeFit(1.5)
	if !IsDouble(w) {
		t.Fatalf("MakeFit(1.5) should stay a double, got %#x", uint64(w))
	}
}

func TestMakeFitOutOfInt32RangeStaysDouble(t *testing.T) {
	w := MakeFit(1 << 40)
	if !IsDouble(w) {
		t.Fatalf("MakeFit(2^40) should stay a double, got %#x", uint64(w))
	}
}

func TestBitIdenticalWordsAreEqual(t *testing.T) {
	if FromInt32(5) != FromInt32(5) {
		t.Fatal("identical int32 words should compare equal")
	}
	if True == False {
		t.Fatal("True and False must differ")
	}
}
