package smoothing

import (
	"math"
	"testing"
)

func TestVector2UnitAndLength(t *testing.T) {
	v := NewVector2(10)
	if _, _, _, ok := v.UnitAndLength(); ok {
		t.Fatal("empty ring should report ok=false")
	}

	v.Push(3, 4)
	ux, uy, length, ok := v.UnitAndLength()
	if !ok {
		t.Fatal("expected ok=true after one sample")
	}
	if math.Abs(length-5) > 1e-9 {
		t.Errorf("length = %v, want 5", length)
	}
	if math.Abs(ux-0.6) > 1e-9 || math.Abs(uy-0.8) > 1e-9 {
		t.Errorf("unit = (%v, %v), want (0.6, 0.8)", ux, uy)
	}
}

func TestVector2ZeroLength(t *testing.T) {
	v := NewVector2(4)
	v.Push(0, 0)
	ux, uy, length, ok := v.UnitAndLength()
	if !ok {
		t.Fatal("expected ok=true")
	}
	if ux != 0 || uy != 0 || length != 0 {
		t.Errorf("zero-length sample should report (0,0,0), got (%v,%v,%v)", ux, uy, length)
	}
}
