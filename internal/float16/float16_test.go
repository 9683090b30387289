package float16

import (
	"math"
	"testing"
)

func TestDecodeKnownValues(t *testing.T) {
	cases := []struct {
		raw  uint16
		want float64
	}{
		{0x0000, 0.0},
		{0x3C00, 1.0},
		{0xBC00, -1.0},
		{0x3E00, 1.5},
		{0x4000, 2.0},
		{0x0001, math.Ldexp(1, -24)}, // smallest subnormal
		{0x03FF, math.Ldexp(1023, -24)},
		{0x0400, math.Ldexp(1, -14)}, // smallest normal
		{0x7BFF, 65504.0},            // largest normal
		{0x3555, math.Ldexp(1.0+341.0/1024.0, -2)},
	}

	for _, c := range cases {
		got := Decode(c.raw)
		if got != c.want {
			t.Errorf("Decode(0x%04X) = %v, want %v", c.raw, got, c.want)
		}
	}
}

func TestDecodeSignedZero(t *testing.T) {
	pos := Decode(0x0000)
	neg := Decode(0x8000)

	if pos != 0 || neg != 0 {
		t.Fatalf("zero patterns decoded to %v and %v", pos, neg)
	}
	if math.Signbit(pos) {
		t.Error("Decode(0x0000) has the sign bit set")
	}
	if !math.Signbit(neg) {
		t.Error("Decode(0x8000) lost the sign bit")
	}
}

func TestDecodeSpecials(t *testing.T) {
	if got := Decode(0x7C00); !math.IsInf(got, 1) {
		t.Errorf("Decode(0x7C00) = %v, want +Inf", got)
	}
	if got := Decode(0xFC00); !math.IsInf(got, -1) {
		t.Errorf("Decode(0xFC00) = %v, want -Inf", got)
	}
	if got := Decode(0x7E00); !math.IsNaN(got) {
		t.Errorf("Decode(0x7E00) = %v, want NaN", got)
	}
	// Any nonzero mantissa with all-ones exponent is NaN, sign irrelevant.
	if got := Decode(0xFC01); !math.IsNaN(got) {
		t.Errorf("Decode(0xFC01) = %v, want NaN", got)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	// Every finite half value survives Encode(Decode(raw)) exactly.
	for raw := 0; raw < 0x10000; raw++ {
		v := Decode(uint16(raw))
		if math.IsNaN(v) {
			if got := Decode(Encode(v)); !math.IsNaN(got) {
				t.Fatalf("NaN did not survive round trip (raw 0x%04X)", raw)
			}
			continue
		}
		back := Encode(v)
		if back != uint16(raw) {
			t.Fatalf("Encode(Decode(0x%04X)) = 0x%04X", raw, back)
		}
	}
}

func TestEncodeRounding(t *testing.T) {
	cases := []struct {
		in   float64
		want uint16
	}{
		{0.0, 0x0000},
		{math.Copysign(0, -1), 0x8000},
		{1.0, 0x3C00},
		{65504.0, 0x7BFF},
		{65520.0, 0x7C00},  // above max normal rounds to +Inf
		{-65520.0, 0xFC00}, // and keeps its sign
		{1e-9, 0x0000},     // below subnormal range flushes to zero
		{math.Inf(1), 0x7C00},
		{math.Inf(-1), 0xFC00},
		// 1.0 + 2^-11 sits exactly between 0x3C00 and 0x3C01: even wins.
		{1.0 + math.Ldexp(1, -11), 0x3C00},
		// 1.0 + 3*2^-11 sits between 0x3C01 and 0x3C02: even wins again.
		{1.0 + 3*math.Ldexp(1, -11), 0x3C02},
	}

	for _, c := range cases {
		if got := Encode(c.in); got != c.want {
			t.Errorf("Encode(%v) = 0x%04X, want 0x%04X", c.in, got, c.want)
		}
	}
}

func BenchmarkDecode(b *testing.B) {
	var sink float64
	for i := 0; i < b.N; i++ {
		sink = Decode(uint16(i))
	}
	_ = sink
}
