// Package float16 converts between the sensor head's compact 16-bit
// floating-point temperature encoding and float64.
//
// Layout (MSB to LSB): 1 sign bit, 5 exponent bits (bias 15), 10 mantissa
// bits. This is IEEE 754 half precision; every half value is exactly
// representable in float64, so Decode never rounds.
package float16

import "math"

const (
	signMask = 0x8000
	expMask  = 0x1F
	mantMask = 0x03FF

	expBias   = 15
	mantBits  = 10
	expFields = 31 // all-ones exponent field: Inf/NaN
)

// Decode expands a raw 16-bit compact float to float64. All 65536 input
// patterns are valid, including signed zero, subnormals, infinities and NaN.
func Decode(raw uint16) float64 {
	sign := raw&signMask != 0
	exp := (raw >> mantBits) & expMask
	mant := raw & mantMask

	var v float64
	switch exp {
	case 0:
		// Subnormal or zero: mant * 2^-24. Copysign keeps the sign bit
		// on zero, so 0x8000 decodes to -0.0.
		v = math.Ldexp(float64(mant), -24)
		if sign {
			v = math.Copysign(v, -1)
		}
		return v
	case expFields:
		if mant != 0 {
			return math.NaN()
		}
		if sign {
			return math.Inf(-1)
		}
		return math.Inf(1)
	default:
		v = math.Ldexp(1.0+float64(mant)/1024.0, int(exp)-expBias)
		if sign {
			v = -v
		}
		return v
	}
}

// Encode narrows a float64 to the compact 16-bit encoding, rounding to
// nearest even. Values above the half-precision range become infinities;
// values below the smallest subnormal become signed zero. Used by the
// hardware temperature path so real readings travel through the same
// representation the mock sensor produces.
func Encode(f float64) uint16 {
	bits := math.Float64bits(f)
	sign := uint16(bits>>48) & signMask

	if math.IsNaN(f) {
		return sign | expFields<<mantBits | 0x0200
	}
	if math.IsInf(f, 0) {
		return sign | expFields<<mantBits
	}

	exp := int(bits>>52)&0x7FF - 1023
	mant52 := bits & 0x000FFFFFFFFFFFFF

	// Overflows half range: round to infinity.
	if exp > 15 {
		return sign | expFields<<mantBits
	}

	if exp >= -14 {
		// Normal half. Keep the top 10 mantissa bits, round to nearest even.
		mant := mant52 >> 42
		rest := mant52 & (1<<42 - 1)
		half := uint64(1) << 41
		if rest > half || (rest == half && mant&1 == 1) {
			mant++
		}
		if mant == 1<<mantBits { // mantissa overflow carries into exponent
			mant = 0
			exp++
			if exp > 15 {
				return sign | expFields<<mantBits
			}
		}
		return sign | uint16(exp+expBias)<<mantBits | uint16(mant)
	}

	// Subnormal half, value = mant * 2^-24.
	if exp < -25 {
		return sign // underflows to signed zero
	}
	// Implicit leading 1 becomes explicit, then shift into place.
	full := mant52 | 1<<52
	shift := uint(52 - (exp + 24))
	mant := full >> shift
	rest := full & (1<<shift - 1)
	half := uint64(1) << (shift - 1)
	if rest > half || (rest == half && mant&1 == 1) {
		mant++
	}
	if mant == 1<<mantBits {
		return sign | 1<<mantBits // rounded up into smallest normal
	}
	return sign | uint16(mant)
}
