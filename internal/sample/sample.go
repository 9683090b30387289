// Package sample defines the sensor sample value type and its packed wire
// encoding.
package sample

import (
	"encoding/binary"
	"fmt"
	"math"
)

const (
	// IMUChannels is the number of raw inertial channels per sample.
	IMUChannels = 20
	// TempChannels is the number of decoded temperature channels per sample.
	TempChannels = 3

	// PackedSize is the wire size of one packed sample:
	// 20 uint32 IMU words followed by 3 float64 temperatures, no padding.
	PackedSize = IMUChannels*4 + TempChannels*8
)

// Sample is one sensor reading. It is a plain value, copied by value on
// every transfer; it has no identity beyond its position in the cache.
type Sample struct {
	IMU  [IMUChannels]uint32
	Temp [TempChannels]float64
}

// Pack serializes the sample into its flat wire layout: IMU words then
// temperatures, in declared order, little-endian, without padding. The
// original firmware shipped the packed struct straight off a little-endian
// Cortex-M, so the wire order is pinned to little-endian here.
func (s *Sample) Pack() [PackedSize]byte {
	var buf [PackedSize]byte
	off := 0
	for _, w := range s.IMU {
		binary.LittleEndian.PutUint32(buf[off:], w)
		off += 4
	}
	for _, t := range s.Temp {
		binary.LittleEndian.PutUint64(buf[off:], math.Float64bits(t))
		off += 8
	}
	return buf
}

// Unpack parses a packed sample. The input must be exactly PackedSize bytes.
func Unpack(data []byte) (Sample, error) {
	var s Sample
	if len(data) != PackedSize {
		return s, fmt.Errorf("packed sample is %d bytes, want %d", len(data), PackedSize)
	}
	off := 0
	for i := range s.IMU {
		s.IMU[i] = binary.LittleEndian.Uint32(data[off:])
		off += 4
	}
	for i := range s.Temp {
		s.Temp[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[off:]))
		off += 8
	}
	return s, nil
}
