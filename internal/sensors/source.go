// Package sensors provides the sample sources the producer task reads from:
// a mock source backed by a pseudo-random generator and an SPI source backed
// by the real sensor head.
package sensors

import "github.com/relabs-tech/sensor_node/internal/sample"

// Source is anything that can produce sensor samples over time.
type Source interface {
	Next() (sample.Sample, error)
}

// TempReader supplies the three temperature channels independently of the
// IMU path, so an external probe can replace the sensor head's registers.
type TempReader interface {
	ReadTemps() ([sample.TempChannels]float64, error)
}
