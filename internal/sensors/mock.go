package sensors

import (
	"math/rand"

	"github.com/relabs-tech/sensor_node/internal/float16"
	"github.com/relabs-tech/sensor_node/internal/sample"
)

type mockSource struct {
	rng *rand.Rand
}

// NewMockSource creates a source that synthesizes samples from rng: one
// uniform uint32 per IMU channel and one uniform 16-bit compact float per
// temperature channel, decoded at generation time. The generator is injected
// so tests control seeding; it must not be shared with other goroutines.
func NewMockSource(rng *rand.Rand) Source {
	return &mockSource{rng: rng}
}

func (m *mockSource) Next() (sample.Sample, error) {
	var s sample.Sample
	for i := range s.IMU {
		s.IMU[i] = m.rng.Uint32()
	}
	for i := range s.Temp {
		raw := uint16(m.rng.Uint32())
		s.Temp[i] = float16.Decode(raw)
	}
	return s, nil
}
