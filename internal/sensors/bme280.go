package sensors

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/bmxx80"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/sensor_node/internal/float16"
	"github.com/relabs-tech/sensor_node/internal/sample"
)

type bmeTempReader struct {
	mu  sync.Mutex
	dev *bmxx80.Dev
}

// NewBME280TempReader opens a BME280 on the given SPI device and serves the
// three temperature channels from it. The reading is narrowed through the
// compact 16-bit encoding before being widened again, so the channels carry
// exactly the precision the sensor head's own registers would.
func NewBME280TempReader(spiDev string) (TempReader, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}

	port, err := spireg.Open(spiDev)
	if err != nil {
		return nil, fmt.Errorf("BME280 SPI open (%s): %w", spiDev, err)
	}

	dev, err := bmxx80.NewSPI(port, &bmxx80.DefaultOpts)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("BME280 init: %w", err)
	}

	return &bmeTempReader{dev: dev}, nil
}

func (b *bmeTempReader) ReadTemps() ([sample.TempChannels]float64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var temps [sample.TempChannels]float64

	var e physic.Env
	if err := b.dev.Sense(&e); err != nil {
		return temps, fmt.Errorf("BME280 sense: %w", err)
	}

	c := float16.Decode(float16.Encode(e.Temperature.Celsius()))
	for i := range temps {
		temps[i] = c
	}
	return temps, nil
}
