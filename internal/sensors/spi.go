// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"encoding/binary"
	"fmt"
	"log"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/sensor_node/internal/float16"
	"github.com/relabs-tech/sensor_node/internal/sample"
)

// Sensor head register map. The head exposes the twenty 32-bit IMU words as
// one burst window and the temperatures as 16-bit compact floats.
const (
	regWhoAmI    = 0x75
	regIMUBurst  = 0x3B // 80-byte window, IMU words big-endian
	regTempBase  = 0x60 // three 16-bit compact-float registers
	spiReadFlag  = 0x80
	whoAmIAnswer = 0x71

	imuBurstLen = sample.IMUChannels * 4
)

type spiSource struct {
	conn  spi.Conn
	close func() error
	temps TempReader // optional override for the temperature channels
}

// NewSPISource opens the sensor head on the given SPI device (e.g.
// "/dev/spidev0.0") and verifies its identity. If temps is non-nil it
// replaces the head's temperature registers as the source of the
// temperature channels.
func NewSPISource(spiDev string, temps TempReader) (Source, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}

	port, err := spireg.Open(spiDev)
	if err != nil {
		return nil, fmt.Errorf("sensor head SPI open (%s): %w", spiDev, err)
	}

	conn, err := port.Connect(physic.MegaHertz, spi.Mode3, 8)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("sensor head SPI connect: %w", err)
	}

	src := &spiSource{conn: conn, close: port.Close, temps: temps}

	id, err := src.readRegs(regWhoAmI, 1)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("sensor head identity read: %w", err)
	}
	if id[0] != whoAmIAnswer {
		port.Close()
		return nil, fmt.Errorf("sensor head WHO_AM_I = 0x%02X, want 0x%02X", id[0], whoAmIAnswer)
	}
	log.Printf("sensor head online on %s", spiDev)

	return src, nil
}

// readRegs reads n bytes starting at reg. The head auto-increments the
// register address during a burst.
func (s *spiSource) readRegs(reg byte, n int) ([]byte, error) {
	w := make([]byte, n+1)
	r := make([]byte, n+1)
	w[0] = reg | spiReadFlag
	if err := s.conn.Tx(w, r); err != nil {
		return nil, fmt.Errorf("SPI read 0x%02X: %w", reg, err)
	}
	return r[1:], nil
}

func (s *spiSource) Next() (sample.Sample, error) {
	var out sample.Sample

	burst, err := s.readRegs(regIMUBurst, imuBurstLen)
	if err != nil {
		return out, fmt.Errorf("IMU burst read: %w", err)
	}
	for i := range out.IMU {
		// Registers are big-endian; the wire codec re-orders on Pack.
		out.IMU[i] = binary.BigEndian.Uint32(burst[i*4:])
	}

	if s.temps != nil {
		temps, err := s.temps.ReadTemps()
		if err != nil {
			return out, fmt.Errorf("temperature overlay: %w", err)
		}
		out.Temp = temps
		return out, nil
	}

	raw, err := s.readRegs(regTempBase, sample.TempChannels*2)
	if err != nil {
		return out, fmt.Errorf("temperature register read: %w", err)
	}
	for i := range out.Temp {
		out.Temp[i] = float16.Decode(binary.BigEndian.Uint16(raw[i*2:]))
	}
	return out, nil
}
