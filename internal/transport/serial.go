package transport

import (
	"fmt"
	"io"
	"log"

	serial "github.com/jacobsa/go-serial/serial"
)

// Serial frame layout: two sync bytes, one length byte, then the payload.
// PackedSize fits a single length byte with room to spare.
const (
	frameSync0 = 0xA5
	frameSync1 = 0x5A
)

type serialNotifier struct {
	port io.WriteCloser
}

// NewSerialNotifier opens the UART and streams length-framed packed samples
// out of it. The line has no backchannel, so a serial link is considered
// subscribed as long as the port is open; delivery failures are write
// errors.
func NewSerialNotifier(portName string, baudRate int) (Notifier, error) {
	opts := serial.OpenOptions{
		PortName:        portName,
		BaudRate:        uint(baudRate),
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
		ParityMode:      serial.PARITY_NONE,
	}

	port, err := serial.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("serial open %s: %w", portName, err)
	}
	log.Printf("transport: serial port opened on %s at %d baud", portName, baudRate)

	return &serialNotifier{port: port}, nil
}

func (n *serialNotifier) Ready() bool {
	return true
}

func (n *serialNotifier) Notify(payload []byte) error {
	if len(payload) > 0xFF {
		return fmt.Errorf("serial frame payload too large: %d bytes", len(payload))
	}

	frame := make([]byte, 0, len(payload)+3)
	frame = append(frame, frameSync0, frameSync1, byte(len(payload)))
	frame = append(frame, payload...)

	if _, err := n.port.Write(frame); err != nil {
		return fmt.Errorf("serial write: %w", err)
	}
	return nil
}

func (n *serialNotifier) Close() error {
	return n.port.Close()
}
