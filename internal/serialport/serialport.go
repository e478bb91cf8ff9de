package serialport

import (
	"fmt"

	"go.bug.st/serial"

	"github.com/muurk/sabridge/internal/config"
)

// Open opens the configured serial port.
func Open(cfg config.Serial) (serial.Port, error) {
	parity, err := parityMode(cfg.Parity)
	if err != nil {
		return nil, err
	}
	stopBits, err := stopBitsMode(cfg.StopBits)
	if err != nil {
		return nil, err
	}

	mode := &serial.Mode{
		BaudRate: cfg.Baud,
		DataBits: cfg.DataBits,
		Parity:   parity,
		StopBits: stopBits,
	}
	port, err := serial.Open(cfg.Port, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.Port, err)
	}
	return port, nil
}

func parityMode(p string) (serial.Parity, error) {
	switch p {
	case "", "N":
		return serial.NoParity, nil
	case "E":
		return serial.EvenParity, nil
	case "O":
		return serial.OddParity, nil
	case "S":
		return serial.SpaceParity, nil
	case "M":
		return serial.MarkParity, nil
	default:
		return serial.NoParity, fmt.Errorf("unsupported parity %q", p)
	}
}

func stopBitsMode(s float64) (serial.StopBits, error) {
	switch s {
	case 0, 1:
		return serial.OneStopBit, nil
	case 1.5:
		return serial.OnePointFiveStopBits, nil
	case 2:
		return serial.TwoStopBits, nil
	default:
		return serial.OneStopBit, fmt.Errorf("unsupported stop bits %v", s)
	}
}
