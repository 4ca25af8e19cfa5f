package pad

import (
	"fmt"
	"io"
	"log/slog"

	"go.bug.st/serial"
)

var (
	listSerialPorts = serial.GetPortsList
	openSerialPort  = func(name string, mode *serial.Mode) (io.WriteCloser, error) {
		return serial.Open(name, mode)
	}
)

// SerialBackend sends framed reports to a microcontroller that presents
// itself to the host as a USB gamepad.
type SerialBackend struct {
	device string
	baud   int
	logger *slog.Logger

	port io.WriteCloser
	seq  byte
}

// NewSerial returns a backend for the named serial device.
func NewSerial(device string, baud int, logger *slog.Logger) *SerialBackend {
	if logger == nil {
		logger = slog.Default()
	}
	return &SerialBackend{device: device, baud: baud, logger: logger}
}

func (s *SerialBackend) Name() string { return "serial:" + s.device }

// Available reports whether the device is currently enumerated.
func (s *SerialBackend) Available() bool {
	ports, err := listSerialPorts()
	if err != nil {
		s.logger.Debug("serial: list ports failed", "err", err)
		return false
	}
	for _, p := range ports {
		if p == s.device {
			return true
		}
	}
	return false
}

// Open opens the serial device at the configured baud rate.
func (s *SerialBackend) Open() error {
	p, err := openSerialPort(s.device, &serial.Mode{BaudRate: s.baud})
	if err != nil {
		return fmt.Errorf("serial %s: %w", s.device, err)
	}
	s.port = p
	s.seq = 0
	s.logger.Info("serial: port opened", "device", s.device, "baud", s.baud)
	return nil
}

// Write encodes r and writes it as one frame.
func (s *SerialBackend) Write(r Report) error {
	if s.port == nil {
		return fmt.Errorf("serial %s: %w", s.device, ErrNotOpen)
	}
	f := FrameFromReport(r, s.seq)
	data := f.Encode()
	n, err := s.port.Write(data)
	if err != nil {
		return err
	}
	s.logger.Debug("serial: frame sent", "bytes", n, "seq", f.Seq, "buttons", r.Buttons)
	s.seq++
	return nil
}

// Close closes the underlying serial port.
func (s *SerialBackend) Close() error {
	if s.port == nil {
		return nil
	}
	s.logger.Info("serial: closing port", "device", s.device)
	err := s.port.Close()
	s.port = nil
	return err
}
