package comms

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.bug.st/serial"
)

// Port is the serial channel the session drives. It is satisfied by
// go.bug.st/serial.Port; tests substitute an in-memory implementation.
type Port interface {
	Read(p []byte) (n int, err error)
	Write(p []byte) (n int, err error)
	SetReadTimeout(t time.Duration) error
	Close() error
}

// Session owns exclusive access to the serial channel. Every command is one
// write/poll/read round trip executed under a single lock, so at most one
// command is in flight at a time and commands observe strict program order.
type Session struct {
	mu      sync.Mutex
	port    Port
	recv    [recvSize]byte
	timeout time.Duration
	log     zerolog.Logger
}

// NewSession wraps an already-open serial channel. A non-positive timeout
// selects the protocol's documented 3.5 s worst case.
func NewSession(port Port, timeout time.Duration, logger zerolog.Logger) *Session {
	if timeout <= 0 {
		timeout = ResponseTimeout
	}
	return &Session{
		port:    port,
		timeout: timeout,
		log:     logger,
	}
}

// Open opens the OS serial port at the protocol's fixed line settings
// (9600 baud, 8 data bits, one stop bit, no parity).
func Open(path string, timeout time.Duration, logger zerolog.Logger) (*Session, error) {
	mode := &serial.Mode{
		BaudRate: BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open port %s: %w", path, err)
	}

	// Short read timeout so the receive loop polls instead of blocking on a
	// reply the controller has not flushed yet.
	if err := port.SetReadTimeout(pollInterval); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to set read timeout on %s: %w", path, err)
	}

	return NewSession(port, timeout, logger), nil
}

// Close releases the serial channel.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port.Close()
}

// write sends one complete command frame. The caller must hold s.mu.
func (s *Session) write(frame []byte) error {
	s.log.Debug().Hex("tx", frame).Msg("serial transmit")

	n, err := s.port.Write(frame)
	if err != nil {
		return fmt.Errorf("write to port: %w", err)
	}
	if n != len(frame) {
		return fmt.Errorf("short write: %d of %d bytes", n, len(frame))
	}
	return nil
}

// read polls for the controller's reply and performs one data-bearing read
// into the receive buffer. The controller does not reply synchronously: it
// buffers the whole response and flushes it some 10-100 ms later, so a
// zero-byte read only means the reply has not arrived yet. The loop is
// bounded by the session deadline rather than spinning forever.
//
// Every response must end with the '#' terminator; a reply that does not is
// rejected before any payload is interpreted. The caller must hold s.mu.
func (s *Session) read() (int, error) {
	deadline := time.Now().Add(s.timeout)

	for {
		n, err := s.port.Read(s.recv[:])
		if err != nil {
			return 0, fmt.Errorf("read from port: %w", err)
		}
		if n > 0 {
			s.log.Debug().Hex("rx", s.recv[:n]).Msg("serial receive")
			if s.recv[n-1] != Terminator {
				return 0, fmt.Errorf("%w: missing terminator in % X", ErrMalformedResponse, s.recv[:n])
			}
			return n, nil
		}
		if time.Now().After(deadline) {
			return 0, ErrTimeout
		}
		time.Sleep(pollInterval)
	}
}
