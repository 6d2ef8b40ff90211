package comms

import "fmt"

// SendCommand writes a direct hand-controller command (single ASCII opcode
// plus optional payload) and returns the reply payload with the terminator
// stripped. The payload may be empty for commands that only acknowledge.
func (s *Session) SendCommand(op byte, args []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	frame := make([]byte, 0, 1+len(args))
	frame = append(frame, op)
	frame = append(frame, args...)

	if err := s.write(frame); err != nil {
		return nil, err
	}

	n, err := s.read()
	if err != nil {
		return nil, err
	}

	// The receive buffer is reused across calls; hand back a copy.
	payload := make([]byte, n-1)
	copy(payload, s.recv[:n-1])
	return payload, nil
}

// SendCommandExpect is SendCommand with the opcode's documented payload
// length enforced.
func (s *Session) SendCommandExpect(op byte, args []byte, want int) ([]byte, error) {
	payload, err := s.SendCommand(op, args)
	if err != nil {
		return nil, err
	}
	if len(payload) != want {
		return nil, fmt.Errorf("%w: command %q returned %d data bytes, expected %d (% X)",
			ErrResponseLength, op, len(payload), want, payload)
	}
	return payload, nil
}

// ReadPassthrough routes a command through the hand controller to an
// internal sub-device and reads back respLen data bytes.
//
// The controller reports the outcome through the total reply length: one
// byte over the requested length is success, two bytes over means the
// device is absent or rejected the sub-command, anything else is a framing
// fault.
func (s *Session) ReadPassthrough(dev Device, sub byte, respLen int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.write([]byte{'P', 1, byte(dev), sub, 0, 0, 0, byte(respLen)}); err != nil {
		return nil, err
	}

	n, err := s.read()
	if err != nil {
		return nil, err
	}

	switch n {
	case respLen + 1:
		payload := make([]byte, respLen)
		copy(payload, s.recv[:respLen])
		return payload, nil
	case respLen + 2:
		return nil, fmt.Errorf("%w: device %s, sub-command %d", ErrDeviceUnavailable, dev, sub)
	default:
		return nil, fmt.Errorf("%w: %d bytes from device %s for sub-command %d, expected %d data bytes (% X)",
			ErrMalformedResponse, n, dev, sub, respLen, s.recv[:n])
	}
}

// WritePassthrough routes a data-less command through the hand controller
// to an internal sub-device. The controller still sends a terminator
// acknowledgment, which must be drained or it corrupts the next command's
// framing.
func (s *Session) WritePassthrough(dev Device, sub byte, args []byte) error {
	if len(args) > maxPassthroughArgs {
		return fmt.Errorf("passthrough arguments must be %d bytes or less, got % X", maxPassthroughArgs, args)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	frame := []byte{'P', byte(len(args) + 1), byte(dev), sub, 0, 0, 0, 0}
	copy(frame[4:], args)

	if err := s.write(frame); err != nil {
		return err
	}

	if _, err := s.read(); err != nil {
		return err
	}
	return nil
}
