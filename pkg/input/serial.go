package input

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cbodonnell/blockfall/pkg/log"
	"github.com/pkg/term"
)

// SerialKeys reads key bytes from a serial device into Keys.
type SerialKeys struct {
	device string
	port   *term.Term
	keys   *Keys
}

// OpenSerialKeys opens device in raw mode at baud and returns a reader that
// feeds keys. Call Start to begin reading and Close when done.
func OpenSerialKeys(device string, baud int, keys *Keys) (*SerialKeys, error) {
	port, err := term.Open(device, term.Speed(baud), term.RawMode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial device %s: %v", device, err)
	}
	return &SerialKeys{
		device: device,
		port:   port,
		keys:   keys,
	}, nil
}

// Start copies bytes from the device until ctx is done or the device fails.
func (s *SerialKeys) Start(ctx context.Context) {
	go func() {
		<-ctx.Done()
		s.port.Close()
	}()

	log.Info("Reading keys from %s", s.device)
	if err := readKeys(s.port, s.keys); err != nil && ctx.Err() == nil {
		log.Error("Failed to read keys from %s: %v", s.device, err)
	}
}

// Close restores the device settings and closes it.
func (s *SerialKeys) Close() error {
	if err := s.port.Restore(); err != nil && !errors.Is(err, os.ErrClosed) {
		log.Warn("Failed to restore serial device %s: %v", s.device, err)
	}
	return s.port.Close()
}

// readKeys copies r into keys. EOF ends the copy without error.
func readKeys(r io.Reader, keys *Keys) error {
	buf := make([]byte, 64)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			keys.Write(buf[:n])
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}
