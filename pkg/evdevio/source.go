package evdevio

import (
	"codeberg.org/miketth/ergolayer/pkg/ergolayer"
	"errors"
	"fmt"
	"github.com/holoplot/go-evdev"
	"github.com/jonboulle/clockwork"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"strings"
	"sync"
)

var ErrDeviceNotFound = errors.New("input device not found")

// Source reads key transitions from a physical keyboard. While grabbed, the
// keyboard's events reach nobody else.
type Source struct {
	dev     inputDevice
	name    string
	grabbed bool
	clock   clockwork.Clock
	log     *zap.SugaredLogger

	closeOnce sync.Once
	closeErr  error
}

// inputDevice is the part of *evdev.InputDevice a Source uses.
type inputDevice interface {
	eventWriter
	ReadOne() (*evdev.InputEvent, error)
	Ungrab() error
	Close() error
}

// ResolveDevice turns a device path or kernel device name into a path.
func ResolveDevice(device string) (string, error) {
	if strings.HasPrefix(device, "/") {
		return device, nil
	}

	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return "", fmt.Errorf("list devices: %w", err)
	}
	for _, p := range paths {
		if p.Name == device {
			return p.Path, nil
		}
	}
	return "", fmt.Errorf("%q: %w", device, ErrDeviceNotFound)
}

func OpenSource(path string, grab bool, clock clockwork.Clock, log *zap.SugaredLogger) (*Source, error) {
	dev, err := evdev.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	name, err := dev.Name()
	if err != nil {
		dev.Close()
		return nil, fmt.Errorf("get device name: %w", err)
	}

	if grab {
		if err := dev.Grab(); err != nil {
			dev.Close()
			return nil, fmt.Errorf("grab %s: %w", name, err)
		}
	}

	log.Infow("opened keyboard", "path", path, "name", name, "grabbed", grab)

	return &Source{
		dev:     dev,
		name:    name,
		grabbed: grab,
		clock:   clock,
		log:     log,
	}, nil
}

func (s *Source) Name() string {
	return s.name
}

// ReadEvent blocks until the next key press or release. Autorepeat and non-key
// events are skipped.
func (s *Source) ReadEvent() (ergolayer.KeyEvent, error) {
	for {
		ev, err := s.dev.ReadOne()
		if err != nil {
			return ergolayer.KeyEvent{}, fmt.Errorf("read from %s: %w", s.name, err)
		}

		if kev, ok := toKeyEvent(ev, s.clock); ok {
			return kev, nil
		}
	}
}

func toKeyEvent(ev *evdev.InputEvent, clock clockwork.Clock) (ergolayer.KeyEvent, bool) {
	if ev.Type != evdev.EV_KEY {
		return ergolayer.KeyEvent{}, false
	}

	switch evdev.NewKeyEvent(ev).State {
	case evdev.KeyDown:
		return ergolayer.KeyEvent{Code: ev.Code, Pressed: true, Time: clock.Now()}, true
	case evdev.KeyUp:
		return ergolayer.KeyEvent{Code: ev.Code, Pressed: false, Time: clock.Now()}, true
	default:
		return ergolayer.KeyEvent{}, false
	}
}

// SetLED switches one of the keyboard's own LEDs.
func (s *Source) SetLED(code evdev.EvCode, on bool) error {
	var value int32
	if on {
		value = 1
	}
	return writeSync(s.dev, evdev.EV_LED, code, value)
}

// Close releases the keyboard. Only the first call touches the device, later
// calls return the same error.
func (s *Source) Close() error {
	s.closeOnce.Do(func() {
		if s.grabbed {
			s.closeErr = multierr.Append(s.closeErr, s.dev.Ungrab())
		}
		s.closeErr = multierr.Append(s.closeErr, s.dev.Close())
	})
	return s.closeErr
}

type eventWriter interface {
	WriteOne(event *evdev.InputEvent) error
}

func writeSync(w eventWriter, typ evdev.EvType, code evdev.EvCode, value int32) error {
	if err := w.WriteOne(&evdev.InputEvent{Type: typ, Code: code, Value: value}); err != nil {
		return fmt.Errorf("write %s: %w", evdev.CodeName(typ, code), err)
	}
	if err := w.WriteOne(&evdev.InputEvent{Type: evdev.EV_SYN, Code: evdev.SYN_REPORT}); err != nil {
		return fmt.Errorf("write sync: %w", err)
	}
	return nil
}
