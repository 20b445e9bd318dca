package evdevio

import (
	"codeberg.org/miketth/ergolayer/pkg/ergolayer"
	"codeberg.org/miketth/ergolayer/pkg/unicodeinput"
	"fmt"
	"github.com/holoplot/go-evdev"
	"io"
	"sort"
)

var virtualKeyboardID = evdev.InputID{
	BusType: 0x03,
	Vendor:  0x4712,
	Product: 0x0816,
	Version: 1,
}

// VirtualKeyboard is the uinput keyboard the host sees instead of the grabbed one.
type VirtualKeyboard struct {
	dev    eventWriter
	closer io.Closer
	mode   unicodeinput.Mode
}

var _ ergolayer.HostOutput = (*VirtualKeyboard)(nil)

func NewVirtualKeyboard(name string, mode unicodeinput.Mode) (*VirtualKeyboard, error) {
	dev, err := evdev.CreateDevice(name, virtualKeyboardID, map[evdev.EvType][]evdev.EvCode{
		evdev.EV_KEY: keyboardKeys(),
	})
	if err != nil {
		return nil, fmt.Errorf("create uinput device: %w", err)
	}

	return &VirtualKeyboard{dev: dev, closer: dev, mode: mode}, nil
}

// keyboardKeys lists every KEY_ code, leaving out the BTN_ range so the device is
// not mistaken for a pointer or joystick.
func keyboardKeys() []evdev.EvCode {
	keys := make([]evdev.EvCode, 0, len(evdev.KEYToString))
	for code := range evdev.KEYToString {
		if code == evdev.KEY_RESERVED || (code >= evdev.BTN_MISC && code < evdev.KEY_OK) {
			continue
		}
		keys = append(keys, code)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func (k *VirtualKeyboard) RegisterKey(code evdev.EvCode) error {
	return writeSync(k.dev, evdev.EV_KEY, code, 1)
}

func (k *VirtualKeyboard) UnregisterKey(code evdev.EvCode) error {
	return writeSync(k.dev, evdev.EV_KEY, code, 0)
}

// EmitText types text through the host's unicode input method.
func (k *VirtualKeyboard) EmitText(text string) error {
	strokes, err := unicodeinput.Encode(k.mode, text)
	if err != nil {
		return fmt.Errorf("encode text: %w", err)
	}

	for _, s := range strokes {
		var value int32
		if s.Down {
			value = 1
		}
		if err := writeSync(k.dev, evdev.EV_KEY, s.Code, value); err != nil {
			return err
		}
	}
	return nil
}

func (k *VirtualKeyboard) Close() error {
	return k.closer.Close()
}
