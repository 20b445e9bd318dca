package ergolayer

import (
	"codeberg.org/miketth/ergolayer/pkg/keymap"
	"errors"
	"github.com/holoplot/go-evdev"
	"io"
	"sync"
)

type fakeHost struct {
	lock    sync.Mutex
	strokes []string
	texts   []string
	failOn  evdev.EvCode
}

var errHostGone = errors.New("host gone")

func (h *fakeHost) RegisterKey(code evdev.EvCode) error {
	h.lock.Lock()
	defer h.lock.Unlock()
	if h.failOn != 0 && code == h.failOn {
		return errHostGone
	}
	h.strokes = append(h.strokes, "+"+evdev.CodeName(evdev.EV_KEY, code))
	return nil
}

func (h *fakeHost) UnregisterKey(code evdev.EvCode) error {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.strokes = append(h.strokes, "-"+evdev.CodeName(evdev.EV_KEY, code))
	return nil
}

func (h *fakeHost) EmitText(text string) error {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.texts = append(h.texts, text)
	return nil
}

func (h *fakeHost) Strokes() []string {
	h.lock.Lock()
	defer h.lock.Unlock()
	return append([]string(nil), h.strokes...)
}

func (h *fakeHost) reset() {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.strokes = nil
	h.texts = nil
}

type fakeIndicator struct {
	modeCalls []Mode
	leds      map[int]bool
	ledCalls  int
}

func newFakeIndicator() *fakeIndicator {
	return &fakeIndicator{leds: make(map[int]bool)}
}

func (i *fakeIndicator) SetMode(mode Mode) error {
	i.modeCalls = append(i.modeCalls, mode)
	return nil
}

func (i *fakeIndicator) SetLayerLED(index int, on bool) error {
	i.ledCalls++
	i.leds[index] = on
	return nil
}

func (i *fakeIndicator) lit() []int {
	var lit []int
	for idx := 1; idx <= LayerLEDs; idx++ {
		if i.leds[idx] {
			lit = append(lit, idx)
		}
	}
	return lit
}

type fakeBacklight struct {
	steps  int
	levels []int
}

func (b *fakeBacklight) Step() error {
	b.steps++
	return nil
}

func (b *fakeBacklight) Adjust(delta int) error {
	b.levels = append(b.levels, delta)
	return nil
}

type fakeSource struct {
	events chan KeyEvent
}

func (s *fakeSource) ReadEvent() (KeyEvent, error) {
	ev, ok := <-s.events
	if !ok {
		return KeyEvent{}, io.EOF
	}
	return ev, nil
}

type recordingObserver struct {
	presses []keymap.Action
	layers  []int
	modes   []Mode
}

func (o *recordingObserver) Pressed(_ int, _ keymap.Position, a keymap.Action) {
	o.presses = append(o.presses, a)
}
func (o *recordingObserver) LayerChanged(top int) { o.layers = append(o.layers, top) }
func (o *recordingObserver) ModeChanged(m Mode)   { o.modes = append(o.modes, m) }

type memStore struct {
	counts []PressCount
	err    error
}

func (s *memStore) AddPresses(counts []PressCount) error {
	if s.err != nil {
		return s.err
	}
	s.counts = append(s.counts, counts...)
	return nil
}

func (s *memStore) GetPresses(layer int) ([]PressCount, error) {
	var out []PressCount
	for _, c := range s.counts {
		if c.Layer == layer {
			out = append(out, c)
		}
	}
	return out, nil
}
