package ergolayer

import (
	"codeberg.org/miketth/ergolayer/pkg/keymap"
	"fmt"
	"github.com/holoplot/go-evdev"
	"github.com/jonboulle/clockwork"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"time"
)

// DefaultTappingTerm is how long a mod-tap key may be held and still count as a tap.
const DefaultTappingTerm = 200 * time.Millisecond

type Config struct {
	Keymap *keymap.Keymap
	Matrix keymap.Matrix
	// IdleTimeout of zero disables idle dimming.
	IdleTimeout time.Duration
	TappingTerm time.Duration
}

// Responder holds the layer state, idle timer and indicator state of one keyboard.
// It is not safe for concurrent use: ProcessKey and Tick must be called from the
// same loop. Snapshot may be called from anywhere.
type Responder struct {
	keymap      *keymap.Keymap
	matrix      keymap.Matrix
	idleTimeout time.Duration
	tappingTerm time.Duration

	clock     clockwork.Clock
	host      HostOutput
	indicator Indicator
	backlight Backlight
	observers []Observer
	log       *zap.SugaredLogger

	layers       keymap.LayerState
	lastActivity time.Time
	mode         Mode
	ledLayer     int
	pressed      map[keymap.Position]pressedKey
	tap          *pendingTap
	// deferred holds events that arrived while a mod-tap was undecided.
	deferred []KeyEvent
	// down counts the reasons each host key is held, so a modifier shared by a
	// held key and a modified key is only released when both let go.
	down map[evdev.EvCode]int

	snapshot *atomic.Pointer[Snapshot]
}

type pressedKey struct {
	action keymap.Action
	layer  int
	// held is set once a mod-tap key has been resolved to its modifiers.
	held bool
}

type pendingTap struct {
	pos   keymap.Position
	mods  keymap.Mods
	since time.Time
}

type Option func(*Responder)

func WithBacklight(b Backlight) Option {
	return func(r *Responder) { r.backlight = b }
}

func WithObservers(obs ...Observer) Option {
	return func(r *Responder) { r.observers = append(r.observers, obs...) }
}

func NewResponder(
	cfg Config,
	clock clockwork.Clock,
	host HostOutput,
	indicator Indicator,
	log *zap.SugaredLogger,
	opts ...Option,
) *Responder {
	tappingTerm := cfg.TappingTerm
	if tappingTerm <= 0 {
		tappingTerm = DefaultTappingTerm
	}

	r := &Responder{
		keymap:       cfg.Keymap,
		matrix:       cfg.Matrix,
		idleTimeout:  cfg.IdleTimeout,
		tappingTerm:  tappingTerm,
		clock:        clock,
		host:         host,
		indicator:    indicator,
		log:          log,
		lastActivity: clock.Now(),
		mode:         ModeSolid,
		ledLayer:     -1,
		pressed:      make(map[keymap.Position]pressedKey),
		down:         make(map[evdev.EvCode]int),
		snapshot:     atomic.NewPointer[Snapshot](nil),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.publish()

	return r
}

// Reset pushes the initial indicator state out: solid mode and the layer LEDs of
// the base layer.
func (r *Responder) Reset() error {
	if err := r.indicator.SetMode(ModeSolid); err != nil {
		return fmt.Errorf("set indicator mode: %w", err)
	}
	r.mode = ModeSolid
	r.ledLayer = -1

	if err := r.updateLayerLEDs(); err != nil {
		return err
	}
	r.publish()
	return nil
}

func (r *Responder) Layers() keymap.LayerState { return r.layers }
func (r *Responder) LastActivity() time.Time   { return r.lastActivity }
func (r *Responder) Mode() Mode                { return r.mode }

// ProcessKey handles one key transition.
func (r *Responder) ProcessKey(ev KeyEvent) error {
	r.lastActivity = ev.Time

	if r.mode != ModeSolid {
		if err := r.setMode(ModeSolid); err != nil {
			return err
		}
	}

	if err := r.handle(ev); err != nil {
		return err
	}

	r.publish()
	return nil
}

// handle resolves one event. While a mod-tap key is undecided every other event
// is deferred: releasing the mod-tap within the tapping term makes it a tap,
// holding it past the term makes it a modifier, and the deferred events are
// replayed after either.
func (r *Responder) handle(ev KeyEvent) error {
	if r.tap != nil && ev.Time.Sub(r.tap.since) >= r.tappingTerm {
		if err := r.holdTap(); err != nil {
			return err
		}
	}

	pos, bound := r.matrix.Lookup(ev.Code)

	if r.tap != nil {
		if bound && pos == r.tap.pos && !ev.Pressed {
			return r.tapKey(pos)
		}
		r.deferred = append(r.deferred, ev)
		return nil
	}

	switch {
	case !bound:
		return r.forward(ev.Code, ev.Pressed)
	case ev.Pressed:
		return r.press(pos, ev.Time)
	default:
		return r.release(pos)
	}
}

// replay handles the deferred events in arrival order. A mod-tap pressed during
// replay defers the rest again.
func (r *Responder) replay() error {
	events := r.deferred
	r.deferred = nil
	for _, ev := range events {
		if err := r.handle(ev); err != nil {
			return err
		}
	}
	return nil
}

// forward passes a key the keymap does not know about through unchanged.
func (r *Responder) forward(code evdev.EvCode, pressed bool) error {
	if pressed {
		return r.register(code)
	}
	return r.unregister(code)
}

func (r *Responder) press(pos keymap.Position, at time.Time) error {
	action, layer := r.keymap.Resolve(pos, r.layers)
	r.pressed[pos] = pressedKey{action: action, layer: layer}

	for _, o := range r.observers {
		o.Pressed(layer, pos, action)
	}

	switch action.Kind {
	case keymap.KindKey:
		for _, code := range action.Mods.Codes() {
			if err := r.register(code); err != nil {
				return err
			}
		}
		return r.register(action.Code)

	case keymap.KindModTap:
		r.tap = &pendingTap{pos: pos, mods: action.Mods, since: at}
		return nil

	case keymap.KindMomentary:
		r.setLayers(r.layers.On(action.Layer))
		return nil

	case keymap.KindToggle:
		r.setLayers(r.layers.Toggle(action.Layer))
		return nil

	case keymap.KindCustom:
		text, ok := action.Custom.Text()
		if !ok {
			r.log.Debugw("unknown custom code", "code", action.Custom)
			return nil
		}
		if err := r.host.EmitText(text); err != nil {
			return fmt.Errorf("emit %s: %w", action.Custom, err)
		}
		return nil

	case keymap.KindMacro:
		switch action.Macro {
		case keymap.HoldRightShift:
			return r.register(evdev.KEY_RIGHTSHIFT)
		default:
			r.log.Debugw("unknown macro", "macro", action.Macro)
		}
		return nil

	case keymap.KindBacklight:
		return r.adjustBacklight(action.Backlight)

	default:
		return nil
	}
}

func (r *Responder) release(pos keymap.Position) error {
	pk, ok := r.pressed[pos]
	if ok {
		delete(r.pressed, pos)
	} else {
		pk.action, pk.layer = r.keymap.Resolve(pos, r.layers)
	}
	action := pk.action

	switch action.Kind {
	case keymap.KindKey:
		if err := r.unregister(action.Code); err != nil {
			return err
		}
		return r.unregisterMods(action.Mods)

	case keymap.KindModTap:
		if pk.held {
			return r.unregisterMods(action.Mods)
		}
		return nil

	case keymap.KindMomentary:
		r.setLayers(r.layers.Off(action.Layer))
		return nil

	case keymap.KindMacro:
		if action.Macro == keymap.HoldRightShift {
			return r.unregister(evdev.KEY_RIGHTSHIFT)
		}
		return nil

	default:
		// toggles, custom codes and backlight keys act on press only
		return nil
	}
}

// tapKey resolves the pending mod-tap key, released at pos, as a tap.
func (r *Responder) tapKey(pos keymap.Position) error {
	pk := r.pressed[pos]
	delete(r.pressed, pos)
	r.tap = nil

	if err := r.register(pk.action.Code); err != nil {
		return err
	}
	if err := r.unregister(pk.action.Code); err != nil {
		return err
	}
	return r.replay()
}

// holdTap resolves the pending mod-tap key as its modifiers.
func (r *Responder) holdTap() error {
	tap := r.tap
	r.tap = nil

	if pk, ok := r.pressed[tap.pos]; ok {
		pk.held = true
		r.pressed[tap.pos] = pk
	}

	for _, code := range tap.mods.Codes() {
		if err := r.register(code); err != nil {
			return err
		}
	}
	return r.replay()
}

func (r *Responder) unregisterMods(mods keymap.Mods) error {
	codes := mods.Codes()
	for i := len(codes) - 1; i >= 0; i-- {
		if err := r.unregister(codes[i]); err != nil {
			return err
		}
	}
	return nil
}

// register holds code down on the host. Only the first holder sends the press.
func (r *Responder) register(code evdev.EvCode) error {
	if r.down[code] == 0 {
		if err := r.host.RegisterKey(code); err != nil {
			return fmt.Errorf("register %s: %w", evdev.CodeName(evdev.EV_KEY, code), err)
		}
	}
	r.down[code]++
	return nil
}

// unregister drops one holder of code. The release is sent once nobody holds it,
// and also for keys that were never seen going down.
func (r *Responder) unregister(code evdev.EvCode) error {
	if r.down[code] > 1 {
		r.down[code]--
		return nil
	}
	delete(r.down, code)

	if err := r.host.UnregisterKey(code); err != nil {
		return fmt.Errorf("unregister %s: %w", evdev.CodeName(evdev.EV_KEY, code), err)
	}
	return nil
}

func (r *Responder) adjustBacklight(op keymap.BacklightOp) error {
	if r.backlight == nil {
		r.log.Debugw("no backlight configured", "op", op)
		return nil
	}

	var err error
	switch op {
	case keymap.BacklightStep:
		err = r.backlight.Step()
	case keymap.BacklightInc:
		err = r.backlight.Adjust(1)
	case keymap.BacklightDec:
		err = r.backlight.Adjust(-1)
	}
	if err != nil {
		return fmt.Errorf("backlight %s: %w", op, err)
	}
	return nil
}

func (r *Responder) setLayers(layers keymap.LayerState) {
	before := r.layers.Highest()
	r.layers = layers
	if top := layers.Highest(); top != before {
		r.log.Debugw("layer changed", "layer", top, "active", layers.Active())
		for _, o := range r.observers {
			o.LayerChanged(top)
		}
	}
}

func (r *Responder) setMode(mode Mode) error {
	if err := r.indicator.SetMode(mode); err != nil {
		return fmt.Errorf("set indicator mode %s: %w", mode, err)
	}
	r.mode = mode
	for _, o := range r.observers {
		o.ModeChanged(mode)
	}
	return nil
}

// Tick runs the periodic housekeeping: mod-tap timeouts, idle dimming and the
// layer LEDs.
func (r *Responder) Tick() error {
	now := r.clock.Now()
	changed := false

	if r.tap != nil && now.Sub(r.tap.since) >= r.tappingTerm {
		if err := r.holdTap(); err != nil {
			return err
		}
		changed = true
	}

	if r.idleTimeout > 0 && r.mode != ModeBreathing && now.Sub(r.lastActivity) > r.idleTimeout {
		r.log.Debugw("keyboard idle", "since", r.lastActivity)
		if err := r.setMode(ModeBreathing); err != nil {
			return err
		}
		changed = true
	}

	// rewritten every tick, the host may have set the lock LEDs in between
	if r.layers.Highest() != r.ledLayer {
		changed = true
	}
	if err := r.updateLayerLEDs(); err != nil {
		return err
	}

	if changed {
		r.publish()
	}
	return nil
}

// updateLayerLEDs lights the LED of the topmost non-base layer and clears all
// others. Each LED is written once so the lit one does not flicker.
func (r *Responder) updateLayerLEDs() error {
	top := r.layers.Highest()

	for i := 1; i <= LayerLEDs; i++ {
		if err := r.indicator.SetLayerLED(i, i == top); err != nil {
			return fmt.Errorf("set layer led %d: %w", i, err)
		}
	}

	r.ledLayer = top
	return nil
}
