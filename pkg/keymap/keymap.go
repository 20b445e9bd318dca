package keymap

import (
	"errors"
	"fmt"
	"github.com/holoplot/go-evdev"
	"math/bits"
)

// MaxLayers is the number of layers a LayerState can track.
const MaxLayers = 32

var (
	ErrTooManyLayers = errors.New("too many layers")
	ErrNoLayers      = errors.New("keymap has no layers")
	ErrBadGrid       = errors.New("layer grid does not match keymap shape")
	ErrUnknownLayer  = errors.New("action references unknown layer")
)

// Position is a physical key position on the layer grid.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Position) String() string {
	return fmt.Sprintf("r%dc%d", p.Row, p.Col)
}

type Layer struct {
	Name string
	Grid [][]Action
}

// At returns the action at pos, Trans when pos is off the grid.
func (l Layer) At(pos Position) Action {
	if pos.Row < 0 || pos.Row >= len(l.Grid) {
		return Trans
	}
	row := l.Grid[pos.Row]
	if pos.Col < 0 || pos.Col >= len(row) {
		return Trans
	}
	return row[pos.Col]
}

// Keymap is an ordered stack of layers. Layer 0 is the base layer.
type Keymap struct {
	Name   string
	Rows   int
	Cols   int
	Layers []Layer
}

// New builds a keymap and checks that every layer has the same shape and that
// layer actions only reference existing layers.
func New(name string, rows, cols int, layers ...Layer) (*Keymap, error) {
	if len(layers) == 0 {
		return nil, ErrNoLayers
	}
	if len(layers) > MaxLayers {
		return nil, fmt.Errorf("%d layers: %w", len(layers), ErrTooManyLayers)
	}

	for i, l := range layers {
		if len(l.Grid) != rows {
			return nil, fmt.Errorf("layer %d (%s) has %d rows: %w", i, l.Name, len(l.Grid), ErrBadGrid)
		}
		for r, row := range l.Grid {
			if len(row) != cols {
				return nil, fmt.Errorf("layer %d (%s) row %d has %d cols: %w", i, l.Name, r, len(row), ErrBadGrid)
			}
			for c, a := range row {
				if (a.Kind == KindMomentary || a.Kind == KindToggle) && (a.Layer <= 0 || a.Layer >= len(layers)) {
					return nil, fmt.Errorf("layer %d (%s) %s: %s: %w", i, l.Name, Position{r, c}, a, ErrUnknownLayer)
				}
			}
		}
	}

	return &Keymap{
		Name:   name,
		Rows:   rows,
		Cols:   cols,
		Layers: layers,
	}, nil
}

// MustNew is New for compiled-in tables.
func MustNew(name string, rows, cols int, layers ...Layer) *Keymap {
	km, err := New(name, rows, cols, layers...)
	if err != nil {
		panic(fmt.Sprintf("keymap %s: %v", name, err))
	}
	return km
}

// Resolve returns the action for pos from the highest active layer that does not
// pass through, and the index of that layer. The base layer always underlies the
// others and is the fallback.
func (k *Keymap) Resolve(pos Position, state LayerState) (Action, int) {
	for l := state.Highest(); l > 0; l-- {
		if !state.IsOn(l) || l >= len(k.Layers) {
			continue
		}
		if a := k.Layers[l].At(pos); a.Kind != KindTransparent {
			return a, l
		}
	}
	return k.Layers[0].At(pos), 0
}

// LayerState is a bitset of active layers.
type LayerState uint32

func (s LayerState) On(layer int) LayerState {
	if layer <= 0 || layer >= MaxLayers {
		return s
	}
	return s | 1<<layer
}

func (s LayerState) Off(layer int) LayerState {
	if layer <= 0 || layer >= MaxLayers {
		return s
	}
	return s &^ (1 << layer)
}

func (s LayerState) Toggle(layer int) LayerState {
	if layer <= 0 || layer >= MaxLayers {
		return s
	}
	return s ^ 1<<layer
}

// IsOn reports whether layer is active. The base layer is always active.
func (s LayerState) IsOn(layer int) bool {
	if layer == 0 {
		return true
	}
	if layer < 0 || layer >= MaxLayers {
		return false
	}
	return s&(1<<layer) != 0
}

// Highest returns the topmost active layer, 0 when only the base layer is active.
func (s LayerState) Highest() int {
	if s == 0 {
		return 0
	}
	return bits.Len32(uint32(s)) - 1
}

// Active lists the active layers, base first.
func (s LayerState) Active() []int {
	active := []int{0}
	for l := 1; l < MaxLayers; l++ {
		if s.IsOn(l) {
			active = append(active, l)
		}
	}
	return active
}

// Matrix binds the key codes a physical keyboard reports to grid positions.
type Matrix map[evdev.EvCode]Position

func (m Matrix) Lookup(code evdev.EvCode) (Position, bool) {
	pos, ok := m[code]
	return pos, ok
}

// Check verifies that every bound position lies on the keymap grid and that no two
// codes share a position.
func (m Matrix) Check(km *Keymap) error {
	seen := make(map[Position]evdev.EvCode, len(m))
	for code, pos := range m {
		if pos.Row < 0 || pos.Row >= km.Rows || pos.Col < 0 || pos.Col >= km.Cols {
			return fmt.Errorf("%s bound to %s outside %dx%d grid", evdev.CodeName(evdev.EV_KEY, code), pos, km.Rows, km.Cols)
		}
		if other, ok := seen[pos]; ok {
			return fmt.Errorf("%s and %s both bound to %s",
				evdev.CodeName(evdev.EV_KEY, other), evdev.CodeName(evdev.EV_KEY, code), pos)
		}
		seen[pos] = code
	}
	return nil
}
