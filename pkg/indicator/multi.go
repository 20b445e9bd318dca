package indicator

import (
	"codeberg.org/miketth/ergolayer/pkg/ergolayer"
	"go.uber.org/multierr"
)

// Multi fans indicator updates out to several indicators. Every indicator is
// updated even when an earlier one fails.
type Multi []ergolayer.Indicator

func (m Multi) SetMode(mode ergolayer.Mode) error {
	var err error
	for _, ind := range m {
		err = multierr.Append(err, ind.SetMode(mode))
	}
	return err
}

func (m Multi) SetLayerLED(index int, on bool) error {
	var err error
	for _, ind := range m {
		err = multierr.Append(err, ind.SetLayerLED(index, on))
	}
	return err
}
