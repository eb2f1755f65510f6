package edge

import (
	"fmt"
	"math"

	"github.com/mselser95/hoops-edge/pkg/types"
)

// SizerConfig holds stake sizing parameters.
type SizerConfig struct {
	// KellyFraction is applied when Size is called with a zero fraction.
	KellyFraction float64
	// UnitsPerBankroll converts a bankroll fraction into units.
	// 100 means one unit is 1% of bankroll.
	UnitsPerBankroll float64
	MinUnits         float64
	// MaxUnits caps a single stake. Zero disables the cap.
	MaxUnits float64
}

// DefaultSizerConfig returns quarter-Kelly with a 0.05u floor and a 3u cap.
func DefaultSizerConfig() SizerConfig {
	return SizerConfig{
		KellyFraction:    0.25,
		UnitsPerBankroll: 100,
		MinUnits:         0.05,
		MaxUnits:         3.0,
	}
}

// Sizer converts probability and price into a fractional-Kelly stake.
type Sizer struct {
	config SizerConfig
}

// NewSizer creates a stake sizer.
func NewSizer(cfg SizerConfig) *Sizer {
	return &Sizer{config: cfg}
}

// Config returns the sizer configuration.
func (s *Sizer) Config() SizerConfig {
	return s.config
}

// FullKelly returns (p*d - 1) / (d - 1), clamped at 0.
func FullKelly(p, d float64) (float64, error) {
	err := validate(p, d)
	if err != nil {
		return 0, err
	}

	f := (p*d - 1) / (d - 1)
	if f < 0 {
		return 0, nil
	}
	return f, nil
}

// Size returns the stake for win probability p at decimal odds d.
// A kellyFraction of zero uses the configured fraction. Stakes under the
// unit floor are emitted as zero units with MeetsFloor unset.
func (s *Sizer) Size(p, d, kellyFraction float64) (types.StakeResult, error) {
	if kellyFraction == 0 {
		kellyFraction = s.config.KellyFraction
	}
	if kellyFraction <= 0 || kellyFraction > 1 || math.IsNaN(kellyFraction) {
		return types.StakeResult{}, fmt.Errorf("%w: kelly fraction must be in (0, 1], got %v", types.ErrInvalidInput, kellyFraction)
	}

	full, err := FullKelly(p, d)
	if err != nil {
		return types.StakeResult{}, err
	}

	fraction := full * kellyFraction
	raw := fraction * s.config.UnitsPerBankroll

	res := types.StakeResult{
		FullKelly:        full,
		KellyFraction:    kellyFraction,
		BankrollFraction: fraction,
		RawUnits:         raw,
		MinUnits:         s.config.MinUnits,
		MaxUnits:         s.config.MaxUnits,
	}

	units := raw
	if s.config.MaxUnits > 0 && units > s.config.MaxUnits {
		units = s.config.MaxUnits
		res.Capped = true
	}
	units = round2(units)

	if units <= 0 || units < s.config.MinUnits {
		return res, nil
	}

	res.Units = units
	res.MeetsFloor = true
	return res, nil
}
