package calculator

import "strconv"

// DefaultFibRatios is the ascending retracement/extension ladder.
var DefaultFibRatios = []float64{0.236, 0.382, 0.5, 0.618, 0.786, 1.0, 1.272, 1.618}

// TargetConfig controls target selection from the ladder.
type TargetConfig struct {
	Ratios         []float64 `yaml:"ratios"`
	Buffer         float64   `yaml:"buffer"`          // near target must exceed price*(1+Buffer)
	ExtensionRatio float64   `yaml:"extension_ratio"` // stretch ratio when the near ratio is the last one
	BlueSkyNear    float64   `yaml:"blue_sky_near"`
	BlueSkyStretch float64   `yaml:"blue_sky_stretch"`
}

// DefaultTargetConfig returns the standard ladder settings.
func DefaultTargetConfig() TargetConfig {
	return TargetConfig{
		Ratios:         append([]float64(nil), DefaultFibRatios...),
		Buffer:         0.02,
		ExtensionRatio: 2.0,
		BlueSkyNear:    1.05,
		BlueSkyStretch: 1.15,
	}
}

// Targets is the result of PickTargets.
type Targets struct {
	Near    float64
	Stretch float64
	Note    string
	BlueSky bool
}

// FibLadder returns low + (high-low)*ratio for each ratio, in ratio order.
func FibLadder(low, high float64, ratios []float64) []float64 {
	span := high - low
	levels := make([]float64, len(ratios))
	for i, r := range ratios {
		levels[i] = low + span*r
	}
	return levels
}

// PickTargets selects the near target as the smallest ladder level strictly
// above price*(1+Buffer) and the stretch target as the next level. When the
// price is above every level both targets fall back to fixed multiples.
func PickTargets(price, low, high float64, cfg TargetConfig) Targets {
	levels := FibLadder(low, high, cfg.Ratios)
	floor := price * (1 + cfg.Buffer)
	for i, level := range levels {
		if level <= floor {
			continue
		}
		t := Targets{
			Near: level,
			Note: "Fib " + strconv.FormatFloat(cfg.Ratios[i], 'f', -1, 64),
		}
		if i+1 < len(levels) {
			t.Stretch = levels[i+1]
		} else {
			t.Stretch = low + (high-low)*cfg.ExtensionRatio
		}
		return t
	}
	return Targets{
		Near:    price * cfg.BlueSkyNear,
		Stretch: price * cfg.BlueSkyStretch,
		Note:    "Blue Sky",
		BlueSky: true,
	}
}
