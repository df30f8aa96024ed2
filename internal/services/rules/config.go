package rules

// MomentumLeg is one lookback horizon of the blended momentum score.
type MomentumLeg struct {
	Lookback int
	Weight   float64
}

// DefaultMomentumLegs is the 12:4:2:1 blend of ~1/3/6/12-month returns.
func DefaultMomentumLegs() []MomentumLeg {
	return []MomentumLeg{
		{Lookback: 21, Weight: 12},
		{Lookback: 65, Weight: 4},
		{Lookback: 131, Weight: 2},
		{Lookback: 251, Weight: 1},
	}
}

// VAAConfig parameterizes the momentum-crisis rule.
type VAAConfig struct {
	Attack  []string
	Defense []string
	Legs    []MomentumLeg
}

// LAAConfig parameterizes the regime-switch rule. Reference is the equity
// index whose 200-day moving average gates the defensive test.
type LAAConfig struct {
	Fixed     []string
	Defensive string
	Growth    string
	Reference string
	MAWindow  int
}

// DMConfig parameterizes the dual-momentum rule.
type DMConfig struct {
	Domestic      string
	International string
	Cash          string
	Fallback      string
	Lookback      int
}

// DrawdownConfig parameterizes the staging indicator. Thresholds are the
// stage boundaries in descending order (percent, negative); Conversions[k]
// is the defensive-asset conversion for the stage entered at Thresholds[k].
type DrawdownConfig struct {
	Thresholds     []float64
	Conversions    []int
	MAWindow       int
	ProfitMaxRatio float64
}

// DefaultDrawdownConfig reproduces the -15/-20/-25/-30/-35 staging ladder
// with 20% conversion steps, a 50-day trend MA and a 97% profit-max band.
func DefaultDrawdownConfig() DrawdownConfig {
	return DrawdownConfig{
		Thresholds:     []float64{-15, -20, -25, -30, -35},
		Conversions:    []int{20, 40, 60, 80, 100},
		MAWindow:       50,
		ProfitMaxRatio: 0.97,
	}
}
