package scheduler

// Settings holds the knobs for the scheduling engine. Construct once and
// inject; the engine never reaches for process-wide configuration.
type Settings struct {
	LearningSteps      []int   // minutes, in order
	RelearningSteps    []int   // minutes, in order
	GraduatingInterval int     // days, first interval after graduating via Good
	EasyInterval       int     // days, first interval after graduating via Easy
	StartingEase       float64 // ease assigned to brand-new cards
	MinEase            float64 // ease never drops below this
	HardIntervalFactor float64
	EasyBonus          float64
	UseFuzz            bool
	IntervalModifier   float64 // scales review-phase interval growth
}

// DefaultSettings returns the stock Anki-style configuration:
// learning steps of 1 and 10 minutes, a single 10 minute relearning step,
// graduation to 1 day, Easy graduation to 4 days.
func DefaultSettings() Settings {
	return Settings{
		LearningSteps:      []int{1, 10},
		RelearningSteps:    []int{10},
		GraduatingInterval: 1,
		EasyInterval:       4,
		StartingEase:       2.5,
		MinEase:            1.3,
		HardIntervalFactor: 1.2,
		EasyBonus:          1.3,
		UseFuzz:            true,
		IntervalModifier:   1.0,
	}
}

// stepsFor returns the step queue for the given phase.
func (s Settings) stepsFor(relearning bool) []int {
	if relearning {
		return s.RelearningSteps
	}
	return s.LearningSteps
}
