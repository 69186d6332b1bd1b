package rrule

// Config holds the safety bounds applied while a rule is iterated.
type Config struct {
	// MaxIterations caps how many times the period cursor may advance
	// before iteration fails. Must be at least 1.
	MaxIterations int

	// MaxEmptyPeriods is how many consecutive unproductive periods are
	// tolerated before the rule is treated as exhausted. The detector only
	// runs while nothing has been emitted yet, so an impossible rule ends
	// quietly instead of erroring.
	MaxEmptyPeriods int
}

// DefaultConfig provides sensible defaults for production use
var DefaultConfig = Config{
	MaxIterations:   10000,
	MaxEmptyPeriods: 1000,
}

// normalized fills unset fields from DefaultConfig and floors
// MaxIterations at 1.
func (c Config) normalized() Config {
	if c.MaxIterations == 0 {
		c.MaxIterations = DefaultConfig.MaxIterations
	}
	if c.MaxIterations < 1 {
		c.MaxIterations = 1
	}
	if c.MaxEmptyPeriods <= 0 {
		c.MaxEmptyPeriods = DefaultConfig.MaxEmptyPeriods
	}
	return c
}
