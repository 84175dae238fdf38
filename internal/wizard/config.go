package wizard

import "time"

type Config struct {
	Policy Policy
	// Now is the clock used for UpdatedAt and FinalizedAt stamps.
	Now func() time.Time
}

func LoadConfig() *Config {
	return &Config{
		Policy: PolicyAdvisory,
		Now:    time.Now,
	}
}
