package questions

import "time"

type Config struct {
	SaveTimeout time.Duration
	Now         func() time.Time
}

func LoadConfig() *Config {
	return &Config{
		SaveTimeout: 5 * time.Second,
		Now:         time.Now,
	}
}
