package pretest

import "time"

type Config struct {
	Now func() time.Time
}

func LoadConfig() *Config {
	return &Config{Now: time.Now}
}
