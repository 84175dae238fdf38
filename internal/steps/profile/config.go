package profile

import "time"

type Config struct {
	EditProfileURL string
	FetchTimeout   time.Duration
}

func LoadConfig() *Config {
	return &Config{
		FetchTimeout: 10 * time.Second,
	}
}
