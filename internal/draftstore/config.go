package draftstore

import "time"

type Config struct {
	TTL       time.Duration
	KeyPrefix string
}

func LoadConfig() *Config {
	return &Config{
		TTL:       7 * 24 * time.Hour,
		KeyPrefix: "draft",
	}
}
