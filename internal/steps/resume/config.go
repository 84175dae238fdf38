package resume

import (
	"time"

	"application-wizard/internal/common/retry"
)

type Config struct {
	// Retry bounds the persistence of an accepted upload.
	Retry            retry.Config
	StoreTimeout     time.Duration
	ListTimeout      time.Duration
	ManageResumesURL string
}

func LoadConfig() *Config {
	return &Config{
		Retry:        retry.Default,
		StoreTimeout: 30 * time.Second,
		ListTimeout:  10 * time.Second,
	}
}
