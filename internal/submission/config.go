package submission

import (
	"time"

	"application-wizard/internal/common/retry"
)

type Config struct {
	Timeout   time.Duration
	ProcessID string
	Retry     retry.Config
	Now       func() time.Time
}

func LoadConfig() *Config {
	return &Config{
		Timeout:   15 * time.Second,
		ProcessID: "job-application",
		Retry:     retry.Default,
		Now:       time.Now,
	}
}
