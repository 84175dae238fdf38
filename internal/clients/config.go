package clients

import "time"

type Config struct {
	ProfileBaseURL string
	ResumeBaseURL  string
	Timeout        time.Duration
}

func LoadConfig() *Config {
	return &Config{
		ProfileBaseURL: "http://localhost:8081",
		ResumeBaseURL:  "http://localhost:8082",
		Timeout:        10 * time.Second,
	}
}
