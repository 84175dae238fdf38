package server

import "time"

type Config struct {
	Address        string
	AllowedOrigins []string
	// MaxUploadBytes caps the multipart body; larger bodies are rejected before parsing.
	MaxUploadBytes  int64
	ShutdownTimeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Address:         ":8080",
		MaxUploadBytes:  12 << 20,
		ShutdownTimeout: 10 * time.Second,
	}
}
