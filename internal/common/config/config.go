// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig          `mapstructure:"app"`
	Server        ServerConfig       `mapstructure:"server"`
	Wizard        WizardConfig       `mapstructure:"wizard"`
	Draft         DraftConfig        `mapstructure:"draft"`
	Database      DatabaseConfig     `mapstructure:"database"`
	Services      ServicesConfig     `mapstructure:"services"`
	Camunda       CamundaConfig      `mapstructure:"camunda"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Logging       LoggingConfig      `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address        string   `mapstructure:"address"`
	SessionTTL     int      `mapstructure:"session_ttl"`     // milliseconds
	SweepInterval  int      `mapstructure:"sweep_interval"`  // milliseconds
	AllowedOrigins []string `mapstructure:"allowed_origins"` // CORS
}

// WizardConfig holds the step-engine settings.
type WizardConfig struct {
	// Policy is "advisory" (validity never gates navigation) or "strict".
	Policy         string            `mapstructure:"policy"`
	Upload         UploadConfig      `mapstructure:"upload"`
	EscapeHatches  EscapeHatchConfig `mapstructure:"escape_hatches"`
	SubmitTimeout  int               `mapstructure:"submit_timeout"` // milliseconds
	ProfileTimeout int               `mapstructure:"profile_timeout"`
}

type UploadConfig struct {
	MaxAttempts  int `mapstructure:"max_attempts"`
	BaseDelay    int `mapstructure:"base_delay"` // milliseconds
	MaxDelay     int `mapstructure:"max_delay"`  // milliseconds
	StoreTimeout int `mapstructure:"store_timeout"`
}

// EscapeHatchConfig points at the external profile and resume management UIs.
type EscapeHatchConfig struct {
	EditProfileURL   string `mapstructure:"edit_profile_url"`
	ManageResumesURL string `mapstructure:"manage_resumes_url"`
}

type DraftConfig struct {
	TTL       int    `mapstructure:"ttl"` // milliseconds
	KeyPrefix string `mapstructure:"key_prefix"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ServicesConfig locates the applicant profile and resume library services.
type ServicesConfig struct {
	ProfileBaseURL string `mapstructure:"profile_base_url"`
	ResumeBaseURL  string `mapstructure:"resume_base_url"`
	Timeout        int    `mapstructure:"timeout"` // milliseconds
}

type CamundaConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BrokerAddress  string `mapstructure:"broker_address"`
	ProcessID      string `mapstructure:"process_id"`
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

// NotificationConfig controls the submission receipt email.
type NotificationConfig struct {
	Email struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
	} `mapstructure:"email"`
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
