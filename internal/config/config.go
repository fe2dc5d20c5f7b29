package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	domain "github.com/ramindav/outreach-crm/internal/domain/contact"
)

type Config struct {
	DatabaseURL string `env:"DATABASE_URL,required"`
	Port        string `env:"PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	SpoolDir string `env:"IMPORT_SPOOL_DIR" envDefault:"imports"`

	// Admission thresholds: a commit larger than either runs in background.
	SyncRowLimit  int   `env:"IMPORT_SYNC_ROW_LIMIT" envDefault:"500"`
	SyncByteLimit int64 `env:"IMPORT_SYNC_BYTE_LIMIT" envDefault:"1048576"`

	Workers          int           `env:"IMPORT_WORKERS" envDefault:"4"`
	ChunkSize        int           `env:"IMPORT_CHUNK_SIZE" envDefault:"25"`
	PollInterval     time.Duration `env:"IMPORT_POLL_INTERVAL" envDefault:"500ms"`
	LeaseDuration    time.Duration `env:"IMPORT_JOB_LEASE" envDefault:"60s"`
	PhonePolicyFile  string        `env:"PHONE_POLICY_FILE"`
	RequestBodyLimit string        `env:"REQUEST_BODY_LIMIT" envDefault:"20M"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// PhonePolicy loads the YAML normalization policy file when configured,
// falling back to compiled-in defaults.
func (c Config) PhonePolicy() (domain.PhonePolicy, error) {
	policy := domain.DefaultPhonePolicy()
	if c.PhonePolicyFile == "" {
		return policy, nil
	}

	raw, err := os.ReadFile(c.PhonePolicyFile)
	if err != nil {
		return domain.PhonePolicy{}, fmt.Errorf("read phone policy file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &policy); err != nil {
		return domain.PhonePolicy{}, fmt.Errorf("parse phone policy file: %w", err)
	}
	if policy.MinDigits <= 0 {
		policy.MinDigits = domain.DefaultPhonePolicy().MinDigits
	}
	return policy, nil
}
