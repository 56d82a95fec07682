package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Settings holds process-level configuration read from the environment.
type Settings struct {
	Host         string        `env:"WORDSEARCH_HOST" envDefault:"localhost"`
	Port         int           `env:"PORT" envDefault:"8080"`
	ConfigDir    string        `env:"CONFIG_DIR" envDefault:"configs"`
	DatabasePath string        `env:"WORDSEARCH_DB"`
	SessionTTL   time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	Locale       string        `env:"WORDSEARCH_LOCALE" envDefault:"en"`
	Debug        bool          `env:"DEBUG"`

	GCPProjectID string `env:"GCP_PROJECT_ID"`
	GCPRegion    string `env:"GCP_REGION" envDefault:"us-central1"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`

	NgrokEnabled   bool   `env:"NGROK_ENABLED"`
	NgrokAuthToken string `env:"NGROK_AUTHTOKEN"`
	NgrokDomain    string `env:"NGROK_DOMAIN"`
}

// LoadSettings parses Settings from the environment.
func LoadSettings() (*Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if s.Port <= 0 || s.Port > 65535 {
		return nil, fmt.Errorf("parse env: PORT must be between 1 and 65535, got %d", s.Port)
	}
	if s.SessionTTL <= 0 {
		return nil, fmt.Errorf("parse env: SESSION_TTL must be positive, got %s", s.SessionTTL)
	}
	return &s, nil
}

// GeneratorEnabled reports whether enough settings are present to reach the
// word list generator.
func (s *Settings) GeneratorEnabled() bool {
	return s.GCPProjectID != ""
}
