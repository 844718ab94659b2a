package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks that everything the server cannot run without is
// present. External API keys are deliberately not required: the adapters
// degrade to empty result sets when a key is missing, so a development
// instance can boot with only a database and a session secret.
func ValidateConfig(cfg *Config) error {
	var problems []ValidationError

	if cfg.SessionSecret == "" {
		problems = append(problems, ValidationError{"SECRET_KEY", "is required"})
	}
	if cfg.DatabaseURL == "" && cfg.DBHost == "" {
		problems = append(problems, ValidationError{"DATABASE_URL or DB_HOST", "is required"})
	}
	if cfg.DatabaseURL == "" && cfg.DBName == "" {
		problems = append(problems, ValidationError{"DB_NAME", "is required"})
	}
	if cfg.ServerPort == "" {
		problems = append(problems, ValidationError{"SERVER_PORT", "is required"})
	}
	if cfg.ChatRetentionHours <= 0 {
		problems = append(problems, ValidationError{"CHAT_RETENTION_HOURS", "must be positive"})
	}

	if len(problems) > 0 {
		msgs := make([]string, len(problems))
		for i, p := range problems {
			msgs[i] = p.Error()
		}
		return fmt.Errorf("%s", strings.Join(msgs, "; "))
	}

	return nil
}
