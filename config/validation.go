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

// ValidateConfig checks if the configuration meets the requirements for the current environment
func ValidateConfig(cfg *Config) error {
	env := GetEnvironment()

	var errs []ValidationError

	if cfg.ServerPort == "" {
		errs = append(errs, ValidationError{"server_port", "is required"})
	}
	if cfg.JWTSecret == "" {
		errs = append(errs, ValidationError{"jwt_secret", "is required"})
	}
	if cfg.PageSize <= 0 {
		errs = append(errs, ValidationError{"page_size", "must be positive"})
	}

	switch cfg.DBDriver {
	case DriverPostgres:
		for field, value := range map[string]string{
			"db_host": cfg.DBHost,
			"db_port": cfg.DBPort,
			"db_user": cfg.DBUser,
			"db_name": cfg.DBName,
		} {
			if value == "" {
				errs = append(errs, ValidationError{field, "is required"})
			}
		}
		if env == Production && cfg.DBPassword == "" {
			errs = append(errs, ValidationError{"db_password", "secret is required in production"})
		}
	case DriverSQLite:
		if env == Production {
			errs = append(errs, ValidationError{"db_driver", "sqlite is not supported in production"})
		}
		if cfg.DBPath == "" {
			errs = append(errs, ValidationError{"db_path", "is required"})
		}
	default:
		errs = append(errs, ValidationError{"db_driver", fmt.Sprintf("unknown driver %q", cfg.DBDriver)})
	}

	if len(errs) > 0 {
		lines := make([]string, len(errs))
		for i, e := range errs {
			lines[i] = e.Error()
		}
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(lines, "\n"))
	}

	return nil
}
