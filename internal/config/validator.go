package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aleister1102/grcdigest/internal/common/errorwrapper"
	"github.com/go-playground/validator/v10"
)

// Supported run modes.
const (
	ModeOneTime = "onetime"
	ModeServe   = "serve"
)

// ValidateConfig performs validation on the GlobalConfig structure.
func ValidateConfig(cfg *GlobalConfig) error {
	if cfg == nil {
		return errorwrapper.NewValidationError("config", nil, "configuration is nil")
	}

	validate := newValidator()
	if err := validate.Struct(cfg); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) {
			return formatValidationErrors(errs)
		}
		return fmt.Errorf("configuration validation error: %w", err)
	}

	return validateCrossFieldRules(cfg)
}

func newValidator() *validator.Validate {
	validate := validator.New()

	_ = validate.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "", "trace", "debug", "info", "warn", "error", "fatal", "panic":
			return true
		default:
			return false
		}
	})

	_ = validate.RegisterValidation("logformat", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "", "console", "text", "json":
			return true
		default:
			return false
		}
	})

	_ = validate.RegisterValidation("mode", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "", ModeOneTime, ModeServe:
			return true
		default:
			return false
		}
	})

	return validate
}

// validateCrossFieldRules checks rules that depend on more than one field.
func validateCrossFieldRules(cfg *GlobalConfig) error {
	if strings.EqualFold(cfg.Mode, ModeServe) && cfg.ServerConfig.AuthToken == "" {
		return errorwrapper.WrapError(
			errorwrapper.NewValidationError("server_config.auth_token", "", "auth token is required in serve mode"),
			errorwrapper.ErrInvalidConfiguration.Error(),
		)
	}
	if cfg.StorageConfig.ExportParquet && cfg.StorageConfig.ParquetBasePath == "" {
		return errorwrapper.NewValidationError("storage_config.parquet_base_path", "", "required when export_parquet is enabled")
	}
	if cfg.StorageConfig.RecordHistory && cfg.StorageConfig.HistoryDBPath == "" {
		return errorwrapper.NewValidationError("storage_config.history_db_path", "", "required when record_history is enabled")
	}
	return nil
}

func formatValidationErrors(errs validator.ValidationErrors) error {
	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		msg := fmt.Sprintf("Validation failed for '%s': rule '%s'", e.Namespace(), e.Tag())
		if e.Param() != "" {
			msg += fmt.Sprintf(" (expected: %s)", e.Param())
		}
		if e.Value() != nil && e.Value() != "" {
			msg += fmt.Sprintf(", actual: '%v'", e.Value())
		}
		messages = append(messages, msg)
	}
	return fmt.Errorf("%w: configuration validation failed:\n  %s", errorwrapper.ErrInvalidConfiguration, strings.Join(messages, "\n  "))
}
