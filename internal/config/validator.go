package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aleister1102/alistmover/internal/errorwrapper"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// ValidateConfig performs validation on the GlobalConfig structure.
func ValidateConfig(cfg *GlobalConfig) error {
	validate := validator.New()

	// Register custom validation for log levels recognized by zerolog
	_ = validate.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		level := strings.ToLower(fl.Field().String())
		if level == "" {
			return true // Optional field
		}
		_, err := zerolog.ParseLevel(level)
		return err == nil
	})

	if err := validate.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			var sb strings.Builder
			sb.WriteString("configuration validation failed:")
			for _, fieldErr := range validationErrors {
				sb.WriteString(fmt.Sprintf(" field '%s' failed on '%s' (value: '%v');", fieldErr.Namespace(), fieldErr.Tag(), fieldErr.Value()))
			}
			return errorwrapper.NewError("%s", sb.String())
		}
		return errorwrapper.WrapError(err, "configuration validation failed")
	}

	// Cross-field checks the tag language cannot express
	if !cfg.AlistConfig.HasCredentials() {
		return errorwrapper.NewValidationError("alist", "", "either token or username+password must be configured")
	}
	if cfg.MonitorConfig.SourcePath == cfg.MonitorConfig.DestPath {
		return errorwrapper.NewValidationError("monitor.dest_path", cfg.MonitorConfig.DestPath, "dest_path must differ from source_path")
	}

	return nil
}
