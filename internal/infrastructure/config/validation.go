package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator checks configuration structs and reports failures by their
// config key, e.g. "scheduler.min_eta"
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator that names fields after their
// mapstructure keys and knows the cross-field database rules
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	v.RegisterStructValidation(validateDatabase, DatabaseConfig{})
	return &Validator{validate: v}
}

// validateDatabase requires postgres to be reachable through either a URL or
// a host and database name
func validateDatabase(sl validator.StructLevel) {
	cfg := sl.Current().Interface().(DatabaseConfig)
	if cfg.Type != "postgres" || cfg.URL != "" {
		return
	}
	if cfg.Host == "" {
		sl.ReportError(cfg.Host, "host", "Host", "required_for_postgres", "")
	}
	if cfg.Name == "" {
		sl.ReportError(cfg.Name, "name", "Name", "required_for_postgres", "")
	}
}

func (v *Validator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return v.formatValidationError(err)
	}
	return nil
}

// formatValidationError lists every failed key on its own line
func (v *Validator) formatValidationError(err error) error {
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	messages := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		key := e.Namespace()
		if i := strings.Index(key, "."); i >= 0 {
			key = key[i+1:]
		}
		messages = append(messages, fmt.Sprintf("%s failed %s (value: '%v')", key, e.Tag(), e.Value()))
	}
	return fmt.Errorf("validation failed:\n  %s", strings.Join(messages, "\n  "))
}

// ValidateConfig validates the entire configuration
func ValidateConfig(cfg *Config) error {
	return NewValidator().Validate(cfg)
}
