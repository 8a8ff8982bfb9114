package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/KilimcininKorOglu/obasdk/internal/ldif"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate returns all validation errors joined, or nil.
func (c *Config) Validate() error {
	return errors.Join(ValidateConfig(c)...)
}

// ValidateConfig validates the configuration and returns a list of validation errors.
// An empty slice indicates the configuration is valid.
func ValidateConfig(config *Config) []error {
	var errs []error
	errs = append(errs, validateLogConfig(&config.Logging)...)
	errs = append(errs, validateClientConfig(&config.Client)...)
	errs = append(errs, validateLDIFConfig(&config.LDIF)...)
	return errs
}

// validateLogConfig validates logging configuration.
func validateLogConfig(config *LogConfig) []error {
	var errs []error

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if config.Level != "" && !validLevels[strings.ToLower(config.Level)] {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: "must be debug, info, warn, or error",
		})
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if config.Format != "" && !validFormats[strings.ToLower(config.Format)] {
		errs = append(errs, ValidationError{
			Field:   "logging.format",
			Message: "must be text or json",
		})
	}

	if config.Output != "" && config.Output != "stdout" && config.Output != "stderr" {
		dir := filepath.Dir(config.Output)
		if !filepath.IsAbs(config.Output) {
			errs = append(errs, ValidationError{
				Field:   "logging.output",
				Message: "must be stdout, stderr, or an absolute file path",
			})
		} else if _, err := os.Stat(dir); os.IsNotExist(err) {
			errs = append(errs, ValidationError{
				Field:   "logging.output",
				Message: fmt.Sprintf("directory %s does not exist", dir),
			})
		}
	}

	return errs
}

// validateClientConfig validates connection settings.
func validateClientConfig(config *ClientConfig) []error {
	var errs []error

	if config.Address != "" {
		if err := validateAddress(config.Address); err != nil {
			errs = append(errs, ValidationError{Field: "client.address", Message: err.Error()})
		}
	}

	if err := validateDN(config.BindDN); err != nil {
		errs = append(errs, ValidationError{Field: "client.bindDN", Message: err.Error()})
	}
	if config.BindPassword != "" && config.BindDN == "" {
		errs = append(errs, ValidationError{
			Field:   "client.bindPassword",
			Message: "requires client.bindDN",
		})
	}

	if config.DialTimeout < 0 {
		errs = append(errs, ValidationError{Field: "client.dialTimeout", Message: "must be non-negative"})
	}
	if config.ResponseTimeout < 0 {
		errs = append(errs, ValidationError{Field: "client.responseTimeout", Message: "must be non-negative"})
	}
	if config.MaxMessageSize < 0 {
		errs = append(errs, ValidationError{Field: "client.maxMessageSize", Message: "must be non-negative"})
	}

	return errs
}

// validateLDIFConfig validates LDIF settings.
func validateLDIFConfig(config *LDIFConfig) []error {
	var errs []error

	if _, err := ldif.ParseCompression(config.Compression); err != nil {
		errs = append(errs, ValidationError{
			Field:   "ldif.compression",
			Message: "must be none, gzip, zstd, lz4, or auto",
		})
	}
	if config.MaxLineLength < 0 {
		errs = append(errs, ValidationError{Field: "ldif.maxLineLength", Message: "must be non-negative"})
	}
	if config.WrapColumn < 0 {
		errs = append(errs, ValidationError{Field: "ldif.wrapColumn", Message: "must be non-negative"})
	}

	return errs
}

// validateAddress validates a server address in host:port or ldap://host[:port] form.
func validateAddress(addr string) error {
	if scheme, rest, ok := strings.Cut(addr, "://"); ok {
		if !strings.EqualFold(scheme, "ldap") {
			return fmt.Errorf("unsupported scheme %q", scheme)
		}
		if strings.TrimSuffix(rest, "/") == "" {
			return fmt.Errorf("host is required")
		}
		return nil
	}

	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid address format: %v", err)
	}
	if port == "" {
		return fmt.Errorf("port is required")
	}
	return nil
}

// validateDN validates a distinguished name format.
func validateDN(dn string) error {
	if dn == "" {
		return nil
	}

	// Basic DN validation: should contain at least one RDN
	for _, part := range strings.Split(dn, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !strings.Contains(part, "=") {
			return fmt.Errorf("invalid RDN format: %s", part)
		}
	}

	return nil
}
