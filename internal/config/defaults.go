package config

import "time"

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Logging: LogConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Client: ClientConfig{
			Address:         "localhost:389",
			DialTimeout:     10 * time.Second,
			ResponseTimeout: 30 * time.Second,
			MaxMessageSize:  16 * 1024 * 1024,
		},
		LDIF: LDIFConfig{
			Compression:   "auto",
			MaxLineLength: 1 << 20,
			WrapColumn:    76,
			StopOnError:   false,
		},
	}
}
