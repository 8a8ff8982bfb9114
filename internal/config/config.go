package config

import "time"

// Config holds the complete tool configuration.
type Config struct {
	Logging LogConfig    `yaml:"logging"`
	Client  ClientConfig `yaml:"client"`
	LDIF    LDIFConfig   `yaml:"ldif"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// ClientConfig holds LDAP connection settings.
type ClientConfig struct {
	Address         string        `yaml:"address"`
	BindDN          string        `yaml:"bindDN"`
	BindPassword    string        `yaml:"bindPassword"`
	DialTimeout     time.Duration `yaml:"dialTimeout"`
	ResponseTimeout time.Duration `yaml:"responseTimeout"`
	MaxMessageSize  int           `yaml:"maxMessageSize"`
}

// LDIFConfig holds LDIF reading and writing settings.
type LDIFConfig struct {
	Compression   string `yaml:"compression"`
	MaxLineLength int    `yaml:"maxLineLength"`
	WrapColumn    int    `yaml:"wrapColumn"`
	StopOnError   bool   `yaml:"stopOnError"`
}
