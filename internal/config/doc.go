// Package config loads and validates the obasdk tool configuration.
//
// Configuration is read from YAML. Values may reference environment
// variables as ${VAR} or ${VAR:-default}; keys that are absent keep their
// defaults:
//
//	logging:
//	  level: debug
//	  format: json
//	client:
//	  address: ldap://${LDAP_HOST:-localhost}:389
//	  responseTimeout: 10s
//	ldif:
//	  compression: auto
//	  stopOnError: true
//
// Load and validate:
//
//	cfg, err := config.LoadConfig("/etc/obasdk/config.yaml")
//	if err != nil {
//	    return err
//	}
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
package config
