// Package config handles YAML configuration loading with environment
// variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable
// interpolation. Every field has a default, so the tracker also runs
// with no config file at all.
package config
