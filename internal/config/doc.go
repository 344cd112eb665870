// Package config provides loading and environment overlay for Pond's
// server configuration. It exposes a Default() baseline and helpers to
// load from a config file and overlay environment variables.
//
// Example:
//
//	cfg := config.Default()
//	if fileCfg, err := config.Load("/etc/pond.yaml"); err == nil {
//	    cfg = fileCfg
//	}
//	config.FromEnv(&cfg)
package config
