// Package config loads and validates MeloHub Core configuration.
//
// Values are resolved in three layers: built-in defaults, then the YAML
// file, then MELOHUB_* environment variables. Load returns only after
// the merged result passes validation.
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    return err
//	}
//
// Secrets (broker passwords, InfluxDB tokens) belong in environment
// variables, not the file, and the file itself should be 0600.
package config
