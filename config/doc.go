// Package config loads service configuration from config.yml, .env files and
// the environment through viper, and validates it.
//
// Every config section follows the same contract: ApplyDefaults fills zero
// values, Validate reports what is still wrong. Struct tags can be checked in
// bulk with ValidateStruct.
package config
