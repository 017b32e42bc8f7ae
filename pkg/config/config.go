// Package config loads Rewind configuration from JSON or YAML files.
package config

import internal "github.com/SmitUplenchwar2687/Rewind/internal/config"

type (
	Config              = internal.Config
	RecordingConfig     = internal.RecordingConfig
	DebugServerConfig   = internal.DebugServerConfig
	HTTPConfig          = internal.HTTPConfig
	ReplayConfig        = internal.ReplayConfig
	StorageConfig       = internal.StorageConfig
	StorageRedisConfig  = internal.StorageRedisConfig
	StorageS3Config     = internal.StorageS3Config
	StorageSQLiteConfig = internal.StorageSQLiteConfig
)

// Storage backend names.
const (
	BackendNone   = internal.BackendNone
	BackendMemory = internal.BackendMemory
	BackendRedis  = internal.BackendRedis
	BackendS3     = internal.BackendS3
	BackendSQLite = internal.BackendSQLite
)

// Default returns the built-in configuration.
func Default() Config { return internal.Default() }

// LoadFile reads a .json, .yaml or .yml file over the defaults.
func LoadFile(path string) (Config, error) { return internal.LoadFile(path) }

// WriteExample writes the default configuration in the format implied by
// the file extension.
func WriteExample(path string) error { return internal.WriteExample(path) }
