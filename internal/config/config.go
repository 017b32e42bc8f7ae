package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/SmitUplenchwar2687/Rewind/internal/recording"
)

// Storage backend names.
const (
	BackendNone   = ""
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendS3     = "s3"
	BackendSQLite = "sqlite"
)

// Config is the top-level configuration for a Rewind process.
type Config struct {
	Recording   RecordingConfig   `json:"recording" yaml:"recording"`
	DebugServer DebugServerConfig `json:"debug_server" yaml:"debug_server"`
	HTTP        HTTPConfig        `json:"http" yaml:"http"`
	Replay      ReplayConfig      `json:"replay" yaml:"replay"`
	Storage     StorageConfig     `json:"storage" yaml:"storage"`
}

// RecordingConfig controls what the recorder captures.
type RecordingConfig struct {
	AppName          string        `json:"app_name" yaml:"app_name"`
	Events           bool          `json:"events" yaml:"events"`
	Snapshots        bool          `json:"snapshots" yaml:"snapshots"`
	MouseMoves       bool          `json:"mouse_moves" yaml:"mouse_moves"`
	SnapshotInterval time.Duration `json:"snapshot_interval" yaml:"snapshot_interval"`
}

// Capture converts the section into the document's capture configuration.
func (r RecordingConfig) Capture() recording.Config {
	return recording.Config{
		AppName: r.AppName,
		Capture: recording.CaptureFlags{
			Events:     r.Events,
			Snapshots:  r.Snapshots,
			MouseMoves: r.MouseMoves,
		},
	}
}

// DebugServerConfig configures the live export socket. An empty Address
// derives a socket path from the application name.
type DebugServerConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Address string `json:"address" yaml:"address"`
	Framing string `json:"framing" yaml:"framing"`
}

// HTTPConfig configures the optional HTTP inspector gateway.
type HTTPConfig struct {
	Enabled           bool          `json:"enabled" yaml:"enabled"`
	Addr              string        `json:"addr" yaml:"addr"`
	BroadcastInterval time.Duration `json:"broadcast_interval" yaml:"broadcast_interval"`
	AllowedOrigins    []string      `json:"allowed_origins" yaml:"allowed_origins"`
	// ExportRate caps /api/export requests per client per minute; 0 disables it.
	ExportRate  int `json:"export_rate" yaml:"export_rate"`
	ExportBurst int `json:"export_burst" yaml:"export_burst"`
}

// ReplayConfig holds playback defaults.
type ReplayConfig struct {
	Speed         float64       `json:"speed" yaml:"speed"`
	Mode          string        `json:"mode" yaml:"mode"`
	FrameDuration time.Duration `json:"frame_duration" yaml:"frame_duration"`
}

// StorageConfig selects and configures the recording archive.
type StorageConfig struct {
	Backend string              `json:"backend" yaml:"backend"`
	Redis   StorageRedisConfig  `json:"redis" yaml:"redis"`
	S3      StorageS3Config     `json:"s3" yaml:"s3"`
	SQLite  StorageSQLiteConfig `json:"sqlite" yaml:"sqlite"`
}

// StorageRedisConfig configures the Redis archive backend.
type StorageRedisConfig struct {
	Host         string        `json:"host" yaml:"host"`
	Port         int           `json:"port" yaml:"port"`
	Password     string        `json:"password" yaml:"password"`
	DB           int           `json:"db" yaml:"db"`
	Cluster      bool          `json:"cluster" yaml:"cluster"`
	ClusterNodes []string      `json:"cluster_nodes" yaml:"cluster_nodes"`
	PoolSize     int           `json:"pool_size" yaml:"pool_size"`
	MaxRetries   int           `json:"max_retries" yaml:"max_retries"`
	DialTimeout  time.Duration `json:"dial_timeout" yaml:"dial_timeout"`
	Prefix       string        `json:"prefix" yaml:"prefix"`
}

// StorageS3Config configures the S3 archive backend. Endpoint is set for
// S3-compatible services such as MinIO and switches to path-style URLs.
type StorageS3Config struct {
	Region          string `json:"region" yaml:"region"`
	Endpoint        string `json:"endpoint" yaml:"endpoint"`
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
	Bucket          string `json:"bucket" yaml:"bucket"`
	Prefix          string `json:"prefix" yaml:"prefix"`
}

// StorageSQLiteConfig configures the SQLite archive backend.
type StorageSQLiteConfig struct {
	Path string `json:"path" yaml:"path"`
}

// Default returns a Config with sensible defaults. The archive is not
// configured by default.
func Default() Config {
	return Config{
		Recording: RecordingConfig{
			AppName:          "rewind-demo",
			Events:           true,
			Snapshots:        true,
			MouseMoves:       true,
			SnapshotInterval: 100 * time.Millisecond,
		},
		DebugServer: DebugServerConfig{
			Enabled: true,
			Framing: "newline",
		},
		HTTP: HTTPConfig{
			Addr:              ":8080",
			BroadcastInterval: time.Second,
			AllowedOrigins:    []string{"*"},
			ExportRate:        60,
			ExportBurst:       10,
		},
		Replay: ReplayConfig{
			Speed:         1,
			Mode:          "headless",
			FrameDuration: 16667 * time.Microsecond,
		},
		Storage: StorageConfig{
			Backend: BackendNone,
			Redis: StorageRedisConfig{
				Host:        "localhost",
				Port:        6379,
				PoolSize:    20,
				MaxRetries:  3,
				DialTimeout: 5 * time.Second,
				Prefix:      "rewind:",
			},
			S3: StorageS3Config{
				Region: "us-east-1",
				Prefix: "recordings/",
			},
			SQLite: StorageSQLiteConfig{
				Path: "rewind.db",
			},
		},
	}
}

// Validate checks that the config is valid.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Recording.AppName) == "" {
		return fmt.Errorf("recording.app_name must not be empty")
	}
	if c.Recording.SnapshotInterval <= 0 {
		return fmt.Errorf("recording.snapshot_interval must be positive, got %s", c.Recording.SnapshotInterval)
	}

	switch c.DebugServer.Framing {
	case "newline", "length":
	default:
		return fmt.Errorf("unknown debug_server.framing %q, must be one of: newline, length", c.DebugServer.Framing)
	}

	if c.HTTP.Enabled && c.HTTP.Addr == "" {
		return fmt.Errorf("http.addr is required when http is enabled")
	}
	if c.HTTP.BroadcastInterval <= 0 {
		return fmt.Errorf("http.broadcast_interval must be positive, got %s", c.HTTP.BroadcastInterval)
	}
	if c.HTTP.ExportRate < 0 || c.HTTP.ExportBurst < 0 {
		return fmt.Errorf("http.export_rate and http.export_burst must not be negative")
	}

	if c.Replay.Speed < 0 {
		return fmt.Errorf("replay.speed must not be negative, got %g", c.Replay.Speed)
	}
	switch c.Replay.Mode {
	case "headless", "interactive":
	default:
		return fmt.Errorf("unknown replay.mode %q, must be one of: headless, interactive", c.Replay.Mode)
	}
	if c.Replay.FrameDuration <= 0 {
		return fmt.Errorf("replay.frame_duration must be positive, got %s", c.Replay.FrameDuration)
	}

	return c.Storage.Validate()
}

// Validate checks the settings of the selected backend only.
func (s StorageConfig) Validate() error {
	switch s.Backend {
	case BackendNone, BackendMemory:
	case BackendRedis:
		if s.Redis.Cluster {
			if len(s.Redis.ClusterNodes) == 0 {
				return fmt.Errorf("storage.redis.cluster_nodes is required when cluster=true")
			}
		} else {
			if s.Redis.Host == "" {
				return fmt.Errorf("storage.redis.host is required")
			}
			if s.Redis.Port <= 0 {
				return fmt.Errorf("storage.redis.port must be positive, got %d", s.Redis.Port)
			}
		}
	case BackendS3:
		if s.S3.Bucket == "" {
			return fmt.Errorf("storage.s3.bucket is required")
		}
	case BackendSQLite:
		if s.SQLite.Path == "" {
			return fmt.Errorf("storage.sqlite.path is required")
		}
	default:
		return fmt.Errorf("unknown storage.backend %q, must be one of: memory, redis, s3, sqlite", s.Backend)
	}
	return nil
}

// LoadFile reads a JSON or YAML config file (chosen by extension) and merges
// it with defaults. Fields not specified in the file retain their defaults.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}

	// Use a raw intermediate struct to handle duration parsing.
	var raw rawConfig
	if isYAML(path) {
		err = yaml.Unmarshal(data, &raw)
	} else {
		err = json.Unmarshal(data, &raw)
	}
	if err != nil {
		return cfg, fmt.Errorf("parsing config file: %w", err)
	}

	if err := raw.mergeInto(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// rawConfig is the file representation: string durations and pointer
// booleans so that an explicit false overrides a true default.
type rawConfig struct {
	Recording struct {
		AppName          string `json:"app_name" yaml:"app_name"`
		Events           *bool  `json:"events" yaml:"events"`
		Snapshots        *bool  `json:"snapshots" yaml:"snapshots"`
		MouseMoves       *bool  `json:"mouse_moves" yaml:"mouse_moves"`
		SnapshotInterval string `json:"snapshot_interval" yaml:"snapshot_interval"`
	} `json:"recording" yaml:"recording"`
	DebugServer struct {
		Enabled *bool  `json:"enabled" yaml:"enabled"`
		Address string `json:"address" yaml:"address"`
		Framing string `json:"framing" yaml:"framing"`
	} `json:"debug_server" yaml:"debug_server"`
	HTTP struct {
		Enabled           *bool    `json:"enabled" yaml:"enabled"`
		Addr              string   `json:"addr" yaml:"addr"`
		BroadcastInterval string   `json:"broadcast_interval" yaml:"broadcast_interval"`
		AllowedOrigins    []string `json:"allowed_origins" yaml:"allowed_origins"`
		ExportRate        *int     `json:"export_rate" yaml:"export_rate"`
		ExportBurst       *int     `json:"export_burst" yaml:"export_burst"`
	} `json:"http" yaml:"http"`
	Replay struct {
		Speed         *float64 `json:"speed" yaml:"speed"`
		Mode          string   `json:"mode" yaml:"mode"`
		FrameDuration string   `json:"frame_duration" yaml:"frame_duration"`
	} `json:"replay" yaml:"replay"`
	Storage struct {
		Backend string `json:"backend" yaml:"backend"`
		Redis   struct {
			Host         string   `json:"host" yaml:"host"`
			Port         int      `json:"port" yaml:"port"`
			Password     string   `json:"password" yaml:"password"`
			DB           int      `json:"db" yaml:"db"`
			Cluster      *bool    `json:"cluster" yaml:"cluster"`
			ClusterNodes []string `json:"cluster_nodes" yaml:"cluster_nodes"`
			PoolSize     int      `json:"pool_size" yaml:"pool_size"`
			MaxRetries   int      `json:"max_retries" yaml:"max_retries"`
			DialTimeout  string   `json:"dial_timeout" yaml:"dial_timeout"`
			Prefix       string   `json:"prefix" yaml:"prefix"`
		} `json:"redis" yaml:"redis"`
		S3 struct {
			Region          string `json:"region" yaml:"region"`
			Endpoint        string `json:"endpoint" yaml:"endpoint"`
			AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
			SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
			Bucket          string `json:"bucket" yaml:"bucket"`
			Prefix          string `json:"prefix" yaml:"prefix"`
		} `json:"s3" yaml:"s3"`
		SQLite struct {
			Path string `json:"path" yaml:"path"`
		} `json:"sqlite" yaml:"sqlite"`
	} `json:"storage" yaml:"storage"`
}

func (raw *rawConfig) mergeInto(cfg *Config) error {
	rec := raw.Recording
	if rec.AppName != "" {
		cfg.Recording.AppName = rec.AppName
	}
	setBool(&cfg.Recording.Events, rec.Events)
	setBool(&cfg.Recording.Snapshots, rec.Snapshots)
	setBool(&cfg.Recording.MouseMoves, rec.MouseMoves)
	if err := setDuration(&cfg.Recording.SnapshotInterval, rec.SnapshotInterval, "recording.snapshot_interval"); err != nil {
		return err
	}

	dbg := raw.DebugServer
	setBool(&cfg.DebugServer.Enabled, dbg.Enabled)
	if dbg.Address != "" {
		cfg.DebugServer.Address = dbg.Address
	}
	if dbg.Framing != "" {
		cfg.DebugServer.Framing = dbg.Framing
	}

	h := raw.HTTP
	setBool(&cfg.HTTP.Enabled, h.Enabled)
	if h.Addr != "" {
		cfg.HTTP.Addr = h.Addr
	}
	if err := setDuration(&cfg.HTTP.BroadcastInterval, h.BroadcastInterval, "http.broadcast_interval"); err != nil {
		return err
	}
	if h.AllowedOrigins != nil {
		cfg.HTTP.AllowedOrigins = h.AllowedOrigins
	}
	if h.ExportRate != nil {
		cfg.HTTP.ExportRate = *h.ExportRate
	}
	if h.ExportBurst != nil {
		cfg.HTTP.ExportBurst = *h.ExportBurst
	}

	rp := raw.Replay
	if rp.Speed != nil {
		cfg.Replay.Speed = *rp.Speed
	}
	if rp.Mode != "" {
		cfg.Replay.Mode = rp.Mode
	}
	if err := setDuration(&cfg.Replay.FrameDuration, rp.FrameDuration, "replay.frame_duration"); err != nil {
		return err
	}

	st := raw.Storage
	if st.Backend != "" {
		cfg.Storage.Backend = st.Backend
	}
	r := st.Redis
	if r.Host != "" {
		cfg.Storage.Redis.Host = r.Host
	}
	if r.Port > 0 {
		cfg.Storage.Redis.Port = r.Port
	}
	if r.Password != "" {
		cfg.Storage.Redis.Password = r.Password
	}
	if r.DB > 0 {
		cfg.Storage.Redis.DB = r.DB
	}
	setBool(&cfg.Storage.Redis.Cluster, r.Cluster)
	if len(r.ClusterNodes) > 0 {
		cfg.Storage.Redis.ClusterNodes = r.ClusterNodes
	}
	if r.PoolSize > 0 {
		cfg.Storage.Redis.PoolSize = r.PoolSize
	}
	if r.MaxRetries > 0 {
		cfg.Storage.Redis.MaxRetries = r.MaxRetries
	}
	if err := setDuration(&cfg.Storage.Redis.DialTimeout, r.DialTimeout, "storage.redis.dial_timeout"); err != nil {
		return err
	}
	if r.Prefix != "" {
		cfg.Storage.Redis.Prefix = r.Prefix
	}

	s3 := st.S3
	if s3.Region != "" {
		cfg.Storage.S3.Region = s3.Region
	}
	if s3.Endpoint != "" {
		cfg.Storage.S3.Endpoint = s3.Endpoint
	}
	if s3.AccessKeyID != "" {
		cfg.Storage.S3.AccessKeyID = s3.AccessKeyID
	}
	if s3.SecretAccessKey != "" {
		cfg.Storage.S3.SecretAccessKey = s3.SecretAccessKey
	}
	if s3.Bucket != "" {
		cfg.Storage.S3.Bucket = s3.Bucket
	}
	if s3.Prefix != "" {
		cfg.Storage.S3.Prefix = s3.Prefix
	}
	if st.SQLite.Path != "" {
		cfg.Storage.SQLite.Path = st.SQLite.Path
	}
	return nil
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, s, field string) error {
	if s == "" {
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", field, err)
	}
	*dst = d
	return nil
}

const exampleJSON = `{
  "recording": {
    "app_name": "my-app",
    "events": true,
    "snapshots": true,
    "mouse_moves": false,
    "snapshot_interval": "100ms"
  },
  "debug_server": {
    "enabled": true,
    "address": "",
    "framing": "newline"
  },
  "http": {
    "enabled": false,
    "addr": ":8080",
    "broadcast_interval": "1s",
    "allowed_origins": ["*"],
    "export_rate": 60,
    "export_burst": 10
  },
  "replay": {
    "speed": 1,
    "mode": "headless",
    "frame_duration": "16.667ms"
  },
  "storage": {
    "backend": "sqlite",
    "sqlite": {
      "path": "rewind.db"
    }
  }
}
`

const exampleYAML = `recording:
  app_name: my-app
  events: true
  snapshots: true
  mouse_moves: false
  snapshot_interval: 100ms
debug_server:
  enabled: true
  address: ""
  framing: newline
http:
  enabled: false
  addr: ":8080"
  broadcast_interval: 1s
  allowed_origins: ["*"]
  export_rate: 60
  export_burst: 10
replay:
  speed: 1
  mode: headless
  frame_duration: 16.667ms
storage:
  backend: redis
  redis:
    host: localhost
    port: 6379
    prefix: "rewind:"
`

// WriteExample writes an example config file to the given path, in YAML
// when the extension asks for it and JSON otherwise.
func WriteExample(path string) error {
	example := exampleJSON
	if isYAML(path) {
		example = exampleYAML
	}
	return os.WriteFile(path, []byte(example), 0o644)
}
