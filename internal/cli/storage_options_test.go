package cli

import (
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/SmitUplenchwar2687/Rewind/internal/config"
)

func TestNormalizeRedisHostPort(t *testing.T) {
	host, port, err := normalizeRedisHostPort("localhost:6380", 6379)
	if err != nil {
		t.Fatalf("normalizeRedisHostPort() error = %v", err)
	}
	if host != "localhost" || port != 6380 {
		t.Fatalf("normalizeRedisHostPort() = %s:%d, want localhost:6380", host, port)
	}

	host, port, err = normalizeRedisHostPort("redis.internal", 6379)
	if err != nil {
		t.Fatalf("normalizeRedisHostPort() error = %v", err)
	}
	if host != "redis.internal" || port != 6379 {
		t.Fatalf("normalizeRedisHostPort() = %s:%d, want redis.internal:6379", host, port)
	}
}

func TestNormalizeRedisHostPort_Invalid(t *testing.T) {
	if _, _, err := normalizeRedisHostPort("", 6379); err == nil {
		t.Fatal("expected error for empty host")
	}
	if _, _, err := normalizeRedisHostPort("localhost", 0); err == nil {
		t.Fatal("expected error for non-positive port")
	}
	if _, _, err := normalizeRedisHostPort("localhost:http", 6379); err == nil {
		t.Fatal("expected error for non-numeric port")
	}
}

func newOptionsCmd(opts *storageOptions, args ...string) (*cobra.Command, error) {
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	opts.addFlags(cmd)
	return cmd, cmd.ParseFlags(args)
}

func TestStorageOptions_ConfigFillsUnsetFlags(t *testing.T) {
	opts := defaultStorageOptions()
	cmd, err := newOptionsCmd(&opts, "--redis-port", "7000")
	if err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}

	cfg := config.Default().Storage
	cfg.Backend = config.BackendRedis
	cfg.Redis.Host = "cache.internal"
	cfg.Redis.Port = 6390
	cfg.Redis.DialTimeout = 2 * time.Second
	cfg.Redis.Prefix = "team:"
	opts.applyConfigIfUnset(cmd, &cfg)

	got := opts.toConfig()
	if got.Backend != config.BackendRedis {
		t.Errorf("Backend = %q, want redis", got.Backend)
	}
	if got.Redis.Host != "cache.internal" {
		t.Errorf("Host = %q, want cache.internal", got.Redis.Host)
	}
	if got.Redis.Port != 7000 {
		t.Errorf("Port = %d, want flag value 7000", got.Redis.Port)
	}
	if got.Redis.DialTimeout != 2*time.Second || got.Redis.Prefix != "team:" {
		t.Errorf("Redis = %+v", got.Redis)
	}
}

func TestStorageOptions_FlagsOverrideConfig(t *testing.T) {
	opts := defaultStorageOptions()
	cmd, err := newOptionsCmd(&opts,
		"--storage", "s3",
		"--s3-bucket", "recordings",
		"--s3-endpoint", "http://localhost:9000",
		"--s3-prefix", "ci/",
	)
	if err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}

	cfg := config.Default().Storage
	cfg.Backend = config.BackendSQLite
	cfg.S3.Bucket = "other"
	cfg.S3.Region = "eu-west-1"
	opts.applyConfigIfUnset(cmd, &cfg)

	got := opts.toConfig()
	if got.Backend != config.BackendS3 {
		t.Errorf("Backend = %q, want s3", got.Backend)
	}
	if got.S3.Bucket != "recordings" || got.S3.Endpoint != "http://localhost:9000" || got.S3.Prefix != "ci/" {
		t.Errorf("S3 = %+v", got.S3)
	}
	if got.S3.Region != "eu-west-1" {
		t.Errorf("Region = %q, want config value eu-west-1", got.S3.Region)
	}
	if err := got.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestStorageOptions_Normalize(t *testing.T) {
	opts := defaultStorageOptions()
	opts.backend = config.BackendRedis
	opts.redisHost = "10.0.0.5:6381"
	if err := opts.normalize(); err != nil {
		t.Fatalf("normalize() error = %v", err)
	}
	if opts.redisHost != "10.0.0.5" || opts.redisPort != 6381 {
		t.Errorf("normalize() = %s:%d, want 10.0.0.5:6381", opts.redisHost, opts.redisPort)
	}

	// Other backends ignore redis settings entirely.
	opts = defaultStorageOptions()
	opts.backend = config.BackendSQLite
	opts.redisHost = ""
	if err := opts.normalize(); err != nil {
		t.Errorf("normalize() error = %v for sqlite backend", err)
	}
}

func TestStorageOptions_Defaults(t *testing.T) {
	opts := defaultStorageOptions()
	cfg := opts.toConfig()
	if cfg.Backend != config.BackendNone {
		t.Errorf("Backend = %q, want none", cfg.Backend)
	}
	if cfg.Redis.Port != 6379 || cfg.SQLite.Path != "rewind.db" {
		t.Errorf("defaults = %+v", cfg)
	}
}
