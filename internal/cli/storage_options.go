package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/SmitUplenchwar2687/Rewind/internal/config"
	"github.com/SmitUplenchwar2687/Rewind/internal/storage"
)

type storageOptions struct {
	backend           string
	redisHost         string
	redisPort         int
	redisPassword     string
	redisDB           int
	redisCluster      bool
	redisClusterNodes []string
	redisPoolSize     int
	redisMaxRetries   int
	redisDialTimeout  time.Duration
	redisPrefix       string
	s3Region          string
	s3Endpoint        string
	s3AccessKeyID     string
	s3SecretAccessKey string
	s3Bucket          string
	s3Prefix          string
	sqlitePath        string
}

func defaultStorageOptions() storageOptions {
	d := config.Default().Storage
	return storageOptions{
		backend:          d.Backend,
		redisHost:        d.Redis.Host,
		redisPort:        d.Redis.Port,
		redisPoolSize:    d.Redis.PoolSize,
		redisMaxRetries:  d.Redis.MaxRetries,
		redisDialTimeout: d.Redis.DialTimeout,
		redisPrefix:      d.Redis.Prefix,
		s3Region:         d.S3.Region,
		s3Prefix:         d.S3.Prefix,
		sqlitePath:       d.SQLite.Path,
	}
}

func (o *storageOptions) addFlags(cmd *cobra.Command) {
	d := defaultStorageOptions()
	cmd.Flags().StringVar(&o.backend, "storage", d.backend, "archive backend (memory, redis, s3, sqlite)")
	cmd.Flags().StringVar(&o.redisHost, "redis-host", d.redisHost, "redis host (or host:port)")
	cmd.Flags().IntVar(&o.redisPort, "redis-port", d.redisPort, "redis port")
	cmd.Flags().StringVar(&o.redisPassword, "redis-password", "", "redis password")
	cmd.Flags().IntVar(&o.redisDB, "redis-db", 0, "redis database index")
	cmd.Flags().BoolVar(&o.redisCluster, "redis-cluster", false, "enable redis cluster mode")
	cmd.Flags().StringSliceVar(&o.redisClusterNodes, "redis-cluster-nodes", nil, "redis cluster nodes host:port list")
	cmd.Flags().IntVar(&o.redisPoolSize, "redis-pool-size", d.redisPoolSize, "redis connection pool size")
	cmd.Flags().IntVar(&o.redisMaxRetries, "redis-max-retries", d.redisMaxRetries, "redis max retries")
	cmd.Flags().DurationVar(&o.redisDialTimeout, "redis-dial-timeout", d.redisDialTimeout, "redis dial timeout")
	cmd.Flags().StringVar(&o.redisPrefix, "redis-prefix", d.redisPrefix, "redis key prefix")
	cmd.Flags().StringVar(&o.s3Region, "s3-region", d.s3Region, "S3 region")
	cmd.Flags().StringVar(&o.s3Endpoint, "s3-endpoint", "", "S3-compatible endpoint URL (path-style addressing)")
	cmd.Flags().StringVar(&o.s3AccessKeyID, "s3-access-key-id", "", "S3 access key id (default credential chain when empty)")
	cmd.Flags().StringVar(&o.s3SecretAccessKey, "s3-secret-access-key", "", "S3 secret access key")
	cmd.Flags().StringVar(&o.s3Bucket, "s3-bucket", "", "S3 bucket (required for s3 backend)")
	cmd.Flags().StringVar(&o.s3Prefix, "s3-prefix", d.s3Prefix, "S3 key prefix")
	cmd.Flags().StringVar(&o.sqlitePath, "sqlite-path", d.sqlitePath, "SQLite database file")
}

func (o *storageOptions) applyConfigIfUnset(cmd *cobra.Command, cfg *config.StorageConfig) {
	if cfg == nil {
		return
	}

	if !cmd.Flags().Changed("storage") {
		o.backend = cfg.Backend
	}
	if !cmd.Flags().Changed("redis-host") {
		o.redisHost = cfg.Redis.Host
	}
	if !cmd.Flags().Changed("redis-port") {
		o.redisPort = cfg.Redis.Port
	}
	if !cmd.Flags().Changed("redis-password") {
		o.redisPassword = cfg.Redis.Password
	}
	if !cmd.Flags().Changed("redis-db") {
		o.redisDB = cfg.Redis.DB
	}
	if !cmd.Flags().Changed("redis-cluster") {
		o.redisCluster = cfg.Redis.Cluster
	}
	if !cmd.Flags().Changed("redis-cluster-nodes") {
		o.redisClusterNodes = cfg.Redis.ClusterNodes
	}
	if !cmd.Flags().Changed("redis-pool-size") {
		o.redisPoolSize = cfg.Redis.PoolSize
	}
	if !cmd.Flags().Changed("redis-max-retries") {
		o.redisMaxRetries = cfg.Redis.MaxRetries
	}
	if !cmd.Flags().Changed("redis-dial-timeout") {
		o.redisDialTimeout = cfg.Redis.DialTimeout
	}
	if !cmd.Flags().Changed("redis-prefix") {
		o.redisPrefix = cfg.Redis.Prefix
	}
	if !cmd.Flags().Changed("s3-region") {
		o.s3Region = cfg.S3.Region
	}
	if !cmd.Flags().Changed("s3-endpoint") {
		o.s3Endpoint = cfg.S3.Endpoint
	}
	if !cmd.Flags().Changed("s3-access-key-id") {
		o.s3AccessKeyID = cfg.S3.AccessKeyID
	}
	if !cmd.Flags().Changed("s3-secret-access-key") {
		o.s3SecretAccessKey = cfg.S3.SecretAccessKey
	}
	if !cmd.Flags().Changed("s3-bucket") {
		o.s3Bucket = cfg.S3.Bucket
	}
	if !cmd.Flags().Changed("s3-prefix") {
		o.s3Prefix = cfg.S3.Prefix
	}
	if !cmd.Flags().Changed("sqlite-path") {
		o.sqlitePath = cfg.SQLite.Path
	}
}

func (o *storageOptions) normalize() error {
	if o.backend != config.BackendRedis || o.redisCluster {
		return nil
	}

	host, port, err := normalizeRedisHostPort(o.redisHost, o.redisPort)
	if err != nil {
		return err
	}
	o.redisHost = host
	o.redisPort = port
	return nil
}

func (o *storageOptions) toConfig() config.StorageConfig {
	return config.StorageConfig{
		Backend: o.backend,
		Redis: config.StorageRedisConfig{
			Host:         o.redisHost,
			Port:         o.redisPort,
			Password:     o.redisPassword,
			DB:           o.redisDB,
			Cluster:      o.redisCluster,
			ClusterNodes: append([]string(nil), o.redisClusterNodes...),
			PoolSize:     o.redisPoolSize,
			MaxRetries:   o.redisMaxRetries,
			DialTimeout:  o.redisDialTimeout,
			Prefix:       o.redisPrefix,
		},
		S3: config.StorageS3Config{
			Region:          o.s3Region,
			Endpoint:        o.s3Endpoint,
			AccessKeyID:     o.s3AccessKeyID,
			SecretAccessKey: o.s3SecretAccessKey,
			Bucket:          o.s3Bucket,
			Prefix:          o.s3Prefix,
		},
		SQLite: config.StorageSQLiteConfig{Path: o.sqlitePath},
	}
}

// openArchive resolves the storage flags against cfg and opens the archive.
func (o *storageOptions) openArchive(ctx context.Context, cmd *cobra.Command, cfg *config.StorageConfig, logger *slog.Logger) (*storage.Archive, error) {
	o.applyConfigIfUnset(cmd, cfg)
	if err := o.normalize(); err != nil {
		return nil, err
	}
	store, err := storage.Open(ctx, o.toConfig())
	if err != nil {
		return nil, fmt.Errorf("opening %s archive: %w", o.backend, err)
	}
	return storage.NewArchive(store, storage.WithLogger(logger)), nil
}

func normalizeRedisHostPort(host string, port int) (string, int, error) {
	if strings.Contains(host, ":") {
		h, p, err := net.SplitHostPort(host)
		if err != nil {
			return "", 0, fmt.Errorf("invalid --redis-host value %q: %w", host, err)
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return "", 0, fmt.Errorf("invalid redis port in --redis-host %q: %w", host, err)
		}
		host = h
		port = n
	}

	if host == "" {
		return "", 0, fmt.Errorf("redis host cannot be empty")
	}
	if port <= 0 {
		return "", 0, fmt.Errorf("redis port must be positive, got %d", port)
	}

	return host, port, nil
}
