package config

import "time"

// Config holds runtime settings for the editor CLI.
//
// Fields:
//   - StoreURL: base URL of the record store's HTTP API.
//   - Collection: collection holding the blueprints.
//   - HealthAddr: host:port of the store's gRPC health endpoint; empty
//     disables the online watcher.
//   - OnlineCheckInterval: how often the watcher probes the store.
//   - PageSize: initial list page size.
//   - BatchSize: records per request when fetching the collection.
//   - RequestTimeout: per-request HTTP timeout.
//   - S3Bucket / S3Region / S3Endpoint / S3AccessKey / S3SecretKey: backup
//     bucket; backups go to ExportDir when S3Bucket is empty.
//   - ExportDir: directory for file backups.
type Config struct {
	StoreURL            string
	Collection          string
	HealthAddr          string
	OnlineCheckInterval time.Duration
	PageSize            int
	BatchSize           int
	RequestTimeout      time.Duration
	S3Bucket            string
	S3Region            string
	S3Endpoint          string
	S3AccessKey         string
	S3SecretKey         string
	ExportDir           string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.StoreURL = "http://127.0.0.1:8090"
	c.Collection = "blueprints"
	c.HealthAddr = "127.0.0.1:50051"
	c.OnlineCheckInterval = 3 * time.Second
	c.PageSize = 10
	c.BatchSize = 200
	c.RequestTimeout = 30 * time.Second
	c.S3Region = "us-east-1"
	c.ExportDir = "exports"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
