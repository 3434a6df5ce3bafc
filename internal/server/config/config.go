// Package config handles configuration for the record store server,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the record store server.
//
// Fields:
//   - HTTPAddr: bind address of the records API.
//   - GRPCAddr: bind address of the gRPC health endpoint; empty disables it.
//   - StoreDriver: memory, sqlite or postgres.
//   - DatabaseDSN: file path for sqlite, connection string for postgres.
//   - Collection: the collection name served under /api/collections/.
//   - MaxPerPage: upper bound for the perPage list parameter.
//   - ShutdownTimeout: how long in-flight requests get on shutdown.
type Config struct {
	HTTPAddr        string
	GRPCAddr        string
	StoreDriver     string
	DatabaseDSN     string
	Collection      string
	MaxPerPage      int
	ShutdownTimeout time.Duration
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8090"
	c.GRPCAddr = ":50051"
	c.StoreDriver = "sqlite"
	c.DatabaseDSN = "arcbp.db"
	c.Collection = "blueprints"
	c.MaxPerPage = 1000
	c.ShutdownTimeout = 10 * time.Second
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
