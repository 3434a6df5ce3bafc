package config

import (
	"encoding/json"
	"os"

	"github.com/xtbe/arcbp-editor/internal/flagx"
	"github.com/xtbe/arcbp-editor/internal/timex"
)

// JsonConfig is the on-disk form of Config. Durations accept "10s" style
// strings or integer nanoseconds.
type JsonConfig struct {
	HTTPAddr        string         `json:"http_addr"`
	GRPCAddr        *string        `json:"grpc_addr"`
	StoreDriver     string         `json:"store_driver"`
	DatabaseDSN     string         `json:"database_dsn"`
	Collection      string         `json:"collection"`
	MaxPerPage      int            `json:"max_per_page"`
	ShutdownTimeout timex.Duration `json:"shutdown_timeout"`
}

// parseJson overlays the file named by -c/-config onto config. Keys that
// are absent keep their current value. An unreadable or invalid file
// panics.
func parseJson(config *Config) {
	path := flagx.ConfigPath(os.Args[1:])
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.HTTPAddr != "" {
		config.HTTPAddr = c.HTTPAddr
	}
	// An explicit empty string disables the health endpoint.
	if c.GRPCAddr != nil {
		config.GRPCAddr = *c.GRPCAddr
	}
	if c.StoreDriver != "" {
		config.StoreDriver = c.StoreDriver
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.Collection != "" {
		config.Collection = c.Collection
	}
	if c.MaxPerPage > 0 {
		config.MaxPerPage = c.MaxPerPage
	}
	if c.ShutdownTimeout.Duration > 0 {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
}
