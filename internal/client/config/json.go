package config

import (
	"encoding/json"
	"os"

	"github.com/xtbe/arcbp-editor/internal/flagx"
	"github.com/xtbe/arcbp-editor/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
type JsonConfig struct {
	StoreURL            string         `json:"store_url"`
	Collection          string         `json:"collection"`
	HealthAddr          *string        `json:"health_addr"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	PageSize            int            `json:"page_size"`
	BatchSize           int            `json:"batch_size"`
	RequestTimeout      timex.Duration `json:"request_timeout"`
	S3Bucket            string         `json:"s3_bucket"`
	S3Region            string         `json:"s3_region"`
	S3Endpoint          string         `json:"s3_endpoint"`
	S3AccessKey         string         `json:"s3_access_key"`
	S3SecretKey         string         `json:"s3_secret_key"`
	ExportDir           string         `json:"export_dir"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c or -config. Without either flag nothing happens. Read and unmarshal
// errors panic.
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

	setString(&config.StoreURL, c.StoreURL)
	setString(&config.Collection, c.Collection)
	if c.HealthAddr != nil {
		config.HealthAddr = *c.HealthAddr
	}
	if c.OnlineCheckInterval.Duration > 0 {
		config.OnlineCheckInterval = c.OnlineCheckInterval.Duration
	}
	if c.PageSize > 0 {
		config.PageSize = c.PageSize
	}
	if c.BatchSize > 0 {
		config.BatchSize = c.BatchSize
	}
	if c.RequestTimeout.Duration > 0 {
		config.RequestTimeout = c.RequestTimeout.Duration
	}
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3Endpoint, c.S3Endpoint)
	setString(&config.S3AccessKey, c.S3AccessKey)
	setString(&config.S3SecretKey, c.S3SecretKey)
	setString(&config.ExportDir, c.ExportDir)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
