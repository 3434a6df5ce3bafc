// Package config loads runtime configuration for the editor CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the record store
//	-n string   collection name
//	-g string   host:port of the gRPC health endpoint
//	-i int      online status check interval (seconds)
//	-p int      page size
//	-b string   S3 bucket for backups
//	-r string   S3 region
//	-e string   S3 endpoint (MinIO and friends)
//	-u string   S3 access key
//	-k string   S3 secret key
//	-o string   export directory for file backups
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "3s" or integer nanoseconds:
//
//	{
//	  "store_url": "http://127.0.0.1:8090",
//	  "collection": "blueprints",
//	  "health_addr": "127.0.0.1:50051",
//	  "online_check_interval": "3s",
//	  "page_size": 10,
//	  "batch_size": 200,
//	  "request_timeout": "30s",
//	  "s3_bucket": "arcbp-backups",
//	  "export_dir": "exports"
//	}
//
// Keys that are absent keep their default.
package config
