package config

import (
	"flag"
	"os"
	"time"

	"github.com/xtbe/arcbp-editor/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
// Unknown flags are filtered out with flagx.FilterArgs first.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-n", "-g", "-i", "-p", "-b", "-r", "-e", "-u", "-k", "-o"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.StoreURL, "a", cfg.StoreURL, "base URL of the record store")
	fs.StringVar(&cfg.Collection, "n", cfg.Collection, "collection name")
	fs.StringVar(&cfg.HealthAddr, "g", cfg.HealthAddr, "address and port of the gRPC health endpoint")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.IntVar(&cfg.PageSize, "p", cfg.PageSize, "page size")
	fs.StringVar(&cfg.S3Bucket, "b", cfg.S3Bucket, "S3 bucket for backups")
	fs.StringVar(&cfg.S3Region, "r", cfg.S3Region, "S3 region")
	fs.StringVar(&cfg.S3Endpoint, "e", cfg.S3Endpoint, "S3 endpoint")
	fs.StringVar(&cfg.S3AccessKey, "u", cfg.S3AccessKey, "S3 access key")
	fs.StringVar(&cfg.S3SecretKey, "k", cfg.S3SecretKey, "S3 secret key")
	fs.StringVar(&cfg.ExportDir, "o", cfg.ExportDir, "export directory")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
}
