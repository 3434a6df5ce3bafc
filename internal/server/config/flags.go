package config

import (
	"flag"
	"os"

	"github.com/xtbe/arcbp-editor/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   records API bind address (e.g. ":8090")
//	-g string   gRPC health bind address; "" disables it
//	-s string   store driver: memory, sqlite, postgres
//	-d string   database DSN
//	-n string   collection name
//	-m int      maximum perPage
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-g", "-s", "-d", "-n", "-m"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port of the records API")
	fs.StringVar(&config.GRPCAddr, "g", config.GRPCAddr, "address and port of the gRPC health endpoint")
	fs.StringVar(&config.StoreDriver, "s", config.StoreDriver, "store driver (memory|sqlite|postgres)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.Collection, "n", config.Collection, "collection name")
	fs.IntVar(&config.MaxPerPage, "m", config.MaxPerPage, "maximum records per page")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
