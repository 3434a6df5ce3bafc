package main

import (
	"context"
	"log"
	"os"

	"github.com/xtbe/arcbp-editor/internal/buildinfo"
	"github.com/xtbe/arcbp-editor/internal/server"
	"github.com/xtbe/arcbp-editor/internal/server/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(ctx, cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
