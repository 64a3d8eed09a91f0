package main

import (
	"context"
	"log"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:           "lipidcare",
		Usage:          "Lipid panel risk assessment and care planning service",
		DefaultCommand: "serve",
		Commands: []*cli.Command{
			cmdServe,
			cmdMigrate,
			cmdExtract,
			cmdAssess,
		},
	}
}
