// Copyright 2025 The Unimatch Authors
// Licensed under the EUPL-1.2

package main

import (
	"context"
	"log"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/hexago/unimatch/internal/config"
	"github.com/hexago/unimatch/internal/server"
)

func main() {
	cmd := &cli.Command{
		Name:   "unimatch",
		Usage:  "Start the student/university matching web application",
		Flags:  config.Flags(),
		Action: server.Run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
