// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/relabs-tech/orientation_widget/internal/app"
	"github.com/relabs-tech/orientation_widget/internal/config"
)

func main() {
	log.Println("starting orientation widget terminal host")

	// Load configuration
	if err := config.InitGlobal("orientation_config.txt"); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunTerminal(ctx); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
