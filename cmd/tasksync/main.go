// Package main wires the stores and repository together and runs a
// forced refresh, printing the reconciled task list. The sync core
// itself carries no command surface; this binary is just the wiring
// boundary.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"tasksync/internal/backend/googletasks"
	"tasksync/internal/backend/s3"
	"tasksync/internal/backend/sqlite"
	"tasksync/internal/config"
	"tasksync/internal/repo"
	"tasksync/internal/store"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("tasksync failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.New("")
	if err != nil {
		return err
	}
	if err := cfg.EnsureDirs(); err != nil {
		return err
	}

	local, err := sqlite.Open(cfg.DataDir)
	if err != nil {
		return err
	}
	defer local.Close()

	var remote store.Store
	switch cfg.Remote {
	case config.RemoteS3:
		remote, err = s3.New(ctx, cfg)
	default:
		remote, err = googletasks.New(ctx, cfg)
	}
	if err != nil {
		return err
	}

	r := repo.New(remote, local, slog.Default())

	tasks, err := r.Tasks(ctx, true)
	if err != nil {
		return err
	}

	for _, t := range tasks {
		mark := " "
		if t.Completed {
			mark = "x"
		}
		fmt.Printf("[%s] %s  %s\n", mark, t.ID, t.Title)
	}
	return nil
}
