// Package main is the entry point for the aptodo CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"aptodo/internal/cli"
	"aptodo/internal/commands"
	"aptodo/internal/config"
	"aptodo/internal/ledger"
	"aptodo/internal/session"
	"aptodo/internal/wallet"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	// Create backend factory
	factory := func(ctx context.Context, cfg *config.Config) (*commands.Backend, error) {
		client, err := ledger.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		sess := session.New(client, cfg.Contract(),
			session.WithLogger(cfg.Logger()),
			session.WithWalletSource(wallet.Source(cfg, client)),
			session.WithAddStrategy(session.AddStrategy(cfg.Settings.AddStrategy)),
			session.WithMaxConcurrentReads(cfg.Settings.MaxConcurrentReads),
		)
		return &commands.Backend{Session: sess, Faucet: client}, nil
	}

	// Create dispatcher
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)

	// Run and exit with code
	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(code)
}
