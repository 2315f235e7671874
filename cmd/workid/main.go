package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"salesdesk_backend/internal/cli"
	"salesdesk_backend/internal/events"
	"salesdesk_backend/internal/leads"
	"salesdesk_backend/internal/leads/repository"
	"salesdesk_backend/platform/config"
	"salesdesk_backend/platform/db"
	"salesdesk_backend/platform/kvstore"
	"salesdesk_backend/platform/logger"
	"salesdesk_backend/platform/validator"
)

func main() {
	root := cli.RootCmd(loadServices)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadServices(ctx context.Context) (*cli.Services, func(), error) {
	cfg, err := config.LoadOperator()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Operator output goes to stdout; keep structured logs out of it.
	log := logger.NewWithWriter(cfg.Env, io.Discard)
	if os.Getenv("WORKID_VERBOSE") != "" {
		log = logger.NewWithWriter(cfg.Env, os.Stderr)
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	bus := events.NewInMemoryBus(log)
	module, err := leads.NewModule(repository.New(pool), bus, validator.New(), cfg, kvstore.NewMemory(), log)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}

	svc := &cli.Services{
		Sequencer: module.SequencingService(),
		Assigner:  module.AssignmentService(),
		Accounts:  module.AccountsService(),
	}
	return svc, func() {
		bus.Wait()
		pool.Close()
	}, nil
}
