// Package cli implements the gofup command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/gofup/gofup/internal/category"
	"github.com/gofup/gofup/internal/config"
	"github.com/gofup/gofup/internal/deletion"
	"github.com/gofup/gofup/internal/logging"
	"github.com/gofup/gofup/internal/lookup"
	"github.com/gofup/gofup/internal/prompt"
	"github.com/gofup/gofup/internal/remote"
	"github.com/gofup/gofup/internal/store"
	"github.com/gofup/gofup/internal/upload"
)

// Engine bundles the long-lived components a command needs.
type Engine struct {
	Config   config.Config
	Store    *store.Store
	Client   *remote.GoFile
	Prompter prompt.Prompter
	Resolver *category.Resolver
	Finder   *lookup.Finder
	Deleter  *deletion.Orchestrator
	Uploader *upload.Service
	Log      logging.Logger

	out       io.Writer
	logCloser io.Closer
}

// InitEngine opens the database and wires every component together.
func InitEngine(ctx context.Context) (*Engine, error) {
	cfg, err := config.Load(config.DefaultDir(configDir))
	if err != nil {
		return nil, err
	}

	log, logCloser, err := logging.NewFileLogger(cfg.LogPath, verbose)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	st, err := store.Open(ctx, cfg.DatabasePath, log)
	if err != nil {
		logCloser.Close()
		return nil, err
	}

	var out io.Writer = os.Stdout
	if quiet {
		out = io.Discard
	}

	accountToken := st.GuestToken(ctx)
	client := remote.NewGoFile(accountToken, nil, log)
	// Prompts stay visible even with --quiet; only summaries are suppressed.
	prompter := prompt.NewTerminal(os.Stdin, os.Stdout)

	resolver := category.NewResolver(st, prompter, out, log)
	resolver.MaxWildcardMatches = cfg.MaxWildcardMatches
	finder := lookup.NewFinder(st, prompter, out, log)

	return &Engine{
		Config:    cfg,
		Store:     st,
		Client:    client,
		Prompter:  prompter,
		Resolver:  resolver,
		Finder:    finder,
		Deleter:   deletion.NewOrchestrator(st, finder, client, prompter, out, log),
		Uploader:  upload.NewService(st, client, prompter, accountToken, out, log),
		Log:       log,
		out:       out,
		logCloser: logCloser,
	}, nil
}

// Close releases the database and log handles.
func (e *Engine) Close() {
	e.Store.Close()
	e.logCloser.Close()
}
