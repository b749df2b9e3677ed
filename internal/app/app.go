// Package app wires the notification feed, the sound policy and the
// engagement ledger into one set of process-wide services.
package app

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/JamesPrial/todo-engagement/internal/config"
	"github.com/JamesPrial/todo-engagement/internal/engagement"
	"github.com/JamesPrial/todo-engagement/internal/notify"
	"github.com/JamesPrial/todo-engagement/internal/settings"
	"github.com/JamesPrial/todo-engagement/internal/sound"
	"github.com/JamesPrial/todo-engagement/internal/storage"
)

// App owns one instance of each service. Consumers receive the pointers they
// need; nothing here is global.
type App struct {
	Store    storage.KeyValueStore
	Settings settings.Source
	Sound    *sound.Policy
	Feed     *notify.Feed
	Ledger   *engagement.Ledger
}

// Options adjusts construction. The zero value is ready to use.
type Options struct {
	// WatchSettings reloads notification settings when the config file changes.
	WatchSettings bool

	// Player overrides audio detection.
	Player sound.Player
}

// New builds the services described by cfg. The ledger is hydrated from
// storage before New returns. A nil logger discards output.
func New(cfg *config.Config, logger *log.Logger, opts Options) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	store, err := storage.NewBackend(cfg.ProjectDir, cfg.Storage.Options())
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	src, err := settings.NewWatcher(cfg.Viper, logger, opts.WatchSettings)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	player := opts.Player
	if player == nil {
		player = sound.DetectPlayer(cfg.Sound.Command)
	}
	policy := sound.NewPolicy(src, player, cfg.Sound.Dir, logger)

	return &App{
		Store:    store,
		Settings: src,
		Sound:    policy,
		Feed:     notify.NewFeed(notify.WithAlerter(policy), notify.WithLogger(logger)),
		Ledger:   engagement.NewLedger(engagement.NewAdapter(store, cfg.Storage.Key, logger)),
	}, nil
}

// Close makes the ledger durable, stops any sound and releases storage. It
// reports a ledger that could not be saved as well as a failed store close.
func (a *App) Close() error {
	saveErr := a.Ledger.Close()
	a.Sound.Stop()
	return errors.Join(saveErr, a.Store.Close())
}
