package cmd

import (
	"fmt"

	"github.com/gentaprep/genta-tui/internal/app"
	"github.com/gentaprep/genta-tui/internal/auth"
	"github.com/gentaprep/genta-tui/internal/logging"
	"github.com/gentaprep/genta-tui/internal/store"
	"github.com/spf13/cobra"
)

// runApp wires config, logging, and the local store, then launches the TUI.
func runApp(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logging.New(cfg.LogPath)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer func() { _ = log.Sync() }()

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open local store: %w", err)
	}
	defer func() { _ = st.Close() }()

	return app.Run(app.Options{
		Config: cfg,
		Logger: log,
		Tokens: auth.NewFileStore(cfg.TokenPath),
		Store:  st,
	})
}
