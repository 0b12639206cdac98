package main

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pders01/newsdesk/internal/browser"
	"github.com/pders01/newsdesk/internal/debuglog"
	"github.com/pders01/newsdesk/internal/newsapi"
	"github.com/pders01/newsdesk/internal/storage"
	"github.com/pders01/newsdesk/internal/tui"
)

func (o *cliOptions) runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}

	if err := debuglog.Setup(debuglog.ParseLogLevel(cfg.Log.Level), cfg.Log.File); err != nil {
		return err
	}
	defer debuglog.Close()

	tui.ApplyTheme(cfg.UI.Colors)
	if !o.quiet {
		tui.ShowBanner(cmd.OutOrStdout(), Version)
	}

	client, err := newsapi.NewFromConfig(cfg)
	if err != nil {
		return err
	}
	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	store, err := storage.NewStoreWithTimeout(cfg.Database.Path, cfg.Database.Timeout)
	if err != nil {
		return err
	}
	defer store.Close()

	app := tui.NewApp(cfg, tui.Options{
		Client:       client,
		Store:        store,
		Opener:       browser.NewOpener(cfg),
		Catalog:      catalog,
		InitialQuery: strings.Join(args, " "),
		OnSubmit: func(q string) {
			debuglog.Infof("query submitted: %q", q)
		},
	})
	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err = p.Run()
	return err
}
