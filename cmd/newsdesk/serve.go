package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pders01/newsdesk/internal/debuglog"
	"github.com/pders01/newsdesk/internal/devserver"
	"github.com/pders01/newsdesk/internal/feed"
	"github.com/pders01/newsdesk/internal/index"
)

type serveFlags struct {
	addr       string
	indexPath  string
	memory     bool
	offline    bool
	force      bool
	permissive bool
}

func newServeCmd(opts *cliOptions) *cobra.Command {
	var f serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a local news search service fed by RSS sources",
		Long: `serve indexes the RSS/Atom sources from the [server] config section into
a local bleve index and answers the same HTTP API the client talks to. Point
api.base_url at it to use newsdesk without the remote service.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if f.addr != "" {
				cfg.Server.Addr = f.addr
			}
			if f.indexPath != "" {
				cfg.Server.IndexPath = f.indexPath
			}
			if f.memory {
				cfg.Server.IndexPath = ""
			}

			level := debuglog.ParseLogLevel(cfg.Log.Level)
			if level == debuglog.LevelOff {
				level = debuglog.LevelInfo
			}
			debuglog.SetupWriter(level, cmd.ErrOrStderr())
			defer debuglog.Close()

			idx, err := index.Open(cfg.Server.IndexPath)
			if err != nil {
				return err
			}
			defer idx.Close()

			var feeds *feed.Manager
			if !f.offline {
				catalog, err := loadCatalog(cfg)
				if err != nil {
					return err
				}
				feeds = feed.NewManager(cfg, catalog.Companies)
				feeds.SetForceRefresh(f.force)
				feeds.SetPermissiveValidation(f.permissive)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.OutOrStdout(), "newsdesk dev server on http://%s\n", cfg.Server.Addr)
			return devserver.New(cfg, idx, feeds).Run(ctx)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.addr, "addr", "", "Listen address (overrides server.addr)")
	fl.StringVar(&f.indexPath, "index", "", "Index directory (overrides server.index_path)")
	fl.BoolVar(&f.memory, "memory", false, "Keep the index in memory")
	fl.BoolVar(&f.offline, "offline", false, "Serve the existing index without fetching sources")
	fl.BoolVar(&f.force, "force", false, "Ignore cache validators and refresh intervals")
	fl.BoolVar(&f.permissive, "permissive", false, "Allow loopback and private source URLs")
	return cmd
}
