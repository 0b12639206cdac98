package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pders01/newsdesk/internal/config"
	"github.com/pders01/newsdesk/internal/filter"
)

// Version is the version of the application, set at build time
var Version = "dev"

// cliOptions holds the persistent flags shared by every subcommand.
type cliOptions struct {
	configPath string
	dbPath     string
	apiURL     string
	envFile    string
	quiet      bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:   "newsdesk [query]",
		Short: "Corporate news search in the terminal",
		Long: `newsdesk searches a corporate news service: debounced suggestions,
filterable results with trust scores, trending stories and a local list of
saved articles. Without a subcommand it starts the interactive interface,
optionally with an initial query.`,
		SilenceUsage: true,
		RunE:         opts.runTUI,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	pf.StringVar(&opts.dbPath, "db", "", "Path to database file (overrides config)")
	pf.StringVar(&opts.apiURL, "api", "", "Base URL of the news service (overrides config)")
	pf.StringVar(&opts.envFile, "env-file", ".env", "Environment file to load before reading config")
	root.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Skip startup banner")

	root.AddCommand(
		newVersionCmd(),
		newConfigCmd(),
		newSearchCmd(opts),
		newTrendingCmd(opts),
		newSuggestCmd(opts),
		newSavedCmd(opts),
		newServeCmd(opts),
	)
	return root
}

// loadConfig reads .env, then the config file, then applies flag overrides.
func (o *cliOptions) loadConfig() (*config.Config, error) {
	if o.envFile != "" {
		if err := godotenv.Load(o.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", o.envFile, err)
		}
	}

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if o.dbPath != "" {
		cfg.Database.Path = o.dbPath
	}
	if o.apiURL != "" {
		cfg.API.BaseURL = o.apiURL
	}
	return cfg, nil
}

func loadCatalog(cfg *config.Config) (*filter.Catalog, error) {
	catalog, err := filter.LoadCatalog(cfg.UI.Catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to load filter catalog: %w", err)
	}
	return catalog, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "newsdesk %s\n", Version)
			fmt.Fprintln(out, "Corporate news search")
			fmt.Fprintln(out, "github.com/pders01/newsdesk")
		},
	}
}

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	var path string
	var force bool
	generate := &cobra.Command{
		Use:   "generate",
		Short: "Write the default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				path = config.DefaultPath()
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.GenerateDefaultConfig(path); err != nil {
				return fmt.Errorf("failed to generate config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated default configuration at: %s\n", path)
			return nil
		},
	}
	generate.Flags().StringVar(&path, "path", "", "Where to write the file (default ~/.config/newsdesk/config.toml)")
	generate.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	configCmd.AddCommand(generate)
	return configCmd
}
