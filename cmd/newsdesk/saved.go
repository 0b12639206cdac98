package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pders01/newsdesk/internal/news"
	"github.com/pders01/newsdesk/internal/search"
	"github.com/pders01/newsdesk/internal/storage"
	"github.com/pders01/newsdesk/internal/tui"
)

func newSavedCmd(opts *cliOptions) *cobra.Command {
	var limit int

	savedCmd := &cobra.Command{
		Use:   "saved",
		Short: "List, search and remove saved articles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withStore(func(store *storage.Store) error {
				saved, err := store.SavedArticles(limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(saved) == 0 {
					fmt.Fprintln(out, tui.MsgNoSaved)
					return nil
				}
				for _, s := range saved {
					printSaved(out, s.Article, s.SavedAt.Format(news.ShortDateLayout))
				}
				return nil
			})
		},
	}
	savedCmd.PersistentFlags().IntVarP(&limit, "limit", "n", 0, "Maximum number of articles (0 for all)")

	savedCmd.AddCommand(
		&cobra.Command{
			Use:   "search QUERY...",
			Short: "Search saved articles offline",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.withStore(func(store *storage.Store) error {
					results, err := search.NewEngine(store).Search(strings.Join(args, " "), limit)
					if err != nil {
						return err
					}
					out := cmd.OutOrStdout()
					if len(results) == 0 {
						fmt.Fprintln(out, tui.MsgNoResults)
						return nil
					}
					for _, r := range results {
						printSaved(out, *r.Article, fmt.Sprintf("score %.1f", r.Score))
					}
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "remove ID...",
			Short: "Remove saved articles by id",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.withStore(func(store *storage.Store) error {
					for _, id := range args {
						if err := store.RemoveArticle(id); err != nil {
							return fmt.Errorf("removing %s: %w", id, err)
						}
						fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", id)
					}
					return nil
				})
			},
		},
		newHistoryCmd(opts, &limit),
	)
	return savedCmd
}

func newHistoryCmd(opts *cliOptions, limit *int) *cobra.Command {
	var wipe bool
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent searches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withStore(func(store *storage.Store) error {
				if wipe {
					if err := store.ClearHistory(); err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), "Search history cleared")
					return nil
				}
				records, err := store.RecentQueries(*limit)
				if err != nil {
					return err
				}
				for _, r := range records {
					fmt.Fprintf(cmd.OutOrStdout(), "%-40s %3dx  %s\n", r.Query, r.Count, r.LastUsed.Format(news.ShortDateLayout))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&wipe, "clear", false, "Delete the search history")
	return cmd
}

// withStore opens the configured database for the duration of fn.
func (o *cliOptions) withStore(fn func(*storage.Store) error) error {
	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}
	store, err := storage.NewStoreWithTimeout(cfg.Database.Path, cfg.Database.Timeout)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func printSaved(w io.Writer, a news.ArticleSummary, detail string) {
	tier := news.TierFor(a.TrustScore.Overall)
	fmt.Fprintf(w, "%s  %s\n    %s • %s • %s\n", a.ID, a.Title, a.Source.Name, tier, detail)
}
