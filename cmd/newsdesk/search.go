package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pders01/newsdesk/internal/filter"
	"github.com/pders01/newsdesk/internal/news"
	"github.com/pders01/newsdesk/internal/newsapi"
	"github.com/pders01/newsdesk/internal/paging"
	"github.com/pders01/newsdesk/internal/tui"
	"github.com/pders01/newsdesk/internal/validation"
)

const cardWidth = 80

type searchFlags struct {
	page       int
	categories []string
	sources    []string
	companies  []string
	minTrust   int
	compact    bool
	asJSON     bool
}

// criteria folds the filter flags through the same reducer the sidebar uses.
func (f searchFlags) criteria() (filter.Criteria, error) {
	c := filter.Default()
	for _, id := range f.categories {
		c = filter.Reduce(c, filter.Action{Kind: filter.ToggleCategory, Value: id})
	}
	for _, id := range f.sources {
		c = filter.Reduce(c, filter.Action{Kind: filter.ToggleSource, Value: id})
	}
	for _, id := range f.companies {
		c = filter.Reduce(c, filter.Action{Kind: filter.ToggleCompany, Value: id})
	}
	if f.minTrust != 0 {
		if !filter.IsThreshold(f.minTrust) {
			return c, fmt.Errorf("--min-trust must be one of %v", filter.Thresholds)
		}
		c = filter.Reduce(c, filter.Action{Kind: filter.SetMinTrust, Score: f.minTrust})
	}
	return c, nil
}

func newSearchCmd(opts *cliOptions) *cobra.Command {
	var f searchFlags

	cmd := &cobra.Command{
		Use:   "search QUERY...",
		Short: "Run one search and print a page of results",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := validation.SanitizeQuery(strings.Join(args, " "))
			if query == "" {
				return fmt.Errorf("query must not be blank")
			}
			criteria, err := f.criteria()
			if err != nil {
				return err
			}

			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			client, err := newsapi.NewFromConfig(cfg)
			if err != nil {
				return err
			}

			pager := paging.New()
			pager.Limit = cfg.API.PageSize
			pager.Page = max(f.page, 1)

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.API.Timeout)
			defer cancel()
			page, err := client.Search(ctx, newsapi.SearchRequest{
				Query:    query,
				Limit:    pager.Limit,
				Skip:     pager.Skip(),
				Criteria: criteria,
			})
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}

			out := cmd.OutOrStdout()
			if f.asJSON {
				return writeJSON(out, page)
			}
			pager.Total = page.Total
			if len(page.Results) == 0 {
				fmt.Fprintf(out, "%s for %q\n", tui.MsgNoResults, query)
				return nil
			}
			fmt.Fprintf(out, "%s for %q\n", tui.MsgResultsCount(page.Total), query)
			printCards(out, page.Results, f.compact)
			fmt.Fprintln(out, tui.MsgPage(pager.Page, pager.TotalPages()))
			return nil
		},
	}

	fl := cmd.Flags()
	fl.IntVarP(&f.page, "page", "p", 1, "Result page")
	fl.StringSliceVar(&f.categories, "category", nil, "Category id to include (repeatable)")
	fl.StringSliceVar(&f.sources, "source", nil, "Source id to include (repeatable)")
	fl.StringSliceVar(&f.companies, "company", nil, "Company id to include (repeatable)")
	fl.IntVar(&f.minTrust, "min-trust", 0, "Minimum trust score (40, 60, 75 or 85)")
	fl.BoolVar(&f.compact, "compact", false, "Print compact cards")
	fl.BoolVar(&f.asJSON, "json", false, "Print the raw result page as JSON")
	return cmd
}

func newTrendingCmd(opts *cliOptions) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "trending",
		Short: "Print the trending articles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			client, err := newsapi.NewFromConfig(cfg)
			if err != nil {
				return err
			}
			if limit <= 0 {
				limit = cfg.API.TrendingLimit
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.API.Timeout)
			defer cancel()
			articles, err := client.Trending(ctx, limit)
			if err != nil {
				return fmt.Errorf("loading trending articles: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, articles)
			}
			now := time.Now()
			for i, a := range articles {
				fmt.Fprintf(out, "%d. %s (%s, %s)\n", i+1, a.Title, a.Source.Name, news.RelativeTime(a.PublishedDate, now))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Number of articles (default from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func newSuggestCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "suggest PREFIX...",
		Short: "Print search suggestions for a partial query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := validation.SanitizeQuery(strings.Join(args, " "))
			if q == "" {
				return nil
			}
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			client, err := newsapi.NewFromConfig(cfg)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.API.Timeout)
			defer cancel()
			suggestions, err := client.Suggestions(ctx, q)
			if err != nil {
				return fmt.Errorf("loading suggestions: %w", err)
			}
			for _, s := range suggestions {
				fmt.Fprintln(cmd.OutOrStdout(), s)
			}
			return nil
		},
	}
}

func printCards(w io.Writer, articles []news.ArticleSummary, compact bool) {
	variant := tui.CardDefault
	if compact {
		variant = tui.CardCompact
	}
	now := time.Now()
	for _, a := range articles {
		fmt.Fprintln(w, tui.RenderCard(a, variant, cardWidth, now, tui.CardOptions{}))
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
