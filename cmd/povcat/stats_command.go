package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"povcat/internal/catalogue"
	"povcat/internal/pipeline"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarise the current catalogue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := pipeline.NewCatalogueStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			entries, err := store.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("load catalogue: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintf(out, "Catalogue at %s is empty\n", store.Location())
				return nil
			}
			fmt.Fprintln(out, renderStats(store.Location(), catalogue.Stats(entries), top, shouldColorize(out)))
			return nil
		},
	}

	cmd.Flags().IntVar(&top, "top", 10, "Rows per table (0 for all)")
	return cmd
}

func renderStats(location string, summary catalogue.Summary, top int, colorize bool) string {
	lines := renderSectionHeader("Catalogue "+location, colorize)
	lines = append(lines,
		renderValueLine("Entries", strconv.Itoa(summary.Total)),
		renderValueLine("With player", fmt.Sprintf("%d (%s)", summary.WithPlayer, percent(summary.WithPlayer, summary.Total))),
		renderValueLine("With map", fmt.Sprintf("%d (%s)", summary.WithMap, percent(summary.WithMap, summary.Total))),
		renderValueLine("Published", summary.Oldest+" .. "+summary.Newest),
	)
	for _, section := range []struct {
		title  string
		column string
		counts []catalogue.Count
	}{
		{"Players", "Player", summary.Players},
		{"Teams", "Team", summary.Teams},
		{"Maps", "Map", summary.Maps},
		{"Channels", "Channel", summary.Channels},
	} {
		if len(section.counts) == 0 {
			continue
		}
		counts := section.counts
		if top > 0 && len(counts) > top {
			counts = counts[:top]
		}
		rows := make([][]string, 0, len(counts))
		for _, c := range counts {
			rows = append(rows, []string{c.Label, strconv.Itoa(c.Count)})
		}
		lines = append(lines, "", renderTable(section.title, []string{section.column, "Videos"}, rows,
			[]columnAlignment{alignLeft, alignRight}))
	}
	return strings.Join(lines, "\n")
}

func percent(part, total int) string {
	if total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.0f%%", float64(part)*100/float64(total))
}
