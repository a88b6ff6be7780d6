package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"povcat/internal/catalogue"
	"povcat/internal/logging"
	"povcat/internal/pipeline"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var rebuild bool
	var refresh bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Scan channels and write the catalogue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := pipeline.Options{Rebuild: rebuild, RefreshWhitelist: refresh}
			return runPipeline(cmd, ctx, opts, jsonOut)
		},
	}

	cmd.Flags().BoolVar(&rebuild, "rebuild", false, "Ignore the existing catalogue and rebuild it from this fetch")
	cmd.Flags().BoolVar(&refresh, "refresh-whitelist", false, "Fetch the ranking even if the cached whitelist is fresh")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the run report as JSON")
	return cmd
}

func runPipeline(cmd *cobra.Command, ctx *commandContext, opts pipeline.Options, jsonOut bool) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	p, res, err := pipeline.Build(cmd.Context(), cfg, logger, opts)
	defer func() {
		if closeErr := res.Close(); closeErr != nil {
			logger.Warn("failed to release resources", logging.Error(closeErr))
		}
	}()
	if err != nil {
		return err
	}

	report, err := p.Run(cmd.Context())
	if err != nil {
		return err
	}
	if jsonOut {
		return writeJSON(cmd, newReportView(report))
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderReport(report, shouldColorize(out)))
	return nil
}

type channelView struct {
	Label       string `json:"label"`
	Listed      int    `json:"listed"`
	InWindow    int    `json:"in_window"`
	OutOfWindow int    `json:"out_of_window"`
	Error       string `json:"error,omitempty"`
}

type playerView struct {
	Nickname string `json:"nickname"`
	Count    int    `json:"count"`
}

type reportView struct {
	RunID       string        `json:"run_id"`
	Status      string        `json:"status"`
	Mode        string        `json:"mode"`
	StartedAt   time.Time     `json:"started_at"`
	Cutoff      string        `json:"cutoff"`
	Whitelist   int           `json:"whitelist_players"`
	Channels    []channelView `json:"channels"`
	Fetched     int           `json:"fetched"`
	Shorts      int           `json:"shorts"`
	Resolved    int           `json:"resolved"`
	Unresolved  int           `json:"unresolved"`
	CarriedOver int           `json:"carried_over"`
	Added       int           `json:"added"`
	Entries     int           `json:"entries"`
	Promoted    []playerView  `json:"promoted"`
	Degraded    []string      `json:"degraded"`
	Location    string        `json:"location"`
}

func newReportView(report pipeline.Report) reportView {
	view := reportView{
		RunID:       report.RunID,
		Status:      report.Status.String(),
		Mode:        string(report.Mode),
		StartedAt:   report.StartedAt,
		Cutoff:      report.Cutoff.Format(catalogue.DateLayout),
		Whitelist:   report.WhitelistSize,
		Fetched:     report.Fetched,
		Shorts:      report.Shorts,
		Resolved:    report.Resolved,
		Unresolved:  report.Unresolved,
		CarriedOver: report.CarriedOver,
		Added:       report.Added,
		Entries:     report.Entries,
		Channels:    []channelView{},
		Promoted:    []playerView{},
		Degraded:    []string{},
		Location:    report.Location,
	}
	for _, ch := range report.Channels {
		view.Channels = append(view.Channels, channelView(ch))
	}
	for _, pc := range report.Promoted {
		view.Promoted = append(view.Promoted, playerView{Nickname: pc.Nickname, Count: pc.Count})
	}
	view.Degraded = append(view.Degraded, report.Degraded...)
	return view
}

func renderReport(report pipeline.Report, colorize bool) string {
	var lines []string
	lines = append(lines, renderSectionHeader("Catalogue run "+report.RunID, colorize)...)
	summary := fmt.Sprintf("%d entries written to %s", report.Entries, report.Location)
	lines = append(lines,
		renderStatusLine("Status", outcomeKind(report.Status), summary, colorize),
		renderValueLine("Mode", string(report.Mode)),
		renderValueLine("Window", "since "+report.Cutoff.Format(catalogue.DateLayout)),
		renderValueLine("Whitelist", fmt.Sprintf("%d players", report.WhitelistSize)),
		renderValueLine("Uploads", fmt.Sprintf("%d in window, %d shorts skipped", report.Fetched, report.Shorts)),
		renderValueLine("Titles", fmt.Sprintf("%d resolved, %d unresolved", report.Resolved, report.Unresolved)),
		renderValueLine("Merge", fmt.Sprintf("%d carried over, %d added, %d duplicates, %d pruned",
			report.CarriedOver, report.Added, report.Duplicates, report.Pruned)),
	)
	if report.LookupCalls > 0 || report.LookupHits > 0 {
		lines = append(lines, renderValueLine("Player lookups",
			fmt.Sprintf("%d live, %d cached", report.LookupCalls, report.LookupHits)))
	}
	for _, reason := range report.Degraded {
		lines = append(lines, renderStatusLine("Degraded", statusWarn, reason, colorize))
	}

	if len(report.Channels) > 0 {
		rows := make([][]string, 0, len(report.Channels))
		for _, ch := range report.Channels {
			state := "ok"
			if ch.Error != "" {
				state = ch.Error
			}
			rows = append(rows, []string{
				ch.Label,
				strconv.Itoa(ch.Listed),
				strconv.Itoa(ch.InWindow),
				state,
			})
		}
		lines = append(lines, "", renderTable("Channels",
			[]string{"Channel", "Listed", "In window", "State"},
			rows,
			[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft},
		))
	}

	if len(report.Promoted) > 0 {
		rows := make([][]string, 0, len(report.Promoted))
		for _, pc := range report.Promoted {
			rows = append(rows, []string{pc.Nickname, strconv.Itoa(pc.Count)})
		}
		lines = append(lines, "", renderTable("Promoted players",
			[]string{"Player", "Videos"},
			rows,
			[]columnAlignment{alignLeft, alignRight},
		))
	}
	return strings.Join(lines, "\n")
}
