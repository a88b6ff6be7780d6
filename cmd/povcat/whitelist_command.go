package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"povcat/internal/logging"
	"povcat/internal/outcome"
	"povcat/internal/pipeline"
)

func newWhitelistCommand(ctx *commandContext) *cobra.Command {
	var refresh bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "whitelist",
		Short: "Show the player whitelist built from the ranking",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			source, err := pipeline.NewRankingClient(cfg, logger)
			if err != nil {
				return err
			}
			res := &pipeline.Resources{}
			defer func() {
				if closeErr := res.Close(); closeErr != nil {
					logger.Warn("failed to release resources", logging.Error(closeErr))
				}
			}()
			fetcher, err := pipeline.NewWhitelistFetcher(cfg, source, res, logger)
			if err != nil {
				return err
			}

			result := fetcher.Fetch(cmd.Context(), time.Now(), refresh)
			if result.Status == outcome.StatusFatal {
				return fmt.Errorf("whitelist: %s", result.Error())
			}
			entries := result.Value.Entries()

			if jsonOut {
				players := make(map[string]*string, len(entries))
				for _, entry := range entries {
					if entry.Team == "" {
						players[entry.Nickname] = nil
						continue
					}
					team := entry.Team
					players[entry.Nickname] = &team
				}
				return writeJSON(cmd, map[string]any{
					"status":  result.Status.String(),
					"reason":  result.Error(),
					"players": players,
				})
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			message := fmt.Sprintf("%d players", len(entries))
			if result.Status != outcome.StatusOK {
				message += " (" + result.Error() + ")"
			}
			lines := []string{renderStatusLine("Whitelist", outcomeKind(result.Status), message, colorize)}
			if len(entries) > 0 {
				rows := make([][]string, 0, len(entries))
				for _, entry := range entries {
					team := entry.Team
					if team == "" {
						team = "-"
					}
					rows = append(rows, []string{entry.Nickname, team})
				}
				lines = append(lines, renderTable("", []string{"Player", "Team"}, rows, nil))
			}
			fmt.Fprintln(out, strings.Join(lines, "\n"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Ignore the cached snapshot and fetch the ranking")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the whitelist as JSON")
	return cmd
}
