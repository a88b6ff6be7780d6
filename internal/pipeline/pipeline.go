package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"povcat/internal/catalogue"
	"povcat/internal/config"
	"povcat/internal/history"
	"povcat/internal/identification"
	"povcat/internal/logging"
	"povcat/internal/notifications"
	"povcat/internal/outcome"
	"povcat/internal/popularity"
	"povcat/internal/uploads"
	"povcat/internal/whitelist"
)

// WhitelistSource produces the whitelist for a run.
type WhitelistSource interface {
	Fetch(ctx context.Context, now time.Time, refresh bool) outcome.Result[*whitelist.Whitelist]
}

// HistoryRecorder journals finished runs.
type HistoryRecorder interface {
	Record(ctx context.Context, run history.Run) error
}

// Notifier announces finished runs.
type Notifier interface {
	Notify(ctx context.Context, summary notifications.RunSummary) error
}

// Deps are the collaborators of a run. Confirmer, History and Notifier are optional.
type Deps struct {
	Config    *config.Config
	Uploads   uploads.Source
	Whitelist WhitelistSource
	Confirmer identification.Confirmer
	Catalogue catalogue.Store
	History   HistoryRecorder
	Notifier  Notifier
	Logger    *slog.Logger
	// Clock returns the run time. Defaults to time.Now.
	Clock func() time.Time
	// NewRunID defaults to a random UUID.
	NewRunID func() string
}

// Options adjust a single run.
type Options struct {
	// Rebuild ignores the persisted catalogue regardless of the configured mode.
	Rebuild bool
	// RefreshWhitelist skips the whitelist freshness check.
	RefreshWhitelist bool
}

// Pipeline builds the catalogue.
type Pipeline struct {
	cfg       *config.Config
	source    uploads.Source
	whitelist WhitelistSource
	confirmer identification.Confirmer
	store     catalogue.Store
	history   HistoryRecorder
	notifier  Notifier
	logger    *slog.Logger
	clock     func() time.Time
	newRunID  func() string

	builder   *catalogue.Builder
	stopwords identification.Stopwords
	channels  []uploads.Channel
	refresh   bool
}

// New validates deps and returns a pipeline.
func New(deps Deps, opts Options) (*Pipeline, error) {
	if deps.Config == nil || deps.Uploads == nil || deps.Whitelist == nil || deps.Catalogue == nil {
		return nil, errors.New("pipeline requires config, uploads source, whitelist source, and catalogue store")
	}
	cfg := deps.Config

	mode, err := catalogue.ParseMode(cfg.Catalogue.Mode)
	if err != nil {
		return nil, err
	}
	if opts.Rebuild {
		mode = catalogue.ModeRebuild
	}
	policy, err := popularity.ParsePolicy(cfg.Gate.Policy)
	if err != nil {
		return nil, err
	}
	if cfg.Gate.Threshold <= 0 || cfg.Gate.HorizonDays <= 0 {
		return nil, fmt.Errorf("gate threshold and horizon must be positive (got %d, %d days)", cfg.Gate.Threshold, cfg.Gate.HorizonDays)
	}
	if cfg.Resolver.Mode == config.ResolverLookup && deps.Confirmer == nil {
		return nil, errors.New("lookup resolver mode requires a confirmer")
	}

	channels := make([]uploads.Channel, 0, len(cfg.Channels))
	for _, ch := range cfg.Channels {
		channels = append(channels, uploads.Channel{Label: ch.Label, Handle: ch.Handle})
	}

	p := &Pipeline{
		cfg:       cfg,
		source:    deps.Uploads,
		whitelist: deps.Whitelist,
		confirmer: deps.Confirmer,
		store:     deps.Catalogue,
		history:   deps.History,
		notifier:  deps.Notifier,
		logger:    logging.NewComponentLogger(deps.Logger, "pipeline"),
		clock:     deps.Clock,
		newRunID:  deps.NewRunID,
		builder:   catalogue.NewBuilder(mode, policy),
		stopwords: identification.NewStopwords(cfg.Resolver.ExtraStopwords...),
		channels:  channels,
		refresh:   opts.RefreshWhitelist,
	}
	if p.clock == nil {
		p.clock = time.Now
	}
	if p.newRunID == nil {
		p.newRunID = uuid.NewString
	}
	return p, nil
}

// Run executes one build. The returned Report is populated as far as the run
// got, also when an error is returned.
func (p *Pipeline) Run(ctx context.Context) (Report, error) {
	now := p.clock().UTC()
	runID := p.newRunID()
	ctx = logging.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, p.logger)

	report := Report{
		RunID:     runID,
		StartedAt: now,
		Cutoff:    now.Add(-p.cfg.Gate.Horizon()),
		Mode:      p.builder.Mode(),
		Status:    outcome.StatusOK,
		Location:  p.store.Location(),
	}

	lock, err := acquireLock(p.cfg.LockPath())
	if err != nil {
		report.Status = outcome.StatusFatal
		return report, err
	}
	defer func() {
		if unlockErr := lock.Unlock(); unlockErr != nil {
			logger.Warn("failed to release run lock", logging.Error(unlockErr))
		}
	}()

	logger.Info("catalogue run started",
		logging.String("mode", string(report.Mode)),
		logging.String("cutoff", report.Cutoff.Format(catalogue.DateLayout)),
		logging.Int("channels", len(p.channels)),
		logging.Bool("refresh_whitelist", p.refresh),
	)

	err = p.execute(ctx, logger, now, &report)
	report.FinishedAt = p.clock().UTC()
	switch {
	case err != nil:
		report.Status = outcome.StatusFatal
		logging.ErrorWithContext(logger, "catalogue run failed", "run_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "the previous catalogue was left untouched"),
		)
	case len(report.Degraded) > 0:
		report.Status = outcome.StatusDegraded
	}
	p.record(ctx, logger, report, err)
	p.notify(ctx, logger, report, err)

	if err == nil {
		logger.Info("catalogue run finished",
			logging.String("status", report.Status.String()),
			logging.Int("entries", report.Entries),
			logging.Int("promoted", len(report.Promoted)),
			logging.Int("degraded_sources", len(report.Degraded)),
			logging.String("location", report.Location),
		)
	}
	return report, err
}

func (p *Pipeline) execute(ctx context.Context, logger *slog.Logger, now time.Time, report *Report) error {
	wl, err := p.fetchWhitelist(ctx, logger, now, report)
	if err != nil {
		return err
	}
	resolver, cache := p.newResolver(wl)

	var existing []catalogue.Entry
	if report.Mode == catalogue.ModeIncremental {
		existing, err = p.store.Load(ctx)
		if err != nil {
			return fmt.Errorf("load catalogue %s: %w", p.store.Location(), err)
		}
	}
	report.Existing = len(existing)

	fetched := p.collect(ctx, logger, report)
	if err := ctx.Err(); err != nil {
		return err
	}
	p.applyDurations(ctx, fetched)

	records := make([]catalogue.Record, 0, len(fetched))
	for _, upload := range fetched {
		if uploads.IsShort(upload, p.cfg.YouTube.ShortMaxSeconds) {
			report.Shorts++
			continue
		}
		records = append(records, p.resolve(ctx, logger, resolver, upload, report))
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	// Carried-over rows nulled by an earlier gate still count for their title.
	retitle := func(title string) (string, bool) {
		identity, ok := resolver.Resolve(ctx, identification.Tokenize(title).Candidates)
		return identity.Nickname, ok
	}
	merged := p.builder.Merge(existing, records, report.Cutoff, retitle)
	if cache != nil {
		report.LookupCalls, report.LookupHits = cache.Stats()
	}
	counts := popularity.Aggregate(merged.Identities())
	keep := popularity.Gate(counts, p.cfg.Gate.Threshold)
	for _, pc := range counts.Snapshot() {
		if keep.Contains(pc.Nickname) {
			report.Promoted = append(report.Promoted, pc)
		} else {
			report.Suppressed = append(report.Suppressed, pc)
		}
	}
	entries := p.builder.Build(merged, keep)

	report.CarriedOver = merged.CarriedOver
	report.Added = merged.Added
	report.Duplicates = merged.Duplicates
	report.Pruned = merged.Pruned

	if err := p.store.Save(ctx, entries); err != nil {
		return fmt.Errorf("save catalogue %s: %w", p.store.Location(), err)
	}
	report.Entries = len(entries)
	return nil
}

func (p *Pipeline) fetchWhitelist(ctx context.Context, logger *slog.Logger, now time.Time, report *Report) (*whitelist.Whitelist, error) {
	result := p.whitelist.Fetch(ctx, now, p.refresh)
	switch result.Status {
	case outcome.StatusOK:
	case outcome.StatusDegraded:
		logging.WarnWithContext(logger, "whitelist degraded", "whitelist_degraded",
			logging.String("reason", result.Error()),
			logging.Int("players", result.Value.Len()),
			logging.String(logging.FieldErrorHint, "check ranking.teams_url and network access"),
			logging.String(logging.FieldImpact, "fewer titles resolve to a player"),
		)
		report.degrade("whitelist: " + result.Error())
	case outcome.StatusFatal:
		return nil, fmt.Errorf("whitelist: %s", result.Error())
	}
	wl := result.Value
	if wl == nil {
		wl = whitelist.New()
	}
	report.WhitelistSize = wl.Len()
	return wl, nil
}

func (p *Pipeline) newResolver(wl *whitelist.Whitelist) (identification.Resolver, *identification.RunCache) {
	if p.cfg.Resolver.Mode != config.ResolverLookup {
		return identification.NewWhitelistResolver(wl, p.stopwords), nil
	}
	cache := identification.NewRunCache()
	timeout := time.Duration(p.cfg.Resolver.LookupTimeout) * time.Second
	return identification.NewLookupResolver(wl, p.stopwords, p.confirmer, cache, timeout, p.logger), cache
}

// collect enumerates every channel in configured order and keeps uploads
// published on or after the cutoff day. A failing channel is degraded, not fatal;
// uploads it yielded before failing are kept.
func (p *Pipeline) collect(ctx context.Context, logger *slog.Logger, report *Report) []uploads.UploadRecord {
	var fetched []uploads.UploadRecord
	for _, channel := range p.channels {
		if ctx.Err() != nil {
			return fetched
		}
		channelCtx := logging.WithChannel(ctx, channel.Label)
		channelLogger := logger.With(logging.String(logging.FieldChannel, channel.Label))
		summary := ChannelReport{Label: channel.Label}

		for upload, err := range p.source.Uploads(channelCtx, channel) {
			if err != nil {
				if ctx.Err() != nil {
					break
				}
				summary.Error = err.Error()
				impact := "channel skipped for this run"
				if summary.Listed > 0 {
					impact = "channel listing is incomplete for this run"
				}
				logging.WarnWithContext(channelLogger, "channel enumeration failed", "channel_degraded",
					logging.Error(err),
					logging.Int("listed", summary.Listed),
					logging.String(logging.FieldErrorHint, "check the channel handle and API quota"),
					logging.String(logging.FieldImpact, impact),
				)
				report.degrade(fmt.Sprintf("channel %s: %v", channel.Label, err))
				break
			}
			summary.Listed++
			if !catalogue.InWindow(upload.PublishedAt, report.Cutoff) {
				summary.OutOfWindow++
				continue
			}
			summary.InWindow++
			fetched = append(fetched, upload)
		}

		channelLogger.Info("channel scanned",
			logging.Int("listed", summary.Listed),
			logging.Int("in_window", summary.InWindow),
		)
		report.Channels = append(report.Channels, summary)
	}
	report.Fetched = len(fetched)
	return fetched
}

func (p *Pipeline) applyDurations(ctx context.Context, fetched []uploads.UploadRecord) {
	if len(fetched) == 0 {
		return
	}
	ids := make([]string, len(fetched))
	for i, upload := range fetched {
		ids[i] = upload.ID
	}
	durations := p.source.Durations(ctx, ids)
	for i := range fetched {
		if seconds, ok := durations[fetched[i].ID]; ok {
			fetched[i].DurationSeconds = seconds
		}
	}
}

func (p *Pipeline) resolve(ctx context.Context, logger *slog.Logger, resolver identification.Resolver, upload uploads.UploadRecord, report *Report) catalogue.Record {
	tokens := identification.Tokenize(upload.Title)
	record := catalogue.Record{
		ID:          upload.ID,
		Title:       upload.Title,
		Channel:     upload.ChannelLabel,
		PublishedAt: upload.PublishedAt,
		Map:         tokens.Map,
	}
	identity, ok := resolver.Resolve(ctx, tokens.Candidates)
	if !ok {
		report.Unresolved++
		logger.Debug("title unresolved",
			logging.String(logging.FieldVideoID, upload.ID),
			logging.String("title", upload.Title),
			logging.Int("candidates", len(tokens.Candidates)),
		)
		return record
	}
	report.Resolved++
	record.Player = identity.Nickname
	record.Team = identity.Team
	return record
}

func (p *Pipeline) record(ctx context.Context, logger *slog.Logger, report Report, runErr error) {
	if p.history == nil {
		return
	}
	status := historyStatus(report.Status)
	run := history.Run{
		ID:         report.RunID,
		StartedAt:  report.StartedAt,
		FinishedAt: report.FinishedAt,
		Mode:       string(report.Mode),
		Status:     status,
		Fetched:    report.Fetched,
		Shorts:     report.Shorts,
		Resolved:   report.Resolved,
		Promoted:   len(report.Promoted),
		Entries:    report.Entries,
		Degraded:   report.Degraded,
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}
	// A cancelled run still gets journalled.
	if err := p.history.Record(context.WithoutCancel(ctx), run); err != nil {
		logging.WarnWithContext(logger, "failed to record run history", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run is missing from povcat history"),
		)
	}
}

func historyStatus(status outcome.Status) history.Status {
	switch status {
	case outcome.StatusDegraded:
		return history.StatusDegraded
	case outcome.StatusFatal:
		return history.StatusFailed
	default:
		return history.StatusOK
	}
}

func (p *Pipeline) notify(ctx context.Context, logger *slog.Logger, report Report, runErr error) {
	if p.notifier == nil {
		return
	}
	summary := notifications.RunSummary{
		RunID:    report.RunID,
		Status:   string(historyStatus(report.Status)),
		Mode:     string(report.Mode),
		Entries:  report.Entries,
		Promoted: len(report.Promoted),
		Degraded: report.Degraded,
		Duration: report.FinishedAt.Sub(report.StartedAt),
	}
	if runErr != nil {
		summary.Error = runErr.Error()
	}
	if err := p.notifier.Notify(context.WithoutCancel(ctx), summary); err != nil {
		logging.WarnWithContext(logger, "failed to send run notification", "notification_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run outcome was not announced"),
		)
	}
}
