package uploads

import (
	"context"
	"fmt"
	"iter"
	"log/slog"

	"povcat/internal/logging"
	"povcat/internal/youtube"
)

// API is the subset of the YouTube client used by APISource.
type API interface {
	ResolveChannelID(ctx context.Context, handleOrID string) (string, error)
	UploadsPlaylistID(ctx context.Context, channelID string) (string, error)
	PlaylistPage(ctx context.Context, playlistID, pageToken string) (*youtube.Page, error)
	Durations(ctx context.Context, ids []string) (map[string]int, error)
}

// APISource enumerates uploads through the Data API uploads playlist.
type APISource struct {
	api    API
	logger *slog.Logger
}

var _ Source = (*APISource)(nil)

// NewAPISource wraps a YouTube API client.
func NewAPISource(api API, logger *slog.Logger) *APISource {
	return &APISource{api: api, logger: logging.NewComponentLogger(logger, "uploads")}
}

// Uploads pages through the channel's uploads playlist until the last page.
func (s *APISource) Uploads(ctx context.Context, channel Channel) iter.Seq2[UploadRecord, error] {
	return func(yield func(UploadRecord, error) bool) {
		channelID, err := s.api.ResolveChannelID(ctx, channel.Handle)
		if err != nil {
			yield(UploadRecord{}, fmt.Errorf("%w: resolve %s: %w", ErrChannelUnavailable, channel.Handle, err))
			return
		}
		playlistID, err := s.api.UploadsPlaylistID(ctx, channelID)
		if err != nil {
			yield(UploadRecord{}, fmt.Errorf("%w: uploads playlist for %s: %w", ErrChannelUnavailable, channelID, err))
			return
		}

		seenTokens := map[string]struct{}{}
		token := ""
		for pageNumber := 1; ; pageNumber++ {
			page, err := s.api.PlaylistPage(ctx, playlistID, token)
			if err != nil {
				yield(UploadRecord{}, fmt.Errorf("page %d of %s: %w", pageNumber, playlistID, err))
				return
			}
			s.logger.Debug("uploads page fetched",
				logging.String(logging.FieldChannel, channel.Label),
				logging.Int("page", pageNumber),
				logging.Int("items", len(page.Items)),
			)
			for _, item := range page.Items {
				record := UploadRecord{
					ID:              item.VideoID,
					Title:           item.Title,
					ChannelLabel:    channel.Label,
					PublishedAt:     item.PublishedAt,
					DurationSeconds: UnknownDuration,
				}
				if !yield(record, nil) {
					return
				}
			}
			if page.NextPageToken == "" {
				return
			}
			if _, looped := seenTokens[page.NextPageToken]; looped {
				yield(UploadRecord{}, fmt.Errorf("page token %q repeated for %s", page.NextPageToken, playlistID))
				return
			}
			seenTokens[page.NextPageToken] = struct{}{}
			token = page.NextPageToken
		}
	}
}

// Durations looks up lengths. A failed batch is logged and its ids stay unknown.
func (s *APISource) Durations(ctx context.Context, ids []string) map[string]int {
	if len(ids) == 0 {
		return map[string]int{}
	}
	durations, err := s.api.Durations(ctx, ids)
	if err != nil {
		logging.WarnWithContext(s.logger, "duration lookup failed", "duration_lookup_failed",
			logging.Int("requested", len(ids)),
			logging.Int("resolved", len(durations)),
			logging.Error(err),
			logging.String(logging.FieldImpact, "uploads without a duration are treated as long-form"),
		)
	}
	if durations == nil {
		durations = map[string]int{}
	}
	return durations
}
