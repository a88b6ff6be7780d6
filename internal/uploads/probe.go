package uploads

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/kkdai/youtube/v2"

	"povcat/internal/logging"
)

// VideoLookup reads a single video's metadata from its watch page.
// *youtube.Client satisfies it.
type VideoLookup interface {
	GetVideoContext(ctx context.Context, id string) (*youtube.Video, error)
}

// NewVideoLookup returns a watch-page client that sends requests through client.
func NewVideoLookup(client *http.Client) VideoLookup {
	return &youtube.Client{HTTPClient: client}
}

func probeDurations(ctx context.Context, lookup VideoLookup, ids []string, limit int, logger *slog.Logger) map[string]int {
	out := make(map[string]int, len(ids))
	failed := 0
	for i, id := range ids {
		if ctx.Err() != nil {
			break
		}
		if limit > 0 && i >= limit {
			logger.Debug("duration probe limit reached",
				logging.Int("limit", limit),
				logging.Int("skipped", len(ids)-i),
			)
			break
		}
		video, err := lookup.GetVideoContext(ctx, id)
		if err != nil {
			failed++
			logger.Debug("duration probe failed",
				logging.String(logging.FieldVideoID, id),
				logging.Error(err),
			)
			continue
		}
		if video == nil || video.Duration <= 0 {
			continue
		}
		out[id] = int(video.Duration.Seconds())
	}
	if failed > 0 {
		logging.WarnWithContext(logger, "some durations could not be probed", "duration_probe_partial",
			logging.Int("failed", failed),
			logging.Int("probed", len(out)),
			logging.String(logging.FieldImpact, "shorts among these uploads are only caught by their #shorts marker"),
		)
	}
	return out
}
