package uploads

import (
	"context"
	"errors"
	"iter"
	"strings"
	"time"
)

// UnknownDuration marks an upload whose length was not looked up or not returned.
const UnknownDuration = -1

// ErrChannelUnavailable is yielded when a channel cannot be resolved to an
// uploads listing. The sequence ends after it.
var ErrChannelUnavailable = errors.New("channel unavailable")

// Channel is a configured upload channel.
type Channel struct {
	Label  string
	Handle string
}

// UploadRecord is one upload as seen by the catalogue.
type UploadRecord struct {
	ID              string
	Title           string
	ChannelLabel    string
	PublishedAt     time.Time
	DurationSeconds int
}

// Source enumerates uploads and looks up durations.
type Source interface {
	// Uploads yields a channel's uploads. A non-nil error ends the sequence;
	// records yielded before it are valid.
	Uploads(ctx context.Context, channel Channel) iter.Seq2[UploadRecord, error]
	// Durations returns known lengths in seconds keyed by id. Failures leave ids absent.
	Durations(ctx context.Context, ids []string) map[string]int
}

// IsShort reports whether the record is short-form content: the title carries a
// #shorts marker, or the known duration is at most maxSeconds.
func IsShort(record UploadRecord, maxSeconds int) bool {
	if strings.Contains(strings.ToLower(record.Title), "#shorts") {
		return true
	}
	return record.DurationSeconds > 0 && record.DurationSeconds <= maxSeconds
}
