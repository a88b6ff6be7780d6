package catalogue

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the day-precision layout of Entry.Published.
const DateLayout = "2006-01-02"

// Entry is one catalogue row. Optional fields encode as JSON null.
type Entry struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Channel   string  `json:"channel"`
	Player    *string `json:"player"`
	Team      *string `json:"team"`
	Map       *string `json:"map"`
	Published string  `json:"published"`
}

// Mode selects whether a build starts from the persisted catalogue.
type Mode string

const (
	// ModeIncremental carries existing entries over by id.
	ModeIncremental Mode = "incremental"
	// ModeRebuild discards prior state and recomputes from the current fetch.
	ModeRebuild Mode = "rebuild"
)

// ParseMode validates a configured mode name.
func ParseMode(value string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case ModeIncremental:
		return ModeIncremental, nil
	case ModeRebuild:
		return ModeRebuild, nil
	default:
		return "", fmt.Errorf("unknown catalogue mode %q", value)
	}
}

// Record is a freshly fetched upload together with its resolution.
// Empty Player, Team, or Map mean absent.
type Record struct {
	ID          string
	Title       string
	Channel     string
	PublishedAt time.Time
	Player      string
	Team        string
	Map         string
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
