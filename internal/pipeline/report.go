package pipeline

import (
	"time"

	"povcat/internal/catalogue"
	"povcat/internal/outcome"
	"povcat/internal/popularity"
)

// ChannelReport summarises one channel's enumeration.
type ChannelReport struct {
	Label       string
	Listed      int
	InWindow    int
	OutOfWindow int
	Error       string
}

// Report summarises a run.
type Report struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Cutoff     time.Time
	Mode       catalogue.Mode
	Status     outcome.Status

	WhitelistSize int
	Existing      int
	Channels      []ChannelReport

	Fetched    int
	Shorts     int
	Resolved   int
	Unresolved int

	CarriedOver int
	Added       int
	Duplicates  int
	Pruned      int
	Entries     int

	Promoted   []popularity.PlayerCount
	Suppressed []popularity.PlayerCount

	LookupCalls int
	LookupHits  int

	Degraded []string
	Location string
}

func (r *Report) degrade(reason string) {
	r.Degraded = append(r.Degraded, reason)
}
