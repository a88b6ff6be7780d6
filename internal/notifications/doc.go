// Package notifications reports finished catalogue runs to ntfy.
//
// The pipeline calls Notify once per run. With no topic configured NewService
// returns a no-op, so callers never branch on whether notifications are on.
package notifications
