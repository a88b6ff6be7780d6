// Package youtube is a small client for the YouTube Data API v3.
//
// It covers only what the catalogue needs: resolving channel handles,
// locating a channel's uploads playlist, paging through playlist items, and
// looking up video durations in batches. Requests go through a retrying
// transport that backs off on rate limits and transient server errors.
package youtube
