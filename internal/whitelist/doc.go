// Package whitelist holds the set of canonical pro nicknames, each with an
// optional current team, that title tokens are resolved against.
//
// Lookups are case-insensitive; the stored Entry keeps the casing the ranking
// source used, which is what the catalogue records. A Fetcher builds the
// whitelist from the live ranking, persists it through a Store, and falls back
// to the last snapshot (or an empty whitelist) when the ranking is
// unavailable, reporting the fallback as a degraded outcome.
package whitelist
