// Package catalogue merges resolved uploads into the published video
// catalogue and persists it.
//
// Building happens in two steps so the popularity gate can run in between:
// Merge combines the carried-over catalogue with this run's records (dedup by
// id, window pruning) and exposes the identities to count; Build applies the
// suppression policy for the resulting keep set and sorts newest first.
// Stores write the whole catalogue in one replace so readers never see a
// partial file.
package catalogue
