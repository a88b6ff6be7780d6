// Package ranking fetches the current pro team ranking and rosters.
//
// Ranking payloads drift between schema versions, so parsing is tolerant: a
// team that cannot be read is skipped and counted rather than failing the
// whole fetch. JSON documents and the public HTML ranking page are both
// supported. The same client answers single-player searches for the lookup
// resolver mode.
package ranking
