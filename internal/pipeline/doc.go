// Package pipeline runs one catalogue build end to end.
//
// A run takes the run lock, fixes the run time once, and then moves strictly
// forward: whitelist, existing catalogue, channel uploads, duration lookup,
// short filter, title resolution, popularity gate, catalogue write, history,
// notification.
// Collaborator outcomes are classified with internal/outcome; degraded sources
// are logged and listed in the Report, while configuration, lock, and
// catalogue I/O failures stop the run.
//
// Build wires production collaborators from a config.Config; tests construct
// a Pipeline directly from Deps with fakes.
package pipeline
