// Package popularity counts how often each resolved player appears inside the
// trailing window and decides which players are promoted to the catalogue.
package popularity
