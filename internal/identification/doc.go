// Package identification turns free-text upload titles into player identities.
//
// Tokenize strips noise words, extracts every nickname-shaped candidate in
// title order, and reports the first known map name found in the title.
// Resolvers then walk the candidates left to right and return the first one
// that is not a stopword and is a known player, using the whitelist's
// canonical casing. There is no scoring: the leftmost eligible candidate wins.
//
// LookupResolver additionally confirms unknown candidates against a live
// player search. Its answers, including failures, are memoised in a RunCache
// that lives for exactly one pipeline run.
package identification
