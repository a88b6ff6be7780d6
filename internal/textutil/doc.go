// Package textutil provides case folding shared by the identification,
// whitelist, and catalogue packages.
package textutil
