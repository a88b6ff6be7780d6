// Command povcat builds and inspects the CS2 POV video catalogue.
//
// Running povcat with no subcommand performs one catalogue build, the same as
// `povcat run`. Other subcommands inspect the whitelist, the catalogue, and the
// run history, or manage the configuration file.
package main
