// Package cli wires the labops root command: configuration loading, logger
// construction, and the cleanup and iterate subcommands.
package cli
