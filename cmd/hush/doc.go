// Package main hosts the hush CLI entrypoint and command graph.
//
// The root command runs the denoise pipeline directly on a pair of input and
// output paths. Subcommands cover file inspection, run history, and
// configuration scaffolding. Configuration and logger resolution are
// centralized in commandContext so subcommands stay declarative; the heavy
// lifting lives in the internal packages.
package main
