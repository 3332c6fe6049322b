// Package history records completed and failed pipeline runs in a local
// SQLite database so past work can be reviewed from the CLI.
package history
