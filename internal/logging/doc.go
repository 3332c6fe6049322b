// Package logging builds the slog loggers used across hush.
//
// Two handler formats are supported: a console handler that renders
// "TIMESTAMP LEVEL component: message key=value" lines, and a JSON handler
// for machine consumption. Standardized field keys live here so stage code
// and the CLI agree on attribute names.
package logging
