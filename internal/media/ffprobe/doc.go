// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// It backs the probe command and pre-flight input checks: Inspect executes
// ffprobe and returns a parsed Result, and Result helpers expose the stream
// counts, first audio stream, duration, and bitrates the CLI reports.
package ffprobe
