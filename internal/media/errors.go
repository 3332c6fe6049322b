package media

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers classifying every failure by the pipeline stage it
// belongs to. Fatal errors are wrapped with one of these so the CLI and the
// run history can attribute the failure without string matching.
var (
	// ErrInput covers container open and stream-probe failures.
	ErrInput = errors.New("input error")
	// ErrStream covers audio stream selection failures.
	ErrStream = errors.New("stream error")
	// ErrDecoder covers decoder resolution, open, and fatal decode failures.
	ErrDecoder = errors.New("decoder error")
	// ErrFilter covers noise-suppression graph construction and fatal
	// filtering failures.
	ErrFilter = errors.New("filter error")
	// ErrEncoder covers encoder resolution, open, and fatal encode failures.
	ErrEncoder = errors.New("encoder error")
	// ErrOutput covers output container construction, header, packet, and
	// trailer write failures.
	ErrOutput = errors.New("output error")
)

// Wrap tags err with a stage marker and an operation description. A nil err
// produces an error carrying just the marker and operation.
func Wrap(marker error, operation string, err error) error {
	if marker == nil {
		marker = ErrOutput
	}
	operation = strings.TrimSpace(operation)
	if operation == "" {
		operation = "media operation"
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, operation, err)
	}
	return fmt.Errorf("%w: %s", marker, operation)
}

// StageLabel maps a wrapped error to the short stage name used in logs and
// the run history. Unclassified errors report as "pipeline".
func StageLabel(err error) string {
	switch {
	case errors.Is(err, ErrInput):
		return "input"
	case errors.Is(err, ErrStream):
		return "stream"
	case errors.Is(err, ErrDecoder):
		return "decoder"
	case errors.Is(err, ErrFilter):
		return "filter"
	case errors.Is(err, ErrEncoder):
		return "encoder"
	case errors.Is(err, ErrOutput):
		return "output"
	default:
		return "pipeline"
	}
}
