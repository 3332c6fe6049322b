package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"

	"hush/internal/media"
)

func defaultOptions(input, output string) Options {
	return Options{
		InputPath:     input,
		OutputPath:    output,
		BitRate:       192000,
		Channels:      2,
		Denoise:       true,
		SuppressionDB: -10,
	}
}

func TestValidateClassifiesBadOptions(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Options)
		marker error
	}{
		{"missing input", func(o *Options) { o.InputPath = "" }, media.ErrInput},
		{"missing output", func(o *Options) { o.OutputPath = "" }, media.ErrOutput},
		{"zero bit rate", func(o *Options) { o.BitRate = 0 }, media.ErrEncoder},
		{"bad channel count", func(o *Options) { o.Channels = 6 }, media.ErrEncoder},
		{"positive suppression", func(o *Options) { o.SuppressionDB = 10 }, media.ErrFilter},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts := defaultOptions("in.mkv", "out.mp3")
			tc.mutate(&opts)
			err := validate(opts)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, tc.marker) {
				t.Fatalf("error %v not tagged with expected stage", err)
			}
		})
	}
}

func TestValidateAllowsDisabledDenoise(t *testing.T) {
	opts := defaultOptions("in.mkv", "out.mp3")
	opts.Denoise = false
	opts.SuppressionDB = 0
	if err := validate(opts); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestRunFailsFastOnMissingInput(t *testing.T) {
	dir := t.TempDir()
	opts := defaultOptions(filepath.Join(dir, "absent.mkv"), filepath.Join(dir, "out.mp3"))

	_, err := Run(context.Background(), opts, nil)
	if err == nil {
		t.Fatal("expected error for missing input file")
	}
	if !errors.Is(err, media.ErrInput) {
		t.Fatalf("error %v not tagged as input stage", err)
	}
}

func TestRunRefusesLockedOutput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.mkv")
	if err := os.WriteFile(input, []byte("placeholder"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	output := filepath.Join(dir, "out.mp3")

	held := flock.New(output + ".lock")
	locked, err := held.TryLock()
	if err != nil || !locked {
		t.Fatalf("acquire test lock: locked=%v err=%v", locked, err)
	}
	defer held.Unlock()

	_, err = Run(context.Background(), defaultOptions(input, output), nil)
	if err == nil {
		t.Fatal("expected error for contended output lock")
	}
	if !errors.Is(err, media.ErrOutput) {
		t.Fatalf("error %v not tagged as output stage", err)
	}
}
