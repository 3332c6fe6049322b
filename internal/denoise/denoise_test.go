package denoise

import (
	"testing"

	ffmpeg "github.com/linuxmatters/ffmpeg-statigo"
)

func TestFilterSpecWithSuppression(t *testing.T) {
	spec := FilterSpec(Params{
		OutSampleRate:   44100,
		OutSampleFormat: ffmpeg.AVSampleFmtS16P,
		OutChannels:     2,
		Enabled:         true,
		SuppressionDB:   -10,
	})
	want := "afftdn=nr=10,aformat=sample_fmts=s16p:sample_rates=44100:channel_layouts=stereo"
	if spec != want {
		t.Fatalf("unexpected spec:\n got %q\nwant %q", spec, want)
	}
}

func TestFilterSpecDisabledIsFormatOnly(t *testing.T) {
	spec := FilterSpec(Params{
		OutSampleRate:   48000,
		OutSampleFormat: ffmpeg.AVSampleFmtFltp,
		OutChannels:     1,
		Enabled:         false,
		SuppressionDB:   -30,
	})
	want := "aformat=sample_fmts=fltp:sample_rates=48000:channel_layouts=mono"
	if spec != want {
		t.Fatalf("unexpected spec:\n got %q\nwant %q", spec, want)
	}
}

func TestSourceArgsUsesStreamTimeBase(t *testing.T) {
	args := sourceArgs(Params{
		InSampleRate:   44100,
		InSampleFormat: ffmpeg.AVSampleFmtFltp,
		InChannels:     2,
		InTimeBaseNum:  1,
		InTimeBaseDen:  1000,
	})
	want := "time_base=1/1000:sample_rate=44100:sample_fmt=fltp:channel_layout=stereo"
	if args != want {
		t.Fatalf("unexpected args:\n got %q\nwant %q", args, want)
	}
}

func TestSourceArgsDefaultsToSampleRateTimeBase(t *testing.T) {
	args := sourceArgs(Params{
		InSampleRate:   48000,
		InSampleFormat: ffmpeg.AVSampleFmtS16,
		InChannels:     1,
	})
	want := "time_base=1/48000:sample_rate=48000:sample_fmt=s16:channel_layout=mono"
	if args != want {
		t.Fatalf("unexpected args:\n got %q\nwant %q", args, want)
	}
}

func TestNewRejectsBadParams(t *testing.T) {
	if _, err := New(Params{InSampleRate: 0, OutSampleRate: 44100}); err == nil {
		t.Fatal("expected error for zero input sample rate")
	}
	if _, err := New(Params{InSampleRate: 44100, OutSampleRate: 44100, Enabled: true, SuppressionDB: 10}); err == nil {
		t.Fatal("expected error for positive suppression level")
	}
}
