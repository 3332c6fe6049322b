package media

import (
	"testing"

	ffmpeg "github.com/linuxmatters/ffmpeg-statigo"
)

func TestChannelLayoutName(t *testing.T) {
	cases := []struct {
		channels int
		want     string
	}{
		{1, "mono"},
		{2, "stereo"},
		{6, "6c"},
	}
	for _, tc := range cases {
		if got := ChannelLayoutName(tc.channels); got != tc.want {
			t.Fatalf("ChannelLayoutName(%d) = %q, want %q", tc.channels, got, tc.want)
		}
	}
}

func TestSampleFormatName(t *testing.T) {
	cases := []struct {
		format ffmpeg.AVSampleFormat
		want   string
	}{
		{ffmpeg.AVSampleFmtS16, "s16"},
		{ffmpeg.AVSampleFmtS16P, "s16p"},
		{ffmpeg.AVSampleFmtFltp, "fltp"},
		{ffmpeg.AVSampleFmtDbl, "dbl"},
	}
	for _, tc := range cases {
		if got := SampleFormatName(tc.format); got != tc.want {
			t.Fatalf("SampleFormatName(%v) = %q, want %q", tc.format, got, tc.want)
		}
	}
}
