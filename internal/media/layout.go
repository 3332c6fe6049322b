package media

import (
	"fmt"

	ffmpeg "github.com/linuxmatters/ffmpeg-statigo"
)

// ChannelLayoutName returns the libav channel layout string for a channel
// count, suitable for filter arguments. Counts without a common name use the
// "<N>c" default-layout syntax.
func ChannelLayoutName(channels int) string {
	switch channels {
	case 1:
		return "mono"
	case 2:
		return "stereo"
	default:
		return fmt.Sprintf("%dc", channels)
	}
}

// SampleFormatName returns the libav name for a sample format, suitable for
// filter arguments. Formats outside the standard set are resolved through
// the library; unknown values report as "none".
func SampleFormatName(format ffmpeg.AVSampleFormat) string {
	switch format {
	case ffmpeg.AVSampleFmtU8:
		return "u8"
	case ffmpeg.AVSampleFmtS16:
		return "s16"
	case ffmpeg.AVSampleFmtS32:
		return "s32"
	case ffmpeg.AVSampleFmtFlt:
		return "flt"
	case ffmpeg.AVSampleFmtDbl:
		return "dbl"
	case ffmpeg.AVSampleFmtU8P:
		return "u8p"
	case ffmpeg.AVSampleFmtS16P:
		return "s16p"
	case ffmpeg.AVSampleFmtS32P:
		return "s32p"
	case ffmpeg.AVSampleFmtFltp:
		return "fltp"
	case ffmpeg.AVSampleFmtDblp:
		return "dblp"
	}
	name := ffmpeg.AVGetSampleFmtName(format)
	if name == nil {
		return "none"
	}
	return name.String()
}
