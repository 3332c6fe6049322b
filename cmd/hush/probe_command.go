package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"hush/internal/media/ffprobe"
)

const (
	ansiReset = "\x1b[0m"
	ansiBlue  = "\x1b[34m"
)

func newProbeCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "probe <file>",
		Short: "Inspect a media file and report its streams",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}

			result, err := ffprobe.Inspect(cmd.Context(), cfg.FFprobeBinary(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			header := fmt.Sprintf("== %s ==", result.Format.Filename)
			if colorize {
				header = ansiBlue + header + ansiReset
			}
			fmt.Fprintln(out, header)
			fmt.Fprintf(out, "Container: %s\n", result.Format.FormatName)
			fmt.Fprintf(out, "Duration:  %s\n", formatDuration(result.DurationSeconds()))
			fmt.Fprintf(out, "Size:      %s\n", formatSize(result.SizeBytes()))
			fmt.Fprintf(out, "Bit rate:  %s\n", formatBitRate(result.BitRate()))
			fmt.Fprintln(out)

			rows := make([][]string, 0, len(result.Streams))
			selected, hasAudio := result.FirstAudioStream()
			for _, stream := range result.Streams {
				marker := ""
				if hasAudio && stream.Index == selected.Index {
					marker = "*"
				}
				rows = append(rows, []string{
					marker,
					strconv.Itoa(stream.Index),
					stream.CodecType,
					stream.CodecName,
					formatStreamRate(stream),
					formatChannels(stream),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"", "#", "Type", "Codec", "Sample rate", "Channels"},
				rows, 1, 4, 5,
			))

			if !hasAudio {
				fmt.Fprintln(out, "No audio stream found; this file cannot be processed.")
			} else {
				fmt.Fprintln(out, "* stream selected for processing")
			}
			return nil
		},
	}
}

func formatDuration(seconds float64) string {
	if seconds <= 0 {
		return "unknown"
	}
	d := time.Duration(seconds * float64(time.Second))
	return d.Round(time.Millisecond).String()
}

func formatSize(bytes int64) string {
	switch {
	case bytes <= 0:
		return "unknown"
	case bytes >= 1<<30:
		return fmt.Sprintf("%.2f GiB", float64(bytes)/float64(1<<30))
	case bytes >= 1<<20:
		return fmt.Sprintf("%.2f MiB", float64(bytes)/float64(1<<20))
	case bytes >= 1<<10:
		return fmt.Sprintf("%.2f KiB", float64(bytes)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

func formatBitRate(bps int64) string {
	if bps <= 0 {
		return "unknown"
	}
	return fmt.Sprintf("%d kb/s", bps/1000)
}

func formatStreamRate(stream ffprobe.Stream) string {
	if !strings.EqualFold(stream.CodecType, "audio") {
		return ""
	}
	rate := stream.SampleRateHz()
	if rate <= 0 {
		return "unknown"
	}
	return fmt.Sprintf("%d Hz", rate)
}

func formatChannels(stream ffprobe.Stream) string {
	if !strings.EqualFold(stream.CodecType, "audio") || stream.Channels <= 0 {
		return ""
	}
	return strconv.Itoa(stream.Channels)
}
