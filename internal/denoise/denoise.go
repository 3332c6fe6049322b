package denoise

import (
	"errors"
	"fmt"

	ffmpeg "github.com/linuxmatters/ffmpeg-statigo"

	"hush/internal/media"
)

// Params describes both ends of the filter graph: the decoder side the
// frames arrive from and the encoder side they must leave in.
type Params struct {
	// Input side, taken from the opened decoder.
	InSampleRate   int
	InSampleFormat ffmpeg.AVSampleFormat
	InChannels     int
	// InTimeBaseNum/InTimeBaseDen describe the time base of incoming frame
	// timestamps, normally the input stream's. Containers often use a time
	// base other than 1/sample_rate (Matroska uses 1/1000), and the graph
	// must know it to rescale timestamps correctly. A zero denominator
	// falls back to 1/InSampleRate.
	InTimeBaseNum int
	InTimeBaseDen int

	// Output side, taken from the opened encoder.
	OutSampleRate   int
	OutSampleFormat ffmpeg.AVSampleFormat
	OutChannels     int
	// FrameSize fixes the number of samples per drained frame to what the
	// encoder requires. Zero leaves frame sizes unconstrained.
	FrameSize int

	// Enabled toggles the suppression stage; when false the graph only
	// performs format conversion.
	Enabled bool
	// SuppressionDB is the maximum noise attenuation in negative decibels.
	SuppressionDB int
}

// Processor is the stateful noise suppressor. It owns a filter graph that
// denoises decoded frames and converts them to the encoder's sample format,
// rate, and channel layout, sized to the encoder's frame length.
//
// Frames are processed through a push/drain protocol mirroring the codec
// layer: Push submits one decoded frame, Receive drains zero or more
// converted frames, Flush signals end of stream.
type Processor struct {
	graph *ffmpeg.AVFilterGraph
	src   *ffmpeg.AVFilterContext
	sink  *ffmpeg.AVFilterContext
}

// FilterSpec renders the filter chain between the graph's source and sink.
func FilterSpec(p Params) string {
	format := fmt.Sprintf(
		"aformat=sample_fmts=%s:sample_rates=%d:channel_layouts=%s",
		media.SampleFormatName(p.OutSampleFormat),
		p.OutSampleRate,
		media.ChannelLayoutName(p.OutChannels),
	)
	if !p.Enabled {
		return format
	}
	// afftdn expresses reduction as positive dB of attenuation.
	return fmt.Sprintf("afftdn=nr=%d,%s", -p.SuppressionDB, format)
}

// sourceArgs renders the abuffer arguments describing incoming frames.
func sourceArgs(p Params) string {
	num, den := p.InTimeBaseNum, p.InTimeBaseDen
	if den <= 0 {
		num, den = 1, p.InSampleRate
	}
	return fmt.Sprintf(
		"time_base=%d/%d:sample_rate=%d:sample_fmt=%s:channel_layout=%s",
		num,
		den,
		p.InSampleRate,
		media.SampleFormatName(p.InSampleFormat),
		media.ChannelLayoutName(p.InChannels),
	)
}

// New builds and configures the filter graph for the given parameters.
func New(p Params) (*Processor, error) {
	if p.InSampleRate <= 0 || p.OutSampleRate <= 0 {
		return nil, media.Wrap(media.ErrFilter, "sample rates must be positive", nil)
	}
	if p.Enabled && p.SuppressionDB >= 0 {
		return nil, media.Wrap(media.ErrFilter, "suppression level must be negative dB", nil)
	}

	proc := &Processor{}
	proc.graph = ffmpeg.AVFilterGraphAlloc()
	if proc.graph == nil {
		return nil, media.Wrap(media.ErrFilter, "allocate filter graph", nil)
	}

	abuffer := ffmpeg.AVFilterGetByName(ffmpeg.GlobalCStr("abuffer"))
	abuffersink := ffmpeg.AVFilterGetByName(ffmpeg.GlobalCStr("abuffersink"))
	if abuffer == nil || abuffersink == nil {
		proc.Close()
		return nil, media.Wrap(media.ErrFilter, "buffer filters unavailable", nil)
	}

	srcArgs := ffmpeg.ToCStr(sourceArgs(p))
	defer srcArgs.Free()

	if _, err := ffmpeg.AVFilterGraphCreateFilter(&proc.src, abuffer, ffmpeg.GlobalCStr("in"), srcArgs, nil, proc.graph); err != nil {
		proc.Close()
		return nil, media.Wrap(media.ErrFilter, "create buffer source", err)
	}
	if _, err := ffmpeg.AVFilterGraphCreateFilter(&proc.sink, abuffersink, ffmpeg.GlobalCStr("out"), nil, nil, proc.graph); err != nil {
		proc.Close()
		return nil, media.Wrap(media.ErrFilter, "create buffer sink", err)
	}

	outputs := ffmpeg.AVFilterInoutAlloc()
	inputs := ffmpeg.AVFilterInoutAlloc()
	if outputs == nil || inputs == nil {
		ffmpeg.AVFilterInoutFree(&outputs)
		ffmpeg.AVFilterInoutFree(&inputs)
		proc.Close()
		return nil, media.Wrap(media.ErrFilter, "allocate filter endpoints", nil)
	}

	outputs.SetName(ffmpeg.GlobalCStr("in"))
	outputs.SetFilterCtx(proc.src)
	outputs.SetPadIdx(0)
	outputs.SetNext(nil)

	inputs.SetName(ffmpeg.GlobalCStr("out"))
	inputs.SetFilterCtx(proc.sink)
	inputs.SetPadIdx(0)
	inputs.SetNext(nil)

	spec := ffmpeg.ToCStr(FilterSpec(p))
	defer spec.Free()

	_, err := ffmpeg.AVFilterGraphParsePtr(proc.graph, spec, &inputs, &outputs, nil)
	ffmpeg.AVFilterInoutFree(&inputs)
	ffmpeg.AVFilterInoutFree(&outputs)
	if err != nil {
		proc.Close()
		return nil, media.Wrap(media.ErrFilter, "parse filter chain", err)
	}

	if _, err := ffmpeg.AVFilterGraphConfig(proc.graph, nil); err != nil {
		proc.Close()
		return nil, media.Wrap(media.ErrFilter, "configure filter graph", err)
	}

	if p.FrameSize > 0 {
		ffmpeg.AVBuffersinkSetFrameSize(proc.sink, uint(p.FrameSize))
	}

	return proc, nil
}

// Push submits one decoded frame to the graph. The graph takes over the
// frame's buffer references; the frame is reset and may be reused.
func (proc *Processor) Push(frame *ffmpeg.AVFrame) error {
	if _, err := ffmpeg.AVBuffersrcAddFrameFlags(proc.src, frame, 0); err != nil {
		return media.Wrap(media.ErrFilter, "push frame", err)
	}
	return nil
}

// Flush signals end of stream so buffered audio drains on subsequent
// Receive calls.
func (proc *Processor) Flush() error {
	if _, err := ffmpeg.AVBuffersrcAddFrameFlags(proc.src, nil, 0); err != nil {
		return media.Wrap(media.ErrFilter, "flush", err)
	}
	return nil
}

// Receive drains one processed frame into frame. It returns false when the
// graph needs more input or has fully drained. Drained frames carry
// timestamps in the sink's 1/OutSampleRate time base, so a frame's PTS
// counts samples.
func (proc *Processor) Receive(frame *ffmpeg.AVFrame) (bool, error) {
	if _, err := ffmpeg.AVBuffersinkGetFrame(proc.sink, frame); err != nil {
		if errors.Is(err, ffmpeg.EAgain) || errors.Is(err, ffmpeg.AVErrorEOF) {
			return false, nil
		}
		return false, media.Wrap(media.ErrFilter, "receive frame", err)
	}
	return true, nil
}

// Close frees the filter graph and its contexts. Safe to call more than once.
func (proc *Processor) Close() {
	if proc.graph != nil {
		ffmpeg.AVFilterGraphFree(&proc.graph)
		proc.graph = nil
		proc.src = nil
		proc.sink = nil
	}
}
