// Package pipeline runs one complete denoise pass: demux the input
// container, decode its first audio stream, suppress noise in a filter
// graph, re-encode to MP3, and mux the result into the output container.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	ffmpeg "github.com/linuxmatters/ffmpeg-statigo"

	"hush/internal/denoise"
	"hush/internal/logging"
	"hush/internal/media"
)

// Options carries everything a single run needs. The CLI fills it from the
// positional arguments and the resolved configuration.
type Options struct {
	InputPath  string
	OutputPath string

	// BitRate is the MP3 nominal bit rate in bits per second.
	BitRate int
	// Channels is the output channel count. The filter graph remixes the
	// decoded audio to this count before encoding.
	Channels int

	// Denoise toggles the suppression stage; when false the run becomes a
	// plain transcode.
	Denoise bool
	// SuppressionDB is the maximum noise attenuation in negative decibels.
	SuppressionDB int
}

// Result reports what a completed run did.
type Result struct {
	RunID      string
	InputPath  string
	OutputPath string

	Codec          string
	SampleRate     int
	InputChannels  int
	OutputChannels int

	// PacketsRead counts every packet demuxed from the container, including
	// packets from streams other than the selected audio stream.
	PacketsRead    int64
	FramesDecoded  int64
	FramesFiltered int64
	PacketsWritten int64
	// Warnings counts per-packet and per-frame failures that were skipped.
	Warnings int64

	Elapsed time.Duration
}

// Run executes the pipeline end to end. All native handles are released via
// defers on every return path; a mid-run failure may leave a partial output
// file behind. On failure the Result still carries the run id and whatever
// counters accumulated, except when the options themselves were rejected.
func Run(ctx context.Context, opts Options, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := validate(opts); err != nil {
		return nil, err
	}
	if _, err := os.Stat(opts.InputPath); err != nil {
		return nil, media.Wrap(media.ErrInput, fmt.Sprintf("input file %s", opts.InputPath), err)
	}

	start := time.Now()
	res := &Result{
		RunID:      uuid.NewString(),
		InputPath:  opts.InputPath,
		OutputPath: opts.OutputPath,
	}

	lockPath := opts.OutputPath + ".lock"
	lock := flock.New(lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return res, media.Wrap(media.ErrOutput, fmt.Sprintf("acquire lock %s", lockPath), err)
	}
	if !locked {
		return res, media.Wrap(media.ErrOutput, fmt.Sprintf("output %s is being written by another run", opts.OutputPath), nil)
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(lockPath)
	}()
	logger = logger.With(
		logging.String(logging.FieldComponent, "pipeline"),
		logging.String(logging.FieldRunID, res.RunID),
	)
	logger.Info("run started",
		logging.String("input", opts.InputPath),
		logging.String("output", opts.OutputPath),
		logging.Bool("denoise", opts.Denoise))

	in, err := media.OpenInput(opts.InputPath)
	if err != nil {
		return res, err
	}
	defer in.Close()

	res.Codec = in.CodecName()
	res.SampleRate = in.SampleRate()
	res.InputChannels = in.Channels()
	logger.Info("input opened",
		logging.String("codec", res.Codec),
		logging.Int("sample_rate", res.SampleRate),
		logging.Int("channels", res.InputChannels),
		logging.Int("stream_index", in.StreamIndex()))

	out, err := media.CreateOutput(opts.OutputPath, media.EncoderSettings{
		SampleRate: in.SampleRate(),
		Channels:   opts.Channels,
		BitRate:    opts.BitRate,
	})
	if err != nil {
		return res, err
	}
	defer out.Close()
	res.OutputChannels = out.Channels()

	dec := in.Decoder()
	tb := in.TimeBase()
	proc, err := denoise.New(denoise.Params{
		InSampleRate:    dec.SampleRate(),
		InSampleFormat:  dec.SampleFmt(),
		InChannels:      dec.ChLayout().NbChannels(),
		InTimeBaseNum:   tb.Num(),
		InTimeBaseDen:   tb.Den(),
		OutSampleRate:   out.SampleRate(),
		OutSampleFormat: out.SampleFormat(),
		OutChannels:     out.Channels(),
		FrameSize:       out.FrameSize(),
		Enabled:         opts.Denoise,
		SuppressionDB:   opts.SuppressionDB,
	})
	if err != nil {
		return res, err
	}
	defer proc.Close()

	if err := out.WriteHeader(); err != nil {
		return res, err
	}

	st := &run{
		in:     in,
		out:    out,
		proc:   proc,
		res:    res,
		logger: logger,
	}
	st.pkt = ffmpeg.AVPacketAlloc()
	st.decFrame = ffmpeg.AVFrameAlloc()
	st.fltFrame = ffmpeg.AVFrameAlloc()
	st.encPkt = ffmpeg.AVPacketAlloc()
	defer st.free()
	if st.pkt == nil || st.decFrame == nil || st.fltFrame == nil || st.encPkt == nil {
		return res, media.Wrap(media.ErrInput, "allocate packet and frame buffers", nil)
	}

	if err := st.loop(ctx); err != nil {
		return res, err
	}
	if err := st.finish(); err != nil {
		return res, err
	}

	if err := out.WriteTrailer(); err != nil {
		return res, err
	}

	res.Elapsed = time.Since(start)
	logger.Info("run completed",
		logging.Int64("packets_read", res.PacketsRead),
		logging.Int64("frames_decoded", res.FramesDecoded),
		logging.Int64("frames_filtered", res.FramesFiltered),
		logging.Int64("packets_written", res.PacketsWritten),
		logging.Int64("warnings", res.Warnings),
		logging.Duration("elapsed", res.Elapsed))
	return res, nil
}

func validate(opts Options) error {
	if opts.InputPath == "" {
		return media.Wrap(media.ErrInput, "input path is required", nil)
	}
	if opts.OutputPath == "" {
		return media.Wrap(media.ErrOutput, "output path is required", nil)
	}
	if opts.BitRate <= 0 {
		return media.Wrap(media.ErrEncoder, fmt.Sprintf("bit rate must be positive, got %d", opts.BitRate), nil)
	}
	if opts.Channels != 1 && opts.Channels != 2 {
		return media.Wrap(media.ErrEncoder, fmt.Sprintf("channel count must be 1 or 2, got %d", opts.Channels), nil)
	}
	if opts.Denoise && opts.SuppressionDB >= 0 {
		return media.Wrap(media.ErrFilter, fmt.Sprintf("suppression level must be negative dB, got %d", opts.SuppressionDB), nil)
	}
	return nil
}

// run holds the per-invocation loop state so the decode, filter, and encode
// stages can share buffers and counters.
type run struct {
	in   *media.Input
	out  *media.Output
	proc *denoise.Processor

	pkt      *ffmpeg.AVPacket
	decFrame *ffmpeg.AVFrame
	fltFrame *ffmpeg.AVFrame
	encPkt   *ffmpeg.AVPacket

	// nextPTS numbers filtered frames in samples when the graph emits
	// frames without timestamps.
	nextPTS int64

	res    *Result
	logger *slog.Logger
}

func (st *run) free() {
	if st.pkt != nil {
		ffmpeg.AVPacketFree(&st.pkt)
	}
	if st.encPkt != nil {
		ffmpeg.AVPacketFree(&st.encPkt)
	}
	if st.decFrame != nil {
		ffmpeg.AVFrameFree(&st.decFrame)
	}
	if st.fltFrame != nil {
		ffmpeg.AVFrameFree(&st.fltFrame)
	}
}

// loop reads packets until the input is exhausted. Packets from other
// streams are discarded. A failure to decode one packet is logged and the
// packet skipped; container read errors and write errors abort the run.
func (st *run) loop(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("run canceled: %w", err)
		}

		ok, err := st.in.ReadPacket(st.pkt)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		st.res.PacketsRead++
		if st.pkt.StreamIndex() != st.in.StreamIndex() {
			ffmpeg.AVPacketUnref(st.pkt)
			continue
		}

		err = st.decodePacket(st.pkt)
		ffmpeg.AVPacketUnref(st.pkt)
		if err != nil {
			if errors.Is(err, media.ErrOutput) {
				return err
			}
			st.res.Warnings++
			st.logger.Warn("skipping packet", logging.Error(err))
		}
	}
}

// finish drains the decoder, the filter graph, and the encoder in that
// order so buffered trailing audio reaches the output.
func (st *run) finish() error {
	if err := st.in.SendPacket(nil); err != nil {
		return err
	}
	if err := st.drainDecoder(); err != nil {
		return err
	}
	if err := st.proc.Flush(); err != nil {
		return err
	}
	if err := st.drainFilter(); err != nil {
		return err
	}
	if err := st.out.SendFrame(nil); err != nil {
		return err
	}
	return st.drainEncoder()
}

func (st *run) decodePacket(pkt *ffmpeg.AVPacket) error {
	if err := st.in.SendPacket(pkt); err != nil {
		return err
	}
	return st.drainDecoder()
}

func (st *run) drainDecoder() error {
	for {
		ok, err := st.in.ReceiveFrame(st.decFrame)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		st.res.FramesDecoded++

		// The graph takes over the frame's buffers and resets it.
		if err := st.proc.Push(st.decFrame); err != nil {
			return err
		}
		if err := st.drainFilter(); err != nil {
			return err
		}
	}
}

func (st *run) drainFilter() error {
	for {
		ok, err := st.proc.Receive(st.fltFrame)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		st.res.FramesFiltered++

		err = st.encodeFrame(st.fltFrame)
		ffmpeg.AVFrameUnref(st.fltFrame)
		if err != nil {
			return err
		}
	}
}

func (st *run) encodeFrame(frame *ffmpeg.AVFrame) error {
	if frame.Pts() == ffmpeg.AVNoptsValue {
		frame.SetPts(st.nextPTS)
	} else {
		st.nextPTS = frame.Pts()
	}
	st.nextPTS += int64(frame.NbSamples())

	if err := st.out.SendFrame(frame); err != nil {
		return err
	}
	return st.drainEncoder()
}

func (st *run) drainEncoder() error {
	for {
		ok, err := st.out.ReceivePacket(st.encPkt)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		// The muxer consumes the packet reference.
		if err := st.out.WritePacket(st.encPkt); err != nil {
			return err
		}
		st.res.PacketsWritten++
	}
}
