package media

import (
	"errors"
	"fmt"

	ffmpeg "github.com/linuxmatters/ffmpeg-statigo"
)

// EncoderSettings holds the fixed output encoding parameters for a run.
type EncoderSettings struct {
	// SampleRate is copied from the input stream.
	SampleRate int
	// Channels is the output channel count; the default layout for this
	// count is applied to the encoder.
	Channels int
	// BitRate is the MP3 nominal bit rate in bits per second.
	BitRate int
}

// Output owns the MP3 output container, its single stream, and the encoder
// feeding it. Construction performs the whole output setup: allocate the
// container, resolve the MP3 encoder, create the stream, configure and open
// the encoder, clear the codec tag, copy parameters, and open the file when
// the format does not manage its own I/O.
type Output struct {
	path      string
	fmtCtx    *ffmpeg.AVFormatContext
	encCtx    *ffmpeg.AVCodecContext
	stream    *ffmpeg.AVStream
	ioOpened  bool
	hasHeader bool
}

// CreateOutput builds the output side of the pipeline targeting MP3.
func CreateOutput(path string, settings EncoderSettings) (*Output, error) {
	out := &Output{path: path}

	formatName := ffmpeg.GlobalCStr("mp3")
	url := ffmpeg.ToCStr(path)
	defer url.Free()

	if _, err := ffmpeg.AVFormatAllocOutputContext2(&out.fmtCtx, nil, formatName, url); err != nil {
		return nil, Wrap(ErrOutput, "allocate output context", err)
	}
	if out.fmtCtx == nil {
		return nil, Wrap(ErrOutput, "allocate output context", nil)
	}

	codec := ffmpeg.AVCodecFindEncoder(ffmpeg.AVCodecIdMp3)
	if codec == nil {
		out.Close()
		return nil, Wrap(ErrEncoder, "mp3 encoder not available", nil)
	}

	out.stream = ffmpeg.AVFormatNewStream(out.fmtCtx, codec)
	if out.stream == nil {
		out.Close()
		return nil, Wrap(ErrOutput, "create output stream", nil)
	}

	out.encCtx = ffmpeg.AVCodecAllocContext3(codec)
	if out.encCtx == nil {
		out.Close()
		return nil, Wrap(ErrEncoder, "allocate encoder context", nil)
	}

	out.encCtx.SetSampleRate(settings.SampleRate)
	ffmpeg.AVChannelLayoutDefault(out.encCtx.ChLayout(), settings.Channels)
	out.encCtx.SetSampleFmt(preferredSampleFormat(codec))
	out.encCtx.SetBitRate(int64(settings.BitRate))

	// The global header flag must be set before parameters are copied to the
	// stream or the muxer will not see it.
	if out.fmtCtx.Oformat().Flags()&ffmpeg.AVFmtGlobalheader != 0 {
		out.encCtx.SetFlags(out.encCtx.Flags() | ffmpeg.AVCodecFlagGlobalHeader)
	}

	if _, err := ffmpeg.AVCodecOpen2(out.encCtx, codec, nil); err != nil {
		out.Close()
		return nil, Wrap(ErrEncoder, "open encoder", err)
	}

	out.stream.Codecpar().SetCodecTag(0)
	if _, err := ffmpeg.AVCodecParametersFromContext(out.stream.Codecpar(), out.encCtx); err != nil {
		out.Close()
		return nil, Wrap(ErrOutput, "copy encoder parameters", err)
	}

	if out.fmtCtx.Oformat().Flags()&ffmpeg.AVFmtNofile == 0 {
		var pb *ffmpeg.AVIOContext
		if _, err := ffmpeg.AVIOOpen(&pb, url, ffmpeg.AVIOFlagWrite); err != nil {
			out.Close()
			return nil, Wrap(ErrOutput, fmt.Sprintf("open output file %s", path), err)
		}
		out.fmtCtx.SetPb(pb)
		out.ioOpened = true
	}

	return out, nil
}

// Path returns the output file path.
func (out *Output) Path() string { return out.path }

// Encoder exposes the encoder context for filter graph construction.
func (out *Output) Encoder() *ffmpeg.AVCodecContext { return out.encCtx }

// FrameSize returns the encoder's required samples per frame.
func (out *Output) FrameSize() int { return out.encCtx.FrameSize() }

// SampleFormat returns the sample format the encoder consumes.
func (out *Output) SampleFormat() ffmpeg.AVSampleFormat { return out.encCtx.SampleFmt() }

// SampleRate returns the encoder's configured sample rate.
func (out *Output) SampleRate() int { return out.encCtx.SampleRate() }

// Channels returns the encoder's configured channel count.
func (out *Output) Channels() int { return out.encCtx.ChLayout().NbChannels() }

// WriteHeader writes the container header. Must be called once before any
// packets are written.
func (out *Output) WriteHeader() error {
	if _, err := ffmpeg.AVFormatWriteHeader(out.fmtCtx, nil); err != nil {
		return Wrap(ErrOutput, "write container header", err)
	}
	out.hasHeader = true
	return nil
}

// SendFrame submits a raw frame to the encoder. A nil frame signals end of
// stream and starts the encoder drain.
func (out *Output) SendFrame(frame *ffmpeg.AVFrame) error {
	if _, err := ffmpeg.AVCodecSendFrame(out.encCtx, frame); err != nil {
		return Wrap(ErrEncoder, "send frame", err)
	}
	return nil
}

// ReceivePacket drains one encoded packet into pkt. It returns false when
// the encoder needs more input or has been fully drained.
func (out *Output) ReceivePacket(pkt *ffmpeg.AVPacket) (bool, error) {
	if _, err := ffmpeg.AVCodecReceivePacket(out.encCtx, pkt); err != nil {
		if errors.Is(err, ffmpeg.EAgain) || errors.Is(err, ffmpeg.AVErrorEOF) {
			return false, nil
		}
		return false, Wrap(ErrEncoder, "receive packet", err)
	}
	return true, nil
}

// WritePacket rescales the packet's timestamps from the encoder time base to
// the stream time base and writes it to the container in interleaved order.
// The packet is consumed (unreferenced) by the muxer.
func (out *Output) WritePacket(pkt *ffmpeg.AVPacket) error {
	ffmpeg.AVPacketRescaleTs(pkt, out.encCtx.TimeBase(), out.stream.TimeBase())
	pkt.SetStreamIndex(out.stream.Index())
	if _, err := ffmpeg.AVInterleavedWriteFrame(out.fmtCtx, pkt); err != nil {
		return Wrap(ErrOutput, "write packet", err)
	}
	return nil
}

// WriteTrailer finalizes the container. Only valid after WriteHeader.
func (out *Output) WriteTrailer() error {
	if !out.hasHeader {
		return Wrap(ErrOutput, "write trailer: header was never written", nil)
	}
	if _, err := ffmpeg.AVWriteTrailer(out.fmtCtx); err != nil {
		return Wrap(ErrOutput, "write container trailer", err)
	}
	return nil
}

// Close releases the encoder, the output I/O handle, and the container
// context. Safe to call more than once.
func (out *Output) Close() {
	if out.encCtx != nil {
		ffmpeg.AVCodecFreeContext(&out.encCtx)
		out.encCtx = nil
	}
	if out.fmtCtx != nil {
		if out.ioOpened {
			pb := out.fmtCtx.Pb()
			ffmpeg.AVIOClosep(&pb)
			out.fmtCtx.SetPb(nil)
			out.ioOpened = false
		}
		ffmpeg.AVFormatFreeContext(out.fmtCtx)
		out.fmtCtx = nil
	}
}

// preferredSampleFormat returns the first sample format the encoder
// advertises, falling back to signed 16-bit when the codec reports none.
func preferredSampleFormat(codec *ffmpeg.AVCodec) ffmpeg.AVSampleFormat {
	fmts := codec.SampleFmts()
	if fmts == nil {
		return ffmpeg.AVSampleFmtS16
	}
	first := fmts.Get(0)
	if first == ffmpeg.AVSampleFmtNone {
		return ffmpeg.AVSampleFmtS16
	}
	return first
}
