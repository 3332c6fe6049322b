package media

import (
	"errors"
	"fmt"

	ffmpeg "github.com/linuxmatters/ffmpeg-statigo"
)

// Input owns an opened input container and the decoder for its first audio
// stream. The stream choice is fixed for the lifetime of the Input.
type Input struct {
	path        string
	fmtCtx      *ffmpeg.AVFormatContext
	stream      *ffmpeg.AVStream
	streamIndex int
	decCtx      *ffmpeg.AVCodecContext
}

// OpenInput opens the container at path, probes stream information, selects
// the first audio-typed stream in index order, and opens a decoder for it.
// On any failure all partially acquired handles are released before return.
func OpenInput(path string) (*Input, error) {
	in := &Input{path: path, streamIndex: -1}

	url := ffmpeg.ToCStr(path)
	defer url.Free()

	if _, err := ffmpeg.AVFormatOpenInput(&in.fmtCtx, url, nil, nil); err != nil {
		return nil, Wrap(ErrInput, fmt.Sprintf("open input %s", path), err)
	}

	if _, err := ffmpeg.AVFormatFindStreamInfo(in.fmtCtx, nil); err != nil {
		in.Close()
		return nil, Wrap(ErrInput, "find stream info", err)
	}

	nbStreams := int(in.fmtCtx.NbStreams())
	for i := 0; i < nbStreams; i++ {
		stream := in.fmtCtx.Streams().Get(uintptr(i))
		if stream.Codecpar().CodecType() == ffmpeg.AVMediaTypeAudio {
			in.stream = stream
			in.streamIndex = i
			break
		}
	}
	if in.stream == nil {
		in.Close()
		return nil, Wrap(ErrStream, "no audio stream found", nil)
	}

	params := in.stream.Codecpar()
	codec := ffmpeg.AVCodecFindDecoder(params.CodecId())
	if codec == nil {
		in.Close()
		return nil, Wrap(ErrDecoder, fmt.Sprintf("decoder not found for codec id %d", params.CodecId()), nil)
	}

	in.decCtx = ffmpeg.AVCodecAllocContext3(codec)
	if in.decCtx == nil {
		in.Close()
		return nil, Wrap(ErrDecoder, "allocate decoder context", nil)
	}
	if _, err := ffmpeg.AVCodecParametersToContext(in.decCtx, params); err != nil {
		in.Close()
		return nil, Wrap(ErrDecoder, "apply decoder parameters", err)
	}
	if _, err := ffmpeg.AVCodecOpen2(in.decCtx, codec, nil); err != nil {
		in.Close()
		return nil, Wrap(ErrDecoder, "open decoder", err)
	}

	return in, nil
}

// Path returns the input file path.
func (in *Input) Path() string { return in.path }

// StreamIndex returns the index of the selected audio stream.
func (in *Input) StreamIndex() int { return in.streamIndex }

// SampleRate returns the selected stream's sample rate.
func (in *Input) SampleRate() int {
	return in.stream.Codecpar().SampleRate()
}

// Channels returns the selected stream's channel count.
func (in *Input) Channels() int {
	return in.stream.Codecpar().ChLayout().NbChannels()
}

// BitRate returns the bit rate the container declares for the selected
// stream, in bits per second, or zero when none is declared.
func (in *Input) BitRate() int64 {
	return in.stream.Codecpar().BitRate()
}

// CodecName returns the decoder's codec name for diagnostics.
func (in *Input) CodecName() string {
	if in.decCtx == nil || in.decCtx.Codec() == nil {
		return ""
	}
	return in.decCtx.Codec().Name().String()
}

// Decoder exposes the decoder context for filter graph construction.
func (in *Input) Decoder() *ffmpeg.AVCodecContext { return in.decCtx }

// TimeBase returns the selected stream's time base, which is also the time
// base of the packets and decoded frames it produces.
func (in *Input) TimeBase() *ffmpeg.AVRational { return in.stream.TimeBase() }

// ReadPacket reads the next packet from the container into pkt. It returns
// false when the input is exhausted. The caller owns pkt and must unref it
// after use regardless of which stream it belongs to.
func (in *Input) ReadPacket(pkt *ffmpeg.AVPacket) (bool, error) {
	if _, err := ffmpeg.AVReadFrame(in.fmtCtx, pkt); err != nil {
		if errors.Is(err, ffmpeg.AVErrorEOF) {
			return false, nil
		}
		return false, Wrap(ErrInput, "read packet", err)
	}
	return true, nil
}

// SendPacket submits a compressed packet to the decoder. A nil packet
// signals end of stream and starts the decoder drain.
func (in *Input) SendPacket(pkt *ffmpeg.AVPacket) error {
	if _, err := ffmpeg.AVCodecSendPacket(in.decCtx, pkt); err != nil {
		return Wrap(ErrDecoder, "send packet", err)
	}
	return nil
}

// ReceiveFrame drains one decoded frame into frame. It returns false when
// the decoder needs more input or has been fully drained.
func (in *Input) ReceiveFrame(frame *ffmpeg.AVFrame) (bool, error) {
	if _, err := ffmpeg.AVCodecReceiveFrame(in.decCtx, frame); err != nil {
		if errors.Is(err, ffmpeg.EAgain) || errors.Is(err, ffmpeg.AVErrorEOF) {
			return false, nil
		}
		return false, Wrap(ErrDecoder, "receive frame", err)
	}
	return true, nil
}

// Close releases the decoder context and the input container. Safe to call
// more than once.
func (in *Input) Close() {
	if in.decCtx != nil {
		ffmpeg.AVCodecFreeContext(&in.decCtx)
		in.decCtx = nil
	}
	if in.fmtCtx != nil {
		ffmpeg.AVFormatCloseInput(&in.fmtCtx)
		in.fmtCtx = nil
	}
}
