// Package denoise provides the noise-suppression stage of the pipeline.
//
// The suppressor is an FFT denoiser (afftdn) run inside a libavfilter graph
// built from the decoder's actual sample format, so planar and
// floating-point decoder output is handled correctly rather than being
// reinterpreted as interleaved 16-bit samples. The same graph converts
// frames to the encoder's sample format, rate, and channel layout, including
// a real remix when the input channel count differs from the output.
package denoise
