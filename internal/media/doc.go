// Package media wraps the libav* surface hush needs: container demux and
// mux, audio decode, and MP3 encode.
//
// Each type owns its native handles exclusively and releases them in Close;
// callers are expected to defer Close immediately after construction so
// every exit path tears down in reverse dependency order. Packet and frame
// buffers are reused across loop iterations and unreferenced between uses,
// matching the send/receive protocol of the codec layer: submit one unit,
// then drain zero or more produced units.
package media
