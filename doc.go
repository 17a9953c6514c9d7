// Package wavtrim loads decoded audio clips, previews a trimmed, rate-scaled
// and gain-scaled sub-range, reduces it to a min/max waveform for display and
// exports the processed range as a 16-bit PCM WAV file.
//
// The package is built around a few small pieces:
//
//   - AudioAsset holds an immutable decoded clip.
//   - TrimRange keeps the selected window at least MinTrimSpan seconds wide.
//   - ClipRenderer turns an asset, a range, a playback rate and a gain into a
//     freshly owned RenderedBuffer, delegating the rate change to a
//     RenderEngine.
//   - Downsample reduces samples to exactly width (min, max) columns.
//   - Encoder writes a RenderedBuffer as a canonical 44-byte header WAV.
//   - PlaybackController keeps at most one preview playing through an
//     OutputSink and reports natural completion.
//
// Session ties them together as an explicit state object for hosts such as
// the wavtrim command and its HTTP server.
package wavtrim
