// Package audiocore holds the audio types shared by keyclip's capture,
// decode, export and rendering code.
//
// # Architecture Overview
//
//   - SampleBuffer: immutable mono float32 samples with a sample rate. All
//     time to sample conversions go through it.
//   - CaptureService: records raw audio and hands back finalized bytes
//     (implemented by audiocore/capture).
//   - Decoder: turns finalized bytes plus a MIME hint into a SampleBuffer
//     (implemented by audiocore/decode).
//
// Export lives in audiocore/export: segment extraction, WAV encoding and the
// archive sinks.
//
// # Concurrency
//
// A SampleBuffer never changes after construction and may be read from any
// goroutine. Slicing always produces a new buffer.
package audiocore
