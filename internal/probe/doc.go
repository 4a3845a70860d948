// Package probe inspects produced videos with ffprobe. A single JSON call
// with -count_frames yields the codec, dimensions, frame rate and the number
// of frames actually decodable, which is what assembly and grading verify
// against.
package probe
