// Package ffmpeg builds ffmpeg argument lists and classifies ffmpeg stderr.
//
// Builders return arguments without the binary name; callers run them
// through a tool.Runner. Every command shares one preamble
// (-hide_banner -y -loglevel ...) and, except when frames arrive on stdin,
// -nostdin so ffmpeg never steals the interactive terminal.
//
//   - BuildPipeEncode: JPEG frames on stdin → H.264 (builder.go)
//   - BuildSequenceEncode: numbered JPEG sequence → ProRes (builder.go)
//   - BuildGrade: lut3d filter pass over a flat video (builder.go)
//   - Classify: stderr → Cause for user-facing hints (errors.go)
package ffmpeg
