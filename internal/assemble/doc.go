// Package assemble turns an ordered list of JPEG intermediates into a video.
//
// Two Encoder backends exist. H264Encoder reads every frame itself and
// streams it to ffmpeg's stdin; ProResEncoder lays the frames out as a
// numbered sequence and lets ffmpeg read them. Both run the same pre-flight
// (non-empty, consistent dimensions), write to a staged temp file, verify the
// counted frame total with ffprobe and only then publish the output.
package assemble
