package ffmpeg

import (
	"regexp"

	"github.com/backmassage/rawreel/internal/tool"
)

// Cause is a coarse classification of an ffmpeg failure, used to attach a
// hint to the error shown to the user.
type Cause int

const (
	CauseUnknown Cause = iota
	CauseMissingEncoder
	CauseMissingFile
	CauseInvalidData
	CauseLUT
)

// Pre-compiled patterns checked in order by Classify; the first match wins.
var (
	reMissingEncoder = regexp.MustCompile(
		`(?i)Unknown encoder|Encoder .* not found|` +
			`Requested output format .* is not a suitable output format`)

	reLUT = regexp.MustCompile(
		`(?i)lut3d|Unsupported 3D LUT|Missing LUT_3D_SIZE|` +
			`Error initializing filter .*lut|Too large or invalid 3D LUT size`)

	reMissingFile = regexp.MustCompile(
		`(?i)No such file or directory|Could not find file|Could open file .* for reading failed`)

	reInvalidData = regexp.MustCompile(
		`(?i)Invalid data found when processing input|` +
			`Invalid JPEG|Error while decoding stream|` +
			`Frame size of .* does not match|Input picture width .* is greater than|` +
			`changing video frame properties on the fly is not supported`)
)

// Classify maps ffmpeg stderr onto a Cause. LUT problems are checked before
// missing files so a bad LUT path reports as a LUT failure.
func Classify(stderr string) Cause {
	switch {
	case reMissingEncoder.MatchString(stderr):
		return CauseMissingEncoder
	case reLUT.MatchString(stderr):
		return CauseLUT
	case reMissingFile.MatchString(stderr):
		return CauseMissingFile
	case reInvalidData.MatchString(stderr):
		return CauseInvalidData
	default:
		return CauseUnknown
	}
}

// Hint is a short remedy for c, or "" when there is nothing useful to say.
func (c Cause) Hint() string {
	switch c {
	case CauseMissingEncoder:
		return "this ffmpeg build lacks the requested encoder; run with --check"
	case CauseMissingFile:
		return "an input file disappeared or is unreadable"
	case CauseInvalidData:
		return "a frame is corrupt or frames differ in size; reprocess the intermediates"
	case CauseLUT:
		return "the LUT could not be loaded by ffmpeg's lut3d filter"
	default:
		return ""
	}
}

func (c Cause) String() string {
	switch c {
	case CauseMissingEncoder:
		return "missing-encoder"
	case CauseMissingFile:
		return "missing-file"
	case CauseInvalidData:
		return "invalid-data"
	case CauseLUT:
		return "lut"
	default:
		return "unknown"
	}
}

// RunError is a failed ffmpeg run with its classified cause.
type RunError struct {
	Op    string // what rawreel was doing, e.g. "encode flat_video.mp4"
	Cause Cause
	Err   error // *tool.Error
}

func (e *RunError) Error() string {
	msg := e.Op + ": " + e.Err.Error()
	if h := e.Cause.Hint(); h != "" {
		msg += " (" + h + ")"
	}
	return msg
}

func (e *RunError) Unwrap() error { return e.Err }

// Check converts a finished ffmpeg Result into a *RunError; nil on success.
func Check(op, binary string, res tool.Result) error {
	err := res.AsError(binary)
	if err == nil {
		return nil
	}
	return &RunError{Op: op, Cause: Classify(res.Stderr), Err: err}
}
