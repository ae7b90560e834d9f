package ffmpeg

import "errors"

// ErrTransform indicates ffmpeg failed to produce the requested output.
var ErrTransform = errors.New("video transform failed")

// Progress represents ffmpeg progress data
type Progress struct {
	Frame   int
	FPS     float64
	Bitrate string
	Time    string
	Speed   string
}

// RunOptions configures ffmpeg execution
type RunOptions struct {
	Args            []string
	ProgressHandler func(*Progress)
	LogHandler      func(line string)
}
