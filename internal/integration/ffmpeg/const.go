package ffmpeg

import "time"

const (
	name = "ffmpeg"
	// Decoding long recordings from slow storage can take a while.
	timeout = 120 * time.Second
)
