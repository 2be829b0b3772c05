package ffprobe

import "time"

const (
	name = "ffprobe"
	// Network mounts and sleeping drives can be slow to answer.
	timeout = 60 * time.Second
)
