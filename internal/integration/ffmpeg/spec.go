package ffmpeg

import (
	"strconv"

	"github.com/farcloser/ringdown/internal/types"
)

// bitDepthToSpec returns the raw output format: 16 = s16le, 24 = s24le, 32 = s32le.
func bitDepthToSpec(bitDepth types.BitDepth) string {
	return "s" + strconv.FormatUint(uint64(bitDepth), 10) + "le"
}

// bitDepthToCodec returns the matching PCM encoder, e.g. pcm_s32le.
func bitDepthToCodec(bitDepth types.BitDepth) string {
	return "pcm_" + bitDepthToSpec(bitDepth)
}
