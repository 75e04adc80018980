package blt

import "github.com/gogpu/gputypes"

// ColorDepth is the pixel size code of a BLT copy.
type ColorDepth uint32

const (
	ColorDepth8Bit ColorDepth = iota
	ColorDepth16Bit
	ColorDepth32Bit
	ColorDepth64Bit
	ColorDepth96Bit
	ColorDepth128Bit
)

var colorDepthBytes = [...]uint32{
	ColorDepth8Bit:   1,
	ColorDepth16Bit:  2,
	ColorDepth32Bit:  4,
	ColorDepth64Bit:  8,
	ColorDepth96Bit:  12,
	ColorDepth128Bit: 16,
}

// Bytes returns the pixel size in bytes, or 0 for an unknown code.
func (c ColorDepth) Bytes() uint32 {
	if int(c) < len(colorDepthBytes) {
		return colorDepthBytes[c]
	}
	return 0
}

// ColorDepthForBytes returns the code for a pixel of n bytes.
func ColorDepthForBytes(n uint32) (ColorDepth, bool) {
	for c, b := range colorDepthBytes {
		if b == n {
			return ColorDepth(c), true
		}
	}
	return 0, false
}

// ColorDepthForTexture returns the code matching the texel size of a WebGPU
// texture format.
func ColorDepthForTexture(tf gputypes.TextureFormat) (ColorDepth, bool) {
	switch tf {
	case gputypes.TextureFormatR8Unorm:
		return ColorDepth8Bit, true
	case gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatBGRA8Unorm,
		gputypes.TextureFormatDepth24PlusStencil8:
		return ColorDepth32Bit, true
	default:
		return 0, false
	}
}
