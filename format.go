package mhw

import "github.com/gogpu/gputypes"

// Format is a media surface pixel format.
type Format int

const (
	FormatInvalid Format = iota
	FormatA8R8G8B8
	FormatX8R8G8B8
	FormatA8B8G8R8
	FormatX8B8G8R8
	FormatR10G10B10A2
	FormatB10G10R10A2
	FormatNV12
	FormatNV11
	FormatNV21
	FormatP208
	FormatIMC1
	FormatIMC2
	FormatIMC3
	FormatIMC4
	Format400P
	FormatP8
	FormatL8
	FormatUYVY
	FormatYVYU
	FormatVYUY
	FormatYUY2
	FormatYUYV
	Format444P
	FormatAYUV
	FormatP010
	FormatP016
	FormatY210
	FormatY216
	FormatY410
	FormatY416
	formatCount
)

var formatNames = [...]string{
	FormatInvalid:     "Invalid",
	FormatA8R8G8B8:    "A8R8G8B8",
	FormatX8R8G8B8:    "X8R8G8B8",
	FormatA8B8G8R8:    "A8B8G8R8",
	FormatX8B8G8R8:    "X8B8G8R8",
	FormatR10G10B10A2: "R10G10B10A2",
	FormatB10G10R10A2: "B10G10R10A2",
	FormatNV12:        "NV12",
	FormatNV11:        "NV11",
	FormatNV21:        "NV21",
	FormatP208:        "P208",
	FormatIMC1:        "IMC1",
	FormatIMC2:        "IMC2",
	FormatIMC3:        "IMC3",
	FormatIMC4:        "IMC4",
	Format400P:        "400P",
	FormatP8:          "P8",
	FormatL8:          "L8",
	FormatUYVY:        "UYVY",
	FormatYVYU:        "YVYU",
	FormatVYUY:        "VYUY",
	FormatYUY2:        "YUY2",
	FormatYUYV:        "YUYV",
	Format444P:        "444P",
	FormatAYUV:        "AYUV",
	FormatP010:        "P010",
	FormatP016:        "P016",
	FormatY210:        "Y210",
	FormatY216:        "Y216",
	FormatY410:        "Y410",
	FormatY416:        "Y416",
}

// String returns the format name.
func (f Format) String() string {
	if f >= 0 && f < formatCount {
		return formatNames[f]
	}
	return "Unknown"
}

// BytesPerPixel returns the size of one pixel of the first plane, or 0 for
// formats with no packed pixel.
func (f Format) BytesPerPixel() uint32 {
	switch f {
	case FormatA8R8G8B8, FormatX8R8G8B8, FormatA8B8G8R8, FormatX8B8G8R8,
		FormatR10G10B10A2, FormatB10G10R10A2, FormatAYUV, FormatY410,
		FormatY210, FormatY216:
		return 4
	case FormatUYVY, FormatYVYU, FormatVYUY, FormatYUY2, FormatYUYV, FormatP010, FormatP016:
		return 2
	case FormatY416:
		return 8
	case FormatInvalid:
		return 0
	default:
		return 1
	}
}

// FormatFromTexture maps a WebGPU texture format to the media format with
// the same memory layout. Formats with no media equivalent map to
// FormatInvalid.
func FormatFromTexture(tf gputypes.TextureFormat) Format {
	switch tf {
	case gputypes.TextureFormatRGBA8Unorm:
		return FormatA8B8G8R8
	case gputypes.TextureFormatBGRA8Unorm:
		return FormatA8R8G8B8
	case gputypes.TextureFormatR8Unorm:
		return FormatL8
	default:
		return FormatInvalid
	}
}
