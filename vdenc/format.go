package vdenc

import "github.com/gogpu/mhw"

// SurfaceFormat is the VDENC surface format code.
type SurfaceFormat uint32

const (
	SurfaceFormatYUV422          SurfaceFormat = 0
	SurfaceFormatRGBA4444        SurfaceFormat = 1
	SurfaceFormatYUV444          SurfaceFormat = 2
	SurfaceFormatY8Unorm         SurfaceFormat = 3
	SurfaceFormatPlanar4208      SurfaceFormat = 4
	SurfaceFormatYCrCbSwapY422   SurfaceFormat = 5
	SurfaceFormatYCrCbSwapUV422  SurfaceFormat = 6
	SurfaceFormatYCrCbSwapUVY422 SurfaceFormat = 7
	SurfaceFormatY216            SurfaceFormat = 8
	SurfaceFormatR10G10B10A2     SurfaceFormat = 9
	SurfaceFormatY410            SurfaceFormat = 10
	SurfaceFormatNV21            SurfaceFormat = 11
	SurfaceFormatP010            SurfaceFormat = 12
	SurfaceFormatP010Variant     SurfaceFormat = 13
	SurfaceFormatAYUVVariant     SurfaceFormat = 14
	SurfaceFormatY216Variant     SurfaceFormat = 15
	SurfaceFormatY416Variant     SurfaceFormat = 16
	SurfaceFormatYUYVVariant     SurfaceFormat = 17
)

// RawSurfaceFormat returns the format code of a source picture.
// Unlisted formats encode as planar 4:2:0.
func RawSurfaceFormat(f mhw.Format) SurfaceFormat {
	switch f {
	case mhw.FormatA8R8G8B8, mhw.FormatX8R8G8B8, mhw.FormatA8B8G8R8:
		return SurfaceFormatRGBA4444
	case mhw.Format400P, mhw.FormatP8:
		return SurfaceFormatY8Unorm
	case mhw.FormatUYVY:
		return SurfaceFormatYCrCbSwapY422
	case mhw.FormatYVYU:
		return SurfaceFormatYCrCbSwapUV422
	case mhw.FormatVYUY:
		return SurfaceFormatYCrCbSwapUVY422
	case mhw.Format444P, mhw.FormatAYUV:
		return SurfaceFormatYUV444
	case mhw.FormatYUY2, mhw.FormatYUYV:
		return SurfaceFormatYUV422
	case mhw.FormatP010:
		return SurfaceFormatP010
	case mhw.FormatR10G10B10A2, mhw.FormatB10G10R10A2:
		return SurfaceFormatR10G10B10A2
	case mhw.FormatY210, mhw.FormatY216:
		// Y210 is allocated as Y216.
		return SurfaceFormatY216
	case mhw.FormatY410:
		return SurfaceFormatY410
	case mhw.FormatNV21:
		return SurfaceFormatNV21
	default:
		return SurfaceFormatPlanar4208
	}
}

// ReconSurfaceFormat returns the format code of a reconstructed reference
// picture. Packed YUV and 10-bit formats use their variant layouts.
func ReconSurfaceFormat(f mhw.Format) SurfaceFormat {
	switch f {
	case mhw.FormatA8R8G8B8, mhw.FormatX8R8G8B8, mhw.FormatA8B8G8R8:
		return SurfaceFormatRGBA4444
	case mhw.Format400P, mhw.FormatP8:
		return SurfaceFormatY8Unorm
	case mhw.FormatUYVY:
		return SurfaceFormatYCrCbSwapY422
	case mhw.FormatYVYU:
		return SurfaceFormatYCrCbSwapUV422
	case mhw.FormatVYUY:
		return SurfaceFormatYCrCbSwapUVY422
	case mhw.Format444P, mhw.FormatAYUV:
		return SurfaceFormatAYUVVariant
	case mhw.FormatYUY2, mhw.FormatYUYV:
		return SurfaceFormatYUYVVariant
	case mhw.FormatP010:
		return SurfaceFormatP010Variant
	case mhw.FormatR10G10B10A2:
		return SurfaceFormatR10G10B10A2
	case mhw.FormatY216:
		return SurfaceFormatY216Variant
	case mhw.FormatY410:
		return SurfaceFormatY416Variant
	case mhw.FormatNV21:
		return SurfaceFormatNV21
	default:
		return SurfaceFormatPlanar4208
	}
}

// Hardware tile mode codes.
const (
	hwTileLinear = 0
	hwTileYs     = 1
	hwTileX      = 2
	hwTileY      = 3
)

// HwTileType returns the TileMode code of a surface. An explicit memory
// manager tile mode wins over the resource tile type.
func HwTileType(tile mhw.TileType, gmmTileMode uint32, gmmTileEnabled bool) uint32 {
	if gmmTileEnabled {
		return gmmTileMode
	}
	switch tile {
	case mhw.TileLinear:
		return hwTileLinear
	case mhw.TileYs:
		return hwTileYs
	case mhw.TileX:
		return hwTileX
	default:
		return hwTileY
	}
}
