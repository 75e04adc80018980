package blt

import (
	"github.com/gogpu/mhw"
	"github.com/gogpu/mhw/hwcmd"
)

// XY_FAST_COPY_BLT fields.
var (
	fcDstTilingMethod = hwcmd.Bits("DestinationTilingMethod", 0, 14, 13)
	fcSrcTilingMethod = hwcmd.Bits("SourceTilingMethod", 0, 21, 20)
	fcDstPitch        = hwcmd.Bits("DestinationPitch", 1, 15, 0)
	fcColorDepth      = hwcmd.Bits("ColorDepth", 1, 26, 24)
	fcTileYTypeDst    = hwcmd.Bit("TileYTypeForDestination", 1, 30)
	fcTileYTypeSrc    = hwcmd.Bit("TileYTypeForSource", 1, 31)
	fcDstX1           = hwcmd.Bits("DestinationX1CoordinateLeft", 2, 15, 0)
	fcDstY1           = hwcmd.Bits("DestinationY1CoordinateTop", 2, 31, 16)
	fcDstX2           = hwcmd.Bits("DestinationX2CoordinateRight", 3, 15, 0)
	fcDstY2           = hwcmd.Bits("DestinationY2CoordinateBottom", 3, 31, 16)
	fcSrcX1           = hwcmd.Bits("SourceX1CoordinateLeft", 6, 15, 0)
	fcSrcY1           = hwcmd.Bits("SourceY1CoordinateTop", 6, 31, 16)
	fcSrcPitch        = hwcmd.Bits("SourcePitch", 7, 15, 0)
)

// Address locations of XY_FAST_COPY_BLT.
const (
	fcDstAddressDW = 4
	fcSrcAddressDW = 8
)

// XY_BLOCK_COPY_BLT fields.
var (
	bcColorDepth = hwcmd.Bits("ColorDepth", 0, 21, 19)
	bcDstPitch   = hwcmd.Bits("DestinationPitch", 1, 17, 0)
	bcDstMocs    = hwcmd.Bits("DestinationMocsValue", 1, 27, 21)
	bcDstTiling  = hwcmd.Bits("DestinationTiling", 1, 31, 30)
	bcDstX1      = hwcmd.Bits("DestinationX1CoordinateLeft", 2, 15, 0)
	bcDstY1      = hwcmd.Bits("DestinationY1CoordinateTop", 2, 31, 16)
	bcDstX2      = hwcmd.Bits("DestinationX2CoordinateRight", 3, 15, 0)
	bcDstY2      = hwcmd.Bits("DestinationY2CoordinateBottom", 3, 31, 16)
	bcDstXOffset = hwcmd.Bits("DestinationXOffset", 6, 13, 0)
	bcDstYOffset = hwcmd.Bits("DestinationYOffset", 6, 29, 16)
	bcSrcX1      = hwcmd.Bits("SourceX1CoordinateLeft", 7, 15, 0)
	bcSrcY1      = hwcmd.Bits("SourceY1CoordinateTop", 7, 31, 16)
	bcSrcPitch   = hwcmd.Bits("SourcePitch", 8, 17, 0)
	bcSrcMocs    = hwcmd.Bits("SourceMocs", 8, 27, 21)
	bcSrcTiling  = hwcmd.Bits("SourceTiling", 8, 31, 30)
	bcSrcXOffset = hwcmd.Bits("SourceXOffset", 11, 13, 0)
	bcSrcYOffset = hwcmd.Bits("SourceYOffset", 11, 29, 16)
)

const (
	bcDstAddressDW = 4
	bcSrcAddressDW = 9
)

// BCS_SWCTRL register fields. The upper half holds write-enable masks for
// the lower half.
var (
	swTileYSource          = hwcmd.Bit("TileYSource", 0, 0)
	swTileYDestination     = hwcmd.Bit("TileYDestination", 0, 1)
	swNotInvalidateCache   = hwcmd.Bit("NotInvalidateBlitterCacheOnBCSFlush", 0, 2)
	swShrinkBlitterCache   = hwcmd.Bit("ShrinkBlitterCache", 0, 3)
	swTileYSourceMask      = hwcmd.Bit("TileYSourceMask", 0, 16)
	swTileYDestinationMask = hwcmd.Bit("TileYDestinationMask", 0, 17)
	swMask                 = hwcmd.Bits("Mask", 0, 31, 18)
)

// MI_LOAD_REGISTER_IMM fields.
var (
	lriRegisterOffset = hwcmd.Bits("RegisterOffset", 1, 22, 2)
	lriDataDWord      = hwcmd.Bits("DataDWord", 2, 31, 0)
)

// BcsSwCtrlRegister is the MMIO offset of BCS_SWCTRL.
const BcsSwCtrlRegister = 0x22200

// Gen12 layouts.
var (
	gen12FastCopy  = hwcmd.NewLayout("XY_FAST_COPY_BLT", 0x50800008, 0, 0, 0, 0, 0, 0, 0, 0, 0)
	gen12BlockCopy = hwcmd.NewLayout("XY_BLOCK_COPY_BLT", 0x5040000a, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0)
	gen12SwCtrl    = hwcmd.NewLayout("BCS_SWCTRL", 0x00030000)
	gen12LoadReg   = hwcmd.NewLayout("MI_LOAD_REGISTER_IMM", 0x11000001, 0, 0)
)

func init() {
	gen12FastCopy.Check(fcDstTilingMethod, fcSrcTilingMethod, fcDstPitch, fcColorDepth,
		fcTileYTypeDst, fcTileYTypeSrc, fcDstX1, fcDstY1, fcDstX2, fcDstY2, fcSrcX1, fcSrcY1, fcSrcPitch)
	gen12BlockCopy.Check(bcColorDepth, bcDstPitch, bcDstMocs, bcDstTiling, bcDstX1, bcDstY1,
		bcDstX2, bcDstY2, bcDstXOffset, bcDstYOffset, bcSrcX1, bcSrcY1, bcSrcPitch, bcSrcMocs,
		bcSrcTiling, bcSrcXOffset, bcSrcYOffset)
	gen12SwCtrl.Check(swTileYSource, swTileYDestination, swNotInvalidateCache, swShrinkBlitterCache,
		swTileYSourceMask, swTileYDestinationMask, swMask)
	gen12LoadReg.Check(lriRegisterOffset, lriDataDWord)
}

func u32(v uint32) hwcmd.Expr[CopyPar] {
	return func(*CopyPar, *hwcmd.Template) uint32 { return v }
}

// fastCopyFields copies linear to linear: tiling methods stay zero.
func fastCopyFields() hwcmd.FieldList[CopyPar] {
	return hwcmd.FieldList[CopyPar]{
		hwcmd.Map(fcSrcTilingMethod, u32(0)),
		hwcmd.Map(fcDstTilingMethod, u32(0)),
		hwcmd.Map(fcTileYTypeSrc, u32(0)),
		hwcmd.Map(fcTileYTypeDst, u32(0)),
		hwcmd.Map(fcColorDepth, func(p *CopyPar, _ *hwcmd.Template) uint32 { return uint32(p.ColorDepth) }),
		hwcmd.Map(fcDstPitch, func(p *CopyPar, _ *hwcmd.Template) uint32 { return p.DstPitch }),
		hwcmd.Map(fcDstX1, func(p *CopyPar, _ *hwcmd.Template) uint32 { return p.DstLeft }),
		hwcmd.Map(fcDstY1, func(p *CopyPar, _ *hwcmd.Template) uint32 { return p.DstTop }),
		hwcmd.Map(fcDstX2, func(p *CopyPar, _ *hwcmd.Template) uint32 { return p.DstRight }),
		hwcmd.Map(fcDstY2, func(p *CopyPar, _ *hwcmd.Template) uint32 { return p.DstBottom }),
		hwcmd.Map(fcSrcX1, func(p *CopyPar, _ *hwcmd.Template) uint32 { return p.SrcLeft }),
		hwcmd.Map(fcSrcY1, func(p *CopyPar, _ *hwcmd.Template) uint32 { return p.SrcTop }),
		hwcmd.Map(fcSrcPitch, func(p *CopyPar, _ *hwcmd.Template) uint32 { return p.SrcPitch }),
		hwcmd.Hook[CopyPar](HookFastCopy),
	}
}

func tiling(r *mhw.Resource) uint32 {
	if r == nil || r.Tile == mhw.TileLinear {
		return 0
	}
	return 1
}

// blockCopyFields stores pitches minus one. MOCS values are resolved into
// the parameter record from the cacheability table before the list runs.
func blockCopyFields() hwcmd.FieldList[CopyPar] {
	return hwcmd.FieldList[CopyPar]{
		hwcmd.Map(bcColorDepth, func(p *CopyPar, _ *hwcmd.Template) uint32 { return uint32(p.ColorDepth) }),
		hwcmd.Map(bcDstPitch, func(p *CopyPar, _ *hwcmd.Template) uint32 { return p.DstPitch - 1 }),
		hwcmd.Map(bcDstMocs, func(p *CopyPar, _ *hwcmd.Template) uint32 { return p.dstMocs }),
		hwcmd.Map(bcDstTiling, func(p *CopyPar, _ *hwcmd.Template) uint32 { return tiling(p.Dst) }),
		hwcmd.Map(bcSrcTiling, func(p *CopyPar, _ *hwcmd.Template) uint32 { return tiling(p.Src) }),
		hwcmd.Map(bcSrcMocs, func(p *CopyPar, _ *hwcmd.Template) uint32 { return p.srcMocs }),
		hwcmd.Map(bcDstX1, u32(0)),
		hwcmd.Map(bcDstY1, u32(0)),
		hwcmd.Map(bcDstX2, func(p *CopyPar, _ *hwcmd.Template) uint32 { return p.DstRight }),
		hwcmd.Map(bcDstY2, func(p *CopyPar, _ *hwcmd.Template) uint32 { return p.DstBottom }),
		hwcmd.Map(bcSrcX1, func(p *CopyPar, _ *hwcmd.Template) uint32 { return p.SrcLeft }),
		hwcmd.Map(bcSrcY1, func(p *CopyPar, _ *hwcmd.Template) uint32 { return p.SrcTop }),
		hwcmd.Map(bcSrcPitch, func(p *CopyPar, _ *hwcmd.Template) uint32 { return p.SrcPitch - 1 }),
		hwcmd.Hook[CopyPar](HookBlockCopy),
	}
}

func swCtrlFields() hwcmd.FieldList[SwCtrlPar] {
	flag := func(get func(*SwCtrlPar) bool) hwcmd.Expr[SwCtrlPar] {
		return func(p *SwCtrlPar, _ *hwcmd.Template) uint32 { return hwcmd.Bool(get(p)) }
	}
	return hwcmd.FieldList[SwCtrlPar]{
		hwcmd.Map(swTileYSource, flag(func(p *SwCtrlPar) bool { return p.TileYSource })),
		hwcmd.Map(swTileYDestination, flag(func(p *SwCtrlPar) bool { return p.TileYDestination })),
		hwcmd.Map(swNotInvalidateCache, flag(func(p *SwCtrlPar) bool { return p.NotInvalidateCacheOnFlush })),
		hwcmd.Map(swShrinkBlitterCache, flag(func(p *SwCtrlPar) bool { return p.ShrinkCache })),
	}
}
