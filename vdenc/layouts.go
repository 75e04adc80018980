package vdenc

import "github.com/gogpu/mhw/hwcmd"

// VDENC_CONTROL_STATE
var ctlVdencInitialization = hwcmd.Bit("VdencInitialization", 1, 1)

// VDENC_PIPE_MODE_SELECT
var (
	pmsStandardSelect         = hwcmd.Bits("StandardSelect", 1, 3, 0)
	pmsScalabilityMode        = hwcmd.Bit("ScalabilityMode", 1, 4)
	pmsFrameStatsStreamOut    = hwcmd.Bit("FrameStatisticsStreamOutEnable", 1, 5)
	pmsPakObjCmdStreamOut     = hwcmd.Bit("VdencPakObjCmdStreamOutEnable", 1, 6)
	pmsTlbPrefetch            = hwcmd.Bit("TlbPrefetchEnable", 1, 7)
	pmsPakThresholdCheck      = hwcmd.Bit("PakThresholdCheckEnable", 1, 8)
	pmsStreamIn               = hwcmd.Bit("VdencStreamInEnable", 1, 9)
	pmsBitDepth               = hwcmd.Bits("BitDepth", 1, 12, 10)
	pmsChromaSubSampling      = hwcmd.Bits("PakChromaSubSamplingType", 1, 14, 13)
	pmsOutputRangeCsc         = hwcmd.Bit("OutputRangeControlAfterColorSpaceConversion", 1, 15)
	pmsTileReplay             = hwcmd.Bit("TileReplayEnable", 1, 16)
	pmsRandomAccess           = hwcmd.Bit("IsRandomAccess", 1, 17)
	pmsRgbEncoding            = hwcmd.Bit("RgbEncodingEnable", 1, 18)
	pmsStreamingBufferConfig  = hwcmd.Bits("StreamingBufferConfig", 1, 21, 20)
	pmsHmeRegionPrefetch      = hwcmd.Bit("HmeRegionPreFetchenable", 2, 0)
	pmsTopPrefetchMode        = hwcmd.Bits("Topprefetchenablemode", 2, 2, 1)
	pmsLeftPrefetchWrapAround = hwcmd.Bit("LeftpreFetchatwraparound", 2, 3)
	pmsVerticalShift          = hwcmd.Bits("Verticalshift32Minus1", 2, 7, 4)
	pmsHzShift                = hwcmd.Bits("Hzshift32Minus1", 2, 11, 8)
	pmsNumVerticalReq         = hwcmd.Bits("NumVerticalReqMinus1", 2, 15, 12)
	pmsNumHzReq               = hwcmd.Bits("Numhzreqminus1", 2, 19, 16)
	pmsPrefetchOffset         = hwcmd.Bits("PreFetchOffsetForReferenceIn16PixelIncrement", 2, 23, 20)
	pmsCaptureMode            = hwcmd.Bits("CaptureMode", 5, 1, 0)
	pmsSessionID              = hwcmd.Bits("ParallelCaptureAndEncodeSessionId", 5, 4, 2)
	pmsTailPointerReadFreq    = hwcmd.Bits("TailPointerReadFrequency", 5, 15, 8)
	pmsQuantPrecision         = hwcmd.Bit("QuantizationPrecisionOptimization", 5, 16)
	pmsLatencyTolerate        = hwcmd.Bit("LatencyToleratePreFetchEnable", 5, 17)
)

// VDENC_Surface_State_Fields, declared relative to the first surface DWord.
var (
	sfVDirection  = hwcmd.Bits("CrVCbUPixelOffsetVDirection", 0, 1, 0)
	sfSwizzle     = hwcmd.Bit("SurfaceFormatByteSwizzle", 0, 2)
	sfColorSpace  = hwcmd.Bit("ColorSpaceSelection", 0, 3)
	sfWidth       = hwcmd.Bits("Width", 0, 17, 4)
	sfHeight      = hwcmd.Bits("Height", 0, 31, 18)
	sfPitch       = hwcmd.Bits("SurfacePitch", 1, 19, 3)
	sfInterleave  = hwcmd.Bit("InterleaveChroma", 1, 21)
	sfFormat      = hwcmd.Bits("SurfaceFormat", 1, 28, 24)
	sfTileMode    = hwcmd.Bits("TileMode", 1, 31, 30)
	sfYOffsetForU = hwcmd.Bits("YOffsetForUCb", 2, 14, 0)
	sfYOffsetForV = hwcmd.Bits("YOffsetForVCr", 3, 15, 0)
	surfaceFields = []hwcmd.Field{sfVDirection, sfSwizzle, sfColorSpace, sfWidth, sfHeight, sfPitch, sfInterleave, sfFormat, sfTileMode, sfYOffsetForU, sfYOffsetForV}
)

// Surface blocks start at DW2; the second down-scaled stage at DW6.
const (
	surfaceStartDW = 2
	dsStage2DW     = 6
)

// Address slots of VDENC_PIPE_BUF_ADDR_STATE. Each slot is three DWords:
// lower address, upper address and a control word.
type Slot int

const (
	SlotDsFwdRef0            Slot = 1
	SlotDsFwdRef1            Slot = 4
	SlotDsBwdRef0            Slot = 7
	SlotOriginalUncompressed Slot = 10
	SlotStreamInData         Slot = 13
	SlotRowStoreScratch      Slot = 16
	SlotColocatedMv          Slot = 19
	SlotFwdRef0              Slot = 22
	SlotFwdRef1              Slot = 25
	SlotFwdRef2              Slot = 28
	SlotBwdRef0              Slot = 31
	SlotStatisticsStreamout  Slot = 34
	SlotDsFwdRef04X          Slot = 37
	SlotDsFwdRef14X          Slot = 40
	SlotCuObjStreamout       Slot = 43
	SlotLcuPakObjCmd         Slot = 46
	SlotScaledStage1         Slot = 49
	SlotScaledStage2         Slot = 52
	SlotSegmentMapStreamIn   Slot = 55
	SlotSegmentMapStreamOut  Slot = 58
	SlotTileRowStore         Slot = 62
	SlotCumulativeCuCount    Slot = 65
	SlotPaletteStreamout     Slot = 68
	SlotIntraPredRowstore    Slot = 71
	SlotColocatedMvAvcWrite  Slot = 74
	SlotAdditional4xDsFwdRef Slot = 77
	SlotDsBwdRef04X          Slot = 80
)

// Control word fields of an address slot, relative to the slot.
var (
	slotMocs              = hwcmd.Bits("MemoryObjectControlState", 2, 6, 0)
	slotCompressionEnable = hwcmd.Bit("MemoryCompressionEnable", 2, 9)
	slotCompressionType   = hwcmd.Bit("CompressionType", 2, 10)
	slotCacheSelect       = hwcmd.Bit("CacheSelect", 2, 12)
	slotCompressionFormat = hwcmd.Bits("CompressionFormat", 2, 21, 17)
)

// Field returns control field f placed in slot s.
func (s Slot) Field(f hwcmd.Field) hwcmd.Field { return f.Offset(int(s)) }

// Location returns the DWord index of the slot's lower address word.
func (s Slot) Location() int { return int(s) }

var pbaWeightsHistogramOffset = hwcmd.Bits("WeightsHistogramStreamoutOffset", 61, 31, 0)

// VDENC_WEIGHTSOFFSETS_STATE: each DWord packs two (weight, offset) byte
// pairs.
var weightFields = buildWeightFields()

func buildWeightFields() [6][4]hwcmd.Field {
	var fields [6][4]hwcmd.Field
	names := [6][2]string{
		{"ForwardReference0", "ForwardReference1"},
		{"ForwardReference2", "BackwardReference0"},
		{"CbForwardReference0", "CbForwardReference1"},
		{"CbForwardReference2", "CbBackwardReference0"},
		{"CrForwardReference0", "CrForwardReference1"},
		{"CrForwardReference2", "CrBackwardReference0"},
	}
	for i, pair := range names {
		dw := i + 1
		fields[i] = [4]hwcmd.Field{
			hwcmd.Bits("Weights"+pair[0], dw, 7, 0),
			hwcmd.Bits("Offset"+pair[0], dw, 15, 8),
			hwcmd.Bits("Weights"+pair[1], dw, 23, 16),
			hwcmd.Bits("Offset"+pair[1], dw, 31, 24),
		}
	}
	return fields
}

// VDENC_HEVC_VP9_TILE_SLICE_STATE
var (
	tsLog2WeightDenomLuma    = hwcmd.Bits("Log2WeightDenomLuma", 3, 2, 0)
	tsHevcVp9Log2DenomLuma   = hwcmd.Bits("HevcVp9Log2WeightDenomLuma", 3, 6, 4)
	tsLog2WeightDenomChroma  = hwcmd.Bits("Log2WeightDenomChroma", 3, 10, 8)
	tsTileRowStoreSelect     = hwcmd.Bit("TileRowStoreSelect", 3, 16)
	tsNumParEngine           = hwcmd.Bits("NumParEngine", 3, 20, 19)
	tsTileNumber             = hwcmd.Bits("TileNumber", 3, 31, 24)
	tsTileStartCtbY          = hwcmd.Bits("TileStartCtbY", 4, 15, 0)
	tsTileStartCtbX          = hwcmd.Bits("TileStartCtbX", 4, 31, 16)
	tsTileWidth              = hwcmd.Bits("TileWidth", 5, 15, 0)
	tsTileHeight             = hwcmd.Bits("TileHeight", 5, 31, 16)
	tsStreaminOffsetEnable   = hwcmd.Bit("StreaminOffsetEnable", 6, 0)
	tsTileStreaminOffset     = hwcmd.Bits("TileStreaminOffset", 6, 31, 6)
	tsRowStoreOffsetEnable   = hwcmd.Bit("RowStoreOffsetEnable", 7, 0)
	tsTileRowstoreOffset     = hwcmd.Bits("TileRowstoreOffset", 7, 31, 6)
	tsStreamoutOffsetEnable  = hwcmd.Bit("TileStreamoutOffsetEnable", 8, 0)
	tsTileStreamoutOffset    = hwcmd.Bits("TileStreamoutOffset", 8, 31, 6)
	tsLcuStreamOutEnable     = hwcmd.Bit("LcuStreamOutOffsetEnable", 9, 0)
	tsTileLcuStreamOutOffset = hwcmd.Bits("TileLcuStreamOutOffset", 9, 31, 6)
	tsCumulativeCuEnable     = hwcmd.Bit("CumulativeCuTileOffsetEnable", 17, 0)
	tsCumulativeCuTileOffset = hwcmd.Bits("CumulativeCuTileOffset", 17, 31, 6)
)

// VDENC_WALKER_STATE
var (
	wkStartX          = hwcmd.Bits("MbLcuStartXPosition", 1, 8, 0)
	wkStartY          = hwcmd.Bits("MbLcuStartYPosition", 1, 24, 16)
	wkFirstSuperSlice = hwcmd.Bit("FirstSuperSlice", 1, 31)
	wkNextStartX      = hwcmd.Bits("NextsliceMbLcuStartXPosition", 2, 8, 0)
	wkNextStartY      = hwcmd.Bits("NextsliceMbStartYPosition", 2, 25, 16)
)

// VD_PIPELINE_FLUSH
var (
	flHevcDone         = hwcmd.Bit("HevcPipelineDone", 1, 0)
	flVdencDone        = hwcmd.Bit("VdencPipelineDone", 1, 1)
	flMflDone          = hwcmd.Bit("MflPipelineDone", 1, 2)
	flMfxDone          = hwcmd.Bit("MfxPipelineDone", 1, 3)
	flCmdMsgParserDone = hwcmd.Bit("VdCommandMessageParserDone", 1, 4)
	flHevcFlush        = hwcmd.Bit("HevcPipelineCommandFlush", 1, 16)
	flVdencFlush       = hwcmd.Bit("VdencPipelineCommandFlush", 1, 17)
	flMflFlush         = hwcmd.Bit("MflPipelineCommandFlush", 1, 18)
	flMfxFlush         = hwcmd.Bit("MfxPipelineCommandFlush", 1, 19)
)

// surfaceReset is the reset pattern of one VDENC_Surface_State_Fields
// block: chroma is interleaved by default.
var surfaceReset = []uint32{0, 1 << 21, 0, 0}

func words(n int, dw0 uint32, at map[int]uint32) []uint32 {
	w := make([]uint32, n)
	w[0] = dw0
	for i, v := range at {
		w[i] = v
	}
	return w
}

func withSurfaces(n int, dw0 uint32, starts ...int) []uint32 {
	w := words(n, dw0, nil)
	for _, s := range starts {
		copy(w[s:], surfaceReset)
	}
	return w
}

// Xe_LPM+ layouts.
var xeLpmPlusLayouts = Layouts{
	ControlState:        hwcmd.NewLayout("VDENC_CONTROL_STATE", 0x708b0000, 0),
	PipeModeSelect:      hwcmd.NewLayout("VDENC_PIPE_MODE_SELECT", words(6, 0x70800004, nil)...),
	SrcSurfaceState:     hwcmd.NewLayout("VDENC_SRC_SURFACE_STATE", withSurfaces(6, 0x70850004, surfaceStartDW)...),
	RefSurfaceState:     hwcmd.NewLayout("VDENC_REF_SURFACE_STATE", withSurfaces(6, 0x70860004, surfaceStartDW)...),
	DsRefSurfaceState:   hwcmd.NewLayout("VDENC_DS_REF_SURFACE_STATE", withSurfaces(10, 0x70870008, surfaceStartDW, dsStage2DW)...),
	PipeBufAddrState:    hwcmd.NewLayout("VDENC_PIPE_BUF_ADDR_STATE", words(83, 0x70840051, nil)...),
	WeightsOffsetsState: hwcmd.NewLayout("VDENC_WEIGHTSOFFSETS_STATE", words(7, 0x70880005, map[int]uint32{1: 0x00010001, 2: 0x00010001, 3: 0x00010001, 4: 0x00010001, 5: 0x00010001, 6: 0x00010001})...),
	TileSliceState:      hwcmd.NewLayout("VDENC_HEVC_VP9_TILE_SLICE_STATE", words(19, 0x70980011, nil)...),
	WalkerState:         hwcmd.NewLayout("VDENC_WALKER_STATE", words(5, 0x70890003, nil)...),
	PipelineFlush:       hwcmd.NewLayout("VD_PIPELINE_FLUSH", 0x77800000, 0),
}

func init() {
	l := xeLpmPlusLayouts
	l.ControlState.Check(ctlVdencInitialization)
	l.PipeModeSelect.Check(pmsStandardSelect, pmsScalabilityMode, pmsFrameStatsStreamOut, pmsPakObjCmdStreamOut,
		pmsTlbPrefetch, pmsPakThresholdCheck, pmsStreamIn, pmsBitDepth, pmsChromaSubSampling, pmsOutputRangeCsc,
		pmsTileReplay, pmsRandomAccess, pmsRgbEncoding, pmsStreamingBufferConfig, pmsHmeRegionPrefetch,
		pmsTopPrefetchMode, pmsLeftPrefetchWrapAround, pmsVerticalShift, pmsHzShift, pmsNumVerticalReq,
		pmsNumHzReq, pmsPrefetchOffset, pmsCaptureMode, pmsSessionID, pmsTailPointerReadFreq,
		pmsQuantPrecision, pmsLatencyTolerate)
	for _, f := range surfaceFields {
		l.SrcSurfaceState.Check(f.Offset(surfaceStartDW))
		l.RefSurfaceState.Check(f.Offset(surfaceStartDW))
		l.DsRefSurfaceState.Check(f.Offset(surfaceStartDW), f.Offset(dsStage2DW))
	}
	l.PipeBufAddrState.Check(pbaWeightsHistogramOffset, SlotDsBwdRef04X.Field(slotCompressionFormat))
	for _, dw := range weightFields {
		l.WeightsOffsetsState.Check(dw[:]...)
	}
	l.TileSliceState.Check(tsLog2WeightDenomLuma, tsHevcVp9Log2DenomLuma, tsLog2WeightDenomChroma,
		tsTileRowStoreSelect, tsNumParEngine, tsTileNumber, tsTileStartCtbY, tsTileStartCtbX, tsTileWidth,
		tsTileHeight, tsStreaminOffsetEnable, tsTileStreaminOffset, tsRowStoreOffsetEnable, tsTileRowstoreOffset,
		tsStreamoutOffsetEnable, tsTileStreamoutOffset, tsLcuStreamOutEnable, tsTileLcuStreamOutOffset,
		tsCumulativeCuEnable, tsCumulativeCuTileOffset)
	l.WalkerState.Check(wkStartX, wkStartY, wkFirstSuperSlice, wkNextStartX, wkNextStartY)
	l.PipelineFlush.Check(flHevcDone, flVdencDone, flMflDone, flMfxDone, flCmdMsgParserDone,
		flHevcFlush, flVdencFlush, flMflFlush, flMfxFlush)
}
