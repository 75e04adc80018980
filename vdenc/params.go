package vdenc

import "github.com/gogpu/mhw"

// MaxRefs is the size of the reference picture arrays.
const MaxRefs = 16

// ControlStatePar is the parameter record of VDENC_CONTROL_STATE.
type ControlStatePar struct {
	VdencInitialization bool
}

// PipeModeSelectPar is the parameter record of VDENC_PIPE_MODE_SELECT.
type PipeModeSelectPar struct {
	StandardSelect           uint8
	ScalabilityMode          bool
	FrameStatisticsStreamOut bool
	PakObjCmdStreamOut       bool
	TlbPrefetch              bool
	DynamicSlice             bool
	StreamIn                 bool
	BitDepthMinus8           uint8
	ChromaType               uint8
	OutputRangeControlCsc    bool
	TileBasedReplayMode      bool
	RandomAccess             bool
	RgbEncodingMode          bool
	StreamingBufferConfig    uint8

	HmeRegionPrefetch        bool
	TopPrefetchEnableMode    uint8
	LeftPrefetchAtWrapAround bool
	VerticalShift32Minus1    uint8
	HzShift32Minus1          uint8
	NumVerticalReqMinus1     uint8
	NumHzReqMinus1           uint8
	PrefetchOffset           uint8

	CaptureMode              uint8
	WirelessSessionID        uint8
	TailPointerReadFrequency uint8
	QuantizationPrecision    uint8
	LatencyTolerate          bool

	// Used by generations with a fast-pass encode mode.
	FastPassEnable bool
	FastPassScale  uint8
}

// SurfacePar is the parameter record of VDENC_SRC_SURFACE_STATE and
// VDENC_REF_SURFACE_STATE. Width, Height and Pitch are stored minus one.
type SurfacePar struct {
	Width                uint32
	Height               uint32
	Pitch                uint32
	ColorSpaceSelection  bool
	VDirection           uint8
	DisplayFormatSwizzle bool
	TileType             mhw.TileType
	TileModeGmm          uint32
	GmmTileEnabled       bool
	Format               mhw.Format
	UOffset              uint32
	VOffset              uint32
}

// SetFromResource copies the geometry of r.
func (p *SurfacePar) SetFromResource(r *mhw.Resource) {
	p.Width, p.Height, p.Pitch = r.Width, r.Height, r.Pitch
	p.TileType, p.TileModeGmm, p.GmmTileEnabled = r.Tile, r.GmmTileMode, r.GmmTileEnabled
	p.Format = r.Format
}

// DsSurface describes one down-scaled reference stage.
type DsSurface struct {
	Width          uint32
	Height         uint32
	Pitch          uint32
	VDirection     uint8
	TileType       mhw.TileType
	TileModeGmm    uint32
	GmmTileEnabled bool
	UOffset        uint32
	VOffset        uint32
}

// Valid reports whether every dimension of the stage is set.
func (s DsSurface) Valid() bool { return s.Width != 0 && s.Height != 0 && s.Pitch != 0 }

// DsRefSurfacePar is the parameter record of VDENC_DS_REF_SURFACE_STATE.
// Stage2 is written only when all its dimensions are non-zero.
type DsRefSurfacePar struct {
	Stage1 DsSurface
	Stage2 DsSurface
}

// PipeBufAddrPar is the parameter record of VDENC_PIPE_BUF_ADDR_STATE.
// Nil or unallocated resources are not patched.
type PipeBufAddrPar struct {
	SurfaceRaw           *mhw.Resource
	SurfaceRawOffset     uint64
	MmcStateRaw          mhw.CompressionMode
	CompressionFormatRaw uint32

	MmcStatePreDeblock     mhw.CompressionMode
	MmcStatePostDeblock    mhw.CompressionMode
	CompressionFormatRecon uint32
	MmcStateDsStage1       mhw.CompressionMode
	MmcStateDsStage2       mhw.CompressionMode

	IntraRowStoreScratchBuffer *mhw.Resource
	StreamOutBuffer            *mhw.Resource
	StreamOutOffset            uint64
	StreamInBuffer             *mhw.Resource

	NumActiveRefL0 uint8
	NumActiveRefL1 uint8
	LowDelayB      bool
	Refs           [MaxRefs]*mhw.Resource
	RefsDsStage1   [MaxRefs]*mhw.Resource
	RefsDsStage2   [MaxRefs]*mhw.Resource

	ColocatedMvReadBuffer *mhw.Resource
	ColMvTempBuffer       *mhw.Resource

	SurfaceDsStage1       *mhw.Resource
	SurfaceDsStage1Offset uint64
	SurfaceDsStage2       *mhw.Resource
	SurfaceDsStage2Offset uint64

	PakObjCmdStreamOutBuffer         *mhw.Resource
	SegmentMapStreamInBuffer         *mhw.Resource
	SegmentMapStreamOutBuffer        *mhw.Resource
	TileRowStoreBuffer               *mhw.Resource
	MfdIntraRowStoreScratchBuffer    *mhw.Resource
	CumulativeCuCountStreamOutBuffer *mhw.Resource
	ColocatedMvWriteBuffer           *mhw.Resource
}

// WeightsOffsetsPar is the parameter record of VDENC_WEIGHTSOFFSETS_STATE.
// Index [list][ref] for luma and [list][ref][cb/cr] for chroma; list 0 is
// forward, list 1 backward.
type WeightsOffsetsPar struct {
	WeightsLuma   [2][3]int16
	OffsetsLuma   [2][3]int16
	WeightsChroma [2][3][2]int16
	OffsetsChroma [2][3][2]int16
	DenomLuma     int16
	DenomChroma   int16
}

// TileSlicePar is the parameter record of VDENC_HEVC_VP9_TILE_SLICE_STATE.
type TileSlicePar struct {
	NumPipe                    uint8
	TileID                     uint32
	TileRowStoreSelect         bool
	Log2WeightDenomLuma        uint8
	HevcVp9Log2WeightDenomLuma uint8
	Log2WeightDenomChroma      uint8

	TileStartLCUX uint32
	TileStartLCUY uint32
	CtbSize       uint32
	TileWidth     uint32
	TileHeight    uint32

	TileEnable             bool
	TileStreamInOffset     uint32
	TileLCUStreamOutOffset uint32
	CumulativeCUTileOffset uint32
}

// WalkerPar is the parameter record of VDENC_WALKER_STATE.
type WalkerPar struct {
	FirstSuperSlice          bool
	TileSliceStartLcuMbX     uint32
	TileSliceStartLcuMbY     uint32
	NextTileSliceStartLcuMbX uint32
	NextTileSliceStartLcuMbY uint32
}

// PipelineFlushPar is the parameter record of VD_PIPELINE_FLUSH.
type PipelineFlushPar struct {
	WaitDoneHEVC           bool
	WaitDoneVDENC          bool
	WaitDoneMFL            bool
	WaitDoneMFX            bool
	WaitDoneVDCmdMsgParser bool
	FlushHEVC              bool
	FlushVDENC             bool
	FlushMFL               bool
	FlushMFX               bool
}
