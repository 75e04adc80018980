package vdenc

import "github.com/gogpu/mhw/hwcmd"

// Extension hook names, one at the end of each extensible generic list.
const (
	HookPipeModeSelect = "VDENC_PIPE_MODE_SELECT"
	HookPipeBufAddr    = "VDENC_PIPE_BUF_ADDR_STATE"
	HookTileSlice      = "VDENC_HEVC_VP9_TILE_SLICE_STATE"
	HookPipelineFlush  = "VD_PIPELINE_FLUSH"
)

type tmpl = hwcmd.Template

func b(v bool) uint32 { return hwcmd.Bool(v) }

func controlStateFields() hwcmd.FieldList[ControlStatePar] {
	return hwcmd.FieldList[ControlStatePar]{
		hwcmd.Map(ctlVdencInitialization, func(p *ControlStatePar, _ *tmpl) uint32 { return b(p.VdencInitialization) }),
	}
}

func pipeModeSelectFields() hwcmd.FieldList[PipeModeSelectPar] {
	type P = PipeModeSelectPar
	return hwcmd.FieldList[P]{
		hwcmd.Map(pmsStandardSelect, func(p *P, _ *tmpl) uint32 { return uint32(p.StandardSelect) }),
		hwcmd.Map(pmsScalabilityMode, func(p *P, _ *tmpl) uint32 { return b(p.ScalabilityMode) }),
		hwcmd.Map(pmsFrameStatsStreamOut, func(p *P, _ *tmpl) uint32 { return b(p.FrameStatisticsStreamOut) }),
		hwcmd.Map(pmsPakObjCmdStreamOut, func(p *P, _ *tmpl) uint32 { return b(p.PakObjCmdStreamOut) }),
		hwcmd.Map(pmsTlbPrefetch, func(p *P, _ *tmpl) uint32 { return b(p.TlbPrefetch) }),
		hwcmd.Map(pmsPakThresholdCheck, func(p *P, _ *tmpl) uint32 { return b(p.DynamicSlice) }),
		hwcmd.Map(pmsStreamIn, func(p *P, _ *tmpl) uint32 { return b(p.StreamIn) }),
		hwcmd.Map(pmsBitDepth, func(p *P, _ *tmpl) uint32 { return uint32(p.BitDepthMinus8) }),
		hwcmd.Map(pmsChromaSubSampling, func(p *P, _ *tmpl) uint32 { return uint32(p.ChromaType) }),
		hwcmd.Map(pmsOutputRangeCsc, func(p *P, _ *tmpl) uint32 { return b(p.OutputRangeControlCsc) }),
		hwcmd.Map(pmsTileReplay, func(p *P, _ *tmpl) uint32 { return b(p.TileBasedReplayMode) }),
		hwcmd.Map(pmsRandomAccess, func(p *P, _ *tmpl) uint32 { return b(p.RandomAccess) }),
		hwcmd.Map(pmsRgbEncoding, func(p *P, _ *tmpl) uint32 { return b(p.RgbEncodingMode) }),
		hwcmd.Map(pmsStreamingBufferConfig, func(p *P, _ *tmpl) uint32 { return uint32(p.StreamingBufferConfig) }),

		hwcmd.Map(pmsHmeRegionPrefetch, func(p *P, _ *tmpl) uint32 { return b(p.HmeRegionPrefetch) }),
		hwcmd.Map(pmsTopPrefetchMode, func(p *P, _ *tmpl) uint32 { return uint32(p.TopPrefetchEnableMode) }),
		hwcmd.Map(pmsLeftPrefetchWrapAround, func(p *P, _ *tmpl) uint32 { return b(p.LeftPrefetchAtWrapAround) }),
		hwcmd.Map(pmsVerticalShift, func(p *P, _ *tmpl) uint32 { return uint32(p.VerticalShift32Minus1) }),
		hwcmd.Map(pmsHzShift, func(p *P, _ *tmpl) uint32 { return uint32(p.HzShift32Minus1) }),
		hwcmd.Map(pmsNumVerticalReq, func(p *P, _ *tmpl) uint32 { return uint32(p.NumVerticalReqMinus1) }),
		hwcmd.Map(pmsNumHzReq, func(p *P, _ *tmpl) uint32 { return uint32(p.NumHzReqMinus1) }),
		hwcmd.Map(pmsPrefetchOffset, func(p *P, _ *tmpl) uint32 { return uint32(p.PrefetchOffset) }),

		hwcmd.Map(pmsCaptureMode, func(p *P, _ *tmpl) uint32 { return uint32(p.CaptureMode) }),
		hwcmd.Map(pmsSessionID, func(p *P, _ *tmpl) uint32 { return uint32(p.WirelessSessionID) }),
		hwcmd.Map(pmsTailPointerReadFreq, func(p *P, _ *tmpl) uint32 { return uint32(p.TailPointerReadFrequency) }),
		hwcmd.Map(pmsQuantPrecision, func(p *P, _ *tmpl) uint32 { return uint32(p.QuantizationPrecision) }),
		hwcmd.Map(pmsLatencyTolerate, func(p *P, _ *tmpl) uint32 { return b(p.LatencyTolerate) }),
		hwcmd.Hook[P](HookPipeModeSelect),
	}
}

// surfaceList maps a SurfacePar onto the surface block at DWord at.
// format picks the raw or recon format table.
func surfaceList(at int, format func(p *SurfacePar) SurfaceFormat, colorSpace bool) hwcmd.FieldList[SurfacePar] {
	type P = SurfacePar
	l := hwcmd.FieldList[P]{
		hwcmd.Map(sfWidth.Offset(at), func(p *P, _ *tmpl) uint32 { return p.Width - 1 }),
		hwcmd.Map(sfHeight.Offset(at), func(p *P, _ *tmpl) uint32 { return p.Height - 1 }),
	}
	if colorSpace {
		l = append(l,
			hwcmd.Map(sfColorSpace.Offset(at), func(p *P, _ *tmpl) uint32 { return b(p.ColorSpaceSelection) }))
	}
	l = append(l, hwcmd.Map(sfVDirection.Offset(at), func(p *P, _ *tmpl) uint32 { return uint32(p.VDirection) }))
	if colorSpace {
		l = append(l,
			hwcmd.Map(sfSwizzle.Offset(at), func(p *P, _ *tmpl) uint32 { return b(p.DisplayFormatSwizzle) }))
	}
	return append(l,
		hwcmd.Map(sfTileMode.Offset(at), func(p *P, _ *tmpl) uint32 {
			return HwTileType(p.TileType, p.TileModeGmm, p.GmmTileEnabled)
		}),
		hwcmd.Map(sfFormat.Offset(at), func(p *P, _ *tmpl) uint32 { return uint32(format(p)) }),
		hwcmd.Map(sfPitch.Offset(at), func(p *P, _ *tmpl) uint32 { return p.Pitch - 1 }),
		hwcmd.Map(sfYOffsetForU.Offset(at), func(p *P, _ *tmpl) uint32 { return p.UOffset }),
		hwcmd.Map(sfYOffsetForV.Offset(at), func(p *P, _ *tmpl) uint32 { return p.VOffset }),
	)
}

func srcSurfaceFields() hwcmd.FieldList[SurfacePar] {
	return surfaceList(surfaceStartDW, func(p *SurfacePar) SurfaceFormat { return RawSurfaceFormat(p.Format) }, true)
}

func refSurfaceFields() hwcmd.FieldList[SurfacePar] {
	return surfaceList(surfaceStartDW, func(p *SurfacePar) SurfaceFormat { return ReconSurfaceFormat(p.Format) }, false)
}

// dsStage maps one down-scaled stage. Stage 2 is zeroed unless every
// dimension is set.
func dsStage(at int, get func(*DsRefSurfacePar) *DsSurface, gated bool) hwcmd.FieldList[DsRefSurfacePar] {
	type P = DsRefSurfacePar
	val := func(f func(s *DsSurface) uint32) hwcmd.Expr[P] {
		return func(p *P, _ *tmpl) uint32 {
			s := get(p)
			if gated && !s.Valid() {
				return 0
			}
			return f(s)
		}
	}
	return hwcmd.FieldList[P]{
		hwcmd.Map(sfWidth.Offset(at), val(func(s *DsSurface) uint32 { return s.Width - 1 })),
		hwcmd.Map(sfHeight.Offset(at), val(func(s *DsSurface) uint32 { return s.Height - 1 })),
		hwcmd.Map(sfVDirection.Offset(at), val(func(s *DsSurface) uint32 { return uint32(s.VDirection) })),
		hwcmd.Map(sfTileMode.Offset(at), val(func(s *DsSurface) uint32 {
			return HwTileType(s.TileType, s.TileModeGmm, s.GmmTileEnabled)
		})),
		hwcmd.Map(sfFormat.Offset(at), val(func(*DsSurface) uint32 { return uint32(SurfaceFormatPlanar4208) })),
		hwcmd.Map(sfPitch.Offset(at), val(func(s *DsSurface) uint32 { return s.Pitch - 1 })),
		hwcmd.Map(sfYOffsetForU.Offset(at), val(func(s *DsSurface) uint32 { return s.UOffset })),
		hwcmd.Map(sfYOffsetForV.Offset(at), val(func(s *DsSurface) uint32 { return s.VOffset })),
	}
}

func dsRefSurfaceFields() hwcmd.FieldList[DsRefSurfacePar] {
	l := dsStage(surfaceStartDW, func(p *DsRefSurfacePar) *DsSurface { return &p.Stage1 }, false)
	return append(l, dsStage(dsStage2DW, func(p *DsRefSurfacePar) *DsSurface { return &p.Stage2 }, true)...)
}

// cachelineSize is the size of one GPU cache line in bytes.
const cachelineSize = 64

// pipeBufAddrFields holds the fixed fields; address slots are written by
// the resource pass.
func pipeBufAddrFields() hwcmd.FieldList[PipeBufAddrPar] {
	return hwcmd.FieldList[PipeBufAddrPar]{
		hwcmd.Map(pbaWeightsHistogramOffset, func(*PipeBufAddrPar, *tmpl) uint32 { return 3 * cachelineSize }),
		hwcmd.Hook[PipeBufAddrPar](HookPipeBufAddr),
	}
}

// weight clamps a weighted-prediction coefficient to signed 8 bits.
// Offsets are not clamped; they are truncated by the field width.
func weight(w, denom int16) uint32 {
	return hwcmd.Signed(hwcmd.Clip3(-128, 127, int32(w)+int32(denom)))
}

func weightsOffsetsFields() hwcmd.FieldList[WeightsOffsetsPar] {
	type P = WeightsOffsetsPar
	luma := func(list, ref int) (hwcmd.Expr[P], hwcmd.Expr[P]) {
		return func(p *P, _ *tmpl) uint32 { return weight(p.WeightsLuma[list][ref], p.DenomLuma) },
			func(p *P, _ *tmpl) uint32 { return hwcmd.Signed(p.OffsetsLuma[list][ref]) }
	}
	chroma := func(list, ref, c int) (hwcmd.Expr[P], hwcmd.Expr[P]) {
		return func(p *P, _ *tmpl) uint32 { return weight(p.WeightsChroma[list][ref][c], p.DenomChroma) },
			func(p *P, _ *tmpl) uint32 { return hwcmd.Signed(p.OffsetsChroma[list][ref][c]) }
	}
	// Reference order within each plane: fwd0, fwd1, fwd2, bwd0.
	refs := [4][2]int{{0, 0}, {0, 1}, {0, 2}, {1, 0}}

	var l hwcmd.FieldList[P]
	for plane := 0; plane < 3; plane++ {
		for i, r := range refs {
			var w, o hwcmd.Expr[P]
			if plane == 0 {
				w, o = luma(r[0], r[1])
			} else {
				w, o = chroma(r[0], r[1], plane-1)
			}
			dw := weightFields[plane*2+i/2]
			l = append(l, hwcmd.Map(dw[(i%2)*2], w), hwcmd.Map(dw[(i%2)*2+1], o))
		}
	}
	return l
}

// TileWidthField returns the encoded tile width: widths of 256 and more are
// aligned up to 8 first.
func TileWidthField(w uint32) uint32 {
	if w >= 256 {
		w = hwcmd.AlignCeil(w, 8)
	}
	return w - 1
}

// TileHeightField returns the encoded tile height: heights of 128 and more
// are aligned up to 8 first.
func TileHeightField(h uint32) uint32 {
	if h >= 128 {
		h = hwcmd.AlignCeil(h, 8)
	}
	return h - 1
}

func tileSliceFields() hwcmd.FieldList[TileSlicePar] {
	type P = TileSlicePar
	return hwcmd.FieldList[P]{
		hwcmd.Map(tsNumParEngine, func(p *P, _ *tmpl) uint32 { return uint32(p.NumPipe) }),
		hwcmd.Map(tsTileNumber, func(p *P, _ *tmpl) uint32 { return p.TileID }),
		hwcmd.Map(tsTileRowStoreSelect, func(p *P, _ *tmpl) uint32 { return b(p.TileRowStoreSelect) }),
		hwcmd.Map(tsLog2WeightDenomLuma, func(p *P, _ *tmpl) uint32 { return uint32(p.Log2WeightDenomLuma) }),
		hwcmd.Map(tsHevcVp9Log2DenomLuma, func(p *P, _ *tmpl) uint32 { return uint32(p.HevcVp9Log2WeightDenomLuma) }),
		hwcmd.Map(tsLog2WeightDenomChroma, func(p *P, _ *tmpl) uint32 { return uint32(p.Log2WeightDenomChroma) }),

		hwcmd.Map(tsTileStartCtbX, func(p *P, _ *tmpl) uint32 { return p.TileStartLCUX * p.CtbSize }),
		hwcmd.Map(tsTileStartCtbY, func(p *P, _ *tmpl) uint32 { return p.TileStartLCUY * p.CtbSize }),

		hwcmd.Map(tsTileWidth, func(p *P, _ *tmpl) uint32 { return TileWidthField(p.TileWidth) }),
		hwcmd.Map(tsTileHeight, func(p *P, _ *tmpl) uint32 { return TileHeightField(p.TileHeight) }),

		hwcmd.Map(tsStreaminOffsetEnable, func(p *P, _ *tmpl) uint32 { return b(p.TileEnable) }),
		hwcmd.Map(tsTileStreaminOffset, func(p *P, _ *tmpl) uint32 { return p.TileStreamInOffset }),

		// Only tiles in the first row use a row-store offset, derived from
		// the start column already written to DW4.
		hwcmd.Map(tsRowStoreOffsetEnable, func(p *P, t *tmpl) uint32 {
			if t.Get(tsTileStartCtbY) != 0 {
				return 0
			}
			return b(p.TileEnable)
		}),
		hwcmd.Map(tsTileRowstoreOffset, func(_ *P, t *tmpl) uint32 {
			if t.Get(tsTileStartCtbY) != 0 {
				return 0
			}
			return t.Get(tsTileStartCtbX) / 32
		}),

		hwcmd.Map(tsStreamoutOffsetEnable, func(p *P, _ *tmpl) uint32 { return b(p.TileEnable) }),
		hwcmd.Map(tsTileStreamoutOffset, func(p *P, _ *tmpl) uint32 { return p.TileID * 19 }),

		hwcmd.Map(tsLcuStreamOutEnable, func(p *P, _ *tmpl) uint32 { return b(p.TileEnable) }),
		hwcmd.Map(tsTileLcuStreamOutOffset, func(p *P, _ *tmpl) uint32 { return p.TileLCUStreamOutOffset }),

		hwcmd.Map(tsCumulativeCuEnable, func(p *P, _ *tmpl) uint32 { return b(p.TileEnable) }),
		hwcmd.Map(tsCumulativeCuTileOffset, func(p *P, _ *tmpl) uint32 { return p.CumulativeCUTileOffset }),
		hwcmd.Hook[P](HookTileSlice),
	}
}

func walkerFields() hwcmd.FieldList[WalkerPar] {
	type P = WalkerPar
	return hwcmd.FieldList[P]{
		hwcmd.Map(wkFirstSuperSlice, func(p *P, _ *tmpl) uint32 { return b(p.FirstSuperSlice) }),
		hwcmd.Map(wkStartX, func(p *P, _ *tmpl) uint32 { return p.TileSliceStartLcuMbX }),
		hwcmd.Map(wkStartY, func(p *P, _ *tmpl) uint32 { return p.TileSliceStartLcuMbY }),
		hwcmd.Map(wkNextStartX, func(p *P, _ *tmpl) uint32 { return p.NextTileSliceStartLcuMbX }),
		hwcmd.Map(wkNextStartY, func(p *P, _ *tmpl) uint32 { return p.NextTileSliceStartLcuMbY }),
	}
}

func pipelineFlushFields() hwcmd.FieldList[PipelineFlushPar] {
	type P = PipelineFlushPar
	return hwcmd.FieldList[P]{
		hwcmd.Map(flHevcDone, func(p *P, _ *tmpl) uint32 { return b(p.WaitDoneHEVC) }),
		hwcmd.Map(flVdencDone, func(p *P, _ *tmpl) uint32 { return b(p.WaitDoneVDENC) }),
		hwcmd.Map(flMflDone, func(p *P, _ *tmpl) uint32 { return b(p.WaitDoneMFL) }),
		hwcmd.Map(flMfxDone, func(p *P, _ *tmpl) uint32 { return b(p.WaitDoneMFX) }),
		hwcmd.Map(flCmdMsgParserDone, func(p *P, _ *tmpl) uint32 { return b(p.WaitDoneVDCmdMsgParser) }),
		hwcmd.Map(flHevcFlush, func(p *P, _ *tmpl) uint32 { return b(p.FlushHEVC) }),
		hwcmd.Map(flVdencFlush, func(p *P, _ *tmpl) uint32 { return b(p.FlushVDENC) }),
		hwcmd.Map(flMflFlush, func(p *P, _ *tmpl) uint32 { return b(p.FlushMFL) }),
		hwcmd.Map(flMfxFlush, func(p *P, _ *tmpl) uint32 { return b(p.FlushMFX) }),
		hwcmd.Hook[P](HookPipelineFlush),
	}
}
