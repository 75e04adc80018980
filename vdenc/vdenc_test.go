package vdenc

import (
	"bytes"
	"errors"
	"slices"
	"testing"

	"github.com/gogpu/mhw"
	"github.com/gogpu/mhw/hwcmd"
)

var errInfo = errors.New("no such resource")

// fakeOS places resource n at 0x1_0000_0000 + n pages of 64 KiB. Every
// surface reports its luma plane at yOffset.
type fakeOS struct {
	gfx      bool
	sim      bool
	yOffset  uint32
	failInfo bool
	reg      []mhw.Handle
}

func (f *fakeOS) UsesGfxAddress() bool { return f.gfx }
func (f *fakeOS) SimIsActive() bool    { return f.sim }
func (f *fakeOS) ResourceGfxAddress(r *mhw.Resource) (uint64, error) {
	return 0x1_0000_0000 + uint64(r.Handle)<<16, nil
}
func (f *fakeOS) RegisterResource(r *mhw.Resource, _ bool) error {
	f.reg = append(f.reg, r.Handle)
	return nil
}
func (f *fakeOS) ResourceInfo(r *mhw.Resource) (mhw.SurfaceInfo, error) {
	if f.failInfo {
		return mhw.SurfaceInfo{}, errInfo
	}
	return mhw.SurfaceInfo{Format: r.Format, YPlaneOffset: f.yOffset}, nil
}

func res(name string, h mhw.Handle) *mhw.Resource {
	return &mhw.Resource{Name: name, Handle: h, Size: 1 << 16}
}

func newImpl(t *testing.T, name string, fos *fakeOS, opts ...mhw.Option) *Impl {
	t.Helper()
	opts = append([]mhw.Option{mhw.WithFeatures(mhw.MapFeatures{})}, opts...)
	impl, err := New(name, fos, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return impl
}

// cmdWords returns the DWords of the command at loc.
func cmdWords(cb *mhw.CommandBuffer, loc mhw.CmdLocation) []uint32 {
	return cb.Words()[loc.Offset/hwcmd.DWordSize : (loc.Offset+loc.Size)/hwcmd.DWordSize]
}

func TestResetValues(t *testing.T) {
	l := xeLpmPlusLayouts
	tests := []struct {
		layout *hwcmd.Layout
		words  int
		dw0    uint32
	}{
		{l.ControlState, 2, 0x708b0000},
		{l.PipeModeSelect, 6, 0x70800004},
		{l.SrcSurfaceState, 6, 0x70850004},
		{l.RefSurfaceState, 6, 0x70860004},
		{l.DsRefSurfaceState, 10, 0x70870008},
		{l.PipeBufAddrState, 83, 0x70840051},
		{l.WeightsOffsetsState, 7, 0x70880005},
		{l.TileSliceState, 19, 0x70980011},
		{l.WalkerState, 5, 0x70890003},
		{l.PipelineFlush, 2, 0x77800000},
	}
	for _, tt := range tests {
		t.Run(tt.layout.Name, func(t *testing.T) {
			w := tt.layout.New().Words()
			if len(w) != tt.words {
				t.Fatalf("words = %d, want %d", len(w), tt.words)
			}
			if w[0] != tt.dw0 {
				t.Errorf("DW0 = %#08x, want %#08x", w[0], tt.dw0)
			}
			if int(hwcmd.DWordLength(w)) != tt.words-2 {
				t.Errorf("length = %d, want %d", hwcmd.DWordLength(w), tt.words-2)
			}
		})
	}

	if got := l.SrcSurfaceState.New().Get(sfInterleave.Offset(surfaceStartDW)); got != 1 {
		t.Errorf("InterleaveChroma reset = %d, want 1", got)
	}
	ds := l.DsRefSurfaceState.New()
	if ds.Get(sfInterleave.Offset(dsStage2DW)) != 1 {
		t.Error("stage 2 InterleaveChroma reset = 0")
	}
	for dw := 1; dw <= 6; dw++ {
		if got := l.WeightsOffsetsState.New().DWord(dw); got != 0x00010001 {
			t.Errorf("weights DW%d = %#08x, want 0x00010001", dw, got)
		}
	}
}

func TestTileSliceGeometry(t *testing.T) {
	tests := []struct {
		name          string
		width, height uint32
		wantW, wantH  uint32
	}{
		{"aligned width", 300, 64, 303, 63},
		{"small width", 255, 64, 254, 63},
		{"threshold width", 256, 64, 255, 63},
		{"aligned height", 64, 130, 63, 135},
		{"threshold height", 64, 128, 63, 127},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			impl := newImpl(t, "xe_lpm_plus", &fakeOS{gfx: true})
			p := impl.TileSliceStateParams(true)
			p.TileWidth, p.TileHeight, p.CtbSize = tt.width, tt.height, 64

			cb := mhw.NewCommandBuffer(4096)
			if err := impl.AddTileSliceState(cb); err != nil {
				t.Fatal(err)
			}
			w := cb.Words()
			if got := tsTileWidth.Get(w); got != tt.wantW {
				t.Errorf("TileWidth = %d, want %d", got, tt.wantW)
			}
			if got := tsTileHeight.Get(w); got != tt.wantH {
				t.Errorf("TileHeight = %d, want %d", got, tt.wantH)
			}
		})
	}

	if got := TileWidthField(300); got != hwcmd.AlignCeil(uint32(300), 8)-1 {
		t.Errorf("TileWidthField(300) = %d", got)
	}
}

func TestTileSliceRowStoreReadsBackStart(t *testing.T) {
	tests := []struct {
		name       string
		lcuX, lcuY uint32
		wantEnable uint32
		wantOffset uint32
	}{
		{"first row", 4, 0, 1, 8},
		{"second row", 4, 1, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			impl := newImpl(t, "xe_lpm_plus", &fakeOS{gfx: true})
			p := impl.TileSliceStateParams(true)
			p.TileStartLCUX, p.TileStartLCUY, p.CtbSize = tt.lcuX, tt.lcuY, 64
			p.TileWidth, p.TileHeight = 64, 64
			p.TileEnable = true
			p.TileID = 2

			cb := mhw.NewCommandBuffer(4096)
			if err := impl.AddTileSliceState(cb); err != nil {
				t.Fatal(err)
			}
			w := cb.Words()
			if got := tsTileStartCtbX.Get(w); got != tt.lcuX*64 {
				t.Errorf("TileStartCtbX = %d", got)
			}
			if got := tsRowStoreOffsetEnable.Get(w); got != tt.wantEnable {
				t.Errorf("RowStoreOffsetEnable = %d, want %d", got, tt.wantEnable)
			}
			if got := tsTileRowstoreOffset.Get(w); got != tt.wantOffset {
				t.Errorf("TileRowstoreOffset = %d, want %d", got, tt.wantOffset)
			}
			if got := tsTileStreamoutOffset.Get(w); got != 38 {
				t.Errorf("TileStreamoutOffset = %d, want 38", got)
			}
		})
	}
}

func TestWeightsClampAndOffsetsTruncate(t *testing.T) {
	impl := newImpl(t, "xe_lpm_plus", &fakeOS{gfx: true})
	p := impl.WeightsOffsetsStateParams(true)
	p.DenomLuma = 64
	p.WeightsLuma[0] = [3]int16{100, -300, 0}
	p.OffsetsLuma[0][0] = 300
	p.OffsetsLuma[1][0] = -1
	p.WeightsChroma[1][0][1] = -5

	cb := mhw.NewCommandBuffer(4096)
	if err := impl.AddWeightsOffsetsState(cb); err != nil {
		t.Fatal(err)
	}
	w := cb.Words()
	checks := []struct {
		f    hwcmd.Field
		want uint32
	}{
		{weightFields[0][0], 127},  // 164 clamped
		{weightFields[0][1], 0x2c}, // 300 mod 256
		{weightFields[0][2], 0x80}, // -236 clamped to -128
		{weightFields[1][0], 64},
		{weightFields[1][3], 0xff},
		{weightFields[5][2], 0xfb}, // Cr backward weight -5
	}
	for _, c := range checks {
		if got := c.f.Get(w); got != c.want {
			t.Errorf("%s = %#x, want %#x", c.f, got, c.want)
		}
	}
}

func TestSurfaceStates(t *testing.T) {
	impl := newImpl(t, "xe_lpm_plus", &fakeOS{gfx: true})
	src := &mhw.Resource{Name: "raw", Handle: 1, Format: mhw.FormatP010, Tile: mhw.TileY,
		Width: 1920, Height: 1080, Pitch: 4096}
	impl.SrcSurfaceStateParams(true).SetFromResource(src)
	impl.RefSurfaceStateParams(true).SetFromResource(src)

	cb := mhw.NewCommandBuffer(4096)
	if err := impl.AddSrcSurfaceState(cb); err != nil {
		t.Fatal(err)
	}
	srcLoc := cb.Last()
	if err := impl.AddRefSurfaceState(cb); err != nil {
		t.Fatal(err)
	}
	refLoc := cb.Last()

	sw, rw := cmdWords(cb, srcLoc), cmdWords(cb, refLoc)
	at := func(f hwcmd.Field) hwcmd.Field { return f.Offset(surfaceStartDW) }
	if got := at(sfWidth).Get(sw); got != 1919 {
		t.Errorf("Width = %d", got)
	}
	if got := at(sfHeight).Get(sw); got != 1079 {
		t.Errorf("Height = %d", got)
	}
	if got := at(sfPitch).Get(sw); got != 4095 {
		t.Errorf("SurfacePitch = %d", got)
	}
	if got := at(sfTileMode).Get(sw); got != hwTileY {
		t.Errorf("TileMode = %d", got)
	}
	if got := at(sfFormat).Get(sw); got != uint32(SurfaceFormatP010) {
		t.Errorf("src SurfaceFormat = %d", got)
	}
	if got := at(sfFormat).Get(rw); got != uint32(SurfaceFormatP010Variant) {
		t.Errorf("ref SurfaceFormat = %d", got)
	}
	if at(sfInterleave).Get(sw) != 1 {
		t.Error("InterleaveChroma lost its reset value")
	}
}

func TestHwTileType(t *testing.T) {
	tests := []struct {
		tile  mhw.TileType
		gmm   uint32
		gmmEn bool
		want  uint32
	}{
		{mhw.TileLinear, 0, false, hwTileLinear},
		{mhw.TileX, 0, false, hwTileX},
		{mhw.TileYs, 0, false, hwTileYs},
		{mhw.TileY, 0, false, hwTileY},
		{mhw.Tile4, 0, false, hwTileY},
		{mhw.TileLinear, 2, true, 2},
	}
	for _, tt := range tests {
		if got := HwTileType(tt.tile, tt.gmm, tt.gmmEn); got != tt.want {
			t.Errorf("HwTileType(%s, %d, %v) = %d, want %d", tt.tile, tt.gmm, tt.gmmEn, got, tt.want)
		}
	}
}

func TestDsRefSurfaceStage2OnlyWhenComplete(t *testing.T) {
	impl := newImpl(t, "xe_lpm_plus", &fakeOS{gfx: true})
	p := impl.DsRefSurfaceStateParams(true)
	p.Stage1 = DsSurface{Width: 480, Height: 272, Pitch: 512}
	p.Stage2 = DsSurface{Width: 120, Height: 68}

	cb := mhw.NewCommandBuffer(4096)
	if err := impl.AddDsRefSurfaceState(cb); err != nil {
		t.Fatal(err)
	}
	w := cb.Words()
	if got := sfWidth.Offset(surfaceStartDW).Get(w); got != 479 {
		t.Errorf("stage 1 Width = %d", got)
	}
	if got := sfFormat.Offset(surfaceStartDW).Get(w); got != uint32(SurfaceFormatPlanar4208) {
		t.Errorf("stage 1 SurfaceFormat = %d", got)
	}
	if w[dsStage2DW] != 0 || w[dsStage2DW+1] != 1<<21 {
		t.Errorf("incomplete stage 2 written: %#08x %#08x", w[dsStage2DW], w[dsStage2DW+1])
	}

	p.Stage2.Pitch = 128
	cb = mhw.NewCommandBuffer(4096)
	if err := impl.AddDsRefSurfaceState(cb); err != nil {
		t.Fatal(err)
	}
	if got := sfWidth.Offset(dsStage2DW).Get(cb.Words()); got != 119 {
		t.Errorf("stage 2 Width = %d", got)
	}
}

func TestPipeBufAddrNullResourcesSkipped(t *testing.T) {
	for _, gfx := range []bool{true, false} {
		fos := &fakeOS{gfx: gfx}
		impl := newImpl(t, "xe_lpm_plus", fos)
		p := impl.PipeBufAddrStateParams(true)
		p.StreamOutBuffer = &mhw.Resource{Name: "unallocated"}
		p.NumActiveRefL0 = 3

		cb := mhw.NewCommandBuffer(4096)
		if err := impl.AddPipeBufAddrState(cb); err != nil {
			t.Fatal(err)
		}
		want := xeLpmPlusLayouts.PipeBufAddrState.New()
		want.Set(pbaWeightsHistogramOffset, 192)
		if !bytes.Equal(cb.Bytes(), want.Bytes()) {
			t.Errorf("gfx=%v: command differs from reset pattern", gfx)
		}
		if len(fos.reg) != 0 || len(cb.Patches()) != 0 {
			t.Errorf("gfx=%v: registered %v, patches %d", gfx, fos.reg, len(cb.Patches()))
		}
	}
}

func fillBufAddr(p *PipeBufAddrPar) {
	p.SurfaceRaw = res("raw", 1)
	p.SurfaceRawOffset = 0x40
	p.MmcStateRaw = mhw.CompressionRender
	p.CompressionFormatRaw = 3
	p.NumActiveRefL0, p.NumActiveRefL1 = 2, 1
	p.Refs[0], p.Refs[1], p.Refs[2] = res("ref0", 10), res("ref1", 11), res("bwd", 12)
	p.RefsDsStage2[1] = res("ref1_4x", 13)
	p.MmcStatePreDeblock = mhw.CompressionHorizontal
}

func TestPipeBufAddrDirect(t *testing.T) {
	fos := &fakeOS{gfx: true, yOffset: 0x1000}
	var cache mhw.CacheSettings
	cache[mhw.UsageOriginalUncompressedPictureEncode].Value = 0x42
	cache[mhw.UsageReferencePictureCodec].Value = 0x0a
	impl := newImpl(t, "xe_lpm_plus", fos, mhw.WithCacheSettings(cache))
	fillBufAddr(impl.PipeBufAddrStateParams(true))

	cb := mhw.NewCommandBuffer(4096)
	if err := impl.AddPipeBufAddrState(cb); err != nil {
		t.Fatal(err)
	}
	w := cb.Words()

	raw := SlotOriginalUncompressed
	if w[raw] != 0x00010040 || w[raw+1] != 1 {
		t.Errorf("raw address = %#08x %#08x", w[raw], w[raw+1])
	}
	if want := uint32(0x42 | 1<<9 | 1<<10 | 3<<17); w[raw+2] != want {
		t.Errorf("raw control = %#08x, want %#08x", w[raw+2], want)
	}
	if w[SlotFwdRef0] != 0x000a1000 || w[SlotFwdRef1] != 0x000b1000 {
		t.Errorf("forward refs = %#08x %#08x", w[SlotFwdRef0], w[SlotFwdRef1])
	}
	if got := SlotFwdRef0.Field(slotCompressionType).Get(w); got != 0 {
		t.Errorf("media-compressed ref CompressionType = %d", got)
	}
	if got := SlotFwdRef0.Field(slotMocs).Get(w); got != 0x0a {
		t.Errorf("ref MOCS = %#x", got)
	}
	if w[SlotBwdRef0] != 0x000c1000 {
		t.Errorf("backward ref = %#08x", w[SlotBwdRef0])
	}
	if w[SlotDsFwdRef14X] != 0x000d1000 || w[SlotAdditional4xDsFwdRef] != w[SlotDsFwdRef14X] {
		t.Errorf("4x refs = %#08x %#08x", w[SlotDsFwdRef14X], w[SlotAdditional4xDsFwdRef])
	}
	if got := pbaWeightsHistogramOffset.Get(w); got != 192 {
		t.Errorf("WeightsHistogramStreamoutOffset = %d", got)
	}
	wantReg := []mhw.Handle{1, 10, 11, 13, 13, 12}
	if !slices.Equal(fos.reg, wantReg) {
		t.Errorf("registered %v, want %v", fos.reg, wantReg)
	}
}

func TestPipeBufAddrLowDelaySkipsBackward(t *testing.T) {
	fos := &fakeOS{gfx: true}
	impl := newImpl(t, "xe_lpm_plus", fos)
	p := impl.PipeBufAddrStateParams(true)
	fillBufAddr(p)
	p.LowDelayB = true

	cb := mhw.NewCommandBuffer(4096)
	if err := impl.AddPipeBufAddrState(cb); err != nil {
		t.Fatal(err)
	}
	if w := cb.Words(); w[SlotBwdRef0] != 0 {
		t.Errorf("backward ref patched for low-delay B: %#08x", w[SlotBwdRef0])
	}
}

func TestPipeBufAddrPatchList(t *testing.T) {
	fos := &fakeOS{yOffset: 0x1000}
	impl := newImpl(t, "xe_lpm_plus", fos)
	fillBufAddr(impl.PipeBufAddrStateParams(true))

	cb := mhw.NewCommandBuffer(4096)
	if err := impl.AddControlState(cb); err != nil {
		t.Fatal(err)
	}
	base := cb.Len()
	if err := impl.AddPipeBufAddrState(cb); err != nil {
		t.Fatal(err)
	}
	patches := cb.Patches()
	if len(patches) != 6 {
		t.Fatalf("patches = %d, want 6", len(patches))
	}
	first := patches[0]
	if first.CmdOffset != base+int(SlotOriginalUncompressed)*4 || first.ResourceOffset != 0x40 || first.Writable {
		t.Errorf("raw patch = %+v", first)
	}
	if patches[1].ResourceOffset != 0x1000 || patches[1].CommandType != mhw.CmdTypeVdencPipeBufAddr {
		t.Errorf("ref patch = %+v", patches[1])
	}
	if w := cb.Words(); w[base/4+int(SlotFwdRef0)] != 0 {
		t.Error("patch-list mode wrote an address")
	}
}

func TestPipeBufAddrErrors(t *testing.T) {
	t.Run("too many refs", func(t *testing.T) {
		impl := newImpl(t, "xe_lpm_plus", &fakeOS{gfx: true})
		p := impl.PipeBufAddrStateParams(true)
		p.NumActiveRefL0, p.NumActiveRefL1 = MaxRefs, 1
		if err := impl.AddPipeBufAddrState(mhw.NewCommandBuffer(4096)); !errors.Is(err, mhw.ErrInvalidParameter) {
			t.Errorf("err = %v", err)
		}
	})
	t.Run("resource info", func(t *testing.T) {
		impl := newImpl(t, "xe_lpm_plus", &fakeOS{gfx: true, failInfo: true})
		fillBufAddr(impl.PipeBufAddrStateParams(true))
		cb := mhw.NewCommandBuffer(4096)
		if err := impl.AddPipeBufAddrState(cb); !errors.Is(err, errInfo) {
			t.Errorf("err = %v", err)
		}
		if cb.Len() != 0 {
			t.Errorf("partial command written: %d bytes", cb.Len())
		}
	})
	t.Run("staged patches dropped", func(t *testing.T) {
		impl := newImpl(t, "xe_lpm_plus", &fakeOS{failInfo: true})
		fillBufAddr(impl.PipeBufAddrStateParams(true))
		cb := mhw.NewCommandBuffer(4096)
		if err := impl.AddPipeBufAddrState(cb); err == nil {
			t.Fatal("expected error")
		}
		if err := impl.AddPipelineFlush(cb); err != nil {
			t.Fatal(err)
		}
		if n := len(cb.Patches()); n != 0 {
			t.Errorf("patches of the failed command committed: %d", n)
		}
	})
}

func TestAmendSlotCompression(t *testing.T) {
	impl := newImpl(t, "xe_lpm_plus", &fakeOS{gfx: true, yOffset: 0})
	fillBufAddr(impl.PipeBufAddrStateParams(true))
	cb := mhw.NewCommandBuffer(4096)
	if err := impl.AddPipelineFlush(cb); err != nil {
		t.Fatal(err)
	}
	loc, err := impl.AddPipeBufAddrStateAt(cb)
	if err != nil {
		t.Fatal(err)
	}
	if err := impl.AmendSlotCompression(cb, loc, SlotFwdRef0, mhw.CompressionRender); err != nil {
		t.Fatal(err)
	}
	w := cmdWords(cb, loc)
	if SlotFwdRef0.Field(slotCompressionEnable).Get(w) != 1 || SlotFwdRef0.Field(slotCompressionType).Get(w) != 1 {
		t.Errorf("control = %#08x", w[SlotFwdRef0+2])
	}

	if err := impl.AmendSlotCompression(cb, cb.Last(), SlotFwdRef0, mhw.CompressionNone); err != nil {
		t.Fatal(err)
	}
	if err := impl.AmendSlotCompression(cb, mhw.CmdLocation{Offset: 0, Size: 8}, SlotFwdRef0, mhw.CompressionNone); !errors.Is(err, mhw.ErrInvalidLocation) {
		t.Errorf("wrong command: err = %v", err)
	}
}

func TestRowstoreCache(t *testing.T) {
	tests := []struct {
		name         string
		sim          bool
		features     mhw.MapFeatures
		wantRowStore bool
		wantIpdl     bool
	}{
		{"default", false, mhw.MapFeatures{}, true, true},
		{"simulator", true, mhw.MapFeatures{}, false, false},
		{"simulator override", true, mhw.MapFeatures{mhw.FeatureRowstoreCacheDisable: false}, true, true},
		{"all disabled", false, mhw.MapFeatures{mhw.FeatureRowstoreCacheDisable: true}, false, false},
		{"vdenc disabled", false, mhw.MapFeatures{mhw.FeatureVdencRowstoreCacheDisable: true}, false, true},
		{"intra disabled", false, mhw.MapFeatures{mhw.FeatureIntraRowstoreCacheDisable: true}, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			impl := newImpl(t, "xe_lpm_plus", &fakeOS{gfx: true, sim: tt.sim}, mhw.WithFeatures(tt.features))
			if got := impl.EnableRowstoreCacheIfSupported(0x100); got != tt.wantRowStore {
				t.Errorf("row store enabled = %v, want %v", got, tt.wantRowStore)
			}
			if got := impl.EnableIpdlRowstoreCacheIfSupported(0x200); got != tt.wantIpdl {
				t.Errorf("ipdl row store enabled = %v, want %v", got, tt.wantIpdl)
			}
			if c := impl.RowstoreCache(); c.Enabled && !c.Supported {
				t.Error("enabled without support")
			}
		})
	}
}

func TestPipeBufAddrUsesRowstoreCache(t *testing.T) {
	fos := &fakeOS{gfx: true}
	impl := newImpl(t, "xe_lpm_plus", fos)
	impl.EnableRowstoreCacheIfSupported(0x100)
	p := impl.PipeBufAddrStateParams(true)
	p.IntraRowStoreScratchBuffer = res("scratch", 5)
	p.MfdIntraRowStoreScratchBuffer = res("ipdl", 6)

	cb := mhw.NewCommandBuffer(4096)
	if err := impl.AddPipeBufAddrState(cb); err != nil {
		t.Fatal(err)
	}
	w := cb.Words()
	if w[SlotRowStoreScratch] != 0x100<<6 || SlotRowStoreScratch.Field(slotCacheSelect).Get(w) != 1 {
		t.Errorf("row store slot = %#08x %#08x", w[SlotRowStoreScratch], w[SlotRowStoreScratch+2])
	}
	// The intra-prediction cache is still off, so its buffer is patched.
	if w[SlotIntraPredRowstore] != 0x00060000 {
		t.Errorf("ipdl slot = %#08x", w[SlotIntraPredRowstore])
	}
	if !slices.Equal(fos.reg, []mhw.Handle{6}) {
		t.Errorf("registered %v", fos.reg)
	}
}

// emitAll emits every command kind with fixed parameters.
func emitAll(t *testing.T, impl *Impl) []byte {
	t.Helper()
	impl.ControlStateParams(true).VdencInitialization = true
	pms := impl.PipeModeSelectParams(true)
	pms.StandardSelect, pms.BitDepthMinus8, pms.FastPassEnable = 1, 2, true
	impl.SrcSurfaceStateParams(true).SetFromResource(&mhw.Resource{Width: 64, Height: 64, Pitch: 64, Format: mhw.FormatNV12})
	impl.RefSurfaceStateParams(true).SetFromResource(&mhw.Resource{Width: 64, Height: 64, Pitch: 64, Format: mhw.FormatNV12})
	impl.DsRefSurfaceStateParams(true).Stage1 = DsSurface{Width: 16, Height: 16, Pitch: 64}
	fillBufAddr(impl.PipeBufAddrStateParams(true))
	impl.WeightsOffsetsStateParams(true).WeightsLuma[0][0] = 200
	ts := impl.TileSliceStateParams(true)
	ts.TileWidth, ts.TileHeight, ts.CtbSize, ts.TileEnable = 300, 200, 64, true
	impl.WalkerStateParams(true).FirstSuperSlice = true
	impl.PipelineFlushParams(true).FlushVDENC = true

	cb := mhw.NewCommandBuffer(1 << 12)
	for _, add := range []func(*mhw.CommandBuffer) error{
		impl.AddControlState, impl.AddPipeModeSelect, impl.AddSrcSurfaceState, impl.AddRefSurfaceState,
		impl.AddDsRefSurfaceState, impl.AddPipeBufAddrState, impl.AddWeightsOffsetsState,
		impl.AddTileSliceState, impl.AddWalkerState, impl.AddPipelineFlush,
	} {
		if err := add(cb); err != nil {
			t.Fatal(err)
		}
	}
	return cb.Bytes()
}

func TestInheritingGenerationMatchesParent(t *testing.T) {
	parent := emitAll(t, newImpl(t, "xe_lpm_plus", &fakeOS{gfx: true}))
	child := emitAll(t, newImpl(t, "xe_lpm_plus_r1", &fakeOS{gfx: true}))
	if !bytes.Equal(parent, child) {
		t.Error("xe_lpm_plus_r1 output differs from xe_lpm_plus")
	}
	again := emitAll(t, newImpl(t, "xe_lpm_plus", &fakeOS{gfx: true}))
	if !bytes.Equal(parent, again) {
		t.Error("same parameters produced different bytes")
	}
}

func TestXe2Lpm(t *testing.T) {
	for _, tt := range []struct {
		gen       string
		wantDW5   uint32
		wantSuper uint32
	}{
		{"xe_lpm_plus", 0, 1},
		{"xe2_lpm", 1<<26 | 2<<24, 0},
	} {
		t.Run(tt.gen, func(t *testing.T) {
			impl := newImpl(t, tt.gen, &fakeOS{gfx: true})
			p := impl.PipeModeSelectParams(true)
			p.FastPassEnable, p.FastPassScale = true, 2
			impl.WalkerStateParams(true).FirstSuperSlice = true

			cb := mhw.NewCommandBuffer(4096)
			if err := impl.AddPipeModeSelect(cb); err != nil {
				t.Fatal(err)
			}
			if got := cb.Words()[5] & (7 << 24); got != tt.wantDW5 {
				t.Errorf("DW5 fast pass bits = %#08x, want %#08x", got, tt.wantDW5)
			}
			if err := impl.AddWalkerState(cb); err != nil {
				t.Fatal(err)
			}
			if got := wkFirstSuperSlice.Get(cmdWords(cb, cb.Last())); got != tt.wantSuper {
				t.Errorf("FirstSuperSlice = %d, want %d", got, tt.wantSuper)
			}
		})
	}
}

func TestGenerationExtensionHook(t *testing.T) {
	g := &Generation{
		Name:   "test_ext",
		Parent: XeLpmPlus,
		Ext: Extensions{
			PipelineFlush: hwcmd.Extensions[PipelineFlushPar]{
				HookPipelineFlush: {
					hwcmd.Map(hwcmd.Bit("Extra", 1, 31), func(*PipelineFlushPar, *hwcmd.Template) uint32 { return 1 }),
				},
			},
		},
	}
	Register(g)
	defer generations.Unregister(g.Name)

	impl := newImpl(t, g.Name, &fakeOS{gfx: true})
	impl.PipelineFlushParams(true).FlushMFX = true
	cb := mhw.NewCommandBuffer(64)
	if err := impl.AddPipelineFlush(cb); err != nil {
		t.Fatal(err)
	}
	if got := cb.Words()[1]; got != 1<<31|1<<19 {
		t.Errorf("DW1 = %#08x", got)
	}
}

func TestExtCmd(t *testing.T) {
	qp := hwcmd.Bits("Qp", 1, 7, 0)
	mode := hwcmd.Bits("Mode", 2, 3, 0)
	base := &Generation{
		Name:   "test_ext_cmd",
		Parent: XeLpmPlus,
		Layouts: Layouts{ExtCmds: [NumExtCmds]*hwcmd.Layout{
			Cmd2: hwcmd.NewLayout("VDENC_CMD2", 0x70a10001, 0, 0x00000010),
		}},
		Ext: Extensions{ExtCmds: [NumExtCmds]hwcmd.Extensions[ExtCmdPar]{
			Cmd2: {HookExtCmd: {ValueField(qp), ValueField(mode)}},
		}},
	}
	child := &Generation{Name: "test_ext_cmd_child", Parent: base}
	Register(base)
	Register(child)
	defer generations.Unregister(base.Name)
	defer generations.Unregister(child.Name)

	for _, name := range []string{base.Name, child.Name} {
		t.Run(name, func(t *testing.T) {
			impl := newImpl(t, name, &fakeOS{gfx: true})
			if !impl.HasExtCmd(Cmd2) || impl.HasExtCmd(Cmd1) || impl.HasExtCmd(NumExtCmds) {
				t.Fatal("HasExtCmd")
			}
			if impl.ExtCmdSize(Cmd2) != 12 || impl.ExtCmdSize(Cmd5) != 0 {
				t.Errorf("sizes = %d, %d", impl.ExtCmdSize(Cmd2), impl.ExtCmdSize(Cmd5))
			}

			p := impl.ExtCmdParams(Cmd2, true)
			p.Set("Qp", 0x1ff)
			p.Set("Mode", 5)
			cb := mhw.NewCommandBuffer(64)
			if err := impl.AddExtCmd(cb, Cmd2); err != nil {
				t.Fatal(err)
			}
			w := cb.Words()
			if w[0] != 0x70a10001 || qp.Get(w) != 0xff || mode.Get(w) != 5 || w[2]&0x10 == 0 {
				t.Errorf("words = %#08x", w)
			}

			if impl.ExtCmdParams(Cmd2, false).Value("Qp") != 0x1ff {
				t.Error("values did not persist without reset")
			}
			if impl.ExtCmdParams(Cmd2, true).Value("Qp") != 0 {
				t.Error("reset kept values")
			}
			if impl.ExtCmdParams(Cmd3, true) != nil {
				t.Error("params for an undefined command")
			}
			if err := impl.AddExtCmd(cb, Cmd3); !errors.Is(err, ErrUndefinedCommand) {
				t.Errorf("undefined: err = %v", err)
			}
			if cb.Len() != 12 {
				t.Errorf("len = %d after failed add", cb.Len())
			}
		})
	}
}

func TestExtCmdUndefinedOnShippedGenerations(t *testing.T) {
	for _, name := range Generations() {
		impl := newImpl(t, name, &fakeOS{gfx: true})
		for c := range NumExtCmds {
			if impl.HasExtCmd(c) {
				t.Errorf("%s defines %s", name, c)
			}
		}
	}
	if Cmd1.String() != "VDENC_CMD1" || Cmd5.String() != "VDENC_CMD5" || ExtCmd(9).String() != "ExtCmd(9)" {
		t.Error("ExtCmd.String")
	}
}

func TestRegisterRequiresLayouts(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Register accepted a generation without layouts")
		}
	}()
	Register(&Generation{Name: "bare"})
}

func TestGenerations(t *testing.T) {
	want := []string{"xe2_lpm", "xe_lpm_plus", "xe_lpm_plus_r1"}
	if got := Generations(); !slices.Equal(got, want) {
		t.Errorf("Generations = %v, want %v", got, want)
	}
	if _, err := New("xe_hpm", &fakeOS{}); !errors.Is(err, mhw.ErrUnknownGeneration) {
		t.Errorf("err = %v", err)
	}
}

func TestErrors(t *testing.T) {
	t.Run("degraded", func(t *testing.T) {
		impl, err := New("xe_lpm_plus", nil)
		if err != nil {
			t.Fatal(err)
		}
		if impl.EnableRowstoreCacheIfSupported(1) {
			t.Error("degraded builder enabled the row-store cache")
		}
		if err := impl.AddWalkerState(mhw.NewCommandBuffer(64)); !errors.Is(err, mhw.ErrNoOSInterface) {
			t.Errorf("err = %v", err)
		}
	})
	t.Run("nil buffer", func(t *testing.T) {
		impl := newImpl(t, "xe_lpm_plus", &fakeOS{gfx: true})
		if err := impl.AddWalkerState(nil); !errors.Is(err, mhw.ErrNullPointer) {
			t.Errorf("err = %v", err)
		}
	})
	t.Run("buffer full", func(t *testing.T) {
		impl := newImpl(t, "xe_lpm_plus", &fakeOS{gfx: true})
		cb := mhw.NewCommandBuffer(impl.PipeBufAddrStateSize() - 4)
		if err := impl.AddPipeBufAddrState(cb); !errors.Is(err, mhw.ErrCommandBufferFull) {
			t.Errorf("err = %v", err)
		}
		if cb.Len() != 0 {
			t.Errorf("len = %d", cb.Len())
		}
	})
}

func TestParamsReset(t *testing.T) {
	impl := newImpl(t, "xe_lpm_plus", &fakeOS{gfx: true})
	impl.TileSliceStateParams(true).TileID = 7
	if impl.TileSliceStateParams(false).TileID != 7 {
		t.Error("params(false) cleared the record")
	}
	if impl.TileSliceStateParams(true).TileID != 0 {
		t.Error("params(true) kept the record")
	}
	if impl.PipeBufAddrStateSize() != 83*4 || impl.ControlStateSize() != 8 {
		t.Errorf("sizes = %d, %d", impl.PipeBufAddrStateSize(), impl.ControlStateSize())
	}
}
