// Package vdenc builds the state commands of the VDENC video-encode
// pipeline.
//
// Each command kind has a parameter record owned by the builder. Callers
// fetch it with the kind's Params method, fill it and emit the command
// with the matching Add method:
//
//	itf, err := vdenc.New("xe_lpm_plus", osItf)
//	p := itf.TileSliceStateParams(true)
//	p.TileWidth, p.TileHeight, p.CtbSize = 300, 128, 64
//	err = itf.AddTileSliceState(cb)
package vdenc

import (
	"github.com/gogpu/mhw"
	"github.com/gogpu/mhw/hwcmd"
)

// Itf is the VDENC command-building capability.
type Itf interface {
	Generation() string
	SetCacheabilitySettings(s *mhw.CacheSettings) error
	EnableRowstoreCacheIfSupported(address uint32) bool
	EnableIpdlRowstoreCacheIfSupported(address uint32) bool

	ControlStateParams(reset bool) *ControlStatePar
	AddControlState(cb *mhw.CommandBuffer) error
	ControlStateSize() int

	PipeModeSelectParams(reset bool) *PipeModeSelectPar
	AddPipeModeSelect(cb *mhw.CommandBuffer) error
	PipeModeSelectSize() int

	SrcSurfaceStateParams(reset bool) *SurfacePar
	AddSrcSurfaceState(cb *mhw.CommandBuffer) error
	SrcSurfaceStateSize() int

	RefSurfaceStateParams(reset bool) *SurfacePar
	AddRefSurfaceState(cb *mhw.CommandBuffer) error
	RefSurfaceStateSize() int

	DsRefSurfaceStateParams(reset bool) *DsRefSurfacePar
	AddDsRefSurfaceState(cb *mhw.CommandBuffer) error
	DsRefSurfaceStateSize() int

	PipeBufAddrStateParams(reset bool) *PipeBufAddrPar
	AddPipeBufAddrState(cb *mhw.CommandBuffer) error
	PipeBufAddrStateSize() int

	WeightsOffsetsStateParams(reset bool) *WeightsOffsetsPar
	AddWeightsOffsetsState(cb *mhw.CommandBuffer) error
	WeightsOffsetsStateSize() int

	TileSliceStateParams(reset bool) *TileSlicePar
	AddTileSliceState(cb *mhw.CommandBuffer) error
	TileSliceStateSize() int

	WalkerStateParams(reset bool) *WalkerPar
	AddWalkerState(cb *mhw.CommandBuffer) error
	WalkerStateSize() int

	PipelineFlushParams(reset bool) *PipelineFlushPar
	AddPipelineFlush(cb *mhw.CommandBuffer) error
	PipelineFlushSize() int

	HasExtCmd(c ExtCmd) bool
	ExtCmdParams(c ExtCmd, reset bool) *ExtCmdPar
	AddExtCmd(cb *mhw.CommandBuffer, c ExtCmd) error
	ExtCmdSize(c ExtCmd) int
}

// cmd binds one command kind: its layout, its resolved field list and the
// parameter record callers fill.
type cmd[P any] struct {
	layout *hwcmd.Layout
	fields hwcmd.FieldList[P]
	par    P
}

func newCmd[P any](layout *hwcmd.Layout, fields hwcmd.FieldList[P]) *cmd[P] {
	return &cmd[P]{layout: layout, fields: fields}
}

func (c *cmd[P]) params(reset bool) *P {
	if reset {
		var zero P
		c.par = zero
	}
	return &c.par
}

func (c *cmd[P]) size() int { return c.layout.ByteSize() }

// emit maps the current parameters, runs patch for the resource fields and
// appends the command.
func emit[P any](i *Impl, cb *mhw.CommandBuffer, c *cmd[P], patch func(t *hwcmd.Template) error) (mhw.CmdLocation, error) {
	return i.Emit(cb, c.layout.New(), func(t *hwcmd.Template) error {
		if err := c.fields.Apply(&c.par, t); err != nil {
			return err
		}
		if patch == nil {
			return nil
		}
		return patch(t)
	})
}

// Impl is the VDENC command builder for one generation.
type Impl struct {
	*mhw.Base
	gen *Generation

	rowStore     mhw.RowStoreCache
	ipdlRowStore mhw.RowStoreCache

	controlState   *cmd[ControlStatePar]
	pipeModeSelect *cmd[PipeModeSelectPar]
	srcSurface     *cmd[SurfacePar]
	refSurface     *cmd[SurfacePar]
	dsRefSurface   *cmd[DsRefSurfacePar]
	pipeBufAddr    *cmd[PipeBufAddrPar]
	weightsOffsets *cmd[WeightsOffsetsPar]
	tileSlice      *cmd[TileSlicePar]
	walker         *cmd[WalkerPar]
	pipelineFlush  *cmd[PipelineFlushPar]

	extCmds [NumExtCmds]*cmd[ExtCmdPar]
}

var _ Itf = (*Impl)(nil)

// New returns a builder for the generation registered under name. Row-store
// cache support is read from the feature source once, here.
// A nil os yields a builder whose Add calls fail with mhw.ErrNoOSInterface.
func New(name string, os mhw.OSInterface, opts ...mhw.Option) (*Impl, error) {
	g, err := generations.Lookup(name)
	if err != nil {
		return nil, err
	}
	l := resolveLayouts(g)

	i := &Impl{
		Base: mhw.NewBase(os, opts...),
		gen:  g,

		controlState: newCmd(l.ControlState,
			listOf(g, func(f *FieldLists) hwcmd.FieldList[ControlStatePar] { return f.ControlState }, controlStateFields).Resolve(nil)),
		pipeModeSelect: newCmd(l.PipeModeSelect,
			listOf(g, func(f *FieldLists) hwcmd.FieldList[PipeModeSelectPar] { return f.PipeModeSelect }, pipeModeSelectFields).
				Resolve(extOf(g, func(e *Extensions) hwcmd.Extensions[PipeModeSelectPar] { return e.PipeModeSelect }))),
		srcSurface: newCmd(l.SrcSurfaceState,
			listOf(g, func(f *FieldLists) hwcmd.FieldList[SurfacePar] { return f.SrcSurfaceState }, srcSurfaceFields).Resolve(nil)),
		refSurface: newCmd(l.RefSurfaceState,
			listOf(g, func(f *FieldLists) hwcmd.FieldList[SurfacePar] { return f.RefSurfaceState }, refSurfaceFields).Resolve(nil)),
		dsRefSurface: newCmd(l.DsRefSurfaceState,
			listOf(g, func(f *FieldLists) hwcmd.FieldList[DsRefSurfacePar] { return f.DsRefSurfaceState }, dsRefSurfaceFields).Resolve(nil)),
		pipeBufAddr: newCmd(l.PipeBufAddrState,
			listOf(g, func(f *FieldLists) hwcmd.FieldList[PipeBufAddrPar] { return f.PipeBufAddrState }, pipeBufAddrFields).
				Resolve(extOf(g, func(e *Extensions) hwcmd.Extensions[PipeBufAddrPar] { return e.PipeBufAddr }))),
		weightsOffsets: newCmd(l.WeightsOffsetsState,
			listOf(g, func(f *FieldLists) hwcmd.FieldList[WeightsOffsetsPar] { return f.WeightsOffsetsState }, weightsOffsetsFields).Resolve(nil)),
		tileSlice: newCmd(l.TileSliceState,
			listOf(g, func(f *FieldLists) hwcmd.FieldList[TileSlicePar] { return f.TileSliceState }, tileSliceFields).
				Resolve(extOf(g, func(e *Extensions) hwcmd.Extensions[TileSlicePar] { return e.TileSlice }))),
		walker: newCmd(l.WalkerState,
			listOf(g, func(f *FieldLists) hwcmd.FieldList[WalkerPar] { return f.WalkerState }, walkerFields).Resolve(nil)),
		pipelineFlush: newCmd(l.PipelineFlush,
			listOf(g, func(f *FieldLists) hwcmd.FieldList[PipelineFlushPar] { return f.PipelineFlush }, pipelineFlushFields).
				Resolve(extOf(g, func(e *Extensions) hwcmd.Extensions[PipelineFlushPar] { return e.PipelineFlush }))),
	}
	i.extCmds = newExtCmds(g)
	i.initRowstoreCache()
	mhw.Logger().Info("vdenc: interface created", "generation", g.Name,
		"rowstore", i.rowStore.Supported, "ipdlRowstore", i.ipdlRowStore.Supported)
	return i, nil
}

// initRowstoreCache reads the row-store feature toggles. Caching is off by
// default on a simulator.
func (i *Impl) initRowstoreCache() {
	if i.Ready() != nil {
		return
	}
	f := i.Features()
	if mhw.FeatureBool(f, mhw.FeatureRowstoreCacheDisable, i.OS().SimIsActive()) {
		return
	}
	i.rowStore.Supported = !mhw.FeatureBool(f, mhw.FeatureVdencRowstoreCacheDisable, false)
	i.ipdlRowStore.Supported = !mhw.FeatureBool(f, mhw.FeatureIntraRowstoreCacheDisable, false)
}

// Generation returns the generation name.
func (i *Impl) Generation() string { return i.gen.Name }

// EnableRowstoreCacheIfSupported enables the VDENC row-store cache at
// address and reports whether it is enabled.
func (i *Impl) EnableRowstoreCacheIfSupported(address uint32) bool {
	return i.rowStore.EnableIfSupported(address)
}

// EnableIpdlRowstoreCacheIfSupported enables the intra-prediction row-store
// cache at address and reports whether it is enabled.
func (i *Impl) EnableIpdlRowstoreCacheIfSupported(address uint32) bool {
	return i.ipdlRowStore.EnableIfSupported(address)
}

// RowstoreCache returns the VDENC row-store cache state.
func (i *Impl) RowstoreCache() mhw.RowStoreCache { return i.rowStore }

// IpdlRowstoreCache returns the intra-prediction row-store cache state.
func (i *Impl) IpdlRowstoreCache() mhw.RowStoreCache { return i.ipdlRowStore }

// ControlStateParams returns the VDENC_CONTROL_STATE parameter
// record, cleared first when reset is true. Without reset the values of
// the previous command persist, as for every other kind.
func (i *Impl) ControlStateParams(reset bool) *ControlStatePar { return i.controlState.params(reset) }

// ControlStateSize returns the size of VDENC_CONTROL_STATE in bytes.
func (i *Impl) ControlStateSize() int { return i.controlState.size() }

// AddControlState emits VDENC_CONTROL_STATE.
func (i *Impl) AddControlState(cb *mhw.CommandBuffer) error {
	_, err := emit(i, cb, i.controlState, nil)
	return err
}

// PipeModeSelectParams returns the VDENC_PIPE_MODE_SELECT parameter
// record, cleared first when reset is true.
func (i *Impl) PipeModeSelectParams(reset bool) *PipeModeSelectPar {
	return i.pipeModeSelect.params(reset)
}

// PipeModeSelectSize returns the size of VDENC_PIPE_MODE_SELECT in bytes.
func (i *Impl) PipeModeSelectSize() int { return i.pipeModeSelect.size() }

// AddPipeModeSelect emits VDENC_PIPE_MODE_SELECT.
func (i *Impl) AddPipeModeSelect(cb *mhw.CommandBuffer) error {
	_, err := emit(i, cb, i.pipeModeSelect, nil)
	return err
}

// SrcSurfaceStateParams returns the VDENC_SRC_SURFACE_STATE parameter
// record, cleared first when reset is true.
func (i *Impl) SrcSurfaceStateParams(reset bool) *SurfacePar { return i.srcSurface.params(reset) }

// SrcSurfaceStateSize returns the size of VDENC_SRC_SURFACE_STATE in bytes.
func (i *Impl) SrcSurfaceStateSize() int { return i.srcSurface.size() }

// AddSrcSurfaceState emits VDENC_SRC_SURFACE_STATE.
func (i *Impl) AddSrcSurfaceState(cb *mhw.CommandBuffer) error {
	_, err := emit(i, cb, i.srcSurface, nil)
	return err
}

// RefSurfaceStateParams returns the VDENC_REF_SURFACE_STATE parameter
// record, cleared first when reset is true.
func (i *Impl) RefSurfaceStateParams(reset bool) *SurfacePar { return i.refSurface.params(reset) }

// RefSurfaceStateSize returns the size of VDENC_REF_SURFACE_STATE in bytes.
func (i *Impl) RefSurfaceStateSize() int { return i.refSurface.size() }

// AddRefSurfaceState emits VDENC_REF_SURFACE_STATE.
func (i *Impl) AddRefSurfaceState(cb *mhw.CommandBuffer) error {
	_, err := emit(i, cb, i.refSurface, nil)
	return err
}

// DsRefSurfaceStateParams returns the VDENC_DS_REF_SURFACE_STATE parameter
// record, cleared first when reset is true.
func (i *Impl) DsRefSurfaceStateParams(reset bool) *DsRefSurfacePar {
	return i.dsRefSurface.params(reset)
}

// DsRefSurfaceStateSize returns the size of VDENC_DS_REF_SURFACE_STATE in bytes.
func (i *Impl) DsRefSurfaceStateSize() int { return i.dsRefSurface.size() }

// AddDsRefSurfaceState emits VDENC_DS_REF_SURFACE_STATE.
func (i *Impl) AddDsRefSurfaceState(cb *mhw.CommandBuffer) error {
	_, err := emit(i, cb, i.dsRefSurface, nil)
	return err
}

// PipeBufAddrStateParams returns the VDENC_PIPE_BUF_ADDR_STATE parameter
// record, cleared first when reset is true.
func (i *Impl) PipeBufAddrStateParams(reset bool) *PipeBufAddrPar { return i.pipeBufAddr.params(reset) }

// PipeBufAddrStateSize returns the size of VDENC_PIPE_BUF_ADDR_STATE in bytes.
func (i *Impl) PipeBufAddrStateSize() int { return i.pipeBufAddr.size() }

// AddPipeBufAddrState emits VDENC_PIPE_BUF_ADDR_STATE, patching every
// allocated buffer of the parameter record.
func (i *Impl) AddPipeBufAddrState(cb *mhw.CommandBuffer) error {
	_, err := i.AddPipeBufAddrStateAt(cb)
	return err
}

// AddPipeBufAddrStateAt is AddPipeBufAddrState returning the command
// location, for a later AmendSlotCompression.
func (i *Impl) AddPipeBufAddrStateAt(cb *mhw.CommandBuffer) (mhw.CmdLocation, error) {
	p := &i.pipeBufAddr.par
	if err := checkRefCounts(p); err != nil {
		return mhw.CmdLocation{}, err
	}
	return emit(i, cb, i.pipeBufAddr, func(t *hwcmd.Template) error {
		return i.patchBuffers(cb, t, p)
	})
}

// WeightsOffsetsStateParams returns the VDENC_WEIGHTSOFFSETS_STATE parameter
// record, cleared first when reset is true.
func (i *Impl) WeightsOffsetsStateParams(reset bool) *WeightsOffsetsPar {
	return i.weightsOffsets.params(reset)
}

// WeightsOffsetsStateSize returns the size of VDENC_WEIGHTSOFFSETS_STATE in bytes.
func (i *Impl) WeightsOffsetsStateSize() int { return i.weightsOffsets.size() }

// AddWeightsOffsetsState emits VDENC_WEIGHTSOFFSETS_STATE.
func (i *Impl) AddWeightsOffsetsState(cb *mhw.CommandBuffer) error {
	_, err := emit(i, cb, i.weightsOffsets, nil)
	return err
}

// TileSliceStateParams returns the VDENC_HEVC_VP9_TILE_SLICE_STATE parameter
// record, cleared first when reset is true.
func (i *Impl) TileSliceStateParams(reset bool) *TileSlicePar { return i.tileSlice.params(reset) }

// TileSliceStateSize returns the size of VDENC_HEVC_VP9_TILE_SLICE_STATE in bytes.
func (i *Impl) TileSliceStateSize() int { return i.tileSlice.size() }

// AddTileSliceState emits VDENC_HEVC_VP9_TILE_SLICE_STATE.
func (i *Impl) AddTileSliceState(cb *mhw.CommandBuffer) error {
	_, err := emit(i, cb, i.tileSlice, nil)
	return err
}

// WalkerStateParams returns the VDENC_WALKER_STATE parameter
// record, cleared first when reset is true.
func (i *Impl) WalkerStateParams(reset bool) *WalkerPar { return i.walker.params(reset) }

// WalkerStateSize returns the size of VDENC_WALKER_STATE in bytes.
func (i *Impl) WalkerStateSize() int { return i.walker.size() }

// AddWalkerState emits VDENC_WALKER_STATE.
func (i *Impl) AddWalkerState(cb *mhw.CommandBuffer) error {
	_, err := emit(i, cb, i.walker, nil)
	return err
}

// PipelineFlushParams returns the VD_PIPELINE_FLUSH parameter
// record, cleared first when reset is true.
func (i *Impl) PipelineFlushParams(reset bool) *PipelineFlushPar {
	return i.pipelineFlush.params(reset)
}

// PipelineFlushSize returns the size of VD_PIPELINE_FLUSH in bytes.
func (i *Impl) PipelineFlushSize() int { return i.pipelineFlush.size() }

// AddPipelineFlush emits VD_PIPELINE_FLUSH.
func (i *Impl) AddPipelineFlush(cb *mhw.CommandBuffer) error {
	_, err := emit(i, cb, i.pipelineFlush, nil)
	return err
}
