package vdenc

import (
	"github.com/gogpu/mhw"
	"github.com/gogpu/mhw/hwcmd"
)

// Layouts holds the binary layout of every VDENC command kind. A nil entry
// is inherited from the parent generation.
type Layouts struct {
	ControlState        *hwcmd.Layout
	PipeModeSelect      *hwcmd.Layout
	SrcSurfaceState     *hwcmd.Layout
	RefSurfaceState     *hwcmd.Layout
	DsRefSurfaceState   *hwcmd.Layout
	PipeBufAddrState    *hwcmd.Layout
	WeightsOffsetsState *hwcmd.Layout
	TileSliceState      *hwcmd.Layout
	WalkerState         *hwcmd.Layout
	PipelineFlush       *hwcmd.Layout

	// ExtCmds are optional: a kind with no layout anywhere along the chain
	// is simply not available.
	ExtCmds [NumExtCmds]*hwcmd.Layout
}

// FieldLists replaces the generic field list of a command kind. A nil list
// is inherited from the parent generation, or the generic list is used.
type FieldLists struct {
	ControlState        hwcmd.FieldList[ControlStatePar]
	PipeModeSelect      hwcmd.FieldList[PipeModeSelectPar]
	SrcSurfaceState     hwcmd.FieldList[SurfacePar]
	RefSurfaceState     hwcmd.FieldList[SurfacePar]
	DsRefSurfaceState   hwcmd.FieldList[DsRefSurfacePar]
	PipeBufAddrState    hwcmd.FieldList[PipeBufAddrPar]
	WeightsOffsetsState hwcmd.FieldList[WeightsOffsetsPar]
	TileSliceState      hwcmd.FieldList[TileSlicePar]
	WalkerState         hwcmd.FieldList[WalkerPar]
	PipelineFlush       hwcmd.FieldList[PipelineFlushPar]
}

// Extensions adds steps at the hooks of the extensible lists.
type Extensions struct {
	PipeModeSelect hwcmd.Extensions[PipeModeSelectPar]
	PipeBufAddr    hwcmd.Extensions[PipeBufAddrPar]
	TileSlice      hwcmd.Extensions[TileSlicePar]
	PipelineFlush  hwcmd.Extensions[PipelineFlushPar]
	ExtCmds        [NumExtCmds]hwcmd.Extensions[ExtCmdPar]
}

// Generation describes the VDENC commands of one hardware generation.
type Generation struct {
	Name    string
	Parent  *Generation
	Layouts Layouts
	Lists   FieldLists
	Ext     Extensions
}

func layoutOf(g *Generation, pick func(*Layouts) *hwcmd.Layout) *hwcmd.Layout {
	for ; g != nil; g = g.Parent {
		if l := pick(&g.Layouts); l != nil {
			return l
		}
	}
	return nil
}

func listOf[P any](g *Generation, pick func(*FieldLists) hwcmd.FieldList[P], generic func() hwcmd.FieldList[P]) hwcmd.FieldList[P] {
	for ; g != nil; g = g.Parent {
		if l := pick(&g.Lists); l != nil {
			return l
		}
	}
	return generic()
}

// extOf merges extensions along the parent chain; the nearest generation
// wins per hook.
func extOf[P any](g *Generation, pick func(*Extensions) hwcmd.Extensions[P]) hwcmd.Extensions[P] {
	ext := hwcmd.Extensions[P]{}
	for ; g != nil; g = g.Parent {
		for name, steps := range pick(&g.Ext) {
			if _, ok := ext[name]; !ok {
				ext[name] = steps
			}
		}
	}
	return ext
}

var layoutPicks = []func(*Layouts) *hwcmd.Layout{
	func(l *Layouts) *hwcmd.Layout { return l.ControlState },
	func(l *Layouts) *hwcmd.Layout { return l.PipeModeSelect },
	func(l *Layouts) *hwcmd.Layout { return l.SrcSurfaceState },
	func(l *Layouts) *hwcmd.Layout { return l.RefSurfaceState },
	func(l *Layouts) *hwcmd.Layout { return l.DsRefSurfaceState },
	func(l *Layouts) *hwcmd.Layout { return l.PipeBufAddrState },
	func(l *Layouts) *hwcmd.Layout { return l.WeightsOffsetsState },
	func(l *Layouts) *hwcmd.Layout { return l.TileSliceState },
	func(l *Layouts) *hwcmd.Layout { return l.WalkerState },
	func(l *Layouts) *hwcmd.Layout { return l.PipelineFlush },
}

// resolveLayouts returns the effective layout set of g, or nil if a
// mandatory kind has no layout anywhere along the chain. ExtCmds are not
// resolved here.
func resolveLayouts(g *Generation) *Layouts {
	var out Layouts
	outPicks := []**hwcmd.Layout{
		&out.ControlState, &out.PipeModeSelect, &out.SrcSurfaceState, &out.RefSurfaceState,
		&out.DsRefSurfaceState, &out.PipeBufAddrState, &out.WeightsOffsetsState,
		&out.TileSliceState, &out.WalkerState, &out.PipelineFlush,
	}
	for i, pick := range layoutPicks {
		l := layoutOf(g, pick)
		if l == nil {
			return nil
		}
		*outPicks[i] = l
	}
	return &out
}

var generations = mhw.NewRegistry[*Generation]("vdenc")

// Register makes a generation available to New. It panics on a duplicate
// name or when a command kind has no layout along the parent chain.
func Register(g *Generation) {
	if resolveLayouts(g) == nil {
		panic("vdenc: generation " + g.Name + " is missing a layout")
	}
	generations.Register(g.Name, g)
}

// Generations returns the registered generation names in sorted order.
func Generations() []string { return generations.Names() }

// XeLpmPlus is the generic VDENC generation.
var XeLpmPlus = &Generation{
	Name:    "xe_lpm_plus",
	Layouts: xeLpmPlusLayouts,
}

// Fast-pass fields of Xe2_LPM VDENC_PIPE_MODE_SELECT.
var (
	pmsFastPassScale  = hwcmd.Bits("FastPassScale", 5, 25, 24)
	pmsFastPassEnable = hwcmd.Bit("FastPassEn", 5, 26)
)

// Xe2Lpm adds the fast-pass encode mode and drops the super-slice flag from
// the walker.
var Xe2Lpm = &Generation{
	Name:   "xe2_lpm",
	Parent: XeLpmPlus,
	Lists: FieldLists{
		WalkerState: hwcmd.FieldList[WalkerPar]{
			hwcmd.Map(wkStartX, func(p *WalkerPar, _ *tmpl) uint32 { return p.TileSliceStartLcuMbX }),
			hwcmd.Map(wkStartY, func(p *WalkerPar, _ *tmpl) uint32 { return p.TileSliceStartLcuMbY }),
			hwcmd.Map(wkNextStartX, func(p *WalkerPar, _ *tmpl) uint32 { return p.NextTileSliceStartLcuMbX }),
			hwcmd.Map(wkNextStartY, func(p *WalkerPar, _ *tmpl) uint32 { return p.NextTileSliceStartLcuMbY }),
		},
	},
	Ext: Extensions{
		PipeModeSelect: hwcmd.Extensions[PipeModeSelectPar]{
			HookPipeModeSelect: {
				hwcmd.Map(pmsFastPassEnable, func(p *PipeModeSelectPar, _ *tmpl) uint32 { return b(p.FastPassEnable) }),
				hwcmd.Map(pmsFastPassScale, func(p *PipeModeSelectPar, _ *tmpl) uint32 { return uint32(p.FastPassScale) }),
			},
		},
	},
}

// XeLpmPlusR1 is a stepping of Xe_LPM+ with no command changes.
var XeLpmPlusR1 = &Generation{
	Name:   "xe_lpm_plus_r1",
	Parent: XeLpmPlus,
}

func init() {
	xeLpmPlusLayouts.PipeModeSelect.Check(pmsFastPassScale, pmsFastPassEnable)
	Register(XeLpmPlus)
	Register(Xe2Lpm)
	Register(XeLpmPlusR1)
}
