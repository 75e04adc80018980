// Package blt builds commands for the BLT copy engine: XY_FAST_COPY_BLT,
// XY_BLOCK_COPY_BLT and the BCS_SWCTRL register.
//
// A command builder is created for a registered hardware generation:
//
//	itf, err := blt.New("gen12", osItf)
//	p := itf.FastCopyBltParams(true)
//	p.Src, p.Dst = src, dst
//	p.DstRight, p.DstBottom = 64, 64
//	p.SrcPitch, p.DstPitch = 256, 256
//	err = itf.AddFastCopyBlt(cb)
package blt

import (
	"fmt"

	"github.com/gogpu/mhw"
	"github.com/gogpu/mhw/hwcmd"
)

// Extension hook names. A generation inserts extra steps at the end of the
// generic field lists through them.
const (
	HookFastCopy  = "XY_FAST_COPY_BLT"
	HookBlockCopy = "XY_BLOCK_COPY_BLT"
)

// CopyPar is the parameter record shared by both copy commands.
// Rectangles are in pixels; pitches in bytes.
type CopyPar struct {
	ColorDepth ColorDepth

	SrcPitch uint32
	SrcTop   uint32
	SrcLeft  uint32

	DstPitch  uint32
	DstTop    uint32
	DstBottom uint32
	DstLeft   uint32
	DstRight  uint32

	Src *mhw.Resource
	Dst *mhw.Resource

	// Resolved from the cacheability table at emission.
	srcMocs, dstMocs uint32
}

// SwCtrlPar is the parameter record of BCS_SWCTRL.
type SwCtrlPar struct {
	TileYSource               bool
	TileYDestination          bool
	NotInvalidateCacheOnFlush bool
	ShrinkCache               bool
}

// Itf is the BLT command-building capability: one parameter/emit pair per
// command kind.
type Itf interface {
	Generation() string
	SetCacheabilitySettings(s *mhw.CacheSettings) error

	FastCopyBltParams(reset bool) *CopyPar
	AddFastCopyBlt(cb *mhw.CommandBuffer) error
	FastCopyBltSize() int

	BlockCopyBltParams(reset bool) *CopyPar
	AddBlockCopyBlt(cb *mhw.CommandBuffer, srcOffset, dstOffset uint32) error
	BlockCopyBltSize() int

	BcsSwCtrlParams(reset bool) *SwCtrlPar
	AddBcsSwCtrl(cb *mhw.CommandBuffer) error
	BcsSwCtrlSize() int
}

// Generation describes the BLT commands of one hardware generation. Nil
// members are inherited from Parent. Ext adds steps at the hooks of the
// generic lists and is merged along the chain, nearest first.
type Generation struct {
	Name   string
	Parent *Generation

	FastCopy  *hwcmd.Layout
	BlockCopy *hwcmd.Layout
	SwCtrl    *hwcmd.Layout
	LoadReg   *hwcmd.Layout

	FastCopyFields  hwcmd.FieldList[CopyPar]
	BlockCopyFields hwcmd.FieldList[CopyPar]
	SwCtrlFields    hwcmd.FieldList[SwCtrlPar]

	Ext hwcmd.Extensions[CopyPar]
}

func nearest[T any](g *Generation, pick func(*Generation) T, set func(T) bool) T {
	var zero T
	for ; g != nil; g = g.Parent {
		if v := pick(g); set(v) {
			return v
		}
	}
	return zero
}

func layoutOf(g *Generation, pick func(*Generation) *hwcmd.Layout) *hwcmd.Layout {
	return nearest(g, pick, func(l *hwcmd.Layout) bool { return l != nil })
}

func listOf[P any](g *Generation, pick func(*Generation) hwcmd.FieldList[P], generic hwcmd.FieldList[P]) hwcmd.FieldList[P] {
	if l := nearest(g, pick, func(l hwcmd.FieldList[P]) bool { return l != nil }); l != nil {
		return l
	}
	return generic
}

func extOf(g *Generation) hwcmd.Extensions[CopyPar] {
	ext := hwcmd.Extensions[CopyPar]{}
	for ; g != nil; g = g.Parent {
		for name, steps := range g.Ext {
			if _, ok := ext[name]; !ok {
				ext[name] = steps
			}
		}
	}
	return ext
}

var generations = mhw.NewRegistry[*Generation]("blt")

// Register makes a generation available to New.
// It panics if the name is already registered or a layout cannot be found
// along the parent chain.
func Register(g *Generation) {
	for _, l := range []*hwcmd.Layout{
		layoutOf(g, func(g *Generation) *hwcmd.Layout { return g.FastCopy }),
		layoutOf(g, func(g *Generation) *hwcmd.Layout { return g.BlockCopy }),
		layoutOf(g, func(g *Generation) *hwcmd.Layout { return g.SwCtrl }),
		layoutOf(g, func(g *Generation) *hwcmd.Layout { return g.LoadReg }),
	} {
		if l == nil {
			panic("blt: generation " + g.Name + " is missing a layout")
		}
	}
	generations.Register(g.Name, g)
}

// Generations returns the registered generation names in sorted order.
func Generations() []string { return generations.Names() }

// Impl is the BLT command builder for one generation.
type Impl struct {
	*mhw.Base
	gen *Generation

	fastCopyLayout, blockCopyLayout, swCtrlLayout, loadRegLayout *hwcmd.Layout

	fastCopyFields  hwcmd.FieldList[CopyPar]
	blockCopyFields hwcmd.FieldList[CopyPar]
	swCtrlFields    hwcmd.FieldList[SwCtrlPar]

	fastCopy  CopyPar
	blockCopy CopyPar
	swCtrl    SwCtrlPar
}

var _ Itf = (*Impl)(nil)

// New returns a builder for the generation registered under name.
// A nil os yields a builder whose Add calls fail with mhw.ErrNoOSInterface.
func New(name string, os mhw.OSInterface, opts ...mhw.Option) (*Impl, error) {
	g, err := generations.Lookup(name)
	if err != nil {
		return nil, err
	}
	ext := extOf(g)
	impl := &Impl{
		Base: mhw.NewBase(os, opts...),
		gen:  g,

		fastCopyLayout:  layoutOf(g, func(g *Generation) *hwcmd.Layout { return g.FastCopy }),
		blockCopyLayout: layoutOf(g, func(g *Generation) *hwcmd.Layout { return g.BlockCopy }),
		swCtrlLayout:    layoutOf(g, func(g *Generation) *hwcmd.Layout { return g.SwCtrl }),
		loadRegLayout:   layoutOf(g, func(g *Generation) *hwcmd.Layout { return g.LoadReg }),

		fastCopyFields:  listOf(g, func(g *Generation) hwcmd.FieldList[CopyPar] { return g.FastCopyFields }, fastCopyFields()).Resolve(ext),
		blockCopyFields: listOf(g, func(g *Generation) hwcmd.FieldList[CopyPar] { return g.BlockCopyFields }, blockCopyFields()).Resolve(ext),
		swCtrlFields:    listOf(g, func(g *Generation) hwcmd.FieldList[SwCtrlPar] { return g.SwCtrlFields }, swCtrlFields()).Resolve(nil),
	}
	mhw.Logger().Info("blt: interface created", "generation", g.Name)
	return impl, nil
}

// Generation returns the generation name.
func (i *Impl) Generation() string { return i.gen.Name }

// FastCopyBltParams returns the XY_FAST_COPY_BLT parameter record, cleared
// first when reset is true.
func (i *Impl) FastCopyBltParams(reset bool) *CopyPar {
	if reset {
		i.fastCopy = CopyPar{}
	}
	return &i.fastCopy
}

// BlockCopyBltParams returns the XY_BLOCK_COPY_BLT parameter record.
func (i *Impl) BlockCopyBltParams(reset bool) *CopyPar {
	if reset {
		i.blockCopy = CopyPar{}
	}
	return &i.blockCopy
}

// BcsSwCtrlParams returns the BCS_SWCTRL parameter record.
func (i *Impl) BcsSwCtrlParams(reset bool) *SwCtrlPar {
	if reset {
		i.swCtrl = SwCtrlPar{}
	}
	return &i.swCtrl
}

// FastCopyBltSize returns the size of XY_FAST_COPY_BLT in bytes.
func (i *Impl) FastCopyBltSize() int { return i.fastCopyLayout.ByteSize() }

// BlockCopyBltSize returns the size of XY_BLOCK_COPY_BLT in bytes.
func (i *Impl) BlockCopyBltSize() int { return i.blockCopyLayout.ByteSize() }

// BcsSwCtrlSize returns the size of the register load emitting BCS_SWCTRL.
func (i *Impl) BcsSwCtrlSize() int { return i.loadRegLayout.ByteSize() }

func checkCopy(p *CopyPar) error {
	if p.Src == nil || p.Dst == nil {
		return fmt.Errorf("copy resources: %w", mhw.ErrNullPointer)
	}
	return nil
}

// AddFastCopyBlt emits XY_FAST_COPY_BLT from the current parameters.
func (i *Impl) AddFastCopyBlt(cb *mhw.CommandBuffer) error {
	p := &i.fastCopy
	if err := checkCopy(p); err != nil {
		return err
	}
	_, err := i.Emit(cb, i.fastCopyLayout.New(), func(t *hwcmd.Template) error {
		if err := i.fastCopyFields.Apply(p, t); err != nil {
			return err
		}
		if err := i.AddResourceToCmd(cb, t, &mhw.ResourceParams{
			Resource:    p.Src,
			Location:    fcSrcAddressDW,
			LsbNum:      mhw.DefaultLsbNum,
			Writable:    true,
			CommandType: mhw.CmdTypeBltFastCopy,
		}); err != nil {
			return err
		}
		return i.AddResourceToCmd(cb, t, &mhw.ResourceParams{
			Resource:    p.Dst,
			Location:    fcDstAddressDW,
			LsbNum:      mhw.DefaultLsbNum,
			Writable:    true,
			CommandType: mhw.CmdTypeBltFastCopy,
		})
	})
	return err
}

// AddBlockCopyBlt emits XY_BLOCK_COPY_BLT. srcOffset and dstOffset are byte
// offsets added to the resource addresses.
func (i *Impl) AddBlockCopyBlt(cb *mhw.CommandBuffer, srcOffset, dstOffset uint32) error {
	p := &i.blockCopy
	if err := checkCopy(p); err != nil {
		return err
	}
	p.srcMocs = i.MOCS(mhw.UsageBltSource).Value
	p.dstMocs = i.MOCS(mhw.UsageBltDestination).Value

	_, err := i.Emit(cb, i.blockCopyLayout.New(), func(t *hwcmd.Template) error {
		if err := i.blockCopyFields.Apply(p, t); err != nil {
			return err
		}
		if err := i.AddResourceToCmd(cb, t, &mhw.ResourceParams{
			Resource:    p.Src,
			Offset:      uint64(srcOffset),
			Location:    bcSrcAddressDW,
			LsbNum:      mhw.DefaultLsbNum,
			Writable:    true,
			CommandType: mhw.CmdTypeBltBlockCopy,
		}); err != nil {
			return err
		}
		return i.AddResourceToCmd(cb, t, &mhw.ResourceParams{
			Resource:    p.Dst,
			Offset:      uint64(dstOffset),
			Location:    bcDstAddressDW,
			LsbNum:      mhw.DefaultLsbNum,
			Writable:    true,
			CommandType: mhw.CmdTypeBltBlockCopy,
		})
	})
	return err
}

// SwCtrlValue returns the BCS_SWCTRL register value for the current
// parameters.
func (i *Impl) SwCtrlValue() (uint32, error) {
	t := i.swCtrlLayout.New()
	if err := i.swCtrlFields.Apply(&i.swCtrl, t); err != nil {
		return 0, err
	}
	return t.DWord(0), nil
}

// AddBcsSwCtrl loads BCS_SWCTRL through MI_LOAD_REGISTER_IMM.
func (i *Impl) AddBcsSwCtrl(cb *mhw.CommandBuffer) error {
	_, err := i.Emit(cb, i.loadRegLayout.New(), func(t *hwcmd.Template) error {
		v, err := i.SwCtrlValue()
		if err != nil {
			return err
		}
		t.Set(lriRegisterOffset, BcsSwCtrlRegister>>2)
		t.Set(lriDataDWord, v)
		return nil
	})
	return err
}
