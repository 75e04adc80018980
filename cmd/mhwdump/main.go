// Command mhwdump builds a small BLT copy and a VDENC frame setup against the
// in-process OS layer and prints the resulting command buffers.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/mhw"
	"github.com/gogpu/mhw/blt"
	"github.com/gogpu/mhw/hwcmd"
	"github.com/gogpu/mhw/softos"
	"github.com/gogpu/mhw/vdenc"
)

func main() {
	var (
		bltGen   = flag.String("blt", "gen12", "BLT generation")
		vdencGen = flag.String("vdenc", "xe_lpm_plus", "VDENC generation")
		gfx      = flag.Bool("gfx", false, "write GPU addresses directly instead of a patch list")
		sim      = flag.Bool("sim", false, "report a simulator platform")
		width    = flag.Int("width", 1920, "frame width")
		height   = flag.Int("height", 1080, "frame height")
		verbose  = flag.Bool("v", false, "debug logging")
		list     = flag.Bool("list", false, "list generations and exit")
	)
	flag.Parse()

	if *list {
		fmt.Println("blt:  ", blt.Generations())
		fmt.Println("vdenc:", vdenc.Generations())
		return
	}
	if *verbose {
		mhw.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	sos := softos.New(softos.Config{UseGfxAddress: *gfx, Simulation: *sim})
	size := gputypes.Extent3D{Width: uint32(*width), Height: uint32(*height), DepthOrArrayLayers: 1}

	cb := mhw.NewCommandBuffer(1 << 16)
	if err := buildCopy(sos, cb, *bltGen, size); err != nil {
		log.Fatalf("blt: %v", err)
	}
	if err := buildEncode(sos, cb, *vdencGen, size); err != nil {
		log.Fatalf("vdenc: %v", err)
	}
	if err := sos.Submit(cb); err != nil {
		log.Fatalf("submit: %v", err)
	}

	dump(os.Stdout, cb)
	log.Printf("%d bytes, %d patches, %s", cb.Len(), len(cb.Patches()), sos.Stats())
}

// buildCopy copies a linear luma plane into a tiled one.
func buildCopy(sos *softos.OS, cb *mhw.CommandBuffer, gen string, size gputypes.Extent3D) error {
	impl, err := blt.New(gen, sos)
	if err != nil {
		return err
	}
	src, err := sos.NewSurface("copy_src", softos.SurfaceDesc{
		TextureFormat: gputypes.TextureFormatR8Unorm,
		Size:          size,
		Usage:         gputypes.TextureUsageCopySrc | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return err
	}
	dst, err := sos.NewSurface("copy_dst", softos.SurfaceDesc{
		TextureFormat: gputypes.TextureFormatR8Unorm,
		Size:          size,
		Tile:          mhw.Tile4,
		Usage:         gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return err
	}

	sw := impl.BcsSwCtrlParams(true)
	sw.TileYDestination = true
	if err := impl.AddBcsSwCtrl(cb); err != nil {
		return err
	}

	p := impl.BlockCopyBltParams(true)
	p.ColorDepth = blt.ColorDepth8Bit
	p.SrcPitch, p.DstPitch = src.Pitch, dst.Pitch
	p.DstRight, p.DstBottom = size.Width, size.Height
	p.Src, p.Dst = src, dst
	return impl.AddBlockCopyBlt(cb, 0, 0)
}

// buildEncode emits the VDENC state of one P frame with a single forward
// reference.
func buildEncode(sos *softos.OS, cb *mhw.CommandBuffer, gen string, size gputypes.Extent3D) error {
	impl, err := vdenc.New(gen, sos)
	if err != nil {
		return err
	}
	rw := gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopyDst
	surface := func(name string, s gputypes.Extent3D) (*mhw.Resource, error) {
		return sos.NewSurface(name, softos.SurfaceDesc{Format: mhw.FormatNV12, Size: s, Tile: mhw.Tile4, Usage: rw})
	}
	raw, err := surface("raw", size)
	if err != nil {
		return err
	}
	ref, err := surface("ref0", size)
	if err != nil {
		return err
	}
	ds4x := gputypes.Extent3D{Width: hwcmd.AlignCeil(size.Width/4, 32), Height: hwcmd.AlignCeil(size.Height/4, 32)}
	refDs, err := surface("ref0_4x", ds4x)
	if err != nil {
		return err
	}
	streamOut, err := sos.NewBuffer("stats", 64<<10, gputypes.BufferUsageStorage)
	if err != nil {
		return err
	}
	rowStore, err := sos.NewBuffer("row_store", 64<<10, gputypes.BufferUsageStorage)
	if err != nil {
		return err
	}

	impl.ControlStateParams(true).VdencInitialization = true

	pms := impl.PipeModeSelectParams(true)
	pms.StandardSelect = 1
	pms.FrameStatisticsStreamOut = true
	pms.TlbPrefetch = true

	impl.SrcSurfaceStateParams(true).SetFromResource(raw)
	impl.RefSurfaceStateParams(true).SetFromResource(ref)
	impl.DsRefSurfaceStateParams(true).Stage1 = vdenc.DsSurface{
		Width: ds4x.Width, Height: ds4x.Height, Pitch: refDs.Pitch, TileType: mhw.Tile4,
	}

	pba := impl.PipeBufAddrStateParams(true)
	pba.SurfaceRaw = raw
	pba.IntraRowStoreScratchBuffer = rowStore
	pba.StreamOutBuffer = streamOut
	pba.NumActiveRefL0 = 1
	pba.LowDelayB = true
	pba.Refs[0] = ref
	pba.RefsDsStage2[0] = refDs

	ts := impl.TileSliceStateParams(true)
	ts.CtbSize = 64
	ts.TileWidth, ts.TileHeight = size.Width, size.Height

	impl.WalkerStateParams(true).FirstSuperSlice = true

	flush := impl.PipelineFlushParams(true)
	flush.WaitDoneVDENC, flush.FlushVDENC = true, true

	for _, add := range []func(*mhw.CommandBuffer) error{
		impl.AddControlState,
		impl.AddPipeModeSelect,
		impl.AddSrcSurfaceState,
		impl.AddRefSurfaceState,
		impl.AddDsRefSurfaceState,
		impl.AddPipeBufAddrState,
		impl.AddTileSliceState,
		impl.AddWalkerState,
		impl.AddPipelineFlush,
	} {
		if err := add(cb); err != nil {
			return err
		}
	}
	return nil
}

func dump(w io.Writer, cb *mhw.CommandBuffer) {
	for i, dw := range cb.Words() {
		if i%4 == 0 {
			fmt.Fprintf(w, "%06x:", i*hwcmd.DWordSize)
		}
		fmt.Fprintf(w, " %08x", dw)
		if i%4 == 3 {
			fmt.Fprintln(w)
		}
	}
	if len(cb.Words())%4 != 0 {
		fmt.Fprintln(w)
	}
	for _, p := range cb.Patches() {
		fmt.Fprintf(w, "patch %06x %-24s %s +%#x\n", p.CmdOffset, p.CommandType, p.Resource, p.ResourceOffset)
	}
}
