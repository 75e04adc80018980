package softos

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/mhw"
	"github.com/gogpu/mhw/blt"
	"github.com/gogpu/mhw/hwcmd"
)

func TestNewDefaults(t *testing.T) {
	tests := []struct {
		name string
		mb   int
		want uint64
	}{
		{"zero", 0, DefaultMaxMemoryMB << 20},
		{"below minimum", MinMemoryMB - 1, DefaultMaxMemoryMB << 20},
		{"minimum", MinMemoryMB, MinMemoryMB << 20},
		{"custom", 64, 64 << 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(Config{MaxMemoryMB: tt.mb}).Stats()
			if s.TotalBytes != tt.want || s.AvailableBytes != tt.want || s.UsedBytes != 0 {
				t.Errorf("stats = %+v", s)
			}
		})
	}
}

func TestConfigFlags(t *testing.T) {
	o := New(Config{UseGfxAddress: true, Simulation: true})
	if !o.UsesGfxAddress() || !o.SimIsActive() {
		t.Error("flags not reported")
	}
	if o = New(Config{}); o.UsesGfxAddress() || o.SimIsActive() {
		t.Error("zero config reports flags")
	}
}

func TestBufferAddressesArePageAligned(t *testing.T) {
	o := New(Config{})
	a, err := o.NewBuffer("a", 100, gputypes.BufferUsageStorage)
	if err != nil {
		t.Fatal(err)
	}
	b, err := o.NewBuffer("b", PageSize+1, gputypes.BufferUsageCopySrc)
	if err != nil {
		t.Fatal(err)
	}
	if a.Handle != 1 || b.Handle != 2 {
		t.Errorf("handles = %d, %d", a.Handle, b.Handle)
	}

	addrA, _ := o.ResourceGfxAddress(a)
	addrB, _ := o.ResourceGfxAddress(b)
	if addrA != BaseAddress || addrB != BaseAddress+PageSize {
		t.Errorf("addresses = %#x, %#x", addrA, addrB)
	}
	if s := o.Stats(); s.UsedBytes != 3*PageSize || s.ResourceCount != 2 {
		t.Errorf("stats = %s", s)
	}
}

func TestBudget(t *testing.T) {
	o := New(Config{MaxMemoryMB: MinMemoryMB})
	if _, err := o.NewBuffer("big", MinMemoryMB<<20, gputypes.BufferUsageStorage); err != nil {
		t.Fatal(err)
	}
	_, err := o.NewBuffer("one more", 1, gputypes.BufferUsageStorage)
	if !errors.Is(err, ErrMemoryBudgetExceeded) {
		t.Errorf("err = %v, want ErrMemoryBudgetExceeded", err)
	}
	if _, err := o.NewBuffer("empty", 0, gputypes.BufferUsageStorage); !errors.Is(err, mhw.ErrInvalidParameter) {
		t.Errorf("empty buffer: err = %v", err)
	}
}

func TestBudgetRejectsHugeRequest(t *testing.T) {
	o := New(Config{})
	if _, err := o.NewBuffer("small", 2*PageSize, gputypes.BufferUsageStorage); err != nil {
		t.Fatal(err)
	}
	// used+size wraps around to zero.
	_, err := o.NewBuffer("huge", ^uint64(0)-2*PageSize, gputypes.BufferUsageStorage)
	if !errors.Is(err, ErrMemoryBudgetExceeded) {
		t.Fatalf("err = %v, want ErrMemoryBudgetExceeded", err)
	}

	s := o.Stats()
	if s.UsedBytes != 2*PageSize || s.ResourceCount != 1 {
		t.Errorf("stats after rejected request = %s", s)
	}
	next, err := o.NewBuffer("next", 1, gputypes.BufferUsageStorage)
	if err != nil {
		t.Fatal(err)
	}
	if addr, _ := o.ResourceGfxAddress(next); addr != BaseAddress+2*PageSize {
		t.Errorf("next addr = %#x", addr)
	}
}

func TestFreeReleasesBudget(t *testing.T) {
	o := New(Config{})
	r, _ := o.NewBuffer("tmp", PageSize, gputypes.BufferUsageStorage)
	if err := o.Free(r); err != nil {
		t.Fatal(err)
	}
	if s := o.Stats(); s.UsedBytes != 0 || s.ResourceCount != 0 {
		t.Errorf("stats after free = %s", s)
	}
	if _, err := o.ResourceGfxAddress(r); !errors.Is(err, ErrResourceNotFound) {
		t.Errorf("address of freed: err = %v", err)
	}
	if err := o.Free(r); !errors.Is(err, ErrResourceNotFound) {
		t.Errorf("double free: err = %v", err)
	}

	// Address ranges are not reused.
	n, _ := o.NewBuffer("next", PageSize, gputypes.BufferUsageStorage)
	if addr, _ := o.ResourceGfxAddress(n); addr != BaseAddress+PageSize {
		t.Errorf("next addr = %#x", addr)
	}
}

func TestForeignResource(t *testing.T) {
	o := New(Config{})
	mine, _ := o.NewBuffer("mine", 1, gputypes.BufferUsageStorage)
	forged := &mhw.Resource{Name: "forged", Handle: mine.Handle}

	if _, err := o.ResourceInfo(forged); !errors.Is(err, ErrResourceNotFound) {
		t.Errorf("forged: err = %v", err)
	}
	if _, err := o.ResourceGfxAddress(nil); !errors.Is(err, mhw.ErrNullPointer) {
		t.Errorf("nil: err = %v", err)
	}
	if err := o.RegisterResource(&mhw.Resource{Name: "null"}, false); !errors.Is(err, mhw.ErrNullPointer) {
		t.Errorf("null handle: err = %v", err)
	}
}

func TestSurfaceLayout(t *testing.T) {
	tests := []struct {
		name     string
		desc     SurfaceDesc
		pitch    uint32
		uyOffset uint32
		size     uint64
		format   mhw.Format
	}{
		{
			name:     "nv12",
			desc:     SurfaceDesc{Format: mhw.FormatNV12, Size: gputypes.Extent3D{Width: 1920, Height: 1080}},
			pitch:    1920,
			uyOffset: 1080,
			size:     1920 * (1080 + 540),
			format:   mhw.FormatNV12,
		},
		{
			name:     "p010 odd height",
			desc:     SurfaceDesc{Format: mhw.FormatP010, Size: gputypes.Extent3D{Width: 100, Height: 33}},
			pitch:    256,
			uyOffset: 33,
			size:     256 * (33 + 17),
			format:   mhw.FormatP010,
		},
		{
			name:   "rgba from texture format",
			desc:   SurfaceDesc{TextureFormat: gputypes.TextureFormatRGBA8Unorm, Size: gputypes.Extent3D{Width: 10, Height: 4}},
			pitch:  64,
			size:   64 * 4,
			format: mhw.FormatA8B8G8R8,
		},
		{
			name: "explicit pitch and offset",
			desc: SurfaceDesc{
				Format: mhw.FormatAYUV, Size: gputypes.Extent3D{Width: 16, Height: 16},
				Pitch: 128, YPlaneOffset: 4096,
			},
			pitch:  128,
			size:   4096 + 128*16,
			format: mhw.FormatAYUV,
		},
		{
			name:   "y210 packed 4:2:2",
			desc:   SurfaceDesc{Format: mhw.FormatY210, Size: gputypes.Extent3D{Width: 64, Height: 4}},
			pitch:  256,
			size:   256 * 4,
			format: mhw.FormatY210,
		},
		{
			name:   "y416",
			desc:   SurfaceDesc{Format: mhw.FormatY416, Size: gputypes.Extent3D{Width: 64, Height: 4}},
			pitch:  512,
			size:   512 * 4,
			format: mhw.FormatY416,
		},
		{
			name:     "444p array",
			desc:     SurfaceDesc{Format: mhw.Format444P, Size: gputypes.Extent3D{Width: 64, Height: 8, DepthOrArrayLayers: 2}},
			pitch:    64,
			uyOffset: 8,
			size:     64 * 24 * 2,
			format:   mhw.Format444P,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := New(Config{})
			r, err := o.NewSurface(tt.name, tt.desc)
			if err != nil {
				t.Fatal(err)
			}
			if r.Pitch != tt.pitch || r.Size != tt.size || r.Format != tt.format {
				t.Errorf("resource = pitch %d size %d format %s", r.Pitch, r.Size, r.Format)
			}
			info, err := o.ResourceInfo(r)
			if err != nil {
				t.Fatal(err)
			}
			if info.Pitch != tt.pitch || info.UYOffset != tt.uyOffset || info.VYOffset != tt.uyOffset {
				t.Errorf("info = %+v", info)
			}
			if info.YPlaneOffset != tt.desc.YPlaneOffset || info.Width != tt.desc.Size.Width {
				t.Errorf("info = %+v", info)
			}
		})
	}
}

func TestSurfaceErrors(t *testing.T) {
	o := New(Config{})
	bad := []SurfaceDesc{
		{Size: gputypes.Extent3D{Width: 4, Height: 4}},
		{TextureFormat: gputypes.TextureFormatDepth24PlusStencil8, Size: gputypes.Extent3D{Width: 4, Height: 4}},
		{Format: mhw.FormatNV12, Size: gputypes.Extent3D{Width: 0, Height: 4}},
	}
	for i, d := range bad {
		if _, err := o.NewSurface("bad", d); !errors.Is(err, mhw.ErrInvalidParameter) {
			t.Errorf("desc %d: err = %v", i, err)
		}
	}
}

func TestRegisterChecksWriteAccess(t *testing.T) {
	o := New(Config{})
	ro, _ := o.NewBuffer("ro", 1, gputypes.BufferUsageCopySrc|gputypes.BufferUsageUniform)
	rw, _ := o.NewSurface("rw", SurfaceDesc{
		Format: mhw.FormatNV12, Size: gputypes.Extent3D{Width: 64, Height: 64},
		Usage: gputypes.TextureUsageRenderAttachment,
	})

	if err := o.RegisterResource(ro, true); !errors.Is(err, ErrReadOnlyResource) {
		t.Errorf("write to ro: err = %v", err)
	}
	if err := o.RegisterResource(ro, false); err != nil {
		t.Errorf("read ro: %v", err)
	}
	if err := o.RegisterResource(rw, true); err != nil {
		t.Errorf("write rw: %v", err)
	}
	// A later read does not downgrade a write.
	if err := o.RegisterResource(rw, false); err != nil {
		t.Fatal(err)
	}

	if ref, wr := o.Referenced(ro); !ref || wr {
		t.Errorf("ro referenced=%v written=%v", ref, wr)
	}
	if ref, wr := o.Referenced(rw); !ref || !wr {
		t.Errorf("rw referenced=%v written=%v", ref, wr)
	}
	if s := o.Stats(); s.Referenced != 2 {
		t.Errorf("referenced = %d", s.Referenced)
	}
}

func TestSubmitResolvesPatchList(t *testing.T) {
	o := New(Config{})
	impl, err := blt.New("gen12", o)
	if err != nil {
		t.Fatal(err)
	}

	src, err := o.NewBuffer("src", 64*256, gputypes.BufferUsageCopySrc|gputypes.BufferUsageCopyDst)
	if err != nil {
		t.Fatal(err)
	}
	dst, err := o.NewSurface("dst", SurfaceDesc{
		TextureFormat: gputypes.TextureFormatR8Unorm,
		Size:          gputypes.Extent3D{Width: 256, Height: 64},
		Usage:         gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		t.Fatal(err)
	}

	p := impl.FastCopyBltParams(true)
	p.ColorDepth = blt.ColorDepth8Bit
	p.SrcPitch, p.DstPitch = 256, 256
	p.DstRight, p.DstBottom = 64, 64
	p.Src, p.Dst = src, dst

	cb := mhw.NewCommandBuffer(4096)
	if err := impl.AddFastCopyBlt(cb); err != nil {
		t.Fatal(err)
	}
	if len(cb.Patches()) != 2 {
		t.Fatalf("patches = %d, want 2", len(cb.Patches()))
	}
	before := cb.Words()
	for _, e := range cb.Patches() {
		dw := e.CmdOffset / hwcmd.DWordSize
		if before[dw] != 0 || before[dw+1] != 0 {
			t.Errorf("DW%d written before submit: %#x %#x", dw, before[dw], before[dw+1])
		}
	}

	if err := o.Submit(cb); err != nil {
		t.Fatal(err)
	}
	w := cb.Words()
	srcAddr, _ := o.ResourceGfxAddress(src)
	dstAddr, _ := o.ResourceGfxAddress(dst)
	got := map[uint64]bool{}
	for _, e := range cb.Patches() {
		dw := e.CmdOffset / hwcmd.DWordSize
		got[uint64(w[dw+1])<<32|uint64(w[dw])] = true
	}
	if !got[srcAddr] || !got[dstAddr] {
		t.Errorf("patched addresses = %v, want %#x and %#x", got, srcAddr, dstAddr)
	}
	if s := o.Stats(); s.Referenced != 0 {
		t.Errorf("references not cleared: %d", s.Referenced)
	}
}

func TestSubmitErrors(t *testing.T) {
	o := New(Config{})
	if err := o.Submit(nil); !errors.Is(err, mhw.ErrNullPointer) {
		t.Errorf("nil: err = %v", err)
	}

	r, _ := o.NewBuffer("gone", 1, gputypes.BufferUsageStorage)
	cb := mhw.NewCommandBuffer(64)
	cb.StagePatch(mhw.PatchEntry{Resource: r, CmdOffset: 4, LsbNum: mhw.DefaultLsbNum})
	if _, err := cb.AddCommand(hwcmd.NewLayout("CMD", 0, 0, 0).New()); err != nil {
		t.Fatal(err)
	}
	if err := o.Free(r); err != nil {
		t.Fatal(err)
	}
	if err := o.Submit(cb); !errors.Is(err, ErrResourceNotFound) {
		t.Errorf("freed resource: err = %v", err)
	}
}

func TestStatsString(t *testing.T) {
	s := MemoryStats{TotalBytes: 4 << 20, UsedBytes: 1 << 20, ResourceCount: 3, Utilization: 0.25}
	if got := s.String(); !strings.Contains(got, "25.0% used") || !strings.Contains(got, "3 resources") {
		t.Errorf("String = %q", got)
	}
}
