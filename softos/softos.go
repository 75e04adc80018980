// Package softos is an in-process OS/resource layer for the command
// builders. It hands out resources in a virtual GPU address space, answers
// address and plane-layout queries and resolves patch lists at submission.
//
// No memory is backed; only addresses and layouts are tracked.
package softos

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/mhw"
	"github.com/gogpu/mhw/hwcmd"
)

// Errors returned by OS.
var (
	// ErrMemoryBudgetExceeded is returned when an allocation would exceed the
	// address-space budget.
	ErrMemoryBudgetExceeded = errors.New("softos: memory budget exceeded")

	// ErrResourceNotFound is returned for resources this OS did not allocate
	// or already freed.
	ErrResourceNotFound = errors.New("softos: resource not found")

	// ErrReadOnlyResource is returned when a resource allocated without a
	// writable usage is registered for write access.
	ErrReadOnlyResource = errors.New("softos: write access to read-only resource")
)

// Default limits.
const (
	// DefaultMaxMemoryMB is the default address-space budget (256 MB).
	DefaultMaxMemoryMB = 256

	// MinMemoryMB is the smallest accepted budget (16 MB).
	MinMemoryMB = 16

	// PageSize is the allocation granularity.
	PageSize = 4096

	// BaseAddress is the GPU virtual address of the first allocation.
	BaseAddress uint64 = 0x1_0000_0000

	// pitchAlign is the row alignment of surfaces allocated without an
	// explicit pitch.
	pitchAlign = 64
)

// Config configures an OS.
type Config struct {
	// MaxMemoryMB is the address-space budget. Values below MinMemoryMB
	// select DefaultMaxMemoryMB.
	MaxMemoryMB int

	// UseGfxAddress makes command builders write addresses directly instead
	// of recording a patch list.
	UseGfxAddress bool

	// Simulation reports a simulator platform, which turns row-store caching
	// off by default.
	Simulation bool
}

// MemoryStats reports address-space usage.
type MemoryStats struct {
	TotalBytes     uint64
	UsedBytes      uint64
	AvailableBytes uint64
	ResourceCount  int
	// Referenced is the number of resources registered since the last
	// Submit.
	Referenced  int
	Utilization float64
}

// String returns a human-readable summary.
func (s MemoryStats) String() string {
	return fmt.Sprintf("Memory[%.1f%% used, %d/%d KB, %d resources, %d referenced]",
		s.Utilization*100, s.UsedBytes/1024, s.TotalBytes/1024, s.ResourceCount, s.Referenced)
}

type entry struct {
	res      *mhw.Resource
	addr     uint64
	size     uint64
	info     mhw.SurfaceInfo
	writable bool
}

// OS implements mhw.OSInterface over a bump-allocated address space.
// Freed ranges are not reused.
//
// OS is safe for concurrent use.
type OS struct {
	mu sync.RWMutex

	useGfx bool
	sim    bool

	budget uint64
	used   uint64
	next   uint64

	lastHandle mhw.Handle
	entries    map[mhw.Handle]*entry
	referenced map[mhw.Handle]bool
}

var _ mhw.OSInterface = (*OS)(nil)

// New returns an empty OS.
func New(cfg Config) *OS {
	maxMB := cfg.MaxMemoryMB
	if maxMB < MinMemoryMB {
		maxMB = DefaultMaxMemoryMB
	}
	return &OS{
		useGfx:     cfg.UseGfxAddress,
		sim:        cfg.Simulation,
		budget:     uint64(maxMB) * 1024 * 1024,
		next:       BaseAddress,
		entries:    make(map[mhw.Handle]*entry),
		referenced: make(map[mhw.Handle]bool),
	}
}

// UsesGfxAddress implements mhw.OSInterface.
func (o *OS) UsesGfxAddress() bool { return o.useGfx }

// SimIsActive implements mhw.OSInterface.
func (o *OS) SimIsActive() bool { return o.sim }

func (o *OS) alloc(r *mhw.Resource, info mhw.SurfaceInfo, writable bool) error {
	size := hwcmd.AlignCeil(r.Size, PageSize)
	if size == 0 {
		return fmt.Errorf("softos: allocate %s: empty resource: %w", r.Name, mhw.ErrInvalidParameter)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if size > o.budget-o.used {
		return fmt.Errorf("%w: %s needs %d KB, %d KB free",
			ErrMemoryBudgetExceeded, r.Name, size/1024, (o.budget-o.used)/1024)
	}
	o.lastHandle++
	r.Handle = o.lastHandle
	o.entries[r.Handle] = &entry{res: r, addr: o.next, size: size, info: info, writable: writable}
	o.next += size
	o.used += size

	mhw.Logger().Debug("softos: allocated", "resource", r.Name, "handle", r.Handle,
		"addr", fmt.Sprintf("%#x", o.next-size), "size", size)
	return nil
}

// NewBuffer allocates a linear buffer of size bytes.
func (o *OS) NewBuffer(name string, size uint64, usage gputypes.BufferUsage) (*mhw.Resource, error) {
	r := &mhw.Resource{Name: name, Size: size}
	writable := usage&(gputypes.BufferUsageCopyDst|gputypes.BufferUsageStorage|gputypes.BufferUsageMapWrite) != 0
	if err := o.alloc(r, mhw.SurfaceInfo{}, writable); err != nil {
		return nil, err
	}
	return r, nil
}

// SurfaceDesc describes a surface allocation.
type SurfaceDesc struct {
	// Format is the media format. When FormatInvalid, TextureFormat is
	// translated instead.
	Format        mhw.Format
	TextureFormat gputypes.TextureFormat

	Size  gputypes.Extent3D
	Tile  mhw.TileType
	Usage gputypes.TextureUsage

	// Pitch is the row size in bytes; zero derives it from the width.
	Pitch uint32
	// YPlaneOffset is the byte offset of the luma plane inside the
	// allocation.
	YPlaneOffset uint32
}

// chromaRows returns the rows of chroma stored after the luma plane.
func chromaRows(f mhw.Format, h uint32) uint32 {
	switch f {
	case mhw.FormatNV12, mhw.FormatNV21, mhw.FormatP010, mhw.FormatP016,
		mhw.FormatIMC1, mhw.FormatIMC2, mhw.FormatIMC3, mhw.FormatIMC4:
		return (h + 1) / 2
	case mhw.FormatNV11, mhw.FormatP208:
		return h
	case mhw.Format444P:
		return 2 * h
	default:
		return 0
	}
}

// NewSurface allocates a 2D surface. Chroma planes of planar formats
// follow the luma plane with the same pitch.
func (o *OS) NewSurface(name string, d SurfaceDesc) (*mhw.Resource, error) {
	f := d.Format
	if f == mhw.FormatInvalid {
		f = mhw.FormatFromTexture(d.TextureFormat)
	}
	if f == mhw.FormatInvalid || d.Size.Width == 0 || d.Size.Height == 0 {
		return nil, fmt.Errorf("softos: surface %s (%s %dx%d): %w",
			name, f, d.Size.Width, d.Size.Height, mhw.ErrInvalidParameter)
	}
	pitch := d.Pitch
	if pitch == 0 {
		pitch = hwcmd.AlignCeil(d.Size.Width*f.BytesPerPixel(), pitchAlign)
	}
	layers := max(d.Size.DepthOrArrayLayers, 1)
	rows := d.Size.Height + chromaRows(f, d.Size.Height)

	info := mhw.SurfaceInfo{
		Format:       f,
		Tile:         d.Tile,
		Width:        d.Size.Width,
		Height:       d.Size.Height,
		Pitch:        pitch,
		YPlaneOffset: d.YPlaneOffset,
	}
	if chromaRows(f, d.Size.Height) > 0 {
		info.UYOffset = d.Size.Height
		info.VYOffset = d.Size.Height
	}
	r := &mhw.Resource{
		Name:   name,
		Size:   uint64(d.YPlaneOffset) + uint64(pitch)*uint64(rows)*uint64(layers),
		Format: f,
		Tile:   d.Tile,
		Width:  d.Size.Width,
		Height: d.Size.Height,
		Pitch:  pitch,
	}
	writable := d.Usage&(gputypes.TextureUsageCopyDst|gputypes.TextureUsageRenderAttachment) != 0
	if err := o.alloc(r, info, writable); err != nil {
		return nil, err
	}
	return r, nil
}

func (o *OS) lookup(r *mhw.Resource) (*entry, error) {
	if mhw.IsNull(r) {
		return nil, fmt.Errorf("softos: %s: %w", r, mhw.ErrNullPointer)
	}
	e, ok := o.entries[r.Handle]
	if !ok || e.res != r {
		return nil, fmt.Errorf("softos: %s: %w", r, ErrResourceNotFound)
	}
	return e, nil
}

// Free releases r. Its address range is not reused.
func (o *OS) Free(r *mhw.Resource) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	e, err := o.lookup(r)
	if err != nil {
		return err
	}
	delete(o.entries, r.Handle)
	delete(o.referenced, r.Handle)
	o.used -= e.size
	return nil
}

// ResourceGfxAddress implements mhw.OSInterface.
func (o *OS) ResourceGfxAddress(r *mhw.Resource) (uint64, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	e, err := o.lookup(r)
	if err != nil {
		return 0, err
	}
	return e.addr, nil
}

// RegisterResource implements mhw.OSInterface.
func (o *OS) RegisterResource(r *mhw.Resource, writable bool) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	e, err := o.lookup(r)
	if err != nil {
		return err
	}
	if writable && !e.writable {
		return fmt.Errorf("softos: %s: %w", r, ErrReadOnlyResource)
	}
	o.referenced[r.Handle] = o.referenced[r.Handle] || writable
	return nil
}

// ResourceInfo implements mhw.OSInterface.
func (o *OS) ResourceInfo(r *mhw.Resource) (mhw.SurfaceInfo, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	e, err := o.lookup(r)
	if err != nil {
		return mhw.SurfaceInfo{}, err
	}
	return e.info, nil
}

// Referenced reports whether r was registered since the last Submit, and
// whether any registration was a write.
func (o *OS) Referenced(r *mhw.Resource) (referenced, written bool) {
	if r == nil {
		return false, false
	}
	o.mu.RLock()
	defer o.mu.RUnlock()
	written, referenced = o.referenced[r.Handle]
	return referenced, written
}

// Submit resolves the patch list of cb into its bytes and ends the
// command-buffer scope: registrations are cleared. The first failing entry
// stops the pass.
func (o *OS) Submit(cb *mhw.CommandBuffer) error {
	if cb == nil {
		return fmt.Errorf("softos: submit: %w", mhw.ErrNullPointer)
	}
	for i, p := range cb.Patches() {
		base, err := o.ResourceGfxAddress(p.Resource)
		if err != nil {
			return fmt.Errorf("softos: patch %d: %w", i, err)
		}
		if err := cb.WriteAddress(p.CmdOffset, base+p.ResourceOffset, p.LsbNum); err != nil {
			return fmt.Errorf("softos: patch %d: %w", i, err)
		}
	}

	o.mu.Lock()
	clear(o.referenced)
	o.mu.Unlock()

	mhw.Logger().Debug("softos: submitted", "bytes", cb.Len(), "patches", len(cb.Patches()))
	return nil
}

// Stats returns the current usage.
func (o *OS) Stats() MemoryStats {
	o.mu.RLock()
	defer o.mu.RUnlock()

	return MemoryStats{
		TotalBytes:     o.budget,
		UsedBytes:      o.used,
		AvailableBytes: o.budget - o.used,
		ResourceCount:  len(o.entries),
		Referenced:     len(o.referenced),
		Utilization:    float64(o.used) / float64(o.budget),
	}
}
