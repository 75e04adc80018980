package mhw

import "fmt"

// Handle identifies a resource allocated by the OS layer.
// The zero value is InvalidHandle.
type Handle uint32

// InvalidHandle marks a resource that was never allocated.
const InvalidHandle Handle = 0

// IsValid reports whether h refers to an allocated resource.
func (h Handle) IsValid() bool { return h != InvalidHandle }

// TileType is the memory tiling of a surface.
type TileType uint8

const (
	TileLinear TileType = iota
	TileX
	TileY
	TileYf
	TileYs
	Tile4
	Tile64
)

var tileTypeNames = [...]string{
	TileLinear: "Linear",
	TileX:      "X",
	TileY:      "Y",
	TileYf:     "Yf",
	TileYs:     "Ys",
	Tile4:      "4",
	Tile64:     "64",
}

// String returns the tile type name.
func (t TileType) String() string {
	if int(t) < len(tileTypeNames) {
		return tileTypeNames[t]
	}
	return "Unknown"
}

// Resource is a GPU memory object referenced by commands: a buffer or a
// surface. Surface geometry fields are zero for plain buffers.
type Resource struct {
	Name   string
	Handle Handle
	Size   uint64

	Format Format
	Tile   TileType
	Width  uint32
	Height uint32
	Pitch  uint32

	// GmmTileMode carries the memory manager's tile mode when the
	// allocation was made with explicit tile control, and GmmTileEnabled
	// reports whether it should be used instead of Tile.
	GmmTileMode    uint32
	GmmTileEnabled bool

	// CompressionMode is the media compression state of the surface.
	CompressionMode CompressionMode
	// CompressionFormat is the hardware compression format code.
	CompressionFormat uint32
}

// IsNull reports whether r denotes an absent resource: a nil pointer or a
// resource whose handle was never assigned. Null resources are skipped when
// patching commands.
func IsNull(r *Resource) bool {
	return r == nil || !r.Handle.IsValid()
}

func (r *Resource) String() string {
	if r == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s#%d", r.Name, r.Handle)
}

// CompressionMode is the media memory compression state of a resource.
type CompressionMode uint8

const (
	CompressionNone CompressionMode = iota
	// CompressionHorizontal is media compression (MC).
	CompressionHorizontal
	// CompressionRender is render compression (RC).
	CompressionRender
)

// Enabled reports whether any compression is active.
func (m CompressionMode) Enabled() bool { return m != CompressionNone }

// SurfaceInfo describes the plane layout of a surface as reported by the OS
// layer.
type SurfaceInfo struct {
	Format Format
	Tile   TileType
	Width  uint32
	Height uint32
	Pitch  uint32

	// YPlaneOffset is the byte offset of the luma plane base inside the
	// resource.
	YPlaneOffset uint32
	// UYOffset and VYOffset are the row offsets of the chroma planes.
	UYOffset uint32
	VYOffset uint32
}

// CommandType tags a resource reference with the command it belongs to.
// The OS layer uses it for statistics and validation.
type CommandType uint8

const (
	CmdTypeUnknown CommandType = iota
	CmdTypeBltFastCopy
	CmdTypeBltBlockCopy
	CmdTypeVdencPipeBufAddr
	CmdTypeVdencSrcSurface
	CmdTypeVdencRefSurface
	CmdTypeVdencDsRefSurface
	CmdTypeVdencTileSlice
)

var commandTypeNames = [...]string{
	CmdTypeUnknown:           "Unknown",
	CmdTypeBltFastCopy:       "BltFastCopy",
	CmdTypeBltBlockCopy:      "BltBlockCopy",
	CmdTypeVdencPipeBufAddr:  "VdencPipeBufAddr",
	CmdTypeVdencSrcSurface:   "VdencSrcSurface",
	CmdTypeVdencRefSurface:   "VdencRefSurface",
	CmdTypeVdencDsRefSurface: "VdencDsRefSurface",
	CmdTypeVdencTileSlice:    "VdencTileSlice",
}

// String returns the command type name.
func (c CommandType) String() string {
	if int(c) < len(commandTypeNames) {
		return commandTypeNames[c]
	}
	return "Unknown"
}

// DefaultLsbNum is the number of low address bits cleared for page-aligned
// references.
const DefaultLsbNum = 12

// ResourceParams describes one resource reference to embed in a command.
// It is built per reference and consumed immediately by a Resolver.
type ResourceParams struct {
	Resource *Resource

	// Offset is the byte offset inside the resource.
	Offset uint64

	// Location is the DWord index of the lower address word in the command.
	// The upper address word is written at Location+1.
	Location int

	// LsbNum is the number of low bits of the lower address word that belong
	// to the command and are preserved.
	LsbNum uint8

	// Writable marks a write access; the OS layer invalidates caches for it.
	Writable bool

	CommandType CommandType
}

// OSInterface is the OS/resource layer the command builders depend on.
// softos provides an in-process implementation.
type OSInterface interface {
	// UsesGfxAddress reports whether commands carry GPU virtual addresses
	// directly. When false, addresses are resolved from a patch list at
	// submission.
	UsesGfxAddress() bool

	// SimIsActive reports whether the driver runs against a simulator.
	SimIsActive() bool

	// ResourceGfxAddress returns the GPU virtual address of r.
	ResourceGfxAddress(r *Resource) (uint64, error)

	// RegisterResource records that the command buffer being built
	// references r.
	RegisterResource(r *Resource, writable bool) error

	// ResourceInfo returns the plane layout of r.
	ResourceInfo(r *Resource) (SurfaceInfo, error)
}
