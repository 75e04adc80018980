package mhw

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/mhw/hwcmd"
)

// PatchEntry is a deferred address write recorded in patch-list mode.
// The submission pass writes gfx(Resource)+ResourceOffset at CmdOffset,
// keeping the low LsbNum bits already present in the command.
type PatchEntry struct {
	Resource       *Resource
	CmdOffset      int
	ResourceOffset uint64
	LsbNum         uint8
	Writable       bool
	CommandType    CommandType
}

// ResourceRef is a resource access staged for the command being built. It
// is registered with the OS layer only when the command commits.
type ResourceRef struct {
	Resource *Resource
	Writable bool
}

// CmdLocation identifies a command previously appended to a buffer.
type CmdLocation struct {
	Offset int
	Size   int
}

// CommandBuffer is an append-only GPU instruction stream of fixed capacity.
//
// Commands are appended whole: AddCommand either writes every byte of the
// command or returns ErrCommandBufferFull without touching the buffer.
// Patch entries staged while a command is being built are committed with it.
//
// CommandBuffer is not safe for concurrent use.
type CommandBuffer struct {
	capacity int
	buf      []byte
	patches  []PatchEntry
	pending  []PatchEntry
	refs     []ResourceRef
	last     CmdLocation
}

// NewCommandBuffer returns an empty buffer holding at most capacity bytes.
func NewCommandBuffer(capacity int) *CommandBuffer {
	return &CommandBuffer{
		capacity: capacity,
		buf:      make([]byte, 0, capacity),
	}
}

// Len returns the number of bytes written.
func (cb *CommandBuffer) Len() int { return len(cb.buf) }

// Cap returns the buffer capacity in bytes.
func (cb *CommandBuffer) Cap() int { return cb.capacity }

// Remaining returns the free space in bytes.
func (cb *CommandBuffer) Remaining() int { return cb.capacity - len(cb.buf) }

// Bytes returns the written bytes. The slice aliases the buffer.
func (cb *CommandBuffer) Bytes() []byte { return cb.buf }

// Words decodes the written bytes as little-endian DWords.
func (cb *CommandBuffer) Words() []uint32 {
	words := make([]uint32, len(cb.buf)/hwcmd.DWordSize)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(cb.buf[i*hwcmd.DWordSize:])
	}
	return words
}

// Patches returns the committed patch entries in recording order.
func (cb *CommandBuffer) Patches() []PatchEntry { return cb.patches }

// Last returns the location of the most recently appended command.
func (cb *CommandBuffer) Last() CmdLocation { return cb.last }

// StagePatch records a patch entry for the command currently being built.
// It is committed by the next successful AddCommand and dropped by Rollback.
func (cb *CommandBuffer) StagePatch(e PatchEntry) {
	cb.pending = append(cb.pending, e)
}

// StageRef records a resource access of the command currently being built.
func (cb *CommandBuffer) StageRef(r *Resource, writable bool) {
	cb.refs = append(cb.refs, ResourceRef{Resource: r, Writable: writable})
}

// StagedRefs returns the resource accesses staged since the last
// AddCommand, in staging order.
func (cb *CommandBuffer) StagedRefs() []ResourceRef { return cb.refs }

// Rollback drops the patch entries and resource accesses staged since the
// last AddCommand.
func (cb *CommandBuffer) Rollback() {
	cb.pending = cb.pending[:0]
	cb.refs = cb.refs[:0]
}

// AddCommand appends the command bytes of t and commits staged patches.
func (cb *CommandBuffer) AddCommand(t *hwcmd.Template) (CmdLocation, error) {
	if t == nil {
		cb.Rollback()
		return CmdLocation{}, fmt.Errorf("add command: %w", ErrNullPointer)
	}
	size := t.ByteSize()
	if size > cb.Remaining() {
		cb.Rollback()
		return CmdLocation{}, fmt.Errorf("add %s (%d bytes, %d free): %w",
			t.Name(), size, cb.Remaining(), ErrCommandBufferFull)
	}

	loc := CmdLocation{Offset: len(cb.buf), Size: size}
	cb.buf = t.AppendTo(cb.buf)
	cb.patches = append(cb.patches, cb.pending...)
	cb.pending = cb.pending[:0]
	cb.refs = cb.refs[:0]
	cb.last = loc

	if debugEnabled() {
		Logger().Debug("mhw: command added", "cmd", t.Name(), "offset", loc.Offset, "size", size)
	}
	return loc, nil
}

// Amend rewrites field f of the command at loc. It is used for bits that are
// only known after the command was emitted, such as memory compression.
func (cb *CommandBuffer) Amend(loc CmdLocation, f hwcmd.Field, v uint32) error {
	off := loc.Offset + f.DW*hwcmd.DWordSize
	if loc.Offset < 0 || loc.Offset%hwcmd.DWordSize != 0 || loc.Offset+loc.Size > len(cb.buf) ||
		f.DW < 0 || (f.DW+1)*hwcmd.DWordSize > loc.Size {
		return fmt.Errorf("amend %s at %d: %w", f, loc.Offset, ErrInvalidLocation)
	}
	words := []uint32{binary.LittleEndian.Uint32(cb.buf[off:])}
	f.Offset(-f.DW).Set(words, v)
	binary.LittleEndian.PutUint32(cb.buf[off:], words[0])
	return nil
}

// DWordAt returns the DWord at byte offset off.
func (cb *CommandBuffer) DWordAt(off int) uint32 {
	return binary.LittleEndian.Uint32(cb.buf[off:])
}

// WriteAddress writes a resolved address at byte offset off, keeping the low
// lsbNum bits of the lower word and the upper 16 bits of the upper word.
// The submission pass of a patch-list OS layer calls it.
func (cb *CommandBuffer) WriteAddress(off int, addr uint64, lsbNum uint8) error {
	if off < 0 || off%hwcmd.DWordSize != 0 || off+2*hwcmd.DWordSize > len(cb.buf) {
		return fmt.Errorf("write address at %d: %w", off, ErrInvalidLocation)
	}
	lo, hi := cb.DWordAt(off), cb.DWordAt(off+hwcmd.DWordSize)
	lo, hi = PatchAddress(lo, hi, addr, lsbNum)
	binary.LittleEndian.PutUint32(cb.buf[off:], lo)
	binary.LittleEndian.PutUint32(cb.buf[off+hwcmd.DWordSize:], hi)
	return nil
}

// PatchAddress merges addr into an address word pair. The low lsbNum bits
// already in lo are control bits and are OR-ed with the address; hi receives
// address bits 47:32.
func PatchAddress(lo, hi uint32, addr uint64, lsbNum uint8) (uint32, uint32) {
	lowMask := uint32(1)<<lsbNum - 1
	lo = lo&lowMask | uint32(addr)
	hi = hi&^0xffff | uint32(addr>>32)&0xffff
	return lo, hi
}
