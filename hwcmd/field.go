// Package hwcmd holds fixed-layout hardware command templates and the
// ordered field-mapping engine that fills them from parameter records.
//
// A command is a fixed number of 32-bit words (DWords). Each Layout carries
// the reset pattern of one command kind for one hardware generation,
// including the opcode, length and client constants in DW0. Fields name bit
// ranges inside those words; writing a value wider than the field truncates
// it to the field width.
package hwcmd

import "fmt"

// Field names a bit range inside one DWord of a command.
// The range covers bits [Shift, Shift+Width).
type Field struct {
	Name  string
	DW    int
	Shift uint8
	Width uint8
}

// Bits returns the field covering bits hi:lo (inclusive) of DWord dw,
// using the same notation as hardware command references.
func Bits(name string, dw int, hi, lo uint8) Field {
	if hi < lo || hi > 31 {
		panic(fmt.Sprintf("hwcmd: bad bit range %d:%d for %s", hi, lo, name))
	}
	return Field{Name: name, DW: dw, Shift: lo, Width: hi - lo + 1}
}

// Bit returns a one-bit field at position bit of DWord dw.
func Bit(name string, dw int, bit uint8) Field {
	return Bits(name, dw, bit, bit)
}

// Mask returns the unshifted mask of the field.
func (f Field) Mask() uint32 {
	if f.Width >= 32 {
		return ^uint32(0)
	}
	return uint32(1)<<f.Width - 1
}

// Get extracts the field from words.
func (f Field) Get(words []uint32) uint32 {
	return (words[f.DW] >> f.Shift) & f.Mask()
}

// Set stores v mod 2^Width into the field, leaving the other bits intact.
func (f Field) Set(words []uint32, v uint32) {
	m := f.Mask() << f.Shift
	words[f.DW] = words[f.DW]&^m | (v<<f.Shift)&m
}

// Offset returns a copy of the field moved n DWords further. Repeated
// sub-structures (surface fields, address slots) are declared relative to
// their first DWord and placed with Offset.
func (f Field) Offset(n int) Field {
	f.DW += n
	return f
}

// String returns "Name[DW hi:lo]".
func (f Field) String() string {
	return fmt.Sprintf("%s[DW%d %d:%d]", f.Name, f.DW, int(f.Shift)+int(f.Width)-1, f.Shift)
}
