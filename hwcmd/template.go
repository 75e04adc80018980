package hwcmd

import (
	"encoding/binary"
	"fmt"
)

// DWordSize is the size in bytes of one command word.
const DWordSize = 4

// Layout is the binary definition of one command kind on one hardware
// generation. len(Reset) is the command's DWord count; it never changes
// after the layout is built.
type Layout struct {
	Name  string
	Reset []uint32
}

// NewLayout returns a layout with the given reset words. The reset slice is
// copied. It panics on an empty reset pattern.
func NewLayout(name string, reset ...uint32) *Layout {
	if len(reset) == 0 {
		panic("hwcmd: layout " + name + " has no words")
	}
	r := make([]uint32, len(reset))
	copy(r, reset)
	return &Layout{Name: name, Reset: r}
}

// DWords returns the number of words in the command.
func (l *Layout) DWords() int { return len(l.Reset) }

// ByteSize returns the size of the command in bytes.
func (l *Layout) ByteSize() int { return len(l.Reset) * DWordSize }

// New returns a template holding the layout's reset pattern.
func (l *Layout) New() *Template {
	w := make([]uint32, len(l.Reset))
	copy(w, l.Reset)
	return &Template{layout: l, words: w}
}

// Check verifies that every field lies inside the layout. Layout tables call
// it once at init so a typo in a DWord index fails loudly.
func (l *Layout) Check(fields ...Field) {
	for _, f := range fields {
		if f.DW < 0 || f.DW >= len(l.Reset) {
			panic(fmt.Sprintf("hwcmd: %s: field %s outside %d words", l.Name, f, len(l.Reset)))
		}
		if int(f.Shift)+int(f.Width) > 32 {
			panic(fmt.Sprintf("hwcmd: %s: field %s crosses a word boundary", l.Name, f))
		}
	}
}

// Template is one in-flight command: a copy of a layout's words that the
// mapping engine and the resource resolver write into before the command is
// appended to a command buffer.
type Template struct {
	layout *Layout
	words  []uint32
}

// Name returns the command kind name.
func (t *Template) Name() string { return t.layout.Name }

// Layout returns the layout the template was built from.
func (t *Template) Layout() *Layout { return t.layout }

// Words returns the command words. The slice aliases the template.
func (t *Template) Words() []uint32 { return t.words }

// Get returns the value of field f.
func (t *Template) Get(f Field) uint32 { return f.Get(t.words) }

// Set stores v into field f, truncated to the field width.
func (t *Template) Set(f Field, v uint32) { f.Set(t.words, v) }

// DWord returns word i.
func (t *Template) DWord(i int) uint32 { return t.words[i] }

// SetDWord replaces word i.
func (t *Template) SetDWord(i int, v uint32) { t.words[i] = v }

// ByteSize returns the fixed size of the command in bytes.
func (t *Template) ByteSize() int { return len(t.words) * DWordSize }

// AppendTo appends the little-endian encoding of the command to dst.
func (t *Template) AppendTo(dst []byte) []byte {
	for _, w := range t.words {
		dst = binary.LittleEndian.AppendUint32(dst, w)
	}
	return dst
}

// Bytes returns the little-endian encoding of the command.
func (t *Template) Bytes() []byte {
	return t.AppendTo(make([]byte, 0, t.ByteSize()))
}

// DWordLength decodes the length field of a command header (DW0 bits 7:0),
// which holds the total DWord count minus two.
func DWordLength(words []uint32) uint32 {
	return words[0] & 0xff
}
