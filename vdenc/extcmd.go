package vdenc

import (
	"errors"
	"fmt"

	"github.com/gogpu/mhw"
	"github.com/gogpu/mhw/hwcmd"
)

// ErrUndefinedCommand is returned when emitting a generation-defined
// command the selected generation does not provide.
var ErrUndefinedCommand = errors.New("vdenc: command not defined by generation")

// ExtCmd identifies one of the generation-defined commands VDENC_CMD1 to
// VDENC_CMD5. The generic layer has no fields for them: a generation
// supplies the layout and writes every field from the HookExtCmd extension.
type ExtCmd int

const (
	Cmd1 ExtCmd = iota
	Cmd2
	Cmd3
	Cmd4
	Cmd5
	NumExtCmds
)

func (c ExtCmd) String() string {
	if c >= 0 && c < NumExtCmds {
		return fmt.Sprintf("VDENC_CMD%d", int(c)+1)
	}
	return fmt.Sprintf("ExtCmd(%d)", int(c))
}

// HookExtCmd is the single step of the generic list of every ExtCmd.
const HookExtCmd = "VDENC_CMD"

// ExtCmdPar is the parameter record of a generation-defined command.
// Values are keyed by the field names the generation's steps read.
type ExtCmdPar struct {
	Values map[string]uint32
}

// Set stores the value named name.
func (p *ExtCmdPar) Set(name string, v uint32) {
	if p.Values == nil {
		p.Values = make(map[string]uint32)
	}
	p.Values[name] = v
}

// Value returns the value named name, zero when unset.
func (p *ExtCmdPar) Value(name string) uint32 { return p.Values[name] }

// ValueField returns a step writing the record value named after f into f.
func ValueField(f hwcmd.Field) hwcmd.Step[ExtCmdPar] {
	return hwcmd.Map(f, func(p *ExtCmdPar, _ *tmpl) uint32 { return p.Value(f.Name) })
}

func extCmdFields() hwcmd.FieldList[ExtCmdPar] {
	return hwcmd.FieldList[ExtCmdPar]{hwcmd.Hook[ExtCmdPar](HookExtCmd)}
}

// newExtCmds binds the generation-defined commands that have a layout
// somewhere along the chain of g.
func newExtCmds(g *Generation) [NumExtCmds]*cmd[ExtCmdPar] {
	var out [NumExtCmds]*cmd[ExtCmdPar]
	for c := range NumExtCmds {
		l := layoutOf(g, func(ls *Layouts) *hwcmd.Layout { return ls.ExtCmds[c] })
		if l == nil {
			continue
		}
		ext := extOf(g, func(e *Extensions) hwcmd.Extensions[ExtCmdPar] { return e.ExtCmds[c] })
		out[c] = newCmd(l, extCmdFields().Resolve(ext))
	}
	return out
}

func (i *Impl) extCmd(c ExtCmd) *cmd[ExtCmdPar] {
	if c < 0 || c >= NumExtCmds {
		return nil
	}
	return i.extCmds[c]
}

// HasExtCmd reports whether the generation defines c.
func (i *Impl) HasExtCmd(c ExtCmd) bool { return i.extCmd(c) != nil }

// ExtCmdParams returns the parameter record of c, or nil when the
// generation does not define it.
func (i *Impl) ExtCmdParams(c ExtCmd, reset bool) *ExtCmdPar {
	if x := i.extCmd(c); x != nil {
		return x.params(reset)
	}
	return nil
}

// ExtCmdSize returns the size of c in bytes, 0 when undefined.
func (i *Impl) ExtCmdSize(c ExtCmd) int {
	if x := i.extCmd(c); x != nil {
		return x.size()
	}
	return 0
}

// AddExtCmd emits c.
func (i *Impl) AddExtCmd(cb *mhw.CommandBuffer, c ExtCmd) error {
	x := i.extCmd(c)
	if x == nil {
		return fmt.Errorf("%s on %s: %w", c, i.gen.Name, ErrUndefinedCommand)
	}
	_, err := emit(i, cb, x, nil)
	return err
}
