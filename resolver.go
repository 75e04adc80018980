package mhw

import (
	"fmt"

	"github.com/gogpu/mhw/hwcmd"
)

// Resolver embeds resource addresses into commands.
//
// One strategy is chosen per interface instance at construction and used for
// every resource it patches.
type Resolver interface {
	// AddResource patches the resource described by p into t, which is
	// about to be appended to cb. The access is staged on cb; Base.Emit
	// registers it with the OS layer when the command commits.
	AddResource(cb *CommandBuffer, t *hwcmd.Template, p *ResourceParams) error
}

// NewResolver returns the strategy matching the addressing capability of os.
func NewResolver(os OSInterface) Resolver {
	if os.UsesGfxAddress() {
		return &GfxAddressResolver{OS: os}
	}
	return &PatchListResolver{OS: os}
}

// checkParams validates a resource reference against the template it targets.
func checkParams(cb *CommandBuffer, t *hwcmd.Template, p *ResourceParams) error {
	if cb == nil || t == nil || p == nil || p.Resource == nil {
		return ErrNullPointer
	}
	if p.Location < 0 || p.Location+1 >= len(t.Words()) {
		return fmt.Errorf("%w: location %d outside %s (%d words)",
			ErrInvalidParameter, p.Location, t.Name(), len(t.Words()))
	}
	if p.LsbNum > 31 {
		return fmt.Errorf("%w: lsb count %d", ErrInvalidParameter, p.LsbNum)
	}
	return nil
}

// GfxAddressResolver writes GPU virtual addresses directly into commands.
type GfxAddressResolver struct {
	OS OSInterface
}

// AddResource implements Resolver.
func (r *GfxAddressResolver) AddResource(cb *CommandBuffer, t *hwcmd.Template, p *ResourceParams) error {
	if err := checkParams(cb, t, p); err != nil {
		return fmt.Errorf("gfx address: %w", err)
	}
	base, err := r.OS.ResourceGfxAddress(p.Resource)
	if err != nil {
		return fmt.Errorf("gfx address of %s: %w", p.Resource, err)
	}
	addr := base + p.Offset

	lo, hi := PatchAddress(t.DWord(p.Location), t.DWord(p.Location+1), addr, p.LsbNum)
	t.SetDWord(p.Location, lo)
	t.SetDWord(p.Location+1, hi)

	cb.StageRef(p.Resource, p.Writable)
	if debugEnabled() {
		Logger().Debug("mhw: resource patched",
			"cmd", t.Name(), "resource", p.Resource.Name, "dw", p.Location, "addr", addr)
	}
	return nil
}

// PatchListResolver records patch entries resolved when the command buffer
// is submitted. The command words are left untouched.
type PatchListResolver struct {
	OS OSInterface
}

// AddResource implements Resolver.
func (r *PatchListResolver) AddResource(cb *CommandBuffer, t *hwcmd.Template, p *ResourceParams) error {
	if err := checkParams(cb, t, p); err != nil {
		return fmt.Errorf("patch list: %w", err)
	}
	cb.StageRef(p.Resource, p.Writable)
	e := PatchEntry{
		Resource:       p.Resource,
		CmdOffset:      cb.Len() + p.Location*hwcmd.DWordSize,
		ResourceOffset: p.Offset,
		LsbNum:         p.LsbNum,
		Writable:       p.Writable,
		CommandType:    p.CommandType,
	}
	cb.StagePatch(e)
	if debugEnabled() {
		Logger().Debug("mhw: patch staged",
			"cmd", t.Name(), "resource", p.Resource.Name, "offset", e.CmdOffset)
	}
	return nil
}
