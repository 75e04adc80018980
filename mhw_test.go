package mhw

import (
	"errors"
	"fmt"

	"github.com/gogpu/mhw/hwcmd"
)

var errLookup = errors.New("lookup failed")

// fakeOS is an in-memory OSInterface. Resource addresses are base +
// handle*0x10000.
type fakeOS struct {
	gfx        bool
	base       uint64
	failAddr   bool
	failReg    bool
	registered map[Handle]bool
}

func newFakeOS(gfx bool) *fakeOS {
	return &fakeOS{gfx: gfx, base: 0x1_0000_0000, registered: make(map[Handle]bool)}
}

func (f *fakeOS) UsesGfxAddress() bool { return f.gfx }
func (f *fakeOS) SimIsActive() bool    { return false }

func (f *fakeOS) ResourceGfxAddress(r *Resource) (uint64, error) {
	if f.failAddr {
		return 0, errLookup
	}
	return f.base + uint64(r.Handle)*0x10000, nil
}

func (f *fakeOS) RegisterResource(r *Resource, writable bool) error {
	if f.failReg {
		return fmt.Errorf("register: %w", errLookup)
	}
	f.registered[r.Handle] = writable
	return nil
}

func (f *fakeOS) ResourceInfo(r *Resource) (SurfaceInfo, error) {
	return SurfaceInfo{Format: r.Format, Width: r.Width, Height: r.Height, Pitch: r.Pitch}, nil
}

// countingResolver records how often it is called.
type countingResolver struct {
	calls int
}

func (c *countingResolver) AddResource(*CommandBuffer, *hwcmd.Template, *ResourceParams) error {
	c.calls++
	return nil
}

var testLayout = hwcmd.NewLayout("TEST_CMD", 0x12340002, 0x00000005, 0xffff0000, 0)
