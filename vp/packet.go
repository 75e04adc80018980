package vp

import "github.com/gogpu/mhw"

// HwFilterParameter is the hardware-facing form of one feature, built by a
// feature handler from the software filter pipe.
type HwFilterParameter interface {
	FeatureType() FeatureType
}

// BaseHwFilterParameter implements HwFilterParameter; concrete parameters
// embed it.
type BaseHwFilterParameter struct {
	Type FeatureType
}

// FeatureType implements HwFilterParameter.
func (p *BaseHwFilterParameter) FeatureType() FeatureType { return p.Type }

// PacketParameter is the per-packet parameter set a hardware filter hands
// to a render, SFC or VEBOX packet. It remembers the factory it came from.
type PacketParameter interface {
	Factory() *PacketParamFactory
}

// BasePacketParameter implements PacketParameter; concrete parameters
// embed it.
type BasePacketParameter struct {
	factory *PacketParamFactory
}

// NewBasePacketParameter binds a parameter to factory f, which may be nil.
func NewBasePacketParameter(f *PacketParamFactory) BasePacketParameter {
	return BasePacketParameter{factory: f}
}

// Factory implements PacketParameter.
func (p *BasePacketParameter) Factory() *PacketParamFactory { return p.factory }

// Destroy hands p back to its factory for reuse. Parameters without a
// factory are dropped.
func Destroy(p PacketParameter) {
	if p == nil {
		return
	}
	f := p.Factory()
	if f == nil {
		return
	}
	f.Return(p)
}

// PacketParamFactory recycles packet parameters of one kind.
//
// PacketParamFactory is not safe for concurrent use.
type PacketParamFactory struct {
	// New builds a parameter when the pool is empty. A factory without New
	// only hands out returned parameters.
	New func(f *PacketParamFactory, hw *mhw.Base) PacketParameter

	pool []PacketParameter
}

// Get returns a pooled parameter, or a new one. It returns nil when the
// pool is empty and the factory cannot build parameters.
func (f *PacketParamFactory) Get(hw *mhw.Base) PacketParameter {
	if n := len(f.pool); n > 0 {
		p := f.pool[n-1]
		f.pool[n-1] = nil
		f.pool = f.pool[:n-1]
		return p
	}
	if f.New == nil {
		return nil
	}
	return f.New(f, hw)
}

// Return puts p back in the pool. Nil parameters are ignored.
func (f *PacketParamFactory) Return(p PacketParameter) {
	if p == nil {
		return
	}
	f.pool = append(f.pool, p)
}

// Pooled returns the number of parameters waiting for reuse.
func (f *PacketParamFactory) Pooled() int { return len(f.pool) }
