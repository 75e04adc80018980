package mhw

import (
	"fmt"

	"github.com/gogpu/mhw/hwcmd"
)

// Base is the generation-independent half of every command builder: the
// OS interface, the resolver strategy and the cacheability table.
// Command builders embed it.
type Base struct {
	os       OSInterface
	resolver Resolver
	cache    CacheSettings
	features FeatureSource
}

// NewBase builds the shared state. A nil os is not an error here: the
// failure is logged and the returned Base is degraded, so every later
// command-building call fails with ErrNoOSInterface.
func NewBase(os OSInterface, opts ...Option) *Base {
	o := ApplyOptions(opts...)
	b := &Base{os: os, features: o.Features, cache: DefaultCacheSettings()}
	if o.Cache != nil {
		b.cache = *o.Cache
	}
	if os == nil {
		Logger().Error("mhw: no OS interface, command builder is not functional")
		return b
	}
	b.resolver = o.Resolver
	if b.resolver == nil {
		b.resolver = NewResolver(os)
	}
	return b
}

// OS returns the OS interface, nil when degraded.
func (b *Base) OS() OSInterface { return b.os }

// Resolver returns the resolver strategy.
func (b *Base) Resolver() Resolver { return b.resolver }

// Features returns the user-feature source given at construction.
func (b *Base) Features() FeatureSource { return b.features }

// Ready returns ErrNoOSInterface when the builder was constructed degraded.
func (b *Base) Ready() error {
	if b == nil || b.os == nil || b.resolver == nil {
		return ErrNoOSInterface
	}
	return nil
}

// SetCacheabilitySettings replaces the cacheability table.
func (b *Base) SetCacheabilitySettings(s *CacheSettings) error {
	if s == nil {
		return fmt.Errorf("cacheability settings: %w", ErrNullPointer)
	}
	b.cache = *s
	return nil
}

// MOCS returns the cache policy for usage u.
func (b *Base) MOCS(u ResourceUsage) MemoryObjectControl {
	return b.cache[u]
}

// AddResourceToCmd patches p into t. Null resources are skipped without
// calling the resolver.
func (b *Base) AddResourceToCmd(cb *CommandBuffer, t *hwcmd.Template, p *ResourceParams) error {
	if p == nil {
		return fmt.Errorf("resource params: %w", ErrNullPointer)
	}
	if IsNull(p.Resource) {
		return nil
	}
	if err := b.Ready(); err != nil {
		return err
	}
	return b.resolver.AddResource(cb, t, p)
}

// Emit builds one command and appends it to cb. fill runs the field mapping
// and the resource patching; if it fails, staged patches are dropped and
// nothing is written. Resources are registered with the OS layer only once
// the command is known to fit.
func (b *Base) Emit(cb *CommandBuffer, t *hwcmd.Template, fill func(*hwcmd.Template) error) (CmdLocation, error) {
	if err := b.Ready(); err != nil {
		return CmdLocation{}, fmt.Errorf("%s: %w", t.Name(), err)
	}
	if cb == nil {
		return CmdLocation{}, fmt.Errorf("%s: command buffer: %w", t.Name(), ErrNullPointer)
	}
	if fill != nil {
		if err := fill(t); err != nil {
			cb.Rollback()
			return CmdLocation{}, fmt.Errorf("%s: %w", t.Name(), err)
		}
	}
	if t.ByteSize() > cb.Remaining() {
		cb.Rollback()
		return CmdLocation{}, fmt.Errorf("add %s (%d bytes, %d free): %w",
			t.Name(), t.ByteSize(), cb.Remaining(), ErrCommandBufferFull)
	}
	for _, ref := range cb.StagedRefs() {
		if err := b.os.RegisterResource(ref.Resource, ref.Writable); err != nil {
			cb.Rollback()
			return CmdLocation{}, fmt.Errorf("%s: register %s: %w", t.Name(), ref.Resource, err)
		}
	}
	return cb.AddCommand(t)
}
