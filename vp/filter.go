// Package vp holds the video-processing filter scaffolding shared by the
// VP feature handlers: software filter pipes, hardware filter parameters,
// packet parameters and the default policy feature handler.
package vp

import (
	"fmt"
	"slices"

	"github.com/gogpu/mhw"
)

// FeatureType identifies a video-processing feature.
type FeatureType uint32

const (
	FeatureTypeInvalid FeatureType = iota
	FeatureTypeCsc
	FeatureTypeScaling
	FeatureTypeRotMir
	FeatureTypeDn
	FeatureTypeDi
	FeatureTypeAce
	FeatureTypeSte
	FeatureTypeTcc
	FeatureTypeProcamp
	FeatureTypeHdr
	FeatureTypeLumakey
	FeatureTypeBlending
	FeatureTypeColorFill
	FeatureTypeAlpha
)

var featureTypeNames = [...]string{
	FeatureTypeInvalid:   "Invalid",
	FeatureTypeCsc:       "Csc",
	FeatureTypeScaling:   "Scaling",
	FeatureTypeRotMir:    "RotMir",
	FeatureTypeDn:        "Dn",
	FeatureTypeDi:        "Di",
	FeatureTypeAce:       "Ace",
	FeatureTypeSte:       "Ste",
	FeatureTypeTcc:       "Tcc",
	FeatureTypeProcamp:   "Procamp",
	FeatureTypeHdr:       "Hdr",
	FeatureTypeLumakey:   "Lumakey",
	FeatureTypeBlending:  "Blending",
	FeatureTypeColorFill: "ColorFill",
	FeatureTypeAlpha:     "Alpha",
}

func (t FeatureType) String() string {
	if int(t) < len(featureTypeNames) {
		return featureTypeNames[t]
	}
	return fmt.Sprintf("FeatureType(%d)", uint32(t))
}

// SwFilter is one feature request as decided by the policy layer.
// Implementations must be comparable; pointer types are.
type SwFilter interface {
	FeatureType() FeatureType
}

// Filter is a generic SwFilter carrying feature-specific parameters.
type Filter struct {
	Type   FeatureType
	Params any
}

// FeatureType implements SwFilter.
func (f *Filter) FeatureType() FeatureType { return f.Type }

// SwFilterPipe holds the software filters of one processing pass, grouped
// per input and output surface.
type SwFilterPipe interface {
	AddSwFilterUnordered(f SwFilter, isInput bool, index int) error
	RemoveSwFilter(f SwFilter) error
}

// Pipe is the slice-backed SwFilterPipe.
//
// Pipe is not safe for concurrent use.
type Pipe struct {
	inputs  [][]SwFilter
	outputs [][]SwFilter
}

var _ SwFilterPipe = (*Pipe)(nil)

// NewPipe returns a pipe with the given number of input and output
// surfaces.
func NewPipe(inputs, outputs int) *Pipe {
	return &Pipe{
		inputs:  make([][]SwFilter, inputs),
		outputs: make([][]SwFilter, outputs),
	}
}

func (p *Pipe) side(isInput bool) [][]SwFilter {
	if isInput {
		return p.inputs
	}
	return p.outputs
}

// AddSwFilterUnordered appends f to the filters of surface index.
func (p *Pipe) AddSwFilterUnordered(f SwFilter, isInput bool, index int) error {
	if f == nil {
		return fmt.Errorf("vp: add filter: %w", mhw.ErrNullPointer)
	}
	side := p.side(isInput)
	if index < 0 || index >= len(side) {
		return fmt.Errorf("vp: add %s at surface %d of %d: %w",
			f.FeatureType(), index, len(side), mhw.ErrInvalidParameter)
	}
	side[index] = append(side[index], f)
	return nil
}

// RemoveSwFilter removes f from whichever surface holds it.
func (p *Pipe) RemoveSwFilter(f SwFilter) error {
	if f == nil {
		return fmt.Errorf("vp: remove filter: %w", mhw.ErrNullPointer)
	}
	for _, side := range [][][]SwFilter{p.inputs, p.outputs} {
		for i, filters := range side {
			if j := slices.Index(filters, f); j >= 0 {
				side[i] = slices.Delete(filters, j, j+1)
				return nil
			}
		}
	}
	return fmt.Errorf("vp: remove %s: not in pipe: %w", f.FeatureType(), mhw.ErrInvalidParameter)
}

// Filters returns the filters of surface index. The slice aliases the pipe.
func (p *Pipe) Filters(isInput bool, index int) []SwFilter {
	side := p.side(isInput)
	if index < 0 || index >= len(side) {
		return nil
	}
	return side[index]
}

// Len returns the total number of filters in the pipe.
func (p *Pipe) Len() int {
	n := 0
	for _, side := range [][][]SwFilter{p.inputs, p.outputs} {
		for _, filters := range side {
			n += len(filters)
		}
	}
	return n
}

// Find returns the first filter of type t, or nil.
func (p *Pipe) Find(t FeatureType) SwFilter {
	for _, side := range [][][]SwFilter{p.inputs, p.outputs} {
		for _, filters := range side {
			for _, f := range filters {
				if f.FeatureType() == t {
					return f
				}
			}
		}
	}
	return nil
}
