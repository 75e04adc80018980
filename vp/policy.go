package vp

import (
	"fmt"

	"github.com/gogpu/mhw"
)

// HwCaps lists the engines available on the platform.
type HwCaps struct {
	VeboxSupported  bool
	SfcSupported    bool
	RenderSupported bool
}

// ExecuteCaps is the engine assignment chosen by the policy for one pass.
type ExecuteCaps struct {
	Vebox  bool
	Sfc    bool
	Render bool
}

// FeatureHandler turns software filters of one feature into hardware filter
// parameters.
type FeatureHandler interface {
	Type() FeatureType
	IsFeatureEnabled(pipe SwFilterPipe) bool
	IsFeatureEnabledForCaps(caps ExecuteCaps) bool
	CreateHwFilterParam(caps ExecuteCaps, pipe SwFilterPipe, hw *mhw.Base) HwFilterParameter
	UpdateFeaturePipe(caps ExecuteCaps, feature SwFilter, featurePipe, executePipe SwFilterPipe, isInput bool, index int) error
	ReleaseHwFeatureParameter(p HwFilterParameter) error
}

// PolicyFeatureHandler is the default feature handler: it enables nothing,
// builds nothing and moves filters unchanged. Concrete handlers embed it
// and override what they support.
//
// PolicyFeatureHandler is not safe for concurrent use.
type PolicyFeatureHandler struct {
	FeatureType FeatureType
	HwCaps      HwCaps

	pool []HwFilterParameter
}

var _ FeatureHandler = (*PolicyFeatureHandler)(nil)

// NewPolicyFeatureHandler returns a handler for the given platform caps.
func NewPolicyFeatureHandler(caps HwCaps) *PolicyFeatureHandler {
	return &PolicyFeatureHandler{HwCaps: caps}
}

// Type returns the handled feature type.
func (h *PolicyFeatureHandler) Type() FeatureType { return h.FeatureType }

// IsFeatureEnabled reports whether the feature is requested by pipe.
func (h *PolicyFeatureHandler) IsFeatureEnabled(SwFilterPipe) bool { return false }

// IsFeatureEnabledForCaps reports whether the feature runs with caps.
func (h *PolicyFeatureHandler) IsFeatureEnabledForCaps(ExecuteCaps) bool { return false }

// CreateHwFilterParam builds the hardware parameter of the feature.
func (h *PolicyFeatureHandler) CreateHwFilterParam(ExecuteCaps, SwFilterPipe, *mhw.Base) HwFilterParameter {
	return nil
}

// UpdateFeaturePipe moves feature from featurePipe to surface index of
// executePipe.
func (h *PolicyFeatureHandler) UpdateFeaturePipe(_ ExecuteCaps, feature SwFilter, featurePipe, executePipe SwFilterPipe, isInput bool, index int) error {
	if feature == nil || featurePipe == nil || executePipe == nil {
		return fmt.Errorf("vp: update feature pipe: %w", mhw.ErrNullPointer)
	}
	if err := featurePipe.RemoveSwFilter(feature); err != nil {
		return err
	}
	if err := executePipe.AddSwFilterUnordered(feature, isInput, index); err != nil {
		return err
	}
	mhw.Logger().Debug("vp: filter moved to execute pipe",
		"feature", feature.FeatureType(), "input", isInput, "index", index)
	return nil
}

// HwFeatureParameterFromPool returns a released parameter for reuse, or nil.
func (h *PolicyFeatureHandler) HwFeatureParameterFromPool() HwFilterParameter {
	n := len(h.pool)
	if n == 0 {
		return nil
	}
	p := h.pool[n-1]
	h.pool[n-1] = nil
	h.pool = h.pool[:n-1]
	return p
}

// ReleaseHwFeatureParameter returns p to the handler pool.
func (h *PolicyFeatureHandler) ReleaseHwFeatureParameter(p HwFilterParameter) error {
	if p == nil {
		return fmt.Errorf("vp: release hw filter parameter: %w", mhw.ErrNullPointer)
	}
	h.pool = append(h.pool, p)
	return nil
}
