package vp

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/mhw"
)

// ScalingParams is the software scaling request.
type ScalingParams struct {
	Src gputypes.Extent3D
	Dst gputypes.Extent3D
}

// Ratio returns the horizontal and vertical scaling factors.
func (p ScalingParams) Ratio() (x, y float64) {
	if p.Src.Width == 0 || p.Src.Height == 0 {
		return 0, 0
	}
	return float64(p.Dst.Width) / float64(p.Src.Width), float64(p.Dst.Height) / float64(p.Src.Height)
}

// HwScalingParameter is the hardware parameter of the scaling feature.
type HwScalingParameter struct {
	BaseHwFilterParameter
	Params ScalingParams
}

var _ FeatureHandler = (*ScalingHandler)(nil)

// ScalingHandler handles FeatureTypeScaling on the SFC or render engines.
type ScalingHandler struct {
	*PolicyFeatureHandler
}

// NewScalingHandler returns a scaling handler for the platform caps.
func NewScalingHandler(caps HwCaps) *ScalingHandler {
	h := NewPolicyFeatureHandler(caps)
	h.FeatureType = FeatureTypeScaling
	return &ScalingHandler{PolicyFeatureHandler: h}
}

func scalingFilter(pipe SwFilterPipe) *Filter {
	p, ok := pipe.(*Pipe)
	if !ok {
		return nil
	}
	f, _ := p.Find(FeatureTypeScaling).(*Filter)
	return f
}

// IsFeatureEnabled reports whether pipe holds a scaling filter.
func (h *ScalingHandler) IsFeatureEnabled(pipe SwFilterPipe) bool {
	return scalingFilter(pipe) != nil
}

// IsFeatureEnabledForCaps reports whether an engine able to scale is
// assigned and present.
func (h *ScalingHandler) IsFeatureEnabledForCaps(caps ExecuteCaps) bool {
	return caps.Sfc && h.HwCaps.SfcSupported || caps.Render && h.HwCaps.RenderSupported
}

// CreateHwFilterParam builds the scaling parameter from the pipe, reusing a
// pooled one when available.
func (h *ScalingHandler) CreateHwFilterParam(caps ExecuteCaps, pipe SwFilterPipe, _ *mhw.Base) HwFilterParameter {
	if !h.IsFeatureEnabledForCaps(caps) {
		return nil
	}
	f := scalingFilter(pipe)
	if f == nil {
		return nil
	}
	params, ok := f.Params.(ScalingParams)
	if !ok {
		return nil
	}
	hp, _ := h.HwFeatureParameterFromPool().(*HwScalingParameter)
	if hp == nil {
		hp = &HwScalingParameter{BaseHwFilterParameter: BaseHwFilterParameter{Type: FeatureTypeScaling}}
	}
	hp.Params = params
	return hp
}
