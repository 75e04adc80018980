package mhw

import (
	"testing"

	"github.com/gogpu/gputypes"
)

func TestEnvFeatures(t *testing.T) {
	t.Setenv("MHW_DISABLE_ROWSTORE_CACHE", "true")
	t.Setenv("MHW_DISABLEINTRAROWSTORECACHE", "maybe")

	if v, ok := (EnvFeatures{}).Bool(FeatureRowstoreCacheDisable); !ok || !v {
		t.Errorf("rowstore = %v, %v", v, ok)
	}
	if _, ok := (EnvFeatures{}).Bool(FeatureIntraRowstoreCacheDisable); ok {
		t.Error("unparsable value reported as set")
	}
	if _, ok := (EnvFeatures{}).Bool(FeatureVdencRowstoreCacheDisable); ok {
		t.Error("unset variable reported as set")
	}
}

func TestFeatureBool(t *testing.T) {
	src := MapFeatures{FeatureRowstoreCacheDisable: false}
	if FeatureBool(src, FeatureRowstoreCacheDisable, true) {
		t.Error("override ignored")
	}
	if !FeatureBool(src, FeatureVdencRowstoreCacheDisable, true) {
		t.Error("default ignored")
	}
	if !FeatureBool(nil, "x", true) {
		t.Error("nil source")
	}
}

func TestFormatFromTexture(t *testing.T) {
	tests := []struct {
		in   gputypes.TextureFormat
		want Format
	}{
		{gputypes.TextureFormatRGBA8Unorm, FormatA8B8G8R8},
		{gputypes.TextureFormatBGRA8Unorm, FormatA8R8G8B8},
		{gputypes.TextureFormatR8Unorm, FormatL8},
		{gputypes.TextureFormatDepth24PlusStencil8, FormatInvalid},
	}
	for _, tt := range tests {
		if got := FormatFromTexture(tt.in); got != tt.want {
			t.Errorf("FormatFromTexture(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if FormatNV12.String() != "NV12" || Format(-1).String() != "Unknown" {
		t.Error("Format.String")
	}
}

func TestBytesPerPixel(t *testing.T) {
	tests := []struct {
		f    Format
		want uint32
	}{
		{FormatInvalid, 0},
		{FormatNV12, 1},
		{FormatL8, 1},
		{FormatYUY2, 2},
		{FormatP010, 2},
		{FormatA8R8G8B8, 4},
		{FormatY410, 4},
		{FormatY210, 4},
		{FormatY216, 4},
		{FormatY416, 8},
	}
	for _, tt := range tests {
		if got := tt.f.BytesPerPixel(); got != tt.want {
			t.Errorf("%s.BytesPerPixel() = %d, want %d", tt.f, got, tt.want)
		}
	}
}
