package mhw

import (
	"os"
	"strconv"
	"strings"
)

// User feature keys read at construction.
const (
	FeatureRowstoreCacheDisable      = "Disable RowStore Cache"
	FeatureVdencRowstoreCacheDisable = "DisableVDEncRowStoreCache"
	FeatureIntraRowstoreCacheDisable = "DisableIntraRowStoreCache"
)

// FeatureSource answers boolean user-feature queries. ok is false when the
// key has no override and the compiled-in default applies.
type FeatureSource interface {
	Bool(key string) (v, ok bool)
}

// MapFeatures is a FeatureSource backed by a map.
type MapFeatures map[string]bool

// Bool implements FeatureSource.
func (m MapFeatures) Bool(key string) (bool, bool) {
	v, ok := m[key]
	return v, ok
}

// EnvFeatures reads features from MHW_* environment variables. The key is
// upper-cased, spaces become underscores: "Disable RowStore Cache" is read
// from MHW_DISABLE_ROWSTORE_CACHE.
type EnvFeatures struct{}

// Bool implements FeatureSource.
func (EnvFeatures) Bool(key string) (bool, bool) {
	s, ok := os.LookupEnv(EnvName(key))
	if !ok {
		return false, false
	}
	v, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false, false
	}
	return v, true
}

// EnvName returns the environment variable consulted for a feature key.
func EnvName(key string) string {
	return "MHW_" + strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(key), " ", "_"))
}

// FeatureBool reads key from src, falling back to def.
func FeatureBool(src FeatureSource, key string, def bool) bool {
	if src == nil {
		return def
	}
	if v, ok := src.Bool(key); ok {
		return v
	}
	return def
}
