package mhw

// Option configures a command builder during creation.
//
// Example:
//
//	itf, err := vdenc.New("xe_lpm_plus", osItf,
//	    mhw.WithFeatures(mhw.MapFeatures{mhw.FeatureRowstoreCacheDisable: true}))
type Option func(*Options)

// Options holds the construction settings shared by all command builders.
type Options struct {
	Features FeatureSource
	Resolver Resolver
	Cache    *CacheSettings
}

// ApplyOptions returns the defaults overridden by opts.
func ApplyOptions(opts ...Option) Options {
	o := Options{Features: EnvFeatures{}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithFeatures sets the user-feature source read at construction.
// The default reads MHW_* environment variables.
func WithFeatures(src FeatureSource) Option {
	return func(o *Options) {
		o.Features = src
	}
}

// WithResolver replaces the resolver chosen from the OS interface.
func WithResolver(r Resolver) Option {
	return func(o *Options) {
		o.Resolver = r
	}
}

// WithCacheSettings installs an initial cacheability table instead of
// DefaultCacheSettings.
func WithCacheSettings(s CacheSettings) Option {
	return func(o *Options) {
		o.Cache = &s
	}
}
