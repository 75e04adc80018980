package mhw

// ResourceUsage is a resource access category with its own cache policy.
type ResourceUsage int

const (
	UsageOriginalUncompressedPictureEncode ResourceUsage = iota
	UsageReferencePictureCodec
	UsageStreamoutDataCodec
	UsageVdencRowStoreBufferCodec
	UsageVdencStreaminCodec
	UsageIntraRowstoreScratchBufferCodec
	UsageBltSource
	UsageBltDestination

	// UsageCount is the number of usage categories.
	UsageCount
)

var usageNames = [...]string{
	UsageOriginalUncompressedPictureEncode: "OriginalUncompressedPictureEncode",
	UsageReferencePictureCodec:             "ReferencePictureCodec",
	UsageStreamoutDataCodec:                "StreamoutDataCodec",
	UsageVdencRowStoreBufferCodec:          "VdencRowStoreBufferCodec",
	UsageVdencStreaminCodec:                "VdencStreaminCodec",
	UsageIntraRowstoreScratchBufferCodec:   "IntraRowstoreScratchBufferCodec",
	UsageBltSource:                         "BltSource",
	UsageBltDestination:                    "BltDestination",
}

func (u ResourceUsage) String() string {
	if u >= 0 && u < UsageCount {
		return usageNames[u]
	}
	return "Unknown"
}

// MemoryObjectControl is a hardware cache policy code (MOCS).
type MemoryObjectControl struct {
	Value uint32
}

// Index returns the MOCS table index carried in the code. Commands store
// the index in a 7-bit field whose low bit is reserved.
func (m MemoryObjectControl) Index() uint32 { return m.Value >> 1 }

// CacheSettings maps each usage category to its cache policy. Each command
// builder owns one table; SetCacheabilitySettings replaces it in bulk.
type CacheSettings [UsageCount]MemoryObjectControl

// DefaultCacheSettings is the table installed at construction.
func DefaultCacheSettings() CacheSettings {
	var s CacheSettings
	s[UsageBltSource].Value = 2
	s[UsageBltDestination].Value = 2
	return s
}

// RowStoreCache is the state of one on-chip row-store cache.
//
// Enabled is never true unless Supported is; Address is meaningful only
// while Enabled.
type RowStoreCache struct {
	Supported bool
	Enabled   bool
	Address   uint32
}

// EnableIfSupported turns the cache on at addr when it is supported and
// reports whether it is enabled.
func (c *RowStoreCache) EnableIfSupported(addr uint32) bool {
	if c.Supported {
		c.Enabled = true
		c.Address = addr
	}
	return c.Enabled
}
