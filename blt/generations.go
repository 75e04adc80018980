package blt

// Gen12 is the generic BLT generation: it supplies every layout and uses
// the generic field lists.
var Gen12 = &Generation{
	Name:      "gen12",
	FastCopy:  gen12FastCopy,
	BlockCopy: gen12BlockCopy,
	SwCtrl:    gen12SwCtrl,
	LoadReg:   gen12LoadReg,
}

// XeHpm inherits everything from Gen12.
var XeHpm = &Generation{
	Name:   "xe_hpm",
	Parent: Gen12,
}

func init() {
	Register(Gen12)
	Register(XeHpm)
}
