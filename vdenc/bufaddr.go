package vdenc

import (
	"fmt"

	"github.com/gogpu/mhw"
	"github.com/gogpu/mhw/hwcmd"
)

var (
	fwdRefSlots      = [...]Slot{SlotFwdRef0, SlotFwdRef1, SlotFwdRef2}
	fwdDsStage1Slots = [...]Slot{SlotDsFwdRef0, SlotDsFwdRef1}
	fwdDsStage2Slots = [...]Slot{SlotDsFwdRef04X, SlotDsFwdRef14X, SlotAdditional4xDsFwdRef}
)

// checkRefCounts rejects reference counts that index past the reference
// arrays. The backward reference sits at index NumActiveRefL0.
func checkRefCounts(p *PipeBufAddrPar) error {
	if int(p.NumActiveRefL0) > MaxRefs ||
		(!p.LowDelayB && p.NumActiveRefL1 > 0 && int(p.NumActiveRefL0) >= MaxRefs) {
		return fmt.Errorf("vdenc: %d forward references: %w", p.NumActiveRefL0, mhw.ErrInvalidParameter)
	}
	return nil
}

// slotControl stamps the control word of slot s.
func slotControl(t *hwcmd.Template, s Slot, mocs uint32, mode mhw.CompressionMode) {
	t.Set(s.Field(slotMocs), mocs)
	t.Set(s.Field(slotCompressionEnable), b(mode.Enabled()))
	t.Set(s.Field(slotCompressionType), b(mode == mhw.CompressionRender))
}

// refMode is the compression state of reconstructed references: the
// post-deblock state when set, else the pre-deblock one.
func refMode(p *PipeBufAddrPar) mhw.CompressionMode {
	if p.MmcStatePostDeblock != mhw.CompressionNone {
		return p.MmcStatePostDeblock
	}
	return p.MmcStatePreDeblock
}

func (i *Impl) addBuffer(cb *mhw.CommandBuffer, t *hwcmd.Template, r *mhw.Resource, s Slot, offset uint64, writable bool) error {
	return i.AddResourceToCmd(cb, t, &mhw.ResourceParams{
		Resource:    r,
		Offset:      offset,
		Location:    s.Location(),
		LsbNum:      mhw.DefaultLsbNum,
		Writable:    writable,
		CommandType: mhw.CmdTypeVdencPipeBufAddr,
	})
}

// addRef patches a reference picture at its luma plane base.
func (i *Impl) addRef(cb *mhw.CommandBuffer, t *hwcmd.Template, r *mhw.Resource, s Slot, mode mhw.CompressionMode) error {
	info, err := i.OS().ResourceInfo(r)
	if err != nil {
		return fmt.Errorf("resource info %s: %w", r, err)
	}
	slotControl(t, s, i.MOCS(mhw.UsageReferencePictureCodec).Value, mode)
	return i.addBuffer(cb, t, r, s, uint64(info.YPlaneOffset), false)
}

// rowStoreSlot either points slot s at the on-chip cache or patches the
// scratch buffer r.
func (i *Impl) rowStoreSlot(cb *mhw.CommandBuffer, t *hwcmd.Template, c mhw.RowStoreCache, r *mhw.Resource, s Slot, usage mhw.ResourceUsage) error {
	if c.Enabled {
		t.Set(s.Field(slotCacheSelect), 1)
		t.SetDWord(s.Location(), c.Address<<6)
		return nil
	}
	if mhw.IsNull(r) {
		return nil
	}
	t.Set(s.Field(slotMocs), i.MOCS(usage).Value)
	return i.addBuffer(cb, t, r, s, 0, true)
}

func (i *Impl) patchBuffers(cb *mhw.CommandBuffer, t *hwcmd.Template, p *PipeBufAddrPar) error {
	if !mhw.IsNull(p.SurfaceRaw) {
		s := SlotOriginalUncompressed
		slotControl(t, s, i.MOCS(mhw.UsageOriginalUncompressedPictureEncode).Value, p.MmcStateRaw)
		t.Set(s.Field(slotCompressionFormat), p.CompressionFormatRaw)
		if err := i.addBuffer(cb, t, p.SurfaceRaw, s, p.SurfaceRawOffset, false); err != nil {
			return err
		}
	}

	if err := i.rowStoreSlot(cb, t, i.rowStore, p.IntraRowStoreScratchBuffer,
		SlotRowStoreScratch, mhw.UsageVdencRowStoreBufferCodec); err != nil {
		return err
	}

	if !mhw.IsNull(p.StreamOutBuffer) {
		t.Set(SlotStatisticsStreamout.Field(slotMocs), i.MOCS(mhw.UsageStreamoutDataCodec).Value)
		if err := i.addBuffer(cb, t, p.StreamOutBuffer, SlotStatisticsStreamout, p.StreamOutOffset, true); err != nil {
			return err
		}
	}
	if !mhw.IsNull(p.StreamInBuffer) {
		t.Set(SlotStreamInData.Field(slotMocs), i.MOCS(mhw.UsageVdencStreaminCodec).Value)
		if err := i.addBuffer(cb, t, p.StreamInBuffer, SlotStreamInData, 0, false); err != nil {
			return err
		}
	}

	if err := i.patchRefs(cb, t, p); err != nil {
		return err
	}

	refMocs := i.MOCS(mhw.UsageReferencePictureCodec).Value
	if !mhw.IsNull(p.ColocatedMvReadBuffer) {
		slotControl(t, SlotColocatedMv, refMocs, mhw.CompressionNone)
		if err := i.addBuffer(cb, t, p.ColocatedMvReadBuffer, SlotColocatedMv, 0, false); err != nil {
			return err
		}
	}
	// A temporal MV buffer replaces the read buffer in the same slot.
	if !mhw.IsNull(p.ColMvTempBuffer) {
		slotControl(t, SlotColocatedMv, refMocs, mhw.CompressionNone)
		if err := i.addBuffer(cb, t, p.ColMvTempBuffer, SlotColocatedMv, 0, true); err != nil {
			return err
		}
	}

	if !mhw.IsNull(p.SurfaceDsStage1) {
		slotControl(t, SlotScaledStage1, refMocs, p.MmcStateDsStage1)
		if err := i.addBuffer(cb, t, p.SurfaceDsStage1, SlotScaledStage1, p.SurfaceDsStage1Offset, true); err != nil {
			return err
		}
	}
	if !mhw.IsNull(p.SurfaceDsStage2) {
		slotControl(t, SlotScaledStage2, refMocs, p.MmcStateDsStage2)
		if err := i.addBuffer(cb, t, p.SurfaceDsStage2, SlotScaledStage2, p.SurfaceDsStage2Offset, true); err != nil {
			return err
		}
	}

	if !mhw.IsNull(p.PakObjCmdStreamOutBuffer) {
		slotControl(t, SlotLcuPakObjCmd, refMocs, mhw.CompressionNone)
		if err := i.addBuffer(cb, t, p.PakObjCmdStreamOutBuffer, SlotLcuPakObjCmd, 0, true); err != nil {
			return err
		}
	}
	if err := i.addBuffer(cb, t, p.SegmentMapStreamInBuffer, SlotSegmentMapStreamIn, 0, true); err != nil {
		return err
	}
	if err := i.addBuffer(cb, t, p.SegmentMapStreamOutBuffer, SlotSegmentMapStreamOut, 0, true); err != nil {
		return err
	}

	if !mhw.IsNull(p.TileRowStoreBuffer) {
		t.Set(SlotTileRowStore.Field(slotMocs), i.MOCS(mhw.UsageVdencRowStoreBufferCodec).Value)
		if err := i.addBuffer(cb, t, p.TileRowStoreBuffer, SlotTileRowStore, 0, true); err != nil {
			return err
		}
	}

	if err := i.rowStoreSlot(cb, t, i.ipdlRowStore, p.MfdIntraRowStoreScratchBuffer,
		SlotIntraPredRowstore, mhw.UsageIntraRowstoreScratchBufferCodec); err != nil {
		return err
	}

	if err := i.addBuffer(cb, t, p.CumulativeCuCountStreamOutBuffer, SlotCumulativeCuCount, 0, true); err != nil {
		return err
	}
	if !mhw.IsNull(p.ColocatedMvWriteBuffer) {
		slotControl(t, SlotColocatedMvAvcWrite, refMocs, mhw.CompressionNone)
		if err := i.addBuffer(cb, t, p.ColocatedMvWriteBuffer, SlotColocatedMvAvcWrite, 0, true); err != nil {
			return err
		}
	}
	return nil
}

// patchRefs patches the forward references and, unless the frame is
// low-delay B, the backward reference at index NumActiveRefL0.
func (i *Impl) patchRefs(cb *mhw.CommandBuffer, t *hwcmd.Template, p *PipeBufAddrPar) error {
	n := int(p.NumActiveRefL0)
	for idx := 0; idx < n; idx++ {
		if idx < len(fwdRefSlots) && !mhw.IsNull(p.Refs[idx]) {
			s := fwdRefSlots[idx]
			if err := i.addRef(cb, t, p.Refs[idx], s, refMode(p)); err != nil {
				return err
			}
			t.Set(s.Field(slotCompressionFormat), p.CompressionFormatRecon)
		}
		if idx < len(fwdDsStage1Slots) && !mhw.IsNull(p.RefsDsStage1[idx]) {
			if err := i.addRef(cb, t, p.RefsDsStage1[idx], fwdDsStage1Slots[idx], p.MmcStateDsStage1); err != nil {
				return err
			}
		}
		if idx < len(fwdDsStage2Slots) && !mhw.IsNull(p.RefsDsStage2[idx]) {
			if err := i.addRef(cb, t, p.RefsDsStage2[idx], fwdDsStage2Slots[idx], p.MmcStateDsStage2); err != nil {
				return err
			}
			// Two forward and one backward reference: the second 4x
			// reference is also bound to the additional slot.
			if p.NumActiveRefL0 == 2 && p.NumActiveRefL1 == 1 && idx == 1 {
				if err := i.addRef(cb, t, p.RefsDsStage2[idx], fwdDsStage2Slots[idx+1], p.MmcStateDsStage2); err != nil {
					return err
				}
			}
		}
	}

	if p.LowDelayB || p.NumActiveRefL1 == 0 {
		return nil
	}
	if !mhw.IsNull(p.Refs[n]) {
		if err := i.addRef(cb, t, p.Refs[n], SlotBwdRef0, refMode(p)); err != nil {
			return err
		}
		t.Set(SlotBwdRef0.Field(slotCompressionFormat), p.CompressionFormatRecon)
	}
	if !mhw.IsNull(p.RefsDsStage1[n]) {
		if err := i.addRef(cb, t, p.RefsDsStage1[n], SlotDsBwdRef0, p.MmcStateDsStage1); err != nil {
			return err
		}
	}
	if !mhw.IsNull(p.RefsDsStage2[n]) {
		if err := i.addRef(cb, t, p.RefsDsStage2[n], SlotDsBwdRef04X, p.MmcStateDsStage2); err != nil {
			return err
		}
	}
	return nil
}

// AmendSlotCompression rewrites the compression bits of slot s in a
// VDENC_PIPE_BUF_ADDR_STATE already in cb.
func (i *Impl) AmendSlotCompression(cb *mhw.CommandBuffer, loc mhw.CmdLocation, s Slot, mode mhw.CompressionMode) error {
	if cb == nil {
		return fmt.Errorf("amend compression: %w", mhw.ErrNullPointer)
	}
	if loc.Size != i.pipeBufAddr.size() {
		return fmt.Errorf("amend compression: %d-byte command: %w", loc.Size, mhw.ErrInvalidLocation)
	}
	if err := cb.Amend(loc, s.Field(slotCompressionEnable), b(mode.Enabled())); err != nil {
		return err
	}
	return cb.Amend(loc, s.Field(slotCompressionType), b(mode == mhw.CompressionRender))
}
