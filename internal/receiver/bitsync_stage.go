package receiver

import "github.com/kpelc/gogps/internal/bitsync"

// runBitSync feeds each Tracking-or-better PRN's latest chip into its bit
// synchronizer, per spec.md 4.3. Once the 20-ms boundary resolves, the
// satellite advances to BitSynced and starts emitting demodulated bits.
func (p *Pipeline) runBitSync() {
	for _, prn := range p.order {
		st := p.registry[prn]
		if st.Status < Tracking || st.Status == Lost {
			continue
		}
		if st.BitSync == nil {
			st.BitSync = bitsync.New()
		}

		chip, ok := st.PromptChipStream.Last()
		if !ok {
			continue
		}

		bit, emitted := st.BitSync.Feed(chip)

		if st.BitBoundaryOffset == nil {
			if offset := st.BitSync.BoundaryOffset(); offset != nil {
				st.BitBoundaryOffset = offset
				if st.Status == Tracking {
					st.Status = BitSynced
				}
				p.logger.InfoPRN(prn, "bit boundary found at offset %d", *offset)
			}
		}

		if !emitted {
			continue
		}
		if st.BitStream == nil {
			st.BitStream = newRing[int8](p.cfg.BitStreamLen)
		}
		st.BitStream.Push(bit)
		st.pendingBit = &bit
	}
}
