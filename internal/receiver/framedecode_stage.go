package receiver

import "github.com/kpelc/gogps/internal/navdata"

// runFrameDecode feeds any bit freshly emitted this tick into the PRN's
// frame decoder, per spec.md 4.4, and merges validated subframes into
// clock-correction/ephemeris state.
func (p *Pipeline) runFrameDecode() {
	for _, prn := range p.order {
		st := p.registry[prn]
		if st.pendingBit == nil {
			continue
		}
		bit := *st.pendingBit
		st.pendingBit = nil

		if st.Status < BitSynced || st.Status == Lost {
			continue
		}
		if st.FrameDecoder == nil {
			st.FrameDecoder = navdata.NewDecoder()
		}

		sf, err := st.FrameDecoder.Feed(bit, p.sampleIndex)
		if st.BitPhase == nil {
			st.BitPhase = st.FrameDecoder.BitPhase()
		}
		if err != nil {
			p.logger.WarnPRN(prn, "frame decode: %v", err)
			continue
		}
		if sf == nil {
			continue
		}
		p.handleSubframe(prn, st, sf)
	}
}

// handleSubframe merges one validated subframe into its satellite's
// clock-correction/ephemeris state and anchors the satellite's (and, if
// this is the first subframe seen across the whole registry, the shared
// receiver clock's) transmitted-time timeline.
func (p *Pipeline) handleSubframe(prn int, st *SatelliteState, sf *navdata.Subframe) {
	st.Subframes = append(st.Subframes, sf)
	if len(st.Subframes) > p.cfg.SubframeHistoryLen {
		st.Subframes = st.Subframes[len(st.Subframes)-p.cfg.SubframeHistoryLen:]
	}
	if st.Status == BitSynced {
		st.Status = FrameSynced
	}

	st.towAnchorSampleIndex = sf.SampleIndex
	st.towAnchorTOW = sf.TOWCount
	st.haveTOWAnchor = true
	p.anchorClockIfNeeded(sf.SampleIndex, sf.TOWCount)

	switch sf.ID {
	case 1:
		st.ClockCorrection = navdata.DecodeClockCorrection(sf)
	case 2:
		if st.Ephemeris == nil {
			st.Ephemeris = &navdata.EphemerisParams{}
		}
		navdata.DecodeEphemerisSubframe2(st.Ephemeris, sf)
	case 3:
		if st.Ephemeris == nil {
			st.Ephemeris = &navdata.EphemerisParams{}
		}
		navdata.DecodeEphemerisSubframe3(st.Ephemeris, sf)
	default:
		// Subframes 4 and 5 (almanac, ionospheric/UTC parameters) are
		// validated structurally only; SPEC_FULL.md 3's Non-goal on
		// ionospheric/tropospheric correction means their payload is never
		// decoded further than the RawPayload navdata already populated.
	}

	if st.Status == FrameSynced && navdata.Complete(st.ClockCorrection, st.Ephemeris) {
		st.Status = EphemerisReady
		p.logger.InfoPRN(prn, "ephemeris ready")
	} else if st.Status == FrameSynced {
		p.logger.DebugPRN(prn, "%v", &EphemerisIncomplete{PRN: prn})
	}
}
