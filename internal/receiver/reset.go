package receiver

// demote resets a satellite's state back to Untracked, discarding every
// field associated with Acquired or later, per spec.md 3's demotion
// invariant ("resets all fields at or below the demoted status").
func demote(st *SatelliteState) {
	prn := st.PRN
	*st = SatelliteState{PRN: prn, Status: Untracked}
}
