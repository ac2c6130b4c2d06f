package domain

const (
	PhaseCrossCutting  = "Cross-cutting"
	PhaseBeforePayment = "Phase 1: Before Payment"
	PhaseDuringPayment = "Phase 2: During Payment"
	PhaseAfterPayment  = "Phase 3: After Payment"
)

var phaseOrder = [...]string{
	PhaseCrossCutting,
	PhaseBeforePayment,
	PhaseDuringPayment,
	PhaseAfterPayment,
}

// PhaseOrder returns the canonical display order of phases. The caller owns
// the returned slice.
func PhaseOrder() []string {
	out := make([]string, len(phaseOrder))
	copy(out, phaseOrder[:])
	return out
}

// IsCanonicalPhase reports whether p exactly matches one of the canonical
// phases. Matching is case-sensitive.
func IsCanonicalPhase(p Text) bool {
	if !p.Valid {
		return false
	}
	for _, phase := range phaseOrder {
		if p.Value == phase {
			return true
		}
	}
	return false
}
