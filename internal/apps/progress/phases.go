package progress

// Phase identifies one stage of the skill progression.
type Phase string

const (
	PhaseDetail   Phase = "detail"
	PhaseConcise  Phase = "concise"
	PhaseCreative Phase = "creative"
)

// CompletionScore is the minimum score that completes a phase.
const CompletionScore = 9.0

// PhaseOrder is the fixed progression sequence. Only the first phase starts unlocked.
var PhaseOrder = []Phase{PhaseDetail, PhaseConcise, PhaseCreative}

// ParsePhase reports whether s names a known phase.
func ParsePhase(s string) (Phase, bool) {
	for _, p := range PhaseOrder {
		if string(p) == s {
			return p, true
		}
	}
	return "", false
}

// NextPhase returns the phase after p, or false for the last or an unknown phase.
func NextPhase(p Phase) (Phase, bool) {
	for i, candidate := range PhaseOrder {
		if candidate == p {
			if i+1 < len(PhaseOrder) {
				return PhaseOrder[i+1], true
			}
			return "", false
		}
	}
	return "", false
}
