package status

// Report is what the UI shows: current status plus advertised capabilities.
type Report struct {
	Status       ServiceStatus
	Capabilities []string
}

var (
	localCapabilities = []string{
		"generate_text",
		"analyze_document",
		"summarize_text",
		"analyze_contract",
	}

	remoteCapabilities = []string{
		"generate_text",
		"analyze_document",
		"summarize_text",
		"analyze_contract",
		"legal_research",
		"jurisprudence_search",
		"citation_validation",
		"document_comparison",
	}
)

// Capabilities returns the capability list advertised in a mode.
func Capabilities(mode Mode) []string {
	src := localCapabilities
	if mode == ModeRemote {
		src = remoteCapabilities
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// Reporter exposes the facade status. It never mutates state.
type Reporter struct {
	state *State
}

// NewReporter creates a reporter over state.
func NewReporter(state *State) *Reporter {
	return &Reporter{state: state}
}

// Report returns the current status and capabilities.
func (r *Reporter) Report() Report {
	st := r.state.Snapshot()
	return Report{
		Status:       st,
		Capabilities: Capabilities(st.Mode),
	}
}
