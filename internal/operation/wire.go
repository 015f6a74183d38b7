package operation

import "github.com/lexdesk/lexdesk/pkg/protocol"

// FromWire maps a backend response to a Result. The caller normalizes it.
func FromWire(w protocol.OperationResponse) Result {
	r := Result{
		ID:              w.ID,
		Content:         w.Content,
		Confidence:      w.Confidence,
		CreatedAt:       w.CreatedAt,
		Sources:         w.Sources,
		LegalReferences: w.LegalReferences,
		Details: Details{
			Score:       w.Score,
			Issues:      w.Issues,
			Suggestions: w.Suggestions,
			KeyPoints:   w.KeyPoints,
			OverallRisk: Risk(w.OverallRisk),
		},
	}
	for _, c := range w.Clauses {
		r.Details.Clauses = append(r.Details.Clauses, Clause{
			Title:          c.Title,
			Excerpt:        c.Excerpt,
			Risk:           Risk(c.Risk),
			Recommendation: c.Recommendation,
		})
	}
	return r
}

// ToWire maps a Result to its JSON shape.
func ToWire(r Result) protocol.OperationResponse {
	w := protocol.OperationResponse{
		ID:              r.ID,
		Content:         r.Content,
		Confidence:      r.Confidence,
		CreatedAt:       r.CreatedAt,
		Sources:         r.Sources,
		LegalReferences: r.LegalReferences,
		Score:           r.Details.Score,
		Issues:          r.Details.Issues,
		Suggestions:     r.Details.Suggestions,
		KeyPoints:       r.Details.KeyPoints,
		OverallRisk:     string(r.Details.OverallRisk),
	}
	for _, c := range r.Details.Clauses {
		w.Clauses = append(w.Clauses, protocol.Clause{
			Title:          c.Title,
			Excerpt:        c.Excerpt,
			Risk:           string(c.Risk),
			Recommendation: c.Recommendation,
		})
	}
	return w
}
