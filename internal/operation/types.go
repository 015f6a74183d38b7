// Package operation defines the AI operations the facade serves and the
// normalized result every execution path produces.
package operation

import "time"

// Kind tags an operation request.
type Kind string

const (
	GenerateText    Kind = "generateText"
	AnalyzeDocument Kind = "analyzeDocument"
	SummarizeText   Kind = "summarizeText"
	AnalyzeContract Kind = "analyzeContract"
)

// Kinds lists every operation kind.
var Kinds = []Kind{GenerateText, AnalyzeDocument, SummarizeText, AnalyzeContract}

// Valid reports whether k names a known operation.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Request is one operation to execute.
type Request struct {
	Kind     Kind
	Text     string         // Plain text used by the local generator
	Markdown string         // Rich text for the remote backend, empty for plain input
	Source   string         // Original input, possibly editor HTML
	Context  map[string]any // Optional caller context (document type, jurisdiction, ...)
}

// Risk is a contract risk level.
type Risk string

const (
	RiskLow    Risk = "low"
	RiskMedium Risk = "medium"
	RiskHigh   Risk = "high"
)

// Clause is a contract-analysis finding.
type Clause struct {
	Title          string
	Excerpt        string
	Risk           Risk
	Recommendation string
}

// Details carries operation-specific output. Zero value means none.
type Details struct {
	Score       *int
	Issues      []string
	Suggestions []string
	KeyPoints   []string
	Clauses     []Clause
	OverallRisk Risk
}

// Result is the normalized output of one operation.
// The shape is the same whether it came from the remote or the local path.
type Result struct {
	ID              string
	Content         string
	Confidence      float64
	CreatedAt       time.Time
	Sources         []string
	LegalReferences []string
	Details         Details
}

// OverallRisk aggregates clause risks: high if any clause is high,
// medium if more than one clause is medium, low otherwise.
func OverallRisk(clauses []Clause) Risk {
	mediums := 0
	for _, c := range clauses {
		switch c.Risk {
		case RiskHigh:
			return RiskHigh
		case RiskMedium:
			mediums++
		}
	}
	if mediums > 1 {
		return RiskMedium
	}
	return RiskLow
}

// Path is the executor that produced a result.
type Path string

const (
	PathRemote Path = "remote"
	PathLocal  Path = "local"
)
