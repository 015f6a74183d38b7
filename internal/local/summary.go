package local

import (
	"strings"
	"unicode"

	"github.com/lexdesk/lexdesk/internal/operation"
)

// Disclaimer closes every locally produced summary.
const Disclaimer = "Aviso: resumo gerado automaticamente em modo offline. Não substitui a revisão por um profissional do direito."

const maxKeyPoints = 5

// Summarize keeps the first third of the sentences (at least one, at most
// five) as key points and appends the disclaimer.
func (g *Generator) Summarize(text string) operation.Result {
	sentences := SplitSentences(text)
	n := KeyPointCount(len(sentences))
	keyPoints := append([]string(nil), sentences[:n]...)

	var sb strings.Builder
	sb.WriteString("Resumo:\n")
	for _, kp := range keyPoints {
		sb.WriteString("- ")
		sb.WriteString(kp)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(Disclaimer)

	return operation.Result{
		Content:    sb.String(),
		Confidence: 0.6 + g.float()*0.2,
		Sources:    []string{"local-summary"},
		Details: operation.Details{
			KeyPoints: keyPoints,
		},
	}
}

// KeyPointCount is ceil(n/3) bounded to [1,5], or 0 for no sentences.
func KeyPointCount(sentences int) int {
	if sentences <= 0 {
		return 0
	}
	n := (sentences + 2) / 3
	return min(max(n, 1), maxKeyPoints)
}

// SplitSentences cuts text after '.', '!' or '?' followed by whitespace,
// and at line breaks. Empty pieces are dropped.
func SplitSentences(text string) []string {
	var (
		out   []string
		start int
	)
	runes := []rune(text)
	flush := func(end int) {
		s := strings.TrimSpace(string(runes[start:end]))
		if s != "" {
			out = append(out, s)
		}
		start = end
	}

	for i, r := range runes {
		switch {
		case r == '\n':
			flush(i + 1)
		case r == '.' || r == '!' || r == '?':
			if i+1 == len(runes) || unicode.IsSpace(runes[i+1]) {
				flush(i + 1)
			}
		}
	}
	flush(len(runes))
	return out
}
