package local

import (
	"fmt"
	"strings"

	"github.com/lexdesk/lexdesk/internal/operation"
)

// Document scoring weights.
const (
	baseScore        = 70
	lengthBonus      = 10
	cleanBonus       = 15
	requiredBonus    = 10
	minWordsForBonus = 100
)

// problematicTerms are phrases that usually hurt one of the parties.
var problematicTerms = []string{
	"prazo indeterminado",
	"sem garantia",
	"a critério exclusivo",
	"renúncia",
	"irrevogável",
	"multa de 100%",
	"isenção total de responsabilidade",
}

// requiredClauses are the keywords of clauses a sound document carries.
var requiredClauses = []string{
	"objeto",
	"pagamento",
	"vigência",
	"rescisão",
	"confidencialidade",
	"foro",
}

// AnalyzeDocument scores a document with fixed heuristics. It is
// deterministic: the same text always yields the same score.
func AnalyzeDocument(text string) operation.Result {
	normalized := wordText(text)
	words := len(strings.Fields(text))

	var issues []string
	for _, term := range problematicTerms {
		if hasTerm(normalized, term) {
			issues = append(issues, fmt.Sprintf("Termo potencialmente problemático: %q", term))
		}
	}

	var present, suggestions []string
	for _, clause := range requiredClauses {
		if hasTerm(normalized, clause) {
			present = append(present, clause)
			continue
		}
		suggestions = append(suggestions, fmt.Sprintf("Considere incluir cláusula de %s", clause))
	}

	score := baseScore
	if words >= minWordsForBonus {
		score += lengthBonus
	}
	if len(issues) == 0 {
		score += cleanBonus
	}
	if len(present) > 0 {
		score += requiredBonus
	}
	score = min(max(score, 0), 100)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Pontuação do documento: %d/100.\n", score)
	fmt.Fprintf(&sb, "Palavras analisadas: %d. Cláusulas essenciais encontradas: %d de %d.\n",
		words, len(present), len(requiredClauses))
	if len(issues) == 0 {
		sb.WriteString("Nenhum termo problemático identificado.")
	} else {
		fmt.Fprintf(&sb, "%d termo(s) exigem revisão.", len(issues))
	}

	return operation.Result{
		Content:    sb.String(),
		Confidence: float64(score) / 100,
		Sources:    []string{"local-analysis"},
		Details: operation.Details{
			Score:       &score,
			Issues:      issues,
			Suggestions: suggestions,
		},
	}
}

var clausePool = []operation.Clause{
	{
		Title:          "Multa rescisória",
		Excerpt:        "Em caso de rescisão antecipada, será devida multa equivalente ao valor integral do contrato.",
		Risk:           operation.RiskHigh,
		Recommendation: "Limitar a multa a percentual proporcional ao período restante.",
	},
	{
		Title:          "Reajuste de preço",
		Excerpt:        "Os valores serão reajustados anualmente por índice a ser definido pela contratada.",
		Risk:           operation.RiskMedium,
		Recommendation: "Fixar índice oficial de reajuste, como o IPCA.",
	},
	{
		Title:          "Confidencialidade",
		Excerpt:        "As partes manterão sigilo sobre as informações trocadas durante a vigência.",
		Risk:           operation.RiskLow,
		Recommendation: "Estender o dever de sigilo por período após o término.",
	},
	{
		Title:          "Limitação de responsabilidade",
		Excerpt:        "A contratada não responde por quaisquer danos indiretos ou lucros cessantes.",
		Risk:           operation.RiskMedium,
		Recommendation: "Excluir da limitação os casos de dolo ou culpa grave.",
	},
	{
		Title:          "Foro de eleição",
		Excerpt:        "Fica eleito o foro da comarca da sede da contratada.",
		Risk:           operation.RiskLow,
		Recommendation: "Avaliar o impacto do foro para a parte contratante.",
	},
	{
		Title:          "Renovação automática",
		Excerpt:        "O contrato será renovado automaticamente por prazo indeterminado.",
		Risk:           operation.RiskHigh,
		Recommendation: "Prever renovação expressa ou aviso prévio para denúncia.",
	},
}

// AnalyzeContract returns 1-3 clause findings from a canned pool.
func (g *Generator) AnalyzeContract(text string) operation.Result {
	n := 1 + g.intn(3)
	idx := g.perm(len(clausePool))[:n]
	clauses := make([]operation.Clause, n)
	for i, j := range idx {
		clauses[i] = clausePool[j]
	}
	overall := operation.OverallRisk(clauses)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Análise contratual: %d cláusula(s) destacada(s), risco geral %s.\n", n, riskLabel(overall))
	for _, c := range clauses {
		fmt.Fprintf(&sb, "\n- %s (risco %s): %s", c.Title, riskLabel(c.Risk), c.Recommendation)
	}

	return operation.Result{
		Content:         sb.String(),
		Confidence:      0.7 + g.float()*0.15,
		Sources:         []string{"local-contract-analysis"},
		LegalReferences: []string{legalReferencePool[0], legalReferencePool[1]},
		Details: operation.Details{
			Clauses:     clauses,
			OverallRisk: overall,
		},
	}
}

func riskLabel(r operation.Risk) string {
	switch r {
	case operation.RiskHigh:
		return "alto"
	case operation.RiskMedium:
		return "médio"
	default:
		return "baixo"
	}
}
