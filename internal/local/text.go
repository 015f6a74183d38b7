package local

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/lexdesk/lexdesk/internal/operation"
)

// Category is the kind of legal text a prompt asks for.
type Category string

const (
	CategoryContract Category = "contract"
	CategoryPetition Category = "petition"
	CategoryOpinion  Category = "opinion"
	CategoryNotice   Category = "notice"
	CategoryGeneral  Category = "general"
)

type categoryPattern struct {
	category Category
	keywords []string
}

// Checked in order; the first category with a keyword hit wins. Keywords
// match whole words, so "ação judicial" never matches inside "locação".
var categoryPatterns = []categoryPattern{
	{CategoryContract, []string{"contrato", "contratos", "cláusula", "clausula", "contratante", "contratada", "contract", "clause"}},
	{CategoryPetition, []string{"petição", "peticao", "petição inicial", "ação judicial", "acao judicial", "ajuizar", "excelentíssimo", "juízo", "petition", "lawsuit"}},
	{CategoryOpinion, []string{"parecer", "opinião", "opiniao", "análise jurídica", "consulta", "opinion"}},
	{CategoryNotice, []string{"notificação", "notificacao", "notificar", "extrajudicial", "notice"}},
}

var templates = map[Category][]string{
	CategoryContract: {
		"MINUTA DE CONTRATO\n\nObjeto: {{topic}}\n\nCLÁUSULA PRIMEIRA - DO OBJETO. As partes ajustam a prestação descrita acima, observada a boa-fé objetiva.\nCLÁUSULA SEGUNDA - DO PAGAMENTO. O preço será pago nas condições acordadas entre as partes.\nCLÁUSULA TERCEIRA - DA RESCISÃO. O inadimplemento autoriza a resolução do contrato mediante notificação prévia.\nCLÁUSULA QUARTA - DO FORO. Fica eleito o foro da comarca do contratante.",
		"CONTRATO DE PRESTAÇÃO DE SERVIÇOS\n\nReferente a: {{topic}}\n\n1. Do objeto e da vigência.\n2. Das obrigações das partes.\n3. Da remuneração e do reajuste.\n4. Da confidencialidade.\n5. Da rescisão e das penalidades.",
	},
	CategoryPetition: {
		"EXCELENTÍSSIMO SENHOR DOUTOR JUIZ DE DIREITO\n\nAssunto: {{topic}}\n\nI - DOS FATOS\nO autor expõe os fatos que fundamentam o pedido.\n\nII - DO DIREITO\nA pretensão encontra amparo na legislação aplicável.\n\nIII - DOS PEDIDOS\nRequer a procedência da ação com a condenação da parte ré.",
		"PETIÇÃO INICIAL\n\nTema: {{topic}}\n\nDos fatos, do direito e dos pedidos, nos termos da legislação processual vigente.",
	},
	CategoryOpinion: {
		"PARECER JURÍDICO\n\nConsulta: {{topic}}\n\nEMENTA: Análise preliminar da questão submetida.\n\nFUNDAMENTAÇÃO: A matéria deve ser examinada à luz da legislação e da jurisprudência dominante.\n\nCONCLUSÃO: Recomenda-se a adoção das cautelas indicadas.",
	},
	CategoryNotice: {
		"NOTIFICAÇÃO EXTRAJUDICIAL\n\nReferência: {{topic}}\n\nPela presente, fica V. Sa. notificada para, no prazo de 10 (dez) dias, adotar as providências cabíveis, sob pena das medidas judiciais pertinentes.",
	},
	CategoryGeneral: {
		"DOCUMENTO JURÍDICO\n\nTema: {{topic}}\n\nO texto a seguir apresenta os pontos centrais do tema, a legislação aplicável e as recomendações práticas para o caso.",
		"MINUTA\n\nAssunto: {{topic}}\n\nConsiderações iniciais, fundamentos legais e encaminhamentos sugeridos.",
	},
}

// legalReferencePool is the fixed set citations are drawn from.
var legalReferencePool = []string{
	"Código Civil, art. 421 (função social do contrato)",
	"Código Civil, art. 422 (boa-fé objetiva)",
	"Código Civil, art. 475 (resolução por inadimplemento)",
	"Código Civil, art. 408 (cláusula penal)",
	"Código de Processo Civil, art. 319 (requisitos da petição inicial)",
	"Constituição Federal, art. 5º, XXXV (inafastabilidade da jurisdição)",
	"Código de Defesa do Consumidor, art. 51 (cláusulas abusivas)",
	"Lei nº 13.709/2018 (LGPD), art. 7º",
}

// Categorize picks the prompt category by keyword matching.
func Categorize(text string) Category {
	words := wordText(text)
	for _, p := range categoryPatterns {
		for _, kw := range p.keywords {
			if hasTerm(words, kw) {
				return p.category
			}
		}
	}
	return CategoryGeneral
}

// wordText lowercases s and reduces it to single-space separated words,
// padded with a space on each side.
func wordText(s string) string {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return " " + strings.Join(words, " ") + " "
}

// hasTerm reports whether term occurs in words as whole words.
func hasTerm(words, term string) bool {
	return strings.Contains(words, wordText(term))
}

// GenerateText fills a category template and cites 2-4 references.
func (g *Generator) GenerateText(prompt string) operation.Result {
	category := Categorize(prompt)
	options := templates[category]
	tmpl := options[g.intn(len(options))]

	refs := g.references()
	var sb strings.Builder
	sb.WriteString(strings.ReplaceAll(tmpl, "{{topic}}", topic(prompt)))
	sb.WriteString("\n\nFundamentação legal:\n")
	for _, ref := range refs {
		sb.WriteString("- ")
		sb.WriteString(ref)
		sb.WriteString("\n")
	}

	return operation.Result{
		Content:         strings.TrimSpace(sb.String()),
		Confidence:      0.7 + g.float()*0.2,
		Sources:         []string{fmt.Sprintf("local-template:%s", category)},
		LegalReferences: refs,
	}
}

func (g *Generator) references() []string {
	n := 2 + g.intn(3)
	idx := g.perm(len(legalReferencePool))[:n]
	refs := make([]string, n)
	for i, j := range idx {
		refs[i] = legalReferencePool[j]
	}
	return refs
}

// topic is the prompt cut to a short single line.
func topic(prompt string) string {
	t := strings.Join(strings.Fields(prompt), " ")
	if t == "" {
		return "não informado"
	}
	runes := []rune(t)
	if len(runes) > 80 {
		return string(runes[:80]) + "..."
	}
	return t
}
