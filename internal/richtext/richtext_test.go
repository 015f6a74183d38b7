package richtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsHTML(t *testing.T) {
	assert.True(t, IsHTML("<p>Contrato</p>"))
	assert.True(t, IsHTML(`texto <strong class="x">forte</strong>`))
	assert.True(t, IsHTML("linha<br/>outra"))
	assert.False(t, IsHTML("valor < 10 e > 5"))
	assert.False(t, IsHTML("Contrato de locação."))
}

func TestConvertPlainPassesThrough(t *testing.T) {
	doc, err := Convert("Cláusula primeira. Do objeto.")
	require.NoError(t, err)

	assert.False(t, doc.HTML)
	assert.Equal(t, "Cláusula primeira. Do objeto.", doc.Text)
	assert.Equal(t, doc.Text, doc.Markdown)
}

func TestPlainTextKeepsBlockBoundaries(t *testing.T) {
	in := `<h1>Contrato</h1><p>Primeira   cláusula.</p><ul><li>Pagamento</li><li>Foro</li></ul>` +
		`<script>alert(1)</script><p>Fim<br>do texto</p>`

	text, err := PlainText(in)
	require.NoError(t, err)

	assert.Equal(t, "Contrato\nPrimeira cláusula.\nPagamento\nForo\nFim\ndo texto", text)
}

func TestConvertHTML(t *testing.T) {
	doc, err := Convert(`<h2>Objeto</h2><p>O <strong>locador</strong> cede o imóvel.</p>`)
	require.NoError(t, err)

	assert.True(t, doc.HTML)
	assert.Equal(t, "Objeto\nO locador cede o imóvel.", doc.Text)
	assert.Contains(t, doc.Markdown, "## Objeto")
	assert.Contains(t, doc.Markdown, "**locador**")
}
