package operation

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-0.5))
	assert.Equal(t, 1.0, Clamp(1.7))
	assert.Equal(t, 0.42, Clamp(0.42))
	assert.Equal(t, 0.0, Clamp(math.NaN()))
}

func TestNormalizeRejectsEmptyContent(t *testing.T) {
	_, err := Normalize(Result{Content: "  \n"}, time.Now())
	assert.ErrorIs(t, err, ErrEmptyContent)
}

func TestNormalizeFillsDefaults(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	score := 140

	r, err := Normalize(Result{
		Content:    "Parecer",
		Confidence: 3,
		Details: Details{
			Score:   &score,
			Clauses: []Clause{{Title: "Multa", Risk: RiskHigh}},
		},
	}, now)
	require.NoError(t, err)

	assert.NotEmpty(t, r.ID)
	assert.Equal(t, now, r.CreatedAt)
	assert.Equal(t, 1.0, r.Confidence)
	assert.NotNil(t, r.Sources)
	assert.NotNil(t, r.LegalReferences)
	assert.Equal(t, 100, *r.Details.Score)
	assert.Equal(t, RiskHigh, r.Details.OverallRisk)
	assert.Equal(t, 140, score, "caller's score must not be mutated")
}

func TestOverallRisk(t *testing.T) {
	tests := []struct {
		name  string
		risks []Risk
		want  Risk
	}{
		{"any high", []Risk{RiskLow, RiskHigh}, RiskHigh},
		{"two medium", []Risk{RiskMedium, RiskMedium}, RiskMedium},
		{"single medium", []Risk{RiskMedium, RiskLow}, RiskLow},
		{"all low", []Risk{RiskLow}, RiskLow},
		{"empty", nil, RiskLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clauses := make([]Clause, len(tt.risks))
			for i, r := range tt.risks {
				clauses[i] = Clause{Risk: r}
			}
			assert.Equal(t, tt.want, OverallRisk(clauses))
		})
	}
}

func TestWireMappingKeepsClauses(t *testing.T) {
	score := 80
	in := Result{
		ID:      "r-1",
		Content: "Análise",
		Details: Details{
			Score:       &score,
			Clauses:     []Clause{{Title: "Rescisão", Risk: RiskMedium}},
			OverallRisk: RiskLow,
		},
	}

	out := FromWire(ToWire(in))
	assert.Equal(t, in.ID, out.ID)
	assert.Equal(t, 80, *out.Details.Score)
	require.Len(t, out.Details.Clauses, 1)
	assert.Equal(t, RiskMedium, out.Details.Clauses[0].Risk)
}

func TestKindValid(t *testing.T) {
	assert.True(t, SummarizeText.Valid())
	assert.False(t, Kind("translate").Valid())
}
