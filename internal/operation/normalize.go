package operation

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrEmptyContent is returned by Normalize for a result without content.
var ErrEmptyContent = errors.New("result content is empty")

// Clamp bounds a confidence to [0,1]. NaN becomes 0.
func Clamp(confidence float64) float64 {
	if math.IsNaN(confidence) || confidence < 0 {
		return 0
	}
	if confidence > 1 {
		return 1
	}
	return confidence
}

// Normalize enforces the result invariants: non-empty content, confidence
// in [0,1], an id, a creation time and non-nil reference lists.
func Normalize(r Result, now time.Time) (Result, error) {
	if strings.TrimSpace(r.Content) == "" {
		return Result{}, ErrEmptyContent
	}

	r.Confidence = Clamp(r.Confidence)
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	if r.Sources == nil {
		r.Sources = []string{}
	}
	if r.LegalReferences == nil {
		r.LegalReferences = []string{}
	}
	if r.Details.Score != nil {
		s := *r.Details.Score
		if s < 0 {
			s = 0
		} else if s > 100 {
			s = 100
		}
		r.Details.Score = &s
	}
	if len(r.Details.Clauses) > 0 && r.Details.OverallRisk == "" {
		r.Details.OverallRisk = OverallRisk(r.Details.Clauses)
	}

	return r, nil
}
