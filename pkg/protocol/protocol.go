// Package protocol provides the JSON shapes exchanged with the remote AI
// backend and with browser clients of the LexDesk API.
// These types can be imported by external tools and extensions.
package protocol

import (
	"encoding/json"
	"time"
)

// OperationRequest is the body of every AI operation endpoint.
type OperationRequest struct {
	Text     string         `json:"text"`
	Markdown string         `json:"markdown,omitempty"` // Rich text converted for the backend
	Context  map[string]any `json:"context,omitempty"`
}

// Clause is one finding of a contract analysis.
type Clause struct {
	Title          string `json:"title"`
	Excerpt        string `json:"excerpt,omitempty"`
	Risk           string `json:"risk"` // low, medium, high
	Recommendation string `json:"recommendation,omitempty"`
}

// OperationResponse is the normalized result of any AI operation.
type OperationResponse struct {
	ID              string    `json:"id"`
	Content         string    `json:"content"`
	Confidence      float64   `json:"confidence"`
	CreatedAt       time.Time `json:"timestampCreated"`
	Sources         []string  `json:"sources"`
	LegalReferences []string  `json:"legalReferences"`

	// Operation specific details
	Score       *int     `json:"score,omitempty"`
	Issues      []string `json:"issues,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
	KeyPoints   []string `json:"keyPoints,omitempty"`
	Clauses     []Clause `json:"clauses,omitempty"`
	OverallRisk string   `json:"overallRisk,omitempty"`
}

// Envelope is the wrapper some backend deployments put around payloads.
type Envelope struct {
	Success *bool           `json:"success,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// StatusResponse is returned by GET /api/status.
type StatusResponse struct {
	IsOnline          bool      `json:"isOnline"`
	LastCheck         time.Time `json:"lastCheckTimestamp"`
	Mode              string    `json:"mode"` // remote, local
	ConsecutiveErrors int       `json:"consecutiveErrorCount"`
	LastError         string    `json:"lastError,omitempty"`
	LastErrorKind     string    `json:"lastErrorKind,omitempty"`
	Capabilities      []string  `json:"capabilities"`
}

// HistoryEntry is one journaled operation.
type HistoryEntry struct {
	ID         string    `json:"id"`
	Operation  string    `json:"operation"`
	Path       string    `json:"path"`
	Confidence float64   `json:"confidence"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// ErrorResponse is the body of a failed API call.
type ErrorResponse struct {
	Error       string   `json:"error"`
	Code        string   `json:"code,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status string `json:"status"`
	Mode   string `json:"mode,omitempty"`
}
