// Package mcptools exposes the AI operations as Model Context Protocol
// tools so assistants can call them over stdio.
package mcptools

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lexdesk/lexdesk/internal/dispatch"
	"github.com/lexdesk/lexdesk/internal/log"
	"github.com/lexdesk/lexdesk/internal/operation"
	"github.com/lexdesk/lexdesk/internal/status"
)

// Service is the facade surface the tools need.
type Service interface {
	Run(ctx context.Context, kind operation.Kind, input string, reqCtx map[string]any) (dispatch.Outcome, error)
	Status() status.Report
	ForceCheck(ctx context.Context) bool
}

// OperationInput is the argument of every operation tool.
type OperationInput struct {
	Text    string         `json:"text" jsonschema:"the text, document or contract to work on"`
	Context map[string]any `json:"context,omitempty" jsonschema:"optional context such as document type or jurisdiction"`
}

// ClauseOutput is one contract finding.
type ClauseOutput struct {
	Title          string `json:"title"`
	Excerpt        string `json:"excerpt,omitempty"`
	Risk           string `json:"risk"`
	Recommendation string `json:"recommendation,omitempty"`
}

// OperationOutput is the structured result of an operation tool.
type OperationOutput struct {
	ID              string         `json:"id"`
	Content         string         `json:"content"`
	Confidence      float64        `json:"confidence"`
	Path            string         `json:"path" jsonschema:"remote or local"`
	CreatedAt       string         `json:"createdAt"`
	LegalReferences []string       `json:"legalReferences,omitempty"`
	Score           *int           `json:"score,omitempty"`
	Issues          []string       `json:"issues,omitempty"`
	Suggestions     []string       `json:"suggestions,omitempty"`
	KeyPoints       []string       `json:"keyPoints,omitempty"`
	Clauses         []ClauseOutput `json:"clauses,omitempty"`
	OverallRisk     string         `json:"overallRisk,omitempty"`
}

// StatusInput is the argument of the status tool.
type StatusInput struct {
	Refresh bool `json:"refresh,omitempty" jsonschema:"probe the remote service before answering"`
}

// StatusOutput is the structured result of the status tool.
type StatusOutput struct {
	Online            bool     `json:"online"`
	Mode              string   `json:"mode"`
	ConsecutiveErrors int      `json:"consecutiveErrors"`
	LastCheck         string   `json:"lastCheck,omitempty"`
	LastError         string   `json:"lastError,omitempty"`
	Capabilities      []string `json:"capabilities"`
}

var operationTools = []struct {
	name        string
	kind        operation.Kind
	description string
}{
	{"generate_text", operation.GenerateText, "Draft legal text (contracts, petitions, opinions, notices) from a prompt."},
	{"analyze_document", operation.AnalyzeDocument, "Score a legal document from 0 to 100 and list issues and missing clauses."},
	{"summarize_text", operation.SummarizeText, "Summarize a legal text into at most five key points."},
	{"analyze_contract", operation.AnalyzeContract, "Find risky clauses in a contract and rate the overall risk."},
}

// NewServer builds an MCP server with one tool per operation plus
// service_status.
func NewServer(svc Service, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "lexdesk", Version: version}, nil)

	for _, t := range operationTools {
		mcp.AddTool(server, &mcp.Tool{Name: t.name, Description: t.description}, operationHandler(svc, t.kind))
	}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "service_status",
		Description: "Report whether the remote AI service is online and which capabilities are available.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in StatusInput) (*mcp.CallToolResult, StatusOutput, error) {
		if in.Refresh {
			svc.ForceCheck(ctx)
		}
		return nil, statusOutput(svc.Status()), nil
	})

	return server
}

// Serve runs the server over stdin/stdout until ctx ends or the client
// disconnects.
func Serve(ctx context.Context, svc Service, version string) error {
	log.Info().Str("version", version).Msg("Serving MCP tools on stdio")
	return NewServer(svc, version).Run(ctx, &mcp.StdioTransport{})
}

func operationHandler(svc Service, kind operation.Kind) mcp.ToolHandlerFor[OperationInput, OperationOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in OperationInput) (*mcp.CallToolResult, OperationOutput, error) {
		out, err := svc.Run(ctx, kind, in.Text, in.Context)
		if err != nil {
			return nil, OperationOutput{}, err
		}
		return nil, operationOutput(out), nil
	}
}

func operationOutput(out dispatch.Outcome) OperationOutput {
	r := out.Result
	o := OperationOutput{
		ID:              r.ID,
		Content:         r.Content,
		Confidence:      r.Confidence,
		Path:            string(out.Path),
		CreatedAt:       r.CreatedAt.Format(time.RFC3339),
		LegalReferences: r.LegalReferences,
		Score:           r.Details.Score,
		Issues:          r.Details.Issues,
		Suggestions:     r.Details.Suggestions,
		KeyPoints:       r.Details.KeyPoints,
		OverallRisk:     string(r.Details.OverallRisk),
	}
	for _, c := range r.Details.Clauses {
		o.Clauses = append(o.Clauses, ClauseOutput{
			Title:          c.Title,
			Excerpt:        c.Excerpt,
			Risk:           string(c.Risk),
			Recommendation: c.Recommendation,
		})
	}
	return o
}

func statusOutput(r status.Report) StatusOutput {
	o := StatusOutput{
		Online:            r.Status.IsOnline,
		Mode:              string(r.Status.Mode),
		ConsecutiveErrors: r.Status.ConsecutiveErrors,
		LastError:         r.Status.LastError,
		Capabilities:      r.Capabilities,
	}
	if !r.Status.LastCheck.IsZero() {
		o.LastCheck = r.Status.LastCheck.Format(time.RFC3339)
	}
	return o
}
