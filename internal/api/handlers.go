package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	apperrors "github.com/lexdesk/lexdesk/internal/errors"
	"github.com/lexdesk/lexdesk/internal/operation"
	"github.com/lexdesk/lexdesk/internal/status"
	"github.com/lexdesk/lexdesk/pkg/protocol"
)

const maxHistoryLimit = 500

// HealthHandler reports that the API itself is up.
func (s *Server) HealthHandler(ctx echo.Context) error {
	mode := string(s.svc.Status().Status.Mode)
	if s.cfg.Mock {
		mode = "mock"
	}
	return ctx.JSON(http.StatusOK, protocol.HealthResponse{Status: "ok", Mode: mode})
}

// StatusHandler returns the facade status without probing.
func (s *Server) StatusHandler(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, statusResponse(s.svc.Status()))
}

// RefreshHandler forces a probe and returns the resulting status.
func (s *Server) RefreshHandler(ctx echo.Context) error {
	s.svc.ForceCheck(ctx.Request().Context())
	return ctx.JSON(http.StatusOK, statusResponse(s.svc.Status()))
}

// StatsHandler returns dispatch statistics.
func (s *Server) StatsHandler(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, s.svc.Stats(ctx.Request().Context()))
}

// HistoryHandler lists journaled results.
func (s *Server) HistoryHandler(ctx echo.Context) error {
	kind := operation.Kind(ctx.QueryParam("operation"))
	if kind != "" && !kind.Valid() {
		return errorJSON(ctx, apperrors.InvalidInput("unknown operation "+string(kind)))
	}

	limit := 0
	if raw := ctx.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return errorJSON(ctx, apperrors.InvalidInput("limit must be a non-negative integer"))
		}
		limit = min(n, maxHistoryLimit)
	}

	entries, err := s.svc.History(ctx.Request().Context(), kind, limit)
	if err != nil {
		return errorJSON(ctx, err)
	}

	out := make([]protocol.HistoryEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, protocol.HistoryEntry{
			ID:         e.ID,
			Operation:  string(e.Operation),
			Path:       string(e.Path),
			Confidence: e.Confidence,
			Content:    e.Content,
			CreatedAt:  e.CreatedAt,
		})
	}
	return ctx.JSON(http.StatusOK, out)
}

func (s *Server) operationHandler(kind operation.Kind) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		var req protocol.OperationRequest
		if err := ctx.Bind(&req); err != nil {
			return errorJSON(ctx, apperrors.InvalidInput("request body must be JSON with a \"text\" field"))
		}

		out, err := s.svc.Run(ctx.Request().Context(), kind, req.Text, req.Context)
		if err != nil {
			return errorJSON(ctx, err)
		}

		ctx.Response().Header().Set(PathHeader, string(out.Path))
		return ctx.JSON(http.StatusOK, operation.ToWire(out.Result))
	}
}

func statusResponse(r status.Report) protocol.StatusResponse {
	return protocol.StatusResponse{
		IsOnline:          r.Status.IsOnline,
		LastCheck:         r.Status.LastCheck,
		Mode:              string(r.Status.Mode),
		ConsecutiveErrors: r.Status.ConsecutiveErrors,
		LastError:         r.Status.LastError,
		LastErrorKind:     r.Status.LastErrorKind,
		Capabilities:      r.Capabilities,
	}
}

func errorJSON(ctx echo.Context, err error) error {
	resp := protocol.ErrorResponse{
		Error:       apperrors.FormatUserMessage(err),
		Suggestions: apperrors.GetSuggestions(err),
	}
	if appErr, ok := apperrors.AsAppError(err); ok {
		resp.Error = appErr.Message
		resp.Code = appErr.Code
	}
	return ctx.JSON(apperrors.HTTPStatus(err), resp)
}
