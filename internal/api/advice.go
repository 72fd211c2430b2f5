package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/ashureev/careerdesk/internal/advice"
	"github.com/ashureev/careerdesk/internal/apperr"
	"github.com/ashureev/careerdesk/internal/domain"
	"go.uber.org/zap"
)

type exportResult struct {
	Title    string          `json:"title"`
	Response json.RawMessage `json:"response,omitempty"`
	Error    string          `json:"error,omitempty"`
}

type adviceResponse struct {
	Advice    *domain.Advice               `json:"advice"`
	ToolCalls []advice.ToolInvocation      `json:"tool_calls"`
	Exports   []exportResult               `json:"exports"`
	LinkedIn  *domain.LinkedInOptimization `json:"linkedin"`
	Provider  string                       `json:"provider"`
}

// GenerateAdvice runs the advice generator over the stored data and
// performs the side effects of the tools the model called.
func (h *Handler) GenerateAdvice(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Task string `json:"task"`
	}
	// An empty body means the default task, chunked or not.
	if err := decodeJSON(w, r, &body); err != nil && !errors.Is(err, io.EOF) {
		h.writeError(w, r, err)
		return
	}
	task, err := advice.ParseTask(body.Task)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	snap, err := h.loadSnapshot(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	notionConnected := snap.Profile.Connected(domain.ServiceNotion)

	result, err := h.advice.Generate(r.Context(), advice.Input{
		Snapshot:        snap,
		NotionConnected: notionConnected,
		Task:            task,
	})
	if err != nil {
		h.logger.Error("Advice unavailable",
			zap.String("task", string(task)),
			zap.String("kind", string(apperr.KindOf(err))),
			zap.Error(err),
		)
		Error(w, http.StatusBadGateway, advice.UnavailableMessage)
		return
	}

	resp := adviceResponse{
		Advice:    result.Advice,
		ToolCalls: result.ToolCalls,
		Exports:   []exportResult{},
		Provider:  result.Provider,
	}

	for _, call := range result.ToolCalls {
		switch call.Name {
		case advice.ToolCreateNotionPage:
			if !notionConnected {
				h.logger.Info("Ignoring export tool call, Notion is not connected")
				continue
			}
			page, err := call.NotionPage()
			if err != nil {
				resp.Exports = append(resp.Exports, exportResult{Error: apperr.MessageOf(err)})
				continue
			}
			resp.Exports = append(resp.Exports, h.exportPlan(r.Context(), snap.Profile.NotionToken, page))
		case advice.ToolOptimizeLinkedIn:
			opt, err := call.LinkedInOptimization()
			if err != nil {
				h.logger.Warn("Invalid LinkedIn optimization", zap.Error(err))
				continue
			}
			resp.LinkedIn = opt
		default:
			h.logger.Warn("Unknown tool call", zap.String("tool", call.Name))
		}
	}

	JSON(w, http.StatusOK, resp)
}

// exportPlan sends a model-written plan to Notion. Failures are reported in
// the result rather than failing the request.
func (h *Handler) exportPlan(ctx context.Context, token string, page advice.NotionPage) exportResult {
	out := exportResult{Title: page.Title}
	raw, err := h.notion.Export(ctx, token, advice.PlanFromPage(page), page.Title)
	if err != nil {
		h.logger.Warn("Automatic export failed", zap.Error(err))
		out.Error = apperr.MessageOf(err)
		return out
	}
	h.logger.Info("Plan exported", zap.String("user_action", "auto_export"))
	out.Response = raw
	return out
}
