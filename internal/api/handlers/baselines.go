package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mkessler/deal-ranker/pkg/dealscore"
)

// BaselineRefresher triggers an immediate market-average reload.
type BaselineRefresher interface {
	RefreshNow(ctx context.Context) error
}

// BaselinesHandler exposes the market-average table and its refresh.
type BaselinesHandler struct {
	model     *dealscore.Model
	refresher BaselineRefresher
}

// NewBaselinesHandler creates a new BaselinesHandler. The refresher is
// nil when baselines come from static configuration only.
func NewBaselinesHandler(m *dealscore.Model, r BaselineRefresher) *BaselinesHandler {
	return &BaselinesHandler{model: m, refresher: r}
}

// ListBaselinesOutput is the response for listing market averages.
type ListBaselinesOutput struct {
	Body struct {
		Averages map[string]float64 `json:"averages" doc:"Market-average price per category"`
	}
}

// ListBaselines returns the market-average table currently in use.
func (h *BaselinesHandler) ListBaselines(
	_ context.Context,
	_ *struct{},
) (*ListBaselinesOutput, error) {
	out := &ListBaselinesOutput{}
	out.Body.Averages = h.model.MarketAverages()
	return out, nil
}

// RefreshOutput is the response body for the baseline refresh endpoint.
type RefreshOutput struct {
	Body struct {
		Status string `json:"status" example:"baseline refresh completed" doc:"Refresh status"`
	}
}

// Refresh reloads the market-average table from its source.
func (h *BaselinesHandler) Refresh(ctx context.Context, _ *struct{}) (*RefreshOutput, error) {
	if h.refresher == nil {
		return nil, huma.Error409Conflict("baselines are statically configured")
	}
	if err := h.refresher.RefreshNow(ctx); err != nil {
		return nil, huma.Error500InternalServerError("baseline refresh failed: " + err.Error())
	}

	resp := &RefreshOutput{}
	resp.Body.Status = "baseline refresh completed"
	return resp, nil
}

// RegisterBaselineRoutes registers baseline endpoints with the Huma API.
func RegisterBaselineRoutes(api huma.API, h *BaselinesHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-baselines",
		Method:      http.MethodGet,
		Path:        "/api/v1/baselines",
		Summary:     "List market-average baselines",
		Description: "Returns the category market-average table the deal model is scoring against.",
		Tags:        []string{"scoring"},
	}, h.ListBaselines)

	huma.Register(api, huma.Operation{
		OperationID: "refresh-baselines",
		Method:      http.MethodPost,
		Path:        "/api/v1/baselines/refresh",
		Summary:     "Refresh market-average baselines",
		Description: "Reloads the market-average table from its configured source and swaps it in.",
		Tags:        []string{"scoring"},
		Errors:      []int{http.StatusConflict, http.StatusInternalServerError},
	}, h.Refresh)
}
