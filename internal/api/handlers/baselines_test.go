package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkessler/deal-ranker/internal/api/handlers"
	"github.com/mkessler/deal-ranker/pkg/dealscore"
)

type fakeRefresher struct {
	called bool
	err    error
}

func (f *fakeRefresher) RefreshNow(context.Context) error {
	f.called = true
	return f.err
}

func TestBaselinesHandler_List(t *testing.T) {
	t.Parallel()

	model := dealscore.NewModel(
		dealscore.WithMarketAverages(map[string]float64{"computers": 400}),
	)
	_, api := humatest.New(t)
	handlers.RegisterBaselineRoutes(api, handlers.NewBaselinesHandler(model, nil))

	resp := api.Get("/api/v1/baselines")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"computers":400`)
}

func TestBaselinesHandler_Refresh(t *testing.T) {
	t.Parallel()

	refresher := &fakeRefresher{}
	_, api := humatest.New(t)
	handlers.RegisterBaselineRoutes(api,
		handlers.NewBaselinesHandler(dealscore.NewModel(), refresher))

	resp := api.Post("/api/v1/baselines/refresh")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.True(t, refresher.called)
}

func TestBaselinesHandler_RefreshStaticConflict(t *testing.T) {
	t.Parallel()

	_, api := humatest.New(t)
	handlers.RegisterBaselineRoutes(api,
		handlers.NewBaselinesHandler(dealscore.NewModel(), nil))

	resp := api.Post("/api/v1/baselines/refresh")
	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestBaselinesHandler_RefreshFailure(t *testing.T) {
	t.Parallel()

	refresher := &fakeRefresher{err: errors.New("db down")}
	_, api := humatest.New(t)
	handlers.RegisterBaselineRoutes(api,
		handlers.NewBaselinesHandler(dealscore.NewModel(), refresher))

	resp := api.Post("/api/v1/baselines/refresh")
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
}
