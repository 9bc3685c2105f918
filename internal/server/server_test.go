package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pazuzu-registry/internal/bootstrap"
	"pazuzu-registry/internal/config"
	"pazuzu-registry/internal/dto"
	"pazuzu-registry/internal/pkg/logger"
	"pazuzu-registry/internal/pkg/serverutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemoryServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{
		App:      config.AppConfig{Port: "0", CorsAllowedOrigins: "*"},
		Database: config.DatabaseConfig{Driver: "memory", TxMaxRetries: 1},
		Events:   config.EventsConfig{FeatureTopic: "FEATURE_CHANGED"},
		Cache:    config.CacheConfig{PlanTTLSeconds: 60},
	}

	uowFactory, err := bootstrap.NewRepositoryFactory(cfg)
	require.NoError(t, err)

	container := bootstrap.NewContainer(uowFactory, cfg, logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, container.Start(ctx))
	t.Cleanup(func() {
		cancel()
		container.Close()
	})

	return New(cfg, container)
}

func TestServer_BuildPlanAfterUpdate(t *testing.T) {
	app := newMemoryServer(t).GetApp()

	post := func(body string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/features", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp.StatusCode
	}
	sorted := func() []string {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/features/sorted?names=app", nil), -1)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var res serverutils.BaseResponse[[]dto.FeatureResponse]
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
		names := make([]string, 0, len(res.Data))
		for _, f := range res.Data {
			names = append(names, f.Name)
		}
		return names
	}

	require.Equal(t, http.StatusCreated, post(`{"name":"base"}`))
	require.Equal(t, http.StatusCreated, post(`{"name":"python","dependencies":["base"]}`))
	require.Equal(t, http.StatusCreated, post(`{"name":"app","dependencies":["base"]}`))
	assert.Equal(t, []string{"base", "app"}, sorted())

	req := httptest.NewRequest(http.MethodPut, "/api/features/app", strings.NewReader(`{"dependencies":["python"]}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, []string{"base", "python", "app"}, sorted())
}

func TestServer_UnknownRoute(t *testing.T) {
	app := newMemoryServer(t).GetApp()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/nope", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestNewRepositoryFactory_Errors(t *testing.T) {
	_, err := bootstrap.NewRepositoryFactory(&config.Config{Database: config.DatabaseConfig{Driver: "postgres"}})
	assert.Error(t, err)

	_, err = bootstrap.NewRepositoryFactory(&config.Config{Database: config.DatabaseConfig{Driver: "mongo"}})
	assert.Error(t, err)
}
