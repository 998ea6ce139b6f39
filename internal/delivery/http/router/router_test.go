package router

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/caption-service/internal/adapter/filesystem"
	"github.com/user/caption-service/internal/delivery/http/handler"
	"github.com/user/caption-service/internal/delivery/http/view"
	"github.com/user/caption-service/internal/entity"
	"github.com/user/caption-service/internal/usecase"
	"github.com/user/caption-service/pkg/metrics"
	"github.com/user/caption-service/pkg/utils"
)

type fixedVision struct{}

func (fixedVision) Analyze(context.Context, []byte, entity.AnalysisOptions) (*entity.AnalysisResult, error) {
	return &entity.AnalysisResult{Caption: &entity.Caption{Text: "a cat"}}, nil
}

func (fixedVision) Name() string { return "fixed" }

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := filesystem.NewUploadStore(t.TempDir())
	require.NoError(t, err)
	renderer, err := view.NewRenderer(utils.DefaultAllowedExtensions)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	pipeline := usecase.NewCaptionPipeline(store, fixedVision{}, nil, m, usecase.PipelineOptions{AnalyzeTimeout: time.Second})
	h := handler.NewHandler(pipeline, renderer, nil, "fixed", 1<<20)

	srv := httptest.NewServer(New(h, m, reg))
	t.Cleanup(srv.Close)
	return srv
}

func TestRouter_Routes(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		method     string
		path       string
		wantStatus int
	}{
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodPut, "/", http.StatusMethodNotAllowed},
		{http.MethodGet, "/missing", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, srv.URL+tt.path, nil)
			require.NoError(t, err)

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestRouter_MetricsRecordRoutePattern(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `http_requests_total{method="GET",route="/",status="200"} 1`)
}
