package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/esg-report-api/pkg/gri"
)

func TestGRIHandlerListFiltersByStep(t *testing.T) {
	catalog, err := gri.Default()
	require.NoError(t, err)
	handler := NewGRIHandler(catalog)

	c, w := newGinContext(http.MethodGet, "/gri/indicators?step=environmental", nil)
	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	var items []gri.Indicator
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &items))
	require.NotEmpty(t, items)
	for _, item := range items {
		assert.Equal(t, "environmental", item.Step)
	}
	assert.Less(t, len(items), len(catalog.All()))
	assert.Equal(t, catalog.Version, decodeEnvelope(t, w).Meta["catalog_version"])
}

func TestMetricsHandlerReady(t *testing.T) {
	handler := NewMetricsHandler(nil, map[string]ReadinessCheck{
		"database": func(context.Context) error { return nil },
	})
	c, w := newGinContext(http.MethodGet, "/ready", nil)
	handler.Ready(c)
	assert.Equal(t, http.StatusOK, w.Code)

	handler = NewMetricsHandler(nil, map[string]ReadinessCheck{
		"database": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	})
	c, w = newGinContext(http.MethodGet, "/ready", nil)
	handler.Ready(c)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "ok", body.Checks["database"])
	assert.Equal(t, "connection refused", body.Checks["redis"])
}

func TestMetricsHandlerPrometheusUnavailableWithoutRegistry(t *testing.T) {
	handler := NewMetricsHandler(nil, nil)
	c, _ := newGinContext(http.MethodGet, "/metrics", nil)
	handler.Prometheus(c)
	assert.Equal(t, http.StatusServiceUnavailable, c.Writer.Status())
}
