package telemetry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evalgate/evalgate/internal/config"
	"github.com/evalgate/evalgate/internal/eval"
)

func testReport() *eval.Report {
	return &eval.Report{
		ID: "report-1",
		Results: []eval.Result{
			{Metric: "Correctness", Status: eval.StatusScored, Score: 0.9, Passed: true},
		},
	}
}

func TestPublishSendsReport(t *testing.T) {
	var gotAuth string
	var gotReport eval.Report

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReport))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	p, err := NewPublisher(config.Dashboard{URL: srv.URL, APIKey: "dash-key"})
	require.NoError(t, err)
	require.True(t, p.Enabled())

	require.NoError(t, p.Publish(context.Background(), testReport()))
	assert.Equal(t, "Bearer dash-key", gotAuth)
	assert.Equal(t, "report-1", gotReport.ID)
}

func TestPublishDisabledIsNoOp(t *testing.T) {
	p, err := NewPublisher(config.Dashboard{})
	require.NoError(t, err)
	assert.False(t, p.Enabled())

	assert.NoError(t, p.Publish(context.Background(), testReport()))
}

func TestPublishServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "no such project", http.StatusNotFound)
	}))
	defer srv.Close()

	p, err := NewPublisher(config.Dashboard{URL: srv.URL, APIKey: "dash-key"})
	require.NoError(t, err)

	err = p.Publish(context.Background(), testReport())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestNewPublisherRequiredWithoutCredential(t *testing.T) {
	_, err := NewPublisher(config.Dashboard{Required: true})
	assert.Error(t, err)
}

func TestNilPublisherIsDisabled(t *testing.T) {
	var p *Publisher
	assert.False(t, p.Enabled())
	assert.NoError(t, p.Publish(context.Background(), testReport()))
	assert.False(t, p.Required())
}
