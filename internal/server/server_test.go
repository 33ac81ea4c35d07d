package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketScreener/internal/metrics"
	"MarketScreener/internal/model"
	"MarketScreener/internal/scanner"
)

type staticReports struct {
	report *scanner.RunReport
}

func (s staticReports) LastReport() (scanner.RunReport, bool) {
	if s.report == nil {
		return scanner.RunReport{}, false
	}
	return *s.report, true
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthz(t *testing.T) {
	h := NewRouter(staticReports{}, metrics.New())
	rec := get(t, h, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetrics(t *testing.T) {
	m := metrics.New()
	m.Record("banks")
	rec := get(t, NewRouter(staticReports{}, m), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `screener_tickers_processed_total{group="banks",outcome="record"} 1`))
}

func TestLatestRun(t *testing.T) {
	h := NewRouter(staticReports{}, metrics.New())
	assert.Equal(t, http.StatusNotFound, get(t, h, "/api/v1/runs/latest").Code)

	report := &scanner.RunReport{
		RunID: "abc",
		Groups: []scanner.GroupReport{{
			Group:   "banks",
			Records: []model.Record{{Ticker: "BBRI.JK", Score: 80}},
			Skipped: []model.SkipReason{{Ticker: "NEW.JK", Kind: model.SkipInsufficientHistory}},
		}},
	}
	h = NewRouter(staticReports{report: report}, metrics.New())

	rec := get(t, h, "/api/v1/runs/latest")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		RunID  string `json:"run_id"`
		Groups []struct {
			Group   string `json:"group"`
			Skipped []struct {
				Ticker string `json:"ticker"`
				Kind   string `json:"kind"`
			} `json:"skipped"`
		} `json:"groups"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "abc", body.RunID)
	require.Len(t, body.Groups, 1)
	assert.Equal(t, "insufficient_history", body.Groups[0].Skipped[0].Kind)

	rec = get(t, h, "/api/v1/runs/latest/groups/banks")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ticker":"BBRI.JK"`)

	assert.Equal(t, http.StatusNotFound, get(t, h, "/api/v1/runs/latest/groups/energy").Code)
}
