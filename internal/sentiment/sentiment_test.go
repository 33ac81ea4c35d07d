package sentiment

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanTicker(t *testing.T) {
	assert.Equal(t, "BBRI", CleanTicker("BBRI.JK"))
	assert.Equal(t, "AAPL", CleanTicker("AAPL"))
	assert.Equal(t, "BRK", CleanTicker("BRK.B"))
}

func TestAnalyzer(t *testing.T) {
	a := NewAnalyzer()
	tests := []struct {
		name      string
		headlines []string
		extra     []string
		narrative string
		score     int
	}{
		{"no news", nil, nil, "No News", 0},
		{"positive", []string{"BBRI bagikan Dividen jumbo", "Laba naik 10%"}, nil, "POSITIVE NEWS | BBRI bagikan Dividen jumbo", 2},
		{"negative", []string{"Saham GOTO anjlok, rugi membengkak"}, nil, "NEGATIVE NEWS | Saham GOTO anjlok, rugi membengkak", -2},
		{"neutral", []string{"Jadwal RUPS pekan depan"}, nil, "NEUTRAL | Jadwal RUPS pekan depan", 0},
		{"sector keyword", []string{"Harga nikel menguat"}, []string{"nikel"}, "POSITIVE NEWS | Harga nikel menguat", 1},
		{
			"only top three count",
			[]string{"netral", "netral", "netral", "dividen dan buyback"},
			nil, "NEUTRAL | netral", 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.Analyze(tt.headlines, tt.extra)
			assert.Equal(t, tt.narrative, got.Narrative)
			assert.Equal(t, tt.score, got.Score)
		})
	}
}

const rssBody = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>news</title>
<item><title>BBRI catat laba naik, siapkan buyback</title></item>
<item><title>Analis: saham bank masih positif</title></item>
<item><title>OJK beri sanksi ringan</title></item>
</channel></rss>`

func TestGoogleNewsSource_Check(t *testing.T) {
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, rssBody)
	}))
	defer srv.Close()

	src := NewGoogleNewsSource(GoogleNewsConfig{BaseURL: srv.URL}, nil)
	got, err := src.Check(context.Background(), "BBRI.JK", nil)
	require.NoError(t, err)

	assert.Contains(t, query, "q=BBRI+when%3A7d")
	assert.Contains(t, query, "hl=id")
	assert.Contains(t, query, "ceid=ID%3Aid")
	// laba naik + buyback + positif - sanksi
	assert.Equal(t, 2, got.Score)
	assert.Equal(t, "POSITIVE NEWS | BBRI catat laba naik, siapkan buyback", got.Narrative)
}

func TestGoogleNewsSource_Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	src := NewGoogleNewsSource(GoogleNewsConfig{BaseURL: srv.URL}, nil)
	got, err := src.Check(context.Background(), "GOTO.JK", nil)
	require.Error(t, err)
	assert.Equal(t, NarrativeError, got.Narrative)
	assert.Equal(t, 0, got.Score)
}

func TestGoogleNewsSource_ThrottleHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rssBody)
	}))
	defer srv.Close()

	src := NewGoogleNewsSource(GoogleNewsConfig{BaseURL: srv.URL, Interval: time.Hour}, nil)
	_, err := src.Check(context.Background(), "BBRI.JK", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = src.Check(ctx, "BBRI.JK", nil)
	assert.Error(t, err)
}

func TestStaticSource(t *testing.T) {
	s := &StaticSource{Errors: map[string]error{"GOTO": assert.AnError}}
	_, err := s.Check(context.Background(), "GOTO.JK", nil)
	assert.ErrorIs(t, err, assert.AnError)

	got, err := s.Check(context.Background(), "BBCA.JK", nil)
	require.NoError(t, err)
	assert.Equal(t, NarrativeNoNews, got.Narrative)
	assert.Equal(t, []string{"GOTO", "BBCA"}, s.Calls)
}
