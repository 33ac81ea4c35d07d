package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketScreener/internal/model"
	"MarketScreener/internal/publisher"
	"MarketScreener/internal/scanner"
	"MarketScreener/internal/strategy"
)

type telegramStub struct {
	mu       sync.Mutex
	messages []map[string]string
	status   int
	updates  string
	onSend   func()
}

func (s *telegramStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case strings.HasSuffix(r.URL.Path, "/sendMessage"):
		var payload map[string]string
		_ = json.NewDecoder(r.Body).Decode(&payload)
		s.mu.Lock()
		s.messages = append(s.messages, payload)
		onSend := s.onSend
		s.mu.Unlock()
		if s.status != 0 {
			w.WriteHeader(s.status)
			_, _ = w.Write([]byte(`{"ok":false}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
		if onSend != nil {
			onSend()
		}
	case strings.HasSuffix(r.URL.Path, "/getUpdates"):
		if r.URL.Query().Get("offset") == "0" {
			_, _ = w.Write([]byte(s.updates))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true,"result":[]}`))
	default:
		http.NotFound(w, r)
	}
}

func (s *telegramStub) sent() []map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]string(nil), s.messages...)
}

func newNotifier(t *testing.T, stub *telegramStub) *TelegramNotifier {
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)
	n := NewTelegramNotifier("TOKEN", "42", "")
	n.BaseURL = srv.URL
	return n
}

func sampleTable() publisher.Table {
	records := []model.Record{
		{Ticker: "BBRI.JK", Price: 4750, Action: model.ActionStrongBuy, Score: 95, Rationale: "Strong Trend, VCP",
			Risk: model.RiskLevels{StopLoss: 4500, NearTarget: 5200, TargetNote: "Fib 1.618", RiskReward: 2.4}},
		{Ticker: "TLKM.JK", Price: 3100, Action: model.ActionBuy, Score: 75, Rationale: "-",
			Risk: model.RiskLevels{StopLoss: 2950, NearTarget: 3400, TargetNote: "Blue Sky", RiskReward: 1.8}},
	}
	return publisher.BuildTable("Banks", records, time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC), publisher.DefaultFormat())
}

func TestSend(t *testing.T) {
	stub := &telegramStub{}
	n := newNotifier(t, stub)

	require.NoError(t, n.Send(context.Background(), "hello <b>world</b>"))
	msgs := stub.sent()
	require.Len(t, msgs, 1)
	assert.Equal(t, "42", msgs[0]["chat_id"])
	assert.Equal(t, "HTML", msgs[0]["parse_mode"])
	assert.Equal(t, "hello <b>world</b>", msgs[0]["text"])
}

func TestSend_APIError(t *testing.T) {
	stub := &telegramStub{status: http.StatusBadRequest}
	n := newNotifier(t, stub)

	err := n.Send(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")

	err = n.SendWithRetry(context.Background(), "x", 0)
	assert.ErrorContains(t, err, "all 1 retries exhausted")
}

func TestTelegramSink_SingleSend(t *testing.T) {
	stub := &telegramStub{status: http.StatusInternalServerError}
	sink := NewTelegramSink(newNotifier(t, stub), 5)

	assert.Error(t, sink.Publish(context.Background(), sampleTable()))
	assert.Len(t, stub.sent(), 1, "no retry")
	assert.Equal(t, "telegram", sink.Name())
}

func TestFormatTable(t *testing.T) {
	out := FormatTable(sampleTable(), 1)

	assert.Contains(t, out, "<b>Banks</b> | 2024-05-01 09:00")
	assert.Contains(t, out, "1. <b>BBRI.JK</b> STRONG BUY | score 95 | RR 2.4")
	assert.Contains(t, out, "stop 4500")
	assert.Contains(t, out, "Strong Trend, VCP")
	assert.NotContains(t, out, "TLKM.JK")
	assert.Contains(t, out, "… and 1 more")

	empty := FormatTable(publisher.Table{Destination: "Mining"}, 5)
	assert.Contains(t, empty, "No candidates.")
}

func TestFormatRunReport(t *testing.T) {
	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	report := scanner.RunReport{
		RunID:      "r1",
		StartedAt:  start,
		FinishedAt: start.Add(90 * time.Second),
		Groups: []scanner.GroupReport{
			{
				Group: "banks", Destination: "Banks", Profile: "minervini", Published: true,
				Records: []model.Record{{Ticker: "BBRI.JK", Action: model.ActionBuy, Score: 80, Risk: model.RiskLevels{RiskReward: 1.98}}},
				Skipped: []model.SkipReason{{Ticker: "NEW.JK", Kind: model.SkipInsufficientHistory}},
			},
			{Group: "mining", Destination: "Mining", Profile: "wyckoff", PublishError: "quota <exceeded>"},
		},
	}

	out := FormatRunReport(report, 3)
	assert.Contains(t, out, "groups 2 | records 1 | skipped 1 | 1m30s")
	assert.Contains(t, out, "<b>banks</b> → Banks (minervini)")
	assert.Contains(t, out, "BBRI.JK 🟢 80 RR 1.98")
	assert.Contains(t, out, "publish failed: quota &lt;exceeded&gt;")
}

func TestFormatGroups(t *testing.T) {
	groups := []scanner.Group{{Name: "banks", Destination: "Banks", Profile: strategy.DefaultProfile(), Tickers: []string{"BBRI.JK", "BMRI.JK"}}}
	assert.Equal(t, "📋 <b>Groups</b>\n• banks → Banks (minervini, 2 tickers)", FormatGroups(groups))
	assert.Equal(t, "No groups configured.", FormatGroups(nil))
}

func TestStartPolling(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stub := &telegramStub{
		updates: `{"ok":true,"result":[{"update_id":1,"message":{"text":" /status "}},{"update_id":2}]}`,
		onSend:  cancel,
	}
	n := newNotifier(t, stub)

	var got []string
	done := make(chan struct{})
	go func() {
		defer close(done)
		n.StartPolling(ctx, func(_ context.Context, cmd string) string {
			got = append(got, cmd)
			return "ok"
		})
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("polling did not stop")
	}
	assert.Equal(t, []string{"/status"}, got)
	msgs := stub.sent()
	require.Len(t, msgs, 1)
	assert.Equal(t, "ok", msgs[0]["text"])
}
