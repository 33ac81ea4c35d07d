package notifier

import (
	"context"

	"MarketScreener/internal/publisher"
)

// TelegramSink posts the top rows of each published table to a chat.
// A failed send is reported once and not retried.
type TelegramSink struct {
	Notifier *TelegramNotifier
	TopN     int
}

func NewTelegramSink(n *TelegramNotifier, topN int) *TelegramSink {
	return &TelegramSink{Notifier: n, TopN: topN}
}

func (s *TelegramSink) Name() string { return "telegram" }

func (s *TelegramSink) Publish(ctx context.Context, t publisher.Table) error {
	return s.Notifier.Send(ctx, FormatTable(t, s.TopN))
}
