package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"MarketScreener/internal/model"
	"MarketScreener/internal/publisher"
	"MarketScreener/internal/scanner"
)

const defaultTopN = 5

// FormatTable formats the first topN rows of a ranked table.
func FormatTable(t publisher.Table, topN int) string {
	if topN <= 0 {
		topN = defaultTopN
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>%s</b> | %s\n\n", html.EscapeString(t.Destination), t.UpdatedAt.Format("2006-01-02 15:04")))
	if len(t.Rows) == 0 {
		b.WriteString("No candidates.\n")
		return b.String()
	}

	for i, obj := range t.Objects() {
		if i == topN {
			b.WriteString(fmt.Sprintf("… and %d more\n", len(t.Rows)-topN))
			break
		}
		b.WriteString(fmt.Sprintf("%d. <b>%v</b> %v | score %v | RR %v\n",
			i+1, obj["Ticker"], obj["Action"], obj["Score"], obj["Risk/Reward"]))
		b.WriteString(fmt.Sprintf("   price %v  stop %v  target %v (%v)\n",
			obj["Price"], obj["Stop Loss"], obj["Near Target"], obj["Target Note"]))
		if r, ok := obj["Rationale"].(string); ok && r != "-" {
			b.WriteString(fmt.Sprintf("   %s\n", html.EscapeString(r)))
		}
	}
	return b.String()
}

// FormatGroupReport formats the top picks and skip count of one group.
func FormatGroupReport(g scanner.GroupReport, topN int) string {
	if topN <= 0 {
		topN = defaultTopN
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("<b>%s</b> → %s (%s)\n", html.EscapeString(g.Group), html.EscapeString(g.Destination), g.Profile))
	b.WriteString(fmt.Sprintf("records %d | skipped %d", len(g.Records), len(g.Skipped)))
	switch {
	case g.PublishError != "":
		b.WriteString(fmt.Sprintf(" | ⚠️ publish failed: %s", html.EscapeString(g.PublishError)))
	case g.Published:
		b.WriteString(" | published")
	}
	b.WriteString("\n")

	for i, r := range g.Records {
		if i == topN {
			break
		}
		b.WriteString(fmt.Sprintf("  %s %s %d RR %.2f\n", r.Ticker, actionIcon(r.Action), r.Score, r.Risk.RiskReward))
	}
	return b.String()
}

// FormatRunReport formats a whole run.
func FormatRunReport(r scanner.RunReport, topN int) string {
	var b strings.Builder
	records, skipped := r.Counts()
	b.WriteString(fmt.Sprintf("📈 <b>Screener run</b> | %s\n", r.StartedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("groups %d | records %d | skipped %d | %s\n\n",
		len(r.Groups), records, skipped, r.FinishedAt.Sub(r.StartedAt).Round(time.Second)))
	for _, g := range r.Groups {
		b.WriteString(FormatGroupReport(g, topN))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatGroups lists the configured groups.
func FormatGroups(groups []scanner.Group) string {
	if len(groups) == 0 {
		return "No groups configured."
	}
	var b strings.Builder
	b.WriteString("📋 <b>Groups</b>\n")
	for _, g := range groups {
		b.WriteString(fmt.Sprintf("• %s → %s (%s, %d tickers)\n",
			html.EscapeString(g.Name), html.EscapeString(g.Destination), g.Profile.Name, len(g.Tickers)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func actionIcon(a model.Action) string {
	switch a {
	case model.ActionStrongBuy:
		return "🟢🟢"
	case model.ActionBuy:
		return "🟢"
	default:
		return "⚪"
	}
}
