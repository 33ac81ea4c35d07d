package publisher

import (
	"time"

	"github.com/shopspring/decimal"

	"MarketScreener/internal/model"
)

// Columns is the published column order.
var Columns = []string{
	"Ticker", "Price", "Trend Status", "Action", "Score", "News",
	"Risk/Reward", "Near Target", "Stretch Target",
	"Near Upside (%)", "Stretch Upside (%)", "Stop Loss",
	"Target Note", "RSI", "Rationale", "Last Update",
}

// Row is one table line. Cells are string, int or float64.
type Row []any

// Table is a ranked result set addressed to one destination (sheet, table, key).
type Table struct {
	Destination string    `json:"destination"`
	UpdatedAt   time.Time `json:"updated_at"`
	Columns     []string  `json:"columns"`
	Rows        []Row     `json:"rows"`
}

// Objects returns each row keyed by column name.
func (t Table) Objects() []map[string]any {
	out := make([]map[string]any, len(t.Rows))
	for i, row := range t.Rows {
		obj := make(map[string]any, len(t.Columns))
		for j, col := range t.Columns {
			if j < len(row) {
				obj[col] = row[j]
			}
		}
		out[i] = obj
	}
	return out
}

// Format controls cell rendering.
type Format struct {
	PricePlaces int32          // decimals kept on price levels; extra digits are truncated
	Location    *time.Location // zone of the Last Update column
}

// DefaultFormat renders whole-number prices in UTC.
func DefaultFormat() Format {
	return Format{Location: time.UTC}
}

// BuildTable renders ranked records. Record order is preserved.
func BuildTable(destination string, records []model.Record, updatedAt time.Time, f Format) Table {
	loc := f.Location
	if loc == nil {
		loc = time.UTC
	}
	stamp := updatedAt.In(loc).Format("2006-01-02 15:04:05")

	price := func(v float64) float64 {
		return decimal.NewFromFloat(v).Truncate(f.PricePlaces).InexactFloat64()
	}
	ratio := func(v float64) float64 {
		return decimal.NewFromFloat(v).Round(2).InexactFloat64()
	}

	rows := make([]Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, Row{
			r.Ticker,
			price(r.Price),
			string(r.Trend),
			string(r.Action),
			r.Score,
			r.News,
			ratio(r.Risk.RiskReward),
			price(r.Risk.NearTarget),
			price(r.Risk.StretchTarget),
			ratio(r.Risk.NearUpsidePct),
			ratio(r.Risk.StretchUpsidePct),
			price(r.Risk.StopLoss),
			r.Risk.TargetNote,
			ratio(r.Indicators.RSI),
			r.Rationale,
			stamp,
		})
	}
	return Table{
		Destination: destination,
		UpdatedAt:   updatedAt,
		Columns:     append([]string(nil), Columns...),
		Rows:        rows,
	}
}
