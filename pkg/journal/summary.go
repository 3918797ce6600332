package journal

import (
	"strings"
	"time"

	"github.com/sellintostrength/speculator/models"

	"github.com/shopspring/decimal"
)

// DaySummary is one slot in the month grid. Rate and amount are the stored
// decimal strings, empty when never entered. HasData is computed once here
// and reused by every screen; nothing downstream re-derives it from string
// truthiness.
type DaySummary struct {
	Day          int    `json:"day"`
	ReturnRate   string `json:"return_rate"`
	ProfitAmount string `json:"profit_amount"`
	HasData      bool   `json:"has_data"`
}

// ProfitTotals is the month-level breakdown. Negative is the sum of absolute
// losses, so Net = Positive - Negative.
type ProfitTotals struct {
	Positive decimal.Decimal `json:"positive"`
	Negative decimal.Decimal `json:"negative"`
	Net      decimal.Decimal `json:"net"`
}

// MonthSummary is derived on every request and never persisted. Totals is
// nil when no note in the month carries a usable profit amount; callers must
// not render a summary card in that case.
type MonthSummary struct {
	Year   int           `json:"year"`
	Month  int           `json:"month"`
	Days   []DaySummary  `json:"days"`
	Totals *ProfitTotals `json:"totals,omitempty"`
}

// MonthReader is the single-pass read path SummarizeMonth needs.
type MonthReader interface {
	NotesForMonth(ownerID uint, year, month int) ([]models.DailyNote, error)
}

// DaysInMonth returns the day count for a proleptic Gregorian year+month
// (28/29/30/31, standard leap rule). Day 0 of the next month normalizes to
// the last day of this one.
func DaysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// SummarizeMonth builds the per-day grid and profit totals for one owner's
// month. A stored amount that fails to parse loses only its arithmetic
// contribution; the day keeps its text and presence flags, and the summary
// as a whole never aborts over one bad row.
func SummarizeMonth(r MonthReader, ownerID uint, year, month int) (*MonthSummary, error) {
	days := DaysInMonth(year, month)
	ms := &MonthSummary{Year: year, Month: month, Days: make([]DaySummary, days)}
	for i := range ms.Days {
		ms.Days[i].Day = i + 1
	}

	notes, err := r.NotesForMonth(ownerID, year, month)
	if err != nil {
		return nil, err
	}

	var pos, neg decimal.Decimal
	contributed := false
	for _, n := range notes {
		if n.Day < 1 || n.Day > days {
			continue
		}
		rate := strPtrVal(n.ReturnRate)
		amount := strPtrVal(n.ProfitAmount)
		slot := &ms.Days[n.Day-1]
		slot.ReturnRate = rate
		slot.ProfitAmount = amount
		slot.HasData = rate != "" || amount != ""

		if n.ProfitAmount == nil {
			continue
		}
		v, perr := decimal.NewFromString(strings.TrimSpace(amount))
		if perr != nil {
			continue // malformed amount: skip the arithmetic, keep the day
		}
		contributed = true
		switch v.Sign() {
		case 1:
			pos = pos.Add(v)
		case -1:
			neg = neg.Add(v.Abs())
		}
		// exactly zero contributes to neither bucket
	}
	if contributed {
		ms.Totals = &ProfitTotals{Positive: pos, Negative: neg, Net: pos.Sub(neg)}
	}
	return ms, nil
}

func strPtrVal(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
