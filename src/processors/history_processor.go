package processors

import (
	"time"

	"github.com/username/comptafacile/backend/src/models"
)

// Fixed French month abbreviations, indexed by time.Month - 1.
var frenchMonthLabels = [12]string{
	"Jan", "Fév", "Mar", "Avr", "Mai", "Jun",
	"Jul", "Aoû", "Sep", "Oct", "Nov", "Déc",
}

// TrailingWindowMonths is the length of the dashboard's history view.
const TrailingWindowMonths = 12

type historyProcessorImpl struct{}

func NewHistoryProcessor() HistoryProcessor {
	return &historyProcessorImpl{}
}

// AnnualRevenue sums keyword-filtered revenue between yearStart and now
// inclusive.
func (p *historyProcessorImpl) AnnualRevenue(transactions []models.Transaction, keywords []string, yearStart, now time.Time) float64 {
	var total float64
	for _, tx := range transactions {
		if tx.Date.Before(yearStart) || tx.Date.After(now) {
			continue
		}
		if IsRevenue(tx, keywords) {
			total += tx.Amount
		}
	}
	return total
}

// TrailingTwelveMonths buckets transactions into the 12 calendar months
// ending at now's month, oldest first. Every month is present even with no
// activity. Income applies the revenue keyword filter; expense does not.
func (p *historyProcessorImpl) TrailingTwelveMonths(transactions []models.Transaction, keywords []string, now time.Time) []models.HistoryDataPoint {
	windowStart := monthStart(now).AddDate(0, -(TrailingWindowMonths - 1), 0)

	points := make([]models.HistoryDataPoint, TrailingWindowMonths)
	for i := 0; i < TrailingWindowMonths; i++ {
		m := windowStart.AddDate(0, i, 0)
		points[i] = models.HistoryDataPoint{Name: frenchMonthLabels[m.Month()-1]}
	}

	for _, tx := range transactions {
		i, ok := monthIndex(tx.Date, windowStart)
		if !ok {
			continue
		}
		if IsRevenue(tx, keywords) {
			points[i].Income += tx.Amount
		}
		if tx.Type == models.TransactionTypeExpense {
			points[i].Expense += tx.Amount
		}
	}

	for i := range points {
		points[i].Net = points[i].Income - points[i].Expense
	}
	return points
}

// MonthlyNets buckets the same trailing window without the keyword filter.
// The forecaster consumes these: projecting a balance needs every euro that
// moved, not just accounting revenue.
func (p *historyProcessorImpl) MonthlyNets(transactions []models.Transaction, now time.Time) []MonthlyNet {
	windowStart := monthStart(now).AddDate(0, -(TrailingWindowMonths - 1), 0)

	nets := make([]MonthlyNet, TrailingWindowMonths)
	for i := 0; i < TrailingWindowMonths; i++ {
		nets[i] = MonthlyNet{Month: windowStart.AddDate(0, i, 0)}
	}

	for _, tx := range transactions {
		i, ok := monthIndex(tx.Date, windowStart)
		if !ok {
			continue
		}
		nets[i].Active = true
		switch tx.Type {
		case models.TransactionTypeIncome:
			nets[i].Net += tx.Amount
		case models.TransactionTypeExpense:
			nets[i].Net -= tx.Amount
		}
	}
	return nets
}

func monthStart(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// monthIndex returns the zero-based offset of t's calendar month from
// windowStart, and whether it falls inside the trailing window.
func monthIndex(t, windowStart time.Time) (int, bool) {
	u := t.UTC()
	i := (u.Year()-windowStart.Year())*12 + int(u.Month()) - int(windowStart.Month())
	if i < 0 || i >= TrailingWindowMonths {
		return 0, false
	}
	return i, true
}
