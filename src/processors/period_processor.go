package processors

import (
	"time"

	"github.com/username/comptafacile/backend/src/models"
)

// MaxDailyBuckets caps the daily chart series. Days beyond the cap are
// silently omitted to bound the response size.
const MaxDailyBuckets = 90

type periodProcessorImpl struct{}

func NewPeriodProcessor() PeriodProcessor {
	return &periodProcessorImpl{}
}

// Aggregate computes the headline totals for a period. The caller is
// responsible for having filtered transactions to the target date range.
func (p *periodProcessorImpl) Aggregate(transactions []models.Transaction, keywords []string) PeriodTotals {
	var totals PeriodTotals
	for _, tx := range transactions {
		if IsRevenue(tx, keywords) {
			totals.TotalRevenue += tx.Amount
		}
		if tx.Type == models.TransactionTypeExpense {
			totals.TotalExpenses += tx.Amount
		}
	}
	totals.NetIncome = totals.TotalRevenue - totals.TotalExpenses
	return totals
}

// BuildDailySeries produces one zero-filled entry per calendar day in
// [rangeStart, rangeEnd], ascending, bucketed on the transaction date
// truncated to YYYY-MM-DD in UTC.
//
// Unlike Aggregate, this series does NOT apply the revenue keyword filter:
// every INCOME transaction counts toward recettes. The chart shows the cash
// trend while the headline number shows accounting revenue, so the two can
// disagree when keywords are configured. That divergence is intentional.
func (p *periodProcessorImpl) BuildDailySeries(transactions []models.Transaction, rangeStart, rangeEnd time.Time) []models.ChartDataPoint {
	start := truncateToUTCDay(rangeStart)
	end := truncateToUTCDay(rangeEnd)
	if end.Before(start) {
		return []models.ChartDataPoint{}
	}

	dayCount := int(end.Sub(start).Hours()/24) + 1
	if dayCount > MaxDailyBuckets {
		dayCount = MaxDailyBuckets
	}

	series := make([]models.ChartDataPoint, dayCount)
	index := make(map[string]int, dayCount)
	for i := 0; i < dayCount; i++ {
		key := start.AddDate(0, 0, i).Format("2006-01-02")
		series[i] = models.ChartDataPoint{Date: key}
		index[key] = i
	}

	for _, tx := range transactions {
		key := tx.Date.UTC().Format("2006-01-02")
		i, ok := index[key]
		if !ok {
			continue // outside the generated buckets
		}
		switch tx.Type {
		case models.TransactionTypeIncome:
			series[i].Recettes += tx.Amount
		case models.TransactionTypeExpense:
			series[i].Depenses += tx.Amount
		}
	}
	return series
}

func truncateToUTCDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
