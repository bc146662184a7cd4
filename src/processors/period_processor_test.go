package processors

import (
	"testing"
	"time"

	"github.com/username/comptafacile/backend/src/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func income(date time.Time, amount float64, description string) models.Transaction {
	return models.Transaction{
		Date:        date,
		Amount:      amount,
		Type:        models.TransactionTypeIncome,
		Description: models.NewNullString(description),
		Status:      models.TransactionStatusCompleted,
	}
}

func expense(date time.Time, amount float64, description string) models.Transaction {
	return models.Transaction{
		Date:        date,
		Amount:      amount,
		Type:        models.TransactionTypeExpense,
		Description: models.NewNullString(description),
		Status:      models.TransactionStatusCompleted,
	}
}

func TestAggregateKeywordExclusion(t *testing.T) {
	p := NewPeriodProcessor()
	keywords := NormalizeKeywords("STRIPE,VIR")

	txs := []models.Transaction{
		income(day(2025, 3, 3), 500, "STRIPE payout"),
		income(day(2025, 3, 10), 300, "Apport personnel"),
		expense(day(2025, 3, 12), 100, "Taxi"),
	}

	totals := p.Aggregate(txs, keywords)
	if totals.TotalRevenue != 500 {
		t.Errorf("TotalRevenue = %v, want 500 (apport excluded by keywords)", totals.TotalRevenue)
	}
	if totals.TotalExpenses != 100 {
		t.Errorf("TotalExpenses = %v, want 100", totals.TotalExpenses)
	}
	if totals.NetIncome != 400 {
		t.Errorf("NetIncome = %v, want 400", totals.NetIncome)
	}
}

func TestAggregateWithoutKeywords(t *testing.T) {
	p := NewPeriodProcessor()

	txs := []models.Transaction{
		income(day(2025, 3, 3), 500, "STRIPE payout"),
		income(day(2025, 3, 10), 300, "Apport personnel"),
		expense(day(2025, 3, 12), 100, "Taxi"),
	}

	totals := p.Aggregate(txs, nil)
	if totals.TotalRevenue != 800 {
		t.Errorf("TotalRevenue = %v, want 800", totals.TotalRevenue)
	}
	if totals.NetIncome != 700 {
		t.Errorf("NetIncome = %v, want 700", totals.NetIncome)
	}
}

func TestAggregateEmpty(t *testing.T) {
	p := NewPeriodProcessor()
	totals := p.Aggregate(nil, nil)
	if totals.TotalRevenue != 0 || totals.TotalExpenses != 0 || totals.NetIncome != 0 {
		t.Errorf("empty input should produce zero totals, got %+v", totals)
	}
}

func TestBuildDailySeriesShape(t *testing.T) {
	p := NewPeriodProcessor()

	tests := []struct {
		name       string
		start, end time.Time
		wantLen    int
	}{
		{name: "single day", start: day(2025, 3, 1), end: day(2025, 3, 1), wantLen: 1},
		{name: "full march", start: day(2025, 3, 1), end: day(2025, 3, 31), wantLen: 31},
		{name: "span capped at 90", start: day(2025, 1, 1), end: day(2025, 12, 31), wantLen: MaxDailyBuckets},
		{name: "inverted range", start: day(2025, 3, 10), end: day(2025, 3, 1), wantLen: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series := p.BuildDailySeries(nil, tt.start, tt.end)
			if len(series) != tt.wantLen {
				t.Fatalf("len(series) = %d, want %d", len(series), tt.wantLen)
			}
			for i := 1; i < len(series); i++ {
				if series[i].Date <= series[i-1].Date {
					t.Errorf("series not strictly ascending at %d: %s <= %s", i, series[i].Date, series[i-1].Date)
				}
			}
			for i, pt := range series {
				want := tt.start.AddDate(0, 0, i).Format("2006-01-02")
				if pt.Date != want {
					t.Errorf("series[%d].Date = %s, want %s (no gaps allowed)", i, pt.Date, want)
				}
			}
		})
	}
}

func TestBuildDailySeriesBucketsAndZeroFill(t *testing.T) {
	p := NewPeriodProcessor()
	start, end := day(2025, 3, 1), day(2025, 3, 5)

	txs := []models.Transaction{
		income(day(2025, 3, 2), 500, "STRIPE payout"),
		income(day(2025, 3, 2), 300, "Apport personnel"), // keyword filter does NOT apply here
		expense(day(2025, 3, 4), 100, "Taxi"),
		income(day(2025, 3, 20), 999, "outside range"),
	}

	series := p.BuildDailySeries(txs, start, end)
	if len(series) != 5 {
		t.Fatalf("len(series) = %d, want 5", len(series))
	}
	if series[1].Recettes != 800 {
		t.Errorf("day 2 recettes = %v, want 800 (all INCOME counts on the chart)", series[1].Recettes)
	}
	if series[3].Depenses != 100 {
		t.Errorf("day 4 depenses = %v, want 100", series[3].Depenses)
	}
	for _, i := range []int{0, 2, 4} {
		if series[i].Recettes != 0 || series[i].Depenses != 0 {
			t.Errorf("day %d should be zero-filled, got %+v", i+1, series[i])
		}
	}
}

func TestBuildDailySeriesUTCBucketing(t *testing.T) {
	p := NewPeriodProcessor()
	start, end := day(2025, 3, 1), day(2025, 3, 2)

	// 23:30 Paris time on March 1st is still March 1st; 00:30 UTC+2 on
	// March 2nd is March 1st in UTC. Bucketing is on the UTC day.
	paris := time.FixedZone("CEST", 2*60*60)
	txs := []models.Transaction{
		income(time.Date(2025, 3, 2, 0, 30, 0, 0, paris), 50, "late payout"),
	}

	series := p.BuildDailySeries(txs, start, end)
	if series[0].Recettes != 50 {
		t.Errorf("expected the 00:30 UTC+2 transaction in the March 1st UTC bucket, got %+v", series)
	}
}
