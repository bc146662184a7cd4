package processors

import (
	"math"
	"testing"
	"time"

	"github.com/username/comptafacile/backend/src/models"
)

func netsFrom(start time.Time, values []float64) []MonthlyNet {
	nets := make([]MonthlyNet, len(values))
	for i, v := range values {
		nets[i] = MonthlyNet{Month: start.AddDate(0, i, 0), Net: v, Active: true}
	}
	return nets
}

func TestForecastBurnRateAndProjection(t *testing.T) {
	p := NewForecastProcessor(3, 6)
	history := netsFrom(day(2025, 1, 1), []float64{-200, -300, -250})

	got := p.Forecast(5000, true, history)

	if !got.HasEnoughData {
		t.Fatal("3 active months should be enough data")
	}
	if math.Abs(got.BurnRate-250) > 1e-9 {
		t.Errorf("BurnRate = %v, want 250", got.BurnRate)
	}
	if got.CurrentBalance != 5000 {
		t.Errorf("CurrentBalance = %v, want 5000", got.CurrentBalance)
	}

	if len(got.ForecastData) != 9 {
		t.Fatalf("len(ForecastData) = %d, want 3 real + 6 projected", len(got.ForecastData))
	}

	real := got.ForecastData[:3]
	wantReal := []float64{5550, 5250, 5000}
	for i, pt := range real {
		if pt.Type != models.ForecastPointReal {
			t.Errorf("real[%d].Type = %s", i, pt.Type)
		}
		if pt.Solde != wantReal[i] {
			t.Errorf("real[%d].Solde = %v, want %v", i, pt.Solde, wantReal[i])
		}
	}
	if real[len(real)-1].Solde != got.CurrentBalance {
		t.Error("last real point must equal the current balance")
	}

	projected := got.ForecastData[3:]
	prev := got.CurrentBalance
	for i, pt := range projected {
		if pt.Type != models.ForecastPointProjected {
			t.Errorf("projected[%d].Type = %s", i, pt.Type)
		}
		if math.Abs(prev-pt.Solde-250) > 1e-9 {
			t.Errorf("projected[%d].Solde = %v, want %v (monotonic -250 steps)", i, pt.Solde, prev-250)
		}
		prev = pt.Solde
	}

	// Date continuity: real ends 2025-03, projected starts 2025-04.
	if got.ForecastData[2].Date != "2025-03" || got.ForecastData[3].Date != "2025-04" {
		t.Errorf("series must connect without gap: %s then %s", got.ForecastData[2].Date, got.ForecastData[3].Date)
	}
}

func TestForecastWithoutBalance(t *testing.T) {
	p := NewForecastProcessor(3, 6)
	history := netsFrom(day(2025, 1, 1), []float64{-200, -300, -250})

	got := p.Forecast(0, false, history)

	if got.HasEnoughData {
		t.Error("no connected balance must report hasEnoughData = false")
	}
	if got.BurnRate != 0 {
		t.Errorf("BurnRate = %v, want 0", got.BurnRate)
	}
	if len(got.ForecastData) != 0 {
		t.Errorf("ForecastData should be empty, got %d points", len(got.ForecastData))
	}
	if got.ForecastData == nil {
		t.Error("ForecastData must be an empty slice, not nil, so it serializes as []")
	}
}

func TestForecastMinActiveMonthsBoundary(t *testing.T) {
	p := NewForecastProcessor(3, 6)

	t.Run("two active months is below the cutoff", func(t *testing.T) {
		history := netsFrom(day(2025, 1, 1), []float64{-200, -300})
		got := p.Forecast(5000, true, history)
		if got.HasEnoughData {
			t.Error("2 active months must not be enough")
		}
		if len(got.ForecastData) != 0 || got.BurnRate != 0 {
			t.Errorf("degraded forecast should be empty, got %+v", got)
		}
		if got.CurrentBalance != 5000 {
			t.Errorf("CurrentBalance should still be reported, got %v", got.CurrentBalance)
		}
	})

	t.Run("exactly three active months passes", func(t *testing.T) {
		history := netsFrom(day(2025, 1, 1), []float64{-200, -300, -250})
		if got := p.Forecast(5000, true, history); !got.HasEnoughData {
			t.Error("3 active months must be enough")
		}
	})

	t.Run("inactive months do not count toward the cutoff", func(t *testing.T) {
		history := netsFrom(day(2025, 1, 1), []float64{-200, -300})
		history = append(history, MonthlyNet{Month: day(2025, 3, 1)}) // inactive
		if got := p.Forecast(5000, true, history); got.HasEnoughData {
			t.Error("an empty month must not count as activity")
		}
	})
}

func TestForecastAveragesActiveMonthsOnly(t *testing.T) {
	p := NewForecastProcessor(3, 6)

	// Ten empty months around three busy ones must not dilute the burn rate.
	history := []MonthlyNet{
		{Month: day(2024, 6, 1)},
		{Month: day(2024, 7, 1)},
		{Month: day(2024, 8, 1), Net: -200, Active: true},
		{Month: day(2024, 9, 1)},
		{Month: day(2024, 10, 1), Net: -300, Active: true},
		{Month: day(2024, 11, 1), Net: -250, Active: true},
		{Month: day(2024, 12, 1)},
	}

	got := p.Forecast(5000, true, history)
	if math.Abs(got.BurnRate-250) > 1e-9 {
		t.Errorf("BurnRate = %v, want 250 averaged over the 3 active months", got.BurnRate)
	}
	if len(got.ForecastData) != len(history)+6 {
		t.Errorf("len(ForecastData) = %d, want %d", len(got.ForecastData), len(history)+6)
	}
}

func TestForecastPositiveNetMeansNegativeBurn(t *testing.T) {
	p := NewForecastProcessor(3, 6)
	history := netsFrom(day(2025, 1, 1), []float64{100, 200, 300})

	got := p.Forecast(1000, true, history)
	if got.BurnRate != -200 {
		t.Errorf("BurnRate = %v, want -200 (balance growing)", got.BurnRate)
	}
	last := got.ForecastData[len(got.ForecastData)-1]
	if last.Solde != 1000+6*200 {
		t.Errorf("final projected balance = %v, want %v", last.Solde, 1000+6*200)
	}
}

func TestForecastEmptyHistory(t *testing.T) {
	p := NewForecastProcessor(3, 6)
	got := p.Forecast(5000, true, nil)
	if got.HasEnoughData || len(got.ForecastData) != 0 {
		t.Errorf("no history should degrade gracefully, got %+v", got)
	}
}
