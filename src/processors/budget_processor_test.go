package processors

import "testing"

func TestComputeTaxProvision(t *testing.T) {
	p := NewBudgetProcessor()

	tests := []struct {
		name             string
		totalRevenue     float64
		taxRate          float64
		wantTax, wantNet float64
	}{
		{name: "default rate", totalRevenue: 1000, taxRate: 22, wantTax: 220, wantNet: 780},
		{name: "zero revenue", totalRevenue: 0, taxRate: 22, wantTax: 0, wantNet: 0},
		{name: "zero rate", totalRevenue: 1000, taxRate: 0, wantTax: 0, wantNet: 1000},
		{name: "max rate", totalRevenue: 1000, taxRate: 50, wantTax: 500, wantNet: 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.ComputeTaxProvision(tt.totalRevenue, tt.taxRate)
			if got.TaxAmount != tt.wantTax {
				t.Errorf("TaxAmount = %v, want %v", got.TaxAmount, tt.wantTax)
			}
			if got.NetAvailable != tt.wantNet {
				t.Errorf("NetAvailable = %v, want %v", got.NetAvailable, tt.wantNet)
			}
		})
	}
}

func TestComputeBudgetStatus(t *testing.T) {
	p := NewBudgetProcessor()

	t.Run("overspend is critical", func(t *testing.T) {
		got := p.ComputeBudgetStatus(1500, 1000, 100)
		if got.BudgetRemaining != -500 {
			t.Errorf("BudgetRemaining = %v, want -500", got.BudgetRemaining)
		}
		if got.BudgetUsedPercent != 150 {
			t.Errorf("BudgetUsedPercent = %v, want 150", got.BudgetUsedPercent)
		}
		if !got.IsCritical {
			t.Error("overspend should be critical")
		}
		if !got.IsConfigured {
			t.Error("a non-zero budget is configured")
		}
	})

	t.Run("unconfigured budget is neither healthy nor critical", func(t *testing.T) {
		got := p.ComputeBudgetStatus(0, 0, 100)
		if got.IsConfigured {
			t.Error("zero budget must report unconfigured")
		}
		if got.IsCritical {
			t.Error("unconfigured budget must not be critical")
		}
		if got.BudgetUsedPercent != 0 {
			t.Errorf("BudgetUsedPercent = %v, want 0", got.BudgetUsedPercent)
		}
	})

	t.Run("unconfigured with spending still not critical", func(t *testing.T) {
		got := p.ComputeBudgetStatus(2000, 0, 100)
		if got.IsCritical || got.IsConfigured {
			t.Errorf("got %+v, want unconfigured and not critical", got)
		}
		if got.BudgetRemaining != -2000 {
			t.Errorf("BudgetRemaining = %v, want -2000", got.BudgetRemaining)
		}
	})

	t.Run("healthy under threshold", func(t *testing.T) {
		got := p.ComputeBudgetStatus(400, 1000, 100)
		if got.IsCritical {
			t.Error("600 remaining against a 100 threshold is healthy")
		}
		if got.BudgetUsedPercent != 40 {
			t.Errorf("BudgetUsedPercent = %v, want 40", got.BudgetUsedPercent)
		}
	})

	t.Run("remaining below threshold is critical", func(t *testing.T) {
		got := p.ComputeBudgetStatus(950, 1000, 100)
		if !got.IsCritical {
			t.Error("50 remaining against a 100 threshold should be critical")
		}
	})
}
