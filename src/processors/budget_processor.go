package processors

type budgetProcessorImpl struct{}

func NewBudgetProcessor() BudgetProcessor {
	return &budgetProcessorImpl{}
}

// ComputeTaxProvision derives the provision to set aside from period
// revenue. taxRate is a percentage; range validation happens at the
// settings boundary, not here.
func (p *budgetProcessorImpl) ComputeTaxProvision(totalRevenue, taxRate float64) TaxProvision {
	taxAmount := totalRevenue * taxRate / 100
	return TaxProvision{
		TaxAmount:    taxAmount,
		NetAvailable: totalRevenue - taxAmount,
	}
}

// ComputeBudgetStatus derives budget utilization for the period.
// BudgetRemaining can go negative; overspend is a representable state the
// frontend renders as an alert. A zero budget means "unconfigured", which is
// neither healthy nor critical.
func (p *budgetProcessorImpl) ComputeBudgetStatus(totalExpenses, monthlyBudget, budgetAlertThreshold float64) BudgetStatus {
	status := BudgetStatus{
		BudgetRemaining: monthlyBudget - totalExpenses,
	}
	if monthlyBudget <= 0 {
		return status
	}
	status.IsConfigured = true
	status.BudgetUsedPercent = totalExpenses / monthlyBudget * 100
	status.IsCritical = status.BudgetRemaining < budgetAlertThreshold
	return status
}
