package processors

import (
	"time"

	"github.com/username/comptafacile/backend/src/models"
)

// PeriodTotals holds the headline numbers for a reporting period.
// TotalRevenue is keyword-filtered "true revenue"; TotalExpenses is the sum
// of all EXPENSE magnitudes.
type PeriodTotals struct {
	TotalRevenue  float64
	TotalExpenses float64
	NetIncome     float64
}

// MonthlyNet is the net cash movement of one calendar month, unfiltered by
// revenue keywords (the forecaster reasons about actual cash, not accounting
// revenue). Active records whether the month had any transaction at all.
type MonthlyNet struct {
	Month  time.Time // first day of the month, UTC
	Net    float64   // income minus expense
	Active bool
}

// TaxProvision is the provision derived from period revenue and the
// company's configured rate.
type TaxProvision struct {
	TaxAmount    float64
	NetAvailable float64
}

// BudgetStatus is the monthly-budget utilization view. IsConfigured is false
// when no budget is set; that state is distinct from both healthy and
// critical and renders separately.
type BudgetStatus struct {
	BudgetUsedPercent float64
	BudgetRemaining   float64
	IsCritical        bool
	IsConfigured      bool
}

// PeriodProcessor aggregates an arbitrary, pre-filtered date range of
// transactions into totals and a day-bucketed chart series.
type PeriodProcessor interface {
	Aggregate(transactions []models.Transaction, keywords []string) PeriodTotals
	BuildDailySeries(transactions []models.Transaction, rangeStart, rangeEnd time.Time) []models.ChartDataPoint
}

// HistoryProcessor computes calendar-year revenue and the fixed trailing
// twelve-month history behind the dashboard's bar chart and the forecaster.
type HistoryProcessor interface {
	AnnualRevenue(transactions []models.Transaction, keywords []string, yearStart, now time.Time) float64
	TrailingTwelveMonths(transactions []models.Transaction, keywords []string, now time.Time) []models.HistoryDataPoint
	MonthlyNets(transactions []models.Transaction, now time.Time) []MonthlyNet
}

// BudgetProcessor derives the tax provision and budget utilization from
// aggregated totals plus company configuration.
type BudgetProcessor interface {
	ComputeTaxProvision(totalRevenue, taxRate float64) TaxProvision
	ComputeBudgetStatus(totalExpenses, monthlyBudget, budgetAlertThreshold float64) BudgetStatus
}

// ForecastProcessor projects future account balance from historical monthly
// nets. Pure; a missing balance yields the documented empty result, never an
// error.
type ForecastProcessor interface {
	Forecast(currentBalance float64, hasBalance bool, history []MonthlyNet) models.CashFlowForecast
}
