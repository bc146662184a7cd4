package models

// ChartDataPoint is one day of the dashboard revenue/expense chart. Field
// names match what the chart component consumes.
type ChartDataPoint struct {
	Date     string  `json:"date"` // YYYY-MM-DD, UTC
	Recettes float64 `json:"recettes"`
	Depenses float64 `json:"depenses"`
}

// HistoryDataPoint is one calendar month of the trailing twelve-month view.
type HistoryDataPoint struct {
	Name    string  `json:"name"` // French month abbreviation, e.g. "Fév"
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Net     float64 `json:"net"`
}

// Forecast point types.
const (
	ForecastPointReal      = "real"
	ForecastPointProjected = "projected"
)

// ForecastDataPoint is one month of the cash-flow forecast curve.
type ForecastDataPoint struct {
	Date  string  `json:"date"` // YYYY-MM
	Solde float64 `json:"solde"`
	Type  string  `json:"type"` // "real" or "projected"
}

// CashFlowForecast is the forecaster's output: the observed balance history
// followed by the projected curve.
type CashFlowForecast struct {
	ForecastData   []ForecastDataPoint `json:"forecastData"`
	CurrentBalance float64             `json:"currentBalance"`
	BurnRate       float64             `json:"burnRate"` // positive = net monthly spend
	HasEnoughData  bool                `json:"hasEnoughData"`
}

// BankAccountData is the dashboard-facing snapshot of a connected account.
type BankAccountData struct {
	ID             int64       `json:"id"`
	BankName       string      `json:"bankName"`
	Mask           string      `json:"mask"`
	CurrentBalance NullFloat64 `json:"currentBalance"`
	Currency       string      `json:"currency"`
}

// RecentTransaction is the trimmed-down transaction shape shown in the
// dashboard's recent-activity list.
type RecentTransaction struct {
	ID          int64      `json:"id"`
	Date        string     `json:"date"` // YYYY-MM-DD
	Amount      float64    `json:"amount"`
	Type        string     `json:"type"`
	Description NullString `json:"description"`
	Category    string     `json:"category"`
	Status      string     `json:"status"`
}

// DashboardData is the single response object the presentation layer renders.
// The composer guarantees it never returns a nil or partially-nil value: on
// any failure the zeroed shape below is returned instead.
type DashboardData struct {
	TotalRevenue         float64             `json:"totalRevenue"`
	TotalExpenses        float64             `json:"totalExpenses"`
	NetIncome            float64             `json:"netIncome"`
	AnnualRevenue        float64             `json:"annualRevenue"`
	TaxAmount            float64             `json:"taxAmount"`
	NetAvailable         float64             `json:"netAvailable"`
	TaxRate              float64             `json:"taxRate"`
	MonthlyBudget        float64             `json:"monthlyBudget"`
	BudgetAlertThreshold float64             `json:"budgetAlertThreshold"`
	BudgetUsedPercent    float64             `json:"budgetUsedPercent"`
	BudgetRemaining      float64             `json:"budgetRemaining"`
	BankAccounts         []BankAccountData   `json:"bankAccounts"`
	RecentTransactions   []RecentTransaction `json:"recentTransactions"`
	ChartData            []ChartDataPoint    `json:"chartData"`
	HistoryData          []HistoryDataPoint  `json:"historyData"`
	CashFlowForecast     CashFlowForecast    `json:"cashFlowForecast"`
}
