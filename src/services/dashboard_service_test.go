package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/comptafacile/backend/src/logger"
	"github.com/username/comptafacile/backend/src/models"
)

func init() {
	logger.InitLogger("error")
}

// mockLedger is a hand-rolled LedgerService double. Per-method error fields
// simulate partial backend failures; call counters verify caching. The
// composer fetches concurrently, so the counters are mutex-guarded.
type mockLedger struct {
	company      *models.Company
	companyErr   error
	transactions []models.Transaction
	findErr      error
	recentErr    error
	accounts     []models.BankAccount
	accountsErr  error

	mu           sync.Mutex
	findCalls    int
	companyCalls int
}

func (m *mockLedger) countFind() {
	m.mu.Lock()
	m.findCalls++
	m.mu.Unlock()
}

func (m *mockLedger) findCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findCalls
}

func (m *mockLedger) CompanyForUser(ctx context.Context, userID int64) (*models.Company, error) {
	m.mu.Lock()
	m.companyCalls++
	m.mu.Unlock()
	if m.companyErr != nil {
		return nil, m.companyErr
	}
	if m.company == nil {
		return nil, ErrNoCompany
	}
	return m.company, nil
}

func (m *mockLedger) CreateCompany(ctx context.Context, company *models.Company) error { return nil }
func (m *mockLedger) UpdateCompanySettings(ctx context.Context, company *models.Company) error {
	return nil
}

func (m *mockLedger) FindTransactions(ctx context.Context, companyID int64, from, to time.Time) ([]models.Transaction, error) {
	m.countFind()
	if m.findErr != nil {
		return nil, m.findErr
	}
	var out []models.Transaction
	for _, tx := range m.transactions {
		if !tx.Date.Before(from) && !tx.Date.After(to) {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (m *mockLedger) FindRecentTransactions(ctx context.Context, companyID int64, from, to time.Time, limit int) ([]models.Transaction, error) {
	if m.recentErr != nil {
		return nil, m.recentErr
	}
	txs, _ := m.FindTransactions(ctx, companyID, from, to)
	if len(txs) > limit {
		txs = txs[len(txs)-limit:]
	}
	// newest first
	for i, j := 0, len(txs)-1; i < j; i, j = i+1, j-1 {
		txs[i], txs[j] = txs[j], txs[i]
	}
	return txs, nil
}

func (m *mockLedger) InsertTransaction(ctx context.Context, tx *models.Transaction) error { return nil }

func (m *mockLedger) FindBankAccounts(ctx context.Context, userID int64) ([]models.BankAccount, error) {
	if m.accountsErr != nil {
		return nil, m.accountsErr
	}
	return m.accounts, nil
}

func (m *mockLedger) UpsertBankAccount(ctx context.Context, account *models.BankAccount) error {
	return nil
}

func testCompany() *models.Company {
	return &models.Company{
		ID:                   1,
		UserID:               7,
		Name:                 "Boulangerie Martin",
		TaxRate:              22,
		MonthlyBudget:        1000,
		BudgetAlertThreshold: 100,
	}
}

func newTestDashboardService(ledger LedgerService, reportCache *cache.Cache, now time.Time) *dashboardServiceImpl {
	ds := NewDashboardService(ledger, reportCache, DashboardConfig{
		ForecastMinActiveMonths: 3,
		ForecastHorizonMonths:   6,
	}).(*dashboardServiceImpl)
	ds.now = func() time.Time { return now }
	return ds
}

func txOn(date time.Time, amount float64, txType, description string) models.Transaction {
	return models.Transaction{
		Date:        date,
		Amount:      amount,
		Type:        txType,
		Description: models.NewNullString(description),
		Category:    "AUTRE",
		Status:      models.TransactionStatusCompleted,
	}
}

func TestGetDashboardDataZeroTenant(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	ledger := &mockLedger{company: testCompany()}
	ds := newTestDashboardService(ledger, nil, now)

	data := ds.GetDashboardData(context.Background(), 7, "", "")
	if data == nil {
		t.Fatal("composer must never return nil")
	}

	if data.TotalRevenue != 0 || data.TotalExpenses != 0 || data.AnnualRevenue != 0 {
		t.Errorf("zero-data tenant should have zero totals, got %+v", data)
	}
	if data.TaxRate != 22 || data.MonthlyBudget != 1000 || data.BudgetAlertThreshold != 100 {
		t.Errorf("company configuration should pass through, got taxRate=%v budget=%v threshold=%v",
			data.TaxRate, data.MonthlyBudget, data.BudgetAlertThreshold)
	}
	if len(data.HistoryData) != 12 {
		t.Errorf("len(HistoryData) = %d, want 12 even with no transactions", len(data.HistoryData))
	}
	if len(data.ChartData) != 31 {
		t.Errorf("len(ChartData) = %d, want 31 (March, zero-filled)", len(data.ChartData))
	}
	if data.CashFlowForecast.HasEnoughData {
		t.Error("no bank accounts means no forecast")
	}
	if data.BankAccounts == nil || data.RecentTransactions == nil {
		t.Error("slices must be non-nil so they serialize as JSON arrays")
	}
}

func TestGetDashboardDataKeywordFiltering(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	company := testCompany()
	company.RevenueKeywords = models.NewNullString("STRIPE,VIR")

	ledger := &mockLedger{
		company: company,
		transactions: []models.Transaction{
			txOn(time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), 500, models.TransactionTypeIncome, "STRIPE payout"),
			txOn(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), 300, models.TransactionTypeIncome, "Apport personnel"),
			txOn(time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC), 100, models.TransactionTypeExpense, "Taxi"),
		},
	}
	ds := newTestDashboardService(ledger, nil, now)

	data := ds.GetDashboardData(context.Background(), 7, "", "")

	if data.TotalRevenue != 500 {
		t.Errorf("TotalRevenue = %v, want 500 (apport excluded)", data.TotalRevenue)
	}
	if data.TotalExpenses != 100 || data.NetIncome != 400 {
		t.Errorf("expenses/net = %v/%v, want 100/400", data.TotalExpenses, data.NetIncome)
	}
	if data.TaxAmount != 110 || data.NetAvailable != 390 {
		t.Errorf("tax provision = %v/%v, want 110/390 at 22%%", data.TaxAmount, data.NetAvailable)
	}

	// The chart deliberately ignores the keyword filter: day 10 still shows
	// the 300 apport as recettes.
	var day10 models.ChartDataPoint
	for _, pt := range data.ChartData {
		if pt.Date == "2025-03-10" {
			day10 = pt
		}
	}
	if day10.Recettes != 300 {
		t.Errorf("chart day 10 recettes = %v, want 300 (chart is unfiltered)", day10.Recettes)
	}

	if len(data.RecentTransactions) != 3 {
		t.Fatalf("len(RecentTransactions) = %d, want 3", len(data.RecentTransactions))
	}
	if data.RecentTransactions[0].Date != "2025-03-12" {
		t.Errorf("recent transactions must be newest first, got %s", data.RecentTransactions[0].Date)
	}
}

func TestGetDashboardDataExplicitPeriod(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	ledger := &mockLedger{company: testCompany()}
	ds := newTestDashboardService(ledger, nil, now)

	data := ds.GetDashboardData(context.Background(), 7, "2025-02-01", "2025-02-10")
	if len(data.ChartData) != 10 {
		t.Errorf("len(ChartData) = %d, want 10 for an explicit 10-day period", len(data.ChartData))
	}
	if data.ChartData[0].Date != "2025-02-01" {
		t.Errorf("ChartData[0].Date = %s, want 2025-02-01", data.ChartData[0].Date)
	}
}

func TestGetDashboardDataMalformedPeriodFallsBack(t *testing.T) {
	now := time.Date(2025, 4, 10, 12, 0, 0, 0, time.UTC)
	ledger := &mockLedger{company: testCompany()}
	ds := newTestDashboardService(ledger, nil, now)

	for _, tc := range [][2]string{
		{"not-a-date", "2025-02-10"},
		{"2025-02-01", "02/10/2025"},
		{"2025-02-10", "2025-02-01"}, // inverted
		{"2025-02-01", ""},           // half supplied
	} {
		data := ds.GetDashboardData(context.Background(), 7, tc[0], tc[1])
		if len(data.ChartData) != 30 {
			t.Errorf("from=%q to=%q: len(ChartData) = %d, want 30 (April fallback)", tc[0], tc[1], len(data.ChartData))
		}
	}
}

func TestGetDashboardDataPartialFailureIsolation(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	ledger := &mockLedger{
		company: testCompany(),
		transactions: []models.Transaction{
			txOn(time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), 500, models.TransactionTypeIncome, "STRIPE payout"),
		},
		accountsErr: errors.New("aggregator timeout"),
	}
	ds := newTestDashboardService(ledger, nil, now)

	data := ds.GetDashboardData(context.Background(), 7, "", "")

	if data.TotalRevenue != 500 {
		t.Errorf("totals must survive a bank accounts failure, got revenue %v", data.TotalRevenue)
	}
	if len(data.BankAccounts) != 0 {
		t.Errorf("failed branch should yield its empty default, got %d accounts", len(data.BankAccounts))
	}
	if data.CashFlowForecast.HasEnoughData || data.CashFlowForecast.BurnRate != 0 {
		t.Errorf("forecast should degrade to its default, got %+v", data.CashFlowForecast)
	}
	if len(data.HistoryData) != 12 {
		t.Errorf("history must still be populated, got %d points", len(data.HistoryData))
	}
}

func TestGetDashboardDataNoCompany(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	ledger := &mockLedger{}
	ds := newTestDashboardService(ledger, nil, now)

	data := ds.GetDashboardData(context.Background(), 7, "", "")
	if data == nil {
		t.Fatal("missing tenant must return the default shape, not nil")
	}
	if data.TotalRevenue != 0 || data.TaxRate != 0 || len(data.HistoryData) != 0 {
		t.Errorf("missing tenant should produce the all-zero default, got %+v", data)
	}
	if data.ChartData == nil || data.HistoryData == nil {
		t.Error("default slices must be non-nil")
	}
}

func TestGetDashboardDataNeverPanics(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	ledger := &mockLedger{companyErr: errors.New("schema mismatch: no such column")}
	ds := newTestDashboardService(ledger, nil, now)

	data := ds.GetDashboardData(context.Background(), 7, "", "")
	if data == nil || data.TotalRevenue != 0 {
		t.Errorf("backend failure must yield the zero default, got %+v", data)
	}
}

func TestGetDashboardDataForecastFromBankBalance(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	monthDay := func(monthsAgo int) time.Time {
		return time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC).AddDate(0, -monthsAgo, 0)
	}
	ledger := &mockLedger{
		company: testCompany(),
		transactions: []models.Transaction{
			txOn(monthDay(1), 200, models.TransactionTypeExpense, "Loyer"),
			txOn(monthDay(2), 300, models.TransactionTypeExpense, "Loyer"),
			txOn(monthDay(3), 250, models.TransactionTypeExpense, "Loyer"),
		},
		accounts: []models.BankAccount{
			{ID: 1, BankName: "BNP Paribas", Mask: "1234", Currency: "EUR",
				CurrentBalance: models.NullFloat64{Float64: 3000, Valid: true}},
			{ID: 2, BankName: "Qonto", Mask: "9876", Currency: "EUR",
				CurrentBalance: models.NullFloat64{Float64: 2000, Valid: true}},
		},
	}
	ds := newTestDashboardService(ledger, nil, now)

	data := ds.GetDashboardData(context.Background(), 7, "", "")

	forecast := data.CashFlowForecast
	if !forecast.HasEnoughData {
		t.Fatal("3 active months and a connected balance should forecast")
	}
	if forecast.CurrentBalance != 5000 {
		t.Errorf("CurrentBalance = %v, want 5000 (both accounts)", forecast.CurrentBalance)
	}
	if forecast.BurnRate != 250 {
		t.Errorf("BurnRate = %v, want 250", forecast.BurnRate)
	}
	if len(forecast.ForecastData) != 12+6 {
		t.Errorf("len(ForecastData) = %d, want 12 real + 6 projected", len(forecast.ForecastData))
	}
	last := forecast.ForecastData[len(forecast.ForecastData)-1]
	if last.Type != models.ForecastPointProjected || last.Solde != 5000-6*250 {
		t.Errorf("final projected point = %+v, want solde 3500", last)
	}
	if len(data.BankAccounts) != 2 {
		t.Errorf("len(BankAccounts) = %d, want 2", len(data.BankAccounts))
	}
}

func TestDashboardCacheAndInvalidation(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	ledger := &mockLedger{company: testCompany()}
	reportCache := cache.New(DefaultCacheExpiration, CacheCleanupInterval)
	ds := newTestDashboardService(ledger, reportCache, now)

	ds.GetDashboardData(context.Background(), 7, "", "")
	firstFetches := ledger.findCount()

	ds.GetDashboardData(context.Background(), 7, "", "")
	if ledger.findCount() != firstFetches {
		t.Errorf("second call should hit the cache, fetch count went %d -> %d", firstFetches, ledger.findCount())
	}

	ds.InvalidateCompanyCache(1)
	ds.GetDashboardData(context.Background(), 7, "", "")
	if ledger.findCount() == firstFetches {
		t.Error("invalidation should force a refetch")
	}
}
