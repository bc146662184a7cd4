package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/comptafacile/backend/src/logger"
	"github.com/username/comptafacile/backend/src/models"
	"github.com/username/comptafacile/backend/src/processors"
	"github.com/username/comptafacile/backend/src/utils"
)

// DashboardConfig carries the tunables the composer hands to its
// processors.
type DashboardConfig struct {
	ForecastMinActiveMonths int
	ForecastHorizonMonths   int
	CacheTTL                time.Duration
}

type dashboardServiceImpl struct {
	ledger      LedgerService
	periods     processors.PeriodProcessor
	history     processors.HistoryProcessor
	budget      processors.BudgetProcessor
	forecaster  processors.ForecastProcessor
	reportCache *cache.Cache
	cacheTTL    time.Duration

	// now is swappable so tests can pin the reporting clock.
	now func() time.Time
}

func NewDashboardService(ledger LedgerService, reportCache *cache.Cache, cfg DashboardConfig) DashboardService {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = DefaultCacheExpiration
	}
	return &dashboardServiceImpl{
		ledger:      ledger,
		periods:     processors.NewPeriodProcessor(),
		history:     processors.NewHistoryProcessor(),
		budget:      processors.NewBudgetProcessor(),
		forecaster:  processors.NewForecastProcessor(cfg.ForecastMinActiveMonths, cfg.ForecastHorizonMonths),
		reportCache: reportCache,
		cacheTTL:    ttl,
		now:         time.Now,
	}
}

// GetDashboardData runs the whole read pipeline for one tenant and one
// reporting period.
//
// It upholds two policies the dashboard depends on:
//   - never throw: the caller always receives a renderable DashboardData,
//     worst case the zeroed default. Every swallowed error is logged.
//   - partial-failure isolation: each sub-aggregation that fails is replaced
//     by its own safe default without blanking the others.
func (s *dashboardServiceImpl) GetDashboardData(ctx context.Context, userID int64, fromStr, toStr string) (data *models.DashboardData) {
	defer func() {
		if p := recover(); p != nil {
			logger.ErrorFromContext(ctx, "Dashboard composition panicked, returning default data", "userID", userID, "panic", p)
			data = emptyDashboardData()
		}
	}()

	company, err := s.ledger.CompanyForUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNoCompany) {
			logger.FromContext(ctx).Warn("No company for user, returning default dashboard", "userID", userID)
		} else {
			logger.ErrorFromContext(ctx, "Failed to resolve tenant, returning default dashboard", "userID", userID, "error", err)
		}
		return emptyDashboardData()
	}
	tenant := TenantContext{UserID: userID, CompanyID: company.ID}

	now := s.now().UTC()
	periodStart, periodEnd := s.resolvePeriod(ctx, fromStr, toStr, now)

	cacheKey := dashboardCacheKey(tenant.CompanyID, periodStart, periodEnd)
	if s.reportCache != nil {
		if cached, found := s.reportCache.Get(cacheKey); found {
			if cachedData, ok := cached.(*models.DashboardData); ok {
				return cachedData
			}
		}
	}

	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	windowStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, -(processors.TrailingWindowMonths - 1), 0)

	// The five fetches are independent reads of the same snapshot; run them
	// concurrently. Each branch degrades to its own zero value on error so
	// one failing dependency never blanks the rest of the dashboard.
	var (
		wg           sync.WaitGroup
		periodTxs    []models.Transaction
		annualTxs    []models.Transaction
		trailingTxs  []models.Transaction
		recentTxs    []models.Transaction
		bankAccounts []models.BankAccount
	)
	fetch := func(name string, run func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if p := recover(); p != nil {
					logger.ErrorFromContext(ctx, "Dashboard sub-aggregation panicked, using default", "branch", name, "companyID", tenant.CompanyID, "panic", p)
				}
			}()
			if err := run(); err != nil {
				logger.FromContext(ctx).Warn("Dashboard sub-aggregation failed, using default", "branch", name, "companyID", tenant.CompanyID, "error", err)
			}
		}()
	}
	fetch("period", func() (err error) {
		periodTxs, err = s.ledger.FindTransactions(ctx, tenant.CompanyID, periodStart, periodEnd)
		return err
	})
	fetch("annual", func() (err error) {
		annualTxs, err = s.ledger.FindTransactions(ctx, tenant.CompanyID, yearStart, now)
		return err
	})
	fetch("trailing", func() (err error) {
		trailingTxs, err = s.ledger.FindTransactions(ctx, tenant.CompanyID, windowStart, now)
		return err
	})
	fetch("recent", func() (err error) {
		recentTxs, err = s.ledger.FindRecentTransactions(ctx, tenant.CompanyID, periodStart, periodEnd, 5)
		return err
	})
	fetch("bankAccounts", func() (err error) {
		bankAccounts, err = s.ledger.FindBankAccounts(ctx, tenant.UserID)
		return err
	})
	wg.Wait()

	keywords := processors.NormalizeKeywords(company.RevenueKeywords.String)

	totals := s.periods.Aggregate(periodTxs, keywords)
	chartData := s.periods.BuildDailySeries(periodTxs, periodStart, periodEnd)
	annualRevenue := s.history.AnnualRevenue(annualTxs, keywords, yearStart, now)
	historyData := s.history.TrailingTwelveMonths(trailingTxs, keywords, now)

	provision := s.budget.ComputeTaxProvision(totals.TotalRevenue, company.TaxRate)
	budgetStatus := s.budget.ComputeBudgetStatus(totals.TotalExpenses, company.MonthlyBudget, company.BudgetAlertThreshold)

	currentBalance, hasBalance := sumBankBalances(bankAccounts)
	forecast := s.forecaster.Forecast(currentBalance, hasBalance, s.history.MonthlyNets(trailingTxs, now))

	data = &models.DashboardData{
		TotalRevenue:         utils.RoundFloat(totals.TotalRevenue, 2),
		TotalExpenses:        utils.RoundFloat(totals.TotalExpenses, 2),
		NetIncome:            utils.RoundFloat(totals.NetIncome, 2),
		AnnualRevenue:        utils.RoundFloat(annualRevenue, 2),
		TaxAmount:            utils.RoundFloat(provision.TaxAmount, 2),
		NetAvailable:         utils.RoundFloat(provision.NetAvailable, 2),
		TaxRate:              company.TaxRate,
		MonthlyBudget:        company.MonthlyBudget,
		BudgetAlertThreshold: company.BudgetAlertThreshold,
		BudgetUsedPercent:    utils.RoundFloat(budgetStatus.BudgetUsedPercent, 2),
		BudgetRemaining:      utils.RoundFloat(budgetStatus.BudgetRemaining, 2),
		BankAccounts:         toBankAccountData(bankAccounts),
		RecentTransactions:   toRecentTransactions(recentTxs),
		ChartData:            chartData,
		HistoryData:          historyData,
		CashFlowForecast:     forecast,
	}

	if s.reportCache != nil {
		s.reportCache.Set(cacheKey, data, s.cacheTTL)
	}
	return data
}

// InvalidateCompanyCache drops every cached dashboard for the company.
// Called after transaction and settings mutations.
func (s *dashboardServiceImpl) InvalidateCompanyCache(companyID int64) {
	if s.reportCache == nil {
		return
	}
	prefix := fmt.Sprintf("dashboard:%d:", companyID)
	for key := range s.reportCache.Items() {
		if strings.HasPrefix(key, prefix) {
			s.reportCache.Delete(key)
		}
	}
}

// resolvePeriod picks the reporting range: an explicit [from, to] when both
// parse, otherwise the current calendar month. Malformed input from the
// query string falls back silently; a dashboard must render, not error.
func (s *dashboardServiceImpl) resolvePeriod(ctx context.Context, fromStr, toStr string, now time.Time) (time.Time, time.Time) {
	if fromStr != "" && toStr != "" {
		from, errFrom := time.ParseInLocation("2006-01-02", fromStr, time.UTC)
		to, errTo := time.ParseInLocation("2006-01-02", toStr, time.UTC)
		if errFrom == nil && errTo == nil && !from.After(to) {
			return from, endOfDay(to)
		}
		logger.FromContext(ctx).Debug("Unparseable reporting period, falling back to current month",
			"from", fromStr, "to", toStr)
	}
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := endOfDay(monthStart.AddDate(0, 1, -1))
	return monthStart, monthEnd
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
}

func dashboardCacheKey(companyID int64, periodStart, periodEnd time.Time) string {
	return fmt.Sprintf("dashboard:%d:%s:%s", companyID,
		periodStart.Format("2006-01-02"), periodEnd.Format("2006-01-02"))
}

// sumBankBalances totals the known balances across connected accounts.
// Accounts that have never synced a balance are skipped; with no known
// balance at all the forecaster gets its documented empty input.
func sumBankBalances(accounts []models.BankAccount) (float64, bool) {
	var total float64
	known := false
	for _, account := range accounts {
		if account.CurrentBalance.Valid {
			total += account.CurrentBalance.Float64
			known = true
		}
	}
	return total, known
}

func toBankAccountData(accounts []models.BankAccount) []models.BankAccountData {
	out := make([]models.BankAccountData, 0, len(accounts))
	for _, account := range accounts {
		out = append(out, models.BankAccountData{
			ID:             account.ID,
			BankName:       account.BankName,
			Mask:           account.Mask,
			CurrentBalance: account.CurrentBalance,
			Currency:       account.Currency,
		})
	}
	return out
}

func toRecentTransactions(transactions []models.Transaction) []models.RecentTransaction {
	out := make([]models.RecentTransaction, 0, len(transactions))
	for _, tx := range transactions {
		out = append(out, models.RecentTransaction{
			ID:          tx.ID,
			Date:        tx.Date.UTC().Format("2006-01-02"),
			Amount:      tx.Amount,
			Type:        tx.Type,
			Description: tx.Description,
			Category:    tx.Category,
			Status:      tx.Status,
		})
	}
	return out
}

// emptyDashboardData is the all-zero fallback shape. Slices are empty, not
// nil, so the response always serializes to renderable JSON arrays.
func emptyDashboardData() *models.DashboardData {
	return &models.DashboardData{
		BankAccounts:       []models.BankAccountData{},
		RecentTransactions: []models.RecentTransaction{},
		ChartData:          []models.ChartDataPoint{},
		HistoryData:        []models.HistoryDataPoint{},
		CashFlowForecast: models.CashFlowForecast{
			ForecastData: []models.ForecastDataPoint{},
		},
	}
}
