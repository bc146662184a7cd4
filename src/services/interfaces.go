package services

import (
	"context"
	"errors"
	"time"

	"github.com/username/comptafacile/backend/src/models"
)

// Cache lifetimes shared by the services that use the report cache.
const (
	DefaultCacheExpiration = 5 * time.Minute
	CacheCleanupInterval   = 15 * time.Minute
)

// Common service errors.
var (
	ErrNoCompany      = errors.New("no company configured for user")
	ErrCompanyMissing = errors.New("company not found")
	ErrInvalidInput   = errors.New("invalid input")
)

// TenantContext identifies whose books a pipeline invocation reports on.
// It is passed explicitly into every aggregation call instead of being
// resolved from ambient state.
type TenantContext struct {
	UserID    int64
	CompanyID int64
}

// LedgerService is the read/write surface over the relational store. The
// dashboard pipeline only uses the Find* methods; mutations belong to the
// entry and settings endpoints.
type LedgerService interface {
	// CompanyForUser returns the user's first company (single active tenant
	// per user), or ErrNoCompany.
	CompanyForUser(ctx context.Context, userID int64) (*models.Company, error)
	CreateCompany(ctx context.Context, company *models.Company) error
	UpdateCompanySettings(ctx context.Context, company *models.Company) error

	// FindTransactions returns the company's transactions with date in
	// [from, to] inclusive, ascending.
	FindTransactions(ctx context.Context, companyID int64, from, to time.Time) ([]models.Transaction, error)
	// FindRecentTransactions returns at most limit transactions in
	// [from, to], newest first.
	FindRecentTransactions(ctx context.Context, companyID int64, from, to time.Time, limit int) ([]models.Transaction, error)
	InsertTransaction(ctx context.Context, tx *models.Transaction) error

	FindBankAccounts(ctx context.Context, userID int64) ([]models.BankAccount, error)
	UpsertBankAccount(ctx context.Context, account *models.BankAccount) error
}

// DashboardService composes the aggregation pipeline into the single
// response object the dashboard renders.
//
// GetDashboardData never fails: whatever goes wrong, the caller gets a
// structurally complete DashboardData (worst case all zeros). Swallowed
// errors are logged, not propagated.
type DashboardService interface {
	GetDashboardData(ctx context.Context, userID int64, fromStr, toStr string) *models.DashboardData
	InvalidateCompanyCache(companyID int64)
}

// BankLinkService drives the OAuth-style flow against the bank data
// aggregator and refreshes stored account snapshots. The read pipeline only
// ever sees its output through LedgerService.FindBankAccounts.
type BankLinkService interface {
	AuthCodeURL(state string) string
	CompleteLink(ctx context.Context, userID int64, code string) error
	RefreshBalances(ctx context.Context, userID int64) error
}
