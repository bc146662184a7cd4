package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/username/comptafacile/backend/src/models"
)

type ledgerServiceImpl struct {
	db *sql.DB
}

func NewLedgerService(db *sql.DB) LedgerService {
	return &ledgerServiceImpl{db: db}
}

func (s *ledgerServiceImpl) CompanyForUser(ctx context.Context, userID int64) (*models.Company, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, siret, tax_rate, revenue_keywords, monthly_budget, budget_alert_threshold
		FROM companies
		WHERE user_id = ?
		ORDER BY id ASC
		LIMIT 1`, userID)

	var company models.Company
	var siret, keywords sql.NullString
	err := row.Scan(
		&company.ID, &company.UserID, &company.Name, &siret,
		&company.TaxRate, &keywords, &company.MonthlyBudget, &company.BudgetAlertThreshold,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoCompany
	}
	if err != nil {
		return nil, fmt.Errorf("querying company for user %d: %w", userID, err)
	}
	company.Siret = models.NullString(siret)
	company.RevenueKeywords = models.NullString(keywords)
	return &company, nil
}

func (s *ledgerServiceImpl) CreateCompany(ctx context.Context, company *models.Company) error {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO companies (user_id, name, siret, tax_rate, revenue_keywords, monthly_budget, budget_alert_threshold)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		company.UserID, company.Name, sql.NullString(company.Siret), company.TaxRate,
		sql.NullString(company.RevenueKeywords), company.MonthlyBudget, company.BudgetAlertThreshold,
	)
	if err != nil {
		return fmt.Errorf("inserting company: %w", err)
	}
	company.ID, err = result.LastInsertId()
	return err
}

func (s *ledgerServiceImpl) UpdateCompanySettings(ctx context.Context, company *models.Company) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE companies
		SET name = ?, tax_rate = ?, revenue_keywords = ?, monthly_budget = ?,
		    budget_alert_threshold = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		company.Name, company.TaxRate, sql.NullString(company.RevenueKeywords),
		company.MonthlyBudget, company.BudgetAlertThreshold, company.ID,
	)
	if err != nil {
		return fmt.Errorf("updating company %d settings: %w", company.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCompanyMissing
	}
	return nil
}

func (s *ledgerServiceImpl) FindTransactions(ctx context.Context, companyID int64, from, to time.Time) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, company_id, date, amount, type, description, category, status
		FROM transactions
		WHERE company_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC, id ASC`,
		companyID, from.UTC(), to.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("querying transactions for company %d: %w", companyID, err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

func (s *ledgerServiceImpl) FindRecentTransactions(ctx context.Context, companyID int64, from, to time.Time, limit int) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, company_id, date, amount, type, description, category, status
		FROM transactions
		WHERE company_id = ? AND date >= ? AND date <= ?
		ORDER BY date DESC, id DESC
		LIMIT ?`,
		companyID, from.UTC(), to.UTC(), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying recent transactions for company %d: %w", companyID, err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

func (s *ledgerServiceImpl) InsertTransaction(ctx context.Context, tx *models.Transaction) error {
	if tx.Amount < 0 {
		return fmt.Errorf("%w: amount must be non-negative, direction is carried by type", ErrInvalidInput)
	}
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (company_id, date, amount, type, description, category, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tx.CompanyID, tx.Date.UTC(), tx.Amount, tx.Type,
		sql.NullString(tx.Description), tx.Category, tx.Status,
	)
	if err != nil {
		return fmt.Errorf("inserting transaction: %w", err)
	}
	tx.ID, err = result.LastInsertId()
	return err
}

func (s *ledgerServiceImpl) FindBankAccounts(ctx context.Context, userID int64) ([]models.BankAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, bank_name, mask, current_balance, currency, last_synced_at
		FROM bank_accounts
		WHERE user_id = ?
		ORDER BY id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying bank accounts for user %d: %w", userID, err)
	}
	defer rows.Close()

	var accounts []models.BankAccount
	for rows.Next() {
		var account models.BankAccount
		var balance sql.NullFloat64
		var syncedAt sql.NullTime
		if err := rows.Scan(
			&account.ID, &account.UserID, &account.BankName, &account.Mask,
			&balance, &account.Currency, &syncedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning bank account: %w", err)
		}
		account.CurrentBalance = models.NullFloat64(balance)
		account.LastSyncedAt = models.NullTime(syncedAt)
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// UpsertBankAccount inserts or refreshes a snapshot keyed on the provider's
// account ID, so repeated syncs update balances in place.
func (s *ledgerServiceImpl) UpsertBankAccount(ctx context.Context, account *models.BankAccount) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bank_accounts (user_id, bank_name, mask, current_balance, currency, provider_account_id, last_synced_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id, provider_account_id) DO UPDATE SET
			bank_name = excluded.bank_name,
			mask = excluded.mask,
			current_balance = excluded.current_balance,
			last_synced_at = CURRENT_TIMESTAMP`,
		account.UserID, account.BankName, account.Mask,
		sql.NullFloat64(account.CurrentBalance), account.Currency, account.ProviderAccountID,
	)
	if err != nil {
		return fmt.Errorf("upserting bank account for user %d: %w", account.UserID, err)
	}
	return nil
}

func scanTransactions(rows *sql.Rows) ([]models.Transaction, error) {
	var transactions []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		var description sql.NullString
		if err := rows.Scan(
			&tx.ID, &tx.CompanyID, &tx.Date, &tx.Amount, &tx.Type,
			&description, &tx.Category, &tx.Status,
		); err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		tx.Description = models.NullString(description)
		transactions = append(transactions, tx)
	}
	return transactions, rows.Err()
}
