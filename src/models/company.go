package models

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Company is the tenant whose books are reported on. Settings mutated only
// through the settings endpoints; the reporting pipeline reads a snapshot.
type Company struct {
	ID                   int64      `json:"id"`
	UserID               int64      `json:"user_id"`
	Name                 string     `json:"name"`
	Siret                NullString `json:"siret"`
	TaxRate              float64    `json:"tax_rate"` // percent, [0, 50]
	RevenueKeywords      NullString `json:"revenue_keywords"`
	MonthlyBudget        float64    `json:"monthly_budget"`
	BudgetAlertThreshold float64    `json:"budget_alert_threshold"`
	CreatedAt            time.Time  `json:"created_at,omitempty"`
	UpdatedAt            time.Time  `json:"updated_at,omitempty"`
}

// Client is a customer of a company. The reporting pipeline only cares about
// ownership; invoicing endpoints consume the rest.
type Client struct {
	ID        int64      `json:"id"`
	CompanyID int64      `json:"company_id"`
	Name      string     `json:"name"`
	Email     NullString `json:"email"`
	Address   NullString `json:"address"`
	CreatedAt time.Time  `json:"created_at,omitempty"`
}

// Invoice statuses.
const (
	InvoiceStatusDraft     = "DRAFT"
	InvoiceStatusSent      = "SENT"
	InvoiceStatusPaid      = "PAID"
	InvoiceStatusCancelled = "CANCELLED"
)

// Invoice is a billing document issued by a company to a client.
type Invoice struct {
	ID        int64        `json:"id"`
	CompanyID int64        `json:"company_id"`
	ClientID  int64        `json:"client_id,omitempty"`
	Number    string       `json:"number"`
	Status    string       `json:"status"`
	IssueDate time.Time    `json:"issue_date"`
	DueDate   NullTime     `json:"due_date"`
	Total     float64      `json:"total"`
	Rows      []InvoiceRow `json:"rows,omitempty"`
	CreatedAt time.Time    `json:"created_at,omitempty"`
}

// InvoiceRow is a single line of an invoice.
type InvoiceRow struct {
	ID        int64   `json:"id"`
	InvoiceID int64   `json:"invoice_id"`
	Label     string  `json:"label"`
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	VATRate   float64 `json:"vat_rate"`
}

// BankAccount is a read-only snapshot of a connected account, refreshed by
// the bank link service. CurrentBalance is null until the first sync.
type BankAccount struct {
	ID             int64       `json:"id"`
	UserID         int64       `json:"user_id"`
	BankName       string      `json:"bank_name"`
	Mask           string      `json:"mask"`
	CurrentBalance NullFloat64 `json:"current_balance"`
	Currency       string      `json:"currency"`
	// ProviderAccountID is the aggregator's stable account identifier,
	// used to upsert snapshots across syncs. Never exposed to clients.
	ProviderAccountID string   `json:"-"`
	LastSyncedAt      NullTime `json:"last_synced_at"`
}

// NullTime is an alias for sql.NullTime that marshals to null when unset.
type NullTime sql.NullTime

func (nt NullTime) MarshalJSON() ([]byte, error) {
	if !nt.Valid {
		return []byte("null"), nil
	}
	return nt.Time.MarshalJSON()
}

// NullFloat64 is an alias for sql.NullFloat64 that marshals to a plain
// number or null.
type NullFloat64 sql.NullFloat64

func (nf NullFloat64) MarshalJSON() ([]byte, error) {
	if !nf.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(nf.Float64)
}
