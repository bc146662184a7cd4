package models

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Transaction types. Amounts are always stored as non-negative magnitudes;
// the direction of the cash movement is carried exclusively by Type.
const (
	TransactionTypeIncome  = "INCOME"
	TransactionTypeExpense = "EXPENSE"
)

// Transaction statuses.
const (
	TransactionStatusPending   = "PENDING"
	TransactionStatusCompleted = "COMPLETED"
)

// Transaction represents a single ledger entry owned by a company.
type Transaction struct {
	ID          int64      `json:"id,omitempty"`
	CompanyID   int64      `json:"company_id"`
	Date        time.Time  `json:"date"`
	Amount      float64    `json:"amount"` // non-negative magnitude, EUR
	Type        string     `json:"type"`   // "INCOME" or "EXPENSE"
	Description NullString `json:"description"`
	Category    string     `json:"category"`
	Status      string     `json:"status"` // "PENDING" or "COMPLETED"
	CreatedAt   time.Time  `json:"created_at,omitempty"`
}

// NullString is an alias for sql.NullString that marshals to a plain string
// or null instead of the {String, Valid} wrapper object.
type NullString sql.NullString

func (ns NullString) MarshalJSON() ([]byte, error) {
	if !ns.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(ns.String)
}

func (ns *NullString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*ns = NullString{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*ns = NullString{String: s, Valid: true}
	return nil
}

// NewNullString builds a NullString from a plain string, treating the empty
// string as null.
func NewNullString(s string) NullString {
	if s == "" {
		return NullString{}
	}
	return NullString{String: s, Valid: true}
}
