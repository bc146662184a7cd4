package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/username/comptafacile/backend/src/logger"
	"github.com/username/comptafacile/backend/src/models"
	"github.com/username/comptafacile/backend/src/security/validation"
	"github.com/username/comptafacile/backend/src/services"
	"github.com/username/comptafacile/backend/src/utils"
)

// TransactionHandler exposes the ledger entries of the caller's company:
// listing over a period and manual entry of individual movements.
type TransactionHandler struct {
	ledger           services.LedgerService
	dashboardService services.DashboardService
}

func NewTransactionHandler(ledger services.LedgerService, dashboardService services.DashboardService) *TransactionHandler {
	return &TransactionHandler{ledger: ledger, dashboardService: dashboardService}
}

// HandleGetTransactions answers GET /api/transactions?from&to. Without an
// explicit period it lists the current calendar month.
func (h *TransactionHandler) HandleGetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	company, err := h.ledger.CompanyForUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrNoCompany) {
			sendJSONError(w, "No company configured", http.StatusNotFound)
			return
		}
		logger.FromContext(r.Context()).Error("Failed to resolve company for transaction list", "error", err)
		sendJSONError(w, "Failed to load transactions", http.StatusInternalServerError)
		return
	}

	from, to := parsePeriodOrCurrentMonth(r.URL.Query().Get("from"), r.URL.Query().Get("to"))

	txs, err := h.ledger.FindTransactions(r.Context(), company.ID, from, to)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to list transactions", "companyID", company.ID, "error", err)
		sendJSONError(w, "Failed to load transactions", http.StatusInternalServerError)
		return
	}
	if txs == nil {
		txs = []models.Transaction{}
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": txs,
		"from":         from.Format("2006-01-02"),
		"to":           to.Format("2006-01-02"),
	})
}

type manualTransactionRequest struct {
	Date        string  `json:"date"`
	Amount      float64 `json:"amount"`
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Status      string  `json:"status"`
}

// HandleAddManualTransaction answers POST /api/transactions/manual. A
// successfully stored entry invalidates the company's cached dashboards so
// the next read reflects it.
func (h *TransactionHandler) HandleAddManualTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var req manualTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	company, err := h.ledger.CompanyForUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrNoCompany) {
			sendJSONError(w, "No company configured", http.StatusNotFound)
			return
		}
		logger.FromContext(r.Context()).Error("Failed to resolve company for manual entry", "error", err)
		sendJSONError(w, "Failed to add transaction", http.StatusInternalServerError)
		return
	}

	date, err := validation.ValidateDateString(req.Date, "date")
	if err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidateNonNegativeAmount(req.Amount, "amount"); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidateTransactionType(req.Type); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	description := validation.SanitizeText(strings.TrimSpace(req.Description))
	if err := validation.ValidateStringMaxLength(description, validation.MaxDescriptionLength, "description"); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	category := validation.SanitizeText(strings.TrimSpace(req.Category))
	if err := validation.ValidateStringMaxLength(category, validation.DefaultMaxStringLength, "category"); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	status := strings.ToUpper(strings.TrimSpace(req.Status))
	switch status {
	case "":
		status = models.TransactionStatusCompleted
	case models.TransactionStatusPending, models.TransactionStatusCompleted:
	default:
		sendJSONError(w, "status must be PENDING or COMPLETED", http.StatusBadRequest)
		return
	}

	tx := &models.Transaction{
		CompanyID:   company.ID,
		Date:        date,
		Amount:      req.Amount,
		Type:        strings.ToUpper(strings.TrimSpace(req.Type)),
		Description: models.NewNullString(description),
		Category:    category,
		Status:      status,
	}

	if err := h.ledger.InsertTransaction(r.Context(), tx); err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			sendJSONError(w, "Invalid transaction data", http.StatusBadRequest)
			return
		}
		logger.FromContext(r.Context()).Error("Failed to insert manual transaction", "companyID", company.ID, "error", err)
		sendJSONError(w, "Failed to add transaction", http.StatusInternalServerError)
		return
	}

	h.dashboardService.InvalidateCompanyCache(company.ID)
	logger.FromContext(r.Context()).Info("Manual transaction added", "companyID", company.ID, "transactionID", tx.ID)

	utils.WriteJSON(w, http.StatusCreated, tx)
}

// parsePeriodOrCurrentMonth mirrors the dashboard service fallback: a
// malformed or inverted range is replaced by the current calendar month.
func parsePeriodOrCurrentMonth(fromStr, toStr string) (time.Time, time.Time) {
	now := time.Now().UTC()
	if fromStr != "" && toStr != "" {
		from, errFrom := time.Parse("2006-01-02", fromStr)
		to, errTo := time.Parse("2006-01-02", toStr)
		if errFrom == nil && errTo == nil && !from.After(to) {
			return from, to.Add(24*time.Hour - time.Nanosecond)
		}
	}
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return monthStart, monthStart.AddDate(0, 1, 0).Add(-time.Nanosecond)
}
