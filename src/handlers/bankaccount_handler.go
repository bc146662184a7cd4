package handlers

import (
	"net/http"

	"github.com/username/comptafacile/backend/src/logger"
	"github.com/username/comptafacile/backend/src/models"
	"github.com/username/comptafacile/backend/src/services"
	"github.com/username/comptafacile/backend/src/utils"
)

// BankAccountHandler lists the connected bank account snapshots.
type BankAccountHandler struct {
	ledger services.LedgerService
}

func NewBankAccountHandler(ledger services.LedgerService) *BankAccountHandler {
	return &BankAccountHandler{ledger: ledger}
}

// HandleGetBankAccounts answers GET /api/bank/accounts.
func (h *BankAccountHandler) HandleGetBankAccounts(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	accounts, err := h.ledger.FindBankAccounts(r.Context(), userID)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to list bank accounts", "error", err)
		sendJSONError(w, "Failed to load bank accounts", http.StatusInternalServerError)
		return
	}
	if accounts == nil {
		accounts = []models.BankAccount{}
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"accounts": accounts})
}
