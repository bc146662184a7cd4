// backend/src/handlers/banklink_handler.go
package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/username/comptafacile/backend/src/config"
	"github.com/username/comptafacile/backend/src/logger"
	"github.com/username/comptafacile/backend/src/services"
	"github.com/username/comptafacile/backend/src/utils"
)

const bankLinkStateCookie = "_bank_link_state"

// BankLinkHandler drives the OAuth-style connection flow against the bank
// data aggregator: redirect out, receive the callback, trigger refreshes.
type BankLinkHandler struct {
	bankLinkService  services.BankLinkService
	ledger           services.LedgerService
	dashboardService services.DashboardService
}

func NewBankLinkHandler(bankLinkService services.BankLinkService, ledger services.LedgerService, dashboardService services.DashboardService) *BankLinkHandler {
	return &BankLinkHandler{bankLinkService: bankLinkService, ledger: ledger, dashboardService: dashboardService}
}

// invalidateDashboards drops the cached dashboards of the user's company
// after a balance change, so the forecast picks up the new snapshot.
func (h *BankLinkHandler) invalidateDashboards(r *http.Request, userID int64) {
	company, err := h.ledger.CompanyForUser(r.Context(), userID)
	if err != nil {
		return
	}
	h.dashboardService.InvalidateCompanyCache(company.ID)
}

// HandleConnect answers GET /api/bank/connect. It stores a fresh state both
// in a short lived cookie and in the redirect URL, per the usual OAuth
// state check.
func (h *BankLinkHandler) HandleConnect(w http.ResponseWriter, r *http.Request) {
	if _, ok := GetUserIDFromContext(r.Context()); !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	state := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     bankLinkStateCookie,
		Value:    state,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		MaxAge:   int((10 * time.Minute).Seconds()),
	})

	http.Redirect(w, r, h.bankLinkService.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// HandleCallback answers GET /api/bank/callback?state&code and finishes the
// link: exchanges the code, fetches the account list and stores snapshots.
func (h *BankLinkHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	ctxLogger := logger.FromContext(r.Context())

	cookie, err := r.Cookie(bankLinkStateCookie)
	if err != nil || r.FormValue("state") == "" || r.FormValue("state") != cookie.Value {
		ctxLogger.Warn("Invalid bank link state on callback")
		http.Redirect(w, r, config.Cfg.FrontendBaseURL+"/settings?bank_link=invalid_state", http.StatusTemporaryRedirect)
		return
	}

	// The state is single use.
	http.SetCookie(w, &http.Cookie{Name: bankLinkStateCookie, Value: "", Path: "/", MaxAge: -1})

	code := r.FormValue("code")
	if code == "" {
		ctxLogger.Warn("Bank link callback without authorization code")
		http.Redirect(w, r, config.Cfg.FrontendBaseURL+"/settings?bank_link=denied", http.StatusTemporaryRedirect)
		return
	}

	if err := h.bankLinkService.CompleteLink(r.Context(), userID, code); err != nil {
		ctxLogger.Error("Failed to complete bank link", "error", err)
		http.Redirect(w, r, config.Cfg.FrontendBaseURL+"/settings?bank_link=failed", http.StatusTemporaryRedirect)
		return
	}

	h.invalidateDashboards(r, userID)
	ctxLogger.Info("Bank account linked")
	http.Redirect(w, r, config.Cfg.FrontendBaseURL+"/settings?bank_link=success", http.StatusTemporaryRedirect)
}

// HandleRefresh answers POST /api/bank/refresh and re-syncs the balances of
// every linked account.
func (h *BankLinkHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	if err := h.bankLinkService.RefreshBalances(r.Context(), userID); err != nil {
		logger.FromContext(r.Context()).Error("Failed to refresh bank balances", "error", err)
		sendJSONError(w, "Failed to refresh bank balances", http.StatusInternalServerError)
		return
	}

	h.invalidateDashboards(r, userID)
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Balances refreshed"})
}
