package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/username/comptafacile/backend/src/logger"
	"github.com/username/comptafacile/backend/src/models"
	"github.com/username/comptafacile/backend/src/security/validation"
	"github.com/username/comptafacile/backend/src/services"
	"github.com/username/comptafacile/backend/src/utils"
)

// CompanyHandler exposes the tenant settings that parameterize the
// reporting pipeline: tax rate, budget, alert threshold and the revenue
// classification keywords.
type CompanyHandler struct {
	ledger           services.LedgerService
	dashboardService services.DashboardService
}

func NewCompanyHandler(ledger services.LedgerService, dashboardService services.DashboardService) *CompanyHandler {
	return &CompanyHandler{ledger: ledger, dashboardService: dashboardService}
}

// HandleGetSettings answers GET /api/company/settings.
func (h *CompanyHandler) HandleGetSettings(w http.ResponseWriter, r *http.Request) {
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
		logger.FromContext(r.Context()).Error("Failed to load company settings", "error", err)
		sendJSONError(w, "Failed to load settings", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusOK, company)
}

type settingsUpdateRequest struct {
	Name                 *string  `json:"name"`
	Siret                *string  `json:"siret"`
	TaxRate              *float64 `json:"taxRate"`
	MonthlyBudget        *float64 `json:"monthlyBudget"`
	BudgetAlertThreshold *float64 `json:"budgetAlertThreshold"`
	RevenueKeywords      *string  `json:"revenueKeywords"`
}

// HandleUpdateSettings answers PUT /api/company/settings. Only fields
// present in the body are changed. Any accepted change invalidates the
// company's cached dashboards.
func (h *CompanyHandler) HandleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var req settingsUpdateRequest
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
		logger.FromContext(r.Context()).Error("Failed to load company for settings update", "error", err)
		sendJSONError(w, "Failed to update settings", http.StatusInternalServerError)
		return
	}

	if req.Name != nil {
		name := validation.SanitizeText(strings.TrimSpace(*req.Name))
		if err := validation.ValidateStringNotEmpty(name, "name"); err != nil {
			sendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := validation.ValidateStringMaxLength(name, validation.MaxCompanyNameLength, "name"); err != nil {
			sendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		company.Name = name
	}
	if req.Siret != nil {
		siret := validation.SanitizeText(strings.TrimSpace(*req.Siret))
		if err := validation.ValidateStringMaxLength(siret, 14, "siret"); err != nil {
			sendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		company.Siret = models.NewNullString(siret)
	}
	if req.TaxRate != nil {
		if err := validation.ValidateTaxRate(*req.TaxRate); err != nil {
			sendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		company.TaxRate = *req.TaxRate
	}
	if req.MonthlyBudget != nil {
		if err := validation.ValidateNonNegativeAmount(*req.MonthlyBudget, "monthlyBudget"); err != nil {
			sendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		company.MonthlyBudget = *req.MonthlyBudget
	}
	if req.BudgetAlertThreshold != nil {
		if err := validation.ValidateNonNegativeAmount(*req.BudgetAlertThreshold, "budgetAlertThreshold"); err != nil {
			sendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		company.BudgetAlertThreshold = *req.BudgetAlertThreshold
	}
	if req.RevenueKeywords != nil {
		keywords, err := validation.NormalizeKeywordsInput(*req.RevenueKeywords)
		if err != nil {
			sendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		company.RevenueKeywords = models.NewNullString(keywords)
	}

	if err := h.ledger.UpdateCompanySettings(r.Context(), company); err != nil {
		logger.FromContext(r.Context()).Error("Failed to persist company settings", "companyID", company.ID, "error", err)
		sendJSONError(w, "Failed to update settings", http.StatusInternalServerError)
		return
	}

	h.dashboardService.InvalidateCompanyCache(company.ID)
	logger.FromContext(r.Context()).Info("Company settings updated", "companyID", company.ID)

	utils.WriteJSON(w, http.StatusOK, company)
}
