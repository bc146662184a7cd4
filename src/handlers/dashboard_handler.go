package handlers

import (
	"net/http"

	"github.com/username/comptafacile/backend/src/services"
	"github.com/username/comptafacile/backend/src/utils"
)

// DashboardHandler serves the single aggregated payload the dashboard page
// renders. The heavy lifting lives in the dashboard service.
type DashboardHandler struct {
	dashboardService services.DashboardService
}

func NewDashboardHandler(dashboardService services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// HandleGetDashboard answers GET /api/dashboard?from=YYYY-MM-DD&to=YYYY-MM-DD.
// Missing or malformed period parameters fall back to the current calendar
// month inside the service, so this endpoint always returns 200 with a
// complete payload for an authenticated user.
func (h *DashboardHandler) HandleGetDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")

	data := h.dashboardService.GetDashboardData(r.Context(), userID, from, to)
	utils.WriteJSON(w, http.StatusOK, data)
}
