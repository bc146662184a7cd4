// backend/src/handlers/user_handler.go

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"

	"github.com/username/comptafacile/backend/src/logger"
	"github.com/username/comptafacile/backend/src/security"
	"github.com/username/comptafacile/backend/src/services"
)

type contextKey string

const userIDContextKey contextKey = "userID"

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
var passwordRegex = regexp.MustCompile(`^.{6,}$`)

// UserHandler owns the auth surface: register, login, token refresh, logout
// and the auth middleware that gates every protected route.
type UserHandler struct {
	authService *security.AuthService
	ledger      services.LedgerService
}

func NewUserHandler(authService *security.AuthService, ledger services.LedgerService) *UserHandler {
	return &UserHandler{
		authService: authService,
		ledger:      ledger,
	}
}

func sendJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	logger.L.Warn("Sending JSON error to client", "message", message, "statusCode", statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDContextKey).(int64)
	return userID, ok
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
