package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/username/comptafacile/backend/src/logger"
	"github.com/username/comptafacile/backend/src/models"
)

// aggregatorAccount is the account payload returned by the bank data
// aggregator's /accounts endpoint.
type aggregatorAccount struct {
	ID       string   `json:"id"`
	BankName string   `json:"bank_name"`
	Mask     string   `json:"mask"`
	Balance  *float64 `json:"balance"`
	Currency string   `json:"currency"`
}

type bankLinkServiceImpl struct {
	oauthConfig *oauth2.Config
	apiBaseURL  string
	ledger      LedgerService
	db          *sql.DB
	httpTimeout time.Duration
}

// NewBankLinkService wires the OAuth config for the bank aggregator. The
// aggregator is a black box: we exchange an authorization code for tokens,
// pull account snapshots, and persist them. Everything financial about the
// accounts stays on the aggregator's side.
func NewBankLinkService(clientID, clientSecret, authURL, tokenURL, redirectURL, apiBaseURL string, ledger LedgerService, db *sql.DB) BankLinkService {
	return &bankLinkServiceImpl{
		oauthConfig: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"accounts:read", "balances:read"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  authURL,
				TokenURL: tokenURL,
			},
		},
		apiBaseURL:  apiBaseURL,
		ledger:      ledger,
		db:          db,
		httpTimeout: 15 * time.Second,
	}
}

func (s *bankLinkServiceImpl) AuthCodeURL(state string) string {
	return s.oauthConfig.AuthCodeURL(state)
}

// CompleteLink exchanges the callback code, fetches the linked accounts and
// stores their snapshots plus the tokens needed for later refreshes.
func (s *bankLinkServiceImpl) CompleteLink(ctx context.Context, userID int64, code string) error {
	token, err := s.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchanging aggregator code: %w", err)
	}

	accounts, err := s.fetchAccounts(ctx, token)
	if err != nil {
		return err
	}

	for _, acc := range accounts {
		snapshot := &models.BankAccount{
			UserID:            userID,
			BankName:          acc.BankName,
			Mask:              acc.Mask,
			Currency:          orDefault(acc.Currency, "EUR"),
			ProviderAccountID: acc.ID,
		}
		if acc.Balance != nil {
			snapshot.CurrentBalance = models.NullFloat64{Float64: *acc.Balance, Valid: true}
		}
		if err := s.ledger.UpsertBankAccount(ctx, snapshot); err != nil {
			return err
		}
		if err := s.storeTokens(ctx, userID, acc.ID, token); err != nil {
			return err
		}
	}

	logger.FromContext(ctx).Info("Bank link completed", "userID", userID, "accounts", len(accounts))
	return nil
}

// RefreshBalances re-reads balances for every linked account of the user,
// refreshing expired tokens through the oauth2 token source.
func (s *bankLinkServiceImpl) RefreshBalances(ctx context.Context, userID int64) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT provider_account_id, access_token, refresh_token, token_expires_at
		FROM bank_accounts
		WHERE user_id = ? AND provider_account_id IS NOT NULL AND access_token IS NOT NULL`, userID)
	if err != nil {
		return fmt.Errorf("querying linked accounts for user %d: %w", userID, err)
	}
	defer rows.Close()

	type linked struct {
		providerID string
		token      *oauth2.Token
	}
	var links []linked
	for rows.Next() {
		var providerID, accessToken, refreshToken string
		var expiresAt sql.NullTime
		if err := rows.Scan(&providerID, &accessToken, &refreshToken, &expiresAt); err != nil {
			return fmt.Errorf("scanning linked account: %w", err)
		}
		token := &oauth2.Token{AccessToken: accessToken, RefreshToken: refreshToken}
		if expiresAt.Valid {
			token.Expiry = expiresAt.Time
		}
		links = append(links, linked{providerID: providerID, token: token})
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, link := range links {
		// TokenSource refreshes transparently when the access token expired.
		fresh, err := s.oauthConfig.TokenSource(ctx, link.token).Token()
		if err != nil {
			logger.FromContext(ctx).Warn("Token refresh failed for linked account", "userID", userID, "providerAccountID", link.providerID, "error", err)
			continue
		}
		accounts, err := s.fetchAccounts(ctx, fresh)
		if err != nil {
			logger.FromContext(ctx).Warn("Balance refresh failed", "userID", userID, "providerAccountID", link.providerID, "error", err)
			continue
		}
		for _, acc := range accounts {
			if acc.ID != link.providerID {
				continue
			}
			snapshot := &models.BankAccount{
				UserID:            userID,
				BankName:          acc.BankName,
				Mask:              acc.Mask,
				Currency:          orDefault(acc.Currency, "EUR"),
				ProviderAccountID: acc.ID,
			}
			if acc.Balance != nil {
				snapshot.CurrentBalance = models.NullFloat64{Float64: *acc.Balance, Valid: true}
			}
			if err := s.ledger.UpsertBankAccount(ctx, snapshot); err != nil {
				return err
			}
			if err := s.storeTokens(ctx, userID, acc.ID, fresh); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *bankLinkServiceImpl) fetchAccounts(ctx context.Context, token *oauth2.Token) ([]aggregatorAccount, error) {
	client := s.oauthConfig.Client(ctx, token)
	client.Timeout = s.httpTimeout

	resp, err := client.Get(s.apiBaseURL + "/accounts")
	if err != nil {
		return nil, fmt.Errorf("fetching aggregator accounts: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("aggregator accounts endpoint returned %d", resp.StatusCode)
	}

	var payload struct {
		Accounts []aggregatorAccount `json:"accounts"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding aggregator accounts: %w", err)
	}
	return payload.Accounts, nil
}

func (s *bankLinkServiceImpl) storeTokens(ctx context.Context, userID int64, providerAccountID string, token *oauth2.Token) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE bank_accounts
		SET access_token = ?, refresh_token = ?, token_expires_at = ?
		WHERE user_id = ? AND provider_account_id = ?`,
		token.AccessToken, token.RefreshToken, token.Expiry.UTC(), userID, providerAccountID,
	)
	if err != nil {
		return fmt.Errorf("storing aggregator tokens: %w", err)
	}
	return nil
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
