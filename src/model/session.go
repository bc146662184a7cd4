package model

import (
	"database/sql"
	"time"
)

// Session ties an issued access token to a revocable server-side record,
// so logout actually invalidates tokens before they expire.
type Session struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	Token        string    `json:"-"`
	RefreshToken string    `json:"-"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}

func CreateSession(db *sql.DB, session *Session) error {
	result, err := db.Exec(`
		INSERT INTO sessions (user_id, token, refresh_token, expires_at)
		VALUES (?, ?, ?, ?)`,
		session.UserID, session.Token, session.RefreshToken, session.ExpiresAt.UTC(),
	)
	if err != nil {
		return err
	}
	session.ID, err = result.LastInsertId()
	return err
}

func GetSessionByToken(db *sql.DB, token string) (*Session, error) {
	return scanSession(db.QueryRow(`
		SELECT id, user_id, token, refresh_token, expires_at, created_at
		FROM sessions WHERE token = ?`, token))
}

func GetSessionByRefreshToken(db *sql.DB, refreshToken string) (*Session, error) {
	return scanSession(db.QueryRow(`
		SELECT id, user_id, token, refresh_token, expires_at, created_at
		FROM sessions WHERE refresh_token = ?`, refreshToken))
}

// UpdateSessionTokens rotates both tokens of an existing session.
func UpdateSessionTokens(db *sql.DB, sessionID int64, token, refreshToken string, expiresAt time.Time) error {
	_, err := db.Exec(`
		UPDATE sessions SET token = ?, refresh_token = ?, expires_at = ?
		WHERE id = ?`,
		token, refreshToken, expiresAt.UTC(), sessionID,
	)
	return err
}

func DeleteSessionByRefreshToken(db *sql.DB, refreshToken string) error {
	_, err := db.Exec(`DELETE FROM sessions WHERE refresh_token = ?`, refreshToken)
	return err
}

func DeleteSessionByToken(db *sql.DB, token string) error {
	_, err := db.Exec(`DELETE FROM sessions WHERE token = ?`, token)
	return err
}

func DeleteExpiredSessions(db *sql.DB) error {
	_, err := db.Exec(`DELETE FROM sessions WHERE expires_at < CURRENT_TIMESTAMP`)
	return err
}

func scanSession(row *sql.Row) (*Session, error) {
	var s Session
	err := row.Scan(&s.ID, &s.UserID, &s.Token, &s.RefreshToken, &s.ExpiresAt, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
