package store

import (
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dukerupert/storepulse/internal/model"
)

const (
	tokenBytes = 32
	linkTTL    = 15 * time.Minute
)

type MagicLinkStore struct {
	db *sql.DB
}

func NewMagicLinkStore(db *sql.DB) *MagicLinkStore {
	return &MagicLinkStore{db: db}
}

func scanMagicLink(scanner interface{ Scan(...any) error }) (*model.MagicLink, error) {
	var ml model.MagicLink
	var consumedAt sql.NullTime

	err := scanner.Scan(
		&ml.ID, &ml.Email, &ml.TokenHash, &ml.ExpiresAt,
		&consumedAt, &ml.Attempts, &ml.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if consumedAt.Valid {
		ml.ConsumedAt = &consumedAt.Time
	}
	return &ml, nil
}

const magicLinkCols = `id, email, token_hash, expires_at, consumed_at, attempts, created_at`

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HashToken returns the hex SHA-256 digest of a raw token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Create issues a new magic link for the email and returns the record plus
// the raw token. Only the token hash is persisted. Returns ErrInvalidEmail
// for malformed addresses and ErrRateLimited when an unconsumed, unexpired
// link was issued for the same email within the last 30 seconds.
func (s *MagicLinkStore) Create(email string) (*model.MagicLink, string, error) {
	email = NormalizeEmail(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return nil, "", ErrInvalidEmail
	}

	var recent int
	err = s.db.QueryRow(
		`SELECT COUNT(*) FROM magic_links
		 WHERE email = ? AND consumed_at IS NULL AND expires_at > datetime('now')
		   AND created_at > datetime('now', '-30 seconds')`,
		email,
	).Scan(&recent)
	if err != nil {
		return nil, "", fmt.Errorf("check reissue window: %w", err)
	}
	if recent > 0 {
		return nil, "", ErrRateLimited
	}

	raw := make([]byte, tokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}
	token := hex.EncodeToString(raw)
	expiresAt := time.Now().UTC().Add(linkTTL)

	result, err := s.db.Exec(
		`INSERT INTO magic_links (email, token_hash, expires_at) VALUES (?, ?, ?)`,
		email, HashToken(token), sqlTime(expiresAt),
	)
	if err != nil {
		return nil, "", fmt.Errorf("insert magic link: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, "", fmt.Errorf("last insert id: %w", err)
	}
	row := s.db.QueryRow(`SELECT `+magicLinkCols+` FROM magic_links WHERE id = ?`, id)
	ml, err := scanMagicLink(row)
	if err != nil {
		return nil, "", fmt.Errorf("read magic link: %w", err)
	}
	return ml, token, nil
}

// GetByTokenHash returns the record for a token hash regardless of its
// state, or nil when no record exists.
func (s *MagicLinkStore) GetByTokenHash(hash string) (*model.MagicLink, error) {
	row := s.db.QueryRow(`SELECT `+magicLinkCols+` FROM magic_links WHERE token_hash = ?`, hash)
	ml, err := scanMagicLink(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get magic link by hash: %w", err)
	}
	return ml, nil
}

// IncrementAttempts bumps the failed-verification counter for a record.
func (s *MagicLinkStore) IncrementAttempts(id int64) error {
	_, err := s.db.Exec(`UPDATE magic_links SET attempts = attempts + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("increment attempts: %w", err)
	}
	return nil
}

// Verify checks a raw token against the supplied email and, on success,
// consumes the token and resolves (or lazily creates) the user, returning
// the user ID. Consumption and user resolution run in one transaction: a
// guarded UPDATE on consumed_at ensures that of two concurrent attempts
// with the same token, exactly one succeeds. Every failure is ErrInvalidLink.
func (s *MagicLinkStore) Verify(token, email string) (int64, error) {
	email = NormalizeEmail(email)

	ml, err := s.GetByTokenHash(HashToken(token))
	if err != nil {
		return 0, err
	}
	if ml == nil {
		return 0, ErrInvalidLink
	}
	if ml.Email != email || ml.ConsumedAt != nil || time.Now().UTC().After(ml.ExpiresAt) {
		if err := s.IncrementAttempts(ml.ID); err != nil {
			return 0, err
		}
		return 0, ErrInvalidLink
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin verify tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`UPDATE magic_links SET consumed_at = datetime('now') WHERE id = ? AND consumed_at IS NULL`,
		ml.ID,
	)
	if err != nil {
		return 0, fmt.Errorf("consume magic link: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		// Lost the race to a concurrent verification.
		return 0, ErrInvalidLink
	}

	var userID int64
	err = tx.QueryRow(`SELECT id FROM users WHERE email = ?`, ml.Email).Scan(&userID)
	if err == sql.ErrNoRows {
		res, err := tx.Exec(`INSERT INTO users (email) VALUES (?)`, ml.Email)
		if err != nil {
			return 0, fmt.Errorf("create user: %w", err)
		}
		userID, err = res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("last insert id: %w", err)
		}
	} else if err != nil {
		return 0, fmt.Errorf("find user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit verify tx: %w", err)
	}
	return userID, nil
}
