// Package storage persists the list of Telegram users allowed to use the bot.
// Predictions and inventory are never stored locally.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// AllowedUser represents a user in the whitelist.
type AllowedUser struct {
	TelegramID int64
	AddedAt    time.Time
	AddedBy    int64
}

// AccessStore defines the whitelist operations the bot needs.
type AccessStore interface {
	IsUserAllowed(telegramID int64) (bool, error)
	AddAllowedUser(telegramID, addedBy int64) error
	RemoveAllowedUser(telegramID int64) error
	GetAllowedUsers() ([]AllowedUser, error)
	Close() error
}

// SQLiteStore implements AccessStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ AccessStore = (*SQLiteStore)(nil)

// NewSQLiteStore opens or creates the database at dbPath. Use ":memory:" in
// tests.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Configure SQLite with WAL mode and busy timeout for better concurrency
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	store := &SQLiteStore{db: db}
	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}

	if dbPath != ":memory:" {
		if err := os.Chmod(dbPath, 0600); err != nil {
			log.Warn().Err(err).Str("path", dbPath).Msg("failed to restrict database permissions")
		}
	}

	return store, nil
}

func (s *SQLiteStore) init() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS allowed_users (
		telegram_id INTEGER PRIMARY KEY,
		added_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		added_by INTEGER
	);
	`)
	if err != nil {
		return fmt.Errorf("failed to create allowed_users table: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// IsUserAllowed checks if a user is in the whitelist.
func (s *SQLiteStore) IsUserAllowed(telegramID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM allowed_users WHERE telegram_id = ?",
		telegramID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check allowed user: %w", err)
	}

	return count > 0, nil
}

// AddAllowedUser adds a user to the whitelist. Adding an existing user
// refreshes who added them and when.
func (s *SQLiteStore) AddAllowedUser(telegramID, addedBy int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO allowed_users (telegram_id, added_by)
		VALUES (?, ?)
		ON CONFLICT(telegram_id) DO UPDATE SET
			added_by = excluded.added_by,
			added_at = CURRENT_TIMESTAMP
	`, telegramID, addedBy)
	if err != nil {
		return fmt.Errorf("failed to add allowed user: %w", err)
	}
	return nil
}

func (s *SQLiteStore) RemoveAllowedUser(telegramID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM allowed_users WHERE telegram_id = ?", telegramID); err != nil {
		return fmt.Errorf("failed to remove allowed user: %w", err)
	}
	return nil
}

// GetAllowedUsers returns the whitelist, oldest first.
func (s *SQLiteStore) GetAllowedUsers() ([]AllowedUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT telegram_id, added_at, added_by FROM allowed_users ORDER BY added_at, telegram_id")
	if err != nil {
		return nil, fmt.Errorf("failed to query allowed users: %w", err)
	}
	defer rows.Close()

	var users []AllowedUser
	for rows.Next() {
		var user AllowedUser
		if err := rows.Scan(&user.TelegramID, &user.AddedAt, &user.AddedBy); err != nil {
			return nil, fmt.Errorf("failed to scan allowed user: %w", err)
		}
		users = append(users, user)
	}

	return users, rows.Err()
}
