package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ipquest/ipquest-be/internal/auth"
	"github.com/ipquest/ipquest-be/internal/database"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestTokenManager() *auth.TokenManager {
	return auth.NewTokenManager("test-secret", time.Hour, 15*time.Minute)
}

// captureMailer records reset links instead of delivering them.
type captureMailer struct {
	links []string
}

func (m *captureMailer) SendPasswordReset(_ context.Context, _, resetLink string) error {
	m.links = append(m.links, resetLink)
	return nil
}

// insertTestUser writes a user row directly, bypassing password hashing.
func insertTestUser(t *testing.T, db *sql.DB, id, name, email string) {
	t.Helper()

	if id == "" {
		id = uuid.New().String()
	}
	_, err := db.Exec("INSERT INTO users(id, name, email, password_hash, age, gender, created_at) VALUES(?, ?, ?, '', 0, '', ?)",
		id, name, email, time.Now().UTC())
	require.NoError(t, err)
}
