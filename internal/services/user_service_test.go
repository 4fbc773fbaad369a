package services

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestUserService(t *testing.T) (*UserService, *captureMailer) {
	t.Helper()

	db := newTestDB(t)
	mailer := &captureMailer{}
	svc := NewUserService(db, newTestTokenManager(), mailer, "http://localhost:3000/reset-password", 15*time.Minute)
	return svc, mailer
}

func TestCreateAndAuthenticateUser(t *testing.T) {
	t.Parallel()

	svc, _ := newTestUserService(t)

	created, err := svc.CreateUser("Alice", "alice@example.com", "hunter2", 21, "female")
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Empty(t, created.PasswordHash)

	user, err := svc.AuthenticateUser("alice@example.com", "hunter2")
	require.NoError(t, err)
	require.Equal(t, created.ID, user.ID)
	require.Equal(t, "Alice", user.Name)
	require.Empty(t, user.PasswordHash)
}

// Unknown email and wrong password must be indistinguishable.
func TestAuthenticateUser_InvalidCredentials(t *testing.T) {
	t.Parallel()

	svc, _ := newTestUserService(t)
	_, err := svc.CreateUser("Alice", "alice@example.com", "hunter2", 21, "female")
	require.NoError(t, err)

	_, err = svc.AuthenticateUser("alice@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.AuthenticateUser("nobody@example.com", "hunter2")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	t.Parallel()

	svc, _ := newTestUserService(t)
	_, err := svc.CreateUser("Alice", "alice@example.com", "hunter2", 21, "female")
	require.NoError(t, err)

	_, err = svc.CreateUser("Impostor", "alice@example.com", "other", 30, "male")
	require.ErrorIs(t, err, ErrDuplicateEmail)

	var count int
	require.NoError(t, svc.db.QueryRow("SELECT COUNT(1) FROM users").Scan(&count))
	require.Equal(t, 1, count)
}

func TestPasswordReset_Flow(t *testing.T) {
	t.Parallel()

	svc, mailer := newTestUserService(t)
	_, err := svc.CreateUser("Alice", "alice@example.com", "hunter2", 21, "female")
	require.NoError(t, err)

	require.NoError(t, svc.RequestPasswordReset(context.Background(), "alice@example.com"))
	require.Len(t, mailer.links, 1)

	token := tokenFromLink(t, mailer.links[0])
	require.NoError(t, svc.ResetPassword(context.Background(), token, "correct horse"))

	_, err = svc.AuthenticateUser("alice@example.com", "hunter2")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.AuthenticateUser("alice@example.com", "correct horse")
	require.NoError(t, err)

	// A reset token is accepted exactly once.
	err = svc.ResetPassword(context.Background(), token, "again")
	require.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestRequestPasswordReset_UnknownEmail(t *testing.T) {
	t.Parallel()

	svc, mailer := newTestUserService(t)

	// Fails softly: no error, nothing delivered.
	require.NoError(t, svc.RequestPasswordReset(context.Background(), "ghost@example.com"))
	require.Empty(t, mailer.links)
}

func TestResetPassword_ExpiredRow(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	mailer := &captureMailer{}
	// The JWT outlives the backing row, so the lazy row check decides.
	svc := NewUserService(db, newTestTokenManager(), mailer, "http://localhost:3000/reset-password", -1*time.Minute)

	_, err := svc.CreateUser("Alice", "alice@example.com", "hunter2", 21, "female")
	require.NoError(t, err)
	require.NoError(t, svc.RequestPasswordReset(context.Background(), "alice@example.com"))
	require.Len(t, mailer.links, 1)

	err = svc.ResetPassword(context.Background(), tokenFromLink(t, mailer.links[0]), "newpass")
	require.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestResetPassword_GarbageToken(t *testing.T) {
	t.Parallel()

	svc, _ := newTestUserService(t)
	err := svc.ResetPassword(context.Background(), "not-a-token", "newpass")
	require.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestPurgeExpiredResets(t *testing.T) {
	t.Parallel()

	svc, _ := newTestUserService(t)
	now := time.Now().UTC()

	_, err := svc.db.Exec("INSERT INTO password_resets(id, email, expires_at, consumed_at, created_at) VALUES('consumed', 'a@x', ?, ?, ?)",
		now.Add(time.Hour), now, now)
	require.NoError(t, err)
	_, err = svc.db.Exec("INSERT INTO password_resets(id, email, expires_at, created_at) VALUES('expired', 'b@x', ?, ?)",
		now.Add(-time.Hour), now)
	require.NoError(t, err)
	_, err = svc.db.Exec("INSERT INTO password_resets(id, email, expires_at, created_at) VALUES('live', 'c@x', ?, ?)",
		now.Add(time.Hour), now)
	require.NoError(t, err)

	purged, err := svc.PurgeExpiredResets(now)
	require.NoError(t, err)
	require.EqualValues(t, 2, purged)

	var remaining string
	require.NoError(t, svc.db.QueryRow("SELECT id FROM password_resets").Scan(&remaining))
	require.Equal(t, "live", remaining)
}

func tokenFromLink(t *testing.T, link string) string {
	t.Helper()

	u, err := url.Parse(link)
	require.NoError(t, err)
	token := u.Query().Get("token")
	require.NotEmpty(t, token)
	return token
}
