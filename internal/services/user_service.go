package services

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ipquest/ipquest-be/internal/auth"
	"github.com/ipquest/ipquest-be/internal/mail"
	"github.com/ipquest/ipquest-be/internal/models"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	GetUserByID(id string) (models.User, error)
	CreateUser(name, email, password string, age int, gender string) (models.User, error)
	AuthenticateUser(email, password string) (models.User, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

// UserService provides business logic for identity lifecycle: registration,
// credential verification and the password-reset flow.
type UserService struct {
	db           *sql.DB
	tokens       *auth.TokenManager
	mailer       mail.Mailer
	resetBaseURL string
	resetTTL     time.Duration
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB, tokens *auth.TokenManager, mailer mail.Mailer, resetBaseURL string, resetTTL time.Duration) *UserService {
	return &UserService{
		db:           db,
		tokens:       tokens,
		mailer:       mailer,
		resetBaseURL: resetBaseURL,
		resetTTL:     resetTTL,
	}
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(id string) (models.User, error) {
	var user models.User
	row := s.db.QueryRow("SELECT id, name, email, age, gender, created_at FROM users WHERE id = ?", id)
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Age, &user.Gender, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// GetUserByEmail retrieves a single user by their email, including the password hash.
func (s *UserService) GetUserByEmail(email string) (models.User, error) {
	var user models.User
	row := s.db.QueryRow("SELECT id, name, email, password_hash, age, gender, created_at FROM users WHERE email = ?", email)
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Age, &user.Gender, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// CreateUser creates a new user, hashing their password. Registration does
// not issue a token; login is a separate step.
func (s *UserService) CreateUser(name, email, password string, age int, gender string) (models.User, error) {
	var exists int
	err := s.db.QueryRow("SELECT COUNT(1) FROM users WHERE email = ?", email).Scan(&exists)
	if err != nil {
		return models.User{}, err
	}
	if exists > 0 {
		return models.User{}, ErrDuplicateEmail
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Age:          age,
		Gender:       gender,
		CreatedAt:    time.Now().UTC(),
	}

	stmt, err := s.db.Prepare("INSERT INTO users(id, name, email, password_hash, age, gender, created_at) VALUES(?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return models.User{}, err
	}
	defer stmt.Close()

	_, err = stmt.Exec(user.ID, user.Name, user.Email, user.PasswordHash, user.Age, user.Gender, user.CreatedAt)
	if err != nil {
		// The UNIQUE constraint is the authority; the pre-check only
		// gives the common case a clean error.
		if strings.Contains(err.Error(), "UNIQUE") {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}

	// Return user without password hash
	user.PasswordHash = ""
	return user, nil
}

// AuthenticateUser verifies a user's credentials. Unknown email and wrong
// password are reported identically so callers cannot enumerate accounts.
func (s *UserService) AuthenticateUser(email, password string) (models.User, error) {
	user, err := s.GetUserByEmail(email)
	if err != nil {
		if err == ErrUserNotFound {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}

	// Don't send the password hash to the client
	user.PasswordHash = ""
	return user, nil
}

// RequestPasswordReset issues a single-use reset token bound to the email
// and hands the reset link to the mail notifier. Unknown emails succeed
// silently; the caller's response must not reveal whether an account exists.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) error {
	if _, err := s.GetUserByEmail(email); err != nil {
		if err == ErrUserNotFound {
			log.Debug().Str("email", email).Msg("Password reset requested for unknown email")
			return nil
		}
		return err
	}

	tokenID := uuid.New().String()
	expiresAt := time.Now().UTC().Add(s.resetTTL)

	_, err := s.db.Exec("INSERT INTO password_resets(id, email, expires_at, created_at) VALUES(?, ?, ?, ?)",
		tokenID, email, expiresAt, time.Now().UTC())
	if err != nil {
		return err
	}

	token, err := s.tokens.GenerateReset(email, tokenID)
	if err != nil {
		return err
	}

	link := s.resetBaseURL + "?token=" + url.QueryEscape(token)
	if err := s.mailer.SendPasswordReset(ctx, email, link); err != nil {
		// Delivery is best-effort; the token stays valid and the user
		// can request another.
		log.Error().Err(err).Str("email", email).Msg("Failed to deliver password reset mail")
	}
	return nil
}

// ResetPassword consumes a reset token and replaces the user's password
// hash. Each token is accepted exactly once; expiry is checked lazily here,
// never by a background job.
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	claims, err := s.tokens.ValidateReset(token)
	if err != nil {
		return ErrInvalidResetToken
	}

	var email string
	var expiresAt time.Time
	var consumedAt sql.NullTime
	row := s.db.QueryRow("SELECT email, expires_at, consumed_at FROM password_resets WHERE id = ?", claims.ID)
	if err := row.Scan(&email, &expiresAt, &consumedAt); err != nil {
		if err == sql.ErrNoRows {
			return ErrInvalidResetToken
		}
		return err
	}
	if consumedAt.Valid || time.Now().After(expiresAt) || email != claims.Email {
		return ErrInvalidResetToken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Consume first; RowsAffected guards against two racing resets with
	// the same token.
	res, err := tx.Exec("UPDATE password_resets SET consumed_at = ? WHERE id = ? AND consumed_at IS NULL",
		time.Now().UTC(), claims.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrInvalidResetToken
	}

	if _, err := tx.Exec("UPDATE users SET password_hash = ? WHERE email = ?", string(hashedPassword), email); err != nil {
		return err
	}

	return tx.Commit()
}

// PurgeExpiredResets deletes consumed and long-expired reset rows. Purely
// housekeeping: token validity is decided at verification time.
func (s *UserService) PurgeExpiredResets(now time.Time) (int64, error) {
	res, err := s.db.Exec("DELETE FROM password_resets WHERE consumed_at IS NOT NULL OR expires_at < ?", now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
