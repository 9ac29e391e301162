// Package auth manages user accounts: registration and login with bcrypt
// password hashes, and the per-user preferences that shape prescriptions
// and missed-workout handling. Session state itself lives in the HTTP
// layer's session manager.
package auth

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ironcycle/ironcycle/internal/errors"
	"github.com/ironcycle/ironcycle/internal/lift"
	"github.com/ironcycle/ironcycle/internal/sqlite"
)

const timestampFormat = "2006-01-02T15:04:05.000Z"

// minPasswordLength guards against trivially weak passwords. bcrypt caps
// input at 72 bytes, enforced below as well.
const minPasswordLength = 8

var (
	// ErrNotFound signals a missing user.
	ErrNotFound = errors.NewSentinel("user not found")
	// ErrEmailTaken signals a registration against an existing email.
	ErrEmailTaken = errors.NewSentinel("email already registered")
	// ErrInvalidCredentials signals a failed login. It deliberately does not
	// distinguish a wrong password from an unknown email.
	ErrInvalidCredentials = errors.NewSentinel("invalid credentials")
	// ErrValidation signals malformed input rejected before any mutation.
	ErrValidation = errors.NewSentinel("invalid account input")
)

// User is one registered account, without credentials.
type User struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	CreatedAt time.Time
}

// Preferences are the per-user knobs read by workout prescriptions and
// missed-workout handling.
type Preferences struct {
	WeightUnit        lift.WeightUnit
	RoundingIncrement float64
	MissedWorkoutPref string
}

// Missed-workout preference values.
const (
	PrefAsk        = "ask"
	PrefSkip       = "skip"
	PrefReschedule = "reschedule"
)

// Service manages accounts and preferences.
type Service struct {
	db     *sqlite.Database
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates an auth service backed by the given database.
func NewService(db *sqlite.Database, logger *slog.Logger) *Service {
	return &Service{db: db, logger: logger, now: time.Now}
}

// RegisterRequest is the input for Register.
type RegisterRequest struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Register creates an account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return User{}, fmt.Errorf("%w: a valid email is required", ErrValidation)
	}
	if len(req.Password) < minPasswordLength {
		return User{}, fmt.Errorf("%w: password must be at least %d characters",
			ErrValidation, minPasswordLength)
	}
	if len(req.Password) > 72 {
		return User{}, fmt.Errorf("%w: password must be at most 72 characters", ErrValidation)
	}

	var existing int
	if err := s.db.ReadOnly.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE email = ?`, email).Scan(&existing); err != nil {
		return User{}, fmt.Errorf("check email: %w", err)
	}
	if existing > 0 {
		return User{}, fmt.Errorf("%w: %s", ErrEmailTaken, email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	user := User{
		ID:        uuid.NewString(),
		Email:     email,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		CreatedAt: s.now().UTC(),
	}
	if _, err = s.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, first_name, last_name, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, string(hash), user.FirstName, user.LastName,
		user.CreatedAt.Format(timestampFormat)); err != nil {
		return User{}, fmt.Errorf("insert user: %w", err)
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "user registered", slog.String("user_id", user.ID))
	return user, nil
}

// Login checks the credentials and returns the account on success.
func (s *Service) Login(ctx context.Context, email, password string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var (
		user      User
		hash      string
		createdAt string
	)
	err := s.db.ReadOnly.QueryRowContext(ctx, `
		SELECT id, email, password_hash, first_name, last_name, created_at
		FROM users WHERE email = ?`, email).
		Scan(&user.ID, &user.Email, &hash, &user.FirstName, &user.LastName, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, fmt.Errorf("query user: %w", err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	if user.CreatedAt, err = time.Parse(timestampFormat, createdAt); err != nil {
		return User{}, fmt.Errorf("parse created at: %w", err)
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "user logged in", slog.String("user_id", user.ID))
	return user, nil
}

// User retrieves an account by id.
func (s *Service) User(ctx context.Context, id string) (User, error) {
	var (
		user      User
		createdAt string
	)
	err := s.db.ReadOnly.QueryRowContext(ctx, `
		SELECT id, email, first_name, last_name, created_at
		FROM users WHERE id = ?`, id).
		Scan(&user.ID, &user.Email, &user.FirstName, &user.LastName, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("query user: %w", err)
	}
	if user.CreatedAt, err = time.Parse(timestampFormat, createdAt); err != nil {
		return User{}, fmt.Errorf("parse created at: %w", err)
	}
	return user, nil
}

// Preferences retrieves a user's preferences.
func (s *Service) Preferences(ctx context.Context, userID string) (Preferences, error) {
	var (
		prefs Preferences
		unit  string
	)
	err := s.db.ReadOnly.QueryRowContext(ctx, `
		SELECT weight_unit, rounding_increment, missed_workout_preference
		FROM users WHERE id = ?`, userID).
		Scan(&unit, &prefs.RoundingIncrement, &prefs.MissedWorkoutPref)
	if errors.Is(err, sql.ErrNoRows) {
		return Preferences{}, ErrNotFound
	}
	if err != nil {
		return Preferences{}, fmt.Errorf("query preferences: %w", err)
	}
	prefs.WeightUnit = lift.WeightUnit(unit)
	return prefs, nil
}

// UpdatePreferences overwrites a user's preferences.
func (s *Service) UpdatePreferences(ctx context.Context, userID string, prefs Preferences) (Preferences, error) {
	if _, err := lift.ParseWeightUnit(string(prefs.WeightUnit)); err != nil {
		return Preferences{}, fmt.Errorf("%w: %s", ErrValidation, err)
	}
	if prefs.RoundingIncrement <= 0 {
		return Preferences{}, fmt.Errorf("%w: rounding increment must be positive", ErrValidation)
	}
	switch prefs.MissedWorkoutPref {
	case PrefAsk, PrefSkip, PrefReschedule:
	default:
		return Preferences{}, fmt.Errorf(
			"%w: missed-workout preference must be ask, skip, or reschedule", ErrValidation)
	}

	result, err := s.db.ReadWrite.ExecContext(ctx, `
		UPDATE users
		SET weight_unit = ?, rounding_increment = ?, missed_workout_preference = ?
		WHERE id = ?`,
		string(prefs.WeightUnit), prefs.RoundingIncrement, prefs.MissedWorkoutPref, userID)
	if err != nil {
		return Preferences{}, fmt.Errorf("update preferences: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return Preferences{}, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return Preferences{}, ErrNotFound
	}
	return prefs, nil
}
