// Package exercise manages the accessory exercise catalog that program
// templates reference. Built-in entries are seeded at startup; users add
// their own alongside them.
package exercise

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/ironcycle/ironcycle/internal/errors"
	"github.com/ironcycle/ironcycle/internal/sqlite"
)

var (
	// ErrNotFound signals a missing exercise.
	ErrNotFound = errors.NewSentinel("exercise not found")
	// ErrConflict signals a name collision with an existing exercise.
	ErrConflict = errors.NewSentinel("exercise conflict")
	// ErrValidation signals malformed input rejected before any mutation.
	ErrValidation = errors.NewSentinel("invalid exercise input")
)

// Exercise is one catalog entry.
type Exercise struct {
	ID          string
	Name        string
	Category    string
	Description string
	Builtin     bool
}

// Service exposes the exercise catalog.
type Service struct {
	db     *sqlite.Database
	logger *slog.Logger
}

// NewService creates an exercise service backed by the given database.
func NewService(db *sqlite.Database, logger *slog.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// List retrieves the whole catalog ordered by name.
func (s *Service) List(ctx context.Context) ([]Exercise, error) {
	rows, err := s.db.ReadOnly.QueryContext(ctx, `
		SELECT id, name, category, description, is_builtin
		FROM exercises ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query exercises: %w", err)
	}
	defer rows.Close()

	var exercises []Exercise
	for rows.Next() {
		var e Exercise
		if err = rows.Scan(&e.ID, &e.Name, &e.Category, &e.Description, &e.Builtin); err != nil {
			return nil, fmt.Errorf("scan exercise: %w", err)
		}
		exercises = append(exercises, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exercises: %w", err)
	}
	return exercises, nil
}

// Get retrieves one exercise by id.
func (s *Service) Get(ctx context.Context, id string) (Exercise, error) {
	var e Exercise
	err := s.db.ReadOnly.QueryRowContext(ctx, `
		SELECT id, name, category, description, is_builtin
		FROM exercises WHERE id = ?`, id).
		Scan(&e.ID, &e.Name, &e.Category, &e.Description, &e.Builtin)
	if errors.Is(err, sql.ErrNoRows) {
		return Exercise{}, ErrNotFound
	}
	if err != nil {
		return Exercise{}, fmt.Errorf("query exercise: %w", err)
	}
	return e, nil
}

// CreateRequest is the input for Create.
type CreateRequest struct {
	Name        string
	Category    string
	Description string
}

// Create adds a user-defined exercise to the catalog. Names are unique
// across the whole catalog, built-ins included.
func (s *Service) Create(ctx context.Context, req CreateRequest) (Exercise, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return Exercise{}, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if strings.TrimSpace(req.Category) == "" {
		return Exercise{}, fmt.Errorf("%w: category is required", ErrValidation)
	}

	var existing int
	err := s.db.ReadOnly.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM exercises WHERE name = ?`, name).Scan(&existing)
	if err != nil {
		return Exercise{}, fmt.Errorf("check name: %w", err)
	}
	if existing > 0 {
		return Exercise{}, fmt.Errorf("%w: an exercise named %q already exists", ErrConflict, name)
	}

	e := Exercise{
		ID:          uuid.NewString(),
		Name:        name,
		Category:    req.Category,
		Description: req.Description,
	}
	if _, err = s.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO exercises (id, name, category, description, is_builtin)
		VALUES (?, ?, ?, ?, FALSE)`,
		e.ID, e.Name, e.Category, e.Description); err != nil {
		return Exercise{}, fmt.Errorf("insert exercise: %w", err)
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "exercise created",
		slog.String("exercise_id", e.ID), slog.String("name", e.Name))
	return e, nil
}
