package exercise_test

import (
	"context"
	"testing"

	"github.com/ironcycle/ironcycle/internal/errors"
	"github.com/ironcycle/ironcycle/internal/exercise"
	"github.com/ironcycle/ironcycle/internal/sqlite"
	"github.com/ironcycle/ironcycle/internal/testhelpers"
)

func newTestService(t *testing.T) (context.Context, *exercise.Service) {
	t.Helper()
	ctx := t.Context()
	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))

	db, err := sqlite.NewDatabase(ctx, ":memory:", logger)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if closeErr := db.Close(); closeErr != nil {
			t.Errorf("Failed to close database: %v", closeErr)
		}
	})
	return ctx, exercise.NewService(db, logger)
}

func Test_List_SeedsBuiltins(t *testing.T) {
	t.Parallel()
	ctx, svc := newTestService(t)

	exercises, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(exercises) == 0 {
		t.Fatal("catalog is empty, want seeded builtins")
	}

	var foundDips bool
	for _, e := range exercises {
		if e.Name == "Dips" {
			foundDips = true
			if !e.Builtin {
				t.Error("Dips not marked builtin")
			}
		}
	}
	if !foundDips {
		t.Error("Dips missing from seeded catalog")
	}
}

func Test_Create_And_Get(t *testing.T) {
	t.Parallel()
	ctx, svc := newTestService(t)

	created, err := svc.Create(ctx, exercise.CreateRequest{
		Name:        "Face Pull",
		Category:    "pull",
		Description: "Cable pull to face height",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.Builtin {
		t.Error("user-created exercise marked builtin")
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Name != "Face Pull" || got.Category != "pull" {
		t.Errorf("Get = %+v, want Face Pull/pull", got)
	}
}

func Test_Create_Validation(t *testing.T) {
	t.Parallel()
	ctx, svc := newTestService(t)

	if _, err := svc.Create(ctx, exercise.CreateRequest{Category: "pull"}); !errors.Is(err, exercise.ErrValidation) {
		t.Errorf("missing name error = %v, want ErrValidation", err)
	}
	if _, err := svc.Create(ctx, exercise.CreateRequest{Name: "Shrug"}); !errors.Is(err, exercise.ErrValidation) {
		t.Errorf("missing category error = %v, want ErrValidation", err)
	}
	// Builtins occupy their names too.
	if _, err := svc.Create(ctx, exercise.CreateRequest{Name: "Dips", Category: "push"}); !errors.Is(err, exercise.ErrConflict) {
		t.Errorf("duplicate name error = %v, want ErrConflict", err)
	}
}

func Test_Get_NotFound(t *testing.T) {
	t.Parallel()
	ctx, svc := newTestService(t)

	if _, err := svc.Get(ctx, "nope"); !errors.Is(err, exercise.ErrNotFound) {
		t.Errorf("Get error = %v, want ErrNotFound", err)
	}
}
