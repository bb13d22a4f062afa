package session

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryRepositoryCreateAndGet(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == "" {
		t.Fatal("Expected created session to have an ID")
	}

	got, err := repo.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("Expected session %s, got %s", created.ID, got.ID)
	}
}

func TestMemoryRepositoryGetUnknown(t *testing.T) {
	repo := NewMemoryRepository()

	_, err := repo.Get(context.Background(), "does-not-exist")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestMemoryRepositorySaveRequiresID(t *testing.T) {
	repo := NewMemoryRepository()

	if err := repo.Save(context.Background(), nil); err == nil {
		t.Error("Expected error saving nil session")
	}
}

func TestMemoryRepositoryDeleteIsIdempotent(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	// Deleting again must not error.
	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Errorf("Expected second delete to be a no-op, got %v", err)
	}

	if _, err := repo.Get(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
}
