package projects

import (
	"context"
	"errors"
	"testing"
)

func TestCreateAndGet(t *testing.T) {
	svc := &Service{Repo: NewMemoryRepo()}
	ctx := context.Background()

	project, err := svc.Create(ctx, "user-1", "Moby-Dick", "Herman Melville", "the whale one")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if project.ID == "" {
		t.Fatal("project id not assigned")
	}

	got, err := svc.Get(ctx, "user-1", project.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Moby-Dick" || got.Author != "Herman Melville" {
		t.Fatalf("got = %+v", got)
	}
}

func TestCreateRequiresTitle(t *testing.T) {
	svc := &Service{Repo: NewMemoryRepo()}

	if _, err := svc.Create(context.Background(), "user-1", "", "", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestGetForeignProjectForbidden(t *testing.T) {
	svc := &Service{Repo: NewMemoryRepo()}
	ctx := context.Background()

	project, err := svc.Create(ctx, "user-1", "Moby-Dick", "", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Get(ctx, "user-2", project.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestListOnlyOwnProjects(t *testing.T) {
	svc := &Service{Repo: NewMemoryRepo()}
	ctx := context.Background()

	if _, err := svc.Create(ctx, "user-1", "Mine", "", ""); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, "user-2", "Theirs", "", ""); err != nil {
		t.Fatalf("create: %v", err)
	}

	listed, err := svc.List(ctx, "user-1", 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 1 || listed[0].Title != "Mine" {
		t.Fatalf("listed = %+v", listed)
	}
}
