package tasks

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func newTestService(repo Repository) *Service {
	return NewService(repo, slog.New(slog.NewJSONHandler(io.Discard, nil)))
}

func TestService_CreateValidTitleLengths(t *testing.T) {
	svc := newTestService(NewInMemoryRepo())
	ctx := context.Background()

	for _, n := range []int{1, 2, 60, MaxTitleLen} {
		title := strings.Repeat("é", n)
		id, err := svc.Create(ctx, TaskInput{Title: title})
		if err != nil {
			t.Fatalf("create len=%d: %v", n, err)
		}
		got, err := svc.Get(ctx, id)
		if err != nil {
			t.Fatalf("get len=%d: %v", n, err)
		}
		if got.Title != title || got.IsCompleted {
			t.Fatalf("len=%d: unexpected task %+v", n, got)
		}
	}
}

func TestService_CreateRejectsInvalidTitle(t *testing.T) {
	repo := NewInMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	for _, title := range []string{"", strings.Repeat("a", MaxTitleLen+1)} {
		_, err := svc.Create(ctx, TaskInput{Title: title})
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("title %q: expected ErrValidation, got %v", title, err)
		}
	}
	list, _ := svc.List(ctx)
	if len(list) != 0 {
		t.Fatalf("expected no tasks stored, got %d", len(list))
	}
}

func TestService_UpdateAndNotFound(t *testing.T) {
	svc := newTestService(NewInMemoryRepo())
	ctx := context.Background()

	if err := svc.Update(ctx, 42, TaskInput{Title: "ghost"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	var nf *NotFoundError
	if _, err := svc.Get(ctx, 42); !errors.As(err, &nf) || nf.ID != 42 {
		t.Fatalf("expected NotFoundError for 42, got %v", err)
	}

	id, _ := svc.Create(ctx, TaskInput{Title: "real", IsCompleted: true})
	if err := svc.Update(ctx, id, TaskInput{Title: ""}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if err := svc.Update(ctx, id, TaskInput{Title: "renamed"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := svc.Get(ctx, id)
	if got.Title != "renamed" || got.IsCompleted {
		t.Fatalf("update must replace both fields, got %+v", got)
	}
}

func TestService_DeleteIsIdempotent(t *testing.T) {
	svc := newTestService(NewInMemoryRepo())
	ctx := context.Background()

	id, _ := svc.Create(ctx, TaskInput{Title: "temp"})
	for i := 0; i < 2; i++ {
		if err := svc.Delete(ctx, id); err != nil {
			t.Fatalf("delete #%d: %v", i+1, err)
		}
	}
	if err := svc.Delete(ctx, 12345); err != nil {
		t.Fatalf("delete unknown id: %v", err)
	}
}

func TestService_BulkCreateAllOrNothing(t *testing.T) {
	svc := newTestService(NewInMemoryRepo())
	ctx := context.Background()

	_, err := svc.BulkCreate(ctx, []TaskInput{
		{Title: "a"}, {Title: "b"}, {Title: "c"}, {Title: ""},
	})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Field != "tasks/3/title" {
		t.Errorf("expected field tasks/3/title, got %q", ve.Field)
	}
	list, _ := svc.List(ctx)
	if len(list) != 0 {
		t.Fatalf("expected zero tasks persisted, got %d", len(list))
	}

	ids, err := svc.BulkCreate(ctx, []TaskInput{{Title: "x"}, {Title: "y", IsCompleted: true}})
	if err != nil {
		t.Fatalf("bulk create: %v", err)
	}
	if len(ids) != 2 || ids[0] >= ids[1] {
		t.Fatalf("expected ids in input order, got %v", ids)
	}
}

func TestService_BulkDeleteIgnoresUnknown(t *testing.T) {
	svc := newTestService(NewInMemoryRepo())
	ctx := context.Background()

	keep, _ := svc.Create(ctx, TaskInput{Title: "keep"})
	drop, _ := svc.Create(ctx, TaskInput{Title: "drop"})

	if err := svc.BulkDelete(ctx, []int64{drop, 777}); err != nil {
		t.Fatalf("bulk delete: %v", err)
	}
	if err := svc.BulkDelete(ctx, []int64{drop, 777}); err != nil {
		t.Fatalf("repeat bulk delete: %v", err)
	}
	list, _ := svc.List(ctx)
	if len(list) != 1 || list[0].ID != keep {
		t.Fatalf("unexpected remaining tasks: %+v", list)
	}
}
