package tasks

import (
	"context"
	"errors"
	"testing"

	"todo/internal/service"
	"todo/internal/testutil"
)

func TestAdd_RejectsBlankTitle(t *testing.T) {
	tests := []string{"", "   ", "\t\n"}
	for _, title := range tests {
		fb := testutil.NewFakeBackend()
		repo := NewRepository(fb, nil)

		_, err := repo.Add(context.Background(), nil, title)
		if !errors.Is(err, service.ErrTitleRequired) {
			t.Errorf("Add(%q): expected ErrTitleRequired, got %v", title, err)
		}
		if fb.TotalCalls() != 0 {
			t.Errorf("Add(%q): expected no backend calls, got %d", title, fb.TotalCalls())
		}
	}
}

func TestAdd_ThenListNewestFirst(t *testing.T) {
	fb := testutil.NewFakeBackend()
	fb.AddTask("Older")
	repo := NewRepository(fb, nil)
	ctx := context.Background()

	added, err := repo.Add(ctx, nil, "Buy milk")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	items, err := repo.List(ctx, nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(items))
	}
	if items[0].ID != added.ID || items[0].Title != "Buy milk" {
		t.Errorf("expected Buy milk first, got %+v", items[0])
	}
	if items[0].Completed {
		t.Error("new tasks should not be completed")
	}
}

func TestAdd_StoresTitleAsTyped(t *testing.T) {
	fb := testutil.NewFakeBackend()
	repo := NewRepository(fb, nil)

	task, err := repo.Add(context.Background(), nil, "  padded  ")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if task.Title != "  padded  " {
		t.Errorf("expected title unchanged, got %q", task.Title)
	}
}

func TestList_EmptyIsNonNil(t *testing.T) {
	repo := NewRepository(testutil.NewFakeBackend(), nil)

	items, err := repo.List(context.Background(), nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", items)
	}
}

func TestList_Idempotent(t *testing.T) {
	fb := testutil.NewFakeBackend()
	fb.AddTask("a")
	fb.AddTask("b")
	repo := NewRepository(fb, nil)
	ctx := context.Background()

	first, _ := repo.List(ctx, nil)
	second, _ := repo.List(ctx, nil)
	if len(first) != len(second) {
		t.Fatalf("list lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("item %d differs: %d vs %d", i, first[i].ID, second[i].ID)
		}
	}
}

func TestRemove(t *testing.T) {
	fb := testutil.NewFakeBackend()
	keep := fb.AddTask("keep")
	drop := fb.AddTask("drop")
	repo := NewRepository(fb, nil)
	ctx := context.Background()

	if err := repo.Remove(ctx, nil, drop); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	items, _ := repo.List(ctx, nil)
	if len(items) != 1 || items[0].ID != keep {
		t.Errorf("expected only task %d left, got %+v", keep, items)
	}
}

func TestRemove_UnknownIDSucceeds(t *testing.T) {
	repo := NewRepository(testutil.NewFakeBackend(), nil)
	if err := repo.Remove(context.Background(), nil, 999); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}

func TestCheckConnectivity_TableMissing(t *testing.T) {
	fb := testutil.NewFakeBackend()
	fb.TableMissing = true
	repo := NewRepository(fb, nil)

	err := repo.CheckConnectivity(context.Background(), nil)
	if !service.IsKind(err, service.KindSetup) {
		t.Errorf("expected setup error, got %v", err)
	}
}

func TestRepository_PassesSession(t *testing.T) {
	fb := testutil.NewFakeBackend()
	fb.AddUser("a@b.com", "pw")
	sess, err := fb.SignIn(context.Background(), "a@b.com", "pw")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	repo := NewRepository(fb, nil)

	if _, err := repo.List(context.Background(), sess); err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(fb.Sessions) != 1 || fb.Sessions[0] != sess {
		t.Errorf("expected session to be passed through, got %v", fb.Sessions)
	}
}
