package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/hitoshi/apibase/internal/model"
)

func newTestSession(id string, ttl time.Duration) *model.Session {
	now := time.Now()
	return &model.Session{
		ID:        id,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
}

func TestMemorySessionRepo_CreateAndFind(t *testing.T) {
	repo := NewMemorySessionRepo()
	ctx := context.Background()

	session := newTestSession("sess-1", time.Hour)
	if err := repo.Create(ctx, session); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	found, err := repo.FindByID(ctx, "sess-1")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if found == nil {
		t.Fatal("expected session, got nil")
	}
	if found.ID != "sess-1" {
		t.Errorf("ID = %q, want %q", found.ID, "sess-1")
	}
	if found.Authenticated() {
		t.Error("new session should be anonymous")
	}
}

func TestMemorySessionRepo_FindByID_NotFound(t *testing.T) {
	repo := NewMemorySessionRepo()

	found, err := repo.FindByID(context.Background(), "no-such-session")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if found != nil {
		t.Errorf("expected nil for unknown session, got %+v", found)
	}
}

func TestMemorySessionRepo_FindByID_Expired(t *testing.T) {
	repo := NewMemorySessionRepo()
	ctx := context.Background()

	session := newTestSession("sess-expired", -time.Minute)
	if err := repo.Create(ctx, session); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	found, err := repo.FindByID(ctx, "sess-expired")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if found != nil {
		t.Errorf("expected nil for expired session, got %+v", found)
	}
}

func TestMemorySessionRepo_SaveProfile(t *testing.T) {
	repo := NewMemorySessionRepo()
	ctx := context.Background()

	session := newTestSession("sess-2", time.Hour)
	if err := repo.Create(ctx, session); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	profile := &model.Profile{
		ID:       "fb-user-123",
		Name:     "Test User",
		Email:    "user@example.com",
		PhotoURL: "https://graph.example.com/photo.jpg",
	}
	if err := repo.SaveProfile(ctx, "sess-2", profile); err != nil {
		t.Fatalf("SaveProfile() error = %v", err)
	}

	found, err := repo.FindByID(ctx, "sess-2")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if !found.Authenticated() {
		t.Fatal("session should be authenticated after SaveProfile")
	}
	if *found.Profile != *profile {
		t.Errorf("Profile = %+v, want %+v", found.Profile, profile)
	}
}

func TestMemorySessionRepo_SaveProfile_OverwritesPrevious(t *testing.T) {
	repo := NewMemorySessionRepo()
	ctx := context.Background()

	session := newTestSession("sess-3", time.Hour)
	if err := repo.Create(ctx, session); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	first := &model.Profile{ID: "fb-1", Name: "First"}
	second := &model.Profile{ID: "fb-2", Name: "Second"}

	if err := repo.SaveProfile(ctx, "sess-3", first); err != nil {
		t.Fatalf("SaveProfile() error = %v", err)
	}
	if err := repo.SaveProfile(ctx, "sess-3", second); err != nil {
		t.Fatalf("SaveProfile() error = %v", err)
	}

	found, _ := repo.FindByID(ctx, "sess-3")
	if found.Profile.ID != "fb-2" {
		t.Errorf("Profile.ID = %q, want last saved %q", found.Profile.ID, "fb-2")
	}
}

func TestMemorySessionRepo_DeleteByID(t *testing.T) {
	repo := NewMemorySessionRepo()
	ctx := context.Background()

	session := newTestSession("sess-4", time.Hour)
	if err := repo.Create(ctx, session); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := repo.DeleteByID(ctx, "sess-4"); err != nil {
		t.Fatalf("DeleteByID() error = %v", err)
	}

	found, _ := repo.FindByID(ctx, "sess-4")
	if found != nil {
		t.Errorf("expected nil after delete, got %+v", found)
	}
}

func TestMemorySessionRepo_ConcurrentAccess(t *testing.T) {
	repo := NewMemorySessionRepo()
	ctx := context.Background()

	session := newTestSession("sess-concurrent", time.Hour)
	if err := repo.Create(ctx, session); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// 同一セッションへの並行読み書きがクラッシュしないこと（last-write-wins）
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = repo.SaveProfile(ctx, "sess-concurrent", &model.Profile{ID: "fb-x", Name: "X"})
		}(i)
		go func() {
			defer wg.Done()
			_, _ = repo.FindByID(ctx, "sess-concurrent")
		}()
	}
	wg.Wait()

	found, err := repo.FindByID(ctx, "sess-concurrent")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if found == nil || !found.Authenticated() {
		t.Error("session should survive concurrent access with last profile written")
	}
}

func TestMemorySessionRepo_FindReturnsCopy(t *testing.T) {
	repo := NewMemorySessionRepo()
	ctx := context.Background()

	session := newTestSession("sess-copy", time.Hour)
	if err := repo.Create(ctx, session); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	found, _ := repo.FindByID(ctx, "sess-copy")
	found.ID = "mutated"

	again, _ := repo.FindByID(ctx, "sess-copy")
	if again == nil || again.ID != "sess-copy" {
		t.Error("mutating a returned session should not affect the store")
	}
}
