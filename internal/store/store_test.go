package store

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestAutoMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)

	for _, table := range []string{"app_snapshots", "study_events"} {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Fatalf("query sqlite_master for %s: %v", table, err)
		}
		if name != table {
			t.Errorf("table name = %q, want %q", name, table)
		}
	}
}

func TestSessionRepoLoadEmpty(t *testing.T) {
	repo := openTestStore(t).SessionRepo()

	data, ok, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ok || data != nil {
		t.Errorf("Load on empty store = (%q, %v), want absent", data, ok)
	}
}

func TestSessionRepoSaveReplaces(t *testing.T) {
	s := openTestStore(t)
	repo := s.SessionRepo()
	ctx := context.Background()

	if err := repo.Save(ctx, []byte(`{"activeMode":"learn"}`)); err != nil {
		t.Fatalf("save 1: %v", err)
	}
	if err := repo.Save(ctx, []byte(`{"activeMode":"exam"}`)); err != nil {
		t.Fatalf("save 2: %v", err)
	}

	data, ok, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !ok {
		t.Fatal("expected a stored snapshot")
	}
	if string(data) != `{"activeMode":"exam"}` {
		t.Errorf("data = %s, want the second save", data)
	}

	var count int
	if err := s.DB().QueryRow("SELECT COUNT(*) FROM app_snapshots").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("rows = %d, want 1", count)
	}
}

func TestSessionRepoClear(t *testing.T) {
	repo := openTestStore(t).SessionRepo()
	ctx := context.Background()

	if err := repo.Clear(ctx); err != nil {
		t.Fatalf("clear on empty store: %v", err)
	}
	if err := repo.Save(ctx, []byte(`{}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := repo.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok, _ := repo.Load(ctx); ok {
		t.Error("snapshot still present after Clear")
	}
}

func TestSessionRepoKeysAreIndependent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	a := NewSessionRepo(s.drv, "a")
	b := NewSessionRepo(s.drv, "b")

	if err := a.Save(ctx, []byte(`"A"`)); err != nil {
		t.Fatalf("save a: %v", err)
	}
	if _, ok, _ := b.Load(ctx); ok {
		t.Error("key b should be empty")
	}
	if err := b.Clear(ctx); err != nil {
		t.Fatalf("clear b: %v", err)
	}
	if _, ok, _ := a.Load(ctx); !ok {
		t.Error("clearing b removed a")
	}
}

func TestSessionRepoUpdatedAt(t *testing.T) {
	s := openTestStore(t)
	repo := s.SessionRepo()
	fixed := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	repo.now = func() time.Time { return fixed }
	ctx := context.Background()

	if _, ok, err := repo.UpdatedAt(ctx); err != nil || ok {
		t.Fatalf("UpdatedAt on empty = (%v, %v)", ok, err)
	}
	if err := repo.Save(ctx, []byte(`{}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok, err := repo.UpdatedAt(ctx)
	if err != nil || !ok {
		t.Fatalf("UpdatedAt = (%v, %v)", ok, err)
	}
	if !got.Equal(fixed) {
		t.Errorf("updated_at = %v, want %v", got, fixed)
	}
}

func TestEventRepoAppendAndRecent(t *testing.T) {
	repo := openTestStore(t).EventRepo()
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 3; i++ {
		err := repo.Append(ctx, StudyEvent{
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Mode:      "learn",
			Action:    ActionSubmitted,
			Page:      i + 1,
			Known:     i,
			Unknown:   1,
			Mistakes:  []string{fmt.Sprintf("w%d", i)},
		})
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	events, err := repo.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len = %d, want 2", len(events))
	}
	if events[0].Page != 3 || events[1].Page != 2 {
		t.Errorf("pages = %d,%d, want newest first 3,2", events[0].Page, events[1].Page)
	}
	if len(events[0].Mistakes) != 1 || events[0].Mistakes[0] != "w2" {
		t.Errorf("mistakes = %v, want [w2]", events[0].Mistakes)
	}

	if err := repo.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	events, err = repo.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("recent after clear: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("len after clear = %d, want 0", len(events))
	}
}

func TestEventRepoNilMistakes(t *testing.T) {
	repo := openTestStore(t).EventRepo()
	ctx := context.Background()

	if err := repo.Append(ctx, StudyEvent{Mode: "exam", Action: ActionCompleted, Known: 3}); err != nil {
		t.Fatalf("append: %v", err)
	}
	events, err := repo.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(events) != 1 || events[0].Mistakes == nil || len(events[0].Mistakes) != 0 {
		t.Errorf("events = %+v, want one event with empty mistakes", events)
	}
}

func TestOpenFileDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "wordiz.db")
	if err := EnsureDir(path); err != nil {
		t.Fatalf("ensure dir: %v", err)
	}
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	var mode string
	if err := s.DB().QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}
}

func TestDefaultDBPathEnv(t *testing.T) {
	want := filepath.Join(t.TempDir(), "x", "custom.db")
	t.Setenv("WORDIZ_DB_PATH", want)

	got, err := DefaultDBPath()
	if err != nil {
		t.Fatalf("DefaultDBPath: %v", err)
	}
	if got != want {
		t.Errorf("path = %q, want %q", got, want)
	}
}

func TestDefaultDBPathXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("WORDIZ_DB_PATH", "")
	t.Setenv("XDG_DATA_HOME", dir)

	got, err := DefaultDBPath()
	if err != nil {
		t.Fatalf("DefaultDBPath: %v", err)
	}
	if want := filepath.Join(dir, "wordiz", "wordiz.db"); got != want {
		t.Errorf("path = %q, want %q", got, want)
	}
}
