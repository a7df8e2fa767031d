package notes_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/starford/lumina/internal/apperr"
	"github.com/starford/lumina/internal/kv"
	"github.com/starford/lumina/internal/models"
	"github.com/starford/lumina/internal/notes"
	"github.com/starford/lumina/internal/storage"
	"github.com/starford/lumina/internal/testutil"
)

func ptr[T any](v T) *T { return &v }

// seeded returns a store holding exactly the given notes, none active.
func seeded(t *testing.T, in ...models.Note) (*notes.Store, *kv.Memory) {
	t.Helper()
	mem := kv.NewMemory()
	if err := storage.NewKV(mem).Save(in); err != nil {
		t.Fatal(err)
	}
	s := notes.New(storage.NewKV(mem), notes.WithLogger(testutil.Logger()))
	if err := s.Initialize(); err != nil {
		t.Fatal(err)
	}
	return s, mem
}

func ids(ns []models.Note) []string {
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = n.ID
	}
	return out
}

func TestInitialize_EmptyStorageSeedsWelcome(t *testing.T) {
	s, mem := testutil.TestStore(t)
	all := s.All()
	if len(all) != 1 {
		t.Fatalf("len = %d, want 1", len(all))
	}
	n := all[0]
	if n.ID != notes.WelcomeID || n.Title != "Welcome to Lumina Notes ✨" {
		t.Errorf("seed = %+v", n)
	}
	if len(n.Tags) != 1 || n.Tags[0] != "welcome" {
		t.Errorf("tags = %v", n.Tags)
	}
	active, ok := s.Active()
	if !ok || active.ID != n.ID {
		t.Errorf("active = %+v, %v", active, ok)
	}
	if _, ok, _ := mem.Get(storage.NotesKey); !ok {
		t.Error("seed note should be persisted")
	}
}

func TestInitialize_CorruptStorageStartsEmpty(t *testing.T) {
	mem := kv.NewMemory()
	_ = mem.Set(storage.NotesKey, "not-json")
	s := notes.New(storage.NewKV(mem), notes.WithLogger(testutil.Logger()))
	if err := s.Initialize(); err != nil {
		t.Fatalf("corrupt data must not fail Initialize: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("len = %d, want 0", s.Len())
	}
	if _, ok := s.Active(); ok {
		t.Error("no note should be active")
	}
}

func TestInitialize_LoadsStoredAndActivatesFirst(t *testing.T) {
	s, _ := seeded(t,
		models.Note{ID: "x", UpdatedAt: 1, Tags: []string{}},
		models.Note{ID: "y", UpdatedAt: 9, Tags: []string{}},
	)
	if s.ActiveID() != "x" {
		t.Errorf("active = %q, want x", s.ActiveID())
	}
}

func TestCreate_InsertsFrontAndActivates(t *testing.T) {
	clock := testutil.NewClock(1000)
	s, mem := testutil.TestStore(t, notes.WithClock(clock.Now))
	writes := mem.Writes()

	n := s.Create()
	if n.Title != "" || n.Content != "" || len(n.Tags) != 0 {
		t.Errorf("new note not empty: %+v", n)
	}
	if n.UpdatedAt == 0 {
		t.Error("UpdatedAt not stamped")
	}
	if s.All()[0].ID != n.ID {
		t.Error("new note should be first in the collection")
	}
	if s.ActiveID() != n.ID {
		t.Error("new note should be active")
	}
	if mem.Writes() != writes+1 {
		t.Errorf("writes = %d, want %d", mem.Writes(), writes+1)
	}
}

func TestCreate_RegeneratesCollidingID(t *testing.T) {
	seq := []string{notes.WelcomeID, "fresh"}
	i := 0
	gen := func() string { id := seq[i]; i++; return id }
	s, _ := testutil.TestStore(t, notes.WithIDGenerator(gen))
	n := s.Create()
	if n.ID != "fresh" {
		t.Errorf("id = %q, want fresh", n.ID)
	}
}

func TestIDsStayUnique(t *testing.T) {
	s, _ := testutil.TestStore(t)
	for i := 0; i < 50; i++ {
		n := s.Create()
		if i%3 == 0 {
			_ = s.Update(n.ID, models.Patch{Title: ptr(fmt.Sprintf("n%d", i))})
		}
		if i%7 == 0 {
			_, _ = s.Delete(n.ID, notes.Always)
		}
	}
	seen := map[string]bool{}
	for _, n := range s.All() {
		if seen[n.ID] {
			t.Fatalf("duplicate id %q", n.ID)
		}
		seen[n.ID] = true
	}
}

func TestUpdate_MergesWithoutStamping(t *testing.T) {
	s, _ := seeded(t, models.Note{ID: "a", Title: "old", Content: "keep", UpdatedAt: 5, Tags: []string{}})
	if err := s.Update("a", models.Patch{Title: ptr("new")}); err != nil {
		t.Fatal(err)
	}
	got, _ := s.Get("a")
	if got.Title != "new" || got.Content != "keep" || got.UpdatedAt != 5 {
		t.Errorf("got %+v", got)
	}
	if err := s.Update("a", models.Patch{UpdatedAt: ptr(int64(77))}); err != nil {
		t.Fatal(err)
	}
	got, _ = s.Get("a")
	if got.UpdatedAt != 77 {
		t.Errorf("UpdatedAt = %d, want 77", got.UpdatedAt)
	}
}

func TestUpdate_UnknownIDLeavesOthers(t *testing.T) {
	s, mem := seeded(t, models.Note{ID: "a", Title: "A", UpdatedAt: 1, Tags: []string{}})
	writes := mem.Writes()
	err := s.Update("missing", models.Patch{Title: ptr("x")})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	got, _ := s.Get("a")
	if got.Title != "A" {
		t.Errorf("other note changed: %+v", got)
	}
	if mem.Writes() != writes {
		t.Error("failed update should not save")
	}
}

func TestApplyResult_AppendsWithSeparator(t *testing.T) {
	clock := testutil.NewClock(500)
	s, _ := testutil.TestStore(t, notes.WithClock(clock.Now))
	n := s.Create()
	_ = s.Update(n.ID, models.Patch{Content: ptr("draft")})
	clock.Set(9000)
	if err := s.ApplyResult(n.ID, "summary"); err != nil {
		t.Fatal(err)
	}
	got, _ := s.Get(n.ID)
	if got.Content != "draft\n\n---\nsummary" {
		t.Errorf("content = %q", got.Content)
	}
	if got.UpdatedAt != 9000 {
		t.Errorf("UpdatedAt = %d, want 9000", got.UpdatedAt)
	}
}

func TestDelete_DeclinedIsNoop(t *testing.T) {
	s, mem := seeded(t, models.Note{ID: "a", UpdatedAt: 1, Tags: []string{}})
	writes := mem.Writes()
	var asked string
	deleted, err := s.Delete("a", notes.ConfirmFunc(func(p string) bool { asked = p; return false }))
	if err != nil || deleted {
		t.Fatalf("Delete = (%v, %v), want (false, nil)", deleted, err)
	}
	if asked != notes.DeletePrompt {
		t.Errorf("prompt = %q", asked)
	}
	if s.Len() != 1 || mem.Writes() != writes {
		t.Error("declined delete must not change or save anything")
	}
}

func TestDelete_ActiveFallsBackToMostRecent(t *testing.T) {
	s, _ := seeded(t,
		models.Note{ID: "a", UpdatedAt: 5, Tags: []string{}},
		models.Note{ID: "b", UpdatedAt: 1, Tags: []string{}},
		models.Note{ID: "c", UpdatedAt: 9, Tags: []string{}},
	)
	s.Select("a")
	if ok, err := s.Delete("a", notes.Always); !ok || err != nil {
		t.Fatalf("Delete = (%v, %v)", ok, err)
	}
	if s.ActiveID() != "c" {
		t.Errorf("active = %q, want c", s.ActiveID())
	}
}

func TestDelete_InactiveKeepsSelection(t *testing.T) {
	s, _ := seeded(t,
		models.Note{ID: "a", UpdatedAt: 5, Tags: []string{}},
		models.Note{ID: "b", UpdatedAt: 1, Tags: []string{}},
	)
	s.Select("b")
	_, _ = s.Delete("a", notes.Always)
	if s.ActiveID() != "b" {
		t.Errorf("active = %q, want b", s.ActiveID())
	}
}

func TestDelete_LastNoteClearsActiveAndSaves(t *testing.T) {
	s, mem := testutil.TestStore(t)
	if ok, _ := s.Delete(notes.WelcomeID, notes.Always); !ok {
		t.Fatal("delete failed")
	}
	if _, ok := s.Active(); ok || s.ActiveID() != "" {
		t.Error("no note should be active")
	}
	raw, _, _ := mem.Get(storage.NotesKey)
	if raw != "[]" {
		t.Errorf("stored = %q, want []", raw)
	}
}

func TestDelete_UnknownIDDoesNotPrompt(t *testing.T) {
	s, _ := testutil.TestStore(t)
	asked := false
	_, err := s.Delete("ghost", notes.ConfirmFunc(func(string) bool { asked = true; return true }))
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if asked {
		t.Error("should not prompt for a missing note")
	}
}

func TestSelect_NonexistentResolvesToNone(t *testing.T) {
	s, mem := testutil.TestStore(t)
	writes := mem.Writes()
	s.Select("nope")
	if s.ActiveID() != "nope" {
		t.Errorf("ActiveID = %q", s.ActiveID())
	}
	if _, ok := s.Active(); ok {
		t.Error("nonexistent id must resolve to no active note")
	}
	if mem.Writes() != writes {
		t.Error("selection must not persist")
	}
}

func TestFilter_SortsByRecencyRegardlessOfInsertion(t *testing.T) {
	s, _ := seeded(t,
		models.Note{ID: "five", UpdatedAt: 5, Tags: []string{}},
		models.Note{ID: "one", UpdatedAt: 1, Tags: []string{}},
		models.Note{ID: "nine", UpdatedAt: 9, Tags: []string{}},
	)
	got := ids(s.Filter(""))
	want := []string{"nine", "five", "one"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("Filter(\"\") = %v, want %v", got, want)
	}
	if fmt.Sprint(ids(s.All())) != "[five one nine]" {
		t.Errorf("stored order changed: %v", ids(s.All()))
	}
}

func TestFilter_CaseInsensitiveTitleOrContent(t *testing.T) {
	s, _ := seeded(t,
		models.Note{ID: "p", Title: "Plan", Content: "quarterly Roadmap", UpdatedAt: 2, Tags: []string{}},
		models.Note{ID: "o", Title: "Other", Content: "nothing here", UpdatedAt: 1, Tags: []string{}},
	)
	tests := []struct {
		query string
		want  string
	}{
		{"plan", "[p]"},
		{"PLAN", "[p]"},
		{"roadmap", "[p]"},
		{"here", "[o]"},
		{"zzz", "[]"},
	}
	for _, tt := range tests {
		if got := fmt.Sprint(ids(s.Filter(tt.query))); got != tt.want {
			t.Errorf("Filter(%q) = %s, want %s", tt.query, got, tt.want)
		}
	}
}

func TestScenario_CreateUpdateFilter(t *testing.T) {
	s, _ := testutil.TestStore(t)
	n := s.Create()
	_ = s.Update(n.ID, models.Patch{Title: ptr("T")})
	found := false
	for _, m := range s.Filter("t") {
		if m.ID == n.ID {
			found = true
		}
	}
	if !found {
		t.Error("Filter(\"t\") should include the updated note")
	}
}

func TestScenario_TwoNotesNewestFirst(t *testing.T) {
	s, _ := seeded(t,
		models.Note{ID: "A", UpdatedAt: 100, Tags: []string{}},
		models.Note{ID: "B", UpdatedAt: 200, Tags: []string{}},
	)
	if got := fmt.Sprint(ids(s.Filter(""))); got != "[B A]" {
		t.Errorf("Filter(\"\") = %s, want [B A]", got)
	}
}

func TestChangeHookFires(t *testing.T) {
	var events []string
	s, _ := testutil.TestStore(t, notes.WithChangeHook(func(kind, id string) {
		events = append(events, kind)
	}))
	n := s.Create()
	_ = s.Update(n.ID, models.Patch{Title: ptr("x")})
	_, _ = s.Delete(n.ID, notes.Always)
	if fmt.Sprint(events) != "[created updated deleted]" {
		t.Errorf("events = %v", events)
	}
}

func TestReturnedNotesAreCopies(t *testing.T) {
	s, _ := seeded(t, models.Note{ID: "a", UpdatedAt: 1, Tags: []string{"t"}})
	got, _ := s.Get("a")
	got.Tags[0] = "changed"
	again, _ := s.Get("a")
	if again.Tags[0] != "t" {
		t.Error("caller mutation leaked into the store")
	}
}
