package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"practicelog/internal/blobstore"
	"practicelog/internal/core"
	"practicelog/internal/log"
)

// seqIDs hands out predictable ids for assertions.
type seqIDs struct{ n int }

func (g *seqIDs) NewID() string {
	g.n++
	return fmt.Sprintf("id-%03d", g.n)
}

func newTestStore() (*Store, *blobstore.Memory) {
	mem := blobstore.NewMemory()
	logger := log.New(slog.LevelError, log.ComponentStore)
	return New(mem, &seqIDs{}, logger), mem
}

func persistedState(t *testing.T, mem *blobstore.Memory) core.State {
	t.Helper()
	blob, ok, err := mem.Get(context.Background(), StateKey)
	if err != nil || !ok {
		t.Fatalf("expected persisted blob, got ok=%v err=%v", ok, err)
	}
	var s core.State
	if err := json.Unmarshal([]byte(blob), &s); err != nil {
		t.Fatalf("unmarshal persisted blob: %v", err)
	}
	return s
}

func TestAddEntry(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore()

	e, err := s.AddEntry(ctx, "2025-11-24", core.Vocal, "  Scales  ", 30, " felt good ")
	if err != nil {
		t.Fatalf("AddEntry: %v", err)
	}
	if e.ID == "" || e.Category != core.Vocal || e.Title != "Scales" || e.Minutes != 30 || e.Notes != "felt good" {
		t.Errorf("unexpected entry: %+v", e)
	}

	bucket := s.EntriesOn("2025-11-24")
	if len(bucket) != 1 || bucket[0].ID != e.ID {
		t.Fatalf("bucket = %+v", bucket)
	}

	// Write-through: the mutation is on disk before AddEntry returns.
	got := persistedState(t, mem)
	if len(got.EntriesByDate["2025-11-24"]) != 1 {
		t.Errorf("persisted bucket missing: %+v", got.EntriesByDate)
	}
}

func TestAddEntryUniqueIDs(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()

	seen := map[string]struct{}{}
	for i := 0; i < 50; i++ {
		e, err := s.AddEntry(ctx, "2025-11-24", core.Band, "jam", 5, "")
		if err != nil {
			t.Fatalf("AddEntry %d: %v", i, err)
		}
		if _, dup := seen[e.ID]; dup {
			t.Fatalf("duplicate id %s", e.ID)
		}
		seen[e.ID] = struct{}{}
	}
}

func TestAddEntryValidation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		date    string
		minutes int
		wantErr error
	}{
		{"zero minutes", "2025-11-24", 0, core.ErrInvalidMinutes},
		{"negative minutes", "2025-11-24", -10, core.ErrInvalidMinutes},
		{"bad date", "not-a-date", 30, core.ErrInvalidDate},
		{"empty date", "", 30, core.ErrInvalidDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mem := newTestStore()
			_, err := s.AddEntry(ctx, tt.date, core.Vocal, "x", tt.minutes, "")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			// Rejected input must not mutate or persist anything. The only
			// blob ever written is the template seeding from construction,
			// which these stores never trigger (no Load).
			if len(s.Dates()) != 0 {
				t.Error("state mutated by rejected entry")
			}
			if mem.Len() != 0 {
				t.Error("rejected entry reached persistence")
			}
		})
	}
}

func TestAddEntryBlankTitlePlaceholder(t *testing.T) {
	s, _ := newTestStore()
	e, err := s.AddEntry(context.Background(), "2025-11-24", core.Other, "   ", 10, "")
	if err != nil {
		t.Fatalf("AddEntry: %v", err)
	}
	if e.Title != "(untitled)" {
		t.Errorf("Title = %q, want placeholder", e.Title)
	}
}

func TestDeleteEntry(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore()

	a, _ := s.AddEntry(ctx, "2025-11-24", core.Vocal, "a", 10, "")
	b, _ := s.AddEntry(ctx, "2025-11-24", core.Band, "b", 20, "")

	if !s.DeleteEntry(ctx, "2025-11-24", a.ID) {
		t.Fatal("expected first delete to remove the entry")
	}
	if s.DeleteEntry(ctx, "2025-11-24", a.ID) {
		t.Error("second delete of same id should be a no-op")
	}
	if got := s.EntriesOn("2025-11-24"); len(got) != 1 || got[0].ID != b.ID {
		t.Fatalf("bucket after delete = %+v", got)
	}

	// Removing the last entry drops the date key, in memory and on disk.
	if !s.DeleteEntry(ctx, "2025-11-24", b.ID) {
		t.Fatal("expected last delete to remove the entry")
	}
	if got := s.Dates(); len(got) != 0 {
		t.Errorf("empty bucket left behind: %v", got)
	}
	if persisted := persistedState(t, mem); len(persisted.EntriesByDate) != 0 {
		t.Errorf("empty bucket persisted: %+v", persisted.EntriesByDate)
	}
}

func TestDeleteEntryUnknownDate(t *testing.T) {
	s, _ := newTestStore()
	if s.DeleteEntry(context.Background(), "2025-01-01", "nope") {
		t.Error("delete on unknown date should be a no-op")
	}
}

func TestApplyTemplate(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()

	tpl, err := s.AddTemplate(ctx, "Vocal day", "Warm-up\nChest voice\nFull song")
	if err != nil {
		t.Fatalf("AddTemplate: %v", err)
	}

	created := s.ApplyTemplate(ctx, tpl.ID, "2025-11-24")
	if len(created) != 3 {
		t.Fatalf("created %d entries, want 3", len(created))
	}
	for i, e := range created {
		if e.Minutes != 0 || e.Category != core.Other || e.Notes != "" || e.FromTemplateID != tpl.ID {
			t.Errorf("entry %d not materialized per contract: %+v", i, e)
		}
	}
	if created[0].Title != "Warm-up" || created[2].Title != "Full song" {
		t.Errorf("item order not preserved: %+v", created)
	}
	if got := s.EntriesOn("2025-11-24"); len(got) != 3 {
		t.Errorf("bucket has %d entries, want 3", len(got))
	}
}

func TestApplyTemplateNoop(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()
	tpl, _ := s.AddTemplate(ctx, "t", "one line")

	if got := s.ApplyTemplate(ctx, "missing-id", "2025-11-24"); got != nil {
		t.Errorf("unknown template produced entries: %+v", got)
	}
	if got := s.ApplyTemplate(ctx, tpl.ID, "bad date"); got != nil {
		t.Errorf("bad date produced entries: %+v", got)
	}
	if got := s.Dates(); len(got) != 0 {
		t.Errorf("no-op apply mutated state: %v", got)
	}
}

func TestAddTemplateValidation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		tplName string
		lines   string
		wantErr error
	}{
		{"blank name", "   ", "item", core.ErrEmptyName},
		{"no lines", "ok", "", core.ErrNoItems},
		{"only blank lines", "ok", "  \n\n\t\n", core.ErrNoItems},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestStore()
			_, err := s.AddTemplate(ctx, tt.tplName, tt.lines)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if len(s.Templates()) != 0 {
				t.Error("rejected template was stored")
			}
		})
	}
}

func TestAddTemplateFiltersBlankLines(t *testing.T) {
	s, _ := newTestStore()
	tpl, err := s.AddTemplate(context.Background(), "Mixed", "  first \n\n second\n   \n")
	if err != nil {
		t.Fatalf("AddTemplate: %v", err)
	}
	if len(tpl.Items) != 2 || tpl.Items[0].Name != "first" || tpl.Items[1].Name != "second" {
		t.Errorf("items = %+v", tpl.Items)
	}
}

func TestDeleteTemplate(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()
	tpl, _ := s.AddTemplate(ctx, "t", "x")

	if !s.DeleteTemplate(ctx, tpl.ID) {
		t.Fatal("expected delete to remove template")
	}
	if s.DeleteTemplate(ctx, tpl.ID) {
		t.Error("deleting missing template should be a no-op")
	}
}

func TestUpdateSettings(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore()

	enabled := true
	at := "21:30"
	got := s.UpdateSettings(ctx, SettingsPatch{ReminderEnabled: &enabled, ReminderTime: &at})
	if !got.ReminderEnabled || got.ReminderTime != "21:30" || got.LastReminderDate != "" {
		t.Fatalf("settings = %+v", got)
	}

	// Partial patch leaves other fields alone.
	last := "2025-11-24"
	got = s.UpdateSettings(ctx, SettingsPatch{LastReminderDate: &last})
	if !got.ReminderEnabled || got.ReminderTime != "21:30" || got.LastReminderDate != last {
		t.Fatalf("settings after partial patch = %+v", got)
	}

	if persisted := persistedState(t, mem); persisted.Settings != got {
		t.Errorf("persisted settings %+v != %+v", persisted.Settings, got)
	}
}

func TestLoadSeedsDefaultTemplates(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore()

	s.Load(ctx)

	tpls := s.Templates()
	if len(tpls) != 3 {
		t.Fatalf("seeded %d templates, want 3", len(tpls))
	}
	names := map[string]bool{}
	for _, tpl := range tpls {
		names[tpl.Name] = true
		if len(tpl.Items) == 0 {
			t.Errorf("template %q has no items", tpl.Name)
		}
	}
	for _, want := range []string{"Vocal day", "Songwriting day", "Production day"} {
		if !names[want] {
			t.Errorf("missing default template %q", want)
		}
	}

	// Seeding is itself persisted.
	if persisted := persistedState(t, mem); len(persisted.Templates) != 3 {
		t.Errorf("seeded templates not saved: %d", len(persisted.Templates))
	}
}

func TestLoadExistingBlob(t *testing.T) {
	ctx := context.Background()
	mem := blobstore.NewMemory()
	blob := `{
		"entriesByDate": {"2025-11-24": [{"id":"e1","category":"vocal","title":"Scales","minutes":30,"notes":""}]},
		"templates": [{"id":"t1","name":"Mine","items":[{"name":"one"}]}],
		"settings": {"reminderEnabled":true,"reminderTime":"08:00","lastReminderDate":"2025-11-23"}
	}`
	if err := mem.Set(ctx, StateKey, blob); err != nil {
		t.Fatalf("seed blob: %v", err)
	}

	s := New(mem, &seqIDs{}, log.New(slog.LevelError, "test"))
	s.Load(ctx)

	if got := s.EntriesOn("2025-11-24"); len(got) != 1 || got[0].Title != "Scales" {
		t.Errorf("entries = %+v", got)
	}
	if tpls := s.Templates(); len(tpls) != 1 || tpls[0].Name != "Mine" {
		t.Errorf("stored templates replaced by seeds: %+v", tpls)
	}
	if set := s.Settings(); !set.ReminderEnabled || set.ReminderTime != "08:00" || set.LastReminderDate != "2025-11-23" {
		t.Errorf("settings = %+v", set)
	}
}

func TestLoadShallowMerge(t *testing.T) {
	ctx := context.Background()
	mem := blobstore.NewMemory()
	// settings present but partial: the whole object replaces the skeleton
	// value, so lastReminderDate comes back empty rather than deep-merged.
	blob := `{"settings": {"reminderEnabled": true}}`
	if err := mem.Set(ctx, StateKey, blob); err != nil {
		t.Fatalf("seed blob: %v", err)
	}

	s := New(mem, &seqIDs{}, log.New(slog.LevelError, "test"))
	s.Load(ctx)

	set := s.Settings()
	if !set.ReminderEnabled {
		t.Error("reminderEnabled lost in merge")
	}
	if set.ReminderTime != "" || set.LastReminderDate != "" {
		t.Errorf("expected zero values for absent nested keys, got %+v", set)
	}
	// Absent top-level key keeps the skeleton default.
	if got := s.Dates(); len(got) != 0 {
		t.Errorf("entriesByDate should stay empty, got %v", got)
	}
}

func TestLoadCorruptBlobFallsBack(t *testing.T) {
	ctx := context.Background()
	mem := blobstore.NewMemory()
	if err := mem.Set(ctx, StateKey, "{not json"); err != nil {
		t.Fatalf("seed blob: %v", err)
	}

	s := New(mem, &seqIDs{}, log.New(slog.LevelError, "test"))
	s.Load(ctx)

	if got := s.Dates(); len(got) != 0 {
		t.Errorf("expected empty skeleton, got dates %v", got)
	}
	if tpls := s.Templates(); len(tpls) != 3 {
		t.Errorf("expected default templates after fallback, got %d", len(tpls))
	}
}

func TestLoadGetErrorFallsBack(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore()
	mem.FailGets(errors.New("backend down"))

	s.Load(ctx)

	if tpls := s.Templates(); len(tpls) != 3 {
		t.Errorf("expected seeded skeleton, got %d templates", len(tpls))
	}
}

func TestSaveFailureKeepsMemoryAuthoritative(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore()
	mem.FailSets(errors.New("disk full"))

	e, err := s.AddEntry(ctx, "2025-11-24", core.Vocal, "x", 30, "")
	if err != nil {
		t.Fatalf("AddEntry must not surface save failures: %v", err)
	}
	if got := s.EntriesOn("2025-11-24"); len(got) != 1 || got[0].ID != e.ID {
		t.Errorf("in-memory state lost after save failure: %+v", got)
	}

	// Once persistence heals, the next mutation writes the full state.
	mem.FailSets(nil)
	if _, err := s.AddEntry(ctx, "2025-11-24", core.Band, "y", 10, ""); err != nil {
		t.Fatalf("AddEntry: %v", err)
	}
	if persisted := persistedState(t, mem); len(persisted.EntriesByDate["2025-11-24"]) != 2 {
		t.Errorf("full state not persisted after recovery: %+v", persisted.EntriesByDate)
	}
}

func TestUnknownCategoryPreservedInStorage(t *testing.T) {
	ctx := context.Background()
	mem := blobstore.NewMemory()
	blob := `{"entriesByDate": {"2025-11-24": [{"id":"e1","category":"kazoo","title":"x","minutes":5,"notes":""}]},
		"templates": [{"id":"t1","name":"keep","items":[{"name":"a"}]}]}`
	if err := mem.Set(ctx, StateKey, blob); err != nil {
		t.Fatalf("seed blob: %v", err)
	}

	s := New(mem, &seqIDs{}, log.New(slog.LevelError, "test"))
	s.Load(ctx)

	// In storage and reads the raw category survives.
	if got := s.EntriesOn("2025-11-24"); got[0].Category != core.Category("kazoo") {
		t.Errorf("raw category rewritten: %+v", got[0])
	}
	// Aggregation folds it into other.
	stats := s.MonthlyStats("2025-11")
	if stats.CategoryTotals[core.Other] != 5 {
		t.Errorf("unknown category not folded: %+v", stats.CategoryTotals)
	}

	// A later mutation re-serializes it untouched.
	if _, err := s.AddEntry(ctx, "2025-11-25", core.Vocal, "y", 10, ""); err != nil {
		t.Fatalf("AddEntry: %v", err)
	}
	persisted := persistedState(t, mem)
	if persisted.EntriesByDate["2025-11-24"][0].Category != core.Category("kazoo") {
		t.Errorf("raw category lost on save: %+v", persisted.EntriesByDate["2025-11-24"])
	}
}
