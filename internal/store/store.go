// Package store owns the in-memory practice log model and writes every
// mutation through to the persistence port.
package store

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"practicelog/internal/blobstore"
	"practicelog/internal/core"
	"practicelog/internal/id"
	"practicelog/internal/log"
)

// StateKey is the fixed blob key the whole model is stored under. The value
// matches the original localStorage key so existing blobs keep loading.
const StateKey = "musicPracticeTracker_v1"

// untitledPlaceholder replaces a blank entry title.
const untitledPlaceholder = "(untitled)"

// Store is the state store. All methods are safe for concurrent use; the
// reminder scheduler writes settings from its tick goroutine while the
// presentation layer mutates entries.
type Store struct {
	mu    sync.Mutex
	blobs blobstore.Store
	ids   id.Generator
	log   *log.Logger
	state core.State
}

// SettingsPatch shallow-merges into Settings: only non-nil fields are
// applied.
type SettingsPatch struct {
	ReminderEnabled  *bool
	ReminderTime     *string
	LastReminderDate *string
}

func New(blobs blobstore.Store, ids id.Generator, logger *log.Logger) *Store {
	return &Store{
		blobs: blobs,
		ids:   ids,
		log:   logger.WithComponent(log.ComponentStore),
		state: core.NewState(),
	}
}

// Load reads the persisted blob into memory. A missing blob, a read failure
// or a malformed blob all degrade to the empty skeleton; persistence
// problems are logged, never returned. When no templates survive the load,
// the built-in defaults are seeded (and written back).
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = core.NewState()

	raw, ok, err := s.blobs.Get(ctx, StateKey)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to load state, starting empty", log.FieldError, err)
	} else if ok {
		if merged, err := mergeState(core.NewState(), []byte(raw)); err != nil {
			s.log.ErrorContext(ctx, "Failed to parse stored state, starting empty", log.FieldError, err)
		} else {
			s.state = merged
		}
	}

	if len(s.state.Templates) == 0 {
		s.state.Templates = s.defaultTemplates()
		s.save(ctx)
	}

	s.log.InfoContext(ctx, "State loaded",
		"dates", len(s.state.EntriesByDate),
		"templates", len(s.state.Templates),
		"reminder_enabled", s.state.Settings.ReminderEnabled)
}

// mergeState applies the stored blob over the skeleton with the original's
// shallow-merge semantics: a top-level key present in the blob replaces the
// skeleton value wholesale, an absent key keeps the skeleton default.
// Nested objects are not merged field by field.
func mergeState(skeleton core.State, blob []byte) (core.State, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(blob, &top); err != nil {
		return skeleton, err
	}

	out := skeleton
	if raw, ok := top["entriesByDate"]; ok {
		out.EntriesByDate = map[string][]core.Entry{}
		if err := json.Unmarshal(raw, &out.EntriesByDate); err != nil {
			return skeleton, err
		}
		if out.EntriesByDate == nil {
			out.EntriesByDate = map[string][]core.Entry{}
		}
	}
	if raw, ok := top["templates"]; ok {
		out.Templates = nil
		if err := json.Unmarshal(raw, &out.Templates); err != nil {
			return skeleton, err
		}
	}
	if raw, ok := top["settings"]; ok {
		out.Settings = core.Settings{}
		if err := json.Unmarshal(raw, &out.Settings); err != nil {
			return skeleton, err
		}
	}
	return out, nil
}

// AddEntry validates and appends a practice entry to the bucket for date,
// creating the bucket if needed. A blank title gets a placeholder. The new
// entry is returned; the write-through save failure is absorbed.
func (s *Store) AddEntry(ctx context.Context, date string, category core.Category, title string, minutes int, notes string) (core.Entry, error) {
	if !core.IsDateKey(date) {
		return core.Entry{}, core.ErrInvalidDate
	}
	if minutes < 1 {
		return core.Entry{}, core.ErrInvalidMinutes
	}

	title = strings.TrimSpace(title)
	if title == "" {
		title = untitledPlaceholder
	}

	entry := core.Entry{
		ID:       s.ids.NewID(),
		Category: category,
		Title:    title,
		Minutes:  minutes,
		Notes:    strings.TrimSpace(notes),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.EntriesByDate[date] = append(s.state.EntriesByDate[date], entry)
	s.save(ctx)

	s.log.InfoContext(ctx, "Entry added",
		log.FieldEntryID, entry.ID,
		log.FieldDate, date,
		log.FieldCategory, string(entry.Category),
		log.FieldMinutes, entry.Minutes)

	return entry, nil
}

// DeleteEntry removes the entry with entryID from the bucket for date. It
// reports whether anything was removed; an unknown date or id is a silent
// no-op. Deleting the last entry removes the date key entirely.
func (s *Store) DeleteEntry(ctx context.Context, date, entryID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	bucket, ok := s.state.EntriesByDate[date]
	if !ok {
		return false
	}

	for i, e := range bucket {
		if e.ID != entryID {
			continue
		}
		bucket = append(bucket[:i], bucket[i+1:]...)
		if len(bucket) == 0 {
			delete(s.state.EntriesByDate, date)
		} else {
			s.state.EntriesByDate[date] = bucket
		}
		s.save(ctx)
		s.log.InfoContext(ctx, "Entry deleted", log.FieldEntryID, entryID, log.FieldDate, date)
		return true
	}
	return false
}

// ApplyTemplate materializes every item of the template into a fresh entry
// in the bucket for date: zero minutes, category other, notes empty, and
// FromTemplateID pointing back at the template. An unknown template or bad
// date is a no-op returning nil.
func (s *Store) ApplyTemplate(ctx context.Context, templateID, date string) []core.Entry {
	if !core.IsDateKey(date) {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var tpl *core.Template
	for i := range s.state.Templates {
		if s.state.Templates[i].ID == templateID {
			tpl = &s.state.Templates[i]
			break
		}
	}
	// A template with no items (possible only in a hand-edited blob) must
	// not leave an empty bucket behind.
	if tpl == nil || len(tpl.Items) == 0 {
		return nil
	}

	created := make([]core.Entry, 0, len(tpl.Items))
	for _, item := range tpl.Items {
		created = append(created, core.Entry{
			ID:             s.ids.NewID(),
			Category:       core.Other,
			Title:          item.Name,
			Minutes:        0,
			Notes:          "",
			FromTemplateID: tpl.ID,
		})
	}
	s.state.EntriesByDate[date] = append(s.state.EntriesByDate[date], created...)
	s.save(ctx)

	s.log.InfoContext(ctx, "Template applied",
		log.FieldTemplateID, templateID,
		log.FieldDate, date,
		"entries", len(created))

	return created
}

// AddTemplate builds a template from a name and newline-separated item
// lines. The name must be non-blank and at least one line must survive
// trimming.
func (s *Store) AddTemplate(ctx context.Context, name, itemLines string) (core.Template, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.Template{}, core.ErrEmptyName
	}

	var items []core.TemplateItem
	for _, line := range strings.Split(itemLines, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		items = append(items, core.TemplateItem{Name: line})
	}
	if len(items) == 0 {
		return core.Template{}, core.ErrNoItems
	}

	tpl := core.Template{ID: s.ids.NewID(), Name: name, Items: items}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Templates = append(s.state.Templates, tpl)
	s.save(ctx)

	s.log.InfoContext(ctx, "Template added", log.FieldTemplateID, tpl.ID, "items", len(items))
	return tpl, nil
}

// DeleteTemplate removes the template with templateID, reporting whether it
// existed. Entries created from it keep their FromTemplateID.
func (s *Store) DeleteTemplate(ctx context.Context, templateID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, tpl := range s.state.Templates {
		if tpl.ID != templateID {
			continue
		}
		s.state.Templates = append(s.state.Templates[:i], s.state.Templates[i+1:]...)
		s.save(ctx)
		s.log.InfoContext(ctx, "Template deleted", log.FieldTemplateID, templateID)
		return true
	}
	return false
}

// UpdateSettings applies the non-nil fields of patch and returns the
// resulting settings.
func (s *Store) UpdateSettings(ctx context.Context, patch SettingsPatch) core.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	if patch.ReminderEnabled != nil {
		s.state.Settings.ReminderEnabled = *patch.ReminderEnabled
	}
	if patch.ReminderTime != nil {
		s.state.Settings.ReminderTime = *patch.ReminderTime
	}
	if patch.LastReminderDate != nil {
		s.state.Settings.LastReminderDate = *patch.LastReminderDate
	}
	s.save(ctx)

	return s.state.Settings
}

// EntriesOn returns a copy of the bucket for date, nil when the date has no
// entries.
func (s *Store) EntriesOn(date string) []core.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	bucket, ok := s.state.EntriesByDate[date]
	if !ok {
		return nil
	}
	out := make([]core.Entry, len(bucket))
	copy(out, bucket)
	return out
}

// Templates returns a copy of the template list in insertion order.
func (s *Store) Templates() []core.Template {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.Template, len(s.state.Templates))
	copy(out, s.state.Templates)
	return out
}

// Settings returns the current settings.
func (s *Store) Settings() core.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Settings
}

// Dates returns every date key that currently has a bucket.
func (s *Store) Dates() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.state.EntriesByDate))
	for d := range s.state.EntriesByDate {
		out = append(out, d)
	}
	return out
}

// MonthlyStats aggregates the current state for monthKey ("YYYY-MM").
func (s *Store) MonthlyStats(monthKey string) core.MonthlyStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.ComputeMonthlyStats(s.state, monthKey)
}

// save serializes the full state and writes it under StateKey. Failures are
// logged and dropped: the in-memory state stays authoritative for the rest
// of the session. Callers must hold s.mu.
func (s *Store) save(ctx context.Context) {
	blob, err := json.Marshal(s.state)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to serialize state", log.FieldError, err)
		return
	}
	if err := s.blobs.Set(ctx, StateKey, string(blob)); err != nil {
		s.log.ErrorContext(ctx, "Failed to save state", log.FieldError, err, log.FieldKey, StateKey)
	}
}

// defaultTemplates are the three built-in checklists seeded on first run.
func (s *Store) defaultTemplates() []core.Template {
	return []core.Template{
		{
			ID:   s.ids.NewID(),
			Name: "Vocal day",
			Items: []core.TemplateItem{
				{Name: "Warm-up + breathing"},
				{Name: "Chest voice work"},
				{Name: "Mix / head voice work"},
				{Name: "Full run of one song"},
			},
		},
		{
			ID:   s.ids.NewID(),
			Name: "Songwriting day",
			Items: []core.TemplateItem{
				{Name: "Free lyric writing"},
				{Name: "Chord progression sketches"},
				{Name: "Record a demo section"},
			},
		},
		{
			ID:   s.ids.NewID(),
			Name: "Production day",
			Items: []core.TemplateItem{
				{Name: "Sound and patch cleanup"},
				{Name: "Drum programming"},
				{Name: "Rough mix pass"},
			},
		},
	}
}
