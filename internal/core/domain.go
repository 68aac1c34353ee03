package core

import (
	"errors"
	"time"
)

const (
	Vocal       Category = "vocal"
	Instrument  Category = "instrument"
	Songwriting Category = "songwriting"
	Production  Category = "production"
	Band        Category = "band"
	Other       Category = "other"
)

type (
	// Category classifies a practice entry. The set is closed; values read
	// from storage that fall outside it are preserved as-is and folded into
	// Other only when aggregating.
	Category string

	// Entry is one recorded practice session. Entries are immutable once
	// created; the only mutation path is deletion.
	Entry struct {
		ID             string   `json:"id"`
		Category       Category `json:"category"`
		Title          string   `json:"title"`
		Minutes        int      `json:"minutes"`
		Notes          string   `json:"notes"`
		FromTemplateID string   `json:"fromTemplateId,omitempty"`
	}

	// TemplateItem is a single checklist label inside a template.
	TemplateItem struct {
		Name string `json:"name"`
	}

	// Template is a named, reusable checklist of practice items.
	Template struct {
		ID    string         `json:"id"`
		Name  string         `json:"name"`
		Items []TemplateItem `json:"items"`
	}

	// Settings holds the reminder configuration. Singleton per process.
	Settings struct {
		ReminderEnabled  bool   `json:"reminderEnabled"`
		ReminderTime     string `json:"reminderTime"`     // "HH:MM" or empty
		LastReminderDate string `json:"lastReminderDate"` // "YYYY-MM-DD" or empty
	}

	// State is the root of the persisted model. Entries are grouped into
	// date buckets keyed "YYYY-MM-DD"; bucket order is insertion order.
	// A bucket never persists empty: deleting its last entry removes the key.
	State struct {
		EntriesByDate map[string][]Entry `json:"entriesByDate"`
		Templates     []Template         `json:"templates"`
		Settings      Settings           `json:"settings"`
	}
)

var (
	ErrInvalidMinutes = errors.New("minutes must be a positive number")
	ErrInvalidDate    = errors.New("invalid date key")
	ErrEmptyName      = errors.New("empty template name")
	ErrNoItems        = errors.New("template needs at least one item")
)

// Categories lists the closed category set in display order.
var Categories = []Category{Vocal, Instrument, Songwriting, Production, Band, Other}

var categoryLabels = map[Category]string{
	Vocal:       "Vocal",
	Instrument:  "Instrument",
	Songwriting: "Songwriting",
	Production:  "Production",
	Band:        "Band rehearsal",
	Other:       "Other",
}

// Known reports whether c belongs to the closed category set.
func (c Category) Known() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Normalize folds unknown categories into Other.
func (c Category) Normalize() Category {
	if c.Known() {
		return c
	}
	return Other
}

// Label returns the display label for c, falling back to the Other label.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return categoryLabels[Other]
}

// NewState returns the empty skeleton every load starts from.
func NewState() State {
	return State{
		EntriesByDate: map[string][]Entry{},
		Templates:     []Template{},
	}
}

const (
	dateKeyLayout   = "2006-01-02"
	monthKeyLayout  = "2006-01"
	timeOfDayLayout = "15:04"
)

// DateKey formats t as a "YYYY-MM-DD" bucket key.
func DateKey(t time.Time) string {
	return t.Format(dateKeyLayout)
}

// MonthKey formats t as a "YYYY-MM" aggregation key.
func MonthKey(t time.Time) string {
	return t.Format(monthKeyLayout)
}

// MinuteKey formats t's wall-clock time as "HH:MM".
func MinuteKey(t time.Time) string {
	return t.Format(timeOfDayLayout)
}

// IsDateKey reports whether s is a well-formed "YYYY-MM-DD" key.
func IsDateKey(s string) bool {
	_, err := time.Parse(dateKeyLayout, s)
	return err == nil
}

// IsMonthKey reports whether s is a well-formed "YYYY-MM" key.
func IsMonthKey(s string) bool {
	_, err := time.Parse(monthKeyLayout, s)
	return err == nil
}

// IsTimeOfDay reports whether s is a well-formed "HH:MM" time.
func IsTimeOfDay(s string) bool {
	_, err := time.Parse(timeOfDayLayout, s)
	return err == nil
}
