// Package query answers filter, sort, and paginate requests over in-memory
// record collections. Everything here is a pure function over slices so the
// engine is testable without a vault.
//
// Filtering is the conjunction of independently specified field filters;
// each field filter is a disjunction of its selected values. Tag and
// category matching is hierarchical on the "/" separator.
package query

import (
	"strings"
	"time"

	"github.com/WallySa7/alrawi/internal/models"
)

// Spec is a filter/sort/paginate request. Zero-valued fields are inactive.
type Spec struct {
	Statuses    []string
	Creators    []string // presenter (videos) or author (books)
	Types       []string
	Categories  []string
	Tags        []string
	SourceTypes []string // benefits only
	Search      string
	From        string // inclusive lower date bound, YYYY-MM-DD
	To          string // inclusive upper date bound, YYYY-MM-DD
	SortBy      string
	SortDesc    bool
	Page        int
	PageSize    int
}

// FilterVideos returns the subset of videos matching every active field
// filter in s.
func FilterVideos(videos []*models.Video, s Spec) []*models.Video {
	out := []*models.Video{}
	for _, v := range videos {
		if !matchOne(v.Status, s.Statuses) ||
			!matchOne(v.Presenter, s.Creators) ||
			!matchOne(v.Type, s.Types) ||
			!matchHierarchical(v.Categories, s.Categories) ||
			!matchHierarchical(v.Tags, s.Tags) ||
			!inDateRange(v.DateAdded, s.From, s.To) {
			continue
		}
		if s.Search != "" && !matchSearch(s.Search, v.Title, v.Presenter, v.Type,
			strings.Join(v.Tags, " "), strings.Join(v.Categories, " ")) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// FilterPlaylists returns the subset of playlists matching s.
func FilterPlaylists(playlists []*models.Playlist, s Spec) []*models.Playlist {
	out := []*models.Playlist{}
	for _, p := range playlists {
		if !matchOne(p.Status, s.Statuses) ||
			!matchOne(p.Presenter, s.Creators) ||
			!matchHierarchical(p.Categories, s.Categories) ||
			!matchHierarchical(p.Tags, s.Tags) ||
			!inDateRange(p.DateAdded, s.From, s.To) {
			continue
		}
		if s.Search != "" && !matchSearch(s.Search, p.Title, p.Presenter,
			strings.Join(p.Tags, " "), strings.Join(p.Categories, " ")) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// FilterBooks returns the subset of books matching s.
func FilterBooks(books []*models.Book, s Spec) []*models.Book {
	out := []*models.Book{}
	for _, b := range books {
		if !matchOne(b.Status, s.Statuses) ||
			!matchOne(b.Author, s.Creators) ||
			!matchHierarchical(b.Categories, s.Categories) ||
			!matchHierarchical(b.Tags, s.Tags) ||
			!inDateRange(b.DateAdded, s.From, s.To) {
			continue
		}
		if s.Search != "" && !matchSearch(s.Search, b.Title, b.Author,
			strings.Join(b.Tags, " "), strings.Join(b.Categories, " ")) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// FilterBenefits returns the subset of benefits matching s. The scalar
// benefit category participates in the same hierarchical rule as tags.
func FilterBenefits(benefits []*models.Benefit, s Spec) []*models.Benefit {
	out := []*models.Benefit{}
	for _, b := range benefits {
		if !matchOne(b.SourceType, s.SourceTypes) ||
			!matchHierarchical([]string{b.Category}, s.Categories) ||
			!matchHierarchical(b.Tags, s.Tags) ||
			!inDateRange(b.DateAdded, s.From, s.To) {
			continue
		}
		if s.Search != "" && !matchSearch(s.Search, b.Title, b.Text, b.Category,
			b.SourceTitle, strings.Join(b.Tags, " ")) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// matchOne is the plain multi-select disjunction: empty selection matches
// everything.
func matchOne(value string, selected []string) bool {
	if len(selected) == 0 {
		return true
	}
	for _, s := range selected {
		if value == s {
			return true
		}
	}
	return false
}

// matchHierarchical applies the three-way overlap rule between record
// values and selected filter values: T == F, T under F, or F under T.
// An empty selection matches everything; a non-empty selection never
// matches a record with no values.
func matchHierarchical(values, selected []string) bool {
	if len(selected) == 0 {
		return true
	}
	for _, f := range selected {
		for _, t := range values {
			if overlaps(t, f) {
				return true
			}
		}
	}
	return false
}

func overlaps(t, f string) bool {
	return t == f ||
		strings.HasPrefix(t, f+"/") ||
		strings.HasPrefix(f, t+"/")
}

// matchSearch is a case-insensitive substring match against any field.
func matchSearch(q string, fields ...string) bool {
	q = strings.ToLower(q)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// dateLayouts are accepted record date forms, most specific first.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	models.DateFormat,
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// inDateRange checks an inclusive [from start-of-day, to end-of-day] range.
// A record without a comparable date is excluded whenever any bound is set.
func inDateRange(date, from, to string) bool {
	if from == "" && to == "" {
		return true
	}
	d, ok := parseDate(date)
	if !ok {
		return false
	}
	if from != "" {
		if lo, ok := parseDate(from); ok {
			lo = time.Date(lo.Year(), lo.Month(), lo.Day(), 0, 0, 0, 0, lo.Location())
			if d.Before(lo) {
				return false
			}
		}
	}
	if to != "" {
		if hi, ok := parseDate(to); ok {
			hi = time.Date(hi.Year(), hi.Month(), hi.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), hi.Location())
			if d.After(hi) {
				return false
			}
		}
	}
	return true
}
