package query

import (
	"sort"
	"time"

	"github.com/WallySa7/alrawi/internal/models"
)

// Sort key names shared across record kinds. An empty or unknown key
// returns the input order unchanged.
const (
	SortTitle     = "title"
	SortCreator   = "creator"
	SortDuration  = "duration"
	SortDateAdded = "dateAdded"
	SortStatus    = "status"
	SortPages     = "pages"
	SortPagesRead = "pagesRead"
	SortRating    = "rating"
	SortCategory  = "category"
)

// SortVideos orders videos by key, toggled by desc. Sorting is stable and
// operates in place on a copy of the slice header's backing order.
func SortVideos(videos []*models.Video, key string, desc bool) {
	less := videoLess(key)
	if less == nil {
		return
	}
	sortSlice(videos, less, desc)
}

// SortPlaylists orders playlists by key.
func SortPlaylists(playlists []*models.Playlist, key string, desc bool) {
	var less func(a, b *models.Playlist) bool
	switch key {
	case SortTitle:
		less = func(a, b *models.Playlist) bool { return a.Title < b.Title }
	case SortCreator:
		less = func(a, b *models.Playlist) bool { return a.Presenter < b.Presenter }
	case SortDuration:
		less = func(a, b *models.Playlist) bool { return a.DurationSeconds < b.DurationSeconds }
	case SortStatus:
		less = func(a, b *models.Playlist) bool { return a.Status < b.Status }
	case SortDateAdded:
		less = func(a, b *models.Playlist) bool { return dateValue(a.DateAdded).Before(dateValue(b.DateAdded)) }
	default:
		return
	}
	sortSlice(playlists, less, desc)
}

// SortBooks orders books by key.
func SortBooks(books []*models.Book, key string, desc bool) {
	var less func(a, b *models.Book) bool
	switch key {
	case SortTitle:
		less = func(a, b *models.Book) bool { return a.Title < b.Title }
	case SortCreator:
		less = func(a, b *models.Book) bool { return a.Author < b.Author }
	case SortPages:
		less = func(a, b *models.Book) bool { return a.Pages < b.Pages }
	case SortPagesRead:
		less = func(a, b *models.Book) bool { return a.PagesRead < b.PagesRead }
	case SortRating:
		less = func(a, b *models.Book) bool { return a.Rating < b.Rating }
	case SortStatus:
		less = func(a, b *models.Book) bool { return a.Status < b.Status }
	case SortDateAdded:
		less = func(a, b *models.Book) bool { return dateValue(a.DateAdded).Before(dateValue(b.DateAdded)) }
	default:
		return
	}
	sortSlice(books, less, desc)
}

// SortBenefits orders benefits by key.
func SortBenefits(benefits []*models.Benefit, key string, desc bool) {
	var less func(a, b *models.Benefit) bool
	switch key {
	case SortTitle:
		less = func(a, b *models.Benefit) bool { return a.Title < b.Title }
	case SortCategory:
		less = func(a, b *models.Benefit) bool { return a.Category < b.Category }
	case SortDateAdded:
		less = func(a, b *models.Benefit) bool { return dateValue(a.DateAdded).Before(dateValue(b.DateAdded)) }
	default:
		return
	}
	sortSlice(benefits, less, desc)
}

func videoLess(key string) func(a, b *models.Video) bool {
	switch key {
	case SortTitle:
		return func(a, b *models.Video) bool { return a.Title < b.Title }
	case SortCreator:
		return func(a, b *models.Video) bool { return a.Presenter < b.Presenter }
	case SortDuration:
		return func(a, b *models.Video) bool { return a.DurationSeconds < b.DurationSeconds }
	case SortStatus:
		return func(a, b *models.Video) bool { return a.Status < b.Status }
	case SortDateAdded:
		return func(a, b *models.Video) bool { return dateValue(a.DateAdded).Before(dateValue(b.DateAdded)) }
	default:
		return nil
	}
}

func sortSlice[T any](items []T, less func(a, b T) bool, desc bool) {
	sort.SliceStable(items, func(i, j int) bool {
		if desc {
			return less(items[j], items[i])
		}
		return less(items[i], items[j])
	})
}

// dateValue parses a record date; missing or unparseable dates sort as the
// zero time (earliest).
func dateValue(s string) time.Time {
	t, ok := parseDate(s)
	if !ok {
		return time.Time{}
	}
	return t
}
