package mapper

import (
	"strings"

	"github.com/WallySa7/alrawi/internal/frontmatter"
	"github.com/WallySa7/alrawi/internal/models"
)

// NotesHeading is the body section holding a book's free-text notes.
const NotesHeading = "## Notes"

// DecodeBook builds a Book from a document's frontmatter and body. ok is
// false when the "type" discriminator is not "book".
func DecodeBook(path string, fm *frontmatter.Map, body string, d Defaults) (*models.Book, bool) {
	if getString(fm, "type") != models.TypeBook {
		return nil, false
	}
	b := &models.Book{
		Path:           path,
		Title:          getString(fm, "title"),
		Author:         getStringDefault(fm, "author", d.Author),
		ISBN:           getString(fm, "isbn"),
		Pages:          getInt(fm, "pages"),
		PagesRead:      getInt(fm, "pagesRead"),
		Publisher:      getString(fm, "publisher"),
		PublishYear:    getString(fm, "publishYear"),
		StartDate:      getString(fm, "startDate"),
		CompletionDate: getString(fm, "completionDate"),
		Language:       getStringDefault(fm, "language", d.Language),
		Rating:         getInt(fm, "rating"),
		Status:         getStringDefault(fm, "status", d.BookStatus),
		DateAdded:      getString(fm, "dateAdded"),
		Categories:     getStringList(fm, "categories"),
		Tags:           getStringList(fm, "tags"),
		CoverURL:       getString(fm, "coverUrl"),
		Notes:          extractNotes(body),
	}
	if b.PagesRead > b.Pages {
		b.PagesRead = b.Pages
	}
	if b.Rating < 0 {
		b.Rating = 0
	}
	if b.Rating > 5 {
		b.Rating = 5
	}
	return b, true
}

// EncodeBook renders the frontmatter pairs and body for a book document.
func EncodeBook(b *models.Book) ([]frontmatter.Pair, string) {
	pairs := []frontmatter.Pair{
		{Key: "type", Value: models.TypeBook},
		{Key: "title", Value: b.Title},
		{Key: "author", Value: b.Author},
	}
	pairs = appendNonEmpty(pairs, "isbn", b.ISBN)
	pairs = append(pairs,
		frontmatter.Pair{Key: "pages", Value: b.Pages},
		frontmatter.Pair{Key: "pagesRead", Value: b.PagesRead},
	)
	pairs = appendNonEmpty(pairs, "publisher", b.Publisher)
	pairs = appendNonEmpty(pairs, "publishYear", b.PublishYear)
	pairs = appendNonEmpty(pairs, "startDate", b.StartDate)
	pairs = appendNonEmpty(pairs, "completionDate", b.CompletionDate)
	pairs = append(pairs,
		frontmatter.Pair{Key: "language", Value: b.Language},
		frontmatter.Pair{Key: "rating", Value: b.Rating},
		frontmatter.Pair{Key: "status", Value: b.Status},
		frontmatter.Pair{Key: "dateAdded", Value: b.DateAdded},
		frontmatter.Pair{Key: "categories", Value: emptyList(b.Categories)},
		frontmatter.Pair{Key: "tags", Value: emptyList(b.Tags)},
	)
	pairs = appendNonEmpty(pairs, "coverUrl", b.CoverURL)

	body := "# " + b.Title + "\n"
	if b.Notes != "" {
		body += "\n" + NotesHeading + "\n\n" + strings.TrimRight(b.Notes, "\n") + "\n"
	}
	return pairs, body
}

// ReconcileBook enforces the pagesRead/pages/status coupling. It is the
// single home of that logic: every write path touching progress or status
// (progress update, status update, bulk status change) must funnel through
// SetBookProgress/SetBookStatus, which both end here.
//
//   - PagesRead is clamped to [0, Pages].
//   - PagesRead == Pages (> 0) forces status "completed" and stamps
//     CompletionDate when absent.
//   - Dropping below a known Pages count after "completed" reverts to
//     "reading"; an explicit "completed" on a book with unknown page count
//     sticks.
//   - A book in "reading" without a StartDate gets one.
func ReconcileBook(b *models.Book, today string) {
	if b.Pages < 0 {
		b.Pages = 0
	}
	if b.PagesRead < 0 {
		b.PagesRead = 0
	}
	if b.PagesRead > b.Pages {
		b.PagesRead = b.Pages
	}

	finished := b.Pages > 0 && b.PagesRead == b.Pages
	switch {
	case finished:
		b.Status = models.StatusCompleted
	case b.Pages > 0 && b.Status == models.StatusCompleted:
		// The revert applies only when progress actually dropped below a
		// known page count. A book with unknown pages keeps an explicit
		// completed status.
		b.Status = models.StatusReading
	}
	if b.Status == models.StatusCompleted && b.CompletionDate == "" {
		b.CompletionDate = today
	}
	if b.Status == models.StatusReading && b.StartDate == "" {
		b.StartDate = today
	}
}

// SetBookProgress updates reading progress and reconciles derived state.
func SetBookProgress(b *models.Book, pagesRead int, today string) {
	b.PagesRead = pagesRead
	ReconcileBook(b, today)
}

// SetBookStatus updates the status and reconciles derived state. Setting
// "completed" pulls PagesRead up to Pages; the invariant that a fully-read
// book is "completed" always wins over the requested value.
func SetBookStatus(b *models.Book, status, today string) {
	b.Status = status
	if status == models.StatusCompleted {
		b.PagesRead = b.Pages
	}
	ReconcileBook(b, today)
}

// extractNotes returns the text under the notes heading, up to the next
// "## " section or end of document.
func extractNotes(body string) string {
	// Anchor the heading to a line start so "### Notes" never matches.
	marker := NotesHeading + "\n"
	idx := 0
	if !strings.HasPrefix(body, marker) {
		j := strings.Index(body, "\n"+marker)
		if j < 0 {
			return ""
		}
		idx = j + 1
	}
	rest := body[idx+len(marker):]
	if end := strings.Index(rest, "\n## "); end >= 0 {
		rest = rest[:end]
	}
	return strings.Trim(rest, "\n")
}
