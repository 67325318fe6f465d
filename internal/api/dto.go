package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/WallySa7/alrawi/internal/models"
	"github.com/WallySa7/alrawi/internal/query"
)

// querySpec builds a query.Spec from list-endpoint query parameters.
// Multi-valued filters take comma-separated lists.
func querySpec(r *http.Request) query.Spec {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("pageSize"))
	return query.Spec{
		Statuses:    commaList(q.Get("status")),
		Creators:    commaList(q.Get("creator")),
		Types:       commaList(q.Get("type")),
		Categories:  commaList(q.Get("category")),
		Tags:        commaList(q.Get("tag")),
		SourceTypes: commaList(q.Get("sourceType")),
		Search:      q.Get("q"),
		From:        q.Get("from"),
		To:          q.Get("to"),
		SortBy:      q.Get("sortBy"),
		SortDesc:    q.Get("sortDesc") == "true",
		Page:        page,
		PageSize:    pageSize,
	}
}

func commaList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// VideoListResponse wraps a paginated video/playlist listing.
type VideoListResponse struct {
	Videos         []*models.Video    `json:"videos"`
	Playlists      []*models.Playlist `json:"playlists"`
	TotalVideos    int                `json:"totalVideos"`
	TotalPlaylists int                `json:"totalPlaylists"`
	Page           int                `json:"page"`
	Pages          int                `json:"pages"`
}

// BookListResponse wraps a paginated book listing.
type BookListResponse struct {
	Books []*models.Book `json:"books"`
	Total int            `json:"total"`
	Page  int            `json:"page"`
	Pages int            `json:"pages"`
}

// BenefitListResponse wraps a paginated benefit listing.
type BenefitListResponse struct {
	Benefits []*models.Benefit `json:"benefits"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	Pages    int               `json:"pages"`
}

// RecordResponse is the raw document behind a record path.
type RecordResponse struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// SearchResult is a single search hit in the API response.
type SearchResult struct {
	Path    string `json:"path"`
	Kind    string `json:"kind"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

// statusRequest changes the status of a record (video, playlist, or book).
type statusRequest struct {
	Path   string `json:"path"`
	Status string `json:"status"`
}

// progressRequest updates reading progress of a book.
type progressRequest struct {
	Path      string `json:"path"`
	PagesRead int    `json:"pagesRead"`
}

// ratingRequest sets a book's star rating.
type ratingRequest struct {
	Path   string `json:"path"`
	Rating int    `json:"rating"`
}

// listRequest merges tags or categories into a record.
type listRequest struct {
	Path   string   `json:"path"`
	Values []string `json:"values"`
}

// removeBenefitRequest identifies a benefit inside its source document.
type removeBenefitRequest struct {
	SourcePath string `json:"sourcePath"`
	ID         string `json:"id"`
}

// CoverUploadResponse is returned after a successful cover upload.
type CoverUploadResponse struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	URL      string `json:"url"`
}
