package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/WallySa7/alrawi/internal/apperr"
	"github.com/WallySa7/alrawi/internal/index"
	"github.com/WallySa7/alrawi/internal/models"
	"github.com/WallySa7/alrawi/internal/query"
	"github.com/WallySa7/alrawi/internal/service"
)

const maxBodyBytes = 1 << 20

// Searcher is the slice of the search index the API needs.
type Searcher interface {
	Search(query string, limit int) ([]index.SearchResult, error)
}

// Handler holds API route handlers.
type Handler struct {
	svc *service.Service
	idx Searcher
}

// NewHandler creates a new Handler. idx may be nil; search then responds 503.
func NewHandler(svc *service.Service, idx Searcher) *Handler {
	return &Handler{svc: svc, idx: idx}
}

// recordPath extracts the record path from the URL (everything after the
// route prefix). Supports encoded slashes from API clients
// (e.g. Videos%2Flecture.md).
func recordPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	return true
}

// writeServiceError maps domain errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrNotManaged):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody("not a managed record"))
	case errors.Is(err, apperr.ErrAlreadyExists), errors.Is(err, apperr.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody("conflict"))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// ListVideos handles GET /api/videos: filtered, sorted, paginated videos and
// playlists.
func (h *Handler) ListVideos(w http.ResponseWriter, r *http.Request) {
	spec := querySpec(r)
	col, err := h.svc.Library().Videos()
	if err != nil {
		writeServiceError(w, err, "list videos")
		return
	}
	videos := query.FilterVideos(col.Videos, spec)
	playlists := query.FilterPlaylists(col.Playlists, spec)
	query.SortVideos(videos, spec.SortBy, spec.SortDesc)
	query.SortPlaylists(playlists, spec.SortBy, spec.SortDesc)

	// Page math covers the larger of the two lists so neither is cut short.
	total := len(videos)
	if len(playlists) > total {
		total = len(playlists)
	}
	writeJSON(w, http.StatusOK, VideoListResponse{
		Videos:         query.Paginate(videos, spec.Page, spec.PageSize),
		Playlists:      query.Paginate(playlists, spec.Page, spec.PageSize),
		TotalVideos:    len(videos),
		TotalPlaylists: len(playlists),
		Page:           query.ClampPage(total, spec.Page, spec.PageSize),
		Pages:          query.TotalPages(total, spec.PageSize),
	})
}

// CreateVideo handles POST /api/videos.
func (h *Handler) CreateVideo(w http.ResponseWriter, r *http.Request) {
	var v models.Video
	if !h.decode(w, r, &v) {
		return
	}
	if v.Title == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("title is required"))
		return
	}
	if _, err := h.svc.CreateVideo(r.Context(), &v); err != nil {
		writeServiceError(w, err, "create video")
		return
	}
	writeJSON(w, http.StatusCreated, &v)
}

// CreatePlaylist handles POST /api/playlists.
func (h *Handler) CreatePlaylist(w http.ResponseWriter, r *http.Request) {
	var p models.Playlist
	if !h.decode(w, r, &p) {
		return
	}
	if p.Title == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("title is required"))
		return
	}
	if _, err := h.svc.CreatePlaylist(r.Context(), &p); err != nil {
		writeServiceError(w, err, "create playlist")
		return
	}
	writeJSON(w, http.StatusCreated, &p)
}

// ListBooks handles GET /api/books.
func (h *Handler) ListBooks(w http.ResponseWriter, r *http.Request) {
	spec := querySpec(r)
	col, err := h.svc.Library().Books()
	if err != nil {
		writeServiceError(w, err, "list books")
		return
	}
	books := query.FilterBooks(col.Books, spec)
	query.SortBooks(books, spec.SortBy, spec.SortDesc)

	writeJSON(w, http.StatusOK, BookListResponse{
		Books: query.Paginate(books, spec.Page, spec.PageSize),
		Total: len(books),
		Page:  query.ClampPage(len(books), spec.Page, spec.PageSize),
		Pages: query.TotalPages(len(books), spec.PageSize),
	})
}

// CreateBook handles POST /api/books.
func (h *Handler) CreateBook(w http.ResponseWriter, r *http.Request) {
	var b models.Book
	if !h.decode(w, r, &b) {
		return
	}
	if b.Title == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("title is required"))
		return
	}
	if _, err := h.svc.CreateBook(r.Context(), &b); err != nil {
		writeServiceError(w, err, "create book")
		return
	}
	writeJSON(w, http.StatusCreated, &b)
}

// ListBenefits handles GET /api/benefits.
func (h *Handler) ListBenefits(w http.ResponseWriter, r *http.Request) {
	spec := querySpec(r)
	all, err := h.svc.Library().Benefits()
	if err != nil {
		writeServiceError(w, err, "list benefits")
		return
	}
	benefits := query.FilterBenefits(all, spec)
	query.SortBenefits(benefits, spec.SortBy, spec.SortDesc)

	writeJSON(w, http.StatusOK, BenefitListResponse{
		Benefits: query.Paginate(benefits, spec.Page, spec.PageSize),
		Total:    len(benefits),
		Page:     query.ClampPage(len(benefits), spec.Page, spec.PageSize),
		Pages:    query.TotalPages(len(benefits), spec.PageSize),
	})
}

// UpsertBenefit handles POST /api/benefits: create or replace by ID.
func (h *Handler) UpsertBenefit(w http.ResponseWriter, r *http.Request) {
	var b models.Benefit
	if !h.decode(w, r, &b) {
		return
	}
	if b.SourcePath == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("sourcePath is required"))
		return
	}
	if err := h.svc.UpsertBenefit(r.Context(), &b); err != nil {
		writeServiceError(w, err, "upsert benefit")
		return
	}
	writeJSON(w, http.StatusCreated, &b)
}

// RemoveBenefit handles DELETE /api/benefits.
func (h *Handler) RemoveBenefit(w http.ResponseWriter, r *http.Request) {
	var req removeBenefitRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.SourcePath == "" || req.ID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("sourcePath and id are required"))
		return
	}
	if err := h.svc.RemoveBenefit(r.Context(), req.SourcePath, req.ID); err != nil {
		writeServiceError(w, err, "remove benefit")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetRecord handles GET /api/records/*: the raw document text.
func (h *Handler) GetRecord(w http.ResponseWriter, r *http.Request) {
	path := recordPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	text, err := h.svc.Document(r.Context(), path)
	if err != nil {
		writeServiceError(w, err, "get record")
		return
	}
	writeJSON(w, http.StatusOK, RecordResponse{Path: path, Content: text})
}

// DeleteRecord handles DELETE /api/records/*.
func (h *Handler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	path := recordPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if err := h.svc.Delete(r.Context(), path); err != nil {
		writeServiceError(w, err, "delete record")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateStatus handles PATCH /api/records/status for any record type.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Path == "" || req.Status == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path and status are required"))
		return
	}
	if err := h.svc.UpdateStatus(r.Context(), req.Path, req.Status); err != nil {
		writeServiceError(w, err, "update status")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateProgress handles PATCH /api/books/progress.
func (h *Handler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	var req progressRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if err := h.svc.UpdateBookProgress(r.Context(), req.Path, req.PagesRead); err != nil {
		writeServiceError(w, err, "update progress")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateRating handles PATCH /api/books/rating.
func (h *Handler) UpdateRating(w http.ResponseWriter, r *http.Request) {
	var req ratingRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if err := h.svc.UpdateBookRating(r.Context(), req.Path, req.Rating); err != nil {
		writeServiceError(w, err, "update rating")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddTags handles POST /api/records/tags.
func (h *Handler) AddTags(w http.ResponseWriter, r *http.Request) {
	h.mergeList(w, r, h.svc.AddTags)
}

// AddCategories handles POST /api/records/categories.
func (h *Handler) AddCategories(w http.ResponseWriter, r *http.Request) {
	h.mergeList(w, r, h.svc.AddCategories)
}

func (h *Handler) mergeList(w http.ResponseWriter, r *http.Request, merge func(ctx context.Context, path string, values []string) error) {
	var req listRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Path == "" || len(req.Values) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("path and values are required"))
		return
	}
	if err := merge(r.Context(), req.Path, req.Values); err != nil {
		writeServiceError(w, err, "merge list")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Bulk handles POST /api/bulk: one operation over many paths.
func (h *Handler) Bulk(w http.ResponseWriter, r *http.Request) {
	var req service.BulkRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Op == "" || len(req.Paths) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("op and paths are required"))
		return
	}
	res, err := h.svc.Bulk(r.Context(), req)
	if err != nil {
		writeServiceError(w, err, "bulk")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Stats handles GET /api/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	lib := h.svc.Library()
	videos, err := lib.Videos()
	if err != nil {
		writeServiceError(w, err, "stats")
		return
	}
	books, err := lib.Books()
	if err != nil {
		writeServiceError(w, err, "stats")
		return
	}
	benefits, err := lib.Benefits()
	if err != nil {
		writeServiceError(w, err, "stats")
		return
	}
	writeJSON(w, http.StatusOK, query.ComputeStats(videos.Videos, videos.Playlists, books.Books, benefits))
}

// Search handles GET /api/search via the SQLite index.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	if h.idx == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("search index not configured"))
		return
	}
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	hits, err := h.idx.Search(q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	results := make([]SearchResult, 0, len(hits))
	for _, hit := range hits {
		results = append(results, SearchResult{
			Path:    hit.Path,
			Kind:    hit.Kind,
			Title:   hit.Title,
			Snippet: hit.Snippet,
		})
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}
