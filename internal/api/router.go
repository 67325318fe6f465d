package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/WallySa7/alrawi/internal/service"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// vaultRoot and coversFolder resolve the cover-image directory.
func NewRouter(svc *service.Service, idx Searcher, authEnabled bool, token string, sseHandler http.Handler, vaultRoot, coversFolder string) chi.Router {
	h := NewHandler(svc, idx)
	ch := NewCoverHandler(vaultRoot, coversFolder)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Videos and playlists.
	r.Get("/videos", h.ListVideos)
	r.Post("/videos", h.CreateVideo)
	r.Post("/playlists", h.CreatePlaylist)

	// Books.
	r.Get("/books", h.ListBooks)
	r.Post("/books", h.CreateBook)
	r.Patch("/books/progress", h.UpdateProgress)
	r.Patch("/books/rating", h.UpdateRating)

	// Benefits.
	r.Get("/benefits", h.ListBenefits)
	r.Post("/benefits", h.UpsertBenefit)
	r.Delete("/benefits", h.RemoveBenefit)

	// Record-level operations shared by every kind.
	r.Patch("/records/status", h.UpdateStatus)
	r.Post("/records/tags", h.AddTags)
	r.Post("/records/categories", h.AddCategories)
	r.Get("/records/*", h.GetRecord)
	r.Delete("/records/*", h.DeleteRecord)

	// Bulk operations, stats, search.
	r.Post("/bulk", h.Bulk)
	r.Get("/stats", h.Stats)
	r.Get("/search", h.Search)

	// Cover upload (auth-protected).
	r.Post("/covers", ch.Upload)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
