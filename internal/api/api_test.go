package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/WallySa7/alrawi/internal/index"
	"github.com/WallySa7/alrawi/internal/library"
	"github.com/WallySa7/alrawi/internal/mapper"
	"github.com/WallySa7/alrawi/internal/models"
	"github.com/WallySa7/alrawi/internal/service"
	"github.com/WallySa7/alrawi/internal/storage"
)

// testEnv sets up a temp vault, SQLite DB, service, and router for testing.
// An empty authToken means auth-disabled mode.
func testEnv(t *testing.T, authToken string) (*service.Service, http.Handler) {
	t.Helper()
	svc, router, _ := testEnvWithVault(t, authToken != "", authToken)
	return svc, router
}

func testEnvWithVault(t *testing.T, authEnabled bool, authToken string) (*service.Service, http.Handler, string) {
	t.Helper()

	vaultDir := t.TempDir()
	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}

	dbFile, err := os.CreateTemp("", "alrawi-api-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	defaults := mapper.Defaults{
		Presenter:   "Unknown",
		Author:      "Unknown",
		Language:    "ar",
		VideoStatus: "to-watch",
		BookStatus:  "to-read",
	}
	cfg := service.Config{
		VideosFolder:  "Videos",
		BooksFolder:   "Books",
		VideoStatuses: []string{"to-watch", "watching", "watched"},
		BookStatuses:  []string{"to-read", "reading", "completed"},
		Defaults:      defaults,
	}
	lib := library.New(store, library.Config{
		VideosFolder: cfg.VideosFolder,
		BooksFolder:  cfg.BooksFolder,
		Defaults:     defaults,
	}, logger)
	svc := service.New(store, lib, db, nil, cfg, logger)
	router := NewRouter(svc, db, authEnabled, authToken, nil, vaultDir, "covers")
	return svc, router, vaultDir
}

func doJSON(t *testing.T, router http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, rd)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateAndListVideos(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(t, router, http.MethodPost, "/videos", models.Video{
		Title:     "Tafsir Intro",
		Presenter: "Sheikh A",
		Duration:  "00:45:00",
		Tags:      []string{"tafsir"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	var created models.Video
	_ = json.Unmarshal(w.Body.Bytes(), &created)
	if created.Path != "Videos/Tafsir Intro.md" {
		t.Errorf("path = %q", created.Path)
	}
	if created.DurationSeconds != 2700 {
		t.Errorf("durationSeconds = %d", created.DurationSeconds)
	}

	w = doJSON(t, router, http.MethodGet, "/videos", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var list VideoListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if list.TotalVideos != 1 || len(list.Videos) != 1 {
		t.Fatalf("list = %+v", list)
	}
}

func TestListVideosPaginationCoversPlaylists(t *testing.T) {
	_, router := testEnv(t, "")

	if w := doJSON(t, router, http.MethodPost, "/videos", models.Video{Title: "Only Video"}); w.Code != http.StatusCreated {
		t.Fatalf("create video: %d %s", w.Code, w.Body.String())
	}
	for _, title := range []string{"Series A", "Series B", "Series C", "Series D", "Series E"} {
		if w := doJSON(t, router, http.MethodPost, "/playlists", models.Playlist{Title: title}); w.Code != http.StatusCreated {
			t.Fatalf("create playlist: %d %s", w.Code, w.Body.String())
		}
	}

	// Page math follows the larger collection (5 playlists at size 2 →
	// 3 pages), and a stale out-of-range page reports the clamped value.
	w := doJSON(t, router, http.MethodGet, "/videos?page=99&pageSize=2", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var list VideoListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if list.Pages != 3 {
		t.Errorf("pages = %d, want 3", list.Pages)
	}
	if list.Page != 3 {
		t.Errorf("page = %d, want clamped to 3", list.Page)
	}
	if len(list.Playlists) != 1 {
		t.Errorf("playlists on last page = %d, want 1", len(list.Playlists))
	}
	if list.TotalPlaylists != 5 || list.TotalVideos != 1 {
		t.Errorf("totals = %d/%d, want 5/1", list.TotalPlaylists, list.TotalVideos)
	}
}

func TestListVideosFilters(t *testing.T) {
	_, router := testEnv(t, "")

	for _, v := range []models.Video{
		{Title: "Watched One", Status: "watched", Tags: []string{"hadith/bukhari"}},
		{Title: "Pending One", Status: "to-watch", Tags: []string{"fiqh"}},
	} {
		if w := doJSON(t, router, http.MethodPost, "/videos", v); w.Code != http.StatusCreated {
			t.Fatalf("create: %d %s", w.Code, w.Body.String())
		}
	}

	w := doJSON(t, router, http.MethodGet, "/videos?status=watched", nil)
	var list VideoListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if list.TotalVideos != 1 || list.Videos[0].Title != "Watched One" {
		t.Fatalf("status filter: %+v", list)
	}

	// Hierarchical tag filter: a "hadith" filter matches "hadith/bukhari".
	w = doJSON(t, router, http.MethodGet, "/videos?tag=hadith", nil)
	list = VideoListResponse{}
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if list.TotalVideos != 1 || list.Videos[0].Title != "Watched One" {
		t.Fatalf("tag filter: %+v", list)
	}
}

func TestBookProgressEndpoint(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(t, router, http.MethodPost, "/books", models.Book{
		Title: "Forty Hadith",
		Pages: 90,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create book: %d %s", w.Code, w.Body.String())
	}
	var book models.Book
	_ = json.Unmarshal(w.Body.Bytes(), &book)

	w = doJSON(t, router, http.MethodPatch, "/books/progress", progressRequest{
		Path: book.Path, PagesRead: 90,
	})
	if w.Code != http.StatusNoContent {
		t.Fatalf("progress: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodGet, "/books?status=completed", nil)
	var list BookListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if list.Total != 1 || list.Books[0].PagesRead != 90 {
		t.Fatalf("completed list: %+v", list)
	}
}

func TestBenefitLifecycle(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(t, router, http.MethodPost, "/books", models.Book{Title: "Source", Pages: 50})
	var book models.Book
	_ = json.Unmarshal(w.Body.Bytes(), &book)

	w = doJSON(t, router, http.MethodPost, "/benefits", models.Benefit{
		SourcePath: book.Path,
		Category:   "tazkiyah",
		Text:       "A memorable excerpt.",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("upsert benefit: %d %s", w.Code, w.Body.String())
	}
	var benefit models.Benefit
	_ = json.Unmarshal(w.Body.Bytes(), &benefit)
	if benefit.ID == "" {
		t.Fatal("expected generated benefit ID")
	}

	w = doJSON(t, router, http.MethodGet, "/benefits?category=tazkiyah", nil)
	var list BenefitListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if list.Total != 1 || list.Benefits[0].Text != "A memorable excerpt." {
		t.Fatalf("benefit list: %+v", list)
	}

	w = doJSON(t, router, http.MethodDelete, "/benefits", removeBenefitRequest{
		SourcePath: book.Path, ID: benefit.ID,
	})
	if w.Code != http.StatusNoContent {
		t.Fatalf("remove benefit: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodDelete, "/benefits", removeBenefitRequest{
		SourcePath: book.Path, ID: benefit.ID,
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("second remove: %d, want 404", w.Code)
	}
}

func TestRecordGetAndDelete(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(t, router, http.MethodPost, "/videos", models.Video{Title: "Ephemeral"})
	var v models.Video
	_ = json.Unmarshal(w.Body.Bytes(), &v)

	w = doJSON(t, router, http.MethodGet, "/records/Videos/Ephemeral.md", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get record: %d", w.Code)
	}
	var rec RecordResponse
	_ = json.Unmarshal(w.Body.Bytes(), &rec)
	if rec.Path != "Videos/Ephemeral.md" || rec.Content == "" {
		t.Fatalf("record = %+v", rec)
	}

	w = doJSON(t, router, http.MethodDelete, "/records/Videos/Ephemeral.md", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete record: %d", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/records/Videos/Ephemeral.md", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("get deleted: %d, want 404", w.Code)
	}
}

func TestUpdateStatusRoutesByType(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(t, router, http.MethodPost, "/books", models.Book{Title: "Routed", Pages: 40})
	var book models.Book
	_ = json.Unmarshal(w.Body.Bytes(), &book)

	w = doJSON(t, router, http.MethodPatch, "/records/status", statusRequest{
		Path: book.Path, Status: "completed",
	})
	if w.Code != http.StatusNoContent {
		t.Fatalf("status: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodGet, "/books", nil)
	var list BookListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if list.Books[0].PagesRead != 40 {
		t.Errorf("completed did not pull pagesRead: %+v", list.Books[0])
	}
}

func TestBulkEndpoint(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(t, router, http.MethodPost, "/videos", models.Video{Title: "Bulk Target"})
	var v models.Video
	_ = json.Unmarshal(w.Body.Bytes(), &v)

	w = doJSON(t, router, http.MethodPost, "/bulk", service.BulkRequest{
		Op:     service.BulkAddTag,
		Paths:  []string{v.Path, "Videos/nope.md"},
		Values: []string{"selected"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("bulk: %d %s", w.Code, w.Body.String())
	}
	var res service.BulkResult
	_ = json.Unmarshal(w.Body.Bytes(), &res)
	if res.Success != 1 || len(res.Failed) != 1 {
		t.Fatalf("bulk result = %+v", res)
	}
}

func TestStatsEndpoint(t *testing.T) {
	_, router := testEnv(t, "")

	doJSON(t, router, http.MethodPost, "/videos", models.Video{Title: "S1", Duration: "01:00:00", Status: "watched"})
	doJSON(t, router, http.MethodPost, "/books", models.Book{Title: "B1", Pages: 100, PagesRead: 30})

	w := doJSON(t, router, http.MethodGet, "/stats", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stats: %d", w.Code)
	}
	var stats map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &stats)
	if stats["videos"].(float64) != 1 || stats["books"].(float64) != 1 {
		t.Fatalf("stats = %v", stats)
	}
	if stats["totalPagesRead"].(float64) != 30 {
		t.Errorf("totalPagesRead = %v", stats["totalPagesRead"])
	}
}

func TestSearchEndpoint(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(t, router, http.MethodPost, "/videos", models.Video{
		Title: "Lessons from Surah Yusuf", Presenter: "Sheikh B",
	})
	if w.Code != http.StatusCreated {
		t.Fatal(w.Body.String())
	}

	w = doJSON(t, router, http.MethodGet, "/search?q=Yusuf", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("search: %d %s", w.Code, w.Body.String())
	}
	var res SearchResponse
	_ = json.Unmarshal(w.Body.Bytes(), &res)
	if len(res.Results) != 1 || res.Results[0].Kind != "video" {
		t.Fatalf("results = %+v", res.Results)
	}

	w = doJSON(t, router, http.MethodGet, "/search", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing q: %d", w.Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	_, router := testEnv(t, "secret-token")

	req := httptest.NewRequest(http.MethodGet, "/videos", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/videos", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/videos", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("good token: %d, want 200", w.Code)
	}
}

func TestCoverUpload(t *testing.T) {
	_, router, vaultDir := testEnvWithVault(t, false, "")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "cover.png")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = part.Write([]byte("png-bytes"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/covers", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("upload: %d %s", w.Code, w.Body.String())
	}
	var res CoverUploadResponse
	_ = json.Unmarshal(w.Body.Bytes(), &res)
	if res.URL != "/covers/cover.png" {
		t.Errorf("url = %q", res.URL)
	}
	if _, err := os.Stat(filepath.Join(vaultDir, "covers", "cover.png")); err != nil {
		t.Errorf("cover not written: %v", err)
	}
}

func TestCoverUploadRejectsBadType(t *testing.T) {
	_, router := testEnv(t, "")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("file", "script.sh")
	_, _ = part.Write([]byte("x"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/covers", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestCoverSafeName(t *testing.T) {
	h := NewCoverHandler("/vault", "covers")
	for _, name := range []string{"", "../evil.png", "a/b.png", "plain.txt"} {
		if _, err := h.safeName(name); err == nil {
			t.Errorf("safeName(%q) accepted", name)
		}
	}
	if _, err := h.safeName("ok.PNG"); err != nil {
		t.Errorf("safeName(ok.PNG): %v", err)
	}
}
