package library

import (
	"testing"

	"github.com/WallySa7/alrawi/internal/frontmatter"
	"github.com/WallySa7/alrawi/internal/mapper"
	"github.com/WallySa7/alrawi/internal/models"
	"github.com/WallySa7/alrawi/internal/storage"
)

func testConfig() Config {
	return Config{
		VideosFolder: "videos",
		BooksFolder:  "books",
		Defaults: mapper.Defaults{
			Presenter:   "Unknown",
			Author:      "Unknown",
			Language:    "Arabic",
			VideoStatus: "unwatched",
			BookStatus:  "unread",
		},
	}
}

func testLibrary(t *testing.T) (*Library, storage.Provider) {
	t.Helper()
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return New(store, testConfig(), nil), store
}

func writeVideo(t *testing.T, store storage.Provider, path string, v *models.Video) {
	t.Helper()
	pairs, body := mapper.EncodeVideo(v)
	if err := store.Write(path, []byte(frontmatter.Render(pairs, body))); err != nil {
		t.Fatal(err)
	}
}

func writeBook(t *testing.T, store storage.Provider, path string, b *models.Book) {
	t.Helper()
	pairs, body := mapper.EncodeBook(b)
	if err := store.Write(path, []byte(frontmatter.Render(pairs, body))); err != nil {
		t.Fatal(err)
	}
}

func TestVideos_LoadsAndIndexes(t *testing.T) {
	lib, store := testLibrary(t)
	writeVideo(t, store, "videos/a.md", &models.Video{
		Title: "A", Presenter: "P1", Duration: "10:00", Type: models.TypeVideo,
		Status: "watched", Categories: []string{"aqeedah"}, Tags: []string{"t/1"},
	})
	writeVideo(t, store, "videos/b.md", &models.Video{
		Title: "B", Presenter: "P2", Duration: "05:00", Type: models.TypeSeries,
		Status: "unwatched", Categories: []string{"fiqh"}, Tags: []string{"t/2"},
	})
	pairs, body := mapper.EncodePlaylist(&models.Playlist{
		Title: "PL", Presenter: "P1", Duration: "01:00:00", ItemCount: 5, Status: "unwatched",
	})
	_ = store.Write("videos/pl.md", []byte(frontmatter.Render(pairs, body)))
	// Foreign document without a recognized type is skipped.
	_ = store.Write("videos/stray.md", []byte("---\ntitle: stray\n---\nbody"))

	col, err := lib.Videos()
	if err != nil {
		t.Fatal(err)
	}
	if len(col.Videos) != 2 || len(col.Playlists) != 1 {
		t.Fatalf("videos=%d playlists=%d", len(col.Videos), len(col.Playlists))
	}
	wantPresenters := []string{"P1", "P2"}
	if len(col.Presenters) != 2 || col.Presenters[0] != wantPresenters[0] || col.Presenters[1] != wantPresenters[1] {
		t.Errorf("presenters = %v", col.Presenters)
	}
	if len(col.Categories) != 2 {
		t.Errorf("categories = %v", col.Categories)
	}
	if len(col.Tags) != 2 {
		t.Errorf("tags = %v", col.Tags)
	}
}

func TestVideos_CacheReuseAndInvalidate(t *testing.T) {
	lib, store := testLibrary(t)
	writeVideo(t, store, "videos/a.md", &models.Video{Title: "A", Type: models.TypeVideo})

	col1, err := lib.Videos()
	if err != nil {
		t.Fatal(err)
	}

	// A write bypassing invalidation is not picked up...
	writeVideo(t, store, "videos/b.md", &models.Video{Title: "B", Type: models.TypeVideo})
	col2, _ := lib.Videos()
	if len(col2.Videos) != len(col1.Videos) {
		t.Errorf("cache reloaded without invalidation")
	}

	// ...until the cache is invalidated.
	lib.InvalidateVideos()
	col3, _ := lib.Videos()
	if len(col3.Videos) != 2 {
		t.Errorf("after invalidate videos = %d, want 2", len(col3.Videos))
	}
}

func TestBooks_Load(t *testing.T) {
	lib, store := testLibrary(t)
	writeBook(t, store, "books/one.md", &models.Book{
		Title: "One", Author: "X", Pages: 100, Status: "reading",
		Categories: []string{"hadith"}, Tags: []string{"a"},
	})

	col, err := lib.Books()
	if err != nil {
		t.Fatal(err)
	}
	if len(col.Books) != 1 {
		t.Fatalf("books = %d", len(col.Books))
	}
	if col.Books[0].Language != "Arabic" {
		t.Errorf("language default missing: %q", col.Books[0].Language)
	}
	if len(col.Authors) != 1 || col.Authors[0] != "X" {
		t.Errorf("authors = %v", col.Authors)
	}
	if !col.HasTitle("  ONE ") {
		t.Error("HasTitle should match case-insensitively and trimmed")
	}
	if col.HasTitle("Two") {
		t.Error("HasTitle false positive")
	}
}

func TestBenefits_CrossFolderNotCached(t *testing.T) {
	lib, store := testLibrary(t)
	writeBook(t, store, "books/one.md", &models.Book{Title: "One", Author: "X", Pages: 10})
	writeVideo(t, store, "videos/a.md", &models.Video{Title: "A", Type: models.TypeVideo})

	benefit := &models.Benefit{
		ID: "0be3f6d0-0000-0000-0000-000000000001", Text: "note",
		Category: "cat", DateAdded: "2024-01-01", Tags: []string{},
	}
	data, _ := store.Read("books/one.md")
	doc := mapper.UpsertBenefit(string(data), benefit)
	_ = store.Write("books/one.md", []byte(doc))

	got, err := lib.Benefits()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("benefits = %d, want 1", len(got))
	}
	if got[0].SourceType != models.SourceBook || got[0].SourcePath != "books/one.md" {
		t.Errorf("source = %+v", got[0])
	}
	if got[0].SourceTitle != "One" {
		t.Errorf("sourceTitle = %q", got[0].SourceTitle)
	}

	// No caching: a second benefit appears on the next call without any
	// explicit invalidation.
	second := &models.Benefit{
		ID: "0be3f6d0-0000-0000-0000-000000000002", Text: "video note",
		Category: "cat", DateAdded: "2024-01-02",
	}
	data, _ = store.Read("videos/a.md")
	_ = store.Write("videos/a.md", []byte(mapper.UpsertBenefit(string(data), second)))
	got, _ = lib.Benefits()
	if len(got) != 2 {
		t.Errorf("benefits = %d, want 2", len(got))
	}
}
