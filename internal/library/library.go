// Package library loads typed record collections from the vault and caches
// them per record kind.
//
// Cache contract: a collection, once loaded, is reused until a mutator
// invalidates it; the next read transparently reloads. Invalidation is
// all-or-nothing per kind — there is no incremental update. Benefits are
// never cached: they are a cross-cutting view recomputed by scanning both
// record folders on every call.
package library

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/WallySa7/alrawi/internal/frontmatter"
	"github.com/WallySa7/alrawi/internal/mapper"
	"github.com/WallySa7/alrawi/internal/models"
	"github.com/WallySa7/alrawi/internal/storage"
)

// Config selects the record folders and decode defaults.
type Config struct {
	VideosFolder string
	BooksFolder  string
	Defaults     mapper.Defaults
}

// VideoCollection holds all decoded video-folder records plus derived
// index sets (unioned across records, sorted, unique).
type VideoCollection struct {
	Videos     []*models.Video
	Playlists  []*models.Playlist
	Presenters []string
	Categories []string
	Tags       []string
}

// BookCollection holds all decoded book records plus derived index sets.
type BookCollection struct {
	Books      []*models.Book
	Authors    []string
	Categories []string
	Tags       []string
}

// HasTitle reports whether any book shares the given title, compared
// lowercased and trimmed. A weak duplicate heuristic (distinct works can
// share a title) kept for compatibility with the import path.
func (c *BookCollection) HasTitle(title string) bool {
	want := strings.ToLower(strings.TrimSpace(title))
	for _, b := range c.Books {
		if strings.ToLower(strings.TrimSpace(b.Title)) == want {
			return true
		}
	}
	return false
}

// HasTitle reports whether any video or playlist shares the given title,
// compared lowercased and trimmed.
func (c *VideoCollection) HasTitle(title string) bool {
	want := strings.ToLower(strings.TrimSpace(title))
	for _, v := range c.Videos {
		if strings.ToLower(strings.TrimSpace(v.Title)) == want {
			return true
		}
	}
	for _, p := range c.Playlists {
		if strings.ToLower(strings.TrimSpace(p.Title)) == want {
			return true
		}
	}
	return false
}

type cached[T any] struct {
	data  T
	valid bool
}

// Library is the collection loader. The mutex guards the caches; loading is
// performed strictly sequentially, one document read at a time.
type Library struct {
	store  storage.Provider
	cfg    Config
	logger *slog.Logger

	mu     sync.Mutex
	videos cached[*VideoCollection]
	books  cached[*BookCollection]
}

// New creates a Library over the given storage provider.
func New(store storage.Provider, cfg Config, logger *slog.Logger) *Library {
	if logger == nil {
		logger = slog.Default()
	}
	return &Library{store: store, cfg: cfg, logger: logger}
}

// Videos returns the cached video collection, loading it when invalid.
func (l *Library) Videos() (*VideoCollection, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.videos.valid {
		return l.videos.data, nil
	}
	col, err := l.loadVideos()
	if err != nil {
		return nil, err
	}
	l.videos = cached[*VideoCollection]{data: col, valid: true}
	return col, nil
}

// Books returns the cached book collection, loading it when invalid.
func (l *Library) Books() (*BookCollection, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.books.valid {
		return l.books.data, nil
	}
	col, err := l.loadBooks()
	if err != nil {
		return nil, err
	}
	l.books = cached[*BookCollection]{data: col, valid: true}
	return col, nil
}

// Benefits recomputes the benefit view by scanning both record folders.
func (l *Library) Benefits() ([]*models.Benefit, error) {
	out := []*models.Benefit{}
	err := l.eachDocument(l.cfg.VideosFolder, func(path, text string, fm *frontmatter.Map) {
		title := titleOf(fm)
		switch typeOf(fm) {
		case models.TypeVideo, models.TypeSeries, models.TypePlaylist:
			out = append(out, mapper.DecodeBenefits(path, text, models.SourceVideo, title)...)
		}
	})
	if err != nil {
		return nil, err
	}
	err = l.eachDocument(l.cfg.BooksFolder, func(path, text string, fm *frontmatter.Map) {
		if typeOf(fm) == models.TypeBook {
			out = append(out, mapper.DecodeBenefits(path, text, models.SourceBook, titleOf(fm))...)
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// InvalidateVideos discards the cached video collection.
func (l *Library) InvalidateVideos() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.videos = cached[*VideoCollection]{}
}

// InvalidateBooks discards the cached book collection.
func (l *Library) InvalidateBooks() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.books = cached[*BookCollection]{}
}

// InvalidateAll discards every cached collection.
func (l *Library) InvalidateAll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.videos = cached[*VideoCollection]{}
	l.books = cached[*BookCollection]{}
}

// InvalidatePath discards the cache of whichever kind owns path.
func (l *Library) InvalidatePath(path string) {
	switch {
	case strings.HasPrefix(path, l.cfg.BooksFolder+"/"):
		l.InvalidateBooks()
	case strings.HasPrefix(path, l.cfg.VideosFolder+"/"):
		l.InvalidateVideos()
	default:
		l.InvalidateAll()
	}
}

func (l *Library) loadVideos() (*VideoCollection, error) {
	col := &VideoCollection{
		Videos:    []*models.Video{},
		Playlists: []*models.Playlist{},
	}
	presenters := newSet()
	categories := newSet()
	tags := newSet()

	err := l.eachDocument(l.cfg.VideosFolder, func(path, text string, fm *frontmatter.Map) {
		if v, ok := mapper.DecodeVideo(path, fm, l.cfg.Defaults); ok {
			col.Videos = append(col.Videos, v)
			presenters.add(v.Presenter)
			categories.addAll(v.Categories)
			tags.addAll(v.Tags)
			return
		}
		if p, ok := mapper.DecodePlaylist(path, fm, l.cfg.Defaults); ok {
			col.Playlists = append(col.Playlists, p)
			presenters.add(p.Presenter)
			categories.addAll(p.Categories)
			tags.addAll(p.Tags)
			return
		}
		l.logger.Debug("library: skipping unrecognized document", slog.String("path", path))
	})
	if err != nil {
		return nil, err
	}
	col.Presenters = presenters.sorted()
	col.Categories = categories.sorted()
	col.Tags = tags.sorted()
	return col, nil
}

func (l *Library) loadBooks() (*BookCollection, error) {
	col := &BookCollection{Books: []*models.Book{}}
	authors := newSet()
	categories := newSet()
	tags := newSet()

	err := l.eachDocument(l.cfg.BooksFolder, func(path, text string, fm *frontmatter.Map) {
		b, ok := mapper.DecodeBook(path, fm, frontmatter.Body(text), l.cfg.Defaults)
		if !ok {
			l.logger.Debug("library: skipping unrecognized document", slog.String("path", path))
			return
		}
		col.Books = append(col.Books, b)
		authors.add(b.Author)
		categories.addAll(b.Categories)
		tags.addAll(b.Tags)
	})
	if err != nil {
		return nil, err
	}
	col.Authors = authors.sorted()
	col.Categories = categories.sorted()
	col.Tags = tags.sorted()
	return col, nil
}

// eachDocument reads every markdown document under folder sequentially and
// invokes fn for those with a frontmatter block. Per-document read failures
// are logged and skipped; only the listing itself can fail the walk.
func (l *Library) eachDocument(folder string, fn func(path, text string, fm *frontmatter.Map)) error {
	infos, err := l.store.List(folder)
	if err != nil {
		return fmt.Errorf("library: list %s: %w", folder, err)
	}
	for _, info := range infos {
		data, err := l.store.Read(info.Path)
		if err != nil {
			l.logger.Warn("library: read failed",
				slog.String("path", info.Path), slog.String("error", err.Error()))
			continue
		}
		text := string(data)
		fm, ok := frontmatter.Parse(text)
		if !ok {
			continue
		}
		fn(info.Path, text, fm)
	}
	return nil
}

func typeOf(fm *frontmatter.Map) string {
	v, _ := fm.Get("type")
	s, _ := v.(string)
	return s
}

func titleOf(fm *frontmatter.Map) string {
	v, _ := fm.Get("title")
	s, _ := v.(string)
	return s
}

type set map[string]struct{}

func newSet() set { return make(set) }

func (s set) add(v string) {
	if v != "" {
		s[v] = struct{}{}
	}
}

func (s set) addAll(vs []string) {
	for _, v := range vs {
		s.add(v)
	}
}

func (s set) sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
