// Package service is the single write-side boundary of the library. Every
// mutation — create, update, delete, progress change, benefit write, bulk
// operation — goes through here so that cache invalidation, index updates,
// and change events cannot be forgotten at a call site.
//
// Mutations are serialized behind one mutex: the vault offers no locking
// primitive, and two concurrent read-modify-write cycles against the same
// document would silently drop one change. Sequential processing is the
// chosen mitigation, not an incidental limitation.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/WallySa7/alrawi/internal/apperr"
	"github.com/WallySa7/alrawi/internal/frontmatter"
	"github.com/WallySa7/alrawi/internal/library"
	"github.com/WallySa7/alrawi/internal/mapper"
	"github.com/WallySa7/alrawi/internal/models"
	"github.com/WallySa7/alrawi/internal/storage"
)

// Indexer receives document changes for the search index. Implemented by
// index.DB; nil-checked so the service also runs index-less (tests, tools).
type Indexer interface {
	IndexDocument(path, text string) error
	DeleteDocument(path string) error
}

// Publisher broadcasts record change events. Implemented by sse.Broker.
type Publisher interface {
	PublishRecordEvent(kind, path string)
}

// Config holds the service's folders, defaults, and allowed status lists.
// An empty status list accepts any value.
type Config struct {
	VideosFolder  string
	BooksFolder   string
	VideoStatuses []string
	BookStatuses  []string
	Defaults      mapper.Defaults
}

// Service coordinates storage, library caches, the search index, and the
// event broker for every mutation.
type Service struct {
	store  storage.Provider
	lib    *library.Library
	idx    Indexer
	events Publisher
	cfg    Config
	logger *slog.Logger

	mu  sync.Mutex
	now func() time.Time
}

// New creates a Service. idx and events may be nil.
func New(store storage.Provider, lib *library.Library, idx Indexer, events Publisher, cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  store,
		lib:    lib,
		idx:    idx,
		events: events,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Library exposes the read-side collections.
func (s *Service) Library() *library.Library { return s.lib }

func (s *Service) today() string {
	return s.now().Format(models.DateFormat)
}

// readManaged reads a document and returns its text and "type"
// discriminator. A document without a recognized type is not a write
// target: apperr.ErrNotManaged.
func (s *Service) readManaged(path string) (string, string, error) {
	data, err := s.store.Read(path)
	if err != nil {
		return "", "", fmt.Errorf("service: read %s: %w", path, err)
	}
	text := string(data)
	fm, ok := frontmatter.Parse(text)
	if !ok {
		return "", "", fmt.Errorf("service: %s: %w", path, apperr.ErrNotManaged)
	}
	v, _ := fm.Get("type")
	typ, _ := v.(string)
	switch typ {
	case models.TypeVideo, models.TypeSeries, models.TypePlaylist, models.TypeBook:
		return text, typ, nil
	}
	return "", "", fmt.Errorf("service: %s: %w", path, apperr.ErrNotManaged)
}

// commit writes the document and performs the post-write bookkeeping:
// cache invalidation, reindex, change event. The cache is only touched
// after the write succeeded; a failed write leaves it valid.
func (s *Service) commit(kind, path, text string) error {
	if err := s.store.Write(path, []byte(text)); err != nil {
		return err
	}
	s.postWrite(kind, path, text)
	return nil
}

// postWrite runs the bookkeeping shared by every successful write.
func (s *Service) postWrite(kind, path, text string) {
	s.lib.InvalidatePath(path)
	if s.idx != nil {
		if err := s.idx.IndexDocument(path, text); err != nil {
			s.logger.Warn("service: reindex failed",
				slog.String("path", path), slog.String("error", err.Error()))
		}
	}
	if s.events != nil {
		s.events.PublishRecordEvent(kind, path)
	}
}

// Document returns the raw text of a managed record document.
func (s *Service) Document(_ context.Context, path string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, _, err := s.readManaged(path)
	return text, err
}

// Delete removes a record document and its index entry.
func (s *Service) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteLocked(path)
}

func (s *Service) deleteLocked(path string) error {
	if err := s.store.Delete(path); err != nil {
		return err
	}
	s.lib.InvalidatePath(path)
	if s.idx != nil {
		if err := s.idx.DeleteDocument(path); err != nil {
			s.logger.Warn("service: index delete failed",
				slog.String("path", path), slog.String("error", err.Error()))
		}
	}
	if s.events != nil {
		s.events.PublishRecordEvent("deleted", path)
	}
	return nil
}

// AddTags merges tags into a record's tag list. Already-present values are
// skipped; a call that adds nothing is still a success (idempotent).
func (s *Service) AddTags(_ context.Context, path string, tags []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mergeListKey(path, "tags", tags)
}

// AddCategories merges categories into a record's category list.
func (s *Service) AddCategories(_ context.Context, path string, categories []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mergeListKey(path, "categories", categories)
}

func (s *Service) mergeListKey(path, key string, values []string) error {
	text, _, err := s.readManaged(path)
	if err != nil {
		return err
	}
	fm, _ := frontmatter.Parse(text)
	existing := listValue(fm, key)
	merged, changed := mergeUnique(existing, values)
	if !changed {
		return nil
	}
	return s.commit("updated", path, frontmatter.SetKey(text, key, merged))
}

func listValue(fm *frontmatter.Map, key string) []string {
	v, ok := fm.Get(key)
	if !ok || v == nil {
		return nil
	}
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			out = append(out, fmt.Sprint(item))
		}
		return out
	case string:
		if t := strings.TrimSpace(list); t != "" {
			return []string{t}
		}
	}
	return nil
}

func mergeUnique(existing, add []string) ([]string, bool) {
	seen := make(map[string]struct{}, len(existing))
	out := append([]string{}, existing...)
	for _, e := range existing {
		seen[e] = struct{}{}
	}
	changed := false
	for _, a := range add {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if _, dup := seen[a]; dup {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
		changed = true
	}
	return out, changed
}

func statusAllowed(status string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if status == a {
			return true
		}
	}
	return false
}

// bookStatusAllowed is statusAllowed plus the two reconciler states, which
// mapper.ReconcileBook may force regardless of the configured list.
func bookStatusAllowed(status string, allowed []string) bool {
	return statusAllowed(status, allowed) ||
		status == models.StatusReading || status == models.StatusCompleted
}

// slugify derives a document file name from a record title.
func slugify(title string) string {
	out := make([]rune, 0, len(title))
	for _, r := range strings.TrimSpace(title) {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', '#', '^', '[', ']':
			out = append(out, '-')
		default:
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return "untitled"
	}
	return string(out)
}

// createDocument writes a new record document, suffixing the file name when
// the slot is taken.
func (s *Service) createDocument(folder, title, text string) (string, error) {
	base := slugify(title)
	for i := 1; i <= 50; i++ {
		name := base
		if i > 1 {
			name = fmt.Sprintf("%s %d", base, i)
		}
		path := folder + "/" + name + ".md"
		err := s.store.Create(path, []byte(text))
		if err == nil {
			return path, nil
		}
		if !errors.Is(err, apperr.ErrAlreadyExists) {
			return "", err
		}
	}
	return "", fmt.Errorf("service: no free path for %q: %w", title, apperr.ErrAlreadyExists)
}
