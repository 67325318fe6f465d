package service

import (
	"context"
	"fmt"

	"github.com/WallySa7/alrawi/internal/apperr"
	"github.com/WallySa7/alrawi/internal/frontmatter"
	"github.com/WallySa7/alrawi/internal/mapper"
	"github.com/WallySa7/alrawi/internal/models"
)

// CreateBook writes a new book document and returns its path. Derived
// state (status/pagesRead/dates coupling) is reconciled before the write.
func (s *Service) CreateBook(_ context.Context, b *models.Book) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b.Title == "" {
		return "", fmt.Errorf("service: create book: title is required")
	}
	if b.Status == "" {
		b.Status = s.cfg.Defaults.BookStatus
	}
	if !bookStatusAllowed(b.Status, s.cfg.BookStatuses) {
		return "", fmt.Errorf("service: status %q not allowed", b.Status)
	}
	if b.Author == "" {
		b.Author = s.cfg.Defaults.Author
	}
	if b.Language == "" {
		b.Language = s.cfg.Defaults.Language
	}
	if b.DateAdded == "" {
		b.DateAdded = s.today()
	}
	mapper.ReconcileBook(b, s.today())

	pairs, body := mapper.EncodeBook(b)
	text := frontmatter.Render(pairs, body)
	path, err := s.createDocument(s.cfg.BooksFolder, b.Title, text)
	if err != nil {
		return "", err
	}
	b.Path = path
	s.postWrite("created", path, text)
	return path, nil
}

// UpdateBookProgress sets pagesRead and applies the derived status/date
// coupling. Only the keys that actually changed are written, each replaced
// in place so untouched frontmatter lines stay byte-identical.
func (s *Service) UpdateBookProgress(_ context.Context, path string, pagesRead int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateBook(path, func(b *models.Book) {
		mapper.SetBookProgress(b, pagesRead, s.today())
	})
}

// UpdateBookStatus sets the status and applies the derived coupling:
// "completed" pulls pagesRead up to pages.
func (s *Service) UpdateBookStatus(_ context.Context, path, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateBookStatusLocked(path, status)
}

func (s *Service) updateBookStatusLocked(path, status string) error {
	if !bookStatusAllowed(status, s.cfg.BookStatuses) {
		return fmt.Errorf("service: status %q not allowed", status)
	}
	return s.updateBook(path, func(b *models.Book) {
		mapper.SetBookStatus(b, status, s.today())
	})
}

// UpdateBookRating sets the 0–5 star rating.
func (s *Service) UpdateBookRating(_ context.Context, path string, rating int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rating < 0 || rating > 5 {
		return fmt.Errorf("service: rating %d out of range", rating)
	}
	return s.updateBook(path, func(b *models.Book) {
		b.Rating = rating
	})
}

// updateBook decodes the book at path, applies mutate, and writes back the
// frontmatter keys whose values changed.
func (s *Service) updateBook(path string, mutate func(*models.Book)) error {
	text, typ, err := s.readManaged(path)
	if err != nil {
		return err
	}
	if typ != models.TypeBook {
		return fmt.Errorf("service: %s is not a book: %w", path, apperr.ErrNotManaged)
	}
	fm, _ := frontmatter.Parse(text)
	before, ok := mapper.DecodeBook(path, fm, frontmatter.Body(text), s.cfg.Defaults)
	if !ok {
		return fmt.Errorf("service: %s: %w", path, apperr.ErrNotManaged)
	}
	after := *before
	mutate(&after)

	updated := text
	if after.PagesRead != before.PagesRead {
		updated = frontmatter.SetKey(updated, "pagesRead", after.PagesRead)
	}
	if after.Status != before.Status {
		updated = frontmatter.SetKey(updated, "status", after.Status)
	}
	if after.StartDate != before.StartDate {
		updated = frontmatter.SetKey(updated, "startDate", after.StartDate)
	}
	if after.CompletionDate != before.CompletionDate {
		updated = frontmatter.SetKey(updated, "completionDate", after.CompletionDate)
	}
	if after.Rating != before.Rating {
		updated = frontmatter.SetKey(updated, "rating", after.Rating)
	}
	if updated == text {
		return nil
	}
	return s.commit("updated", path, updated)
}
