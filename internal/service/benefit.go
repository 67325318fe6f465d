package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/WallySa7/alrawi/internal/apperr"
	"github.com/WallySa7/alrawi/internal/mapper"
	"github.com/WallySa7/alrawi/internal/models"
)

// UpsertBenefit adds a benefit to its source document, or replaces the one
// with the same ID in place. An empty ID gets a fresh UUID. The frontmatter
// entry and the marked body block are written together in one commit, so
// the two representations cannot drift.
func (s *Service) UpsertBenefit(_ context.Context, b *models.Benefit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b.SourcePath == "" {
		return fmt.Errorf("service: upsert benefit: source path is required")
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.DateAdded == "" {
		b.DateAdded = s.today()
	}
	text, typ, err := s.readManaged(b.SourcePath)
	if err != nil {
		return err
	}
	if typ == models.TypeBook {
		b.SourceType = models.SourceBook
	} else {
		b.SourceType = models.SourceVideo
	}
	return s.commit("updated", b.SourcePath, mapper.UpsertBenefit(text, b))
}

// RemoveBenefit deletes a benefit's marked block and frontmatter entry from
// its source document. Removing an unknown ID is apperr.ErrNotFound.
func (s *Service) RemoveBenefit(_ context.Context, sourcePath, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	text, _, err := s.readManaged(sourcePath)
	if err != nil {
		return err
	}
	updated, ok := mapper.RemoveBenefit(text, id)
	if !ok {
		return fmt.Errorf("service: benefit %s in %s: %w", id, sourcePath, apperr.ErrNotFound)
	}
	return s.commit("updated", sourcePath, updated)
}
