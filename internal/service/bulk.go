package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/WallySa7/alrawi/internal/models"
)

// Bulk operation names accepted by Bulk.
const (
	BulkSetStatus   = "status"
	BulkAddTag      = "add-tag"
	BulkAddCategory = "add-category"
	BulkDelete      = "delete"
)

// BulkRequest applies one operation to a set of document paths.
type BulkRequest struct {
	Op    string   `json:"op"`
	Paths []string `json:"paths"`
	// Value carries the status for "status"; Values the tags/categories
	// for "add-tag" and "add-category".
	Value  string   `json:"value,omitempty"`
	Values []string `json:"values,omitempty"`
}

// BulkResult reports per-path outcomes of a bulk operation.
type BulkResult struct {
	Success int      `json:"success"`
	Failed  []string `json:"failed,omitempty"`
}

// Bulk applies req.Op to every path in order. A failing path is recorded
// and skipped; the remaining paths still run. The whole batch holds the
// mutation lock, so no other write interleaves with it.
func (s *Service) Bulk(_ context.Context, req BulkRequest) (*BulkResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := &BulkResult{}
	for _, path := range req.Paths {
		var err error
		switch req.Op {
		case BulkSetStatus:
			err = s.setStatusLocked(path, req.Value)
		case BulkAddTag:
			err = s.mergeListKey(path, "tags", req.Values)
		case BulkAddCategory:
			err = s.mergeListKey(path, "categories", req.Values)
		case BulkDelete:
			err = s.deleteLocked(path)
		default:
			err = fmt.Errorf("service: unknown bulk op %q", req.Op)
		}
		if err != nil {
			s.logger.Warn("service: bulk item failed",
				slog.String("op", req.Op), slog.String("path", path),
				slog.String("error", err.Error()))
			res.Failed = append(res.Failed, path)
			continue
		}
		res.Success++
	}
	return res, nil
}

// UpdateStatus sets the status of any record, routing by document type.
func (s *Service) UpdateStatus(_ context.Context, path, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setStatusLocked(path, status)
}

// setStatusLocked routes a status change by document type: books go
// through the progress/status coupling, videos and playlists through the
// plain key update.
func (s *Service) setStatusLocked(path, status string) error {
	_, typ, err := s.readManaged(path)
	if err != nil {
		return err
	}
	if typ == models.TypeBook {
		return s.updateBookStatusLocked(path, status)
	}
	return s.updateVideoStatusLocked(path, status)
}
