package service

import (
	"context"
	"fmt"

	"github.com/WallySa7/alrawi/internal/apperr"
	"github.com/WallySa7/alrawi/internal/frontmatter"
	"github.com/WallySa7/alrawi/internal/mapper"
	"github.com/WallySa7/alrawi/internal/models"
)

// CreateVideo writes a new video document and returns its path. Missing
// status, presenter, and dateAdded fields receive defaults; the derived
// duration seconds are recomputed from the duration string.
func (s *Service) CreateVideo(_ context.Context, v *models.Video) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v.Title == "" {
		return "", fmt.Errorf("service: create video: title is required")
	}
	if v.Type != models.TypeSeries {
		v.Type = models.TypeVideo
	}
	if err := s.fillVideoDefaults(&v.Status, &v.Presenter, &v.DateAdded); err != nil {
		return "", err
	}
	v.DurationSeconds = mapper.DurationSeconds(v.Duration)

	pairs, body := mapper.EncodeVideo(v)
	text := frontmatter.Render(pairs, body)
	path, err := s.createDocument(s.cfg.VideosFolder, v.Title, text)
	if err != nil {
		return "", err
	}
	v.Path = path
	s.postWrite("created", path, text)
	return path, nil
}

// CreatePlaylist writes a new playlist document and returns its path.
func (s *Service) CreatePlaylist(_ context.Context, p *models.Playlist) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.Title == "" {
		return "", fmt.Errorf("service: create playlist: title is required")
	}
	if err := s.fillVideoDefaults(&p.Status, &p.Presenter, &p.DateAdded); err != nil {
		return "", err
	}
	p.DurationSeconds = mapper.DurationSeconds(p.Duration)

	pairs, body := mapper.EncodePlaylist(p)
	text := frontmatter.Render(pairs, body)
	path, err := s.createDocument(s.cfg.VideosFolder, p.Title, text)
	if err != nil {
		return "", err
	}
	p.Path = path
	s.postWrite("created", path, text)
	return path, nil
}

func (s *Service) fillVideoDefaults(status, presenter, dateAdded *string) error {
	if *status == "" {
		*status = s.cfg.Defaults.VideoStatus
	}
	if !statusAllowed(*status, s.cfg.VideoStatuses) {
		return fmt.Errorf("service: status %q not allowed", *status)
	}
	if *presenter == "" {
		*presenter = s.cfg.Defaults.Presenter
	}
	if *dateAdded == "" {
		*dateAdded = s.today()
	}
	return nil
}

// UpdateVideoStatus sets the status key of a video or playlist document,
// touching no other frontmatter key.
func (s *Service) UpdateVideoStatus(_ context.Context, path, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateVideoStatusLocked(path, status)
}

func (s *Service) updateVideoStatusLocked(path, status string) error {
	if !statusAllowed(status, s.cfg.VideoStatuses) {
		return fmt.Errorf("service: status %q not allowed", status)
	}
	text, typ, err := s.readManaged(path)
	if err != nil {
		return err
	}
	if typ == models.TypeBook {
		return fmt.Errorf("service: %s is a book: %w", path, apperr.ErrNotManaged)
	}
	return s.commit("updated", path, frontmatter.SetKey(text, "status", status))
}
