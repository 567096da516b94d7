package projects

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service contains business logic for projects.
type Service struct {
	Repo Repo
}

// Create records a new project owned by the user.
func (s *Service) Create(ctx context.Context, userID, title, author, description string) (Project, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(title) == "" {
		return Project{}, ErrInvalidInput
	}

	project := Project{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       strings.TrimSpace(title),
		Author:      strings.TrimSpace(author),
		Description: strings.TrimSpace(description),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, project); err != nil {
		return Project{}, err
	}
	return project, nil
}

// Get returns a project, enforcing ownership.
func (s *Service) Get(ctx context.Context, userID, projectID string) (Project, error) {
	if projectID == "" {
		return Project{}, ErrInvalidInput
	}
	project, err := s.Repo.GetByID(ctx, projectID)
	if err != nil {
		return Project{}, err
	}
	if project.UserID != userID {
		return Project{}, ErrForbidden
	}
	return project, nil
}

// List returns the user's projects newest-first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Project, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}
