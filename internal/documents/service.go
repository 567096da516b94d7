package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"scriptorium-backend/internal/extract"
	"scriptorium-backend/internal/projects"
	"scriptorium-backend/internal/shared/storage/object"
	"scriptorium-backend/internal/shared/telemetry"
)

// MaxUploadBytes is the upload size limit enforced before a document
// reaches the pipeline.
const MaxUploadBytes = 10 << 20 // 10 MiB

var allowedMimeTypes = map[string]struct{}{
	"application/pdf": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"image/jpeg": {},
	"image/png":  {},
}

// Service contains business logic for documents.
type Service struct {
	Store    object.ObjectStore
	Repo     Repo
	Projects projects.Repo
}

// Upload validates, stores and records an uploaded document. Text is
// extracted synchronously for extractable media types; the document row is
// immutable afterwards except for reordering.
func (s *Service) Upload(ctx context.Context, userID, projectID, fileName, mimeType string, r io.Reader) (Document, error) {
	if fileName == "" || projectID == "" {
		return Document{}, ErrInvalidInput
	}
	if _, ok := allowedMimeTypes[mimeType]; !ok {
		return Document{}, fmt.Errorf("%w: %s", ErrUnsupportedType, mimeType)
	}

	project, err := s.Projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, projects.ErrNotFound) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	if project.UserID != userID {
		return Document{}, ErrForbidden
	}

	// The upload size cap is enforced here on the buffered bytes as well as
	// at the HTTP layer, so the pipeline can rely on the bound.
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return Document{}, err
	}
	if int64(len(data)) > MaxUploadBytes {
		return Document{}, ErrTooLarge
	}

	var extractedText *string
	if extract.Extractable(mimeType) {
		text, err := extract.Text(data, mimeType)
		if err != nil {
			return Document{}, fmt.Errorf("extract text: %w", err)
		}
		extractedText = &text
	}

	storageKey, size, _, err := s.Store.Save(ctx, userID, fileName, bytes.NewReader(data))
	if err != nil {
		return Document{}, err
	}

	siblings, err := s.Repo.ListByProject(ctx, projectID)
	if err != nil {
		return Document{}, err
	}

	doc := Document{
		ID:            uuid.NewString(),
		ProjectID:     projectID,
		UserID:        userID,
		FileName:      fileName,
		MimeType:      mimeType,
		SizeBytes:     size,
		StorageKey:    storageKey,
		ExtractedText: extractedText,
		Position:      len(siblings),
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, err
	}

	telemetry.Info("document.uploaded", map[string]any{
		"document_id": doc.ID,
		"project_id":  projectID,
		"mime_type":   mimeType,
		"size_bytes":  size,
		"extracted":   extractedText != nil,
	})
	return doc, nil
}

// List returns a project's documents in narration order.
func (s *Service) List(ctx context.Context, userID, projectID string) ([]Document, error) {
	if projectID == "" {
		return nil, ErrInvalidInput
	}
	project, err := s.Projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, projects.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if project.UserID != userID {
		return nil, ErrForbidden
	}
	return s.Repo.ListByProject(ctx, projectID)
}

// Get returns one document, enforcing ownership.
func (s *Service) Get(ctx context.Context, userID, documentID string) (Document, error) {
	if documentID == "" {
		return Document{}, ErrInvalidInput
	}
	doc, err := s.Repo.GetByID(ctx, documentID)
	if err != nil {
		return Document{}, err
	}
	if doc.UserID != userID {
		return Document{}, ErrForbidden
	}
	return doc, nil
}

// Reorder replaces a project's narration order. The new sequence must
// contain exactly the project's document ids, each once.
func (s *Service) Reorder(ctx context.Context, userID, projectID string, orderedIDs []string) error {
	project, err := s.Projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, projects.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if project.UserID != userID {
		return ErrForbidden
	}

	existing, err := s.Repo.ListByProject(ctx, projectID)
	if err != nil {
		return err
	}
	if len(orderedIDs) != len(existing) {
		return ErrBadSequence
	}
	known := make(map[string]struct{}, len(existing))
	for _, doc := range existing {
		known[doc.ID] = struct{}{}
	}
	seen := make(map[string]struct{}, len(orderedIDs))
	for _, id := range orderedIDs {
		if _, ok := known[id]; !ok {
			return fmt.Errorf("%w: document %s", ErrBadSequence, id)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: duplicate document %s", ErrBadSequence, id)
		}
		seen[id] = struct{}{}
	}

	return s.Repo.UpdatePositions(ctx, projectID, orderedIDs)
}
