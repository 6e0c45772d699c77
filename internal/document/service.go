package document

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/gestobra/internal/slug"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=document
type Repository interface {
	CreateDocument(ctx context.Context, d *Document) error
	GetDocument(ctx context.Context, id uuid.UUID) (*Document, error)
	ListDocuments(ctx context.Context, filter ListFilter) ([]*Document, error)
	UpdateDocument(ctx context.Context, d *Document) error
	DeleteDocument(ctx context.Context, id uuid.UUID) error
}

// FileStore holds the document bytes.
type FileStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
	KeyFromURL(url string) (string, bool)
}

type Service struct {
	repo  Repository
	files FileStore
}

func NewService(repo Repository, files FileStore) *Service {
	return &Service{repo: repo, files: files}
}

type ListFilter struct {
	ProjectID *uuid.UUID
	Type      *string
}

type CreateParams struct {
	ProjectID   uuid.UUID
	Title       string
	Description string
	Type        string
	Owner       string
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Create stores the file first and then records the document pointing at it. When the insert
// fails the stored file is removed again.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Document, error) {
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	if params.Body == nil || params.Size == 0 {
		return nil, ErrEmptyFile
	}

	key := objectKey(params.ProjectID, params.FileName)

	fileURL, err := s.files.Upload(ctx, key, params.ContentType, params.Body)
	if err != nil {
		return nil, fmt.Errorf("storing document file: %w", err)
	}

	d := &Document{
		ProjectID:   params.ProjectID,
		Title:       title,
		Description: params.Description,
		Type:        params.Type,
		FileURL:     fileURL,
		FileName:    params.FileName,
		Owner:       params.Owner,
	}

	if err := s.repo.CreateDocument(ctx, d); err != nil {
		if delErr := s.files.Delete(ctx, key); delErr != nil {
			slog.Warn("failed to remove orphaned document file", "key", key, "error", delErr)
		}

		return nil, err
	}

	return d, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Document, error) {
	return s.repo.GetDocument(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Document, error) {
	return s.repo.ListDocuments(ctx, filter)
}

// Update changes the document metadata; the stored file is left untouched.
func (s *Service) Update(ctx context.Context, d *Document) error {
	d.Title = strings.TrimSpace(d.Title)
	if d.Title == "" {
		return ErrEmptyTitle
	}

	return s.repo.UpdateDocument(ctx, d)
}

// Delete removes the stored file best-effort and then the record, even if the file could not be removed.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	d, err := s.repo.GetDocument(ctx, id)
	if err != nil {
		return err
	}

	if key, ok := s.files.KeyFromURL(d.FileURL); ok {
		if err := s.files.Delete(ctx, key); err != nil {
			slog.Warn("failed to remove document file", "document_id", id, "key", key, "error", err)
		}
	} else {
		slog.Warn("document file url not managed by storage", "document_id", id, "url", d.FileURL)
	}

	return s.repo.DeleteDocument(ctx, id)
}

func objectKey(projectID uuid.UUID, fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	base := slug.Make(strings.TrimSuffix(fileName, path.Ext(fileName)), "arquivo")

	return fmt.Sprintf("%s/%s_%s%s", projectID, uuid.NewString(), base, ext)
}
