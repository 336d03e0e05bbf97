package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rohits-web03/stashbox/internal/models"
	"github.com/rohits-web03/stashbox/internal/repositories"
	"go.uber.org/zap"
)

const downloadURLExpiry = 15 * time.Minute

// Usage summarises how much of the quota a user has consumed.
type Usage struct {
	Used      int64 `json:"used"`
	Quota     int64 `json:"quota"`
	Available int64 `json:"available"`
}

// Files serves reads and renames of a user's own file records.
type Files struct {
	files *repositories.FileRepository
	blobs repositories.BlobStore
	quota *Quota
	log   *zap.Logger
	now   func() time.Time
}

func NewFiles(files *repositories.FileRepository, blobs repositories.BlobStore, quota *Quota, log *zap.Logger) *Files {
	return &Files{files: files, blobs: blobs, quota: quota, log: log, now: utcNow}
}

func (s *Files) List(ctx context.Context, owner uuid.UUID) ([]models.File, error) {
	if owner == uuid.Nil {
		return nil, newError(ErrUnauthenticated, "Unauthorized", nil)
	}
	files, err := s.files.ListByOwner(ctx, owner)
	if err != nil {
		return nil, newError(ErrStorageFailure, "Database error", err)
	}
	return files, nil
}

func (s *Files) Usage(ctx context.Context, owner uuid.UUID) (Usage, error) {
	if owner == uuid.Nil {
		return Usage{}, newError(ErrUnauthenticated, "Unauthorized", nil)
	}
	used, err := s.quota.Usage(ctx, owner)
	if err != nil {
		return Usage{}, newError(ErrStorageFailure, "Database error", err)
	}
	return Usage{Used: used, Quota: s.quota.Limit(), Available: max(s.quota.Limit()-used, 0)}, nil
}

func (s *Files) Get(ctx context.Context, owner, id uuid.UUID) (*models.File, error) {
	if owner == uuid.Nil {
		return nil, newError(ErrUnauthenticated, "Unauthorized", nil)
	}
	f, err := s.files.GetByID(ctx, owner, id)
	if err != nil {
		return nil, lookupError(err)
	}
	return f, nil
}

// Rename renames the owner's oldest file called target.
func (s *Files) Rename(ctx context.Context, owner uuid.UUID, target, newName string) (*models.File, error) {
	if owner == uuid.Nil {
		return nil, newError(ErrUnauthenticated, "Unauthorized", nil)
	}
	newName, err := validateNewName(newName)
	if err != nil {
		return nil, err
	}

	f, err := s.files.FirstByName(ctx, owner, target)
	if err != nil {
		return nil, lookupError(err)
	}
	return s.rename(ctx, f, newName)
}

// RenameByID renames one of the owner's files by its ID.
func (s *Files) RenameByID(ctx context.Context, owner, id uuid.UUID, newName string) (*models.File, error) {
	if owner == uuid.Nil {
		return nil, newError(ErrUnauthenticated, "Unauthorized", nil)
	}
	newName, err := validateNewName(newName)
	if err != nil {
		return nil, err
	}

	f, err := s.files.GetByID(ctx, owner, id)
	if err != nil {
		return nil, lookupError(err)
	}
	return s.rename(ctx, f, newName)
}

func (s *Files) rename(ctx context.Context, f *models.File, newName string) (*models.File, error) {
	old := f.Filename
	if err := s.files.UpdateName(ctx, f, newName, s.now()); err != nil {
		return nil, lookupError(err)
	}
	s.log.Info("file renamed", zap.String("fileId", f.ID.String()), zap.String("from", old), zap.String("to", newName))
	return f, nil
}

// Open returns the owner's file record with a reader over its contents.
func (s *Files) Open(ctx context.Context, owner, id uuid.UUID) (*models.File, io.ReadCloser, error) {
	f, err := s.Get(ctx, owner, id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.blobs.Open(ctx, f.Path)
	if err != nil {
		if errors.Is(err, repositories.ErrBlobNotFound) {
			s.log.Error("inconsistency: metadata without blob", zap.String("fileId", f.ID.String()), zap.String("key", f.Path))
			return nil, nil, newError(ErrInconsistency, "File contents are missing", err)
		}
		return nil, nil, newError(ErrStorageFailure, "Failed to read file", err)
	}
	return f, rc, nil
}

// DownloadURL returns a short-lived direct URL when the blob store can
// issue one. ok is false when the caller should stream via Open instead.
func (s *Files) DownloadURL(ctx context.Context, owner, id uuid.UUID) (url string, ok bool, err error) {
	p, isPresigner := s.blobs.(repositories.Presigner)
	if !isPresigner {
		return "", false, nil
	}
	f, err := s.Get(ctx, owner, id)
	if err != nil {
		return "", false, err
	}
	url, err = p.PresignGet(ctx, f.Path, downloadURLExpiry)
	if err != nil {
		return "", false, newError(ErrStorageFailure, "Failed to generate download URL", err)
	}
	return url, true, nil
}

func validateNewName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", newError(ErrInvalidInput, "New filename not provided", nil)
	}
	if len(name) > MaxFilenameLen {
		return "", newError(ErrInvalidInput, "New filename must be at most 100 characters", nil)
	}
	if strings.ContainsAny(name, "/\\\x00") {
		return "", newError(ErrInvalidInput, "New filename must not contain path separators", nil)
	}
	return name, nil
}

func lookupError(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return newError(ErrNotFound, "File not found", err)
	}
	return newError(ErrStorageFailure, "Database error", err)
}
