package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rohits-web03/stashbox/internal/models"
	"github.com/rohits-web03/stashbox/internal/repositories"
	"github.com/rohits-web03/stashbox/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	MaxFilenameLen    = 100
	maxContentTypeLen = 100
	defaultFileType   = "application/octet-stream"
)

// Incoming is a file received from a client. Filename and ContentType are
// untrusted.
type Incoming struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

type UploadResult struct {
	FileID   uuid.UUID
	Filename string
	Size     int64
}

// Uploads stores incoming files within each user's quota.
type Uploads struct {
	db    *gorm.DB
	users *repositories.UserRepository
	files *repositories.FileRepository
	blobs repositories.BlobStore
	quota *Quota
	locks *UserLocks
	log   *zap.Logger
	now   func() time.Time
}

func NewUploads(
	db *gorm.DB,
	users *repositories.UserRepository,
	files *repositories.FileRepository,
	blobs repositories.BlobStore,
	quota *Quota,
	locks *UserLocks,
	log *zap.Logger,
) *Uploads {
	return &Uploads{
		db:    db,
		users: users,
		files: files,
		blobs: blobs,
		quota: quota,
		locks: locks,
		log:   log,
		now:   utcNow,
	}
}

func utcNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// Upload stages the body, checks the owner's quota against the measured
// size, promotes the blob and records it. The quota check, promotion and
// record insert run under the owner's lock and one transaction, so
// concurrent uploads by the same user cannot jointly pass the cap. A
// staged blob never outlives the call.
func (s *Uploads) Upload(ctx context.Context, owner uuid.UUID, in Incoming) (UploadResult, error) {
	if owner == uuid.Nil {
		return UploadResult{}, newError(ErrUnauthenticated, "Unauthorized", nil)
	}
	if in.Body == nil || in.Filename == "" {
		return UploadResult{}, newError(ErrInvalidInput, "No selected file", nil)
	}

	name := utils.SecureFilename(in.Filename, MaxFilenameLen)
	if name == "" {
		return UploadResult{}, newError(ErrInvalidInput, "Invalid filename", nil)
	}
	fileType := normalizeContentType(in.ContentType)

	log := s.log.With(zap.String("userId", owner.String()), zap.String("filename", name))

	staged, err := s.blobs.Stage(ctx, in.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return UploadResult{}, newError(ErrQuotaExceeded, quotaMessage, err)
		}
		return UploadResult{}, newError(ErrStorageFailure, "Failed to store file", err)
	}

	promoted := false
	defer func() {
		if promoted {
			return
		}
		if err := s.blobs.Delete(context.WithoutCancel(ctx), staged.Key); err != nil {
			log.Warn("failed to remove staged blob", zap.String("key", staged.Key), zap.Error(err))
		}
	}()

	unlock, err := s.locks.Lock(ctx, owner)
	if err != nil {
		return UploadResult{}, newError(ErrStorageFailure, "Upload cancelled", err)
	}
	defer unlock()

	fileID := uuid.New()
	key := owner.String() + "/" + fileID.String() + "_" + name
	now := s.now()
	record := &models.File{
		ID:           fileID,
		UserID:       owner,
		Filename:     name,
		FileType:     fileType,
		FileSize:     staged.Size,
		Path:         key,
		CreatedTime:  now,
		ModifiedTime: now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.users.WithTx(tx).LockForUpdate(ctx, owner); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return newError(ErrUnauthenticated, "Unauthorized", err)
			}
			return newError(ErrStorageFailure, "Database error", err)
		}

		exceeded, err := s.quota.WithTx(tx).WouldExceed(ctx, owner, staged.Size)
		if err != nil {
			return newError(ErrStorageFailure, "Database error", err)
		}
		if exceeded {
			return newError(ErrQuotaExceeded, quotaMessage, nil)
		}

		if err := s.blobs.Promote(ctx, staged, key); err != nil {
			return newError(ErrStorageFailure, "Failed to store file", err)
		}
		promoted = true

		if err := s.files.WithTx(tx).Create(ctx, record); err != nil {
			return newError(ErrStorageFailure, "Failed to record file", err)
		}
		return nil
	})

	if err != nil && promoted {
		// The blob is in place but its record is not; take the blob back out.
		if delErr := s.blobs.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			log.Error("inconsistency: blob stored without metadata",
				zap.String("key", key), zap.Int64("size", staged.Size), zap.Error(err), zap.NamedError("cleanupError", delErr))
			return UploadResult{}, newError(ErrInconsistency, "Failed to record file", errors.Join(err, delErr))
		}
	}
	if err != nil {
		var se *Error
		if errors.As(err, &se) {
			return UploadResult{}, se
		}
		return UploadResult{}, newError(ErrStorageFailure, "Failed to store file", err)
	}

	log.Info("file uploaded", zap.String("fileId", fileID.String()), zap.Int64("size", staged.Size))
	return UploadResult{FileID: fileID, Filename: name, Size: staged.Size}, nil
}

const quotaMessage = "Storage full. You have reached the maximum storage limit."

func normalizeContentType(ct string) string {
	ct = strings.TrimSpace(ct)
	if ct == "" {
		return defaultFileType
	}
	if len(ct) > maxContentTypeLen {
		ct = ct[:maxContentTypeLen]
	}
	return ct
}
