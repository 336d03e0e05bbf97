package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rohits-web03/stashbox/internal/config"
	"github.com/rohits-web03/stashbox/internal/models"
	"github.com/rohits-web03/stashbox/internal/repositories"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const mib = 1 << 20

type testEnv struct {
	db      *gorm.DB
	users   *repositories.UserRepository
	files   *repositories.FileRepository
	blobs   *repositories.LocalBlobStore
	creds   *Credentials
	quota   *Quota
	uploads *Uploads
	svc     *Files
}

func newTestEnv(t *testing.T, quota int64) *testEnv {
	t.Helper()
	dir := t.TempDir()

	db, err := repositories.ConnectDatabase(config.DriverSQLite, filepath.Join(dir, "test.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	blobs, err := repositories.NewLocalBlobStore(filepath.Join(dir, "uploads"))
	require.NoError(t, err)

	users := repositories.NewUserRepository(db)
	files := repositories.NewFileRepository(db)
	creds, err := NewCredentials(users, bcrypt.MinCost, zap.NewNop())
	require.NoError(t, err)
	q := NewQuota(files, quota)

	return &testEnv{
		db:      db,
		users:   users,
		files:   files,
		blobs:   blobs,
		creds:   creds,
		quota:   q,
		uploads: NewUploads(db, users, files, blobs, q, NewUserLocks(), zap.NewNop()),
		svc:     NewFiles(files, blobs, q, zap.NewNop()),
	}
}

func (e *testEnv) signup(t *testing.T, name string) *models.User {
	t.Helper()
	u, err := e.creds.Create(context.Background(), name, "pw-"+name)
	require.NoError(t, err)
	return u
}

func (e *testEnv) usage(t *testing.T, owner uuid.UUID) int64 {
	t.Helper()
	used, err := e.quota.Usage(context.Background(), owner)
	require.NoError(t, err)
	return used
}

// blobFiles lists every regular file under the storage root, staging included.
func (e *testEnv) blobFiles(t *testing.T) []string {
	t.Helper()
	var out []string
	err := filepath.WalkDir(e.blobs.Root(), func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			rel, _ := filepath.Rel(e.blobs.Root(), p)
			out = append(out, filepath.ToSlash(rel))
		}
		return nil
	})
	require.NoError(t, err)
	return out
}

func payload(n int) io.Reader {
	return bytes.NewReader(bytes.Repeat([]byte{'z'}, n))
}

// failFileInserts makes every insert into the files table fail.
func failFileInserts(t *testing.T, db *gorm.DB) {
	t.Helper()
	err := db.Callback().Create().Before("gorm:create").Register("test:fail_files", func(tx *gorm.DB) {
		if tx.Statement.Table == "files" {
			_ = tx.AddError(errDisk)
		}
	})
	require.NoError(t, err)
}

func requireKind(t *testing.T, err error, kind error) {
	t.Helper()
	require.Error(t, err)
	require.True(t, errors.Is(err, kind), "want %v, got %v", kind, err)
}

type faultyBlobs struct {
	repositories.BlobStore
	promoteErr error
	deleteErr  error
	deleted    []string
}

func (f *faultyBlobs) Promote(ctx context.Context, staged repositories.StagedBlob, key string) error {
	if f.promoteErr != nil {
		return f.promoteErr
	}
	return f.BlobStore.Promote(ctx, staged, key)
}

func (f *faultyBlobs) Delete(ctx context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	if f.deleteErr != nil && !strings.HasPrefix(key, ".staging/") {
		return f.deleteErr
	}
	return f.BlobStore.Delete(ctx, key)
}

var errDisk = errors.New("disk on fire")

func TestErrorKinds(t *testing.T) {
	err := newError(ErrQuotaExceeded, quotaMessage, errDisk)
	require.ErrorIs(t, err, ErrQuotaExceeded)
	require.ErrorIs(t, err, errDisk)
	require.NotErrorIs(t, err, ErrStorageFailure)

	var se *Error
	require.ErrorAs(t, err, &se)
	require.Equal(t, quotaMessage, se.Message)
}
