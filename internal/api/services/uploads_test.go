package services

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestUpload_RecordsMeasuredSize(t *testing.T) {
	e := newTestEnv(t, 10*mib)
	alice := e.signup(t, "alice")
	ctx := context.Background()

	res, err := e.uploads.Upload(ctx, alice.ID, Incoming{
		Filename:    "../My Notes.txt",
		ContentType: "text/plain",
		Body:        payload(1234),
	})
	require.NoError(t, err)
	assert.Equal(t, "My_Notes.txt", res.Filename)
	assert.Equal(t, int64(1234), res.Size)

	f, err := e.files.GetByID(ctx, alice.ID, res.FileID)
	require.NoError(t, err)
	assert.Equal(t, "My_Notes.txt", f.Filename)
	assert.Equal(t, "text/plain", f.FileType)
	assert.Equal(t, int64(1234), f.FileSize)
	assert.Equal(t, alice.ID, f.UserID)
	assert.True(t, f.CreatedTime.Equal(f.ModifiedTime))
	assert.True(t, strings.HasPrefix(f.Path, alice.ID.String()+"/"))

	assert.Equal(t, []string{f.Path}, e.blobFiles(t))
}

func TestUpload_ExactlyAtCapSucceeds(t *testing.T) {
	e := newTestEnv(t, 10*mib)
	alice := e.signup(t, "alice")
	ctx := context.Background()

	_, err := e.uploads.Upload(ctx, alice.ID, Incoming{Filename: "a.bin", Body: payload(4 * mib)})
	require.NoError(t, err)
	_, err = e.uploads.Upload(ctx, alice.ID, Incoming{Filename: "b.bin", Body: payload(6 * mib)})
	require.NoError(t, err)

	assert.Equal(t, int64(10*mib), e.usage(t, alice.ID))
}

func TestUpload_OneByteOverFailsWithoutSideEffects(t *testing.T) {
	e := newTestEnv(t, 10*mib)
	alice := e.signup(t, "alice")
	ctx := context.Background()

	_, err := e.uploads.Upload(ctx, alice.ID, Incoming{Filename: "a.bin", Body: payload(10*mib - 10)})
	require.NoError(t, err)
	before := e.blobFiles(t)

	_, err = e.uploads.Upload(ctx, alice.ID, Incoming{Filename: "b.bin", Body: payload(11)})
	requireKind(t, err, ErrQuotaExceeded)

	assert.Equal(t, int64(10*mib-10), e.usage(t, alice.ID))
	assert.Equal(t, before, e.blobFiles(t), "rejected upload must leave no blob behind")
}

func TestUpload_RepeatedRejectionsAreIdempotent(t *testing.T) {
	e := newTestEnv(t, 1000)
	alice := e.signup(t, "alice")
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := e.uploads.Upload(ctx, alice.ID, Incoming{Filename: "big.bin", Body: payload(1001)})
		requireKind(t, err, ErrQuotaExceeded)
	}

	assert.Zero(t, e.usage(t, alice.ID))
	assert.Empty(t, e.blobFiles(t))
}

func TestUpload_QuotaIsPerUser(t *testing.T) {
	e := newTestEnv(t, 100)
	alice := e.signup(t, "alice")
	bob := e.signup(t, "bob")
	ctx := context.Background()

	_, err := e.uploads.Upload(ctx, alice.ID, Incoming{Filename: "a", Body: payload(100)})
	require.NoError(t, err)
	_, err = e.uploads.Upload(ctx, bob.ID, Incoming{Filename: "a", Body: payload(100)})
	require.NoError(t, err)
}

func TestUpload_InputValidation(t *testing.T) {
	e := newTestEnv(t, 10*mib)
	alice := e.signup(t, "alice")
	ctx := context.Background()

	_, err := e.uploads.Upload(ctx, uuid.Nil, Incoming{Filename: "a", Body: payload(1)})
	requireKind(t, err, ErrUnauthenticated)

	_, err = e.uploads.Upload(ctx, alice.ID, Incoming{Filename: "", Body: payload(1)})
	requireKind(t, err, ErrInvalidInput)

	_, err = e.uploads.Upload(ctx, alice.ID, Incoming{Filename: "a"})
	requireKind(t, err, ErrInvalidInput)

	_, err = e.uploads.Upload(ctx, alice.ID, Incoming{Filename: "../..", Body: payload(1)})
	requireKind(t, err, ErrInvalidInput)

	_, err = e.uploads.Upload(ctx, uuid.New(), Incoming{Filename: "a", Body: payload(1)})
	requireKind(t, err, ErrUnauthenticated)

	assert.Empty(t, e.blobFiles(t))
}

func TestUpload_DefaultsContentType(t *testing.T) {
	e := newTestEnv(t, 10*mib)
	alice := e.signup(t, "alice")
	ctx := context.Background()

	res, err := e.uploads.Upload(ctx, alice.ID, Incoming{Filename: "a", Body: payload(1)})
	require.NoError(t, err)
	f, err := e.files.GetByID(ctx, alice.ID, res.FileID)
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", f.FileType)
}

func TestUpload_OversizedBodyIsQuotaExceeded(t *testing.T) {
	e := newTestEnv(t, 100)
	alice := e.signup(t, "alice")

	body := http.MaxBytesReader(httptest.NewRecorder(), io.NopCloser(payload(500)), 200)
	_, err := e.uploads.Upload(context.Background(), alice.ID, Incoming{Filename: "a", Body: body})
	requireKind(t, err, ErrQuotaExceeded)
	assert.Empty(t, e.blobFiles(t))
}

func TestUpload_PromoteFailureRemovesStagedBlob(t *testing.T) {
	e := newTestEnv(t, 10*mib)
	alice := e.signup(t, "alice")

	blobs := &faultyBlobs{BlobStore: e.blobs, promoteErr: errDisk}
	up := NewUploads(e.db, e.users, e.files, blobs, e.quota, NewUserLocks(), zap.NewNop())

	_, err := up.Upload(context.Background(), alice.ID, Incoming{Filename: "a", Body: payload(10)})
	requireKind(t, err, ErrStorageFailure)
	assert.Empty(t, e.blobFiles(t))
	assert.Zero(t, e.usage(t, alice.ID))
}

func TestUpload_RecordFailureRemovesPromotedBlob(t *testing.T) {
	e := newTestEnv(t, 10*mib)
	alice := e.signup(t, "alice")
	failFileInserts(t, e.db)

	_, err := e.uploads.Upload(context.Background(), alice.ID, Incoming{Filename: "a", Body: payload(10)})
	requireKind(t, err, ErrStorageFailure)
	assert.Empty(t, e.blobFiles(t), "promoted blob must be taken back out")
}

func TestUpload_RecordAndCleanupFailureIsInconsistency(t *testing.T) {
	e := newTestEnv(t, 10*mib)
	alice := e.signup(t, "alice")
	failFileInserts(t, e.db)

	blobs := &faultyBlobs{BlobStore: e.blobs, deleteErr: errDisk}
	up := NewUploads(e.db, e.users, e.files, blobs, e.quota, NewUserLocks(), zap.NewNop())

	_, err := up.Upload(context.Background(), alice.ID, Incoming{Filename: "a", Body: payload(10)})
	requireKind(t, err, ErrInconsistency)
	assert.Len(t, e.blobFiles(t), 1, "the orphaned blob is reported, not silently lost")
}

func TestUpload_ConcurrentUploadsCannotJointlyExceedQuota(t *testing.T) {
	e := newTestEnv(t, 1000)
	alice := e.signup(t, "alice")
	ctx := context.Background()

	const workers = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok       int
		rejected int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.uploads.Upload(ctx, alice.ID, Incoming{Filename: "part.bin", Body: payload(300)})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if assert.ErrorIs(t, err, ErrQuotaExceeded) {
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, ok)
	assert.Equal(t, workers-3, rejected)
	assert.Equal(t, int64(900), e.usage(t, alice.ID))
	assert.Len(t, e.blobFiles(t), 3)
}
